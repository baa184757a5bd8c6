package users

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/nathants/libaws-users/lib"
)

// Handler serves both api gateway routes. Store is built once per process and only
// read afterwards; Table is resolved on every invocation.
type Handler struct {
	Store ItemStore
	Table func() (string, error)
}

func NewHandler(store ItemStore) *Handler {
	return &Handler{Store: store, Table: TableFromEnv}
}

func TableFromEnv() (string, error) {
	table := os.Getenv("TABLE_NAME")
	if table == "" {
		return "", ErrTableNameUnset
	}
	return table, nil
}

type listResponse struct {
	Users []string `json:"users"`
}

type createResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func (h *Handler) List(ctx context.Context, _ events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	names, err := h.list(ctx)
	if err != nil {
		lib.Logger.Println("error: retrieving users:", err)
		return failure(MessageListFailed, err), nil
	}
	return respond(200, listResponse{Users: names}), nil
}

func (h *Handler) list(ctx context.Context) ([]string, error) {
	table, err := h.table()
	if err != nil {
		return nil, err
	}
	return List(ctx, h.Store, table)
}

func (h *Handler) Create(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	user, err := h.create(ctx, event)
	if err != nil {
		lib.Logger.Println("error: adding user:", err)
		return failure(MessageAddFailed, err), nil
	}
	lib.Logger.Println("stored user:", user.UserID, user.Name)
	return respond(200, createResponse{Message: MessageAdded, UserID: user.UserID}), nil
}

func (h *Handler) create(ctx context.Context, event events.APIGatewayProxyRequest) (*User, error) {
	value, err := requestName(event)
	if err != nil {
		return nil, err
	}
	name, err := ValidateName(value)
	if err != nil {
		return nil, err
	}
	table, err := h.table()
	if err != nil {
		return nil, err
	}
	return Add(ctx, h.Store, table, name)
}

func (h *Handler) table() (string, error) {
	tableFn := h.Table
	if tableFn == nil {
		tableFn = TableFromEnv
	}
	table, err := tableFn()
	if err != nil {
		return "", &StoreError{Op: "config", Err: err}
	}
	return table, nil
}

// requestName pulls the raw "name" value out of the body. An empty body counts as {}.
func requestName(event events.APIGatewayProxyRequest) (any, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, &InvalidInputError{Reason: "body is not valid base64"}
		}
		body = string(decoded)
	}
	if strings.TrimSpace(body) == "" {
		body = "{}"
	}
	var request map[string]any
	err := json.Unmarshal([]byte(body), &request)
	if err != nil {
		return nil, &InvalidInputError{Reason: "body is not a json object"}
	}
	return request["name"], nil
}

func failure(message string, err error) events.APIGatewayProxyResponse {
	var invalid *InvalidInputError
	if errors.As(err, &invalid) {
		return respond(400, errorResponse{Message: MessageInvalidName})
	}
	text := err.Error()
	var storeErr *StoreError
	if errors.As(err, &storeErr) {
		text = storeErr.Err.Error()
	}
	if text == "" {
		text = "unknown error"
	}
	return respond(500, errorResponse{Message: message, Error: text})
}

func respond(status int, body any) events.APIGatewayProxyResponse {
	bytes, err := json.Marshal(body)
	if err != nil {
		lib.Logger.Println("error:", err)
		status = 500
		bytes = []byte(`{"message":"failed to encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(bytes),
	}
}
