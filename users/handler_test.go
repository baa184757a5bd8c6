package users

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"sort"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/gofrs/uuid"
)

func testHandler(store *memStore) *Handler {
	return &Handler{
		Store: store,
		Table: func() (string, error) { return "users-test", nil },
	}
}

func decode(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()
	if resp.Headers["Content-Type"] != "application/json" {
		t.Errorf("\ngot:\n%s\nwant:\napplication/json\n", resp.Headers["Content-Type"])
	}
	val := map[string]any{}
	err := json.Unmarshal([]byte(resp.Body), &val)
	if err != nil {
		t.Fatalf("\nbad body: %s: %s\n", resp.Body, err)
	}
	return val
}

func create(t *testing.T, h *Handler, body string) events.APIGatewayProxyResponse {
	t.Helper()
	resp, err := h.Create(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "POST", Body: body})
	if err != nil {
		t.Fatalf("\nhandler returned an error: %s\n", err)
	}
	return resp
}

func TestHandlerCreate(t *testing.T) {
	type test struct {
		name string
	}
	tests := []test{
		{"Alice"},
		{"Bob Smith"},
		{"  "},
		{"名前"},
	}
	for _, test := range tests {
		store := newMemStore()
		body, _ := json.Marshal(map[string]string{"name": test.name})
		resp := create(t, testHandler(store), string(body))
		if resp.StatusCode != 200 {
			t.Errorf("\ngot:\n%d\nwant:\n200\n", resp.StatusCode)
			continue
		}
		val := decode(t, resp)
		if val["message"] != MessageAdded {
			t.Errorf("\ngot:\n%v\nwant:\n%s\n", val["message"], MessageAdded)
		}
		userID, _ := val["userId"].(string)
		id, err := uuid.FromString(userID)
		if err != nil || id.Version() != uuid.V4 {
			t.Errorf("\nnot a v4 uuid: %q\n", userID)
			continue
		}
		item, ok := store.items[userID]
		if !ok {
			t.Errorf("\nno item stored for: %s\n", userID)
			continue
		}
		if item[AttrName].(*ddbtypes.AttributeValueMemberS).Value != test.name {
			t.Errorf("\ngot:\n%#v\nwant:\n%s\n", item[AttrName], test.name)
		}
	}
}

func TestCreateInvalidInput(t *testing.T) {
	type test struct {
		body string
	}
	tests := []test{
		{``},
		{`{}`},
		{`{"name": null}`},
		{`{"name": 42}`},
		{`{"name": {"first": "alice"}}`},
		{`{"name": ["alice"]}`},
		{`{"name": true}`},
		{`{"name": ""}`},
		{`{"Name": "alice"}`},
		{`null`},
		{`[1]`},
		{`"alice"`},
		{`not json`},
	}
	for _, test := range tests {
		store := newMemStore()
		resp := create(t, testHandler(store), test.body)
		if resp.StatusCode != 400 {
			t.Errorf("\nbody: %s\ngot:\n%d\nwant:\n400\n", test.body, resp.StatusCode)
			continue
		}
		val := decode(t, resp)
		if val["message"] != MessageInvalidName {
			t.Errorf("\ngot:\n%v\nwant:\n%s\n", val["message"], MessageInvalidName)
		}
		if _, ok := val["error"]; ok {
			t.Errorf("\nunexpected error field: %s\n", resp.Body)
		}
		if store.puts != 0 {
			t.Errorf("\nbody: %s\ngot:\n%d puts\nwant:\n0 puts\n", test.body, store.puts)
		}
	}
}

func TestCreateInvalidInputBeforeTable(t *testing.T) {
	h := &Handler{
		Store: newMemStore(),
		Table: func() (string, error) { return "", ErrTableNameUnset },
	}
	resp := create(t, h, `{}`)
	if resp.StatusCode != 400 {
		t.Errorf("\ngot:\n%d\nwant:\n400\n", resp.StatusCode)
	}
}

func TestCreateBase64Body(t *testing.T) {
	store := newMemStore()
	resp, err := testHandler(store).Create(context.Background(), events.APIGatewayProxyRequest{
		Body:            base64.StdEncoding.EncodeToString([]byte(`{"name": "Alice"}`)),
		IsBase64Encoded: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 || store.puts != 1 {
		t.Errorf("\ngot:\n%d %s\n", resp.StatusCode, resp.Body)
	}
}

func TestCreateDistinctIDs(t *testing.T) {
	store := newMemStore()
	h := testHandler(store)
	first := decode(t, create(t, h, `{"name": "Alice"}`))
	second := decode(t, create(t, h, `{"name": "Alice"}`))
	if first["userId"] == second["userId"] {
		t.Errorf("\nsame userId twice: %v\n", first["userId"])
	}
	if len(store.items) != 2 {
		t.Errorf("\ngot:\n%d\nwant:\n2\n", len(store.items))
	}
}

func TestHandlerList(t *testing.T) {
	store := newMemStore()
	store.put("1", "Alice")
	store.put("2", "Bob")
	resp, err := testHandler(store).List(context.Background(), events.APIGatewayProxyRequest{HTTPMethod: "GET"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("\ngot:\n%d\nwant:\n200\n", resp.StatusCode)
	}
	var body listResponse
	err = json.Unmarshal([]byte(resp.Body), &body)
	if err != nil {
		t.Fatal(err)
	}
	sort.Strings(body.Users)
	if len(body.Users) != 2 || body.Users[0] != "Alice" || body.Users[1] != "Bob" {
		t.Errorf("\ngot:\n%v\nwant:\n[Alice Bob]\n", body.Users)
	}
	if store.scans != 1 || store.table != "users-test" {
		t.Errorf("\ngot:\n%d scans of %s\n", store.scans, store.table)
	}
}

func TestHandlerListEmpty(t *testing.T) {
	resp, err := testHandler(newMemStore()).List(context.Background(), events.APIGatewayProxyRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Errorf("\ngot:\n%d\nwant:\n200\n", resp.StatusCode)
	}
	if resp.Body != `{"users":[]}` {
		t.Errorf("\ngot:\n%s\nwant:\n%s\n", resp.Body, `{"users":[]}`)
	}
}

func TestStoreFailure(t *testing.T) {
	type test struct {
		name    string
		message string
		call    func(*Handler) (events.APIGatewayProxyResponse, error)
	}
	tests := []test{
		{"list", MessageListFailed, func(h *Handler) (events.APIGatewayProxyResponse, error) {
			return h.List(context.Background(), events.APIGatewayProxyRequest{})
		}},
		{"create", MessageAddFailed, func(h *Handler) (events.APIGatewayProxyResponse, error) {
			return h.Create(context.Background(), events.APIGatewayProxyRequest{Body: `{"name": "Alice"}`})
		}},
	}
	for _, test := range tests {
		store := newMemStore()
		store.err = errors.New("AccessDeniedException: not authorized")
		resp, err := test.call(testHandler(store))
		if err != nil {
			t.Errorf("\n%s: handler returned an error: %s\n", test.name, err)
			continue
		}
		if resp.StatusCode != 500 {
			t.Errorf("\n%s\ngot:\n%d\nwant:\n500\n", test.name, resp.StatusCode)
			continue
		}
		val := decode(t, resp)
		if val["message"] != test.message {
			t.Errorf("\ngot:\n%v\nwant:\n%s\n", val["message"], test.message)
		}
		if val["error"] != store.err.Error() {
			t.Errorf("\ngot:\n%v\nwant:\n%s\n", val["error"], store.err.Error())
		}
	}
}

func TestTableNameUnset(t *testing.T) {
	t.Setenv("TABLE_NAME", "")
	store := newMemStore()
	h := NewHandler(store)
	for _, resp := range []events.APIGatewayProxyResponse{
		create(t, h, `{"name": "Alice"}`),
		func() events.APIGatewayProxyResponse {
			resp, _ := h.List(context.Background(), events.APIGatewayProxyRequest{})
			return resp
		}(),
	} {
		if resp.StatusCode != 500 {
			t.Errorf("\ngot:\n%d\nwant:\n500\n", resp.StatusCode)
			continue
		}
		val := decode(t, resp)
		if val["error"] != ErrTableNameUnset.Error() {
			t.Errorf("\ngot:\n%v\nwant:\n%s\n", val["error"], ErrTableNameUnset)
		}
	}
	if store.puts != 0 || store.scans != 0 {
		t.Errorf("\nstore should not be called without a table\n")
	}
}

func TestTableFromEnv(t *testing.T) {
	t.Setenv("TABLE_NAME", "user-table-dev")
	table, err := TableFromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if table != "user-table-dev" {
		t.Errorf("\ngot:\n%s\nwant:\nuser-table-dev\n", table)
	}
}
