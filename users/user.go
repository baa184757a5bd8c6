// Package users stores and lists users in a single dynamodb table keyed by userId.
package users

import (
	"github.com/gofrs/uuid"
)

const (
	AttrUserID = "userId"
	AttrName   = "name"
)

type User struct {
	UserID string `json:"userId" dynamodbav:"userId"`
	Name   string `json:"name"   dynamodbav:"name"`
}

// NewUser assigns a fresh version 4 uuid. Ids are never checked against the table.
func NewUser(name string) (*User, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	return &User{UserID: id.String(), Name: name}, nil
}

func ValidateName(value any) (string, error) {
	name, ok := value.(string)
	if !ok || name == "" {
		return "", &InvalidInputError{Reason: "name must be a non-empty string"}
	}
	return name, nil
}
