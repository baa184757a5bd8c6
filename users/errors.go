package users

import (
	"errors"
)

const (
	MessageInvalidName = "Name is required and must be a string"
	MessageListFailed  = "Failed to retrieve users"
	MessageAddFailed   = "Failed to add user"
	MessageAdded       = "User added successfully"
)

var ErrTableNameUnset = errors.New("TABLE_NAME is not set")

// InvalidInputError is a client error. Nothing has been written when it is returned.
type InvalidInputError struct {
	Reason string
}

func (e *InvalidInputError) Error() string {
	return "invalid input: " + e.Reason
}

// StoreError wraps any failure reaching the item store, including a missing table name
// and items that do not look like users.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
