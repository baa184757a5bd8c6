package cliusers

import (
	"github.com/nathants/libaws-users/lib"
	"github.com/nathants/libaws-users/users"
)

func itemStore(endpoint string) users.ItemStore {
	if endpoint != "" {
		return lib.DynamoDBClientLocal(endpoint)
	}
	return lib.DynamoDBClient()
}
