package cliusers

import (
	"context"

	"github.com/alexflint/go-arg"
	"github.com/nathants/libaws-users/lib"
)

func init() {
	lib.Commands["users-rm"] = usersRm
	lib.Args["users-rm"] = usersRmArgs{}
}

type usersRmArgs struct {
	Table   string `arg:"positional,required"`
	Preview bool   `arg:"-p,--preview"`
}

func (usersRmArgs) Description() string {
	return "\ndelete the users table and every user in it\n"
}

func usersRm() {
	var args usersRmArgs
	arg.MustParse(&args)
	ctx := context.Background()
	err := lib.DynamoDBDeleteTable(ctx, args.Table, args.Preview)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
}
