package cliusers

import (
	"context"

	"github.com/alexflint/go-arg"
	"github.com/nathants/libaws-users/lib"
	"github.com/nathants/libaws-users/users"
)

func init() {
	lib.Commands["users-ensure"] = usersEnsure
	lib.Args["users-ensure"] = usersEnsureArgs{}
}

type usersEnsureArgs struct {
	Table   string   `arg:"positional,required"`
	Attrs   []string `arg:"positional"`
	Preview bool     `arg:"-p,--preview"`
}

func (usersEnsureArgs) Description() string {
	return `

ensure the users table, keyed by ` + users.AttrUserID + `:s:hash

>> libaws-users users-ensure user-table-dev
>> libaws-users users-ensure user-table-dev read=5 write=5 Tags.0.Key=stage Tags.0.Value=dev

optional attrs:
 - SSESpecification.KMSMasterKeyId=VALUE
 - ProvisionedThroughput.ReadCapacityUnits=VALUE  (read=VALUE)
 - ProvisionedThroughput.WriteCapacityUnits=VALUE (write=VALUE)
 - StreamSpecification.StreamViewType=VALUE       (stream=VALUE)
 - Tags.INTEGER.Key=VALUE
 - Tags.INTEGER.Value=VALUE

`
}

func usersEnsure() {
	var args usersEnsureArgs
	arg.MustParse(&args)
	ctx := context.Background()
	input, err := lib.DynamoDBEnsureInput(args.Table, []string{users.AttrUserID + ":s:hash"}, args.Attrs)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	err = lib.DynamoDBEnsure(ctx, input, args.Preview)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
}
