package cliusers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexflint/go-arg"
	"github.com/mattn/go-isatty"
	"github.com/nathants/libaws-users/lib"
	"github.com/nathants/libaws-users/users"
)

func init() {
	lib.Commands["users-ls"] = usersLs
	lib.Args["users-ls"] = usersLsArgs{}
}

type usersLsArgs struct {
	Table    string `arg:"positional,required"`
	Endpoint string `arg:"-e,--endpoint" help:"dynamodb-local url"`
}

func (usersLsArgs) Description() string {
	return `

list user names with a single scan, in table order

prints one name per line on a terminal, otherwise {"users": [...]}

>> libaws-users users-ls user-table-dev

`
}

func usersLs() {
	var args usersLsArgs
	arg.MustParse(&args)
	ctx := context.Background()
	names, err := users.List(ctx, itemStore(args.Endpoint), args.Table)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	if isatty.IsTerminal(os.Stdout.Fd()) {
		for _, name := range names {
			fmt.Println(name)
		}
		return
	}
	bytes, err := json.Marshal(map[string][]string{"users": names})
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	fmt.Println(string(bytes))
}
