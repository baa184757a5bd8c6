package cliusers

import (
	"context"
	"fmt"

	"github.com/alexflint/go-arg"
	"github.com/nathants/libaws-users/lib"
	"github.com/nathants/libaws-users/users"
	"golang.org/x/sync/errgroup"
)

func init() {
	lib.Commands["users-add"] = usersAdd
	lib.Args["users-add"] = usersAddArgs{}
}

type usersAddArgs struct {
	Table          string   `arg:"positional,required"`
	Names          []string `arg:"positional,required"`
	Endpoint       string   `arg:"-e,--endpoint" help:"dynamodb-local url"`
	MaxConcurrency int      `arg:"-m,--max-concurrency" default:"8"`
}

func (usersAddArgs) Description() string {
	return `

add users, printing "userId name" for each

every name gets a new userId, even when the name already exists

>> libaws-users users-add user-table-dev alice bob

`
}

func usersAdd() {
	var args usersAddArgs
	arg.MustParse(&args)
	if args.MaxConcurrency < 1 {
		lib.Logger.Fatal("error: --max-concurrency must be at least 1")
	}
	store := itemStore(args.Endpoint)
	added := make([]*users.User, len(args.Names))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(args.MaxConcurrency)
	for i, name := range args.Names {
		i, name := i, name
		g.Go(func() error {
			user, err := users.Add(ctx, store, args.Table, name)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			added[i] = user
			return nil
		})
	}
	err := g.Wait()
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	for _, user := range added {
		fmt.Println(user.UserID, user.Name)
	}
}
