package cliusers

import (
	"context"
	"fmt"

	"github.com/alexflint/go-arg"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/dustin/go-humanize"
	"github.com/nathants/libaws-users/lib"
	"gopkg.in/yaml.v3"
)

func init() {
	lib.Commands["users-describe"] = usersDescribe
	lib.Args["users-describe"] = usersDescribeArgs{}
}

type usersDescribeArgs struct {
	Table string `arg:"positional,required"`
}

func (usersDescribeArgs) Description() string {
	return "\ndescribe the users table as yaml. item count and size are refreshed by dynamodb about every six hours\n"
}

type usersDescribeOutput struct {
	Account string   `yaml:"account"`
	Region  string   `yaml:"region"`
	Table   string   `yaml:"table"`
	Status  string   `yaml:"status"`
	Keys    []string `yaml:"keys"`
	Billing string   `yaml:"billing"`
	Stream  string   `yaml:"stream,omitempty"`
	Items   string   `yaml:"items"`
	Size    string   `yaml:"size"`
}

func usersDescribe() {
	var args usersDescribeArgs
	arg.MustParse(&args)
	ctx := context.Background()
	account, err := lib.StsAccount(ctx)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	table, err := lib.DynamoDBDescribe(ctx, args.Table)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	state := lib.DynamoDBTableSettings(table)
	out := usersDescribeOutput{
		Account: account,
		Region:  lib.Region(),
		Table:   aws.ToString(table.TableName),
		Status:  string(table.TableStatus),
		Keys:    state.Keys,
		Billing: state.BillingMode,
		Stream:  state.Stream,
		Items:   humanize.Comma(aws.ToInt64(table.ItemCount)),
		Size:    humanize.Bytes(uint64(aws.ToInt64(table.TableSizeBytes))),
	}
	bytes, err := yaml.Marshal(out)
	if err != nil {
		lib.Logger.Fatal("error: ", err)
	}
	fmt.Print(string(bytes))
}
