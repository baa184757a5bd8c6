//
// attr: concurrency 0
// attr: memory 128
// attr: timeout 30
// policy: AWSLambdaBasicExecutionRole
// allow: dynamodb:PutItem arn:aws:dynamodb:*:*:table/${TABLE_NAME}
// env: TABLE_NAME
// trigger: api

package main

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/nathants/libaws-users/lib"
	"github.com/nathants/libaws-users/users"
)

func main() {
	handler := users.NewHandler(lib.DynamoDBClient())
	lambda.Start(handler.Create)
}
