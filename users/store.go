package users

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ItemStore is the subset of *dynamodb.Client used here.
type ItemStore interface {
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// List returns the name of every user in one scan. The scan is not paginated, so a
// table larger than one scan page is silently truncated.
func List(ctx context.Context, store ItemStore, table string) ([]string, error) {
	out, err := store.Scan(ctx, &dynamodb.ScanInput{
		TableName:                aws.String(table),
		ProjectionExpression:     aws.String("#n"),
		ExpressionAttributeNames: map[string]string{"#n": AttrName},
	})
	if err != nil {
		return nil, &StoreError{Op: "scan", Err: err}
	}
	names := make([]string, 0, len(out.Items))
	for _, item := range out.Items {
		name, ok := item[AttrName].(*ddbtypes.AttributeValueMemberS)
		if !ok || name.Value == "" {
			return nil, &StoreError{Op: "scan", Err: fmt.Errorf("item has no string attribute %q", AttrName)}
		}
		names = append(names, name.Value)
	}
	return names, nil
}

// Add writes a new user unconditionally and returns it.
func Add(ctx context.Context, store ItemStore, table string, name string) (*User, error) {
	name, err := ValidateName(name)
	if err != nil {
		return nil, err
	}
	user, err := NewUser(name)
	if err != nil {
		return nil, err
	}
	item, err := attributevalue.MarshalMap(user)
	if err != nil {
		return nil, err
	}
	_, err = store.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(table),
		Item:      item,
	})
	if err != nil {
		return nil, &StoreError{Op: "put", Err: err}
	}
	return user, nil
}
