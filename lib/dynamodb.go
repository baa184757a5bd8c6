package lib

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	ddbtypes "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/r3labs/diff/v2"
)

var dynamoDBClient *dynamodb.Client
var dynamoDBClientLock sync.Mutex

// DynamoDBClient is built once per process and shared by every invocation. Setting
// DYNAMODB_ENDPOINT points it at dynamodb-local.
func DynamoDBClient() *dynamodb.Client {
	dynamoDBClientLock.Lock()
	defer dynamoDBClientLock.Unlock()
	if dynamoDBClient == nil {
		dynamoDBClient = dynamodb.NewFromConfig(*Session(), dynamoDBEndpoint(os.Getenv("DYNAMODB_ENDPOINT")))
	}
	return dynamoDBClient
}

// DynamoDBClientLocal talks to dynamodb-local, which accepts any static credentials.
func DynamoDBClientLocal(endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(*SessionExplicit("local", "local", Region()), dynamoDBEndpoint(endpoint))
}

func dynamoDBEndpoint(endpoint string) func(*dynamodb.Options) {
	return func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}
}

func dynamoDBTableAttrShortcut(s string) string {
	s2, ok := map[string]string{
		"read":   "ProvisionedThroughput.ReadCapacityUnits",
		"write":  "ProvisionedThroughput.WriteCapacityUnits",
		"stream": "StreamSpecification.StreamViewType",
	}[s]
	if ok {
		return s2
	}
	return s
}

func DynamoDBEnsureInput(name string, keys []string, attrs []string) (*dynamodb.CreateTableInput, error) {
	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(name),
		BillingMode: ddbtypes.BillingModePayPerRequest,
	}

	if len(keys) == 0 {
		err := fmt.Errorf("table needs at least one key: %s", name)
		Logger.Println("error:", err)
		return nil, err
	}

	// unpack keys like "userId:s:hash" and "date:n:range"
	for _, key := range keys {
		attrName, attrType, keyType, err := SplitTwice(key, ":")
		if err != nil {
			Logger.Println("error:", err)
			return nil, err
		}
		input.KeySchema = append(input.KeySchema, ddbtypes.KeySchemaElement{
			AttributeName: aws.String(attrName),
			KeyType:       ddbtypes.KeyType(strings.ToUpper(keyType)),
		})
		input.AttributeDefinitions = append(input.AttributeDefinitions, ddbtypes.AttributeDefinition{
			AttributeName: aws.String(attrName),
			AttributeType: ddbtypes.ScalarAttributeType(strings.ToUpper(attrType)),
		})
	}

	for _, line := range attrs {
		attr, value, err := SplitOnce(line, "=")
		if err != nil {
			Logger.Println("error:", err)
			return nil, err
		}
		attr = dynamoDBTableAttrShortcut(attr)
		head, tail, err := SplitOnce(attr, ".")
		if err != nil {
			Logger.Println("error:", err)
			return nil, err
		}

		switch head {

		case "BillingMode":
			err := fmt.Errorf("BillingMode is implied by the existence of provisioned throughput attrs: %s", line)
			Logger.Println("error:", err)
			return nil, err

		case "SSESpecification":
			switch tail {
			case "KMSMasterKeyId":
				input.SSESpecification = &ddbtypes.SSESpecification{
					Enabled:        aws.Bool(true),
					KMSMasterKeyId: aws.String(value),
					SSEType:        ddbtypes.SSETypeKms,
				}
			case "Enabled", "SSEType":
				err := fmt.Errorf("SSESpecification.%s is implied by SSESpecification.KMSMasterKeyId: %s", tail, line)
				Logger.Println("error:", err)
				return nil, err
			default:
				err := fmt.Errorf("unknown attr: %s", line)
				Logger.Println("error:", err)
				return nil, err
			}

		case "ProvisionedThroughput":
			units, err := strconv.Atoi(value)
			if err != nil {
				Logger.Println("error:", err)
				return nil, err
			}
			input.BillingMode = ddbtypes.BillingModeProvisioned
			if input.ProvisionedThroughput == nil {
				input.ProvisionedThroughput = &ddbtypes.ProvisionedThroughput{}
			}
			switch tail {
			case "ReadCapacityUnits":
				input.ProvisionedThroughput.ReadCapacityUnits = aws.Int64(int64(units))
			case "WriteCapacityUnits":
				input.ProvisionedThroughput.WriteCapacityUnits = aws.Int64(int64(units))
			default:
				err := fmt.Errorf("unknown attr: %s", line)
				Logger.Println("error:", err)
				return nil, err
			}

		case "StreamSpecification":
			switch tail {
			case "StreamViewType":
				input.StreamSpecification = &ddbtypes.StreamSpecification{
					StreamEnabled:  aws.Bool(true),
					StreamViewType: ddbtypes.StreamViewType(strings.ToUpper(value)),
				}
			default:
				err := fmt.Errorf("unknown attr: %s", line)
				Logger.Println("error:", err)
				return nil, err
			}

		case "Tags":
			head, tail, err := SplitOnce(tail, ".")
			if err != nil {
				Logger.Println("error:", err)
				return nil, err
			}
			i, err := strconv.Atoi(head)
			if err != nil {
				Logger.Println("error:", err)
				return nil, err
			}
			switch len(input.Tags) {
			case i:
				input.Tags = append(input.Tags, ddbtypes.Tag{})
			case i + 1:
			default:
				err := fmt.Errorf("attrs with indices must be in ascending order: %s", line)
				Logger.Println("error:", err)
				return nil, err
			}
			switch tail {
			case "Key":
				input.Tags[i].Key = aws.String(value)
			case "Value":
				input.Tags[i].Value = aws.String(value)
			default:
				err := fmt.Errorf("unknown attr: %s", line)
				Logger.Println("error:", err)
				return nil, err
			}

		default:
			err := fmt.Errorf("unknown attr: %s", line)
			Logger.Println("error:", err)
			return nil, err

		}
	}

	if input.ProvisionedThroughput != nil && (input.ProvisionedThroughput.ReadCapacityUnits == nil || input.ProvisionedThroughput.WriteCapacityUnits == nil) {
		err := fmt.Errorf("provisioned throughput needs both read and write capacity units: %s", name)
		Logger.Println("error:", err)
		return nil, err
	}

	return input, nil
}

// DynamoDBSettings is the part of a table that DynamoDBEnsure compares between
// what exists and what was asked for.
type DynamoDBSettings struct {
	Keys        []string `diff:"keys"`
	BillingMode string   `diff:"billing"`
	Read        int64    `diff:"read"`
	Write       int64    `diff:"write"`
	Stream      string   `diff:"stream"`
}

func dynamoDBInputSettings(input *dynamodb.CreateTableInput) *DynamoDBSettings {
	state := &DynamoDBSettings{BillingMode: string(input.BillingMode)}
	types := map[string]ddbtypes.ScalarAttributeType{}
	for _, def := range input.AttributeDefinitions {
		types[*def.AttributeName] = def.AttributeType
	}
	for _, key := range input.KeySchema {
		state.Keys = append(state.Keys, fmt.Sprintf("%s:%s:%s", *key.AttributeName, types[*key.AttributeName], key.KeyType))
	}
	if input.ProvisionedThroughput != nil {
		state.Read = aws.ToInt64(input.ProvisionedThroughput.ReadCapacityUnits)
		state.Write = aws.ToInt64(input.ProvisionedThroughput.WriteCapacityUnits)
	}
	if input.StreamSpecification != nil && aws.ToBool(input.StreamSpecification.StreamEnabled) {
		state.Stream = string(input.StreamSpecification.StreamViewType)
	}
	return state
}

func DynamoDBTableSettings(table *ddbtypes.TableDescription) *DynamoDBSettings {
	state := &DynamoDBSettings{BillingMode: string(ddbtypes.BillingModeProvisioned)}
	if table.BillingModeSummary != nil {
		state.BillingMode = string(table.BillingModeSummary.BillingMode)
	}
	types := map[string]ddbtypes.ScalarAttributeType{}
	for _, def := range table.AttributeDefinitions {
		types[*def.AttributeName] = def.AttributeType
	}
	for _, key := range table.KeySchema {
		state.Keys = append(state.Keys, fmt.Sprintf("%s:%s:%s", *key.AttributeName, types[*key.AttributeName], key.KeyType))
	}
	if table.ProvisionedThroughput != nil && state.BillingMode == string(ddbtypes.BillingModeProvisioned) {
		state.Read = aws.ToInt64(table.ProvisionedThroughput.ReadCapacityUnits)
		state.Write = aws.ToInt64(table.ProvisionedThroughput.WriteCapacityUnits)
	}
	if table.StreamSpecification != nil && aws.ToBool(table.StreamSpecification.StreamEnabled) {
		state.Stream = string(table.StreamSpecification.StreamViewType)
	}
	return state
}

// dynamoDBUpdateInput turns a changelog into an update. Key changes cannot be
// applied to an existing table and are returned as an error.
func dynamoDBUpdateInput(name string, desired *DynamoDBSettings, changes diff.Changelog) (*dynamodb.UpdateTableInput, error) {
	if len(changes) == 0 {
		return nil, nil
	}
	input := &dynamodb.UpdateTableInput{TableName: aws.String(name)}
	for _, change := range changes {
		switch change.Path[0] {
		case "keys":
			return nil, fmt.Errorf("cannot change keys of existing table %s: %v => %v", name, change.From, change.To)
		case "billing", "read", "write":
			input.BillingMode = ddbtypes.BillingMode(desired.BillingMode)
			if desired.BillingMode == string(ddbtypes.BillingModeProvisioned) {
				input.ProvisionedThroughput = &ddbtypes.ProvisionedThroughput{
					ReadCapacityUnits:  aws.Int64(desired.Read),
					WriteCapacityUnits: aws.Int64(desired.Write),
				}
			}
		case "stream":
			if desired.Stream == "" {
				input.StreamSpecification = &ddbtypes.StreamSpecification{StreamEnabled: aws.Bool(false)}
			} else {
				input.StreamSpecification = &ddbtypes.StreamSpecification{
					StreamEnabled:  aws.Bool(true),
					StreamViewType: ddbtypes.StreamViewType(desired.Stream),
				}
			}
		}
	}
	return input, nil
}

func PreviewString(preview bool) string {
	if !preview {
		return ""
	}
	return "preview: "
}

func DynamoDBDescribe(ctx context.Context, name string) (*ddbtypes.TableDescription, error) {
	if doDebug {
		d := &Debug{start: time.Now(), name: "DynamoDBDescribe"}
		defer d.Log()
	}
	out, err := DynamoDBClient().DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(name),
	})
	if err != nil {
		return nil, err
	}
	return out.Table, nil
}

func dynamoDBWaitActive(ctx context.Context, name string) error {
	return retry.Do(
		func() error {
			table, err := DynamoDBDescribe(ctx, name)
			if err != nil {
				return err
			}
			if table.TableStatus != ddbtypes.TableStatusActive {
				return fmt.Errorf("table %s is %s", name, table.TableStatus)
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(120),
		retry.Delay(time.Second),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
	)
}

func DynamoDBEnsure(ctx context.Context, input *dynamodb.CreateTableInput, preview bool) error {
	name := *input.TableName
	table, err := DynamoDBDescribe(ctx, name)
	if err != nil {
		var notFound *ddbtypes.ResourceNotFoundException
		if !errors.As(err, &notFound) {
			Logger.Println("error:", err)
			return err
		}
		if !preview {
			_, err := DynamoDBClient().CreateTable(ctx, input)
			if err != nil {
				Logger.Println("error:", err)
				return err
			}
			err = dynamoDBWaitActive(ctx, name)
			if err != nil {
				Logger.Println("error:", err)
				return err
			}
		}
		Logger.Println(PreviewString(preview)+"created table:", name)
		return nil
	}
	desired := dynamoDBInputSettings(input)
	changes, err := diff.Diff(DynamoDBTableSettings(table), desired)
	if err != nil {
		Logger.Println("error:", err)
		return err
	}
	update, err := dynamoDBUpdateInput(name, desired, changes)
	if err != nil {
		Logger.Println("error:", err)
		return err
	}
	if update == nil {
		return nil
	}
	for _, change := range changes {
		Logger.Println(PreviewString(preview)+"update table:", name, strings.Join(change.Path, "."), change.From, "=>", change.To)
	}
	if !preview {
		_, err := DynamoDBClient().UpdateTable(ctx, update)
		if err != nil {
			Logger.Println("error:", err)
			return err
		}
		err = dynamoDBWaitActive(ctx, name)
		if err != nil {
			Logger.Println("error:", err)
			return err
		}
	}
	return nil
}

func DynamoDBDeleteTable(ctx context.Context, name string, preview bool) error {
	_, err := DynamoDBDescribe(ctx, name)
	if err != nil {
		var notFound *ddbtypes.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return nil
		}
		Logger.Println("error:", err)
		return err
	}
	if !preview {
		_, err := DynamoDBClient().DeleteTable(ctx, &dynamodb.DeleteTableInput{
			TableName: aws.String(name),
		})
		if err != nil {
			Logger.Println("error:", err)
			return err
		}
	}
	Logger.Println(PreviewString(preview)+"deleted table:", name)
	return nil
}
