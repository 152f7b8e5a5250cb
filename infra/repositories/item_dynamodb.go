package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/giovaniif/items/domain/item"
	"github.com/giovaniif/items/infra"
)

const (
	dynamoHashKey          = "item_id"
	dynamoCapacityUnits    = 5
	dynamoTableWaitTimeout = 2 * time.Minute
)

// DynamoDBAPI is the subset of *dynamodb.Client used by the items table.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
	CreateTable(ctx context.Context, params *dynamodb.CreateTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.CreateTableOutput, error)
}

// dynamoRecord keeps the payload in its own map attribute so payload keys
// never collide with the hash key.
type dynamoRecord struct {
	ItemId  string         `dynamodbav:"item_id"`
	Payload map[string]any `dynamodbav:"payload"`
}

type ItemRepositoryDynamoDB struct {
	client DynamoDBAPI
	table  string
}

func NewItemRepositoryDynamoDB(client DynamoDBAPI, table string) *ItemRepositoryDynamoDB {
	return &ItemRepositoryDynamoDB{client: client, table: table}
}

func (r *ItemRepositoryDynamoDB) key(itemId string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		dynamoHashKey: &types.AttributeValueMemberS{Value: itemId},
	}
}

func (r *ItemRepositoryDynamoDB) GetItem(ctx context.Context, itemId string) (*item.Item, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.table),
		Key:            r.key(itemId),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, infra.NewStoreError("dynamodb get", err)
	}
	if len(out.Item) == 0 {
		return nil, item.ErrNotFound
	}

	var record dynamoRecord
	err = attributevalue.UnmarshalMapWithOptions(out.Item, &record, func(o *attributevalue.DecoderOptions) {
		o.UseNumber = true
	})
	if err != nil {
		return nil, infra.NewStoreError("dynamodb decode", err)
	}
	data, _ := fromDynamoNumbers(record.Payload).(map[string]any)
	if data == nil {
		data = map[string]any{}
	}
	return &item.Item{Id: itemId, Data: data}, nil
}

func (r *ItemRepositoryDynamoDB) SaveItem(ctx context.Context, it *item.Item) error {
	payload, _ := toDynamoNumbers(it.Data).(map[string]any)
	av, err := attributevalue.MarshalMap(dynamoRecord{ItemId: it.Id, Payload: payload})
	if err != nil {
		return infra.NewStoreError("dynamodb encode", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table),
		Item:      av,
	})
	if err != nil {
		return infra.NewStoreError("dynamodb put", err)
	}
	return nil
}

func (r *ItemRepositoryDynamoDB) DeleteItem(ctx context.Context, itemId string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.table),
		Key:       r.key(itemId),
	})
	if err != nil {
		return infra.NewStoreError("dynamodb delete", err)
	}
	return nil
}

func (r *ItemRepositoryDynamoDB) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)})
	if err != nil {
		return infra.NewStoreError("dynamodb describe", err)
	}
	return nil
}

// EnsureTable creates the items table when missing and waits until it is active.
func (r *ItemRepositoryDynamoDB) EnsureTable(ctx context.Context) error {
	_, err := r.client.CreateTable(ctx, &dynamodb.CreateTableInput{
		TableName: aws.String(r.table),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(dynamoHashKey), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(dynamoHashKey), AttributeType: types.ScalarAttributeTypeS},
		},
		ProvisionedThroughput: &types.ProvisionedThroughput{
			ReadCapacityUnits:  aws.Int64(dynamoCapacityUnits),
			WriteCapacityUnits: aws.Int64(dynamoCapacityUnits),
		},
	})
	var inUse *types.ResourceInUseException
	if err != nil && !errors.As(err, &inUse) {
		return infra.NewStoreError("dynamodb create table", err)
	}

	waiter := dynamodb.NewTableExistsWaiter(r.client)
	if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(r.table)}, dynamoTableWaitTimeout); err != nil {
		return infra.NewStoreError("dynamodb wait table", err)
	}
	return nil
}

func (r *ItemRepositoryDynamoDB) Close() error {
	return nil
}

// toDynamoNumbers swaps json.Number for attributevalue.Number so numbers are
// written as N attributes with their exact digits.
func toDynamoNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		return attributevalue.Number(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = toDynamoNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = toDynamoNumbers(e)
		}
		return out
	}
	return v
}

func fromDynamoNumbers(v any) any {
	switch t := v.(type) {
	case attributevalue.Number:
		return json.Number(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = fromDynamoNumbers(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = fromDynamoNumbers(e)
		}
		return out
	}
	return v
}
