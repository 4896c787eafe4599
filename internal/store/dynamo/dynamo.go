// Package dynamo stores registry tables as items of a DynamoDB table.
package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jun/gophbox/internal/store"
)

// Client is the subset of *dynamodb.Client used by Backend.
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// TableItem is one serialized registry table.
type TableItem struct {
	PK        string    `dynamodbav:"pk"`
	Body      []byte    `dynamodbav:"body"`
	UpdatedAt time.Time `dynamodbav:"updated_at"`
}

// Backend keeps each registry table in a single item keyed by table name.
// Items are capped at 400KB by DynamoDB, which bounds the registry size.
type Backend struct {
	client    Client
	tableName string
}

func New(client Client, tableName string) *Backend {
	return &Backend{client: client, tableName: tableName}
}

func (b *Backend) Read(ctx context.Context, table string) ([]byte, error) {
	out, err := b.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(b.tableName),
		ConsistentRead: aws.Bool(true),
		Key: map[string]types.AttributeValue{
			"pk": &types.AttributeValueMemberS{Value: table},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("dynamodb get %q: %w", table, err)
	}
	if out.Item == nil {
		return nil, store.ErrNotExist
	}

	var item TableItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal item: %w", err)
	}
	return item.Body, nil
}

func (b *Backend) Write(ctx context.Context, table string, data []byte) error {
	av, err := attributevalue.MarshalMap(TableItem{
		PK:        table,
		Body:      data,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal item: %w", err)
	}

	_, err = b.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(b.tableName),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("dynamodb put %q: %w", table, err)
	}
	return nil
}
