// Package dynamo implements the store contract on DynamoDB. Atomic adds
// use ADD update expressions and conditional writes use condition
// expressions, so counter maintenance and vote versioning never round-trip
// through the client.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"forumapi/internal/store"
)

type Store struct {
	client *dynamodb.Client
	tables map[string]string
	logger *slog.Logger
}

// New builds a DynamoDB-backed store. tables maps logical collection
// names to table names.
func New(client *dynamodb.Client, tables map[string]string, logger *slog.Logger) *Store {
	return &Store{client: client, tables: tables, logger: logger}
}

func (s *Store) table(collection string) (string, error) {
	t, ok := s.tables[collection]
	if !ok {
		return "", fmt.Errorf("dynamo: no table configured for collection %q", collection)
	}
	return t, nil
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func (s *Store) Get(ctx context.Context, collection, id string, dest any) error {
	table, err := s.table(collection)
	if err != nil {
		return err
	}
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: &table,
		Key:       key(id),
	})
	if err != nil {
		return fmt.Errorf("dynamo: get %s/%s: %w", collection, id, err)
	}
	if out.Item == nil {
		return store.ErrNotFound
	}
	if err := attributevalue.UnmarshalMap(out.Item, dest); err != nil {
		return fmt.Errorf("dynamo: decode %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Put(ctx context.Context, collection, id string, doc any) error {
	table, err := s.table(collection)
	if err != nil {
		return err
	}
	item, err := attributevalue.MarshalMap(doc)
	if err != nil {
		return fmt.Errorf("dynamo: encode %s/%s: %w", collection, id, err)
	}
	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: &table,
		Item:      item,
	}); err != nil {
		return fmt.Errorf("dynamo: put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Update(ctx context.Context, collection, id string, upd store.Update) error {
	table, err := s.table(collection)
	if err != nil {
		return err
	}

	var ub expression.UpdateBuilder
	for name, value := range upd.Set {
		ub = ub.Set(expression.Name(name), expression.Value(value))
	}
	for name, delta := range upd.Add {
		ub = ub.Add(expression.Name(name), expression.Value(delta))
	}

	builder := expression.NewBuilder().WithUpdate(ub)
	if len(upd.IfEq) > 0 {
		var cond expression.ConditionBuilder
		first := true
		for name, value := range upd.IfEq {
			c := expression.Name(name).Equal(expression.Value(value))
			if first {
				cond, first = c, false
			} else {
				cond = cond.And(c)
			}
		}
		builder = builder.WithCondition(cond)
	}
	expr, err := builder.Build()
	if err != nil {
		return fmt.Errorf("dynamo: build update %s/%s: %w", collection, id, err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName:                 &table,
		Key:                       key(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	if _, err := s.client.UpdateItem(ctx, input); err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return store.ErrConditionFailed
		}
		return fmt.Errorf("dynamo: update %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, id string) error {
	table, err := s.table(collection)
	if err != nil {
		return err
	}
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: &table,
		Key:       key(id),
	}); err != nil {
		return fmt.Errorf("dynamo: delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Store) Scan(ctx context.Context, collection string, filter store.Filter, dest any) error {
	table, err := s.table(collection)
	if err != nil {
		return err
	}

	input := &dynamodb.ScanInput{TableName: &table}
	if len(filter.Eq) > 0 || len(filter.Gt) > 0 {
		var cond expression.ConditionBuilder
		first := true
		add := func(c expression.ConditionBuilder) {
			if first {
				cond, first = c, false
			} else {
				cond = cond.And(c)
			}
		}
		for name, value := range filter.Eq {
			add(expression.Name(name).Equal(expression.Value(value)))
		}
		for name, value := range filter.Gt {
			add(expression.Name(name).GreaterThan(expression.Value(value)))
		}
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return fmt.Errorf("dynamo: build scan filter %s: %w", collection, err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var items []map[string]types.AttributeValue
	for {
		out, err := s.client.Scan(ctx, input)
		if err != nil {
			return fmt.Errorf("dynamo: scan %s: %w", collection, err)
		}
		items = append(items, out.Items...)
		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
	if err := attributevalue.UnmarshalListOfMaps(items, dest); err != nil {
		return fmt.Errorf("dynamo: decode scan %s: %w", collection, err)
	}
	return nil
}
