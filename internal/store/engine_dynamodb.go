// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/aws/smithy-go"
	"github.com/google/uuid"

	"github.com/MKhiriev/go-secret-keeper/internal/kv"
	"github.com/MKhiriev/go-secret-keeper/internal/logger"
)

// maxTransactItems is the DynamoDB limit of actions per transaction.
const maxTransactItems = 100

// DynamoDBAPI is the part of the DynamoDB client used by the engine.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

// dynamoRecord is one stored pair. Counters live in the numeric attribute
// "n" so that sums can use ADD; all other values live in "v".
type dynamoRecord struct {
	PK           string  `dynamodbav:"pk"`
	SK           []byte  `dynamodbav:"sk"`
	Value        []byte  `dynamodbav:"v,omitempty"`
	Counter      *uint64 `dynamodbav:"n,omitempty"`
	Versionstamp string  `dynamodbav:"vs"`
}

func (r dynamoRecord) value() []byte {
	if r.Counter != nil {
		return kv.EncodeCounter(*r.Counter)
	}
	return r.Value
}

// dynamoEngine implements [kv.Engine] on one DynamoDB table with a string
// partition key "pk" and a binary sort key "sk". All entries share one
// partition, so scans are single Query calls in key order.
//
// Versionstamps are UUIDv7 values in hex; they grow with every commit made
// by one process.
type dynamoEngine struct {
	client    DynamoDBAPI
	table     string
	partition string
}

func NewDynamoDBEngine(client DynamoDBAPI, table, partition string) kv.Engine {
	return &dynamoEngine{client: client, table: table, partition: partition}
}

func (e *dynamoEngine) itemKey(enc []byte) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"pk": &types.AttributeValueMemberS{Value: e.partition},
		"sk": &types.AttributeValueMemberB{Value: enc},
	}
}

func (e *dynamoEngine) Get(ctx context.Context, key kv.Key) (kv.Entry, error) {
	out, err := e.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(e.table),
		Key:            e.itemKey(key.Encode()),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*dynamoEngine.Get").Str("key", key.String()).Msg("failed to get item")
		return kv.Entry{}, kv.NewEngineError("get", isDynamoRetryable(err), err)
	}
	if out.Item == nil {
		return kv.Entry{Key: key}, nil
	}

	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return kv.Entry{}, kv.NewEngineError("get", false, fmt.Errorf("unmarshal item %s: %w", key, err))
	}

	return kv.Entry{Key: key, Value: rec.value(), Versionstamp: kv.Versionstamp(rec.Versionstamp)}, nil
}

func (e *dynamoEngine) Scan(ctx context.Context, req kv.ScanRequest) ([]kv.Entry, error) {
	log := logger.FromContext(ctx)

	var (
		entries   []kv.Entry
		startFrom map[string]types.AttributeValue
	)
	for {
		out, err := e.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(e.table),
			KeyConditionExpression: aws.String("pk = :pk AND sk BETWEEN :start AND :end"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk":    &types.AttributeValueMemberS{Value: e.partition},
				":start": &types.AttributeValueMemberB{Value: req.Start},
				":end":   &types.AttributeValueMemberB{Value: req.End},
			},
			ConsistentRead:    aws.Bool(true),
			ExclusiveStartKey: startFrom,
		})
		if err != nil {
			log.Err(err).Str("func", "*dynamoEngine.Scan").Msg("failed to query items")
			return nil, kv.NewEngineError("scan", isDynamoRetryable(err), err)
		}

		var records []dynamoRecord
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
			return nil, kv.NewEngineError("scan", false, fmt.Errorf("unmarshal items: %w", err))
		}

		for _, rec := range records {
			// BETWEEN is inclusive, the range end is not
			if bytes.Equal(rec.SK, req.End) {
				continue
			}
			entry, err := kv.EntryFromRaw(rec.SK, rec.value(), kv.Versionstamp(rec.Versionstamp))
			if err != nil {
				return nil, kv.NewEngineError("scan", false, err)
			}
			entries = append(entries, entry)
			if req.Limit > 0 && len(entries) == req.Limit {
				return entries, nil
			}
		}

		if len(out.LastEvaluatedKey) == 0 {
			return entries, nil
		}
		startFrom = out.LastEvaluatedKey
	}
}

// dynamoAction remembers what a transaction item does, to explain a
// cancellation.
type dynamoAction struct {
	key      kv.Key
	checked  bool
	expected kv.Versionstamp
	sum      bool
}

func (e *dynamoEngine) Commit(ctx context.Context, batch kv.Batch) (kv.Versionstamp, error) {
	log := logger.FromContext(ctx)

	checks, ok := batch.CompactChecks()
	if !ok {
		return "", kv.ErrConflict
	}
	mutations, err := batch.Compact()
	if err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", kv.NewEngineError("commit", true, err)
	}
	vs := kv.Versionstamp(fmt.Sprintf("%x", id[:]))

	items, actions, err := e.buildTransaction(checks, mutations, vs)
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return vs, nil
	}

	_, err = e.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: items})
	if err != nil {
		if mapped := mapDynamoTransactionError(err, actions); mapped != nil {
			log.Debug().Str("func", "*dynamoEngine.Commit").Err(mapped).Msg("transaction cancelled")
			return "", mapped
		}
		log.Err(err).Str("func", "*dynamoEngine.Commit").Msg("failed to write transaction")
		return "", kv.NewEngineError("commit", isDynamoRetryable(err), err)
	}

	return vs, nil
}

func (e *dynamoEngine) buildTransaction(checks []kv.Check, mutations []kv.Mutation, vs kv.Versionstamp) ([]types.TransactWriteItem, []dynamoAction, error) {
	expected := make(map[string]kv.Versionstamp, len(checks))
	for _, c := range checks {
		expected[string(c.Key.Encode())] = c.Versionstamp
	}

	items := make([]types.TransactWriteItem, 0, len(mutations)+len(checks))
	actions := make([]dynamoAction, 0, cap(items))

	for _, m := range mutations {
		enc := m.Key.Encode()
		want, checked := expected[string(enc)]
		delete(expected, string(enc))
		cond := newDynamoCondition(checked, want)
		action := dynamoAction{key: m.Key, checked: checked, expected: want}

		switch m.Kind {
		case kv.MutationSet:
			rec := dynamoRecord{PK: e.partition, SK: enc, Versionstamp: string(vs)}
			if n, err := kv.DecodeCounter(m.Value); err == nil && bytes.Equal(kv.EncodeCounter(n), m.Value) {
				rec.Counter = &n
			} else {
				rec.Value = m.Value
			}
			item, err := attributevalue.MarshalMap(rec)
			if err != nil {
				return nil, nil, kv.NewEngineError("commit", false, fmt.Errorf("marshal item %s: %w", m.Key, err))
			}
			items = append(items, types.TransactWriteItem{Put: &types.Put{
				TableName:                 aws.String(e.table),
				Item:                      item,
				ConditionExpression:       cond.expression(),
				ExpressionAttributeNames:  cond.attributeNames(),
				ExpressionAttributeValues: cond.attributeValues(),
			}})
		case kv.MutationDelete:
			items = append(items, types.TransactWriteItem{Delete: &types.Delete{
				TableName:                 aws.String(e.table),
				Key:                       e.itemKey(enc),
				ConditionExpression:       cond.expression(),
				ExpressionAttributeNames:  cond.attributeNames(),
				ExpressionAttributeValues: cond.attributeValues(),
			}})
		case kv.MutationSum:
			action.sum = true
			cond.and("attribute_not_exists(#v)", "#v", "v", "", nil)
			cond.names["#n"] = "n"
			cond.names["#vs"] = "vs"
			cond.values[":d"] = &types.AttributeValueMemberN{Value: strconv.FormatUint(m.Delta, 10)}
			cond.values[":newvs"] = &types.AttributeValueMemberS{Value: string(vs)}
			items = append(items, types.TransactWriteItem{Update: &types.Update{
				TableName:                           aws.String(e.table),
				Key:                                 e.itemKey(enc),
				UpdateExpression:                    aws.String("ADD #n :d SET #vs = :newvs"),
				ConditionExpression:                 cond.expression(),
				ExpressionAttributeNames:            cond.attributeNames(),
				ExpressionAttributeValues:           cond.attributeValues(),
				ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
			}})
		default:
			return nil, nil, kv.NewEngineError("commit", false, fmt.Errorf("unknown mutation kind %d", m.Kind))
		}
		actions = append(actions, action)
	}

	// checks of keys the batch does not write
	for _, c := range checks {
		if _, pending := expected[string(c.Key.Encode())]; !pending {
			continue
		}
		cond := newDynamoCondition(true, c.Versionstamp)
		items = append(items, types.TransactWriteItem{ConditionCheck: &types.ConditionCheck{
			TableName:                 aws.String(e.table),
			Key:                       e.itemKey(c.Key.Encode()),
			ConditionExpression:       cond.expression(),
			ExpressionAttributeNames:  cond.attributeNames(),
			ExpressionAttributeValues: cond.attributeValues(),
		}})
		actions = append(actions, dynamoAction{key: c.Key, checked: true, expected: c.Versionstamp})
	}

	if len(items) > maxTransactItems {
		return nil, nil, fmt.Errorf("%w: %d transaction items (max %d)", kv.ErrBatchTooLarge, len(items), maxTransactItems)
	}

	return items, actions, nil
}

// dynamoCondition accumulates a condition expression joined with AND.
type dynamoCondition struct {
	clauses []string
	names   map[string]string
	values  map[string]types.AttributeValue
}

func newDynamoCondition(checked bool, want kv.Versionstamp) *dynamoCondition {
	c := &dynamoCondition{names: map[string]string{}, values: map[string]types.AttributeValue{}}
	if !checked {
		return c
	}
	if want == "" {
		c.and("attribute_not_exists(#sk)", "#sk", "sk", "", nil)
		return c
	}
	c.and("#vs = :expected", "#vs", "vs", ":expected", &types.AttributeValueMemberS{Value: string(want)})
	return c
}

func (c *dynamoCondition) and(clause, name, attr, placeholder string, value types.AttributeValue) {
	c.clauses = append(c.clauses, clause)
	c.names[name] = attr
	if placeholder != "" {
		c.values[placeholder] = value
	}
}

func (c *dynamoCondition) expression() *string {
	if len(c.clauses) == 0 {
		return nil
	}
	expr := c.clauses[0]
	for _, clause := range c.clauses[1:] {
		expr += " AND " + clause
	}
	return aws.String(expr)
}

// DynamoDB rejects empty attribute maps.
func (c *dynamoCondition) attributeNames() map[string]string {
	if len(c.names) == 0 {
		return nil
	}
	return c.names
}

func (c *dynamoCondition) attributeValues() map[string]types.AttributeValue {
	if len(c.values) == 0 {
		return nil
	}
	return c.values
}

// mapDynamoTransactionError turns a cancelled transaction into kv errors.
// It returns nil for errors it does not recognise.
func mapDynamoTransactionError(err error, actions []dynamoAction) error {
	var txErr *types.TransactionCanceledException
	if !errors.As(err, &txErr) {
		return nil
	}

	for i, reason := range txErr.CancellationReasons {
		if reason.Code == nil || i >= len(actions) {
			continue
		}
		switch *reason.Code {
		case "ConditionalCheckFailed":
			action := actions[i]
			if action.sum && !sumCheckFailed(action, reason.Item) {
				return fmt.Errorf("sum on %s: %w", action.key, kv.ErrInvalidSum)
			}
			return kv.ErrConflict
		case "TransactionConflict":
			return kv.NewEngineError("commit", true, err)
		}
	}

	return nil
}

// sumCheckFailed reports whether the versionstamp check of a sum failed,
// as opposed to its counter condition.
func sumCheckFailed(action dynamoAction, old map[string]types.AttributeValue) bool {
	if !action.checked {
		return false
	}
	if old == nil {
		return action.expected != ""
	}
	var rec dynamoRecord
	if err := attributevalue.UnmarshalMap(old, &rec); err != nil {
		return true
	}
	return kv.Versionstamp(rec.Versionstamp) != action.expected
}

func (e *dynamoEngine) Close() error {
	return nil
}

func isDynamoRetryable(err error) bool {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.ErrorCode() {
	case "ProvisionedThroughputExceededException",
		"RequestLimitExceeded",
		"ThrottlingException",
		"InternalServerError",
		"ServiceUnavailable",
		"TransactionInProgressException":
		return true
	}
	return false
}
