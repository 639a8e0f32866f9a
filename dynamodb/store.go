// Package dynamostore provides a durable statementq store on Amazon DynamoDB.
//
// The table uses "namespace" (S) as partition key and "id" (S) as sort key. When a TTL
// is configured, items carry an "expires_at" epoch-seconds attribute suitable for
// DynamoDB's time-to-live feature.
package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/velmie/statementq"
)

const defaultNamespace = "default"

var (
	// ErrClientRequired is returned when New is called with a nil client.
	ErrClientRequired = errors.New("statementq dynamodb: client is required")
	// ErrTableRequired is returned when no table name is configured.
	ErrTableRequired = errors.New("statementq dynamodb: table is required")
)

// API is the subset of the DynamoDB client used by the store.
type API interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	dynamodb.QueryAPIClient
}

type item struct {
	Namespace   string `dynamodbav:"namespace"`
	ID          string `dynamodbav:"id"`
	Kind        string `dynamodbav:"kind,omitempty"`
	Record      string `dynamodbav:"record"`
	Attempts    int    `dynamodbav:"attempts"`
	LastAttempt string `dynamodbav:"lastAttempt"`
	ExpiresAt   int64  `dynamodbav:"expires_at,omitempty"`
}

// Store implements statementq.Store on DynamoDB.
type Store struct {
	client    API
	table     string
	namespace string
	ttl       time.Duration
	consist   bool
}

var _ statementq.Store = (*Store)(nil)

// Option configures the DynamoDB store.
type Option func(*Store)

// WithNamespace sets the partition key value owned by this store.
func WithNamespace(namespace string) Option {
	return func(s *Store) {
		s.namespace = namespace
	}
}

// WithTTL sets expires_at on written items.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithConsistentReads enables strongly consistent Get and List.
func WithConsistentReads(enabled bool) Option {
	return func(s *Store) {
		s.consist = enabled
	}
}

// New constructs a DynamoDB store on table.
func New(client API, table string, opts ...Option) (*Store, error) {
	if client == nil {
		return nil, ErrClientRequired
	}
	if table == "" {
		return nil, ErrTableRequired
	}
	s := &Store{client: client, table: table, namespace: defaultNamespace, consist: true}
	for _, opt := range opts {
		opt(s)
	}
	if s.namespace == "" {
		s.namespace = defaultNamespace
	}

	return s, nil
}

// NewClient loads the default AWS configuration and returns a DynamoDB client.
// A non-empty endpoint overrides the service URL (DynamoDB Local, LocalStack).
func NewClient(ctx context.Context, region, endpoint string) (*dynamodb.Client, error) {
	var loadOpts []func(*config.LoadOptions) error
	if region != "" {
		loadOpts = append(loadOpts, config.WithRegion(region))
	}
	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("statementq dynamodb: load aws config: %w", err)
	}

	return dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	}), nil
}

func (s *Store) key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"namespace": &types.AttributeValueMemberS{Value: s.namespace},
		"id":        &types.AttributeValueMemberS{Value: id},
	}
}

// Put implements statementq.Store.
func (s *Store) Put(ctx context.Context, record statementq.Record) error {
	it := item{
		Namespace:   s.namespace,
		ID:          record.ID,
		Kind:        record.Kind,
		Record:      string(record.Payload),
		Attempts:    record.Attempts,
		LastAttempt: record.LastAttemptAt.UTC().Format(time.RFC3339Nano),
	}
	if s.ttl > 0 {
		it.ExpiresAt = record.LastAttemptAt.Add(s.ttl).Unix()
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return fmt.Errorf("statementq dynamodb: marshal %s: %w", record.ID, err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("statementq dynamodb: put %s: %w", record.ID, err)
	}

	return nil
}

// Get implements statementq.Store.
func (s *Store) Get(ctx context.Context, id string) (statementq.Record, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table),
		Key:            s.key(id),
		ConsistentRead: aws.Bool(s.consist),
	})
	if err != nil {
		return statementq.Record{}, fmt.Errorf("statementq dynamodb: get %s: %w", id, err)
	}
	if out.Item == nil {
		return statementq.Record{}, statementq.ErrRecordNotFound
	}

	return decodeItem(out.Item)
}

// Remove implements statementq.Store.
func (s *Store) Remove(ctx context.Context, id string) error {
	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(id),
	}); err != nil {
		return fmt.Errorf("statementq dynamodb: delete %s: %w", id, err)
	}

	return nil
}

// List implements statementq.Store. Undecodable items are reported through a
// statementq.InvalidRecordsError returned with the decoded records.
func (s *Store) List(ctx context.Context) ([]statementq.Record, error) {
	paginator := dynamodb.NewQueryPaginator(s.client, &dynamodb.QueryInput{
		TableName:              aws.String(s.table),
		KeyConditionExpression: aws.String("#ns = :ns"),
		ExpressionAttributeNames: map[string]string{
			"#ns": "namespace",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":ns": &types.AttributeValueMemberS{Value: s.namespace},
		},
		ConsistentRead: aws.Bool(s.consist),
	})

	var (
		records []statementq.Record
		invalid statementq.InvalidRecordsError
	)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("statementq dynamodb: query: %w", err)
		}
		for _, av := range page.Items {
			record, err := decodeItem(av)
			if err != nil {
				invalid.Add(itemID(av), err)
				continue
			}
			records = append(records, record)
		}
	}
	statementq.SortRecords(records)

	return records, invalid.Err()
}

// itemID reads the sort key of an item that failed to decode.
func itemID(av map[string]types.AttributeValue) string {
	if id, ok := av["id"].(*types.AttributeValueMemberS); ok {
		return id.Value
	}

	return ""
}

func decodeItem(av map[string]types.AttributeValue) (statementq.Record, error) {
	var it item
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return statementq.Record{}, fmt.Errorf("%w: %v", statementq.ErrInvalidRecord, err)
	}
	lastAttempt, err := time.Parse(time.RFC3339Nano, it.LastAttempt)
	if err != nil {
		return statementq.Record{}, fmt.Errorf("%w: %s: %v", statementq.ErrInvalidRecord, it.ID, err)
	}

	return statementq.Record{
		ID:            it.ID,
		Kind:          it.Kind,
		Payload:       []byte(it.Record),
		Attempts:      it.Attempts,
		LastAttemptAt: lastAttempt.UTC(),
	}, nil
}
