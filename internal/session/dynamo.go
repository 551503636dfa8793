package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/harborhealth/appointment-agent/internal/dialogue"
	"github.com/harborhealth/appointment-agent/pkg/logging"
)

type dynamoAPI interface {
	PutItem(context.Context, *dynamodb.PutItemInput, ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(context.Context, *dynamodb.GetItemInput, ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(context.Context, *dynamodb.DeleteItemInput, ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// sessionItem is the DynamoDB row. State travels as a nested document;
// expiresAt drives the table's TTL policy.
type sessionItem struct {
	ConversationID string          `dynamodbav:"conversationId"`
	State          *dialogue.State `dynamodbav:"state"`
	UpdatedAt      string          `dynamodbav:"updatedAt"`
	ExpiresAt      int64           `dynamodbav:"expiresAt"`
}

// DynamoStore keeps conversation state in a DynamoDB table keyed by
// conversation ID.
type DynamoStore struct {
	client    dynamoAPI
	tableName string
	ttl       time.Duration
	logger    *logging.Logger
}

var _ Store = (*DynamoStore)(nil)

// NewDynamoStore builds a DynamoDB-backed session store.
func NewDynamoStore(client dynamoAPI, tableName string, ttl time.Duration, logger *logging.Logger) *DynamoStore {
	if client == nil {
		panic("session: dynamodb client cannot be nil")
	}
	if tableName == "" {
		panic("session: table name cannot be empty")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &DynamoStore{
		client:    client,
		tableName: tableName,
		ttl:       ttl,
		logger:    logger,
	}
}

func (s *DynamoStore) Save(ctx context.Context, state *dialogue.State) error {
	if state == nil || state.ConversationID == "" {
		return errors.New("session: state with conversation ID required")
	}
	now := time.Now().UTC()
	item, err := attributevalue.MarshalMap(sessionItem{
		ConversationID: state.ConversationID,
		State:          state,
		UpdatedAt:      now.Format(time.RFC3339Nano),
		ExpiresAt:      now.Add(s.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("session: failed to marshal state: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("session: failed to persist state: %w", err)
	}
	return nil
}

func (s *DynamoStore) Load(ctx context.Context, conversationID string) (*dialogue.State, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"conversationId": &types.AttributeValueMemberS{Value: conversationID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("session: failed to fetch state: %w", err)
	}
	if out.Item == nil {
		return nil, ErrSessionNotFound
	}

	var item sessionItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("session: failed to decode state: %w", err)
	}
	if item.State == nil {
		return nil, ErrSessionNotFound
	}
	return item.State, nil
}

func (s *DynamoStore) Delete(ctx context.Context, conversationID string) error {
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"conversationId": &types.AttributeValueMemberS{Value: conversationID},
		},
	})
	if err != nil {
		return fmt.Errorf("session: failed to delete state: %w", err)
	}
	return nil
}
