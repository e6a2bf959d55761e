package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bookswap-api/internal/domain"
)

// ChatRepo provides typed DynamoDB operations for the chats table.
type ChatRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewChatRepo(client *dynamodb.Client, tableName string) *ChatRepo {
	return &ChatRepo{client: client, tableName: tableName}
}

// PairKey builds the canonical sorted participant key for two user IDs.
func PairKey(a, b string) (userA, userB, key string) {
	if b < a {
		a, b = b, a
	}
	return a, b, a + "#" + b
}

func (r *ChatRepo) Put(ctx context.Context, c *domain.Chat) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal chat: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *ChatRepo) Get(ctx context.Context, chatID string) (*domain.Chat, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("chat_id", chatID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("chat not found: %w", domain.ErrNotFound)
	}
	var c domain.Chat
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// GetByPair returns the existing chat between two users, if any.
func (r *ChatRepo) GetByPair(ctx context.Context, userA, userB string) (*domain.Chat, error) {
	_, _, key := PairKey(userA, userB)
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("pair_key-index"),
		KeyConditionExpression: aws.String("pair_key = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: key},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Items) == 0 {
		return nil, fmt.Errorf("chat not found: %w", domain.ErrNotFound)
	}
	var c domain.Chat
	if err := attributevalue.UnmarshalMap(out.Items[0], &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ListByUser returns every chat the user takes part in, querying both sides
// of the sorted pair.
func (r *ChatRepo) ListByUser(ctx context.Context, userID string) ([]domain.Chat, error) {
	var chats []domain.Chat
	for _, index := range []struct{ name, attr string }{
		{"user_a-index", "user_a"},
		{"user_b-index", "user_b"},
	} {
		out, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:                aws.String(r.tableName),
			IndexName:                aws.String(index.name),
			KeyConditionExpression:   aws.String("#a = :uid"),
			ExpressionAttributeNames: map[string]string{"#a": index.attr},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":uid": &types.AttributeValueMemberS{Value: userID},
			},
		})
		if err != nil {
			return nil, err
		}
		var page []domain.Chat
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		chats = append(chats, page...)
	}
	return chats, nil
}

// Touch bumps updated_at so chat lists can sort by recent activity.
func (r *ChatRepo) Touch(ctx context.Context, chatID string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("chat_id", chatID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
