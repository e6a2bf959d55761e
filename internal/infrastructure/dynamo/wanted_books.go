package dynamo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bookswap-api/internal/domain"
)

// WantedBookRepo provides typed DynamoDB operations for the wanted-books table.
type WantedBookRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewWantedBookRepo(client *dynamodb.Client, tableName string) *WantedBookRepo {
	return &WantedBookRepo{client: client, tableName: tableName}
}

func (r *WantedBookRepo) Put(ctx context.Context, b *domain.WantedBook) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal wanted book: %w", err)
	}
	item["title_lc"] = &types.AttributeValueMemberS{Value: strings.ToLower(b.Title)}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *WantedBookRepo) Get(ctx context.Context, bookID string) (*domain.WantedBook, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("book_id", bookID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("book not found: %w", domain.ErrNotFound)
	}
	var b domain.WantedBook
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByUser returns all enabled wishlist entries of one user via the user GSI.
func (r *WantedBookRepo) ListByUser(ctx context.Context, userID string) ([]domain.WantedBook, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("user_id-index"),
		KeyConditionExpression: aws.String("user_id = :uid"),
		FilterExpression:       aws.String("enable = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":uid": &types.AttributeValueMemberS{Value: userID},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var books []domain.WantedBook
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ListByTitle returns enabled wishlist entries whose title equals title
// case-insensitively, via the title_lc GSI. Used to notify wishlist holders
// when a matching book is listed.
func (r *WantedBookRepo) ListByTitle(ctx context.Context, title string) ([]domain.WantedBook, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("title_lc-index"),
		KeyConditionExpression: aws.String("title_lc = :t"),
		FilterExpression:       aws.String("enable = :e"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: strings.ToLower(title)},
			":e": &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var books []domain.WantedBook
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ListAll returns every enabled wishlist entry, paging through the table.
func (r *WantedBookRepo) ListAll(ctx context.Context) ([]domain.WantedBook, error) {
	var books []domain.WantedBook
	var startKey map[string]types.AttributeValue
	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("enable = :t"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":t": &types.AttributeValueMemberBOOL{Value: true},
			},
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, err
		}
		var page []domain.WantedBook
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &page); err != nil {
			return nil, err
		}
		books = append(books, page...)
		if out.LastEvaluatedKey == nil {
			return books, nil
		}
		startKey = out.LastEvaluatedKey
	}
}

func (r *WantedBookRepo) Update(ctx context.Context, bookID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC().Format(time.RFC3339)
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("book_id", bookID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *WantedBookRepo) SoftDelete(ctx context.Context, bookID string) error {
	return r.Update(ctx, bookID, map[string]interface{}{fieldEnable: false})
}
