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

// OwnedBookRepo provides typed DynamoDB operations for the owned-books table.
// A lowercased copy of the title is stored under title_lc so wishlist holders
// can be found by exact-title GSI lookup when a book is listed.
type OwnedBookRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOwnedBookRepo(client *dynamodb.Client, tableName string) *OwnedBookRepo {
	return &OwnedBookRepo{client: client, tableName: tableName}
}

func (r *OwnedBookRepo) Put(ctx context.Context, b *domain.OwnedBook) error {
	item, err := attributevalue.MarshalMap(b)
	if err != nil {
		return fmt.Errorf("marshal owned book: %w", err)
	}
	item["title_lc"] = &types.AttributeValueMemberS{Value: strings.ToLower(b.Title)}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OwnedBookRepo) Get(ctx context.Context, bookID string) (*domain.OwnedBook, error) {
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
	var b domain.OwnedBook
	if err := attributevalue.UnmarshalMap(out.Item, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// ListByOwner returns all enabled owned books of one user via the owner GSI.
func (r *OwnedBookRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.OwnedBook, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("owner_id-index"),
		KeyConditionExpression: aws.String("owner_id = :oid"),
		FilterExpression:       aws.String("enable = :t"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":oid": &types.AttributeValueMemberS{Value: ownerID},
			":t":   &types.AttributeValueMemberBOOL{Value: true},
		},
	})
	if err != nil {
		return nil, err
	}
	var books []domain.OwnedBook
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &books); err != nil {
		return nil, err
	}
	return books, nil
}

// ListAll returns every enabled owned book. Match computation needs the whole
// corpus; the table is expected to stay neighborhood-sized.
func (r *OwnedBookRepo) ListAll(ctx context.Context) ([]domain.OwnedBook, error) {
	var books []domain.OwnedBook
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
		var page []domain.OwnedBook
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

func (r *OwnedBookRepo) Update(ctx context.Context, bookID string, updates map[string]interface{}) error {
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

func (r *OwnedBookRepo) SoftDelete(ctx context.Context, bookID string) error {
	return r.Update(ctx, bookID, map[string]interface{}{fieldEnable: false})
}
