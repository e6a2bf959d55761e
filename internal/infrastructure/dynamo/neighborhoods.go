package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/bookswap-api/internal/domain"
)

// NeighborhoodRepo provides typed DynamoDB operations for the admin-managed
// neighborhoods reference table.
type NeighborhoodRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNeighborhoodRepo(client *dynamodb.Client, tableName string) *NeighborhoodRepo {
	return &NeighborhoodRepo{client: client, tableName: tableName}
}

func (r *NeighborhoodRepo) Scan(ctx context.Context) ([]domain.Neighborhood, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return nil, err
	}
	var hoods []domain.Neighborhood
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &hoods); err != nil {
		return nil, err
	}
	return hoods, nil
}

func (r *NeighborhoodRepo) Get(ctx context.Context, neighborhoodID string) (*domain.Neighborhood, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("neighborhood_id", neighborhoodID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("neighborhood not found: %w", domain.ErrNotFound)
	}
	var n domain.Neighborhood
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *NeighborhoodRepo) Put(ctx context.Context, n *domain.Neighborhood) error {
	item, err := attributevalue.MarshalMap(n)
	if err != nil {
		return fmt.Errorf("marshal neighborhood: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *NeighborhoodRepo) Update(ctx context.Context, neighborhoodID string, updates map[string]interface{}) error {
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("neighborhood_id", neighborhoodID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

func (r *NeighborhoodRepo) HardDelete(ctx context.Context, neighborhoodID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("neighborhood_id", neighborhoodID),
	})
	return err
}
