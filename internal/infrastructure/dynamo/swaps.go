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

// SwapRepo provides typed DynamoDB operations for the swaps table.
type SwapRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSwapRepo(client *dynamodb.Client, tableName string) *SwapRepo {
	return &SwapRepo{client: client, tableName: tableName}
}

func (r *SwapRepo) Put(ctx context.Context, s *domain.SwapRequest) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SwapRepo) Get(ctx context.Context, swapID string) (*domain.SwapRequest, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("swap_id", swapID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("swap not found: %w", domain.ErrNotFound)
	}
	var s domain.SwapRequest
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ListByOwner returns swap requests targeting the user's books.
func (r *SwapRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.SwapRequest, error) {
	return r.listByGSI(ctx, "owner_id-index", "owner_id", ownerID)
}

// ListByRequester returns swap requests the user initiated.
func (r *SwapRepo) ListByRequester(ctx context.Context, requesterID string) ([]domain.SwapRequest, error) {
	return r.listByGSI(ctx, "requester_id-index", "requester_id", requesterID)
}

func (r *SwapRepo) listByGSI(ctx context.Context, index, attr, value string) ([]domain.SwapRequest, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(index),
		KeyConditionExpression:   aws.String("#a = :v"),
		ExpressionAttributeNames: map[string]string{"#a": attr},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":v": &types.AttributeValueMemberS{Value: value},
		},
	})
	if err != nil {
		return nil, err
	}
	var swaps []domain.SwapRequest
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &swaps); err != nil {
		return nil, err
	}
	return swaps, nil
}

// SetStatus transitions a swap to the given status.
func (r *SwapRepo) SetStatus(ctx context.Context, swapID string, status domain.SwapStatus) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldStatus:    string(status),
		fieldUpdatedAt: time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("swap_id", swapID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}
