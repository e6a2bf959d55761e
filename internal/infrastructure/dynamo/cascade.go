package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// transactLimit is the DynamoDB TransactWriteItems item ceiling.
const transactLimit = 100

// CascadeWriter applies the profile-neighborhood cascade: when a user's
// neighborhood changes, the profile row and the neighborhood copies on every
// book record the user owns are updated together. Each chunk is written with
// TransactWriteItems, so within a chunk the update is all-or-nothing; a
// failure leaves earlier chunks applied and the whole cascade is safe to
// retry because every write is idempotent.
type CascadeWriter struct {
	client     *dynamodb.Client
	usersTable string
	ownedTable string
	wantedTable string
}

func NewCascadeWriter(client *dynamodb.Client, usersTable, ownedTable, wantedTable string) *CascadeWriter {
	return &CascadeWriter{
		client:      client,
		usersTable:  usersTable,
		ownedTable:  ownedTable,
		wantedTable: wantedTable,
	}
}

// CascadeNeighborhood updates the user's neighborhood plus every given owned
// and wanted book in transactional chunks. Book ID slices must belong to the
// same user; callers fetch them immediately before the cascade.
func (w *CascadeWriter) CascadeNeighborhood(ctx context.Context, userID, neighborhood string, ownedBookIDs, wantedBookIDs []string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	items := make([]types.TransactWriteItem, 0, 1+len(ownedBookIDs)+len(wantedBookIDs))
	items = append(items, w.updateItem(w.usersTable, "user_id", userID, map[string]interface{}{
		fieldNeighborhood: neighborhood,
		fieldUpdatedAt:    now,
	}))
	for _, id := range ownedBookIDs {
		items = append(items, w.updateItem(w.ownedTable, "book_id", id, map[string]interface{}{
			fieldNeighborhood:      neighborhood,
			fieldOwnerNeighborhood: neighborhood,
			fieldUpdatedAt:         now,
		}))
	}
	for _, id := range wantedBookIDs {
		items = append(items, w.updateItem(w.wantedTable, "book_id", id, map[string]interface{}{
			fieldNeighborhood: neighborhood,
			fieldUpdatedAt:    now,
		}))
	}

	for start := 0; start < len(items); start += transactLimit {
		end := start + transactLimit
		if end > len(items) {
			end = len(items)
		}
		_, err := w.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items[start:end],
		})
		if err != nil {
			return fmt.Errorf("neighborhood cascade (items %d-%d of %d): %w", start, end-1, len(items), err)
		}
	}
	return nil
}

func (w *CascadeWriter) updateItem(table, keyName, keyValue string, updates map[string]interface{}) types.TransactWriteItem {
	// buildUpdateExpr only fails on an empty map or an unmarshalable value;
	// neither can happen with the fixed string fields used here.
	ue, _ := buildUpdateExpr(updates)
	return types.TransactWriteItem{
		Update: &types.Update{
			TableName:                 aws.String(table),
			Key:                       strKey(keyName, keyValue),
			UpdateExpression:          aws.String(ue.Expr),
			ExpressionAttributeNames:  ue.Names,
			ExpressionAttributeValues: ue.Values,
		},
	}
}
