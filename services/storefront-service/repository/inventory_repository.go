package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// StockLevel is one row of the inventory table.
type StockLevel struct {
	ProductID string `dynamodbav:"product_id" json:"productId"`
	Available int    `dynamodbav:"available" json:"available"`
	Reserved  int    `dynamodbav:"reserved" json:"reserved"`
	UpdatedAt string `dynamodbav:"updated_at" json:"updatedAt"`
}

// StockHold records the units one order holds on one product. Holds share
// the inventory table under a "hold#" key so they move in the same
// transaction as the stock row.
type StockHold struct {
	Key       string `dynamodbav:"product_id"`
	Ref       string `dynamodbav:"hold_ref"`
	ProductID string `dynamodbav:"sku"`
	Quantity  int    `dynamodbav:"qty"`
	CreatedAt string `dynamodbav:"created_at"`
}

func holdKey(ref, productID string) string {
	return "hold#" + ref + "#" + productID
}

// InventoryRepository tracks stock for catalog products. Every reservation is
// recorded under a reference (one per order), so releasing or committing it
// twice, or releasing what was never reserved, returns ErrNotReserved and
// leaves stock untouched.
type InventoryRepository interface {
	Get(ctx context.Context, productID string) (*StockLevel, error)
	// Set overwrites the available quantity and keeps outstanding holds.
	Set(ctx context.Context, productID string, available int) error
	// Reserve moves qty units from available to reserved under ref.
	// A second reservation of the same product under ref is ErrConflict.
	Reserve(ctx context.Context, ref, productID string, qty int) error
	// Release returns the units held under ref to available.
	Release(ctx context.Context, ref, productID string) error
	// Commit drops the hold under ref; the units have left the shop.
	Commit(ctx context.Context, ref, productID string) error
}

// DynamoAPI is the slice of *dynamodb.Client the inventory table needs.
type DynamoAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, params *dynamodb.TransactWriteItemsInput, optFns ...func(*dynamodb.Options)) (*dynamodb.TransactWriteItemsOutput, error)
}

type DynamoInventoryRepository struct {
	client DynamoAPI
	table  string
	now    func() time.Time
}

func NewInventoryRepository(client DynamoAPI, table string) *DynamoInventoryRepository {
	return &DynamoInventoryRepository{client: client, table: table, now: time.Now}
}

func (r *DynamoInventoryRepository) key(id string) (map[string]types.AttributeValue, error) {
	return attributevalue.MarshalMap(map[string]string{"product_id": id})
}

func (r *DynamoInventoryRepository) stamp() string {
	return r.now().UTC().Format(time.RFC3339)
}

func (r *DynamoInventoryRepository) Get(ctx context.Context, productID string) (*StockLevel, error) {
	key, err := r.key(productID)
	if err != nil {
		return nil, fmt.Errorf("marshal key: %w", err)
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{TableName: &r.table, Key: key})
	if err != nil {
		return nil, fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return nil, ErrNotFound
	}
	var level StockLevel
	if err := attributevalue.UnmarshalMap(out.Item, &level); err != nil {
		return nil, fmt.Errorf("unmarshal stock level: %w", err)
	}
	return &level, nil
}

func (r *DynamoInventoryRepository) Set(ctx context.Context, productID string, available int) error {
	key, err := r.key(productID)
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	values, err := attributevalue.MarshalMap(map[string]interface{}{
		":avail": available,
		":zero":  0,
		":now":   r.stamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}
	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 &r.table,
		Key:                       key,
		UpdateExpression:          aws.String("SET #avail = :avail, #resv = if_not_exists(#resv, :zero), updated_at = :now"),
		ExpressionAttributeNames:  map[string]string{"#avail": "available", "#resv": "reserved"},
		ExpressionAttributeValues: values,
	})
	if err != nil {
		return fmt.Errorf("dynamodb UpdateItem failed: %w", err)
	}
	return nil
}

func (r *DynamoInventoryRepository) Reserve(ctx context.Context, ref, productID string, qty int) error {
	key, err := r.key(productID)
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	values, err := attributevalue.MarshalMap(map[string]interface{}{
		":qty": qty,
		":neg": -qty,
		":now": r.stamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}
	hold, err := attributevalue.MarshalMap(StockHold{
		Key:       holdKey(ref, productID),
		Ref:       ref,
		ProductID: productID,
		Quantity:  qty,
		CreatedAt: r.stamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal hold: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Update: &types.Update{
				TableName:                 &r.table,
				Key:                       key,
				UpdateExpression:          aws.String("SET #avail = #avail + :neg, #resv = #resv + :qty, updated_at = :now"),
				ConditionExpression:       aws.String("attribute_exists(product_id) AND #avail >= :qty"),
				ExpressionAttributeNames:  map[string]string{"#avail": "available", "#resv": "reserved"},
				ExpressionAttributeValues: values,
			}},
			{Put: &types.Put{
				TableName:           &r.table,
				Item:                hold,
				ConditionExpression: aws.String("attribute_not_exists(product_id)"),
			}},
		},
	})
	switch failed := conditionFailures(err); {
	case err == nil:
		return nil
	case failed[0]:
		return ErrInsufficientStock
	case failed[1]:
		return ErrConflict
	}
	return fmt.Errorf("dynamodb reserve failed: %w", err)
}

func (r *DynamoInventoryRepository) Release(ctx context.Context, ref, productID string) error {
	return r.settle(ctx, ref, productID, true)
}

func (r *DynamoInventoryRepository) Commit(ctx context.Context, ref, productID string) error {
	return r.settle(ctx, ref, productID, false)
}

// settle deletes the hold under ref and lowers reserved by its quantity.
// When restock is set the units go back to available.
func (r *DynamoInventoryRepository) settle(ctx context.Context, ref, productID string, restock bool) error {
	holdK, err := r.key(holdKey(ref, productID))
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      &r.table,
		Key:            holdK,
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("dynamodb GetItem failed: %w", err)
	}
	if len(out.Item) == 0 {
		return ErrNotReserved
	}
	var hold StockHold
	if err := attributevalue.UnmarshalMap(out.Item, &hold); err != nil {
		return fmt.Errorf("unmarshal hold: %w", err)
	}

	stockK, err := r.key(productID)
	if err != nil {
		return fmt.Errorf("marshal key: %w", err)
	}
	values, err := attributevalue.MarshalMap(map[string]interface{}{
		":qty": hold.Quantity,
		":neg": -hold.Quantity,
		":now": r.stamp(),
	})
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}
	update := "SET #resv = #resv + :neg, updated_at = :now"
	names := map[string]string{"#resv": "reserved"}
	if restock {
		update = "SET #avail = #avail + :qty, #resv = #resv + :neg, updated_at = :now"
		names["#avail"] = "available"
	}
	holdValues, err := attributevalue.MarshalMap(map[string]interface{}{":qty": hold.Quantity})
	if err != nil {
		return fmt.Errorf("marshal values: %w", err)
	}

	_, err = r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: []types.TransactWriteItem{
			{Delete: &types.Delete{
				TableName:                 &r.table,
				Key:                       holdK,
				ConditionExpression:       aws.String("attribute_exists(product_id) AND qty = :qty"),
				ExpressionAttributeValues: holdValues,
			}},
			{Update: &types.Update{
				TableName:                 &r.table,
				Key:                       stockK,
				UpdateExpression:          aws.String(update),
				ConditionExpression:       aws.String("#resv >= :qty"),
				ExpressionAttributeNames:  names,
				ExpressionAttributeValues: values,
			}},
		},
	})
	switch failed := conditionFailures(err); {
	case err == nil:
		return nil
	case failed[0]:
		return ErrNotReserved
	}
	return fmt.Errorf("dynamodb settle failed: %w", err)
}

// conditionFailures reports, per transaction item, whether its condition
// check is what cancelled the transaction.
func conditionFailures(err error) [2]bool {
	var out [2]bool
	var tce *types.TransactionCanceledException
	if !errors.As(err, &tce) {
		return out
	}
	for i, reason := range tce.CancellationReasons {
		if i < len(out) && aws.ToString(reason.Code) == "ConditionalCheckFailed" {
			out[i] = true
		}
	}
	return out
}
