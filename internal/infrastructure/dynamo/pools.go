package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-api-pool/internal/domain"
)

// poolTable holds the status bookkeeping shared by the three pool repos.
// Rows are keyed by item_id; statuses only ever move
// PENDING/ERROR -> PROCESSING -> (deleted | ERROR).
type poolTable struct {
	client    *dynamodb.Client
	tableName string
}

// Claim flips a row to PROCESSING iff it is still PENDING or ERROR.
// The conditional write makes the claim atomic: a second worker invocation
// racing on the same row gets domain.ErrConflict and skips it.
func (t *poolTable) Claim(ctx context.Context, itemID string) error {
	_, err := t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(t.tableName),
		Key:                 strKey("item_id", itemID),
		UpdateExpression:    aws.String("SET #s = :proc, updated_at = :now"),
		ConditionExpression: aws.String("#s = :p OR #s = :e"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":proc": &types.AttributeValueMemberS{Value: domain.PoolStatusProcessing},
			":p":    &types.AttributeValueMemberS{Value: domain.PoolStatusPending},
			":e":    &types.AttributeValueMemberS{Value: domain.PoolStatusError},
			":now":  &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("pool item already claimed: %w", domain.ErrConflict)
	}
	return err
}

// MarkError records a failed delivery attempt and puts the row back in ERROR
// so a later batch retries it.
func (t *poolTable) MarkError(ctx context.Context, itemID string, attempts int) error {
	ue, err := buildUpdateExpr(map[string]interface{}{
		fieldStatus:       domain.PoolStatusError,
		fieldSendAttempts: attempts,
		"updated_at":      time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return err
	}
	_, err = t.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(t.tableName),
		Key:                       strKey("item_id", itemID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	return err
}

// Delete removes a row from the pool. Called both on successful delivery
// (the sent log is then the only record) and on attempt exhaustion.
func (t *poolTable) Delete(ctx context.Context, itemID string) error {
	_, err := t.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(t.tableName),
		Key:       strKey("item_id", itemID),
	})
	return err
}

// scanDue returns up to limit raw rows whose status is PENDING or ERROR and
// whose send_time has passed. No ordering beyond the filter.
func (t *poolTable) scanDue(ctx context.Context, now time.Time, limit int32) ([]map[string]types.AttributeValue, error) {
	out, err := t.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(t.tableName),
		FilterExpression: aws.String("(#s = :p OR #s = :e) AND send_time <= :now"),
		ExpressionAttributeNames: map[string]string{
			"#s": fieldStatus,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":p":   &types.AttributeValueMemberS{Value: domain.PoolStatusPending},
			":e":   &types.AttributeValueMemberS{Value: domain.PoolStatusError},
			":now": &types.AttributeValueMemberS{Value: now.UTC().Format(time.RFC3339)},
		},
		Limit: aws.Int32(limit),
	})
	if err != nil {
		return nil, err
	}
	return out.Items, nil
}

// EmailPoolRepo provides typed DynamoDB operations for the email pool table.
type EmailPoolRepo struct {
	poolTable
}

func NewEmailPoolRepo(client *dynamodb.Client, tableName string) *EmailPoolRepo {
	return &EmailPoolRepo{poolTable{client: client, tableName: tableName}}
}

func (r *EmailPoolRepo) Put(ctx context.Context, item *domain.EmailPoolItem) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal email pool item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

func (r *EmailPoolRepo) ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.EmailPoolItem, error) {
	raw, err := r.scanDue(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	var items []domain.EmailPoolItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// SMSPoolRepo provides typed DynamoDB operations for the SMS pool table.
type SMSPoolRepo struct {
	poolTable
}

func NewSMSPoolRepo(client *dynamodb.Client, tableName string) *SMSPoolRepo {
	return &SMSPoolRepo{poolTable{client: client, tableName: tableName}}
}

func (r *SMSPoolRepo) Put(ctx context.Context, item *domain.SMSPoolItem) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal sms pool item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

func (r *SMSPoolRepo) ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.SMSPoolItem, error) {
	raw, err := r.scanDue(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	var items []domain.SMSPoolItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// PushPoolRepo provides typed DynamoDB operations for the push pool table.
type PushPoolRepo struct {
	poolTable
}

func NewPushPoolRepo(client *dynamodb.Client, tableName string) *PushPoolRepo {
	return &PushPoolRepo{poolTable{client: client, tableName: tableName}}
}

func (r *PushPoolRepo) Put(ctx context.Context, item *domain.PushPoolItem) error {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal push pool item: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

func (r *PushPoolRepo) ListDue(ctx context.Context, now time.Time, limit int32) ([]domain.PushPoolItem, error) {
	raw, err := r.scanDue(ctx, now, limit)
	if err != nil {
		return nil, err
	}
	var items []domain.PushPoolItem
	if err := attributevalue.UnmarshalListOfMaps(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}
