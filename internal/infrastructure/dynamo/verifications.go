package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-api-pool/internal/domain"
)

// VerificationRepo manages OTP and email verification tokens.
// PK: user_id, SK: type ("otp" | "email")
type VerificationRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewVerificationRepo(client *dynamodb.Client, tableName string) *VerificationRepo {
	return &VerificationRepo{client: client, tableName: tableName}
}

func (r *VerificationRepo) Put(ctx context.Context, v *domain.UserVerification) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal verification: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *VerificationRepo) Get(ctx context.Context, userID, verType string) (*domain.UserVerification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "type", verType),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
	}
	var v domain.UserVerification
	if err := attributevalue.UnmarshalMap(out.Item, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *VerificationRepo) Delete(ctx context.Context, userID, verType string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("user_id", userID, "type", verType),
	})
	return err
}

// GetByCode looks up a verification row by exact code value via the
// code-index GSI. Used by flows where only the code is presented
// (password-recovery validate-code). The type match happens over the
// queried items rather than in a FilterExpression: DynamoDB applies
// Limit before the filter, so a limited filtered query can miss a
// matching row when the same code exists under another type.
func (r *VerificationRepo) GetByCode(ctx context.Context, code, verType string) (*domain.UserVerification, error) {
	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String("code-index"),
		KeyConditionExpression: aws.String("code = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: code},
		},
	})
	if err != nil {
		return nil, err
	}
	return pickVerificationByType(out.Items, verType)
}

func pickVerificationByType(items []map[string]types.AttributeValue, verType string) (*domain.UserVerification, error) {
	for _, item := range items {
		var v domain.UserVerification
		if err := attributevalue.UnmarshalMap(item, &v); err != nil {
			return nil, err
		}
		if v.Type == verType {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("verification not found: %w", domain.ErrNotFound)
}
