package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-api-pool/internal/domain"
)

// Sent repos are append-only: delivery workers write one row per delivered
// message and nothing reads them back through the API.

type EmailSentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEmailSentRepo(client *dynamodb.Client, tableName string) *EmailSentRepo {
	return &EmailSentRepo{client: client, tableName: tableName}
}

func (r *EmailSentRepo) Put(ctx context.Context, sent *domain.EmailSent) error {
	av, err := attributevalue.MarshalMap(sent)
	if err != nil {
		return fmt.Errorf("marshal email sent: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

type SMSSentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSMSSentRepo(client *dynamodb.Client, tableName string) *SMSSentRepo {
	return &SMSSentRepo{client: client, tableName: tableName}
}

func (r *SMSSentRepo) Put(ctx context.Context, sent *domain.SMSSent) error {
	av, err := attributevalue.MarshalMap(sent)
	if err != nil {
		return fmt.Errorf("marshal sms sent: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

type PushSentRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPushSentRepo(client *dynamodb.Client, tableName string) *PushSentRepo {
	return &PushSentRepo{client: client, tableName: tableName}
}

func (r *PushSentRepo) Put(ctx context.Context, sent *domain.PushSent) error {
	av, err := attributevalue.MarshalMap(sent)
	if err != nil {
		return fmt.Errorf("marshal push sent: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}
