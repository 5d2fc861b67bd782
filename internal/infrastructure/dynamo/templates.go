package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/go-api-pool/internal/domain"
)

type EmailTemplateRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewEmailTemplateRepo(client *dynamodb.Client, tableName string) *EmailTemplateRepo {
	return &EmailTemplateRepo{client: client, tableName: tableName}
}

func (r *EmailTemplateRepo) Get(ctx context.Context, templateID string) (*domain.EmailTemplate, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("template_id", templateID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("email template %q: %w", templateID, domain.ErrNotFound)
	}
	var tpl domain.EmailTemplate
	if err := attributevalue.UnmarshalMap(out.Item, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *EmailTemplateRepo) Put(ctx context.Context, tpl *domain.EmailTemplate) error {
	av, err := attributevalue.MarshalMap(tpl)
	if err != nil {
		return fmt.Errorf("marshal email template: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

type SMSTemplateRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSMSTemplateRepo(client *dynamodb.Client, tableName string) *SMSTemplateRepo {
	return &SMSTemplateRepo{client: client, tableName: tableName}
}

func (r *SMSTemplateRepo) Get(ctx context.Context, templateID string) (*domain.SMSTemplate, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("template_id", templateID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("sms template %q: %w", templateID, domain.ErrNotFound)
	}
	var tpl domain.SMSTemplate
	if err := attributevalue.UnmarshalMap(out.Item, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *SMSTemplateRepo) Put(ctx context.Context, tpl *domain.SMSTemplate) error {
	av, err := attributevalue.MarshalMap(tpl)
	if err != nil {
		return fmt.Errorf("marshal sms template: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

type PushTemplateRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewPushTemplateRepo(client *dynamodb.Client, tableName string) *PushTemplateRepo {
	return &PushTemplateRepo{client: client, tableName: tableName}
}

func (r *PushTemplateRepo) Get(ctx context.Context, templateID string) (*domain.PushTemplate, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("template_id", templateID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("push template %q: %w", templateID, domain.ErrNotFound)
	}
	var tpl domain.PushTemplate
	if err := attributevalue.UnmarshalMap(out.Item, &tpl); err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *PushTemplateRepo) Put(ctx context.Context, tpl *domain.PushTemplate) error {
	av, err := attributevalue.MarshalMap(tpl)
	if err != nil {
		return fmt.Errorf("marshal push template: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}
