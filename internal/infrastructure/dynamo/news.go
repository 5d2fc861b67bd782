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

type NewsRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewNewsRepo(client *dynamodb.Client, tableName string) *NewsRepo {
	return &NewsRepo{client: client, tableName: tableName}
}

func (r *NewsRepo) Put(ctx context.Context, news *domain.News) error {
	av, err := attributevalue.MarshalMap(news)
	if err != nil {
		return fmt.Errorf("marshal news: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	})
	return err
}

func (r *NewsRepo) Get(ctx context.Context, newsID string) (*domain.News, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("news_id", newsID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("news %q: %w", newsID, domain.ErrNotFound)
	}
	var news domain.News
	if err := attributevalue.UnmarshalMap(out.Item, &news); err != nil {
		return nil, err
	}
	return &news, nil
}

// ListActive scans for enabled news whose start/end window covers now.
func (r *NewsRepo) ListActive(ctx context.Context, now string) ([]domain.News, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("#en = :t AND start_date <= :now AND end_date >= :now"),
		ExpressionAttributeNames: map[string]string{
			"#en": fieldEnable,
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t":   &types.AttributeValueMemberBOOL{Value: true},
			":now": &types.AttributeValueMemberS{Value: now},
		},
	})
	if err != nil {
		return nil, err
	}
	var items []domain.News
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListPending scans for news scheduled to start after now.
func (r *NewsRepo) ListPending(ctx context.Context, now string) ([]domain.News, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("start_date >= :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":now": &types.AttributeValueMemberS{Value: now},
		},
	})
	if err != nil {
		return nil, err
	}
	var items []domain.News
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *NewsRepo) Update(ctx context.Context, newsID string, fields map[string]interface{}) (*domain.News, error) {
	ue, err := buildUpdateExpr(fields)
	if err != nil {
		return nil, err
	}
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("news_id", newsID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err != nil {
		return nil, err
	}
	var news domain.News
	if err := attributevalue.UnmarshalMap(out.Attributes, &news); err != nil {
		return nil, err
	}
	return &news, nil
}

func (r *NewsRepo) Delete(ctx context.Context, newsID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("news_id", newsID),
	})
	return err
}
