package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/vaxwatch/vaxwatch/internal/domain"
)

// WatermarkRepo persists the single "last announced date" row.
// Last-write-wins is enough: the notifier is the only writer.
type WatermarkRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewWatermarkRepo(client *dynamodb.Client, tableName string) *WatermarkRepo {
	return &WatermarkRepo{client: client, tableName: tableName}
}

// Get returns the last announced date, or domain.ErrNotFound when no fan-out
// has ever happened.
func (r *WatermarkRepo) Get(ctx context.Context) (string, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("watermark_id", domain.WatermarkID),
	})
	if err != nil {
		return "", err
	}
	if out.Item == nil {
		return "", fmt.Errorf("watermark not set: %w", domain.ErrNotFound)
	}
	var w domain.Watermark
	if err := attributevalue.UnmarshalMap(out.Item, &w); err != nil {
		return "", err
	}
	return w.Date, nil
}

func (r *WatermarkRepo) Set(ctx context.Context, date string) error {
	item, err := attributevalue.MarshalMap(&domain.Watermark{
		WatermarkID: domain.WatermarkID,
		Date:        date,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return fmt.Errorf("marshal watermark: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}
