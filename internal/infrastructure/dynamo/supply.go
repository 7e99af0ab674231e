package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/vaxwatch/vaxwatch/internal/domain"
)

// supplyInterval is the expected spacing between supply reports. The health
// service publishes them weekly, so the paired lookback walks in 7-day steps.
const supplyInterval = 7

// SupplyRepo provides typed DynamoDB operations for the supply records table.
type SupplyRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSupplyRepo(client *dynamodb.Client, tableName string) *SupplyRepo {
	return &SupplyRepo{client: client, tableName: tableName}
}

func (r *SupplyRepo) Put(ctx context.Context, s *domain.SupplyRecord) error {
	item, err := attributevalue.MarshalMap(s)
	if err != nil {
		return fmt.Errorf("marshal supply record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SupplyRepo) GetByDate(ctx context.Context, date string) (*domain.SupplyRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("date", date),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("supply record %s: %w", date, domain.ErrNotFound)
	}
	var s domain.SupplyRecord
	if err := attributevalue.UnmarshalMap(out.Item, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LatestPair finds the most recent supply record that also has a record
// exactly one supply interval earlier, scanning both back a day at a time.
func (r *SupplyRepo) LatestPair(ctx context.Context, anchor time.Time, lookback int) (*domain.SupplyRecord, *domain.SupplyRecord, error) {
	return latestSupplyPair(ctx, r.GetByDate, anchor, lookback)
}

func latestSupplyPair(ctx context.Context, get func(context.Context, string) (*domain.SupplyRecord, error), anchor time.Time, lookback int) (*domain.SupplyRecord, *domain.SupplyRecord, error) {
	for offset := 0; offset <= lookback; offset++ {
		day := anchor.AddDate(0, 0, -offset)
		latest, err := get(ctx, domain.DayKey(day))
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		previous, err := get(ctx, domain.DayKey(day.AddDate(0, 0, -supplyInterval)))
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, nil, err
		}
		return latest, previous, nil
	}
	return nil, nil, fmt.Errorf("no supply pair within %d days of %s: %w", lookback, domain.DayKey(anchor), domain.ErrNotFound)
}
