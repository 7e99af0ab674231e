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

// RecordRepo provides typed DynamoDB operations for the daily records table.
// Records are keyed by calendar day; Put has upsert semantics, so a revised
// upstream figure for an existing day overwrites the row in place.
type RecordRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewRecordRepo(client *dynamodb.Client, tableName string) *RecordRepo {
	return &RecordRepo{client: client, tableName: tableName}
}

func (r *RecordRepo) Put(ctx context.Context, rec *domain.DailyRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *RecordRepo) GetByDate(ctx context.Context, date string) (*domain.DailyRecord, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("date", date),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("record %s: %w", date, domain.ErrNotFound)
	}
	var rec domain.DailyRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// LatestWithPrevious scans backward from anchor to find the most recent stored
// record and the nearest record on an earlier calendar day. The feed skips
// days (weekends, outages), so both scans tolerate gaps up to lookback days.
// Returns domain.ErrNotFound once the lookback bound is exhausted.
func (r *RecordRepo) LatestWithPrevious(ctx context.Context, anchor time.Time, lookback int) (*domain.DailyRecord, *domain.DailyRecord, error) {
	return latestWithPrevious(ctx, r.GetByDate, anchor, lookback)
}

// Latest returns the most recent stored record at or before anchor, scanning
// back at most lookback days.
func (r *RecordRepo) Latest(ctx context.Context, anchor time.Time, lookback int) (*domain.DailyRecord, error) {
	rec, _, err := findBack(ctx, r.GetByDate, anchor, 0, lookback)
	return rec, err
}

// LatestBefore returns the most recent record strictly before day, scanning
// back at most lookback days. The ingest side uses it to find the prior-day
// record a new observation diffs against.
func (r *RecordRepo) LatestBefore(ctx context.Context, day time.Time, lookback int) (*domain.DailyRecord, error) {
	rec, _, err := findBack(ctx, r.GetByDate, day, 1, lookback)
	return rec, err
}

// ScanAll returns every stored record. Used by the history export; the table
// holds at most one row per calendar day, so a full scan stays small.
func (r *RecordRepo) ScanAll(ctx context.Context) ([]domain.DailyRecord, error) {
	out, err := r.client.Scan(ctx, &dynamodb.ScanInput{TableName: aws.String(r.tableName)})
	if err != nil {
		return nil, err
	}
	var records []domain.DailyRecord
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// latestWithPrevious holds the reverse-scan logic behind LatestWithPrevious,
// split out over a getter func so it can be tested without a live client.
func latestWithPrevious(ctx context.Context, get func(context.Context, string) (*domain.DailyRecord, error), anchor time.Time, lookback int) (*domain.DailyRecord, *domain.DailyRecord, error) {
	latest, latestDay, err := findBack(ctx, get, anchor, 0, lookback)
	if err != nil {
		return nil, nil, err
	}
	previous, _, err := findBack(ctx, get, latestDay, 1, lookback)
	if err != nil {
		return nil, nil, err
	}
	return latest, previous, nil
}

// findBack walks day by day from anchor-from to anchor-lookback and returns
// the first stored record along with its day.
func findBack(ctx context.Context, get func(context.Context, string) (*domain.DailyRecord, error), anchor time.Time, from, lookback int) (*domain.DailyRecord, time.Time, error) {
	for offset := from; offset <= lookback; offset++ {
		day := anchor.AddDate(0, 0, -offset)
		rec, err := get(ctx, domain.DayKey(day))
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, time.Time{}, err
		}
		return rec, day, nil
	}
	return nil, time.Time{}, fmt.Errorf("no record within %d days of %s: %w", lookback, domain.DayKey(anchor), domain.ErrNotFound)
}
