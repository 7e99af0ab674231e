package domain

import "time"

// WatermarkID is the key of the single watermark row.
const WatermarkID = "last-announced"

// Watermark records the last date for which a fan-out was attempted.
// Singleton row; the notifier is its only writer.
type Watermark struct {
	WatermarkID string    `json:"-" dynamodbav:"watermark_id"`
	Date        string    `json:"date" dynamodbav:"date"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}
