package domain

import "time"

// Fan-out kinds recorded in delivery reports.
const (
	DeliveryDaily     = "daily"
	DeliveryBroadcast = "broadcast"
)

// DeliveryReport summarizes one fan-out attempt. Per-recipient failures are
// counted here, never escalated.
type DeliveryReport struct {
	ReportID  string    `json:"id" dynamodbav:"report_id"`
	Date      string    `json:"date" dynamodbav:"date"`
	Kind      string    `json:"kind" dynamodbav:"kind"` // "daily" | "broadcast"
	Attempted int       `json:"attempted" dynamodbav:"attempted"`
	Delivered int       `json:"delivered" dynamodbav:"delivered"`
	Failed    int       `json:"failed" dynamodbav:"failed"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
