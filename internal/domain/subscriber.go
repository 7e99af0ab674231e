package domain

import "time"

// Delivery channels a subscriber can choose.
const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"
)

// Subscriber maps a recipient address to its subscription state.
// Subscribers are never deleted; unsubscribing flips Subscribed to false.
type Subscriber struct {
	Address    string    `json:"address" dynamodbav:"address"`
	Channel    string    `json:"channel" dynamodbav:"channel"` // "sms" | "email"
	Subscribed bool      `json:"subscribed" dynamodbav:"subscribed"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type SubscribeRequest struct {
	Address string `json:"address" validate:"required,max=254"`
	Channel string `json:"channel" validate:"required,oneof=sms email"`
}
