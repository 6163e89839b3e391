package models

import "time"

// ProcessedEvent is the idempotency record for an external payment
// notification. Append-only: the presence of an EventID means that
// notification has already been folded into order state.
type ProcessedEvent struct {
	EventID    string    `bson:"eventId" json:"eventId"`
	Type       string    `bson:"type" json:"type"`
	OrderID    string    `bson:"orderId,omitempty" json:"orderId,omitempty"`
	ReceivedAt time.Time `bson:"receivedAt" json:"receivedAt"`
}

// Payment event types the coordinator reacts to.
const (
	EventCheckoutCompleted = "checkout.session.completed"
	EventPaymentSucceeded  = "payment_intent.succeeded"
	EventPaymentFailed     = "payment_intent.payment_failed"
	EventAccountUpdated    = "account.updated"
)

// PaymentEvent is a gateway notification already verified and decoded by
// the transport layer (webhook handler).
type PaymentEvent struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	OrderID          string `json:"orderId"`
	PaymentReference string `json:"paymentReference,omitempty"`
	Currency         string `json:"currency,omitempty"`
}
