package models

// Provider is the seller side of the marketplace. Read-mostly for the
// booking/order core; the payout path needs the Stripe destination.
type Provider struct {
	ID              string `bson:"id" json:"id"`
	Name            string `bson:"name" json:"name"`
	StripeAccountID string `bson:"stripeAccountId,omitempty" json:"stripeAccountId,omitempty"`
	StripeReady     bool   `bson:"stripeReady" json:"stripeReady"`
	DefaultCurrency string `bson:"defaultCurrency,omitempty" json:"defaultCurrency,omitempty"` // e.g., "usd"
	FCMToken        string `bson:"fcmToken,omitempty" json:"-"`
}
