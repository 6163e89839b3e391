// File: services/payment/gateway.go
package payment

import "context"

// IntentRequest asks the gateway to collect a payment for one order.
type IntentRequest struct {
	OrderID     string
	AmountCents int64
	Currency    string
	CustomerRef string
}

// IntentResult is the gateway's handle for a created payment.
type IntentResult struct {
	Reference    string
	ClientSecret string
}

// TransferRequest moves held funds to a provider's connected account.
type TransferRequest struct {
	OrderID            string
	AmountCents        int64
	Currency           string
	DestinationAccount string
}

// RefundRequest returns funds to the client against a captured payment.
type RefundRequest struct {
	OrderID          string
	PaymentReference string
	AmountCents      int64 // 0 means full refund
}

// Gateway abstracts the payment processor so the coordinator and its
// tests do not depend on live Stripe calls.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req IntentRequest) (*IntentResult, error)
	CreateTransfer(ctx context.Context, req TransferRequest) (string, error)
	CreateRefund(ctx context.Context, req RefundRequest) (string, error)
	// AccountReady reports whether a connected account can receive
	// transfers.
	AccountReady(ctx context.Context, accountID string) (bool, error)
}
