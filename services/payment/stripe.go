// File: services/payment/stripe.go
package payment

import (
	"context"
	"fmt"

	"wellvix/utils"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/account"
	"github.com/stripe/stripe-go/v76/paymentintent"
	"github.com/stripe/stripe-go/v76/refund"
	"github.com/stripe/stripe-go/v76/transfer"
	"go.uber.org/zap"
)

type stripeGateway struct{}

// NewStripeGateway returns the live Stripe-backed gateway. Callers must
// have set stripe.Key before first use.
func NewStripeGateway() Gateway {
	return &stripeGateway{}
}

func (g *stripeGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(req.AmountCents),
		Currency: stripe.String(req.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
		TransferGroup: stripe.String("order_" + req.OrderID),
	}
	params.Context = ctx
	params.AddMetadata("orderId", req.OrderID)
	if req.CustomerRef != "" {
		params.AddMetadata("clientId", req.CustomerRef)
	}
	// Replays of the same order create are collapsed by Stripe.
	params.SetIdempotencyKey("pi_" + req.OrderID)

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe payment intent failed: %w", err)
	}
	utils.GetLogger().Named("Stripe").Info("payment intent created",
		zap.String("order_id", req.OrderID), zap.String("intent_id", pi.ID))
	return &IntentResult{Reference: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (g *stripeGateway) CreateTransfer(ctx context.Context, req TransferRequest) (string, error) {
	params := &stripe.TransferParams{
		Amount:        stripe.Int64(req.AmountCents),
		Currency:      stripe.String(req.Currency),
		Destination:   stripe.String(req.DestinationAccount),
		TransferGroup: stripe.String("order_" + req.OrderID),
	}
	params.Context = ctx
	params.AddMetadata("orderId", req.OrderID)
	// One payout per order, even across retries.
	params.SetIdempotencyKey("transfer_" + req.OrderID)

	tr, err := transfer.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe transfer failed: %w", err)
	}
	utils.GetLogger().Named("Stripe").Info("transfer created",
		zap.String("order_id", req.OrderID), zap.String("transfer_id", tr.ID))
	return tr.ID, nil
}

func (g *stripeGateway) CreateRefund(ctx context.Context, req RefundRequest) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.PaymentReference),
	}
	params.Context = ctx
	if req.AmountCents > 0 {
		params.Amount = stripe.Int64(req.AmountCents)
	}
	params.AddMetadata("orderId", req.OrderID)
	params.SetIdempotencyKey("refund_" + req.OrderID)

	rf, err := refund.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe refund failed: %w", err)
	}
	return rf.ID, nil
}

func (g *stripeGateway) AccountReady(ctx context.Context, accountID string) (bool, error) {
	params := &stripe.AccountParams{}
	params.Context = ctx
	acct, err := account.GetByID(accountID, params)
	if err != nil {
		return false, fmt.Errorf("stripe account lookup failed: %w", err)
	}
	return acct.PayoutsEnabled, nil
}
