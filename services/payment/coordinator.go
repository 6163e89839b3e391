// File: services/payment/coordinator.go
package payment

import (
	"context"
	"math"
	"time"

	"wellvix/config"
	catalogRepo "wellvix/database/repository/catalog"
	eventRepo "wellvix/database/repository/event"
	orderRepo "wellvix/database/repository/order"
	"wellvix/models"
	"wellvix/utils"

	"go.uber.org/zap"
)

// ComputeFeeCents returns the platform's cut of an amount, rounded to
// the nearest cent.
func ComputeFeeCents(amountCents int64, percent float64) int64 {
	return int64(math.Round(float64(amountCents) * percent / 100))
}

// ComputeNetCents returns what the provider receives after the fee,
// floored at zero.
func ComputeNetCents(amountCents, feeCents int64) int64 {
	net := amountCents - feeCents
	if net < 0 {
		return 0
	}
	return net
}

// Coordinator owns the money side of the order lifecycle: collecting
// payment into the platform account, releasing the escrowed net amount
// to the provider, refunds, and folding gateway events into order state.
type Coordinator struct {
	Gateway     Gateway
	OrderRepo   orderRepo.Repository
	CatalogRepo catalogRepo.Repository
	EventRepo   eventRepo.Repository

	now func() time.Time
}

// NewCoordinator wires the payment coordinator.
func NewCoordinator(gw Gateway, orders orderRepo.Repository, catalog catalogRepo.Repository, events eventRepo.Repository) *Coordinator {
	return &Coordinator{
		Gateway:     gw,
		OrderRepo:   orders,
		CatalogRepo: catalog,
		EventRepo:   events,
		now:         time.Now,
	}
}

// CreateIntent starts payment collection for an accepted order. The
// gateway idempotency key collapses duplicate calls for one order.
func (c *Coordinator) CreateIntent(ctx context.Context, orderID string) (*models.Order, *IntentResult, error) {
	o, err := c.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	if o.Paid() {
		return nil, nil, utils.NewServiceError(utils.CodeInvalidStatus, "order is already paid")
	}
	if o.Status != models.OrderStatusAccepted {
		return nil, nil, utils.NewServiceError(utils.CodeInvalidStatus, "order must be '%s'", models.OrderStatusAccepted)
	}
	if o.PriceCents <= 0 {
		return nil, nil, utils.NewServiceError(utils.CodeInvalidAmount, "order has no payable amount")
	}

	res, err := c.Gateway.CreatePaymentIntent(ctx, IntentRequest{
		OrderID:     o.ID,
		AmountCents: o.PriceCents,
		Currency:    o.Currency,
		CustomerRef: o.ClientID,
	})
	if err != nil {
		return nil, nil, err
	}

	updated, err := c.OrderRepo.Update(ctx, o.ID, map[string]interface{}{
		"paymentReference": res.Reference,
	})
	if err != nil {
		return nil, nil, err
	}
	return updated, res, nil
}

// ReleasePayout transfers the escrowed net amount to the provider and
// returns the payout reference together with the fee that was locked in.
// It never touches order status; callers flip the status only after a
// successful return, so a failed transfer can be retried.
func (c *Coordinator) ReleasePayout(ctx context.Context, o *models.Order) (string, int64, error) {
	if o.PayoutReference != "" {
		fee := int64(0)
		if o.ApplicationFeeCents != nil {
			fee = *o.ApplicationFeeCents
		}
		return o.PayoutReference, fee, nil
	}
	if o.PriceCents <= 0 {
		return "", 0, utils.NewServiceError(utils.CodeInvalidAmount, "order amount must be positive")
	}

	// The fee is locked in at first payout attempt. A later change to the
	// configured percentage must not alter an order already in flight.
	var fee int64
	if o.ApplicationFeeCents != nil {
		fee = *o.ApplicationFeeCents
	} else {
		fee = ComputeFeeCents(o.PriceCents, config.AppConfig.PlatformFeePercent)
	}
	net := ComputeNetCents(o.PriceCents, fee)
	if net <= 0 {
		return "", 0, utils.NewServiceError(utils.CodeInvalidAmount, "net payout amount is zero")
	}

	provider, err := c.CatalogRepo.GetProvider(ctx, o.ProviderID)
	if err != nil {
		return "", 0, err
	}
	if provider.StripeAccountID == "" || !provider.StripeReady {
		return "", 0, utils.NewServiceError(utils.CodeProviderMissingAccount, "provider %s has no payout account", o.ProviderID)
	}

	// The stored readiness flag can go stale. Confirm with the gateway
	// before moving money.
	ready, err := c.Gateway.AccountReady(ctx, provider.StripeAccountID)
	if err != nil {
		utils.GetLogger().Named("Payment").Error("payout account check failed",
			zap.String("order_id", o.ID), zap.Error(err))
		return "", 0, utils.NewServiceError(utils.CodeTransferFailed, "could not verify payout account for order %s", o.ID)
	}
	if !ready {
		return "", 0, utils.NewServiceError(utils.CodeProviderMissingAccount, "payout account for provider %s cannot receive transfers", o.ProviderID)
	}

	ref, err := c.Gateway.CreateTransfer(ctx, TransferRequest{
		OrderID:            o.ID,
		AmountCents:        net,
		Currency:           o.Currency,
		DestinationAccount: provider.StripeAccountID,
	})
	if err != nil {
		utils.GetLogger().Named("Payment").Error("payout transfer failed",
			zap.String("order_id", o.ID), zap.Error(err))
		return "", 0, utils.NewServiceError(utils.CodeTransferFailed, "payout transfer for order %s failed", o.ID)
	}
	return ref, fee, nil
}

// RefundOrder returns funds to the client. amountCents of 0 means a full
// refund. Reports the resulting refund status for the order record.
func (c *Coordinator) RefundOrder(ctx context.Context, o *models.Order, amountCents int64) (string, string, error) {
	if !o.Paid() || o.PaymentReference == "" {
		return "", "", utils.NewServiceError(utils.CodeInvalidStatus, "order has no captured payment to refund")
	}
	if amountCents < 0 || amountCents > o.PriceCents {
		return "", "", utils.NewServiceError(utils.CodeInvalidAmount, "refund amount out of range")
	}

	ref, err := c.Gateway.CreateRefund(ctx, RefundRequest{
		OrderID:          o.ID,
		PaymentReference: o.PaymentReference,
		AmountCents:      amountCents,
	})
	if err != nil {
		return "", "", err
	}

	status := models.RefundStatusRefunded
	if amountCents > 0 && amountCents < o.PriceCents {
		status = models.RefundStatusPartial
	}
	return ref, status, nil
}

// ProcessEvent folds one verified gateway notification into order state.
// Record-then-apply: the event is claimed in the idempotency store
// first, and a replayed event id is a no-op. Returns whether the event
// was fresh.
func (c *Coordinator) ProcessEvent(ctx context.Context, evt models.PaymentEvent) (bool, error) {
	logger := utils.GetLogger().Named("Payment")

	fresh, err := c.EventRepo.InsertIfAbsent(ctx, models.ProcessedEvent{
		EventID:    evt.ID,
		Type:       evt.Type,
		OrderID:    evt.OrderID,
		ReceivedAt: c.now().UTC(),
	})
	if err != nil {
		return false, err
	}
	if !fresh {
		logger.Info("duplicate payment event ignored", zap.String("event_id", evt.ID))
		return false, nil
	}

	switch evt.Type {
	case models.EventCheckoutCompleted, models.EventPaymentSucceeded:
		if evt.OrderID == "" {
			logger.Warn("payment event without order id", zap.String("event_id", evt.ID))
			return true, nil
		}
		// Field-wise update only. Whatever status the order is in, the
		// payment facts are recorded; transitions stay with their actors.
		if err := c.OrderRepo.MarkPaid(ctx, evt.OrderID, evt.PaymentReference, evt.Currency, c.now().UTC()); err != nil {
			return true, err
		}
		logger.Info("order marked paid",
			zap.String("order_id", evt.OrderID), zap.String("event_id", evt.ID))
	case models.EventPaymentFailed:
		logger.Warn("payment failed",
			zap.String("order_id", evt.OrderID), zap.String("event_id", evt.ID))
	default:
		logger.Debug("unhandled payment event type", zap.String("type", evt.Type))
	}
	return true, nil
}
