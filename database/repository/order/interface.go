// File: database/repository/order/interface.go
package orderRepo

import (
	"context"
	"time"

	"wellvix/models"
)

// ListFilter narrows an order listing. Zero values are ignored.
type ListFilter struct {
	Status     string
	ProviderID string
	ClientID   string
	Limit      int64
}

// Repository is the durable order store. Status changes go through
// conditional writes keyed on the expected source status so transitions
// for a single order are linearizable.
type Repository interface {
	Insert(ctx context.Context, order *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	List(ctx context.Context, f ListFilter) ([]models.Order, error)
	ListDeliveredBefore(ctx context.Context, cutoff time.Time, limit int64) ([]models.Order, error)
	// Transition moves id from -> to, applying set/inc in the same write.
	// Fails with invalid_status if the order is no longer in `from`.
	Transition(ctx context.Context, id, from, to string, set map[string]interface{}, inc map[string]int64) (*models.Order, error)
	// TransitionFromNonTerminal is the administrative escape hatch
	// (cancel/refund): any non-terminal source status is acceptable.
	TransitionFromNonTerminal(ctx context.Context, id, to string, set map[string]interface{}) (*models.Order, error)
	// Update applies a field patch without touching status.
	Update(ctx context.Context, id string, set map[string]interface{}) (*models.Order, error)
	// RecordPayout writes the payout reference and locked fee exactly
	// once; an order that already carries a reference is left untouched.
	RecordPayout(ctx context.Context, id, payoutReference string, feeCents int64) error
	// MarkPaid records payment confirmation field-wise. A no-op if the
	// order is already marked paid, so event replays cannot move paidAt.
	MarkPaid(ctx context.Context, id, paymentReference, currency string, paidAt time.Time) error
}
