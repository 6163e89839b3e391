// File: database/repository/booking/interface.go
package bookingRepo

import (
	"context"
	"time"

	"wellvix/models"
)

// Repository is the reservation ledger: every booking with an occupying
// status counts toward double-booking detection.
type Repository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	ListByProvider(ctx context.Context, providerID string) ([]models.Booking, error)
	// ListOccupying returns occupying bookings whose buffered interval
	// intersects [from, to). bufferMin widens each existing booking's end.
	ListOccupying(ctx context.Context, providerID string, from, to time.Time, bufferMin int) ([]models.Booking, error)
	// CreateIfNoOverlap inserts the booking inside a transaction that
	// re-checks for conflicts, closing the race between slot computation
	// and submission. Returns an overlap ServiceError when blocked.
	CreateIfNoOverlap(ctx context.Context, booking *models.Booking, bufferMin int) error
	// ConfirmWithOrder flips a requested booking to confirmed and links the
	// materialized order, conditional on the booking still being requested.
	ConfirmWithOrder(ctx context.Context, bookingID, orderID string) (*models.Booking, error)
	UpdateStatus(ctx context.Context, bookingID, from, to string) (*models.Booking, error)
}
