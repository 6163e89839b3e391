// File: database/repository/availability/interface.go
package availabilityRepo

import (
	"context"

	"wellvix/models"
)

// Repository gives read/write access to a provider's recurring weekly
// windows and per-date exceptions. Reads are cache-backed; every
// provider-initiated write invalidates the cached documents.
type Repository interface {
	GetWeekly(ctx context.Context, providerID string) (map[string][]models.AvailabilityWindow, error)
	SetWeekly(ctx context.Context, providerID string, weekly map[string][]models.AvailabilityWindow) error
	GetExceptions(ctx context.Context, providerID string) (map[string]models.AvailabilityException, error)
	SetException(ctx context.Context, exc models.AvailabilityException) error
	DeleteException(ctx context.Context, providerID, date string) error
}
