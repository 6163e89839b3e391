// File: database/repository/event/interface.go
package eventRepo

import (
	"context"

	"wellvix/models"
)

// Repository stores processed payment-event ids. Append-only, safe for
// concurrent idempotent inserts (insert-if-absent on eventId).
type Repository interface {
	// InsertIfAbsent records the event and reports whether it was new.
	// A false return means the event was already processed.
	InsertIfAbsent(ctx context.Context, event models.ProcessedEvent) (bool, error)
	List(ctx context.Context, limit int64) ([]models.ProcessedEvent, error)
}
