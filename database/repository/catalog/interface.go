// File: database/repository/catalog/interface.go
package catalogRepo

import (
	"context"

	"wellvix/models"
)

// Repository gives the booking/order core read access to services,
// providers and clients. All three are owned by other parts of the
// platform.
type Repository interface {
	GetService(ctx context.Context, id string) (*models.Service, error)
	GetProvider(ctx context.Context, id string) (*models.Provider, error)
	GetClient(ctx context.Context, id string) (*models.Client, error)
}
