// File: services/booking/interface.go
package booking

import (
	"context"
	"time"

	"wellvix/models"
)

// BookingRequest is a client's attempt to reserve a slot.
type BookingRequest struct {
	ProviderID string    `json:"providerId"`
	ClientID   string    `json:"clientId"`
	ServiceID  string    `json:"serviceId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Notes      string    `json:"notes,omitempty"`
}

// Service is the scheduling core: availability editing, slot discovery,
// and the request/accept/reject reservation flow for in-person services.
type Service interface {
	// MonthAvailability maps each date of the month ("YYYY-MM-DD") to
	// whether the provider has any open windows that day.
	MonthAvailability(ctx context.Context, providerID string, year int, month time.Month) (map[string]bool, error)
	// GetSlots computes the bookable slots for one provider/service/date.
	GetSlots(ctx context.Context, providerID, serviceID string, day time.Time) ([]models.Slot, error)

	SetWeeklyAvailability(ctx context.Context, providerID string, weekly map[string][]models.AvailabilityWindow) error
	GetWeeklyAvailability(ctx context.Context, providerID string) (map[string][]models.AvailabilityWindow, error)
	SetException(ctx context.Context, exc models.AvailabilityException) error
	DeleteException(ctx context.Context, providerID, date string) error

	RequestBooking(ctx context.Context, req BookingRequest) (*models.Booking, error)
	// AcceptBooking confirms a requested booking and materializes its
	// order in one step. Returns both records.
	AcceptBooking(ctx context.Context, providerID, bookingID string) (*models.Booking, *models.Order, error)
	RejectBooking(ctx context.Context, providerID, bookingID string) (*models.Booking, error)
	CancelBooking(ctx context.Context, clientID, bookingID string) (*models.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*models.Booking, error)
	ListBookings(ctx context.Context, providerID string) ([]models.Booking, error)
}
