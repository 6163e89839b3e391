package models

import "time"

// Booking statuses. Requested and confirmed bookings occupy calendar
// time for conflict purposes; rejected and cancelled do not.
const (
	BookingStatusRequested = "requested"
	BookingStatusConfirmed = "confirmed"
	BookingStatusRejected  = "rejected"
	BookingStatusCancelled = "cancelled"
)

// OccupyingBookingStatuses lists the statuses that count toward
// double-booking detection.
var OccupyingBookingStatuses = []string{BookingStatusRequested, BookingStatusConfirmed}

// Booking is a reservation of a provider's time for an in-person service.
type Booking struct {
	ID         string    `bson:"id" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	ClientID   string    `bson:"clientId" json:"clientId"`
	ServiceID  string    `bson:"serviceId" json:"serviceId"`
	OrderID    string    `bson:"orderId,omitempty" json:"orderId,omitempty"` // set when the booking is accepted and monetized
	Status     string    `bson:"status" json:"status"`
	Start      time.Time `bson:"start" json:"start"`
	End        time.Time `bson:"end" json:"end"`
	Notes      string    `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}
