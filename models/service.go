package models

// Service types.
const (
	ServiceTypeDigital  = "digital"
	ServiceTypeInPerson = "in_person"
)

// Service is a provider's offering. Read-only to the booking/order core;
// it supplies the parameters that drive slot computation and initial
// order pricing.
type Service struct {
	ID                   string `bson:"id" json:"id"`
	ProviderID           string `bson:"providerId" json:"providerId"`
	Slug                 string `bson:"slug,omitempty" json:"slug,omitempty"`
	Title                string `bson:"title" json:"title"`
	Type                 string `bson:"type" json:"type"` // "digital" or "in_person"
	DurationMinutes      int    `bson:"durationMinutes,omitempty" json:"durationMinutes,omitempty"`
	LeadTimeDays         int    `bson:"leadTimeDays,omitempty" json:"leadTimeDays,omitempty"`
	BookingBufferMinutes int    `bson:"bookingBufferMinutes,omitempty" json:"bookingBufferMinutes,omitempty"`
	PriceFromCents       int64  `bson:"priceFromCents" json:"priceFromCents"`
	Currency             string `bson:"currency,omitempty" json:"currency,omitempty"`
	Active               bool   `bson:"active" json:"active"`
}
