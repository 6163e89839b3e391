package models

// AvailabilityWindow is a single open-hours window within a day,
// stored as "HH:mm" time-of-day strings.
type AvailabilityWindow struct {
	Start string `bson:"start" json:"start"` // e.g., "09:00"
	End   string `bson:"end" json:"end"`     // e.g., "17:00"
}

// WeeklyAvailability is a provider's recurring weekly schedule.
// Weekday keys are "0" (Sunday) through "6" (Saturday); multiple
// non-overlapping windows per weekday are allowed.
type WeeklyAvailability struct {
	ProviderID string                          `bson:"providerId" json:"providerId"`
	Weekly     map[string][]AvailabilityWindow `bson:"weekly" json:"weekly"`
}

// AvailabilityException overrides the weekly schedule for one calendar
// date. An exception is exhaustive: Closed yields zero availability, and
// a non-closed exception's Slots fully replace the weekly windows for
// that date (an empty Slots list means the day is unavailable).
type AvailabilityException struct {
	ProviderID string               `bson:"providerId" json:"providerId"`
	Date       string               `bson:"date" json:"date"` // "YYYY-MM-DD"
	Closed     bool                 `bson:"closed" json:"closed"`
	Note       string               `bson:"note,omitempty" json:"note,omitempty"`
	Slots      []AvailabilityWindow `bson:"slots,omitempty" json:"slots,omitempty"`
}
