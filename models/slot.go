package models

import "time"

// Slot is a candidate bookable interval for a service on a given date.
// Start/End are "HH:mm" in the provider's canonical local time; the
// absolute instants carry the same interval for booking submission.
type Slot struct {
	Start   string    `json:"startTime"` // "09:15"
	End     string    `json:"endTime"`   // "09:45"
	StartAt time.Time `json:"startIso"`
	EndAt   time.Time `json:"endIso"`
}
