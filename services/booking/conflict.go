package booking

import (
	"time"

	"wellvix/models"
)

// Intervals are half-open: back-to-back bookings at the exact boundary do
// not conflict. This predicate is the single source of truth for overlap
// detection, used both when generating slots and when validating a new
// booking request.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// EnsureNonOverlapping reports whether [start, end) is free of conflicts
// with the given occupying bookings. Each existing booking's interval is
// extended by bufferMin minutes past its end to enforce a minimum gap
// after every booking.
func EnsureNonOverlapping(existing []models.Booking, start, end time.Time, bufferMin int) bool {
	buffer := time.Duration(bufferMin) * time.Minute
	for _, b := range existing {
		if Overlaps(start, end, b.Start, b.End.Add(buffer)) {
			return false
		}
	}
	return true
}

// IsInsideAvailability reports whether some window fully contains
// [start, end) by time-of-day. Callers resolve exception overrides first
// (see ResolveWindows).
func IsInsideAvailability(windows []models.AvailabilityWindow, start, end time.Time) bool {
	reqStart := minutesOfDay(start)
	reqEnd := minutesOfDay(end)
	for _, w := range windows {
		ws, ok1 := parseHHMM(w.Start)
		we, ok2 := parseHHMM(w.End)
		if !ok1 || !ok2 {
			continue
		}
		if reqStart >= ws && reqEnd <= we {
			return true
		}
	}
	return false
}

// ResolveWindows applies the exception-override rule for one date:
// an exception fully replaces the weekly windows (closed or an empty
// slot list both yield zero availability); otherwise the weekly windows
// for that weekday apply.
func ResolveWindows(
	weekly map[string][]models.AvailabilityWindow,
	exceptions map[string]models.AvailabilityException,
	day time.Time,
) []models.AvailabilityWindow {
	dateStr := day.Format("2006-01-02")
	if exc, ok := exceptions[dateStr]; ok {
		if exc.Closed {
			return nil
		}
		return exc.Slots
	}
	return weekly[weekdayKey(day)]
}

func weekdayKey(day time.Time) string {
	return string(rune('0' + int(day.Weekday())))
}

func minutesOfDay(t time.Time) int {
	return t.Hour()*60 + t.Minute()
}

func parseHHMM(s string) (int, bool) {
	if len(s) != 5 || s[2] != ':' {
		return 0, false
	}
	h := int(s[0]-'0')*10 + int(s[1]-'0')
	m := int(s[3]-'0')*10 + int(s[4]-'0')
	if h < 0 || h > 23 || m < 0 || m > 59 ||
		s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' ||
		s[3] < '0' || s[3] > '9' || s[4] < '0' || s[4] > '9' {
		return 0, false
	}
	return h*60 + m, true
}

func formatHHMM(minutes int) string {
	h := minutes / 60
	m := minutes % 60
	return string([]byte{
		byte('0' + h/10), byte('0' + h%10), ':',
		byte('0' + m/10), byte('0' + m%10),
	})
}
