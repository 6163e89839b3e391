package booking

import (
	"sort"
	"time"

	"wellvix/models"
)

// DefaultSlotStepMinutes is the candidate grid used when no step is
// configured.
const DefaultSlotStepMinutes = 15

// BuildSlots derives the offerable slots for one provider/date/service
// from resolved availability and the occupying reservations of that day.
// Pure: recomputed per call, callers supply the clock.
func BuildSlots(
	weekly map[string][]models.AvailabilityWindow,
	exceptions map[string]models.AvailabilityException,
	existing []models.Booking,
	day time.Time,
	svc *models.Service,
	now time.Time,
	stepMin int,
) []models.Slot {
	if stepMin <= 0 {
		stepMin = DefaultSlotStepMinutes
	}

	// Lead time gate: the requested date must be at least leadTimeDays out.
	earliest := dateOf(now).AddDate(0, 0, svc.LeadTimeDays)
	if dateOf(day).Before(earliest) {
		return nil
	}

	windows := ResolveWindows(weekly, exceptions, day)
	if len(windows) == 0 {
		return nil
	}

	type span struct{ start, end int }
	spans := make([]span, 0, len(windows))
	for _, w := range windows {
		ws, ok1 := parseHHMM(w.Start)
		we, ok2 := parseHHMM(w.End)
		if !ok1 || !ok2 || we <= ws {
			continue
		}
		spans = append(spans, span{start: ws, end: we})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	duration := svc.DurationMinutes
	if duration <= 0 {
		duration = stepMin // no duration configured: treat as one grid step
	}

	fitsSomeWindow := func(end int) bool {
		for _, s := range spans {
			if end <= s.end {
				return true
			}
		}
		return false
	}

	midnight := dateOf(day)
	var slots []models.Slot
	for _, s := range spans {
		for m := s.start; m+stepMin <= s.end; m += stepMin {
			end := m + duration
			if !fitsSomeWindow(end) {
				continue
			}
			startAt := midnight.Add(time.Duration(m) * time.Minute)
			endAt := midnight.Add(time.Duration(end) * time.Minute)
			if !EnsureNonOverlapping(existing, startAt, endAt, svc.BookingBufferMinutes) {
				continue
			}
			slots = append(slots, models.Slot{
				Start:   formatHHMM(m),
				End:     formatHHMM(end),
				StartAt: startAt,
				EndAt:   endAt,
			})
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i].StartAt.Before(slots[j].StartAt) })
	return slots
}

// DayHasAvailability reports whether a date has any open windows after
// exception override resolution.
func DayHasAvailability(
	weekly map[string][]models.AvailabilityWindow,
	exceptions map[string]models.AvailabilityException,
	day time.Time,
) bool {
	return len(ResolveWindows(weekly, exceptions, day)) > 0
}

func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
