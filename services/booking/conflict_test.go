package booking

import (
	"testing"
	"time"

	"wellvix/models"

	"github.com/stretchr/testify/assert"
)

func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("bad time literal %q: %v", value, err)
	}
	return ts
}

func TestOverlapsHalfOpen(t *testing.T) {
	a1 := mustTime(t, "2026-09-01T09:00:00Z")
	a2 := mustTime(t, "2026-09-01T10:00:00Z")
	a3 := mustTime(t, "2026-09-01T11:00:00Z")

	assert.True(t, Overlaps(a1, a2, mustTime(t, "2026-09-01T09:30:00Z"), a3))
	assert.True(t, Overlaps(a1, a3, a1, a2))

	// Back-to-back intervals share a boundary but do not conflict.
	assert.False(t, Overlaps(a1, a2, a2, a3))
	assert.False(t, Overlaps(a2, a3, a1, a2))
}

func TestEnsureNonOverlappingBuffer(t *testing.T) {
	existing := []models.Booking{{
		Status: models.BookingStatusConfirmed,
		Start:  mustTime(t, "2026-09-01T10:00:00Z"),
		End:    mustTime(t, "2026-09-01T10:30:00Z"),
	}}

	// Immediately after the booking but inside its 15-minute buffer.
	assert.False(t, EnsureNonOverlapping(existing,
		mustTime(t, "2026-09-01T10:30:00Z"), mustTime(t, "2026-09-01T11:00:00Z"), 15))

	// Exactly at the buffered end.
	assert.True(t, EnsureNonOverlapping(existing,
		mustTime(t, "2026-09-01T10:45:00Z"), mustTime(t, "2026-09-01T11:15:00Z"), 15))

	// Before the booking: no buffer applies on that side.
	assert.True(t, EnsureNonOverlapping(existing,
		mustTime(t, "2026-09-01T09:30:00Z"), mustTime(t, "2026-09-01T10:00:00Z"), 15))

	// Without a buffer, back-to-back is allowed.
	assert.True(t, EnsureNonOverlapping(existing,
		mustTime(t, "2026-09-01T10:30:00Z"), mustTime(t, "2026-09-01T11:00:00Z"), 0))
}

func TestIsInsideAvailability(t *testing.T) {
	windows := []models.AvailabilityWindow{
		{Start: "09:00", End: "12:00"},
		{Start: "14:00", End: "17:00"},
	}

	assert.True(t, IsInsideAvailability(windows,
		mustTime(t, "2026-09-01T09:00:00Z"), mustTime(t, "2026-09-01T12:00:00Z")))
	assert.True(t, IsInsideAvailability(windows,
		mustTime(t, "2026-09-01T15:00:00Z"), mustTime(t, "2026-09-01T15:30:00Z")))

	// Straddles the gap between windows.
	assert.False(t, IsInsideAvailability(windows,
		mustTime(t, "2026-09-01T11:30:00Z"), mustTime(t, "2026-09-01T14:30:00Z")))
	assert.False(t, IsInsideAvailability(windows,
		mustTime(t, "2026-09-01T08:30:00Z"), mustTime(t, "2026-09-01T09:30:00Z")))
}

func TestResolveWindowsExceptionOverride(t *testing.T) {
	weekly := map[string][]models.AvailabilityWindow{
		"2": {{Start: "09:00", End: "12:00"}},
	}
	tuesday := mustTime(t, "2026-09-01T00:00:00Z")

	t.Run("no exception falls back to weekly", func(t *testing.T) {
		got := ResolveWindows(weekly, nil, tuesday)
		assert.Equal(t, weekly["2"], got)
	})

	t.Run("closed exception yields nothing", func(t *testing.T) {
		exc := map[string]models.AvailabilityException{
			"2026-09-01": {ProviderID: "p1", Date: "2026-09-01", Closed: true},
		}
		assert.Empty(t, ResolveWindows(weekly, exc, tuesday))
	})

	t.Run("open exception with no slots yields nothing", func(t *testing.T) {
		exc := map[string]models.AvailabilityException{
			"2026-09-01": {ProviderID: "p1", Date: "2026-09-01"},
		}
		assert.Empty(t, ResolveWindows(weekly, exc, tuesday))
	})

	t.Run("exception slots replace weekly entirely", func(t *testing.T) {
		exc := map[string]models.AvailabilityException{
			"2026-09-01": {
				ProviderID: "p1",
				Date:       "2026-09-01",
				Slots:      []models.AvailabilityWindow{{Start: "13:00", End: "15:00"}},
			},
		}
		got := ResolveWindows(weekly, exc, tuesday)
		assert.Equal(t, []models.AvailabilityWindow{{Start: "13:00", End: "15:00"}}, got)
	})

	t.Run("exception on another date does not apply", func(t *testing.T) {
		exc := map[string]models.AvailabilityException{
			"2026-09-02": {ProviderID: "p1", Date: "2026-09-02", Closed: true},
		}
		assert.Equal(t, weekly["2"], ResolveWindows(weekly, exc, tuesday))
	})
}

func TestParseFormatHHMM(t *testing.T) {
	m, ok := parseHHMM("09:30")
	assert.True(t, ok)
	assert.Equal(t, 570, m)

	_, ok = parseHHMM("9:30")
	assert.False(t, ok)
	_, ok = parseHHMM("24:00")
	assert.False(t, ok)
	_, ok = parseHHMM("09:60")
	assert.False(t, ok)

	assert.Equal(t, "09:30", formatHHMM(570))
	assert.Equal(t, "00:00", formatHHMM(0))
	assert.Equal(t, "23:45", formatHHMM(1425))
}
