package booking

import (
	"context"
	"testing"
	"time"

	orderRepo "wellvix/database/repository/order"
	"wellvix/models"
	"wellvix/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAvailabilityRepo struct {
	weekly     map[string][]models.AvailabilityWindow
	exceptions map[string]models.AvailabilityException
}

func (f *fakeAvailabilityRepo) GetWeekly(ctx context.Context, providerID string) (map[string][]models.AvailabilityWindow, error) {
	return f.weekly, nil
}

func (f *fakeAvailabilityRepo) SetWeekly(ctx context.Context, providerID string, weekly map[string][]models.AvailabilityWindow) error {
	f.weekly = weekly
	return nil
}

func (f *fakeAvailabilityRepo) GetExceptions(ctx context.Context, providerID string) (map[string]models.AvailabilityException, error) {
	return f.exceptions, nil
}

func (f *fakeAvailabilityRepo) SetException(ctx context.Context, exc models.AvailabilityException) error {
	if f.exceptions == nil {
		f.exceptions = map[string]models.AvailabilityException{}
	}
	f.exceptions[exc.Date] = exc
	return nil
}

func (f *fakeAvailabilityRepo) DeleteException(ctx context.Context, providerID, date string) error {
	delete(f.exceptions, date)
	return nil
}

type fakeBookingRepo struct {
	bookings map[string]*models.Booking
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{bookings: map[string]*models.Booking{}}
}

func (f *fakeBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := f.bookings[id]
	if !ok {
		return nil, utils.NewServiceError(utils.CodeNotFound, "booking %s not found", id)
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) ListByProvider(ctx context.Context, providerID string) ([]models.Booking, error) {
	var out []models.Booking
	for _, b := range f.bookings {
		if b.ProviderID == providerID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) ListOccupying(ctx context.Context, providerID string, from, to time.Time, bufferMin int) ([]models.Booking, error) {
	buffer := time.Duration(bufferMin) * time.Minute
	var out []models.Booking
	for _, b := range f.bookings {
		if b.ProviderID != providerID {
			continue
		}
		if b.Status != models.BookingStatusRequested && b.Status != models.BookingStatusConfirmed {
			continue
		}
		if b.Start.Before(to) && from.Before(b.End.Add(buffer)) {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBookingRepo) CreateIfNoOverlap(ctx context.Context, booking *models.Booking, bufferMin int) error {
	existing, _ := f.ListOccupying(ctx, booking.ProviderID, booking.Start, booking.End, bufferMin)
	if !EnsureNonOverlapping(existing, booking.Start, booking.End, bufferMin) {
		return utils.NewServiceError(utils.CodeOverlap, "slot is no longer available")
	}
	copied := *booking
	f.bookings[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) ConfirmWithOrder(ctx context.Context, bookingID, orderID string) (*models.Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, utils.NewServiceError(utils.CodeNotFound, "booking %s not found", bookingID)
	}
	if b.Status != models.BookingStatusRequested {
		return nil, utils.NewServiceError(utils.CodeInvalidStatus, "booking must be '%s'", models.BookingStatusRequested)
	}
	b.Status = models.BookingStatusConfirmed
	b.OrderID = orderID
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, bookingID, from, to string) (*models.Booking, error) {
	b, ok := f.bookings[bookingID]
	if !ok {
		return nil, utils.NewServiceError(utils.CodeNotFound, "booking %s not found", bookingID)
	}
	if b.Status != from {
		return nil, utils.NewServiceError(utils.CodeInvalidStatus, "booking must be '%s'", from)
	}
	b.Status = to
	copied := *b
	return &copied, nil
}

type fakeCatalogRepo struct {
	services  map[string]*models.Service
	providers map[string]*models.Provider
}

func (f *fakeCatalogRepo) GetService(ctx context.Context, id string) (*models.Service, error) {
	s, ok := f.services[id]
	if !ok {
		return nil, utils.NewServiceError(utils.CodeInvalidService, "service %s not found", id)
	}
	return s, nil
}

func (f *fakeCatalogRepo) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	p, ok := f.providers[id]
	if !ok {
		return nil, utils.NewServiceError(utils.CodeNotFound, "provider %s not found", id)
	}
	return p, nil
}

func (f *fakeCatalogRepo) GetClient(ctx context.Context, id string) (*models.Client, error) {
	return nil, utils.NewServiceError(utils.CodeNotFound, "client %s not found", id)
}

// fakeOrderStore covers only what the booking flow touches; the rest of
// the order repository surface is unused here.
type fakeOrderStore struct {
	inserted []*models.Order
}

func (f *fakeOrderStore) Insert(ctx context.Context, o *models.Order) error {
	f.inserted = append(f.inserted, o)
	return nil
}

func (f *fakeOrderStore) GetByID(ctx context.Context, id string) (*models.Order, error) {
	for _, o := range f.inserted {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, utils.NewServiceError(utils.CodeNotFound, "order %s not found", id)
}

func (f *fakeOrderStore) List(ctx context.Context, _ orderRepo.ListFilter) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) ListDeliveredBefore(ctx context.Context, cutoff time.Time, limit int64) ([]models.Order, error) {
	return nil, nil
}

func (f *fakeOrderStore) Transition(ctx context.Context, id, from, to string, set map[string]interface{}, inc map[string]int64) (*models.Order, error) {
	return nil, utils.NewServiceError(utils.CodeInvalidStatus, "not supported in booking tests")
}

func (f *fakeOrderStore) TransitionFromNonTerminal(ctx context.Context, id, to string, set map[string]interface{}) (*models.Order, error) {
	o, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o.Terminal() {
		return nil, utils.NewServiceError(utils.CodeInvalidStatus, "order is already %s", o.Status)
	}
	o.Status = to
	copied := *o
	return &copied, nil
}

func (f *fakeOrderStore) Update(ctx context.Context, id string, set map[string]interface{}) (*models.Order, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeOrderStore) RecordPayout(ctx context.Context, id, payoutReference string, feeCents int64) error {
	return nil
}

func (f *fakeOrderStore) MarkPaid(ctx context.Context, id, paymentReference, currency string, paidAt time.Time) error {
	return nil
}

func newTestBookingService(t *testing.T) (*DefaultBookingService, *fakeBookingRepo, *fakeOrderStore) {
	t.Helper()
	avail := &fakeAvailabilityRepo{
		weekly: map[string][]models.AvailabilityWindow{
			"2": {{Start: "09:00", End: "12:00"}},
		},
	}
	bookings := newFakeBookingRepo()
	catalog := &fakeCatalogRepo{
		services: map[string]*models.Service{
			"svc1": {
				ID:                   "svc1",
				ProviderID:           "p1",
				Title:                "Deep clean",
				Type:                 models.ServiceTypeInPerson,
				DurationMinutes:      30,
				BookingBufferMinutes: 15,
				PriceFromCents:       10000,
				Currency:             "usd",
				Active:               true,
			},
		},
		providers: map[string]*models.Provider{
			"p1": {ID: "p1", Name: "Pat", DefaultCurrency: "usd"},
		},
	}
	orders := &fakeOrderStore{}
	svc := NewBookingService(avail, bookings, catalog, orders, nil)
	svc.now = func() time.Time { return time.Date(2026, 8, 25, 8, 0, 0, 0, time.UTC) }
	return svc, bookings, orders
}

func validRequest() BookingRequest {
	return BookingRequest{
		ProviderID: "p1",
		ClientID:   "c1",
		ServiceID:  "svc1",
		Start:      time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
		End:        time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestRequestBookingHappyPath(t *testing.T) {
	svc, repo, _ := newTestBookingService(t)

	b, err := svc.RequestBooking(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusRequested, b.Status)
	assert.NotEmpty(t, b.ID)
	assert.Len(t, repo.bookings, 1)
}

func TestRequestBookingValidation(t *testing.T) {
	svc, _, _ := newTestBookingService(t)
	ctx := context.Background()

	t.Run("missing fields", func(t *testing.T) {
		req := validRequest()
		req.ClientID = ""
		_, err := svc.RequestBooking(ctx, req)
		assert.Equal(t, utils.CodeMissingFields, utils.CodeOf(err))
	})

	t.Run("end before start", func(t *testing.T) {
		req := validRequest()
		req.Start, req.End = req.End, req.Start
		_, err := svc.RequestBooking(ctx, req)
		assert.Equal(t, utils.CodeInvalid, utils.CodeOf(err))
	})

	t.Run("wrong duration", func(t *testing.T) {
		req := validRequest()
		req.End = req.Start.Add(45 * time.Minute)
		_, err := svc.RequestBooking(ctx, req)
		assert.Equal(t, utils.CodeInvalid, utils.CodeOf(err))
	})

	t.Run("unknown service", func(t *testing.T) {
		req := validRequest()
		req.ServiceID = "nope"
		_, err := svc.RequestBooking(ctx, req)
		assert.Equal(t, utils.CodeInvalidService, utils.CodeOf(err))
	})

	t.Run("outside availability", func(t *testing.T) {
		req := validRequest()
		req.Start = time.Date(2026, 9, 1, 13, 0, 0, 0, time.UTC)
		req.End = req.Start.Add(30 * time.Minute)
		_, err := svc.RequestBooking(ctx, req)
		assert.Equal(t, utils.CodeOutsideAvailability, utils.CodeOf(err))
	})
}

func TestRequestBookingDoubleBookingBlocked(t *testing.T) {
	svc, _, _ := newTestBookingService(t)
	ctx := context.Background()

	_, err := svc.RequestBooking(ctx, validRequest())
	require.NoError(t, err)

	// Same interval for a second client.
	req := validRequest()
	req.ClientID = "c2"
	_, err = svc.RequestBooking(ctx, req)
	assert.Equal(t, utils.CodeOverlap, utils.CodeOf(err))

	// Inside the 15-minute buffer after the first booking.
	req.Start = time.Date(2026, 9, 1, 9, 30, 0, 0, time.UTC)
	req.End = req.Start.Add(30 * time.Minute)
	_, err = svc.RequestBooking(ctx, req)
	assert.Equal(t, utils.CodeOverlap, utils.CodeOf(err))

	// Past the buffer is fine.
	req.Start = time.Date(2026, 9, 1, 9, 45, 0, 0, time.UTC)
	req.End = req.Start.Add(30 * time.Minute)
	_, err = svc.RequestBooking(ctx, req)
	assert.NoError(t, err)
}

func TestAcceptBookingCreatesOrder(t *testing.T) {
	svc, repo, orders := newTestBookingService(t)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, validRequest())
	require.NoError(t, err)

	confirmed, o, err := svc.AcceptBooking(ctx, "p1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusConfirmed, confirmed.Status)
	assert.Equal(t, o.ID, confirmed.OrderID)

	assert.Equal(t, models.OrderStatusAwaitingProvider, o.Status)
	assert.Equal(t, int64(10000), o.PriceCents)
	assert.Equal(t, "usd", o.Currency)
	require.NotNil(t, o.Brief)
	assert.Equal(t, models.ServiceTypeInPerson, o.Brief.Kind)
	assert.Equal(t, b.Start, *o.Brief.Start)

	assert.Len(t, orders.inserted, 1)
	assert.Equal(t, models.BookingStatusConfirmed, repo.bookings[b.ID].Status)
}

func TestAcceptBookingGuards(t *testing.T) {
	svc, _, _ := newTestBookingService(t)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, validRequest())
	require.NoError(t, err)

	t.Run("wrong provider", func(t *testing.T) {
		_, _, err := svc.AcceptBooking(ctx, "p2", b.ID)
		assert.Equal(t, utils.CodeForbidden, utils.CodeOf(err))
	})

	t.Run("unknown booking", func(t *testing.T) {
		_, _, err := svc.AcceptBooking(ctx, "p1", "nope")
		assert.Equal(t, utils.CodeNotFound, utils.CodeOf(err))
	})

	t.Run("already decided", func(t *testing.T) {
		_, _, err := svc.AcceptBooking(ctx, "p1", b.ID)
		require.NoError(t, err)
		_, _, err = svc.AcceptBooking(ctx, "p1", b.ID)
		assert.Equal(t, utils.CodeInvalidStatus, utils.CodeOf(err))
	})
}

func TestRejectAndCancelBooking(t *testing.T) {
	svc, _, _ := newTestBookingService(t)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, validRequest())
	require.NoError(t, err)

	t.Run("client cannot cancel someone else's booking", func(t *testing.T) {
		_, err := svc.CancelBooking(ctx, "c2", b.ID)
		assert.Equal(t, utils.CodeForbidden, utils.CodeOf(err))
	})

	t.Run("reject frees the slot", func(t *testing.T) {
		rejected, err := svc.RejectBooking(ctx, "p1", b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusRejected, rejected.Status)

		// The interval is bookable again.
		req := validRequest()
		req.ClientID = "c2"
		_, err = svc.RequestBooking(ctx, req)
		assert.NoError(t, err)
	})
}

func TestCancelConfirmedBookingCancelsLinkedOrder(t *testing.T) {
	svc, _, orders := newTestBookingService(t)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, validRequest())
	require.NoError(t, err)
	_, o, err := svc.AcceptBooking(ctx, "p1", b.ID)
	require.NoError(t, err)

	cancelled, err := svc.CancelBooking(ctx, "c1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	got, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusCancelled, got.Status)

	// The interval is bookable again.
	req := validRequest()
	req.ClientID = "c2"
	_, err = svc.RequestBooking(ctx, req)
	assert.NoError(t, err)
}

func TestCancelBookingLeavesPaidOrderForAdmin(t *testing.T) {
	svc, _, orders := newTestBookingService(t)
	ctx := context.Background()

	b, err := svc.RequestBooking(ctx, validRequest())
	require.NoError(t, err)
	_, o, err := svc.AcceptBooking(ctx, "p1", b.ID)
	require.NoError(t, err)

	// Payment landed before the client changed their mind.
	paid := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	stored, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	stored.PaidAt = &paid

	cancelled, err := svc.CancelBooking(ctx, "c1", b.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	got, err := orders.GetByID(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusAwaitingProvider, got.Status)
}

func TestSetWeeklyAvailabilityValidation(t *testing.T) {
	svc, _, _ := newTestBookingService(t)
	ctx := context.Background()

	err := svc.SetWeeklyAvailability(ctx, "p1", map[string][]models.AvailabilityWindow{
		"7": {{Start: "09:00", End: "10:00"}},
	})
	assert.Equal(t, utils.CodeInvalid, utils.CodeOf(err))

	err = svc.SetWeeklyAvailability(ctx, "p1", map[string][]models.AvailabilityWindow{
		"1": {{Start: "10:00", End: "09:00"}},
	})
	assert.Equal(t, utils.CodeInvalid, utils.CodeOf(err))

	err = svc.SetWeeklyAvailability(ctx, "p1", map[string][]models.AvailabilityWindow{
		"1": {{Start: "09:00", End: "17:00"}},
	})
	assert.NoError(t, err)
}
