// File: services/booking/service.go
package booking

import (
	"context"
	"time"

	"wellvix/config"
	availabilityRepo "wellvix/database/repository/availability"
	bookingRepo "wellvix/database/repository/booking"
	catalogRepo "wellvix/database/repository/catalog"
	orderRepo "wellvix/database/repository/order"
	"wellvix/models"
	"wellvix/services/notification"
	"wellvix/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultBookingService implements Service on top of the mongo-backed
// repositories.
type DefaultBookingService struct {
	AvailabilityRepo availabilityRepo.Repository
	BookingRepo      bookingRepo.Repository
	CatalogRepo      catalogRepo.Repository
	OrderRepo        orderRepo.Repository
	Notifier         notification.Service

	now func() time.Time
}

// NewBookingService wires the scheduling core.
func NewBookingService(
	availability availabilityRepo.Repository,
	bookings bookingRepo.Repository,
	catalog catalogRepo.Repository,
	orders orderRepo.Repository,
	notifier notification.Service,
) *DefaultBookingService {
	return &DefaultBookingService{
		AvailabilityRepo: availability,
		BookingRepo:      bookings,
		CatalogRepo:      catalog,
		OrderRepo:        orders,
		Notifier:         notifier,
		now:              time.Now,
	}
}

func (s *DefaultBookingService) MonthAvailability(ctx context.Context, providerID string, year int, month time.Month) (map[string]bool, error) {
	weekly, err := s.AvailabilityRepo.GetWeekly(ctx, providerID)
	if err != nil {
		return nil, err
	}
	exceptions, err := s.AvailabilityRepo.GetExceptions(ctx, providerID)
	if err != nil {
		return nil, err
	}

	out := make(map[string]bool)
	for d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC); d.Month() == month; d = d.AddDate(0, 0, 1) {
		out[d.Format("2006-01-02")] = DayHasAvailability(weekly, exceptions, d)
	}
	return out, nil
}

func (s *DefaultBookingService) GetSlots(ctx context.Context, providerID, serviceID string, day time.Time) ([]models.Slot, error) {
	svc, err := s.offeredService(ctx, providerID, serviceID)
	if err != nil {
		return nil, err
	}

	weekly, err := s.AvailabilityRepo.GetWeekly(ctx, providerID)
	if err != nil {
		return nil, err
	}
	exceptions, err := s.AvailabilityRepo.GetExceptions(ctx, providerID)
	if err != nil {
		return nil, err
	}

	dayStart := dateOf(day)
	existing, err := s.BookingRepo.ListOccupying(ctx, providerID, dayStart, dayStart.AddDate(0, 0, 1), svc.BookingBufferMinutes)
	if err != nil {
		return nil, err
	}

	return BuildSlots(weekly, exceptions, existing, day, svc, s.now(), config.AppConfig.SlotStepMinutes), nil
}

func (s *DefaultBookingService) SetWeeklyAvailability(ctx context.Context, providerID string, weekly map[string][]models.AvailabilityWindow) error {
	for day, windows := range weekly {
		if len(day) != 1 || day[0] < '0' || day[0] > '6' {
			return utils.NewServiceError(utils.CodeInvalid, "invalid weekday key %q", day)
		}
		for _, w := range windows {
			ws, ok1 := parseHHMM(w.Start)
			we, ok2 := parseHHMM(w.End)
			if !ok1 || !ok2 || we <= ws {
				return utils.NewServiceError(utils.CodeInvalid, "invalid window %s-%s", w.Start, w.End)
			}
		}
	}
	return s.AvailabilityRepo.SetWeekly(ctx, providerID, weekly)
}

func (s *DefaultBookingService) GetWeeklyAvailability(ctx context.Context, providerID string) (map[string][]models.AvailabilityWindow, error) {
	return s.AvailabilityRepo.GetWeekly(ctx, providerID)
}

func (s *DefaultBookingService) SetException(ctx context.Context, exc models.AvailabilityException) error {
	if exc.ProviderID == "" || exc.Date == "" {
		return utils.NewServiceError(utils.CodeMissingFields, "providerId and date are required")
	}
	if _, err := time.Parse("2006-01-02", exc.Date); err != nil {
		return utils.NewServiceError(utils.CodeInvalid, "date must be YYYY-MM-DD")
	}
	for _, w := range exc.Slots {
		ws, ok1 := parseHHMM(w.Start)
		we, ok2 := parseHHMM(w.End)
		if !ok1 || !ok2 || we <= ws {
			return utils.NewServiceError(utils.CodeInvalid, "invalid window %s-%s", w.Start, w.End)
		}
	}
	return s.AvailabilityRepo.SetException(ctx, exc)
}

func (s *DefaultBookingService) DeleteException(ctx context.Context, providerID, date string) error {
	return s.AvailabilityRepo.DeleteException(ctx, providerID, date)
}

func (s *DefaultBookingService) RequestBooking(ctx context.Context, req BookingRequest) (*models.Booking, error) {
	logger := utils.GetLogger().Named("BookingService")

	if req.ProviderID == "" || req.ClientID == "" || req.ServiceID == "" || req.Start.IsZero() || req.End.IsZero() {
		return nil, utils.NewServiceError(utils.CodeMissingFields, "providerId, clientId, serviceId, start and end are required")
	}
	if !req.Start.Before(req.End) {
		return nil, utils.NewServiceError(utils.CodeInvalid, "end must be after start")
	}
	if !dateOf(req.Start).Equal(dateOf(req.End)) {
		return nil, utils.NewServiceError(utils.CodeInvalid, "a booking must start and end on the same day")
	}

	svc, err := s.offeredService(ctx, req.ProviderID, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.DurationMinutes > 0 {
		if got := int(req.End.Sub(req.Start) / time.Minute); got != svc.DurationMinutes {
			return nil, utils.NewServiceError(utils.CodeInvalid, "booking length must be %d minutes", svc.DurationMinutes)
		}
	}

	earliest := dateOf(s.now()).AddDate(0, 0, svc.LeadTimeDays)
	if dateOf(req.Start).Before(earliest) {
		return nil, utils.NewServiceError(utils.CodeOutsideAvailability, "date is inside the provider's lead time")
	}

	weekly, err := s.AvailabilityRepo.GetWeekly(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	exceptions, err := s.AvailabilityRepo.GetExceptions(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	windows := ResolveWindows(weekly, exceptions, req.Start)
	if !IsInsideAvailability(windows, req.Start, req.End) {
		return nil, utils.NewServiceError(utils.CodeOutsideAvailability, "requested interval falls outside the provider's availability")
	}

	now := s.now().UTC()
	booking := &models.Booking{
		ID:         uuid.New().String(),
		ProviderID: req.ProviderID,
		ClientID:   req.ClientID,
		ServiceID:  req.ServiceID,
		Status:     models.BookingStatusRequested,
		Start:      req.Start,
		End:        req.End,
		Notes:      req.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.BookingRepo.CreateIfNoOverlap(ctx, booking, svc.BookingBufferMinutes); err != nil {
		return nil, err
	}

	logger.Info("booking requested",
		zap.String("booking_id", booking.ID),
		zap.String("provider_id", booking.ProviderID),
		zap.Time("start", booking.Start))
	if s.Notifier != nil {
		s.Notifier.NotifyBookingRequested(ctx, booking)
	}
	return booking, nil
}

func (s *DefaultBookingService) AcceptBooking(ctx context.Context, providerID, bookingID string) (*models.Booking, *models.Order, error) {
	logger := utils.GetLogger().Named("BookingService")

	b, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	if b.ProviderID != providerID {
		return nil, nil, utils.NewServiceError(utils.CodeForbidden, "booking belongs to another provider")
	}
	if b.Status != models.BookingStatusRequested {
		return nil, nil, utils.NewServiceError(utils.CodeInvalidStatus, "booking must be '%s'", models.BookingStatusRequested)
	}

	svc, err := s.offeredService(ctx, b.ProviderID, b.ServiceID)
	if err != nil {
		return nil, nil, err
	}

	// The calendar may have filled up since the request came in. Re-check
	// against every other occupying booking, buffer included.
	occupying, err := s.BookingRepo.ListOccupying(ctx, providerID, b.Start, b.End, svc.BookingBufferMinutes)
	if err != nil {
		return nil, nil, err
	}
	others := occupying[:0:0]
	for _, o := range occupying {
		if o.ID != b.ID {
			others = append(others, o)
		}
	}
	if !EnsureNonOverlapping(others, b.Start, b.End, svc.BookingBufferMinutes) {
		return nil, nil, utils.NewServiceError(utils.CodeOverlapOrBuffer, "slot now conflicts with another booking or its buffer")
	}

	currency := svc.Currency
	if currency == "" {
		provider, perr := s.CatalogRepo.GetProvider(ctx, providerID)
		if perr != nil {
			return nil, nil, perr
		}
		currency = provider.DefaultCurrency
	}

	now := s.now().UTC()
	start, end := b.Start, b.End
	order := &models.Order{
		ID:           uuid.New().String(),
		ProviderID:   b.ProviderID,
		ClientID:     b.ClientID,
		ServiceID:    b.ServiceID,
		Status:       models.OrderStatusAwaitingProvider,
		PriceCents:   svc.PriceFromCents,
		Currency:     currency,
		RefundStatus: models.RefundStatusNone,
		Brief: &models.Brief{
			Kind:  models.ServiceTypeInPerson,
			Title: svc.Title,
			Start: &start,
			End:   &end,
			Notes: b.Notes,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.OrderRepo.Insert(ctx, order); err != nil {
		return nil, nil, err
	}

	confirmed, err := s.BookingRepo.ConfirmWithOrder(ctx, b.ID, order.ID)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("booking accepted",
		zap.String("booking_id", confirmed.ID),
		zap.String("order_id", order.ID))
	if s.Notifier != nil {
		s.Notifier.NotifyBookingDecision(ctx, confirmed)
	}
	return confirmed, order, nil
}

func (s *DefaultBookingService) RejectBooking(ctx context.Context, providerID, bookingID string) (*models.Booking, error) {
	b, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ProviderID != providerID {
		return nil, utils.NewServiceError(utils.CodeForbidden, "booking belongs to another provider")
	}
	updated, err := s.BookingRepo.UpdateStatus(ctx, bookingID, models.BookingStatusRequested, models.BookingStatusRejected)
	if err != nil {
		return nil, err
	}
	if s.Notifier != nil {
		s.Notifier.NotifyBookingDecision(ctx, updated)
	}
	return updated, nil
}

func (s *DefaultBookingService) CancelBooking(ctx context.Context, clientID, bookingID string) (*models.Booking, error) {
	b, err := s.BookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.ClientID != clientID {
		return nil, utils.NewServiceError(utils.CodeForbidden, "booking belongs to another client")
	}
	switch b.Status {
	case models.BookingStatusRequested, models.BookingStatusConfirmed:
	default:
		return nil, utils.NewServiceError(utils.CodeInvalidStatus, "booking is already %s", b.Status)
	}
	updated, err := s.BookingRepo.UpdateStatus(ctx, bookingID, b.Status, models.BookingStatusCancelled)
	if err != nil {
		return nil, err
	}
	s.cancelLinkedOrder(ctx, updated)
	if s.Notifier != nil {
		s.Notifier.NotifyBookingDecision(ctx, updated)
	}
	return updated, nil
}

// cancelLinkedOrder winds down the order a confirmed booking created.
// A paid order is left alone; releasing those funds is an admin refund.
func (s *DefaultBookingService) cancelLinkedOrder(ctx context.Context, b *models.Booking) {
	if b.OrderID == "" {
		return
	}
	logger := utils.GetLogger().Named("BookingService")

	o, err := s.OrderRepo.GetByID(ctx, b.OrderID)
	if err != nil {
		logger.Warn("cancelled booking has an unreadable order",
			zap.String("booking_id", b.ID), zap.String("order_id", b.OrderID), zap.Error(err))
		return
	}
	if o.Terminal() {
		return
	}
	if o.Paid() {
		logger.Warn("cancelled booking leaves a paid order for admin review",
			zap.String("booking_id", b.ID), zap.String("order_id", o.ID))
		return
	}
	if _, err := s.OrderRepo.TransitionFromNonTerminal(ctx, o.ID, models.OrderStatusCancelled, nil); err != nil {
		logger.Warn("failed to cancel linked order",
			zap.String("booking_id", b.ID), zap.String("order_id", o.ID), zap.Error(err))
	}
}

func (s *DefaultBookingService) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	return s.BookingRepo.GetByID(ctx, bookingID)
}

func (s *DefaultBookingService) ListBookings(ctx context.Context, providerID string) ([]models.Booking, error) {
	return s.BookingRepo.ListByProvider(ctx, providerID)
}

// offeredService loads a service and checks it is a live in-person
// offering of this provider.
func (s *DefaultBookingService) offeredService(ctx context.Context, providerID, serviceID string) (*models.Service, error) {
	svc, err := s.CatalogRepo.GetService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != providerID || !svc.Active {
		return nil, utils.NewServiceError(utils.CodeInvalidService, "service %s is not offered by provider %s", serviceID, providerID)
	}
	if svc.Type != models.ServiceTypeInPerson {
		return nil, utils.NewServiceError(utils.CodeInvalidService, "service %s is not bookable in person", serviceID)
	}
	return svc, nil
}
