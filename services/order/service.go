// File: services/order/service.go
package order

import (
	"context"
	"time"

	catalogRepo "wellvix/database/repository/catalog"
	orderRepo "wellvix/database/repository/order"
	"wellvix/models"
	"wellvix/services/notification"
	"wellvix/services/payment"
	"wellvix/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultOrderService implements Service.
type DefaultOrderService struct {
	OrderRepo   orderRepo.Repository
	CatalogRepo catalogRepo.Repository
	Payments    *payment.Coordinator
	Notifier    notification.Service

	now func() time.Time
}

// NewOrderService wires the order state machine.
func NewOrderService(
	orders orderRepo.Repository,
	catalog catalogRepo.Repository,
	payments *payment.Coordinator,
	notifier notification.Service,
) *DefaultOrderService {
	return &DefaultOrderService{
		OrderRepo:   orders,
		CatalogRepo: catalog,
		Payments:    payments,
		Notifier:    notifier,
		now:         time.Now,
	}
}

func (s *DefaultOrderService) CreateDraft(ctx context.Context, req DraftRequest) (*models.Order, error) {
	if req.ClientID == "" || req.ProviderID == "" || req.ServiceID == "" || req.Title == "" {
		return nil, utils.NewServiceError(utils.CodeMissingFields, "clientId, providerId, serviceId and title are required")
	}

	svc, err := s.CatalogRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}
	if svc.ProviderID != req.ProviderID || !svc.Active {
		return nil, utils.NewServiceError(utils.CodeInvalidService, "service %s is not offered by provider %s", req.ServiceID, req.ProviderID)
	}
	if svc.Type != models.ServiceTypeDigital {
		return nil, utils.NewServiceError(utils.CodeInvalidService, "service %s is not a digital offering", req.ServiceID)
	}

	currency := svc.Currency
	if currency == "" {
		provider, perr := s.CatalogRepo.GetProvider(ctx, req.ProviderID)
		if perr != nil {
			return nil, perr
		}
		currency = provider.DefaultCurrency
	}

	now := s.now().UTC()
	o := &models.Order{
		ID:           uuid.New().String(),
		ProviderID:   req.ProviderID,
		ClientID:     req.ClientID,
		ServiceID:    req.ServiceID,
		Status:       models.OrderStatusDraft,
		PriceCents:   svc.PriceFromCents,
		Currency:     currency,
		RefundStatus: models.RefundStatusNone,
		Brief: &models.Brief{
			Kind:         models.ServiceTypeDigital,
			Title:        req.Title,
			Goals:        req.Goals,
			Deliverables: req.Deliverables,
			Notes:        req.Notes,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.OrderRepo.Insert(ctx, o); err != nil {
		return nil, err
	}

	utils.GetLogger().Named("OrderService").Info("draft order created",
		zap.String("order_id", o.ID), zap.String("service_id", o.ServiceID))
	return o, nil
}

func (s *DefaultOrderService) Submit(ctx context.Context, clientID, orderID string) (*models.Order, error) {
	o, err := s.owned(ctx, orderID, clientID, "")
	if err != nil {
		return nil, err
	}
	if o.Brief == nil || o.Brief.Title == "" {
		return nil, utils.NewServiceError(utils.CodeMissingFields, "order brief must have a title before submission")
	}

	updated, err := s.OrderRepo.Transition(ctx, orderID,
		models.OrderStatusDraft, models.OrderStatusAwaitingProvider, nil, nil)
	if err != nil {
		return nil, err
	}
	s.notifyProvider(ctx, updated, "New order request", "A client submitted a brief for your review.")
	return updated, nil
}

func (s *DefaultOrderService) Accept(ctx context.Context, providerID, orderID string, etaDays int) (*models.Order, error) {
	if _, err := s.owned(ctx, orderID, "", providerID); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	set := map[string]interface{}{"acceptedAt": now}
	if etaDays > 0 {
		eta := now.AddDate(0, 0, etaDays)
		set["eta"] = eta
	}
	updated, err := s.OrderRepo.Transition(ctx, orderID,
		models.OrderStatusAwaitingProvider, models.OrderStatusAccepted, set, nil)
	if err != nil {
		return nil, err
	}
	s.notifyClient(ctx, updated, "Order accepted", "The provider accepted the order. Payment is now due.")
	return updated, nil
}

func (s *DefaultOrderService) Deliver(ctx context.Context, providerID, orderID string, req DeliveryRequest) (*models.Order, error) {
	o, err := s.owned(ctx, orderID, "", providerID)
	if err != nil {
		return nil, err
	}
	// Work is never handed over before the funds are held in escrow.
	if !o.Paid() {
		return nil, utils.NewServiceError(utils.CodeInvalidStatus, "order must be paid before delivery")
	}

	now := s.now().UTC()
	set := map[string]interface{}{
		"deliveredAt":  now,
		"deliveryNote": req.Note,
	}
	if len(req.Files) > 0 {
		set["deliveryFiles"] = req.Files
	}
	updated, err := s.OrderRepo.Transition(ctx, orderID,
		models.OrderStatusAccepted, models.OrderStatusDelivered, set, nil)
	if err != nil {
		return nil, err
	}
	s.notifyClient(ctx, updated, "Order delivered", "The provider delivered the work. Review it within the review window.")
	return updated, nil
}

func (s *DefaultOrderService) Approve(ctx context.Context, clientID, orderID string) (*models.Order, error) {
	o, err := s.owned(ctx, orderID, clientID, "")
	if err != nil {
		return nil, err
	}
	return s.approve(ctx, o, false)
}

// approve is the single completion path, shared by client approval and
// the auto-completion sweep. Payout first, status flip second: if the
// transfer fails the order stays delivered and the attempt is recorded,
// so a retry can release the funds.
func (s *DefaultOrderService) approve(ctx context.Context, o *models.Order, auto bool) (*models.Order, error) {
	logger := utils.GetLogger().Named("OrderService")

	if o.Status == models.OrderStatusCompleted && o.PayoutReference != "" {
		return o, nil
	}
	if o.Status != models.OrderStatusDelivered {
		return nil, utils.NewServiceError(utils.CodeInvalidStatus, "order must be '%s'", models.OrderStatusDelivered)
	}

	payoutRef, fee, err := s.Payments.ReleasePayout(ctx, o)
	if err != nil {
		now := s.now().UTC()
		if _, uerr := s.OrderRepo.Update(ctx, o.ID, map[string]interface{}{
			"approvalErrorCode": utils.CodeOf(err),
			"approvalErrorAt":   now,
		}); uerr != nil {
			logger.Error("failed to record approval error",
				zap.String("order_id", o.ID), zap.Error(uerr))
		}
		return nil, err
	}

	now := s.now().UTC()
	updated, err := s.OrderRepo.Transition(ctx, o.ID,
		models.OrderStatusDelivered, models.OrderStatusCompleted,
		map[string]interface{}{
			"payoutReference":     payoutRef,
			"applicationFeeCents": fee,
			"completedAt":         now,
			"autoCompleted":       auto,
			"approvalErrorCode":   "",
			"approvalErrorAt":     nil,
		}, nil)
	if err != nil {
		// The transfer went through but the flip lost a race. The payout
		// reference is recorded (first write wins) so the next approval
		// short-circuits instead of paying twice.
		logger.Error("payout released but completion write failed",
			zap.String("order_id", o.ID), zap.String("payout_ref", payoutRef), zap.Error(err))
		if uerr := s.OrderRepo.RecordPayout(ctx, o.ID, payoutRef, fee); uerr != nil {
			logger.Error("failed to record payout reference",
				zap.String("order_id", o.ID), zap.Error(uerr))
		}
		return nil, err
	}

	logger.Info("order completed",
		zap.String("order_id", updated.ID),
		zap.String("payout_ref", payoutRef),
		zap.Bool("auto", auto))
	s.notifyProvider(ctx, updated, "Order completed", "Funds were released to your account.")
	s.notifyClient(ctx, updated, "Order completed", "The order is now complete.")
	return updated, nil
}

func (s *DefaultOrderService) RequestRevision(ctx context.Context, clientID, orderID, note string) (*models.Order, error) {
	if _, err := s.owned(ctx, orderID, clientID, ""); err != nil {
		return nil, err
	}

	updated, err := s.OrderRepo.Transition(ctx, orderID,
		models.OrderStatusDelivered, models.OrderStatusAccepted,
		map[string]interface{}{"revisionNote": note},
		map[string]int64{"revisionCount": 1})
	if err != nil {
		return nil, err
	}
	s.notifyProvider(ctx, updated, "Revision requested", "The client requested changes to the delivery.")
	return updated, nil
}

func (s *DefaultOrderService) Cancel(ctx context.Context, orderID, reason string) (*models.Order, error) {
	set := map[string]interface{}{}
	if reason != "" {
		set["deliveryNote"] = reason
	}
	updated, err := s.OrderRepo.TransitionFromNonTerminal(ctx, orderID, models.OrderStatusCancelled, set)
	if err != nil {
		return nil, err
	}
	s.notifyClient(ctx, updated, "Order cancelled", "The order was cancelled by the platform.")
	s.notifyProvider(ctx, updated, "Order cancelled", "The order was cancelled by the platform.")
	return updated, nil
}

func (s *DefaultOrderService) Refund(ctx context.Context, orderID string, amountCents int64) (*models.Order, error) {
	o, err := s.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.Terminal() {
		return nil, utils.NewServiceError(utils.CodeInvalidStatus, "order is already %s", o.Status)
	}

	refundRef, refundStatus, err := s.Payments.RefundOrder(ctx, o, amountCents)
	if err != nil {
		return nil, err
	}

	updated, err := s.OrderRepo.TransitionFromNonTerminal(ctx, orderID, models.OrderStatusRefunded, map[string]interface{}{
		"refundStatus": refundStatus,
	})
	if err != nil {
		return nil, err
	}

	utils.GetLogger().Named("OrderService").Info("order refunded",
		zap.String("order_id", orderID),
		zap.String("refund_ref", refundRef),
		zap.String("refund_status", refundStatus))
	s.notifyClient(ctx, updated, "Order refunded", "Your payment was refunded.")
	s.notifyProvider(ctx, updated, "Order refunded", "The order was refunded to the client.")
	return updated, nil
}

func (s *DefaultOrderService) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return s.OrderRepo.GetByID(ctx, orderID)
}

func (s *DefaultOrderService) List(ctx context.Context, f orderRepo.ListFilter) ([]models.Order, error) {
	return s.OrderRepo.List(ctx, f)
}

// owned fetches the order and enforces actor ownership. Empty actor ids
// skip that side's check.
func (s *DefaultOrderService) owned(ctx context.Context, orderID, clientID, providerID string) (*models.Order, error) {
	o, err := s.OrderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if clientID != "" && o.ClientID != clientID {
		return nil, utils.NewServiceError(utils.CodeForbidden, "order belongs to another client")
	}
	if providerID != "" && o.ProviderID != providerID {
		return nil, utils.NewServiceError(utils.CodeForbidden, "order belongs to another provider")
	}
	return o, nil
}

func (s *DefaultOrderService) notifyClient(ctx context.Context, o *models.Order, title, body string) {
	if s.Notifier != nil {
		s.Notifier.NotifyClientOrderEvent(ctx, o, title, body)
	}
}

func (s *DefaultOrderService) notifyProvider(ctx context.Context, o *models.Order, title, body string) {
	if s.Notifier != nil {
		s.Notifier.NotifyProviderOrderEvent(ctx, o, title, body)
	}
}
