// File: services/notification/notification.go
package notification

import (
	"context"
	"errors"

	catalogRepo "wellvix/database/repository/catalog"
	"wellvix/models"
	"wellvix/utils"

	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
)

// Service delivers push notifications for lifecycle events. Delivery is
// best effort: a failed push never fails the transition that triggered it.
type Service interface {
	NotifyBookingRequested(ctx context.Context, b *models.Booking)
	NotifyBookingDecision(ctx context.Context, b *models.Booking)
	NotifyClientOrderEvent(ctx context.Context, o *models.Order, title, body string)
	NotifyProviderOrderEvent(ctx context.Context, o *models.Order, title, body string)
}

var errFCMDisabled = errors.New("fcm client not initialised")

type fcmNotificationService struct {
	catalogRepo catalogRepo.Repository

	send func(ctx context.Context, msg *messaging.Message) error
}

// NewNotificationService builds the FCM-backed notifier. When Firebase
// was not initialised every call degrades to a log line.
func NewNotificationService(catalog catalogRepo.Repository) Service {
	return &fcmNotificationService{
		catalogRepo: catalog,
		send: func(ctx context.Context, msg *messaging.Message) error {
			if utils.FCMClient == nil {
				return errFCMDisabled
			}
			_, err := utils.FCMClient.Send(ctx, msg)
			return err
		},
	}
}

func (s *fcmNotificationService) NotifyBookingRequested(ctx context.Context, b *models.Booking) {
	s.pushToProvider(ctx, b.ProviderID,
		"New booking request",
		"A client requested "+b.Start.Format("Mon Jan 2 15:04")+".",
		map[string]string{"type": "booking_requested", "bookingId": b.ID})
}

// NotifyBookingDecision tells the party that did not make the decision:
// providers accept or reject, clients cancel.
func (s *fcmNotificationService) NotifyBookingDecision(ctx context.Context, b *models.Booking) {
	data := map[string]string{"type": "booking_" + b.Status, "bookingId": b.ID}
	when := b.Start.Format("Mon Jan 2 15:04")

	if b.Status == models.BookingStatusCancelled {
		s.pushToProvider(ctx, b.ProviderID, "Booking cancelled",
			"The client cancelled the booking for "+when+".", data)
		return
	}
	s.pushToClient(ctx, b.ClientID, "Booking "+b.Status,
		"Your booking for "+when+" is now "+b.Status+".", data)
}

func (s *fcmNotificationService) NotifyClientOrderEvent(ctx context.Context, o *models.Order, title, body string) {
	s.pushToClient(ctx, o.ClientID, title, body, orderData(o))
}

func (s *fcmNotificationService) NotifyProviderOrderEvent(ctx context.Context, o *models.Order, title, body string) {
	s.pushToProvider(ctx, o.ProviderID, title, body, orderData(o))
}

func orderData(o *models.Order) map[string]string {
	return map[string]string{"type": "order_event", "orderId": o.ID, "status": o.Status}
}

func (s *fcmNotificationService) pushToProvider(ctx context.Context, providerID, title, body string, data map[string]string) {
	provider, err := s.catalogRepo.GetProvider(ctx, providerID)
	if err != nil || provider.FCMToken == "" {
		utils.GetLogger().Named("Notification").Debug("no push token for provider",
			zap.String("provider_id", providerID))
		return
	}
	s.push(ctx, provider.FCMToken, title, body, data)
}

func (s *fcmNotificationService) pushToClient(ctx context.Context, clientID, title, body string, data map[string]string) {
	client, err := s.catalogRepo.GetClient(ctx, clientID)
	if err != nil || client.FCMToken == "" {
		utils.GetLogger().Named("Notification").Debug("no push token for client",
			zap.String("client_id", clientID))
		return
	}
	s.push(ctx, client.FCMToken, title, body, data)
}

func (s *fcmNotificationService) push(ctx context.Context, token, title, body string, data map[string]string) {
	logger := utils.GetLogger().Named("Notification")

	msg := &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
	}
	if err := s.send(ctx, msg); err != nil {
		if errors.Is(err, errFCMDisabled) {
			logger.Debug("FCM not configured, skipping push", zap.String("title", title))
			return
		}
		logger.Warn("push delivery failed", zap.String("title", title), zap.Error(err))
	}
}
