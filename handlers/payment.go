// File: handlers/payment.go
package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"wellvix/config"
	"wellvix/middleware"
	"wellvix/models"
	"wellvix/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const webhookMaxBodyBytes = 65536

// CreatePaymentIntentHandler starts payment collection for an accepted
// order. Only the order's client may pay it.
func (hb *HandlerBundle) CreatePaymentIntentHandler(c *gin.Context) {
	orderID := c.Param("orderID")

	o, err := hb.OrderSvc.Get(c.Request.Context(), orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if middleware.AuthRole(c) != middleware.RoleAdmin && middleware.AuthSubject(c) != o.ClientID {
		abortWithError(c, utils.NewServiceError(utils.CodeForbidden, "order belongs to another client"))
		return
	}

	updated, intent, err := hb.Payments.CreateIntent(c.Request.Context(), orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"order":        updated,
		"reference":    intent.Reference,
		"clientSecret": intent.ClientSecret,
	})
}

// StripeWebhookHandler verifies and folds gateway notifications into
// order state. Replayed event ids are acknowledged without effect.
func (hb *HandlerBundle) StripeWebhookHandler(c *gin.Context) {
	logger := utils.GetLogger().Named("Webhook")

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, webhookMaxBodyBytes)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), config.AppConfig.StripeWebhookSecret)
	if err != nil {
		logger.Warn("webhook signature verification failed", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "signature verification failed"})
		return
	}

	evt := models.PaymentEvent{ID: event.ID, Type: string(event.Type)}
	switch event.Type {
	case models.EventCheckoutCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
			return
		}
		evt.OrderID = session.Metadata["orderId"]
		evt.Currency = string(session.Currency)
		if session.PaymentIntent != nil {
			evt.PaymentReference = session.PaymentIntent.ID
		}
	case models.EventPaymentSucceeded, models.EventPaymentFailed:
		var pi stripe.PaymentIntent
		if err := json.Unmarshal(event.Data.Raw, &pi); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed event payload"})
			return
		}
		evt.OrderID = pi.Metadata["orderId"]
		evt.PaymentReference = pi.ID
		evt.Currency = string(pi.Currency)
	default:
		// Recorded for idempotency, otherwise ignored.
	}

	fresh, err := hb.Payments.ProcessEvent(c.Request.Context(), evt)
	if err != nil {
		logger.Error("failed to process payment event",
			zap.String("event_id", evt.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "event processing failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true, "duplicate": !fresh})
}
