// File: handlers/bundle.go
package handlers

import (
	"errors"
	"net/http"

	eventRepo "wellvix/database/repository/event"
	"wellvix/services/booking"
	"wellvix/services/order"
	"wellvix/services/payment"
	"wellvix/utils"

	"github.com/gin-gonic/gin"
)

// HandlerBundle aggregates the services the HTTP layer dispatches to.
type HandlerBundle struct {
	BookingSvc booking.Service
	OrderSvc   order.Service
	Payments   *payment.Coordinator
	EventRepo  eventRepo.Repository
}

// statusForCode maps stable service error codes to HTTP statuses.
func statusForCode(code string) int {
	switch code {
	case utils.CodeMissingFields, utils.CodeInvalid, utils.CodeInvalidService, utils.CodeInvalidAmount:
		return http.StatusBadRequest
	case utils.CodeForbidden:
		return http.StatusForbidden
	case utils.CodeNotFound:
		return http.StatusNotFound
	case utils.CodeOutsideAvailability, utils.CodeOverlap, utils.CodeOverlapOrBuffer,
		utils.CodeInvalidStatus, utils.CodeProviderMissingAccount:
		return http.StatusConflict
	case utils.CodeTransferFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// abortWithError renders a service error as JSON, keeping the stable
// code visible to API clients.
func abortWithError(c *gin.Context, err error) {
	var se *utils.ServiceError
	if errors.As(err, &se) {
		c.AbortWithStatusJSON(statusForCode(se.Code), gin.H{
			"error": se.Message,
			"code":  se.Code,
		})
		return
	}
	utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	c.Abort()
}
