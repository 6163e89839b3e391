// File: handlers/booking.go
package handlers

import (
	"net/http"

	"wellvix/middleware"
	"wellvix/services/booking"
	"wellvix/utils"

	"github.com/gin-gonic/gin"
)

// RequestBookingHandler lets a client reserve a slot. The client id is
// taken from the token, never from the body.
func (hb *HandlerBundle) RequestBookingHandler(c *gin.Context) {
	var req booking.BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, utils.NewServiceError(utils.CodeInvalid, "malformed request body"))
		return
	}
	req.ClientID = middleware.AuthSubject(c)

	b, err := hb.BookingSvc.RequestBooking(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// AcceptBookingHandler confirms a requested booking and returns the
// booking together with its materialized order.
func (hb *HandlerBundle) AcceptBookingHandler(c *gin.Context) {
	b, o, err := hb.BookingSvc.AcceptBooking(c.Request.Context(), middleware.AuthSubject(c), c.Param("bookingID"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b, "order": o})
}

// RejectBookingHandler declines a requested booking.
func (hb *HandlerBundle) RejectBookingHandler(c *gin.Context) {
	b, err := hb.BookingSvc.RejectBooking(c.Request.Context(), middleware.AuthSubject(c), c.Param("bookingID"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBookingHandler lets the requesting client withdraw a booking.
func (hb *HandlerBundle) CancelBookingHandler(c *gin.Context) {
	b, err := hb.BookingSvc.CancelBooking(c.Request.Context(), middleware.AuthSubject(c), c.Param("bookingID"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// GetBookingHandler fetches one booking. Only its client, its provider
// or an admin may read it.
func (hb *HandlerBundle) GetBookingHandler(c *gin.Context) {
	b, err := hb.BookingSvc.GetBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	subject := middleware.AuthSubject(c)
	if middleware.AuthRole(c) != middleware.RoleAdmin && subject != b.ClientID && subject != b.ProviderID {
		abortWithError(c, utils.NewServiceError(utils.CodeForbidden, "not a party to this booking"))
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListBookingsHandler returns the authenticated provider's bookings.
func (hb *HandlerBundle) ListBookingsHandler(c *gin.Context) {
	bookings, err := hb.BookingSvc.ListBookings(c.Request.Context(), middleware.AuthSubject(c))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}
