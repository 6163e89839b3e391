// File: handlers/availability.go
package handlers

import (
	"net/http"
	"strconv"
	"time"

	"wellvix/middleware"
	"wellvix/models"
	"wellvix/utils"

	"github.com/gin-gonic/gin"
)

// GetMonthAvailabilityHandler maps each date of a month to whether the
// provider has any open windows. GET /:providerID/month?year=&month=
func (hb *HandlerBundle) GetMonthAvailabilityHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	year, err1 := strconv.Atoi(c.Query("year"))
	month, err2 := strconv.Atoi(c.Query("month"))
	if err1 != nil || err2 != nil || month < 1 || month > 12 {
		abortWithError(c, utils.NewServiceError(utils.CodeInvalid, "year and month query params are required"))
		return
	}

	days, err := hb.BookingSvc.MonthAvailability(c.Request.Context(), providerID, year, time.Month(month))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providerId": providerID, "days": days})
}

// GetSlotsHandler computes bookable slots for one provider/service/date.
// GET /:providerID/slots?serviceId=&date=YYYY-MM-DD
func (hb *HandlerBundle) GetSlotsHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	serviceID := c.Query("serviceId")
	day, err := time.Parse("2006-01-02", c.Query("date"))
	if serviceID == "" || err != nil {
		abortWithError(c, utils.NewServiceError(utils.CodeInvalid, "serviceId and date (YYYY-MM-DD) query params are required"))
		return
	}

	slots, err := hb.BookingSvc.GetSlots(c.Request.Context(), providerID, serviceID, day)
	if err != nil {
		abortWithError(c, err)
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	c.JSON(http.StatusOK, gin.H{"date": day.Format("2006-01-02"), "slots": slots})
}

// GetWeeklyAvailabilityHandler returns the provider's recurring windows.
func (hb *HandlerBundle) GetWeeklyAvailabilityHandler(c *gin.Context) {
	weekly, err := hb.BookingSvc.GetWeeklyAvailability(c.Request.Context(), c.Param("providerID"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weekly": weekly})
}

// SetWeeklyAvailabilityHandler replaces the provider's recurring windows.
// Providers can only edit their own calendar.
func (hb *HandlerBundle) SetWeeklyAvailabilityHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	if middleware.AuthRole(c) != middleware.RoleAdmin && middleware.AuthSubject(c) != providerID {
		abortWithError(c, utils.NewServiceError(utils.CodeForbidden, "cannot edit another provider's availability"))
		return
	}

	var body struct {
		Weekly map[string][]models.AvailabilityWindow `json:"weekly"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, utils.NewServiceError(utils.CodeInvalid, "malformed request body"))
		return
	}

	if err := hb.BookingSvc.SetWeeklyAvailability(c.Request.Context(), providerID, body.Weekly); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weekly": body.Weekly})
}

// SetExceptionHandler creates or replaces a per-date override.
func (hb *HandlerBundle) SetExceptionHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	if middleware.AuthRole(c) != middleware.RoleAdmin && middleware.AuthSubject(c) != providerID {
		abortWithError(c, utils.NewServiceError(utils.CodeForbidden, "cannot edit another provider's availability"))
		return
	}

	var exc models.AvailabilityException
	if err := c.ShouldBindJSON(&exc); err != nil {
		abortWithError(c, utils.NewServiceError(utils.CodeInvalid, "malformed request body"))
		return
	}
	exc.ProviderID = providerID

	if err := hb.BookingSvc.SetException(c.Request.Context(), exc); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, exc)
}

// DeleteExceptionHandler removes a per-date override, restoring the
// weekly pattern for that date.
func (hb *HandlerBundle) DeleteExceptionHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	if middleware.AuthRole(c) != middleware.RoleAdmin && middleware.AuthSubject(c) != providerID {
		abortWithError(c, utils.NewServiceError(utils.CodeForbidden, "cannot edit another provider's availability"))
		return
	}

	if err := hb.BookingSvc.DeleteException(c.Request.Context(), providerID, c.Param("date")); err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("date")})
}
