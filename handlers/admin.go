// File: handlers/admin.go
package handlers

import (
	"net/http"
	"strconv"

	"wellvix/models"

	"github.com/gin-gonic/gin"
)

// RunSweepHandler triggers the auto-completion sweep on demand, outside
// the scheduled cadence.
func (hb *HandlerBundle) RunSweepHandler(c *gin.Context) {
	results, err := hb.OrderSvc.SweepAutoComplete(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if results == nil {
		results = []models.SweepResult{}
	}
	c.JSON(http.StatusOK, gin.H{"processed": len(results), "results": results})
}

// ListProcessedEventsHandler exposes the payment-event idempotency log
// for reconciliation audits.
func (hb *HandlerBundle) ListProcessedEventsHandler(c *gin.Context) {
	limit, _ := strconv.ParseInt(c.Query("limit"), 10, 64)
	events, err := hb.EventRepo.List(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}
