// File: handlers/order.go
package handlers

import (
	"net/http"
	"strconv"

	orderRepo "wellvix/database/repository/order"
	"wellvix/middleware"
	orderSvc "wellvix/services/order"
	"wellvix/utils"

	"github.com/gin-gonic/gin"
)

// CreateDraftOrderHandler opens a digital order in draft for the
// authenticated client.
func (hb *HandlerBundle) CreateDraftOrderHandler(c *gin.Context) {
	var req orderSvc.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, utils.NewServiceError(utils.CodeInvalid, "malformed request body"))
		return
	}
	req.ClientID = middleware.AuthSubject(c)

	o, err := hb.OrderSvc.CreateDraft(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// SubmitOrderHandler sends a draft to the provider for review.
func (hb *HandlerBundle) SubmitOrderHandler(c *gin.Context) {
	o, err := hb.OrderSvc.Submit(c.Request.Context(), middleware.AuthSubject(c), c.Param("orderID"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// AcceptOrderHandler lets the provider take on an awaiting order with an
// optional delivery estimate.
func (hb *HandlerBundle) AcceptOrderHandler(c *gin.Context) {
	var body struct {
		EtaDays int `json:"etaDays"`
	}
	_ = c.ShouldBindJSON(&body) // body is optional

	o, err := hb.OrderSvc.Accept(c.Request.Context(), middleware.AuthSubject(c), c.Param("orderID"), body.EtaDays)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// DeliverOrderHandler records the provider's handover of finished work.
func (hb *HandlerBundle) DeliverOrderHandler(c *gin.Context) {
	var req orderSvc.DeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, utils.NewServiceError(utils.CodeInvalid, "malformed request body"))
		return
	}

	o, err := hb.OrderSvc.Deliver(c.Request.Context(), middleware.AuthSubject(c), c.Param("orderID"), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// ApproveOrderHandler releases the payout and completes the order.
func (hb *HandlerBundle) ApproveOrderHandler(c *gin.Context) {
	o, err := hb.OrderSvc.Approve(c.Request.Context(), middleware.AuthSubject(c), c.Param("orderID"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// RequestRevisionHandler sends a delivered order back to the provider.
func (hb *HandlerBundle) RequestRevisionHandler(c *gin.Context) {
	var body struct {
		Note string `json:"note"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		abortWithError(c, utils.NewServiceError(utils.CodeInvalid, "malformed request body"))
		return
	}

	o, err := hb.OrderSvc.RequestRevision(c.Request.Context(), middleware.AuthSubject(c), c.Param("orderID"), body.Note)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// GetOrderHandler fetches one order for a party to it, with the review
// deadline attached while the order sits in delivered.
func (hb *HandlerBundle) GetOrderHandler(c *gin.Context) {
	o, err := hb.OrderSvc.Get(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	subject := middleware.AuthSubject(c)
	if middleware.AuthRole(c) != middleware.RoleAdmin && subject != o.ClientID && subject != o.ProviderID {
		abortWithError(c, utils.NewServiceError(utils.CodeForbidden, "not a party to this order"))
		return
	}

	resp := gin.H{"order": o}
	if deadline := orderSvc.ReviewDeadline(o); !deadline.IsZero() {
		resp["reviewDeadline"] = deadline
	}
	c.JSON(http.StatusOK, resp)
}

// ListOrdersHandler lists the authenticated party's orders, optionally
// filtered by status. Admins may filter by any party.
func (hb *HandlerBundle) ListOrdersHandler(c *gin.Context) {
	f := orderRepo.ListFilter{Status: c.Query("status")}
	if limit, err := strconv.ParseInt(c.Query("limit"), 10, 64); err == nil {
		f.Limit = limit
	}

	subject := middleware.AuthSubject(c)
	switch middleware.AuthRole(c) {
	case middleware.RoleAdmin:
		f.ProviderID = c.Query("providerId")
		f.ClientID = c.Query("clientId")
	case middleware.RoleProvider:
		f.ProviderID = subject
	default:
		f.ClientID = subject
	}

	orders, err := hb.OrderSvc.List(c.Request.Context(), f)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// CancelOrderHandler voids a non-terminal order. Admin only.
func (hb *HandlerBundle) CancelOrderHandler(c *gin.Context) {
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	o, err := hb.OrderSvc.Cancel(c.Request.Context(), c.Param("orderID"), body.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// RefundOrderHandler returns funds to the client. Admin only. A zero or
// omitted amount means a full refund.
func (hb *HandlerBundle) RefundOrderHandler(c *gin.Context) {
	var body struct {
		AmountCents int64 `json:"amountCents"`
	}
	_ = c.ShouldBindJSON(&body)

	o, err := hb.OrderSvc.Refund(c.Request.Context(), c.Param("orderID"), body.AmountCents)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
