// File: services/order/interface.go
package order

import (
	"context"

	orderRepo "wellvix/database/repository/order"
	"wellvix/models"
)

// DraftRequest opens a digital order in draft.
type DraftRequest struct {
	ClientID     string `json:"clientId"`
	ProviderID   string `json:"providerId"`
	ServiceID    string `json:"serviceId"`
	Title        string `json:"title"`
	Goals        string `json:"goals,omitempty"`
	Deliverables string `json:"deliverables,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// DeliveryRequest is the provider's handover of finished work.
type DeliveryRequest struct {
	Note  string   `json:"note,omitempty"`
	Files []string `json:"files,omitempty"`
}

// Service drives the order state machine from draft through completion.
// Every transition is a conditional write on the expected source status,
// so concurrent actors cannot push one order down two paths.
type Service interface {
	CreateDraft(ctx context.Context, req DraftRequest) (*models.Order, error)
	Submit(ctx context.Context, clientID, orderID string) (*models.Order, error)
	Accept(ctx context.Context, providerID, orderID string, etaDays int) (*models.Order, error)
	Deliver(ctx context.Context, providerID, orderID string, req DeliveryRequest) (*models.Order, error)
	// Approve releases the escrowed payout and completes the order.
	// Re-approving a completed order returns it unchanged with the same
	// payout reference.
	Approve(ctx context.Context, clientID, orderID string) (*models.Order, error)
	RequestRevision(ctx context.Context, clientID, orderID, note string) (*models.Order, error)
	Cancel(ctx context.Context, orderID, reason string) (*models.Order, error)
	Refund(ctx context.Context, orderID string, amountCents int64) (*models.Order, error)

	Get(ctx context.Context, orderID string) (*models.Order, error)
	List(ctx context.Context, f orderRepo.ListFilter) ([]models.Order, error)

	// SweepAutoComplete approves every order left in delivered past the
	// review window, marking each as auto-completed.
	SweepAutoComplete(ctx context.Context) ([]models.SweepResult, error)
}
