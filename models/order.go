package models

import "time"

// Order statuses. Draft is initial; completed, cancelled and refunded are
// terminal. The only cycle in the graph is delivered -> accepted via a
// revision request.
const (
	OrderStatusDraft            = "draft"
	OrderStatusAwaitingProvider = "awaiting_provider"
	OrderStatusAccepted         = "accepted"
	OrderStatusDelivered        = "delivered"
	OrderStatusCompleted        = "completed"
	OrderStatusCancelled        = "cancelled"
	OrderStatusRefunded         = "refunded"
)

// Refund states recorded on an order.
const (
	RefundStatusNone     = "none"
	RefundStatusPartial  = "partial"
	RefundStatusRefunded = "refunded"
)

// NonTerminalOrderStatuses lists the statuses an order can still move out of.
var NonTerminalOrderStatuses = []string{
	OrderStatusDraft,
	OrderStatusAwaitingProvider,
	OrderStatusAccepted,
	OrderStatusDelivered,
}

// Brief captures what the client is asking for. Digital orders carry
// title/goals/deliverables; in-person orders carry the reserved interval.
type Brief struct {
	Kind         string     `bson:"kind" json:"kind"` // "digital" or "in_person"
	Title        string     `bson:"title,omitempty" json:"title,omitempty"`
	Goals        string     `bson:"goals,omitempty" json:"goals,omitempty"`
	Deliverables string     `bson:"deliverables,omitempty" json:"deliverables,omitempty"`
	Start        *time.Time `bson:"start,omitempty" json:"start,omitempty"`
	End          *time.Time `bson:"end,omitempty" json:"end,omitempty"`
	Notes        string     `bson:"notes,omitempty" json:"notes,omitempty"`
}

// Order is the authoritative transaction record once a reservation or
// digital request is monetized. Money is integer minor units (cents) with
// a lower-cased 3-letter currency code.
type Order struct {
	ID         string `bson:"id" json:"id"`
	ProviderID string `bson:"providerId" json:"providerId"`
	ClientID   string `bson:"clientId,omitempty" json:"clientId,omitempty"`
	ServiceID  string `bson:"serviceId,omitempty" json:"serviceId,omitempty"`
	Status     string `bson:"status" json:"status"`

	PriceCents          int64  `bson:"priceCents" json:"priceCents"`
	Currency            string `bson:"currency" json:"currency"`
	ApplicationFeeCents *int64 `bson:"applicationFeeCents,omitempty" json:"applicationFeeCents,omitempty"` // locked in once set
	PaymentReference    string `bson:"paymentReference,omitempty" json:"paymentReference,omitempty"`
	PayoutReference     string `bson:"payoutReference,omitempty" json:"payoutReference,omitempty"` // set at most once per order
	RefundStatus        string `bson:"refundStatus" json:"refundStatus"`

	Brief         *Brief     `bson:"brief,omitempty" json:"brief,omitempty"`
	DeliveryNote  string     `bson:"deliveryNote,omitempty" json:"deliveryNote,omitempty"`
	DeliveryFiles []string   `bson:"deliveryFiles,omitempty" json:"deliveryFiles,omitempty"`
	RevisionNote  string     `bson:"revisionNote,omitempty" json:"revisionNote,omitempty"`
	RevisionCount int        `bson:"revisionCount" json:"revisionCount"`
	ETA           *time.Time `bson:"eta,omitempty" json:"eta,omitempty"`

	AutoCompleted     bool       `bson:"autoCompleted" json:"autoCompleted"`
	ApprovalErrorCode string     `bson:"approvalErrorCode,omitempty" json:"approvalErrorCode,omitempty"`
	ApprovalErrorAt   *time.Time `bson:"approvalErrorAt,omitempty" json:"approvalErrorAt,omitempty"`

	CreatedAt   time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time  `bson:"updatedAt" json:"updatedAt"`
	PaidAt      *time.Time `bson:"paidAt,omitempty" json:"paidAt,omitempty"`
	AcceptedAt  *time.Time `bson:"acceptedAt,omitempty" json:"acceptedAt,omitempty"`
	DeliveredAt *time.Time `bson:"deliveredAt,omitempty" json:"deliveredAt,omitempty"`
	CompletedAt *time.Time `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
}

// Paid reports whether payment has been confirmed for this order.
func (o *Order) Paid() bool {
	return o.PaidAt != nil
}

// Terminal reports whether the order can no longer change status.
func (o *Order) Terminal() bool {
	switch o.Status {
	case OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	}
	return false
}

// SweepResult is the per-order outcome of an auto-completion sweep.
type SweepResult struct {
	OrderID string `json:"orderId"`
	OK      bool   `json:"ok"`
	Error   string `json:"error,omitempty"`
}
