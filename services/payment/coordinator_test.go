package payment

import (
	"context"
	"testing"
	"time"

	"wellvix/config"
	orderRepo "wellvix/database/repository/order"
	"wellvix/models"
	"wellvix/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeFeeCents(t *testing.T) {
	assert.Equal(t, int64(1000), ComputeFeeCents(10000, 10))
	assert.Equal(t, int64(0), ComputeFeeCents(0, 10))
	assert.Equal(t, int64(0), ComputeFeeCents(10000, 0))

	// Rounds to the nearest cent.
	assert.Equal(t, int64(13), ComputeFeeCents(125, 10))
	assert.Equal(t, int64(1), ComputeFeeCents(5, 12.5))
}

func TestComputeNetCents(t *testing.T) {
	assert.Equal(t, int64(9000), ComputeNetCents(10000, 1000))
	assert.Equal(t, int64(0), ComputeNetCents(1000, 1000))
	// A fee larger than the amount never produces a negative payout.
	assert.Equal(t, int64(0), ComputeNetCents(500, 1000))
}

type stubOrders struct {
	orders  map[string]*models.Order
	updates []map[string]interface{}
	paid    []string
}

func newStubOrders() *stubOrders {
	return &stubOrders{orders: map[string]*models.Order{}}
}

func (s *stubOrders) Insert(ctx context.Context, o *models.Order) error {
	s.orders[o.ID] = o
	return nil
}

func (s *stubOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, utils.NewServiceError(utils.CodeNotFound, "order %s not found", id)
	}
	copied := *o
	return &copied, nil
}

func (s *stubOrders) List(ctx context.Context, f orderRepo.ListFilter) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrders) ListDeliveredBefore(ctx context.Context, cutoff time.Time, limit int64) ([]models.Order, error) {
	return nil, nil
}

func (s *stubOrders) Transition(ctx context.Context, id, from, to string, set map[string]interface{}, inc map[string]int64) (*models.Order, error) {
	return s.GetByID(ctx, id)
}

func (s *stubOrders) TransitionFromNonTerminal(ctx context.Context, id, to string, set map[string]interface{}) (*models.Order, error) {
	return s.GetByID(ctx, id)
}

func (s *stubOrders) Update(ctx context.Context, id string, set map[string]interface{}) (*models.Order, error) {
	s.updates = append(s.updates, set)
	o, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ref, ok := set["paymentReference"].(string); ok {
		s.orders[id].PaymentReference = ref
		o.PaymentReference = ref
	}
	return o, nil
}

func (s *stubOrders) RecordPayout(ctx context.Context, id, payoutReference string, feeCents int64) error {
	if o, ok := s.orders[id]; ok && o.PayoutReference == "" {
		o.PayoutReference = payoutReference
		o.ApplicationFeeCents = &feeCents
	}
	return nil
}

func (s *stubOrders) MarkPaid(ctx context.Context, id, paymentReference, currency string, paidAt time.Time) error {
	s.paid = append(s.paid, id)
	if o, ok := s.orders[id]; ok && o.PaidAt == nil {
		o.PaidAt = &paidAt
		o.PaymentReference = paymentReference
	}
	return nil
}

type stubCatalog struct {
	providers map[string]*models.Provider
}

func (s *stubCatalog) GetService(ctx context.Context, id string) (*models.Service, error) {
	return nil, utils.NewServiceError(utils.CodeInvalidService, "service %s not found", id)
}

func (s *stubCatalog) GetProvider(ctx context.Context, id string) (*models.Provider, error) {
	p, ok := s.providers[id]
	if !ok {
		return nil, utils.NewServiceError(utils.CodeNotFound, "provider %s not found", id)
	}
	return p, nil
}

func (s *stubCatalog) GetClient(ctx context.Context, id string) (*models.Client, error) {
	return nil, utils.NewServiceError(utils.CodeNotFound, "client %s not found", id)
}

type stubEvents struct {
	seen map[string]bool
}

func (s *stubEvents) InsertIfAbsent(ctx context.Context, e models.ProcessedEvent) (bool, error) {
	if s.seen == nil {
		s.seen = map[string]bool{}
	}
	if s.seen[e.EventID] {
		return false, nil
	}
	s.seen[e.EventID] = true
	return true, nil
}

func (s *stubEvents) List(ctx context.Context, limit int64) ([]models.ProcessedEvent, error) {
	return nil, nil
}

type stubGateway struct {
	transfers       []TransferRequest
	intents         []IntentRequest
	accountNotReady bool
	accountErr      error
}

func (g *stubGateway) CreatePaymentIntent(ctx context.Context, req IntentRequest) (*IntentResult, error) {
	g.intents = append(g.intents, req)
	return &IntentResult{Reference: "pi_" + req.OrderID, ClientSecret: "secret"}, nil
}

func (g *stubGateway) CreateTransfer(ctx context.Context, req TransferRequest) (string, error) {
	g.transfers = append(g.transfers, req)
	return "tr_" + req.OrderID, nil
}

func (g *stubGateway) CreateRefund(ctx context.Context, req RefundRequest) (string, error) {
	return "re_" + req.OrderID, nil
}

func (g *stubGateway) AccountReady(ctx context.Context, accountID string) (bool, error) {
	if g.accountErr != nil {
		return false, g.accountErr
	}
	return !g.accountNotReady, nil
}

func newTestCoordinator() (*Coordinator, *stubOrders, *stubGateway) {
	config.AppConfig.PlatformFeePercent = 10
	orders := newStubOrders()
	gateway := &stubGateway{}
	catalog := &stubCatalog{providers: map[string]*models.Provider{
		"p1": {ID: "p1", StripeAccountID: "acct_1", StripeReady: true},
		"p2": {ID: "p2"},
	}}
	c := NewCoordinator(gateway, orders, catalog, &stubEvents{})
	c.now = func() time.Time { return time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC) }
	return c, orders, gateway
}

func TestReleasePayout(t *testing.T) {
	c, _, gateway := newTestCoordinator()
	ctx := context.Background()

	o := &models.Order{ID: "o1", ProviderID: "p1", PriceCents: 10000, Currency: "usd"}
	ref, fee, err := c.ReleasePayout(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, "tr_o1", ref)
	assert.Equal(t, int64(1000), fee)

	require.Len(t, gateway.transfers, 1)
	assert.Equal(t, int64(9000), gateway.transfers[0].AmountCents)
	assert.Equal(t, "acct_1", gateway.transfers[0].DestinationAccount)
}

func TestReleasePayoutShortCircuitsOnExistingReference(t *testing.T) {
	c, _, gateway := newTestCoordinator()
	ctx := context.Background()

	fee := int64(1000)
	o := &models.Order{ID: "o1", ProviderID: "p1", PriceCents: 10000,
		PayoutReference: "tr_prior", ApplicationFeeCents: &fee}

	ref, gotFee, err := c.ReleasePayout(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, "tr_prior", ref)
	assert.Equal(t, fee, gotFee)
	assert.Empty(t, gateway.transfers)
}

func TestReleasePayoutHonorsLockedFee(t *testing.T) {
	c, _, gateway := newTestCoordinator()
	ctx := context.Background()

	// The configured percentage has moved since the fee was locked.
	config.AppConfig.PlatformFeePercent = 20
	locked := int64(500)
	o := &models.Order{ID: "o1", ProviderID: "p1", PriceCents: 10000,
		Currency: "usd", ApplicationFeeCents: &locked}

	_, fee, err := c.ReleasePayout(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, locked, fee)
	require.Len(t, gateway.transfers, 1)
	assert.Equal(t, int64(9500), gateway.transfers[0].AmountCents)
}

func TestReleasePayoutGuards(t *testing.T) {
	c, _, _ := newTestCoordinator()
	ctx := context.Background()

	_, _, err := c.ReleasePayout(ctx, &models.Order{ID: "o1", ProviderID: "p1", PriceCents: 0})
	assert.Equal(t, utils.CodeInvalidAmount, utils.CodeOf(err))

	_, _, err = c.ReleasePayout(ctx, &models.Order{ID: "o2", ProviderID: "p2", PriceCents: 10000})
	assert.Equal(t, utils.CodeProviderMissingAccount, utils.CodeOf(err))
}

func TestReleasePayoutVerifiesAccountWithGateway(t *testing.T) {
	ctx := context.Background()
	o := &models.Order{ID: "o1", ProviderID: "p1", PriceCents: 10000, Currency: "usd"}

	t.Run("unready account blocks the transfer", func(t *testing.T) {
		c, _, gateway := newTestCoordinator()
		gateway.accountNotReady = true
		_, _, err := c.ReleasePayout(ctx, o)
		assert.Equal(t, utils.CodeProviderMissingAccount, utils.CodeOf(err))
		assert.Empty(t, gateway.transfers)
	})

	t.Run("verification failure blocks the transfer", func(t *testing.T) {
		c, _, gateway := newTestCoordinator()
		gateway.accountErr = assert.AnError
		_, _, err := c.ReleasePayout(ctx, o)
		assert.Equal(t, utils.CodeTransferFailed, utils.CodeOf(err))
		assert.Empty(t, gateway.transfers)
	})
}

func TestCreateIntentGuards(t *testing.T) {
	c, orders, gateway := newTestCoordinator()
	ctx := context.Background()

	paid := time.Now()
	orders.orders["paid"] = &models.Order{ID: "paid", Status: models.OrderStatusAccepted, PriceCents: 10000, PaidAt: &paid}
	orders.orders["draft"] = &models.Order{ID: "draft", Status: models.OrderStatusDraft, PriceCents: 10000}
	orders.orders["ok"] = &models.Order{ID: "ok", Status: models.OrderStatusAccepted, PriceCents: 10000, Currency: "usd", ClientID: "c1"}

	_, _, err := c.CreateIntent(ctx, "paid")
	assert.Equal(t, utils.CodeInvalidStatus, utils.CodeOf(err))

	_, _, err = c.CreateIntent(ctx, "draft")
	assert.Equal(t, utils.CodeInvalidStatus, utils.CodeOf(err))

	updated, res, err := c.CreateIntent(ctx, "ok")
	require.NoError(t, err)
	assert.Equal(t, "pi_ok", res.Reference)
	assert.Equal(t, "pi_ok", updated.PaymentReference)
	require.Len(t, gateway.intents, 1)
	assert.Equal(t, int64(10000), gateway.intents[0].AmountCents)
}

func TestProcessEventIdempotent(t *testing.T) {
	c, orders, _ := newTestCoordinator()
	ctx := context.Background()
	orders.orders["o1"] = &models.Order{ID: "o1", Status: models.OrderStatusAccepted, PriceCents: 10000}

	evt := models.PaymentEvent{
		ID:               "evt_1",
		Type:             models.EventPaymentSucceeded,
		OrderID:          "o1",
		PaymentReference: "pi_o1",
		Currency:         "usd",
	}

	fresh, err := c.ProcessEvent(ctx, evt)
	require.NoError(t, err)
	assert.True(t, fresh)
	require.Len(t, orders.paid, 1)

	// Same event id replayed: acknowledged, nothing applied.
	fresh, err = c.ProcessEvent(ctx, evt)
	require.NoError(t, err)
	assert.False(t, fresh)
	assert.Len(t, orders.paid, 1)
}

func TestProcessEventIgnoresUnknownTypes(t *testing.T) {
	c, orders, _ := newTestCoordinator()
	ctx := context.Background()

	fresh, err := c.ProcessEvent(ctx, models.PaymentEvent{ID: "evt_2", Type: models.EventAccountUpdated})
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Empty(t, orders.paid)
}

func TestRefundOrder(t *testing.T) {
	c, _, _ := newTestCoordinator()
	ctx := context.Background()
	paid := time.Now()

	t.Run("requires captured payment", func(t *testing.T) {
		_, _, err := c.RefundOrder(ctx, &models.Order{ID: "o1", PriceCents: 10000}, 0)
		assert.Equal(t, utils.CodeInvalidStatus, utils.CodeOf(err))
	})

	t.Run("amount out of range", func(t *testing.T) {
		o := &models.Order{ID: "o1", PriceCents: 10000, PaidAt: &paid, PaymentReference: "pi_o1"}
		_, _, err := c.RefundOrder(ctx, o, 20000)
		assert.Equal(t, utils.CodeInvalidAmount, utils.CodeOf(err))
	})

	t.Run("full and partial statuses", func(t *testing.T) {
		o := &models.Order{ID: "o1", PriceCents: 10000, PaidAt: &paid, PaymentReference: "pi_o1"}

		ref, status, err := c.RefundOrder(ctx, o, 0)
		require.NoError(t, err)
		assert.Equal(t, "re_o1", ref)
		assert.Equal(t, models.RefundStatusRefunded, status)

		_, status, err = c.RefundOrder(ctx, o, 2500)
		require.NoError(t, err)
		assert.Equal(t, models.RefundStatusPartial, status)

		_, status, err = c.RefundOrder(ctx, o, 10000)
		require.NoError(t, err)
		assert.Equal(t, models.RefundStatusRefunded, status)
	})
}
