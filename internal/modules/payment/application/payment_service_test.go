package application

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/razorpay/razorpay-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatmatch/backend/internal/modules/payment/domain"
)

type orderRepoStub struct {
	byID       map[uuid.UUID]*domain.Order
	byProvider map[string]*domain.Order
	statuses   []domain.OrderStatus
}

func newOrderRepoStub() *orderRepoStub {
	return &orderRepoStub{
		byID:       map[uuid.UUID]*domain.Order{},
		byProvider: map[string]*domain.Order{},
	}
}

func (s *orderRepoStub) add(order *domain.Order) {
	s.byID[order.ID] = order
	if order.ProviderOrderID != nil {
		s.byProvider[*order.ProviderOrderID] = order
	}
}

func (s *orderRepoStub) Create(_ context.Context, order *domain.Order) error {
	s.add(order)
	return nil
}

func (s *orderRepoStub) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	if o, ok := s.byID[id]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (s *orderRepoStub) GetByProviderID(_ context.Context, providerID string) (*domain.Order, error) {
	if o, ok := s.byProvider[providerID]; ok {
		return o, nil
	}
	return nil, domain.ErrOrderNotFound
}

func (s *orderRepoStub) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus) error {
	s.statuses = append(s.statuses, status)
	if o, ok := s.byID[id]; ok {
		o.Status = status
		return nil
	}
	return domain.ErrOrderNotFound
}

type activatorStub struct {
	activated []uuid.UUID
}

func (a *activatorStub) ActivateProfile(_ context.Context, userID uuid.UUID) error {
	a.activated = append(a.activated, userID)
	return nil
}

// localProvider stands in for the payment API.
func localProvider(t *testing.T, paymentStatus string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/orders":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "order_local_1"})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/payments/pay_local_1":
			_ = json.NewEncoder(w).Encode(map[string]any{"id": "pay_local_1", "status": paymentStatus})
		case r.Method == http.MethodGet && r.URL.Path == "/v1/orders/order_remote_9":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":    "order_remote_9",
				"notes": map[string]any{"user_id": remoteUserID.String()},
			})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

var remoteUserID = uuid.New()

func newService(orders domain.OrderRepository, profiles ProfileActivator, baseURL string) *PaymentService {
	var client *razorpay.Client
	if baseURL != "" {
		client = razorpay.NewClient("key", "key-secret")
		client.Request.BaseURL = baseURL
	}
	return NewPaymentService(orders, profiles, nil, client, "key-secret", "hook-secret", 999, "USD")
}

func TestPaymentService_CreateOrderPersistsProviderID(t *testing.T) {
	ts := localProvider(t, "captured")
	defer ts.Close()

	orders := newOrderRepoStub()
	svc := newService(orders, &activatorStub{}, ts.URL)
	userID := uuid.New()

	order, err := svc.CreateOrder(context.Background(), userID, 0, "")
	require.NoError(t, err)
	require.NotNil(t, order.ProviderOrderID)
	assert.Equal(t, "order_local_1", *order.ProviderOrderID)
	assert.Equal(t, 999, order.Amount, "zero amount falls back to the configured price")
	assert.Equal(t, "USD", order.Currency)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Contains(t, orders.byProvider, "order_local_1")
}

func TestPaymentService_CreateOrderUnconfigured(t *testing.T) {
	svc := newService(newOrderRepoStub(), &activatorStub{}, "")
	_, err := svc.CreateOrder(context.Background(), uuid.New(), 0, "")
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestPaymentService_CaptureActivatesProfile(t *testing.T) {
	ts := localProvider(t, "captured")
	defer ts.Close()

	orders := newOrderRepoStub()
	activator := &activatorStub{}
	svc := newService(orders, activator, ts.URL)

	userID := uuid.New()
	providerID := "order_local_1"
	order := &domain.Order{ID: uuid.New(), UserID: userID, ProviderOrderID: &providerID, Status: domain.OrderStatusPending}
	orders.add(order)

	signature := svc.generateSignature(providerID, "pay_local_1")
	out, err := svc.Capture(context.Background(), order.ID, "pay_local_1", signature)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, out.Status)
	assert.Equal(t, []uuid.UUID{userID}, activator.activated)

	// Replaying the capture is a no-op success
	_, err = svc.Capture(context.Background(), order.ID, "pay_local_1", signature)
	require.NoError(t, err)
	assert.Len(t, activator.activated, 1)
}

func TestPaymentService_CaptureRejectsBadSignature(t *testing.T) {
	ts := localProvider(t, "captured")
	defer ts.Close()

	orders := newOrderRepoStub()
	activator := &activatorStub{}
	svc := newService(orders, activator, ts.URL)

	providerID := "order_local_1"
	order := &domain.Order{ID: uuid.New(), UserID: uuid.New(), ProviderOrderID: &providerID, Status: domain.OrderStatusPending}
	orders.add(order)

	_, err := svc.Capture(context.Background(), order.ID, "pay_local_1", "forged")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	assert.Equal(t, []domain.OrderStatus{domain.OrderStatusFailed}, orders.statuses)
	assert.Empty(t, activator.activated)
}

func TestPaymentService_CaptureRequiresCapturedStatus(t *testing.T) {
	ts := localProvider(t, "failed")
	defer ts.Close()

	orders := newOrderRepoStub()
	activator := &activatorStub{}
	svc := newService(orders, activator, ts.URL)

	providerID := "order_local_1"
	order := &domain.Order{ID: uuid.New(), UserID: uuid.New(), ProviderOrderID: &providerID, Status: domain.OrderStatusPending}
	orders.add(order)

	_, err := svc.Capture(context.Background(), order.ID, "pay_local_1", svc.generateSignature(providerID, "pay_local_1"))
	assert.ErrorIs(t, err, domain.ErrPaymentNotCaptured)
	assert.Empty(t, activator.activated)
}

func webhookBody(event, orderID string, notes map[string]string) []byte {
	payload := map[string]any{
		"event": event,
		"payload": map[string]any{
			"payment": map[string]any{
				"entity": map[string]any{"order_id": orderID, "notes": notes},
			},
		},
	}
	b, _ := json.Marshal(payload)
	return b
}

// sign produces the signature a genuine webhook delivery would carry.
func sign(secret string, payload []byte) string {
	s := NewPaymentService(nil, nil, nil, nil, "", secret, 0, "")
	return s.generateWebhookSignature(payload)
}

func TestPaymentService_WebhookIgnoresNonCaptureEvents(t *testing.T) {
	orders := newOrderRepoStub()
	activator := &activatorStub{}
	svc := newService(orders, activator, "")

	body := webhookBody("payment.authorized", "order_x", map[string]string{"user_id": uuid.New().String()})
	require.NoError(t, svc.Webhook(context.Background(), body, sign("hook-secret", body)))
	assert.Empty(t, activator.activated)
}

func TestPaymentService_WebhookActivatesFromNotes(t *testing.T) {
	orders := newOrderRepoStub()
	activator := &activatorStub{}
	svc := newService(orders, activator, "")
	userID := uuid.New()

	body := webhookBody("payment.captured", "order_unknown", map[string]string{"user_id": userID.String()})
	require.NoError(t, svc.Webhook(context.Background(), body, sign("hook-secret", body)))
	assert.Equal(t, []uuid.UUID{userID}, activator.activated)
}

func TestPaymentService_WebhookResolvesLocalOrderAndIsReplaySafe(t *testing.T) {
	orders := newOrderRepoStub()
	activator := &activatorStub{}
	svc := newService(orders, activator, "")
	userID := uuid.New()

	providerID := "order_local_7"
	order := &domain.Order{ID: uuid.New(), UserID: userID, ProviderOrderID: &providerID, Status: domain.OrderStatusPending}
	orders.add(order)

	body := webhookBody("order.paid", providerID, nil)
	require.NoError(t, svc.Webhook(context.Background(), body, sign("hook-secret", body)))
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, []uuid.UUID{userID}, activator.activated)

	// Duplicate delivery: order already paid, nothing happens again
	require.NoError(t, svc.Webhook(context.Background(), body, sign("hook-secret", body)))
	assert.Len(t, activator.activated, 1)
}

func TestPaymentService_WebhookFallsBackToProviderFetch(t *testing.T) {
	ts := localProvider(t, "captured")
	defer ts.Close()

	orders := newOrderRepoStub()
	activator := &activatorStub{}
	svc := newService(orders, activator, ts.URL)

	body := webhookBody("payment.captured", "order_remote_9", nil)
	require.NoError(t, svc.Webhook(context.Background(), body, sign("hook-secret", body)))
	assert.Equal(t, []uuid.UUID{remoteUserID}, activator.activated)
}

func TestPaymentService_WebhookRejectsBadSignature(t *testing.T) {
	svc := newService(newOrderRepoStub(), &activatorStub{}, "")
	body := webhookBody("payment.captured", "order_x", map[string]string{"user_id": uuid.New().String()})
	err := svc.Webhook(context.Background(), body, "forged")
	assert.ErrorIs(t, err, domain.ErrInvalidSignature)
}

func TestIndicatesCapture(t *testing.T) {
	for _, event := range []string{"payment.captured", "order.paid", "checkout.completed", "payment.approved"} {
		assert.True(t, indicatesCapture(event), fmt.Sprintf("event %s", event))
	}
	for _, event := range []string{"payment.authorized", "payment.failed", "refund.created"} {
		assert.False(t, indicatesCapture(event), fmt.Sprintf("event %s", event))
	}
}
