package application

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/razorpay/razorpay-go"

	"github.com/beatmatch/backend/internal/modules/payment/domain"
)

// ProfileActivator flips the paying user's musician profile visible.
// Satisfied by the musician module; must be replay-safe.
type ProfileActivator interface {
	ActivateProfile(ctx context.Context, userID uuid.UUID) error
}

// Notifier delivers in-app notifications. May be nil.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, kind string) error
}

type PaymentService struct {
	orders         domain.OrderRepository
	profiles       ProfileActivator
	notifier       Notifier
	razorpayClient *razorpay.Client
	keySecret      string
	webhookSecret  string
	amount         int
	currency       string
}

func NewPaymentService(orders domain.OrderRepository, profiles ProfileActivator, notifier Notifier,
	client *razorpay.Client, keySecret, webhookSecret string, amount int, currency string) *PaymentService {
	return &PaymentService{
		orders:         orders,
		profiles:       profiles,
		notifier:       notifier,
		razorpayClient: client,
		keySecret:      keySecret,
		webhookSecret:  webhookSecret,
		amount:         amount,
		currency:       currency,
	}
}

// CreateOrder opens a pending activation order with the provider. Amount and
// currency may be overridden by the caller but default to the configured
// activation price.
func (s *PaymentService) CreateOrder(ctx context.Context, userID uuid.UUID, amount int, currency string) (*domain.Order, error) {
	if s.razorpayClient == nil {
		return nil, domain.ErrNotConfigured
	}
	if amount <= 0 {
		amount = s.amount
	}
	if currency == "" {
		currency = s.currency
	}

	order := &domain.Order{
		ID:       uuid.New(),
		UserID:   userID,
		Amount:   amount,
		Currency: currency,
		Status:   domain.OrderStatusPending,
	}

	data := map[string]interface{}{
		"amount":   amount,
		"currency": currency,
		"receipt":  order.ID.String(),
		"notes": map[string]interface{}{
			"user_id": userID.String(),
			"purpose": "profile_activation",
		},
	}
	body, err := s.razorpayClient.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("provider order create failed: %w", err)
	}
	providerID, ok := body["id"].(string)
	if !ok || providerID == "" {
		return nil, fmt.Errorf("provider order create returned no id")
	}
	order.ProviderOrderID = &providerID

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// Capture finalizes a payment the client completed: verifies the signature,
// confirms capture with the provider, then activates the profile. Capturing
// an already-paid order is a no-op success.
func (s *PaymentService) Capture(ctx context.Context, orderID uuid.UUID, paymentID, signature string) (*domain.Order, error) {
	if s.razorpayClient == nil {
		return nil, domain.ErrNotConfigured
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status == domain.OrderStatusPaid {
		return order, nil
	}
	if order.ProviderOrderID == nil {
		return nil, fmt.Errorf("order has no provider reference")
	}

	expected := s.generateSignature(*order.ProviderOrderID, paymentID)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		_ = s.orders.UpdateStatus(ctx, orderID, domain.OrderStatusFailed)
		return nil, domain.ErrInvalidSignature
	}

	payment, err := s.razorpayClient.Payment.Fetch(paymentID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("provider payment fetch failed: %w", err)
	}
	if status, _ := payment["status"].(string); status != "captured" {
		_ = s.orders.UpdateStatus(ctx, orderID, domain.OrderStatusFailed)
		return nil, domain.ErrPaymentNotCaptured
	}

	return order, s.settle(ctx, order)
}

// webhookEvent mirrors the slice of the provider payload we act on.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity struct {
				OrderID string            `json:"order_id"`
				Notes   map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"payment"`
		Order struct {
			Entity struct {
				ID    string            `json:"id"`
				Notes map[string]string `json:"notes"`
			} `json:"entity"`
		} `json:"order"`
	} `json:"payload"`
}

// Webhook processes an asynchronous provider notification. Delivery may be
// duplicated or out of order, so every step tolerates replay. Events that do
// not indicate a completed payment are acknowledged and dropped.
func (s *PaymentService) Webhook(ctx context.Context, payload []byte, signature string) error {
	if s.webhookSecret != "" {
		expected := s.generateWebhookSignature(payload)
		if !hmac.Equal([]byte(expected), []byte(signature)) {
			return domain.ErrInvalidSignature
		}
	}

	var event webhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("malformed webhook payload: %w", err)
	}
	if !indicatesCapture(event.Event) {
		return nil
	}

	providerOrderID := event.Payload.Payment.Entity.OrderID
	if providerOrderID == "" {
		providerOrderID = event.Payload.Order.Entity.ID
	}

	userID, order := s.resolveUser(ctx, &event, providerOrderID)
	if userID == uuid.Nil {
		return fmt.Errorf("could not resolve user for provider order %q", providerOrderID)
	}

	if order != nil {
		if order.Status == domain.OrderStatusPaid {
			return nil
		}
		return s.settle(ctx, order)
	}

	// No local order (capture raced ahead of order persistence, or the
	// order predates this deployment). Activation alone is still safe.
	return s.profiles.ActivateProfile(ctx, userID)
}

// resolveUser finds who paid: first from the embedded notes, then the local
// order table, finally a provider round-trip.
func (s *PaymentService) resolveUser(ctx context.Context, event *webhookEvent, providerOrderID string) (uuid.UUID, *domain.Order) {
	var order *domain.Order
	if providerOrderID != "" {
		if o, err := s.orders.GetByProviderID(ctx, providerOrderID); err == nil {
			order = o
		}
	}

	notes := event.Payload.Payment.Entity.Notes
	if len(notes) == 0 {
		notes = event.Payload.Order.Entity.Notes
	}
	if raw, ok := notes["user_id"]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			return id, order
		}
	}

	if order != nil {
		return order.UserID, order
	}

	if s.razorpayClient != nil && providerOrderID != "" {
		if body, err := s.razorpayClient.Order.Fetch(providerOrderID, nil, nil); err == nil {
			if remoteNotes, ok := body["notes"].(map[string]interface{}); ok {
				if raw, ok := remoteNotes["user_id"].(string); ok {
					if id, err := uuid.Parse(raw); err == nil {
						return id, order
					}
				}
			}
		}
	}
	return uuid.Nil, order
}

// settle marks the order paid and activates the profile. Both halves are
// idempotent, so replays converge on the same state.
func (s *PaymentService) settle(ctx context.Context, order *domain.Order) error {
	if order.Status != domain.OrderStatusPaid {
		if err := s.orders.UpdateStatus(ctx, order.ID, domain.OrderStatusPaid); err != nil {
			return err
		}
	}
	if err := s.profiles.ActivateProfile(ctx, order.UserID); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, order.UserID, "Profile activated",
			"Your payment was received and your musician profile is now live.", "success"); err != nil {
			log.Printf("[PaymentService.settle] notification failed: %v", err)
		}
	}
	return nil
}

func (s *PaymentService) generateSignature(providerOrderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(s.keySecret))
	mac.Write([]byte(providerOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *PaymentService) generateWebhookSignature(payload []byte) string {
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// indicatesCapture filters webhook event names down to the ones that mean
// money actually moved.
func indicatesCapture(event string) bool {
	for _, marker := range []string{"captured", "paid", "completed", "approved"} {
		if strings.Contains(event, marker) {
			return true
		}
	}
	return false
}
