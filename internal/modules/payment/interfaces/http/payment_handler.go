package http

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/beatmatch/backend/internal/gateway/middleware"
	"github.com/beatmatch/backend/internal/modules/payment/domain"
	"github.com/beatmatch/backend/internal/shared/utils"
)

// PaymentService is what the handler needs from the application layer.
type PaymentService interface {
	CreateOrder(ctx context.Context, userID uuid.UUID, amount int, currency string) (*domain.Order, error)
	Capture(ctx context.Context, orderID uuid.UUID, paymentID, signature string) (*domain.Order, error)
	Webhook(ctx context.Context, payload []byte, signature string) error
}

type PaymentHandler struct {
	service PaymentService
}

func NewPaymentHandler(service PaymentService) *PaymentHandler {
	return &PaymentHandler{service: service}
}

func (h *PaymentHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var body struct {
		Amount   int    `json:"amount"`
		Currency string `json:"currency"`
	}
	// Body is optional; defaults come from configuration.
	_ = json.NewDecoder(r.Body).Decode(&body)

	order, err := h.service.CreateOrder(r.Context(), userID, body.Amount, body.Currency)
	if err == domain.ErrNotConfigured {
		utils.WriteError(w, http.StatusServiceUnavailable, "payment provider not configured", nil)
		return
	}
	if err != nil {
		log.Printf("[PaymentHandler.CreateOrder] failed for %s: %v", userID, err)
		utils.WriteError(w, http.StatusBadGateway, "failed to create order", nil)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "order created",
		"order":   order,
	})
}

func (h *PaymentHandler) Capture(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var body struct {
		OrderID   uuid.UUID `json:"orderId"`
		PaymentID string    `json:"paymentId"`
		Signature string    `json:"signature"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if body.OrderID == uuid.Nil || body.PaymentID == "" {
		utils.WriteError(w, http.StatusBadRequest, "orderId and paymentId are required", nil)
		return
	}

	order, err := h.service.Capture(r.Context(), body.OrderID, body.PaymentID, body.Signature)
	switch err {
	case nil:
	case domain.ErrNotConfigured:
		utils.WriteError(w, http.StatusServiceUnavailable, "payment provider not configured", nil)
		return
	case domain.ErrOrderNotFound:
		utils.WriteError(w, http.StatusNotFound, "order not found", nil)
		return
	case domain.ErrInvalidSignature, domain.ErrPaymentNotCaptured:
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	default:
		log.Printf("[PaymentHandler.Capture] failed for %s: %v", userID, err)
		utils.WriteError(w, http.StatusBadGateway, "failed to capture payment", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "payment captured, profile activated",
		"order":   order,
	})
}

// Webhook always acknowledges with 200. The provider retries on anything
// else, and it cannot act on our internal failures anyway.
func (h *PaymentHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"received": true})
		return
	}

	signature := r.Header.Get("X-Razorpay-Signature")
	if err := h.service.Webhook(r.Context(), payload, signature); err != nil {
		log.Printf("[PaymentHandler.Webhook] processing failed: %v", err)
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"received": true})
}
