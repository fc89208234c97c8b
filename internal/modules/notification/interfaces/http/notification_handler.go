package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/beatmatch/backend/internal/gateway/middleware"
	"github.com/beatmatch/backend/internal/modules/notification/domain"
	ws "github.com/beatmatch/backend/internal/modules/notification/infrastructure/websocket"
	"github.com/beatmatch/backend/internal/shared/utils"
)

// NotificationService is what the handler needs from the application layer.
type NotificationService interface {
	GetUserNotifications(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	Hub() *ws.Hub
}

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) *NotificationHandler {
	return &NotificationHandler{service: service}
}

// Subscribe upgrades the request to a websocket and streams notifications
// for the authenticated user until the connection closes.
func (h *NotificationHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	ws.ServeWs(h.service.Hub(), w, r, userID)
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	notifications, err := h.service.GetUserNotifications(r.Context(), userID, page, limit)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to list notifications", err)
		return
	}
	if notifications == nil {
		notifications = []domain.Notification{}
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"data": notifications})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	notificationID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid notification id", err)
		return
	}

	err = h.service.MarkAsRead(r.Context(), notificationID, userID)
	if err == domain.ErrNotificationNotFound {
		utils.WriteError(w, http.StatusNotFound, "notification not found", nil)
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark notification as read", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	if err := h.service.MarkAllAsRead(r.Context(), userID); err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to mark notifications as read", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *NotificationHandler) UnreadCount(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	count, err := h.service.UnreadCount(r.Context(), userID)
	if err != nil {
		utils.WriteError(w, http.StatusInternalServerError, "failed to count notifications", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]int{"count": count})
}
