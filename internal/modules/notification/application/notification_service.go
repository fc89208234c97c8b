package application

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/beatmatch/backend/internal/modules/notification/domain"
	ws "github.com/beatmatch/backend/internal/modules/notification/infrastructure/websocket"
)

type NotificationService struct {
	repo domain.NotificationRepository
	hub  *ws.Hub
}

func NewNotificationService(repo domain.NotificationRepository, hub *ws.Hub) *NotificationService {
	return &NotificationService{repo: repo, hub: hub}
}

// Create persists the notification and pushes it to any live sockets for
// the target user. Socket delivery is best effort.
func (s *NotificationService) Create(ctx context.Context, userID uuid.UUID, title, message string, kind domain.NotificationType) (*domain.Notification, error) {
	switch kind {
	case domain.NotificationTypeInfo, domain.NotificationTypeSuccess,
		domain.NotificationTypeWarning, domain.NotificationTypeError:
	default:
		kind = domain.NotificationTypeInfo
	}

	notification := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      kind,
		IsRead:    false,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, notification); err != nil {
		return nil, err
	}

	if s.hub != nil {
		payload, err := json.Marshal(notification)
		if err != nil {
			log.Printf("[NotificationService.Create] marshal failed: %v", err)
		} else {
			s.hub.SendToUser(userID, payload)
		}
	}
	return notification, nil
}

// Notify adapts Create for callers that hold the type as a plain string.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, title, message, kind string) error {
	_, err := s.Create(ctx, userID, title, message, domain.NotificationType(kind))
	return err
}

func (s *NotificationService) GetUserNotifications(ctx context.Context, userID uuid.UUID, page, limit int) ([]domain.Notification, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.repo.GetByUserID(ctx, userID, limit, (page-1)*limit)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return s.repo.MarkAsRead(ctx, notificationID, userID)
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *NotificationService) Hub() *ws.Hub {
	return s.hub
}
