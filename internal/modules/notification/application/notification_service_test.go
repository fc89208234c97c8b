package application

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatmatch/backend/internal/modules/notification/domain"
	ws "github.com/beatmatch/backend/internal/modules/notification/infrastructure/websocket"
)

type notificationRepoMock struct {
	createFn        func(context.Context, *domain.Notification) error
	getByUserIDFn   func(context.Context, uuid.UUID, int, int) ([]domain.Notification, error)
	markAsReadFn    func(context.Context, uuid.UUID, uuid.UUID) error
	markAllAsReadFn func(context.Context, uuid.UUID) error
	unreadCountFn   func(context.Context, uuid.UUID) (int, error)
}

func (m notificationRepoMock) Create(ctx context.Context, n *domain.Notification) error {
	return m.createFn(ctx, n)
}

func (m notificationRepoMock) GetByUserID(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	return m.getByUserIDFn(ctx, userID, limit, offset)
}

func (m notificationRepoMock) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	return m.markAsReadFn(ctx, notificationID, userID)
}

func (m notificationRepoMock) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return m.markAllAsReadFn(ctx, userID)
}

func (m notificationRepoMock) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.unreadCountFn(ctx, userID)
}

func TestCreatePersistsAndFillsDefaults(t *testing.T) {
	hub := ws.NewHub()
	go hub.Run()
	defer hub.Stop()

	userID := uuid.New()
	var captured *domain.Notification
	repo := notificationRepoMock{
		createFn: func(_ context.Context, n *domain.Notification) error {
			captured = n
			return nil
		},
	}
	svc := NewNotificationService(repo, hub)

	got, err := svc.Create(context.Background(), userID, "Welcome", "Your profile is live", domain.NotificationTypeSuccess)
	require.NoError(t, err)
	require.NotNil(t, captured)
	assert.Equal(t, captured, got)
	assert.Equal(t, userID, captured.UserID)
	assert.Equal(t, "Welcome", captured.Title)
	assert.Equal(t, domain.NotificationTypeSuccess, captured.Type)
	assert.False(t, captured.IsRead)
	assert.NotEqual(t, uuid.Nil, captured.ID)
	assert.False(t, captured.CreatedAt.IsZero())
	assert.Equal(t, hub, svc.Hub())
}

func TestCreateUnknownKindFallsBackToInfo(t *testing.T) {
	var captured *domain.Notification
	repo := notificationRepoMock{
		createFn: func(_ context.Context, n *domain.Notification) error {
			captured = n
			return nil
		},
	}
	svc := NewNotificationService(repo, nil)

	_, err := svc.Create(context.Background(), uuid.New(), "t", "m", domain.NotificationType("bogus"))
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationTypeInfo, captured.Type)
}

func TestCreateRepoError(t *testing.T) {
	repo := notificationRepoMock{
		createFn: func(context.Context, *domain.Notification) error { return errors.New("db error") },
	}
	svc := NewNotificationService(repo, nil)

	_, err := svc.Create(context.Background(), uuid.New(), "t", "m", domain.NotificationTypeError)
	require.EqualError(t, err, "db error")
}

func TestNotifyAdaptsStringKind(t *testing.T) {
	var captured *domain.Notification
	repo := notificationRepoMock{
		createFn: func(_ context.Context, n *domain.Notification) error {
			captured = n
			return nil
		},
	}
	svc := NewNotificationService(repo, nil)

	userID := uuid.New()
	require.NoError(t, svc.Notify(context.Background(), userID, "New review", "Ana left a review", "info"))
	assert.Equal(t, userID, captured.UserID)
	assert.Equal(t, domain.NotificationTypeInfo, captured.Type)
}

func TestGetUserNotificationsPaging(t *testing.T) {
	userID := uuid.New()
	expected := []domain.Notification{{ID: uuid.New(), UserID: userID, Title: "n"}}

	var gotLimit, gotOffset int
	repo := notificationRepoMock{
		getByUserIDFn: func(_ context.Context, gotUserID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
			assert.Equal(t, userID, gotUserID)
			gotLimit, gotOffset = limit, offset
			return expected, nil
		},
	}
	svc := NewNotificationService(repo, nil)
	ctx := context.Background()

	items, err := svc.GetUserNotifications(ctx, userID, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, expected, items)
	assert.Equal(t, 10, gotLimit)
	assert.Equal(t, 20, gotOffset)

	// Out-of-range paging falls back to the defaults.
	_, err = svc.GetUserNotifications(ctx, userID, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)
	assert.Equal(t, 0, gotOffset)
}

func TestReadStateDelegates(t *testing.T) {
	userID := uuid.New()
	notificationID := uuid.New()

	repo := notificationRepoMock{
		markAsReadFn: func(_ context.Context, gotNotificationID, gotUserID uuid.UUID) error {
			assert.Equal(t, notificationID, gotNotificationID)
			assert.Equal(t, userID, gotUserID)
			return nil
		},
		markAllAsReadFn: func(_ context.Context, gotUserID uuid.UUID) error {
			assert.Equal(t, userID, gotUserID)
			return nil
		},
		unreadCountFn: func(_ context.Context, gotUserID uuid.UUID) (int, error) {
			assert.Equal(t, userID, gotUserID)
			return 7, nil
		},
	}
	svc := NewNotificationService(repo, nil)
	ctx := context.Background()

	require.NoError(t, svc.MarkAsRead(ctx, notificationID, userID))
	require.NoError(t, svc.MarkAllAsRead(ctx, userID))

	count, err := svc.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}
