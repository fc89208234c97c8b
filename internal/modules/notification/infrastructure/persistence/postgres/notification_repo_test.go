package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatmatch/backend/internal/modules/notification/domain"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestCreateInsertsNotification(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgNotificationRepository(db)

	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    uuid.New(),
		Title:     "New review",
		Message:   "You received a new review",
		Type:      domain.NotificationTypeInfo,
		CreatedAt: time.Now().UTC(),
	}

	mock.ExpectExec(`INSERT INTO notifications`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), n))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByUserIDNewestFirst(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgNotificationRepository(db)

	userID := uuid.New()
	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "message", "type", "is_read", "created_at"}).
		AddRow(uuid.New(), userID, "b", "second", "info", false, time.Now()).
		AddRow(uuid.New(), userID, "a", "first", "success", true, time.Now().Add(-time.Hour))

	mock.ExpectQuery(`SELECT \* FROM notifications\s+WHERE user_id = \$1\s+ORDER BY created_at DESC\s+LIMIT \$2 OFFSET \$3`).
		WithArgs(userID, 20, 0).
		WillReturnRows(rows)

	got, err := repo.GetByUserID(context.Background(), userID, 20, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Title)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkAsReadScopedToOwner(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgNotificationRepository(db)

	notificationID := uuid.New()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE notifications\s+SET is_read = TRUE\s+WHERE id = \$1 AND user_id = \$2`).
		WithArgs(notificationID, userID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkAsRead(context.Background(), notificationID, userID)
	assert.ErrorIs(t, err, domain.ErrNotificationNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUnreadCount(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPgNotificationRepository(db)

	userID := uuid.New()
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM notifications\s+WHERE user_id = \$1 AND is_read = FALSE`).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.UnreadCount(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	require.NoError(t, mock.ExpectationsWereMet())
}
