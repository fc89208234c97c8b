package application

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beatmatch/backend/internal/modules/events/domain"
)

type mockRepo struct {
	createFn        func(context.Context, *domain.Event) error
	getByIDFn       func(context.Context, uuid.UUID) (*domain.Event, error)
	listOpenFn      func(context.Context) ([]domain.EventWithCreator, error)
	countOpenFn     func(context.Context) (int, error)
	listByCreatorFn func(context.Context, uuid.UUID) ([]domain.Event, error)
	updateFn        func(context.Context, uuid.UUID, domain.EventPatch) (*domain.Event, error)
	deleteFn        func(context.Context, uuid.UUID) error
	closeFn         func(context.Context, uuid.UUID, uuid.UUID) (*domain.Event, error)
}

func (m mockRepo) Create(ctx context.Context, e *domain.Event) error { return m.createFn(ctx, e) }
func (m mockRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Event, error) {
	return m.getByIDFn(ctx, id)
}
func (m mockRepo) ListOpen(ctx context.Context) ([]domain.EventWithCreator, error) {
	return m.listOpenFn(ctx)
}
func (m mockRepo) CountOpen(ctx context.Context) (int, error) { return m.countOpenFn(ctx) }
func (m mockRepo) ListByCreator(ctx context.Context, id uuid.UUID) ([]domain.Event, error) {
	return m.listByCreatorFn(ctx, id)
}
func (m mockRepo) Update(ctx context.Context, id uuid.UUID, p domain.EventPatch) (*domain.Event, error) {
	return m.updateFn(ctx, id, p)
}
func (m mockRepo) Delete(ctx context.Context, id uuid.UUID) error { return m.deleteFn(ctx, id) }
func (m mockRepo) Close(ctx context.Context, id, closerID uuid.UUID) (*domain.Event, error) {
	return m.closeFn(ctx, id, closerID)
}

type mockGate struct {
	active bool
	err    error
}

func (m mockGate) HasActiveProfile(context.Context, uuid.UUID) (bool, error) {
	return m.active, m.err
}

type mockDirectory struct{ musician bool }

func (m mockDirectory) IsMusician(context.Context, uuid.UUID) (bool, error) {
	return m.musician, nil
}

func intPtr(i int) *int { return &i }

func TestEventService_CreateValidation(t *testing.T) {
	svc := NewEventService(mockRepo{createFn: func(context.Context, *domain.Event) error { return nil }}, mockGate{}, mockDirectory{}, nil)
	ctx := context.Background()
	creator := uuid.New()

	err := svc.Create(ctx, &domain.Event{}, creator)
	require.EqualError(t, err, "eventType, date, location, description and instruments are required")

	base := domain.Event{
		EventType:   "wedding",
		EventDate:   "2026-09-12",
		Location:    "Lisbon",
		Description: "live band for the evening",
		Instruments: []string{"guitar", "drums"},
	}

	bad := base
	bad.EventDate = "12/09/2026"
	require.EqualError(t, svc.Create(ctx, &bad, creator), "invalid date, expected YYYY-MM-DD")

	bad = base
	bad.BudgetMin, bad.BudgetMax = intPtr(500), intPtr(100)
	require.EqualError(t, svc.Create(ctx, &bad, creator), "budgetMax must not be below budgetMin")

	ok := base
	require.NoError(t, svc.Create(ctx, &ok, creator))
	assert.Equal(t, creator, ok.CreatedBy)
}

func TestEventService_ListOpenRequiresActiveProfile(t *testing.T) {
	repo := mockRepo{listOpenFn: func(context.Context) ([]domain.EventWithCreator, error) {
		return []domain.EventWithCreator{{}}, nil
	}}

	svc := NewEventService(repo, mockGate{active: false}, mockDirectory{}, nil)
	_, err := svc.ListOpen(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrPaymentRequired)

	svc = NewEventService(repo, mockGate{active: true}, mockDirectory{}, nil)
	events, err := svc.ListOpen(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestEventService_CountOpenDegradesToZero(t *testing.T) {
	repo := mockRepo{countOpenFn: func(context.Context) (int, error) { return 7, nil }}
	callerID := uuid.New()

	svc := NewEventService(repo, mockGate{active: true}, mockDirectory{}, nil)
	assert.Equal(t, 0, svc.CountOpen(context.Background(), nil), "guest sees zero")
	assert.Equal(t, 7, svc.CountOpen(context.Background(), &callerID))

	svc = NewEventService(repo, mockGate{active: false}, mockDirectory{}, nil)
	assert.Equal(t, 0, svc.CountOpen(context.Background(), &callerID), "unpaid caller sees zero")

	svc = NewEventService(repo, mockGate{err: errors.New("db down")}, mockDirectory{}, nil)
	assert.Equal(t, 0, svc.CountOpen(context.Background(), &callerID), "gate failure degrades")

	failing := mockRepo{countOpenFn: func(context.Context) (int, error) { return 0, errors.New("db down") }}
	svc = NewEventService(failing, mockGate{active: true}, mockDirectory{}, nil)
	assert.Equal(t, 0, svc.CountOpen(context.Background(), &callerID), "count failure degrades")
}

func TestEventService_CloseMusicianOnly(t *testing.T) {
	closed := false
	repo := mockRepo{closeFn: func(_ context.Context, _, _ uuid.UUID) (*domain.Event, error) {
		closed = true
		return &domain.Event{Status: domain.StatusClosed}, nil
	}}

	svc := NewEventService(repo, mockGate{}, mockDirectory{musician: false}, nil)
	_, err := svc.Close(context.Background(), uuid.New(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrMusicianOnly)
	assert.False(t, closed)

	// Any musician may close, not just the creator
	svc = NewEventService(repo, mockGate{}, mockDirectory{musician: true}, nil)
	event, err := svc.Close(context.Background(), uuid.New(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusClosed, event.Status)
	assert.True(t, closed)
}

func TestEventService_UpdateOwnership(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	eventID := uuid.New()

	repo := mockRepo{
		getByIDFn: func(context.Context, uuid.UUID) (*domain.Event, error) {
			return &domain.Event{ID: eventID, CreatedBy: owner}, nil
		},
		updateFn: func(_ context.Context, _ uuid.UUID, p domain.EventPatch) (*domain.Event, error) {
			return &domain.Event{ID: eventID, CreatedBy: owner, Location: *p.Location}, nil
		},
		deleteFn: func(context.Context, uuid.UUID) error { return nil },
	}
	svc := NewEventService(repo, mockGate{}, mockDirectory{}, nil)
	ctx := context.Background()
	location := "Porto"

	_, err := svc.Update(ctx, eventID, domain.EventPatch{Location: &location}, stranger, "user")
	assert.ErrorIs(t, err, domain.ErrNotAllowed)
	assert.ErrorIs(t, svc.Delete(ctx, eventID, stranger, "user"), domain.ErrNotAllowed)

	updated, err := svc.Update(ctx, eventID, domain.EventPatch{Location: &location}, owner, "user")
	require.NoError(t, err)
	assert.Equal(t, "Porto", updated.Location)

	// An admin bypasses ownership
	_, err = svc.Update(ctx, eventID, domain.EventPatch{Location: &location}, stranger, "admin")
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, eventID, stranger, "admin"))
}
