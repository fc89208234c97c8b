package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/beatmatch/backend/internal/modules/events/domain"
)

// openCountCacheKey caches the board-wide open count. The per-caller access
// gate is evaluated before the cache is ever consulted.
const openCountCacheKey = "events:count:open"

const openCountCacheTTL = time.Minute

// ProfileGate answers whether a user has paid for an active musician profile.
// Satisfied by the musician module.
type ProfileGate interface {
	HasActiveProfile(ctx context.Context, userID uuid.UUID) (bool, error)
}

// MusicianDirectory reports whether a user is flagged as a musician.
// Satisfied by the auth module.
type MusicianDirectory interface {
	IsMusician(ctx context.Context, userID uuid.UUID) (bool, error)
}

type EventService struct {
	repo        domain.EventRepository
	profiles    ProfileGate
	musicians   MusicianDirectory
	redisClient *redis.Client
}

// NewEventService wires the board logic. redisClient may be nil; counting then
// always hits the database.
func NewEventService(repo domain.EventRepository, profiles ProfileGate, musicians MusicianDirectory, redisClient *redis.Client) *EventService {
	return &EventService{repo: repo, profiles: profiles, musicians: musicians, redisClient: redisClient}
}

// Create posts a new event. Any authenticated user may post.
func (s *EventService) Create(ctx context.Context, event *domain.Event, creatorID uuid.UUID) error {
	if event.EventType == "" || event.EventDate == "" || event.Location == "" ||
		event.Description == "" || len(event.Instruments) == 0 {
		return fmt.Errorf("eventType, date, location, description and instruments are required")
	}
	if _, err := time.Parse("2006-01-02", event.EventDate); err != nil {
		return fmt.Errorf("invalid date, expected YYYY-MM-DD")
	}
	if event.BudgetMin != nil && event.BudgetMax != nil && *event.BudgetMax < *event.BudgetMin {
		return fmt.Errorf("budgetMax must not be below budgetMin")
	}
	event.CreatedBy = creatorID
	if err := s.repo.Create(ctx, event); err != nil {
		return err
	}
	s.invalidateOpenCount()
	return nil
}

// ListOpen is the board view. Only musicians with an active paid profile may
// browse it.
func (s *EventService) ListOpen(ctx context.Context, callerID uuid.UUID) ([]domain.EventWithCreator, error) {
	active, err := s.profiles.HasActiveProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !active {
		return nil, domain.ErrPaymentRequired
	}
	return s.repo.ListOpen(ctx)
}

// CountOpen backs the dashboard badge. Gating failures degrade to zero
// instead of erroring because the caller cannot usefully react.
func (s *EventService) CountOpen(ctx context.Context, callerID *uuid.UUID) int {
	if callerID == nil {
		return 0
	}
	active, err := s.profiles.HasActiveProfile(ctx, *callerID)
	if err != nil || !active {
		return 0
	}

	if s.redisClient != nil {
		if cached, err := s.redisClient.Get(ctx, openCountCacheKey).Int(); err == nil {
			return cached
		}
	}

	count, err := s.repo.CountOpen(ctx)
	if err != nil {
		return 0
	}
	if s.redisClient != nil {
		go s.redisClient.Set(context.Background(), openCountCacheKey, count, openCountCacheTTL)
	}
	return count
}

// ListMine returns the caller's own events regardless of status.
func (s *EventService) ListMine(ctx context.Context, callerID uuid.UUID) ([]domain.Event, error) {
	return s.repo.ListByCreator(ctx, callerID)
}

// Close marks an event filled. Any musician may close, not just the creator;
// closing twice is a conflict.
func (s *EventService) Close(ctx context.Context, eventID, callerID uuid.UUID) (*domain.Event, error) {
	isMusician, err := s.musicians.IsMusician(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if !isMusician {
		return nil, domain.ErrMusicianOnly
	}
	event, err := s.repo.Close(ctx, eventID, callerID)
	if err != nil {
		return nil, err
	}
	s.invalidateOpenCount()
	return event, nil
}

// Update applies an allow-listed partial update. Creator or admin only.
func (s *EventService) Update(ctx context.Context, eventID uuid.UUID, patch domain.EventPatch, callerID uuid.UUID, callerRole string) (*domain.Event, error) {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !canMutate(event, callerID, callerRole) {
		return nil, domain.ErrNotAllowed
	}
	if patch.EventDate != nil {
		if _, err := time.Parse("2006-01-02", *patch.EventDate); err != nil {
			return nil, fmt.Errorf("invalid date, expected YYYY-MM-DD")
		}
	}
	return s.repo.Update(ctx, eventID, patch)
}

// Delete removes an event. Same gate as Update.
func (s *EventService) Delete(ctx context.Context, eventID, callerID uuid.UUID, callerRole string) error {
	event, err := s.repo.GetByID(ctx, eventID)
	if err != nil {
		return err
	}
	if !canMutate(event, callerID, callerRole) {
		return domain.ErrNotAllowed
	}
	if err := s.repo.Delete(ctx, eventID); err != nil {
		return err
	}
	s.invalidateOpenCount()
	return nil
}

// canMutate is the single ownership predicate for event mutation.
func canMutate(event *domain.Event, callerID uuid.UUID, callerRole string) bool {
	return event.CreatedBy == callerID || callerRole == "admin"
}

func (s *EventService) invalidateOpenCount() {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(context.Background(), openCountCacheKey)
}
