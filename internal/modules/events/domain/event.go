package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type EventStatus string

const (
	StatusOpen   EventStatus = "open"
	StatusClosed EventStatus = "closed"
)

// Event is a booking request posted to the board. Status only ever moves
// open → closed.
type Event struct {
	ID          uuid.UUID      `json:"id" db:"id"`
	EventType   string         `json:"eventType" db:"event_type"`
	EventDate   string         `json:"date" db:"event_date"`
	Location    string         `json:"location" db:"location"`
	Instruments pq.StringArray `json:"instruments" db:"instruments"`
	BudgetMin   *int           `json:"budgetMin" db:"budget_min"`
	BudgetMax   *int           `json:"budgetMax" db:"budget_max"`
	Description string         `json:"description" db:"description"`
	Status      EventStatus    `json:"status" db:"status"`
	CreatedBy   uuid.UUID      `json:"createdBy" db:"created_by"`
	ClosedBy    *uuid.UUID     `json:"closedBy" db:"closed_by"`
	ClosedAt    *time.Time     `json:"closedAt" db:"closed_at"`
	CreatedAt   time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at" db:"updated_at"`
}

// EventWithCreator attaches the poster's public fields for board listings.
type EventWithCreator struct {
	Event
	CreatorFirstName string `json:"creatorFirstname" db:"creator_first_name"`
	CreatorLastName  string `json:"creatorLastname" db:"creator_last_name"`
}

// EventPatch is the allow-list of mutable fields. Anything else (status,
// creator, close stamps) is immutable through the update path.
type EventPatch struct {
	EventType   *string   `json:"eventType"`
	EventDate   *string   `json:"date"`
	Location    *string   `json:"location"`
	Instruments *[]string `json:"instruments"`
	BudgetMin   *int      `json:"budgetMin"`
	BudgetMax   *int      `json:"budgetMax"`
	Description *string   `json:"description"`
}

type EventRepository interface {
	Create(ctx context.Context, event *Event) error
	GetByID(ctx context.Context, id uuid.UUID) (*Event, error)
	ListOpen(ctx context.Context) ([]EventWithCreator, error)
	CountOpen(ctx context.Context) (int, error)
	ListByCreator(ctx context.Context, creatorID uuid.UUID) ([]Event, error)
	Update(ctx context.Context, id uuid.UUID, patch EventPatch) (*Event, error)
	Delete(ctx context.Context, id uuid.UUID) error

	// Close stamps closer and close time. Returns ErrEventClosed when the
	// event is already closed, making the transition one-way.
	Close(ctx context.Context, id, closerID uuid.UUID) (*Event, error)
}
