package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types a review may be tagged with.
var ValidEventTypes = map[string]bool{
	"wedding":    true,
	"party":      true,
	"concert":    true,
	"conference": true,
	"business":   true,
	"birthday":   true,
	"other":      true,
}

// Sort orders for review listings.
const (
	SortNewest  = "newest"
	SortHighest = "highest"
	SortLowest  = "lowest"
)

// Review rates a musician. Soft-deleted rows (is_active false) stay stored
// but never reach listings or aggregates.
type Review struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	MusicianID    uuid.UUID  `json:"musicianId" db:"musician_id"`
	ReviewerID    uuid.UUID  `json:"reviewerId" db:"reviewer_id"`
	Rating        int        `json:"rating" db:"rating"`
	Title         string     `json:"title" db:"title"`
	Comment       string     `json:"comment" db:"comment"`
	EventType     string     `json:"eventType" db:"event_type"`
	MusicianReply *string    `json:"musicianReply" db:"musician_reply"`
	HelpfulCount  int        `json:"helpfulCount" db:"helpful_count"`
	IsActive      bool       `json:"isActive" db:"is_active"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// ReviewWithReviewer attaches the reviewer's public name for listings.
type ReviewWithReviewer struct {
	Review
	ReviewerFirstName string `json:"reviewerFirstname" db:"reviewer_first_name"`
	ReviewerLastName  string `json:"reviewerLastname" db:"reviewer_last_name"`
}

// ReviewPatch is a partial edit; every provided field is revalidated with the
// creation bounds.
type ReviewPatch struct {
	Rating    *int    `json:"rating"`
	Title     *string `json:"title"`
	Comment   *string `json:"comment"`
	EventType *string `json:"eventType"`
}

// RatingSummary aggregates active reviews only. Distribution always carries
// all five keys, zero-filled.
type RatingSummary struct {
	AverageRating float64        `json:"averageRating"`
	TotalReviews  int            `json:"totalReviews"`
	Distribution  map[string]int `json:"distribution"`
}

type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	GetByID(ctx context.Context, id uuid.UUID) (*Review, error)
	ListForMusician(ctx context.Context, musicianID uuid.UUID, sortBy string, limit, offset int) ([]ReviewWithReviewer, error)
	Aggregate(ctx context.Context, musicianID uuid.UUID) (*RatingSummary, error)
	Update(ctx context.Context, id uuid.UUID, patch ReviewPatch) (*Review, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
	SetReply(ctx context.Context, id uuid.UUID, reply string) (*Review, error)
}
