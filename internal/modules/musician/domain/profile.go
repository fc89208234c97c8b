package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Sentinel filter values. The clients send "all" to bypass a filter, and a
// profile whose instrument contains "all-instruments" matches any instrument
// query.
const (
	FilterAll          = "all"
	InstrumentWildcard = "all-instruments"
)

type AvailabilityKind string

const (
	AvailabilityAvailable   AvailabilityKind = "available"
	AvailabilityUnavailable AvailabilityKind = "unavailable"
)

// MusicianProfile is the 0-or-1 musician record owned by a user. A profile is
// invisible to search until is_active is flipped by a successful payment.
type MusicianProfile struct {
	ID              uuid.UUID      `json:"id" db:"id"`
	UserID          uuid.UUID      `json:"user_id" db:"user_id"`
	Instrument      string         `json:"instrument" db:"instrument"`
	MusicType       string         `json:"musictype" db:"music_type"`
	ExperienceYears string         `json:"experienceYears" db:"experience_years"`
	ProfilePicture  string         `json:"profilePicture" db:"profile_picture"`
	Bio             string         `json:"bio" db:"bio"`
	IsSinger        bool           `json:"isSinger" db:"is_singer"`
	EventTypes      pq.StringArray `json:"eventTypes" db:"event_types"`
	Locations       pq.StringArray `json:"location" db:"locations"`
	WhatsappLink    string         `json:"whatsappLink" db:"whatsapp_link"`
	GalleryPictures pq.StringArray `json:"galleryPictures" db:"gallery_pictures"`
	GalleryVideos   pq.StringArray `json:"galleryVideos" db:"gallery_videos"`
	YoutubeLinks    pq.StringArray `json:"youtubeLinks" db:"youtube_links"`
	IsActive        bool           `json:"isActive" db:"is_active"`
	CreatedAt       time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at" db:"updated_at"`
}

// Availability is a calendar window owned by one profile. Dates are
// "YYYY-MM-DD" and times "HH:mm", matching what the booking clients send.
type Availability struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	ProfileID uuid.UUID        `json:"-" db:"profile_id"`
	From      string           `json:"from" db:"date_from"`
	To        string           `json:"to" db:"date_to"`
	StartTime string           `json:"startTime" db:"start_time"`
	EndTime   string           `json:"endTime" db:"end_time"`
	Kind      AvailabilityKind `json:"type" db:"kind"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`
}

// ProfilePatch carries a partial profile update. Nil means "leave untouched";
// an explicitly empty string/array overwrites.
type ProfilePatch struct {
	Instrument      *string   `json:"instrument"`
	MusicType       *string   `json:"musictype"`
	ExperienceYears *string   `json:"experienceYears"`
	ProfilePicture  *string   `json:"profilePicture"`
	Bio             *string   `json:"bio"`
	IsSinger        *bool     `json:"isSinger"`
	EventTypes      *[]string `json:"eventTypes"`
	Locations       *[]string `json:"location"`
	WhatsappLink    *string   `json:"whatsappLink"`
	GalleryPictures *[]string `json:"galleryPictures"`
	GalleryVideos   *[]string `json:"galleryVideos"`
	YoutubeLinks    *[]string `json:"youtubeLinks"`
}

// AvailabilityPatch carries a partial availability update
type AvailabilityPatch struct {
	From      *string `json:"from"`
	To        *string `json:"to"`
	StartTime *string `json:"startTime"`
	EndTime   *string `json:"endTime"`
	Kind      *string `json:"type"`
}

// SearchFilters mirrors the discovery query parameters
type SearchFilters struct {
	Query      string
	MusicTypes []string
	Instrument []string
	EventTypes []string
	SingerOnly bool
	Region     string
	Location   string
}

// SearchResult pairs a matching user's public fields with its profile
type SearchResult struct {
	UserID         uuid.UUID       `json:"_id"`
	FirstName      string          `json:"firstname"`
	LastName       string          `json:"lastname"`
	PhoneNumber    *string         `json:"phoneNumber"`
	ProfileImage   string          `json:"profileImage,omitempty"`
	Profile        MusicianProfile `json:"musicianProfile"`
}

type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*MusicianProfile, error)
	Create(ctx context.Context, profile *MusicianProfile) error
	Update(ctx context.Context, userID uuid.UUID, patch ProfilePatch) (*MusicianProfile, error)
	Search(ctx context.Context, filters SearchFilters) ([]SearchResult, error)

	// Activation. Both are idempotent by construction.
	EnsureProfile(ctx context.Context, userID uuid.UUID) error
	Activate(ctx context.Context, userID uuid.UUID) error
	HasActiveProfile(ctx context.Context, userID uuid.UUID) (bool, error)

	// Media persistence
	SetProfilePicture(ctx context.Context, userID uuid.UUID, url string) error
	AppendGalleryPicture(ctx context.Context, userID uuid.UUID, url string) error

	// Availability sub-resource, always scoped to the owning profile
	AddAvailability(ctx context.Context, availability *Availability) error
	ListAvailability(ctx context.Context, profileID uuid.UUID) ([]Availability, error)
	UpdateAvailability(ctx context.Context, profileID, availabilityID uuid.UUID, patch AvailabilityPatch) (*Availability, error)
	DeleteAvailability(ctx context.Context, profileID, availabilityID uuid.UUID) error

	SetUserPhone(ctx context.Context, userID uuid.UUID, phone string) error
}
