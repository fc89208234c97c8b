package application

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/beatmatch/backend/internal/modules/musician/domain"
)

// profileCacheKeyPrefix matches the public-profile response cache. Every write
// that changes what the public page shows must drop the key.
const profileCacheKeyPrefix = "musician:profile:"

// UserFinder is satisfied by the auth module and lets us verify a profile
// owner exists before writing.
type UserFinder interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

type ProfileService struct {
	repo        domain.ProfileRepository
	users       UserFinder
	redisClient *redis.Client
}

// NewProfileService wires the profile logic. redisClient may be nil; cache
// invalidation is then a no-op.
func NewProfileService(repo domain.ProfileRepository, users UserFinder, redisClient *redis.Client) *ProfileService {
	return &ProfileService{repo: repo, users: users, redisClient: redisClient}
}

// ProfileView is a profile with its availability windows attached, which is
// the shape the clients render.
type ProfileView struct {
	*domain.MusicianProfile
	Availability []domain.Availability `json:"availability"`
}

// UpsertRequest is a partial profile write. PhoneNumber rides along because
// the clients edit it on the same screen, but it lives on the user record.
type UpsertRequest struct {
	domain.ProfilePatch
	PhoneNumber *string `json:"phoneNumber"`
}

// UpsertProfile creates the caller's profile on first write and patches it on
// every later one. New profiles always start inactive.
func (s *ProfileService) UpsertProfile(ctx context.Context, userID uuid.UUID, req UpsertRequest) (*ProfileView, error) {
	if err := validatePatch(req.ProfilePatch); err != nil {
		return nil, err
	}

	if req.PhoneNumber != nil {
		if err := s.repo.SetUserPhone(ctx, userID, *req.PhoneNumber); err != nil {
			return nil, fmt.Errorf("failed to update phone: %w", err)
		}
	}

	_, err := s.repo.GetByUserID(ctx, userID)
	if err == domain.ErrProfileNotFound {
		profile := profileFromPatch(userID, req.ProfilePatch)
		if err := s.repo.Create(ctx, profile); err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
		return s.GetProfile(ctx, userID)
	}
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.Update(ctx, userID, req.ProfilePatch); err != nil {
		return nil, err
	}
	return s.GetProfile(ctx, userID)
}

// GetProfile loads a profile with its availability windows.
func (s *ProfileService) GetProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	availability, err := s.repo.ListAvailability(ctx, profile.ID)
	if err != nil {
		return nil, err
	}
	return &ProfileView{MusicianProfile: profile, Availability: availability}, nil
}

// GetPublicProfile is GetProfile for someone else's page. The target user must
// exist; an inactive profile still resolves so owners can preview their page.
func (s *ProfileService) GetPublicProfile(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrUserNotFound
	}
	return s.GetProfile(ctx, userID)
}

// Search runs the discovery query over active musician profiles.
func (s *ProfileService) Search(ctx context.Context, filters domain.SearchFilters) ([]domain.SearchResult, error) {
	return s.repo.Search(ctx, filters)
}

// HasActiveProfile reports whether the user has paid for an active profile.
// The event board uses this as its posting gate.
func (s *ProfileService) HasActiveProfile(ctx context.Context, userID uuid.UUID) (bool, error) {
	return s.repo.HasActiveProfile(ctx, userID)
}

// ActivateProfile makes the user's profile visible, creating an empty one
// first if needed. Called by the payment module; replay-safe.
func (s *ProfileService) ActivateProfile(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.EnsureProfile(ctx, userID); err != nil {
		return err
	}
	if err := s.repo.Activate(ctx, userID); err != nil {
		return err
	}
	s.InvalidateCache(userID)
	return nil
}

// SaveProfilePicture stores the uploaded picture URL on the profile.
func (s *ProfileService) SaveProfilePicture(ctx context.Context, userID uuid.UUID, url string) error {
	if err := s.repo.SetProfilePicture(ctx, userID, url); err != nil {
		return err
	}
	s.InvalidateCache(userID)
	return nil
}

// AddGalleryPicture appends an uploaded picture URL to the gallery.
func (s *ProfileService) AddGalleryPicture(ctx context.Context, userID uuid.UUID, url string) error {
	if err := s.repo.AppendGalleryPicture(ctx, userID, url); err != nil {
		return err
	}
	s.InvalidateCache(userID)
	return nil
}

// InvalidateCache drops the cached public-profile response for the user.
func (s *ProfileService) InvalidateCache(userID uuid.UUID) {
	if s.redisClient == nil {
		return
	}
	s.redisClient.Del(context.Background(), profileCacheKeyPrefix+userID.String())
}

// AddAvailability creates a window under the caller's profile.
func (s *ProfileService) AddAvailability(ctx context.Context, userID uuid.UUID, availability *domain.Availability) (*domain.Availability, error) {
	if err := validateWindow(availability.From, availability.To, availability.StartTime, availability.EndTime, string(availability.Kind)); err != nil {
		return nil, err
	}
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	availability.ProfileID = profile.ID
	if err := s.repo.AddAvailability(ctx, availability); err != nil {
		return nil, err
	}
	return availability, nil
}

// ListAvailability returns the caller's windows.
func (s *ProfileService) ListAvailability(ctx context.Context, userID uuid.UUID) ([]domain.Availability, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.ListAvailability(ctx, profile.ID)
}

// UpdateAvailability patches one of the caller's windows. A window id under a
// different profile reads as not found.
func (s *ProfileService) UpdateAvailability(ctx context.Context, userID, availabilityID uuid.UUID, patch domain.AvailabilityPatch) (*domain.Availability, error) {
	if err := validateWindowPatch(patch); err != nil {
		return nil, err
	}
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateAvailability(ctx, profile.ID, availabilityID, patch)
}

// DeleteAvailability removes one of the caller's windows.
func (s *ProfileService) DeleteAvailability(ctx context.Context, userID, availabilityID uuid.UUID) error {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return s.repo.DeleteAvailability(ctx, profile.ID, availabilityID)
}

func profileFromPatch(userID uuid.UUID, patch domain.ProfilePatch) *domain.MusicianProfile {
	profile := &domain.MusicianProfile{UserID: userID}
	setString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	setString(&profile.Instrument, patch.Instrument)
	setString(&profile.MusicType, patch.MusicType)
	setString(&profile.ExperienceYears, patch.ExperienceYears)
	setString(&profile.ProfilePicture, patch.ProfilePicture)
	setString(&profile.Bio, patch.Bio)
	setString(&profile.WhatsappLink, patch.WhatsappLink)
	if patch.IsSinger != nil {
		profile.IsSinger = *patch.IsSinger
	}
	if patch.EventTypes != nil {
		profile.EventTypes = *patch.EventTypes
	}
	if patch.Locations != nil {
		profile.Locations = *patch.Locations
	}
	if patch.GalleryPictures != nil {
		profile.GalleryPictures = *patch.GalleryPictures
	}
	if patch.GalleryVideos != nil {
		profile.GalleryVideos = *patch.GalleryVideos
	}
	if patch.YoutubeLinks != nil {
		profile.YoutubeLinks = *patch.YoutubeLinks
	}
	return profile
}

func validatePatch(patch domain.ProfilePatch) error {
	if patch.Bio != nil && utf8.RuneCountInString(*patch.Bio) > 250 {
		return fmt.Errorf("bio must be at most 250 characters")
	}
	if patch.WhatsappLink != nil && *patch.WhatsappLink != "" {
		if len(*patch.WhatsappLink) > 500 {
			return fmt.Errorf("whatsappLink is too long")
		}
	}
	return nil
}

func validateWindow(from, to, startTime, endTime, kind string) error {
	if from == "" || to == "" {
		return fmt.Errorf("from and to dates are required")
	}
	fromDay, err := time.Parse("2006-01-02", from)
	if err != nil {
		return fmt.Errorf("invalid from date, expected YYYY-MM-DD")
	}
	toDay, err := time.Parse("2006-01-02", to)
	if err != nil {
		return fmt.Errorf("invalid to date, expected YYYY-MM-DD")
	}
	if toDay.Before(fromDay) {
		return fmt.Errorf("to date must not precede from date")
	}
	if startTime != "" {
		if _, err := time.Parse("15:04", startTime); err != nil {
			return fmt.Errorf("invalid startTime, expected HH:mm")
		}
	}
	if endTime != "" {
		if _, err := time.Parse("15:04", endTime); err != nil {
			return fmt.Errorf("invalid endTime, expected HH:mm")
		}
	}
	return validateKind(kind)
}

func validateWindowPatch(patch domain.AvailabilityPatch) error {
	check := func(value *string, layout, name string) error {
		if value == nil || *value == "" {
			return nil
		}
		if _, err := time.Parse(layout, *value); err != nil {
			return fmt.Errorf("invalid %s", name)
		}
		return nil
	}
	if err := check(patch.From, "2006-01-02", "from date, expected YYYY-MM-DD"); err != nil {
		return err
	}
	if err := check(patch.To, "2006-01-02", "to date, expected YYYY-MM-DD"); err != nil {
		return err
	}
	if err := check(patch.StartTime, "15:04", "startTime, expected HH:mm"); err != nil {
		return err
	}
	if err := check(patch.EndTime, "15:04", "endTime, expected HH:mm"); err != nil {
		return err
	}
	if patch.Kind != nil {
		return validateKind(*patch.Kind)
	}
	return nil
}

func validateKind(kind string) error {
	switch domain.AvailabilityKind(kind) {
	case "", domain.AvailabilityAvailable, domain.AvailabilityUnavailable:
		return nil
	}
	return fmt.Errorf("type must be %q or %q", domain.AvailabilityAvailable, domain.AvailabilityUnavailable)
}
