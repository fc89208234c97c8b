package application

import (
	"context"
	"fmt"
	"log"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/beatmatch/backend/internal/modules/reviews/domain"
)

// UserFinder is satisfied by the auth module.
type UserFinder interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}

// Notifier delivers in-app notifications. May be nil; reviews still work
// without the notification module.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, title, message, kind string) error
}

type ReviewService struct {
	repo     domain.ReviewRepository
	users    UserFinder
	notifier Notifier
}

func NewReviewService(repo domain.ReviewRepository, users UserFinder, notifier Notifier) *ReviewService {
	return &ReviewService{repo: repo, users: users, notifier: notifier}
}

// ReviewPage is a listing with its aggregates and pagination data.
type ReviewPage struct {
	Reviews []domain.ReviewWithReviewer `json:"reviews"`
	domain.RatingSummary
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Create validates and stores a new review. A reviewer may review the same
// musician more than once.
func (s *ReviewService) Create(ctx context.Context, review *domain.Review) error {
	if review.MusicianID == uuid.Nil || review.ReviewerID == uuid.Nil {
		return fmt.Errorf("musicianId is required")
	}
	if err := validateRating(review.Rating); err != nil {
		return err
	}
	if err := validateTitle(review.Title); err != nil {
		return err
	}
	if err := validateComment(review.Comment); err != nil {
		return err
	}
	if err := validateEventType(review.EventType); err != nil {
		return err
	}

	exists, err := s.users.Exists(ctx, review.MusicianID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrMusicianNotFound
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return err
	}

	if s.notifier != nil {
		if err := s.notifier.Notify(ctx, review.MusicianID, "New review",
			fmt.Sprintf("You received a new %d-star review: %q", review.Rating, review.Title), "info"); err != nil {
			log.Printf("[ReviewService.Create] notification failed: %v", err)
		}
	}
	return nil
}

// ListForMusician returns one page of active reviews plus the aggregates.
func (s *ReviewService) ListForMusician(ctx context.Context, musicianID uuid.UUID, page, limit int, sortBy string) (*ReviewPage, error) {
	exists, err := s.users.Exists(ctx, musicianID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrMusicianNotFound
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 10
	}
	switch sortBy {
	case domain.SortHighest, domain.SortLowest:
	default:
		sortBy = domain.SortNewest
	}

	reviews, err := s.repo.ListForMusician(ctx, musicianID, sortBy, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}
	summary, err := s.repo.Aggregate(ctx, musicianID)
	if err != nil {
		return nil, err
	}

	return &ReviewPage{
		Reviews:       reviews,
		RatingSummary: *summary,
		Page:          page,
		Limit:         limit,
	}, nil
}

// AverageRating is the standalone aggregate endpoint.
func (s *ReviewService) AverageRating(ctx context.Context, musicianID uuid.UUID) (*domain.RatingSummary, error) {
	exists, err := s.users.Exists(ctx, musicianID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrMusicianNotFound
	}
	return s.repo.Aggregate(ctx, musicianID)
}

// Update edits a review. Only the original reviewer or an admin may edit, and
// every provided field is held to the creation bounds.
func (s *ReviewService) Update(ctx context.Context, reviewID uuid.UUID, patch domain.ReviewPatch, callerID uuid.UUID, callerRole string) (*domain.Review, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.ReviewerID != callerID && callerRole != "admin" {
		return nil, domain.ErrNotAllowed
	}

	if patch.Rating != nil {
		if err := validateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}
	if patch.Title != nil {
		if err := validateTitle(*patch.Title); err != nil {
			return nil, err
		}
	}
	if patch.Comment != nil {
		if err := validateComment(*patch.Comment); err != nil {
			return nil, err
		}
	}
	if patch.EventType != nil {
		if err := validateEventType(*patch.EventType); err != nil {
			return nil, err
		}
	}

	return s.repo.Update(ctx, reviewID, patch)
}

// Delete soft-deletes. The reviewer, the reviewed musician, or an admin may
// hide a review; nobody hard-deletes. Returns the reviewed musician's id so
// the caller can drop the cached aggregates the hidden rating contributed to.
func (s *ReviewService) Delete(ctx context.Context, reviewID, callerID uuid.UUID, callerRole string) (uuid.UUID, error) {
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return uuid.Nil, err
	}
	if review.ReviewerID != callerID && review.MusicianID != callerID && callerRole != "admin" {
		return uuid.Nil, domain.ErrNotAllowed
	}
	if err := s.repo.SoftDelete(ctx, reviewID); err != nil {
		return uuid.Nil, err
	}
	return review.MusicianID, nil
}

// Reply lets the reviewed musician answer publicly.
func (s *ReviewService) Reply(ctx context.Context, reviewID, callerID uuid.UUID, reply string) (*domain.Review, error) {
	if reply == "" || utf8.RuneCountInString(reply) > 500 {
		return nil, fmt.Errorf("reply must be between 1 and 500 characters")
	}
	review, err := s.repo.GetByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.MusicianID != callerID {
		return nil, domain.ErrNotAllowed
	}
	return s.repo.SetReply(ctx, reviewID, reply)
}

func validateRating(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("rating must be between 1 and 5")
	}
	return nil
}

// Bounds count characters, not bytes, so multibyte text is measured the way
// the clients display it.
func validateTitle(title string) error {
	if n := utf8.RuneCountInString(title); n < 5 || n > 100 {
		return fmt.Errorf("title must be between 5 and 100 characters")
	}
	return nil
}

func validateComment(comment string) error {
	if n := utf8.RuneCountInString(comment); n < 10 || n > 1000 {
		return fmt.Errorf("comment must be between 10 and 1000 characters")
	}
	return nil
}

func validateEventType(eventType string) error {
	if !domain.ValidEventTypes[eventType] {
		return fmt.Errorf("invalid eventType %q", eventType)
	}
	return nil
}
