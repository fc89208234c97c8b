package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/beatmatch/backend/internal/gateway/middleware"
	"github.com/beatmatch/backend/internal/modules/reviews/application"
	"github.com/beatmatch/backend/internal/modules/reviews/domain"
	"github.com/beatmatch/backend/internal/shared/utils"
)

// ReviewService is what the handler needs from the application layer.
type ReviewService interface {
	Create(ctx context.Context, review *domain.Review) error
	ListForMusician(ctx context.Context, musicianID uuid.UUID, page, limit int, sortBy string) (*application.ReviewPage, error)
	AverageRating(ctx context.Context, musicianID uuid.UUID) (*domain.RatingSummary, error)
	Update(ctx context.Context, reviewID uuid.UUID, patch domain.ReviewPatch, callerID uuid.UUID, callerRole string) (*domain.Review, error)
	Delete(ctx context.Context, reviewID, callerID uuid.UUID, callerRole string) (uuid.UUID, error)
	Reply(ctx context.Context, reviewID, callerID uuid.UUID, reply string) (*domain.Review, error)
}

type ReviewHandler struct {
	service     ReviewService
	redisClient *redis.Client
}

func NewReviewHandler(service ReviewService, redisClient *redis.Client) *ReviewHandler {
	return &ReviewHandler{service: service, redisClient: redisClient}
}

func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var review domain.Review
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	review.ReviewerID = callerID

	err := h.service.Create(r.Context(), &review)
	if err == domain.ErrMusicianNotFound {
		utils.WriteError(w, http.StatusNotFound, "musician not found", nil)
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "failed to create review", err)
		return
	}

	h.invalidateStatsCache(review.MusicianID)

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "review created",
		"review":  review,
	})
}

func (h *ReviewHandler) ListForMusician(w http.ResponseWriter, r *http.Request) {
	musicianID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid musician id", nil)
		return
	}

	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	sortBy := q.Get("sortBy")

	result, err := h.service.ListForMusician(r.Context(), musicianID, page, limit, sortBy)
	if err == domain.ErrMusicianNotFound {
		utils.WriteError(w, http.StatusNotFound, "musician not found", nil)
		return
	}
	if err != nil {
		log.Printf("[ReviewHandler.ListForMusician] failed for %s: %v", musicianID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load reviews", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, result)
}

// AverageRating serves the standalone aggregate, cache-first.
func (h *ReviewHandler) AverageRating(w http.ResponseWriter, r *http.Request) {
	musicianID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid musician id", nil)
		return
	}

	cacheKey := "reviews:stats:" + musicianID.String()
	if h.redisClient != nil {
		if val, err := h.redisClient.Get(r.Context(), cacheKey).Result(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.Write([]byte(val))
			return
		}
	}

	summary, err := h.service.AverageRating(r.Context(), musicianID)
	if err == domain.ErrMusicianNotFound {
		utils.WriteError(w, http.StatusNotFound, "musician not found", nil)
		return
	}
	if err != nil {
		log.Printf("[ReviewHandler.AverageRating] failed for %s: %v", musicianID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load rating", nil)
		return
	}

	if h.redisClient != nil {
		go func() {
			jsonBytes, _ := json.Marshal(summary)
			h.redisClient.Set(context.Background(), cacheKey, jsonBytes, 5*time.Minute)
		}()
	}

	w.Header().Set("X-Cache", "MISS")
	utils.WriteJSON(w, http.StatusOK, summary)
}

func (h *ReviewHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	callerRole, _ := r.Context().Value(middleware.ContextKeyRole).(string)
	reviewID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid review id", nil)
		return
	}

	var patch domain.ReviewPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	review, err := h.service.Update(r.Context(), reviewID, patch, callerID, callerRole)
	switch err {
	case nil:
	case domain.ErrNotAllowed:
		utils.WriteError(w, http.StatusForbidden, "not allowed", nil)
		return
	case domain.ErrReviewNotFound:
		utils.WriteError(w, http.StatusNotFound, "review not found", nil)
		return
	default:
		utils.WriteError(w, http.StatusBadRequest, "failed to update review", err)
		return
	}

	h.invalidateStatsCache(review.MusicianID)

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "review updated",
		"review":  review,
	})
}

func (h *ReviewHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	callerRole, _ := r.Context().Value(middleware.ContextKeyRole).(string)
	reviewID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid review id", nil)
		return
	}

	musicianID, err := h.service.Delete(r.Context(), reviewID, callerID, callerRole)
	switch err {
	case nil:
	case domain.ErrNotAllowed:
		utils.WriteError(w, http.StatusForbidden, "not allowed", nil)
		return
	case domain.ErrReviewNotFound:
		utils.WriteError(w, http.StatusNotFound, "review not found", nil)
		return
	default:
		log.Printf("[ReviewHandler.Delete] failed for %s: %v", reviewID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to delete review", nil)
		return
	}

	// The hidden rating must drop out of served aggregates immediately.
	h.invalidateStatsCache(musicianID)

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "review deleted"})
}

func (h *ReviewHandler) Reply(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	reviewID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid review id", nil)
		return
	}

	var body struct {
		Reply string `json:"reply"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	review, err := h.service.Reply(r.Context(), reviewID, callerID, body.Reply)
	switch err {
	case nil:
	case domain.ErrNotAllowed:
		utils.WriteError(w, http.StatusForbidden, "only the reviewed musician may reply", nil)
		return
	case domain.ErrReviewNotFound:
		utils.WriteError(w, http.StatusNotFound, "review not found", nil)
		return
	default:
		utils.WriteError(w, http.StatusBadRequest, "failed to save reply", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "reply saved",
		"review":  review,
	})
}

func (h *ReviewHandler) invalidateStatsCache(musicianID uuid.UUID) {
	if h.redisClient == nil {
		return
	}
	h.redisClient.Del(context.Background(), "reviews:stats:"+musicianID.String())
}
