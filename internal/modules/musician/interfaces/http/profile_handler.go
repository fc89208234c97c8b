package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/beatmatch/backend/internal/gateway/middleware"
	"github.com/beatmatch/backend/internal/modules/musician/application"
	"github.com/beatmatch/backend/internal/modules/musician/domain"
	"github.com/beatmatch/backend/internal/shared/utils"
)

// ProfileService is what the handlers need from the application layer.
type ProfileService interface {
	UpsertProfile(ctx context.Context, userID uuid.UUID, req application.UpsertRequest) (*application.ProfileView, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*application.ProfileView, error)
	GetPublicProfile(ctx context.Context, userID uuid.UUID) (*application.ProfileView, error)
	Search(ctx context.Context, filters domain.SearchFilters) ([]domain.SearchResult, error)
	SaveProfilePicture(ctx context.Context, userID uuid.UUID, url string) error
	AddGalleryPicture(ctx context.Context, userID uuid.UUID, url string) error
	AddAvailability(ctx context.Context, userID uuid.UUID, availability *domain.Availability) (*domain.Availability, error)
	ListAvailability(ctx context.Context, userID uuid.UUID) ([]domain.Availability, error)
	UpdateAvailability(ctx context.Context, userID, availabilityID uuid.UUID, patch domain.AvailabilityPatch) (*domain.Availability, error)
	DeleteAvailability(ctx context.Context, userID, availabilityID uuid.UUID) error
}

type ProfileHandler struct {
	service     ProfileService
	redisClient *redis.Client
	fileService FileService
}

// NewProfileHandler builds the profile endpoints. redisClient and fileService
// may both be nil; responses then skip caching and media presigning.
func NewProfileHandler(service ProfileService, redisClient *redis.Client, fileService FileService) *ProfileHandler {
	return &ProfileHandler{service: service, redisClient: redisClient, fileService: fileService}
}

// Upsert creates the caller's profile on first write, patches it afterwards.
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var req application.UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	view, err := h.service.UpsertProfile(r.Context(), userID, req)
	if err != nil {
		log.Printf("[ProfileHandler.Upsert] failed for %s: %v", userID, err)
		utils.WriteError(w, http.StatusBadRequest, "failed to save profile", err)
		return
	}

	h.invalidateProfileCache(userID)

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "profile saved",
		"profile": view,
	})
}

// GetMine returns the caller's own profile with availability attached.
func (h *ProfileHandler) GetMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	view, err := h.service.GetProfile(r.Context(), userID)
	if err == domain.ErrProfileNotFound {
		utils.WriteError(w, http.StatusNotFound, "profile not found", nil)
		return
	}
	if err != nil {
		log.Printf("[ProfileHandler.GetMine] failed for %s: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load profile", nil)
		return
	}

	h.sanitizeView(view)
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"profile": view})
}

// GetPublic serves another musician's profile page, cache-first.
func (h *ProfileHandler) GetPublic(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("userId"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	cacheKey := "musician:profile:" + userID.String()
	if h.redisClient != nil {
		if val, err := h.redisClient.Get(r.Context(), cacheKey).Result(); err == nil {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("X-Cache", "HIT")
			w.Write([]byte(val))
			return
		}
	}

	view, err := h.service.GetPublicProfile(r.Context(), userID)
	if err == domain.ErrUserNotFound || err == domain.ErrProfileNotFound {
		utils.WriteError(w, http.StatusNotFound, "profile not found", nil)
		return
	}
	if err != nil {
		log.Printf("[ProfileHandler.GetPublic] failed for %s: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load profile", nil)
		return
	}

	h.sanitizeView(view)
	response := map[string]interface{}{"profile": view}
	if h.redisClient != nil {
		go func() {
			jsonBytes, _ := json.Marshal(response)
			h.redisClient.Set(context.Background(), cacheKey, jsonBytes, 10*time.Minute)
		}()
	}

	w.Header().Set("X-Cache", "MISS")
	utils.WriteJSON(w, http.StatusOK, response)
}

// Search is the public musician discovery endpoint.
func (h *ProfileHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filters := domain.SearchFilters{
		Query:      q.Get("query"),
		MusicTypes: splitCSV(q.Get("musictype")),
		Instrument: splitCSV(q.Get("instrument")),
		EventTypes: splitCSV(q.Get("eventTypes")),
		SingerOnly: q.Get("singer") == "true",
		Region:     strings.TrimSpace(q.Get("region")),
		Location:   q.Get("location"),
	}

	results, err := h.service.Search(r.Context(), filters)
	if err != nil {
		log.Printf("[ProfileHandler.Search] query failed: %v", err)
		utils.WriteError(w, http.StatusInternalServerError, "search failed", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "search complete",
		"musicians": results,
	})
}

// sanitizeView swaps stored media URLs for short-lived presigned ones so the
// client reads straight from object storage. External links (youtube, pre-hosted
// media) have no recoverable key and pass through untouched.
func (h *ProfileHandler) sanitizeView(view *application.ProfileView) {
	if h.fileService == nil || view == nil || view.MusicianProfile == nil {
		return
	}
	ctx := context.Background()
	expiration := time.Hour

	presign := func(url string) string {
		if url == "" {
			return url
		}
		key, err := h.fileService.GetKeyFromUrl(url)
		if err != nil {
			return url
		}
		presigned, err := h.fileService.GetPresignedURL(ctx, key, expiration)
		if err != nil {
			return url
		}
		return presigned
	}

	view.ProfilePicture = presign(view.ProfilePicture)
	for i, url := range view.GalleryPictures {
		view.GalleryPictures[i] = presign(url)
	}
	for i, url := range view.GalleryVideos {
		view.GalleryVideos[i] = presign(url)
	}
}

func (h *ProfileHandler) invalidateProfileCache(userID uuid.UUID) {
	if h.redisClient == nil {
		return
	}
	h.redisClient.Del(context.Background(), "musician:profile:"+userID.String())
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
