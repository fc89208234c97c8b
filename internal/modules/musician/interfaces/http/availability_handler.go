package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/beatmatch/backend/internal/gateway/middleware"
	"github.com/beatmatch/backend/internal/modules/musician/domain"
	"github.com/beatmatch/backend/internal/shared/utils"
)

// AvailabilityHandler manages the calendar windows under the caller's profile.
type AvailabilityHandler struct {
	service ProfileService
}

func NewAvailabilityHandler(service ProfileService) *AvailabilityHandler {
	return &AvailabilityHandler{service: service}
}

func (h *AvailabilityHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var availability domain.Availability
	if err := json.NewDecoder(r.Body).Decode(&availability); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	created, err := h.service.AddAvailability(r.Context(), userID, &availability)
	if err == domain.ErrProfileNotFound {
		utils.WriteError(w, http.StatusNotFound, "profile not found", nil)
		return
	}
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "failed to add availability", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message":      "availability added",
		"availability": created,
	})
}

func (h *AvailabilityHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	availability, err := h.service.ListAvailability(r.Context(), userID)
	if err == domain.ErrProfileNotFound {
		utils.WriteError(w, http.StatusNotFound, "profile not found", nil)
		return
	}
	if err != nil {
		log.Printf("[AvailabilityHandler.List] failed for %s: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load availability", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"availability": availability})
}

func (h *AvailabilityHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	availabilityID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid availability id", nil)
		return
	}

	var patch domain.AvailabilityPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	updated, err := h.service.UpdateAvailability(r.Context(), userID, availabilityID, patch)
	switch err {
	case nil:
	case domain.ErrProfileNotFound, domain.ErrAvailabilityNotFound:
		utils.WriteError(w, http.StatusNotFound, "availability not found", nil)
		return
	default:
		utils.WriteError(w, http.StatusBadRequest, "failed to update availability", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message":      "availability updated",
		"availability": updated,
	})
}

func (h *AvailabilityHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	availabilityID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid availability id", nil)
		return
	}

	err = h.service.DeleteAvailability(r.Context(), userID, availabilityID)
	switch err {
	case nil:
	case domain.ErrProfileNotFound, domain.ErrAvailabilityNotFound:
		utils.WriteError(w, http.StatusNotFound, "availability not found", nil)
		return
	default:
		log.Printf("[AvailabilityHandler.Delete] failed for %s: %v", userID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to delete availability", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "availability deleted"})
}
