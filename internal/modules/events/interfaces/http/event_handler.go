package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/beatmatch/backend/internal/gateway/middleware"
	"github.com/beatmatch/backend/internal/modules/events/domain"
	"github.com/beatmatch/backend/internal/shared/utils"
)

// EventService is what the handler needs from the application layer.
type EventService interface {
	Create(ctx context.Context, event *domain.Event, creatorID uuid.UUID) error
	ListOpen(ctx context.Context, callerID uuid.UUID) ([]domain.EventWithCreator, error)
	CountOpen(ctx context.Context, callerID *uuid.UUID) int
	ListMine(ctx context.Context, callerID uuid.UUID) ([]domain.Event, error)
	Close(ctx context.Context, eventID, callerID uuid.UUID) (*domain.Event, error)
	Update(ctx context.Context, eventID uuid.UUID, patch domain.EventPatch, callerID uuid.UUID, callerRole string) (*domain.Event, error)
	Delete(ctx context.Context, eventID, callerID uuid.UUID, callerRole string) error
}

type EventHandler struct {
	service EventService
}

func NewEventHandler(service EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	var event domain.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.service.Create(r.Context(), &event, callerID); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "failed to create event", err)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, map[string]interface{}{
		"message": "event created",
		"event":   event,
	})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	events, err := h.service.ListOpen(r.Context(), callerID)
	if err == domain.ErrPaymentRequired {
		utils.WriteJSON(w, http.StatusForbidden, map[string]interface{}{
			"error":        "active musician profile required",
			"needsPayment": true,
		})
		return
	}
	if err != nil {
		log.Printf("[EventHandler.List] failed for %s: %v", callerID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load events", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

// Count always answers 200. An unauthenticated or unpaid caller simply sees
// zero, because dashboards cannot do anything useful with an error.
func (h *EventHandler) Count(w http.ResponseWriter, r *http.Request) {
	var callerID *uuid.UUID
	if id, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID); ok {
		callerID = &id
	}

	count := h.service.CountOpen(r.Context(), callerID)
	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"count": count})
}

func (h *EventHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}

	events, err := h.service.ListMine(r.Context(), callerID)
	if err != nil {
		log.Printf("[EventHandler.ListMine] failed for %s: %v", callerID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to load events", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"events": events})
}

func (h *EventHandler) Close(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid event id", nil)
		return
	}

	event, err := h.service.Close(r.Context(), eventID, callerID)
	switch err {
	case nil:
	case domain.ErrMusicianOnly:
		utils.WriteError(w, http.StatusForbidden, "only musicians may close events", nil)
		return
	case domain.ErrEventClosed:
		utils.WriteError(w, http.StatusConflict, "event is already closed", nil)
		return
	case domain.ErrEventNotFound:
		utils.WriteError(w, http.StatusNotFound, "event not found", nil)
		return
	default:
		log.Printf("[EventHandler.Close] failed for %s: %v", eventID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to close event", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "event closed",
		"event":   event,
	})
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	callerRole, _ := r.Context().Value(middleware.ContextKeyRole).(string)
	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid event id", nil)
		return
	}

	var patch domain.EventPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	event, err := h.service.Update(r.Context(), eventID, patch, callerID, callerRole)
	switch err {
	case nil:
	case domain.ErrNotAllowed:
		utils.WriteError(w, http.StatusForbidden, "not allowed", nil)
		return
	case domain.ErrEventNotFound:
		utils.WriteError(w, http.StatusNotFound, "event not found", nil)
		return
	default:
		utils.WriteError(w, http.StatusBadRequest, "failed to update event", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"message": "event updated",
		"event":   event,
	})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	callerID, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	callerRole, _ := r.Context().Value(middleware.ContextKeyRole).(string)
	eventID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid event id", nil)
		return
	}

	err = h.service.Delete(r.Context(), eventID, callerID, callerRole)
	switch err {
	case nil:
	case domain.ErrNotAllowed:
		utils.WriteError(w, http.StatusForbidden, "not allowed", nil)
		return
	case domain.ErrEventNotFound:
		utils.WriteError(w, http.StatusNotFound, "event not found", nil)
		return
	default:
		log.Printf("[EventHandler.Delete] failed for %s: %v", eventID, err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to delete event", nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]interface{}{"message": "event deleted"})
}
