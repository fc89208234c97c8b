package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/beatmatch/backend/internal/gateway/middleware"
	"github.com/beatmatch/backend/internal/modules/auth/application"
	"github.com/beatmatch/backend/internal/modules/auth/domain"
	"github.com/beatmatch/backend/internal/shared/utils"
)

// AuthService defines the interface for auth operations
type AuthService interface {
	Register(ctx context.Context, req application.RegisterRequest) (*domain.User, error)
	Login(ctx context.Context, req application.LoginRequest) (string, *domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	GoogleLogin(ctx context.Context, googleClientID string, req application.GoogleLoginRequest) (string, error)
}

type AuthHandler struct {
	service        AuthService
	googleClientID string
}

func NewAuthHandler(service AuthService, googleClientID string) *AuthHandler {
	return &AuthHandler{
		service:        service,
		googleClientID: googleClientID,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req application.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	user, err := h.service.Register(r.Context(), req)
	if err != nil {
		if err == domain.ErrUserAlreadyExists {
			utils.WriteError(w, http.StatusConflict, "user already exists", nil)
			return
		}
		utils.WriteError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	utils.WriteJSON(w, http.StatusCreated, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req application.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	token, user, err := h.service.Login(r.Context(), req)
	if err != nil {
		if err == domain.ErrInvalidCredentials {
			utils.WriteError(w, http.StatusUnauthorized, "invalid email or password", nil)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "login failed", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]any{
		"message": "login successful",
		"user":    user,
		"token":   token,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userId, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "user not authenticated", nil)
		return
	}

	user, err := h.service.GetUser(r.Context(), userId)
	if err != nil {
		if err == domain.ErrUserNotFound {
			utils.WriteError(w, http.StatusNotFound, "user not found", nil)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to load user", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userId, ok := r.Context().Value(middleware.ContextKeyUserId).(uuid.UUID)
	if !ok {
		utils.WriteError(w, http.StatusUnauthorized, "user not authenticated", nil)
		return
	}

	if err := h.service.DeleteAccount(r.Context(), userId); err != nil {
		if err == domain.ErrUserNotFound {
			utils.WriteError(w, http.StatusNotFound, "user not found", nil)
			return
		}
		utils.WriteError(w, http.StatusInternalServerError, "failed to delete account", err)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"message": "account deleted"})
}

func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req application.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	token, err := h.service.GoogleLogin(r.Context(), h.googleClientID, req)
	if err != nil {
		utils.WriteError(w, http.StatusUnauthorized, err.Error(), nil)
		return
	}

	utils.WriteJSON(w, http.StatusOK, map[string]string{"token": token})
}
