package api

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/wakelan/wakelan/internal/auth"
	"github.com/wakelan/wakelan/internal/model"
	"github.com/wakelan/wakelan/internal/store"
)

// AuthHandler serves login and self-registration.
type AuthHandler struct {
	auth   *auth.Service
	store  store.Store
	logger *slog.Logger
}

func NewAuthHandler(authService *auth.Service, st store.Store, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{auth: authService, store: st, logger: logger}
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      model.User `json:"user"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[LoginRequest](w, r)
	if !ok {
		return
	}
	if !ValidatePayload(w, r, req) {
		return
	}

	token, expiresAt, user, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			SendError(w, r, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid username or password")
			return
		}
		h.logger.Error("Login failed", "username", req.Username, "error", err)
		SendError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	h.logger.Info("User logged in", "username", user.Username, "role", user.Role)

	SendJSON(w, http.StatusOK, LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	})
}

type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// Register handles POST /auth/register. Self-registered accounts always get
// the standard role; only an admin can promote them afterwards.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[RegisterRequest](w, r)
	if !ok {
		return
	}
	if !ValidatePayload(w, r, req) {
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Password hashing failed", "error", err)
		SendError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Registration failed")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, hash, model.RoleUser)
	if HandleStoreError(w, r, err, "User") {
		return
	}

	h.logger.Info("User registered", "username", user.Username)

	SendJSON(w, http.StatusCreated, map[string]interface{}{
		"user": user,
	})
}
