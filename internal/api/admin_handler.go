package api

import (
	"log/slog"
	"net/http"

	"github.com/wakelan/wakelan/internal/auth"
	"github.com/wakelan/wakelan/internal/model"
	"github.com/wakelan/wakelan/internal/store"
)

// AdminHandler serves user administration and the assignment relation. Every
// route behind it requires the admin role.
type AdminHandler struct {
	store  store.Store
	logger *slog.Logger
}

func NewAdminHandler(st store.Store, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{store: st, logger: logger}
}

// ListUsers handles GET /admin/users. Password hashes never serialize.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if HandleStoreError(w, r, err, "User") {
		return
	}

	SendJSON(w, http.StatusOK, map[string]interface{}{
		"users": users,
		"total": len(users),
	})
}

type CreateUserRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
	Role     string `json:"role" validate:"omitempty,oneof=admin user"`
}

// CreateUser handles POST /admin/users. The password is always stored as a
// bcrypt hash regardless of who creates the account.
func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[CreateUserRequest](w, r)
	if !ok {
		return
	}
	if !ValidatePayload(w, r, req) {
		return
	}

	role := model.Role(req.Role)
	if role == "" {
		role = model.RoleUser
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("Password hashing failed", "error", err)
		SendError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "User creation failed")
		return
	}

	user, err := h.store.CreateUser(r.Context(), req.Username, hash, role)
	if HandleStoreError(w, r, err, "User") {
		return
	}

	h.logger.Info("User created by admin", "username", user.Username, "role", user.Role)

	SendJSON(w, http.StatusCreated, map[string]interface{}{
		"user": user,
	})
}

type AssignmentRequest struct {
	UserID   int `json:"user_id" validate:"required,gt=0"`
	EquipoID int `json:"equipo_id" validate:"required,gt=0"`
}

// Assign handles POST /admin/assign-equipo. Assigning an already-assigned
// pair is a conflict, not a silent no-op.
func (h *AdminHandler) Assign(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[AssignmentRequest](w, r)
	if !ok {
		return
	}
	if !ValidatePayload(w, r, req) {
		return
	}

	if err := h.store.AssignEquipo(r.Context(), req.UserID, req.EquipoID); HandleStoreError(w, r, err, "Assignment") {
		return
	}

	h.logger.Info("Equipo assigned", "user_id", req.UserID, "equipo_id", req.EquipoID)

	SendJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Equipo assigned successfully",
		"user_id":   req.UserID,
		"equipo_id": req.EquipoID,
	})
}

// Unassign handles POST /admin/unassign-equipo.
func (h *AdminHandler) Unassign(w http.ResponseWriter, r *http.Request) {
	req, ok := DecodeJSON[AssignmentRequest](w, r)
	if !ok {
		return
	}
	if !ValidatePayload(w, r, req) {
		return
	}

	if err := h.store.UnassignEquipo(r.Context(), req.UserID, req.EquipoID); HandleStoreError(w, r, err, "Assignment") {
		return
	}

	h.logger.Info("Equipo unassigned", "user_id", req.UserID, "equipo_id", req.EquipoID)

	SendJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Equipo unassigned successfully",
		"user_id":   req.UserID,
		"equipo_id": req.EquipoID,
	})
}
