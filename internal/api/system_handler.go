package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wakelan/wakelan/internal/middleware"
	"github.com/wakelan/wakelan/internal/store"
)

// SystemHandler serves the health probe and the caller's own profile.
type SystemHandler struct {
	store  store.Store
	logger *slog.Logger
}

func NewSystemHandler(st store.Store, logger *slog.Logger) *SystemHandler {
	return &SystemHandler{store: st, logger: logger}
}

// Health handles GET /health. It is unauthenticated.
func (h *SystemHandler) Health(w http.ResponseWriter, r *http.Request) {
	SendJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Me handles GET /me: the authenticated user's profile, their effective
// permissions and how many equipos they can reach.
func (h *SystemHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		SendError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "missing_token")
		return
	}

	count, err := h.store.CountAssigned(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("Failed to count assignments", "user_id", user.ID, "error", err)
		SendError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Database error")
		return
	}

	SendJSON(w, http.StatusOK, map[string]interface{}{
		"user": user,
		"permissions": map[string]bool{
			"is_admin":           user.IsAdmin(),
			"can_create_equipos": user.IsAdmin(),
			"can_manage_users":   user.IsAdmin(),
		},
		"equipos_count": count,
	})
}
