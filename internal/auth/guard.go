package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wakelan/wakelan/internal/model"
)

// DenyReason identifies why an authorization pipeline rejected a request.
type DenyReason string

const (
	DenyInsufficientRole DenyReason = "insufficient_role"
	DenyEquipoAccess     DenyReason = "equipo_access_denied"
	DenyMissingEquipoID  DenyReason = "missing_equipo_id"
)

// Decision is the tagged result of a guard. Err is set only when a guard
// could not be evaluated at all (store failure); that is an internal error,
// not a denial.
type Decision struct {
	Allowed bool
	Reason  DenyReason
	Err     error
}

func Allow() Decision {
	return Decision{Allowed: true}
}

func Deny(reason DenyReason) Decision {
	return Decision{Reason: reason}
}

// Guard checks one authorization rule for an already-authenticated user.
type Guard func(r *http.Request, user model.User) Decision

// Evaluate runs guards in order and returns the first denial, or Allow when
// every guard passes. Guards run before the handler executes; a denial
// means no mutation has begun.
func Evaluate(r *http.Request, user model.User, guards ...Guard) Decision {
	for _, guard := range guards {
		if d := guard(r, user); !d.Allowed {
			return d
		}
	}
	return Allow()
}

// RequireAdmin denies any non-admin caller.
func RequireAdmin() Guard {
	return func(_ *http.Request, user model.User) Decision {
		if !user.IsAdmin() {
			return Deny(DenyInsufficientRole)
		}
		return Allow()
	}
}

// AssignmentChecker is the slice of the store the access guard needs.
type AssignmentChecker interface {
	IsAssigned(ctx context.Context, userID, equipoID int) (bool, error)
}

// RequireEquipoAccess allows admins unconditionally and standard users only
// when an assignment to the target equipo exists. A request whose target
// equipo cannot be determined fails closed with DenyMissingEquipoID.
func RequireEquipoAccess(assignments AssignmentChecker) Guard {
	return func(r *http.Request, user model.User) Decision {
		equipoID, ok := ResolveEquipoID(r)
		if !ok {
			return Deny(DenyMissingEquipoID)
		}

		if user.IsAdmin() {
			return Allow()
		}

		assigned, err := assignments.IsAssigned(r.Context(), user.ID, equipoID)
		if err != nil {
			return Decision{Err: err}
		}
		if !assigned {
			return Deny(DenyEquipoAccess)
		}
		return Allow()
	}
}

// ResolveEquipoID extracts the target equipo id from the route parameter,
// the JSON body, or the form, in that lookup order.
func ResolveEquipoID(r *http.Request) (int, bool) {
	if raw := chi.URLParam(r, "id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			return id, true
		}
		return 0, false
	}

	if id, ok := equipoIDFromJSON(r); ok {
		return id, true
	}

	if raw := r.PostFormValue("equipo_id"); raw != "" {
		if id, err := strconv.Atoi(raw); err == nil && id > 0 {
			return id, true
		}
	}

	return 0, false
}

// equipoIDFromJSON peeks at a JSON request body for an equipo_id (or id)
// field, restoring the body so the handler can decode it again.
func equipoIDFromJSON(r *http.Request) (int, bool) {
	if r.Body == nil {
		return 0, false
	}
	body, err := io.ReadAll(r.Body)
	r.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return 0, false
	}

	var payload struct {
		EquipoID *int `json:"equipo_id"`
		ID       *int `json:"id"`
	}
	if json.Unmarshal(body, &payload) != nil {
		return 0, false
	}
	if payload.EquipoID != nil && *payload.EquipoID > 0 {
		return *payload.EquipoID, true
	}
	if payload.ID != nil && *payload.ID > 0 {
		return *payload.ID, true
	}
	return 0, false
}
