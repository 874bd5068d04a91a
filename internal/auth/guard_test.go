package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/wakelan/wakelan/internal/model"
	"github.com/wakelan/wakelan/internal/store"
)

func withRouteID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestRequireAdmin(t *testing.T) {
	guard := RequireAdmin()
	r := httptest.NewRequest("POST", "/equipos", nil)

	if d := guard(r, model.User{Role: model.RoleAdmin}); !d.Allowed {
		t.Errorf("admin denied: %+v", d)
	}
	if d := guard(r, model.User{Role: model.RoleUser}); d.Allowed || d.Reason != DenyInsufficientRole {
		t.Errorf("user decision = %+v, want Deny(insufficient_role)", d)
	}
}

func TestRequireEquipoAccess_AssignmentFlipsDecision(t *testing.T) {
	mock := store.NewMock()
	ctx := context.Background()
	user, _ := mock.CreateUser(ctx, "carlos", "x", model.RoleUser)
	eq, _ := mock.CreateEquipo(ctx, model.Equipo{Nombre: "pc", MACAddress: "AA:BB:CC:DD:EE:FF"})

	guard := RequireEquipoAccess(mock)
	r := withRouteID(httptest.NewRequest("GET", "/equipos/1", nil), "1")

	if d := guard(r, user); d.Allowed || d.Reason != DenyEquipoAccess {
		t.Errorf("unassigned decision = %+v, want Deny(equipo_access_denied)", d)
	}

	if err := mock.AssignEquipo(ctx, user.ID, eq.ID); err != nil {
		t.Fatalf("AssignEquipo: %v", err)
	}

	if d := guard(r, user); !d.Allowed {
		t.Errorf("assigned decision = %+v, want Allow", d)
	}
}

func TestRequireEquipoAccess_AdminBypassesAssignment(t *testing.T) {
	mock := store.NewMock()
	guard := RequireEquipoAccess(mock)
	r := withRouteID(httptest.NewRequest("GET", "/equipos/7", nil), "7")

	if d := guard(r, model.User{ID: 1, Role: model.RoleAdmin}); !d.Allowed {
		t.Errorf("admin decision = %+v, want Allow without assignment", d)
	}
}

func TestRequireEquipoAccess_MissingIDFailsClosed(t *testing.T) {
	mock := store.NewMock()
	guard := RequireEquipoAccess(mock)
	r := httptest.NewRequest("POST", "/admin/assign-equipo", strings.NewReader(`{"user_id": 3}`))
	r.Header.Set("Content-Type", "application/json")

	// Even an admin is denied when no target can be determined.
	if d := guard(r, model.User{ID: 1, Role: model.RoleAdmin}); d.Allowed || d.Reason != DenyMissingEquipoID {
		t.Errorf("decision = %+v, want Deny(missing_equipo_id)", d)
	}
}

func TestResolveEquipoID_Order(t *testing.T) {
	t.Run("route param", func(t *testing.T) {
		r := withRouteID(httptest.NewRequest("GET", "/equipos/42", nil), "42")
		if id, ok := ResolveEquipoID(r); !ok || id != 42 {
			t.Errorf("got (%d, %v), want (42, true)", id, ok)
		}
	})

	t.Run("json body", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/admin/assign-equipo", strings.NewReader(`{"user_id": 3, "equipo_id": 9}`))
		r.Header.Set("Content-Type", "application/json")
		if id, ok := ResolveEquipoID(r); !ok || id != 9 {
			t.Errorf("got (%d, %v), want (9, true)", id, ok)
		}
	})

	t.Run("json body id field", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/wake", strings.NewReader(`{"id": 5}`))
		r.Header.Set("Content-Type", "application/json")
		if id, ok := ResolveEquipoID(r); !ok || id != 5 {
			t.Errorf("got (%d, %v), want (5, true)", id, ok)
		}
	})

	t.Run("form", func(t *testing.T) {
		form := url.Values{"equipo_id": {"11"}}
		r := httptest.NewRequest("POST", "/wake", strings.NewReader(form.Encode()))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		if id, ok := ResolveEquipoID(r); !ok || id != 11 {
			t.Errorf("got (%d, %v), want (11, true)", id, ok)
		}
	})

	t.Run("nothing", func(t *testing.T) {
		r := httptest.NewRequest("POST", "/wake", nil)
		if _, ok := ResolveEquipoID(r); ok {
			t.Error("expected no id")
		}
	})

	t.Run("non-numeric route param", func(t *testing.T) {
		r := withRouteID(httptest.NewRequest("GET", "/equipos/abc", nil), "abc")
		if _, ok := ResolveEquipoID(r); ok {
			t.Error("expected no id for non-numeric param")
		}
	})
}

func TestResolveEquipoID_BodyRestored(t *testing.T) {
	body := `{"equipo_id": 9, "user_id": 3}`
	r := httptest.NewRequest("POST", "/admin/assign-equipo", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	if _, ok := ResolveEquipoID(r); !ok {
		t.Fatal("expected id from body")
	}

	// The handler must still be able to decode the same body.
	var payload struct {
		UserID   int `json:"user_id"`
		EquipoID int `json:"equipo_id"`
	}
	if err := jsonDecode(r, &payload); err != nil {
		t.Fatalf("body not restored: %v", err)
	}
	if payload.UserID != 3 || payload.EquipoID != 9 {
		t.Errorf("payload = %+v, want user 3 / equipo 9", payload)
	}
}

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func TestEvaluate_FirstDenialWins(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	user := model.User{Role: model.RoleUser}

	denyRole := RequireAdmin()
	neverCalled := func(*http.Request, model.User) Decision {
		t.Error("guard after a denial must not run")
		return Allow()
	}

	d := Evaluate(r, user, denyRole, neverCalled)
	if d.Allowed || d.Reason != DenyInsufficientRole {
		t.Errorf("decision = %+v, want Deny(insufficient_role)", d)
	}
}
