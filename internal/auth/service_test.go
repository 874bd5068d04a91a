package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wakelan/wakelan/internal/model"
	"github.com/wakelan/wakelan/internal/store"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, expiry time.Duration) (*Service, *store.Mock) {
	t.Helper()
	mock := store.NewMock()
	svc, err := NewService(testSecret, expiry, mock)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, mock
}

func seedUser(t *testing.T, mock *store.Mock, username, password string, role model.Role) model.User {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	u, err := mock.CreateUser(context.Background(), username, hash, role)
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestNewService_ShortSecret(t *testing.T) {
	if _, err := NewService("too-short", time.Hour, store.NewMock()); err == nil {
		t.Fatal("expected error for short secret")
	}
}

func TestLoginAndAuthenticate(t *testing.T) {
	svc, mock := newTestService(t, time.Hour)
	seeded := seedUser(t, mock, "carlos", "hunter22", model.RoleUser)

	token, expiresAt, user, err := svc.Login(context.Background(), "carlos", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.ID != seeded.ID {
		t.Errorf("login user id = %d, want %d", user.ID, seeded.ID)
	}
	if !expiresAt.After(time.Now()) {
		t.Error("expiry should be in the future")
	}

	resolved, err := svc.Authenticate(context.Background(), "Bearer "+token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if resolved.ID != seeded.ID || resolved.Role != model.RoleUser {
		t.Errorf("resolved user = %+v, want seeded user", resolved)
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, mock := newTestService(t, time.Hour)
	seedUser(t, mock, "carlos", "hunter22", model.RoleUser)

	cases := []struct{ username, password string }{
		{"carlos", "wrong"},
		{"nobody", "hunter22"},
	}
	for _, c := range cases {
		if _, _, _, err := svc.Login(context.Background(), c.username, c.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%q, %q) = %v, want ErrInvalidCredentials", c.username, c.password, err)
		}
	}
}

func TestAuthenticate_MissingToken(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	if _, err := svc.Authenticate(context.Background(), ""); !errors.Is(err, ErrMissingToken) {
		t.Errorf("err = %v, want ErrMissingToken", err)
	}
}

func TestAuthenticate_MalformedHeader(t *testing.T) {
	svc, _ := newTestService(t, time.Hour)
	for _, header := range []string{"Bearer", "Basic abc", "Bearer ", "Bearer not.a.jwt"} {
		if _, err := svc.Authenticate(context.Background(), header); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("Authenticate(%q) = %v, want ErrMalformedToken", header, err)
		}
	}
}

func TestAuthenticate_Expired(t *testing.T) {
	svc, mock := newTestService(t, time.Hour)
	user := seedUser(t, mock, "carlos", "hunter22", model.RoleUser)

	// Sign a token whose exp is already in the past.
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			Issuer:    "wakelan",
		},
	}
	expired, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "Bearer "+expired); !errors.Is(err, ErrExpiredOrInvalid) {
		t.Errorf("err = %v, want ErrExpiredOrInvalid", err)
	}
}

func TestAuthenticate_WrongSignature(t *testing.T) {
	svc, mock := newTestService(t, time.Hour)
	user := seedUser(t, mock, "carlos", "hunter22", model.RoleUser)

	otherSvc, err := NewService("ffffffffffffffffffffffffffffffff", time.Hour, mock)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	token, _, err := otherSvc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	if _, err := svc.Authenticate(context.Background(), "Bearer "+token); !errors.Is(err, ErrExpiredOrInvalid) {
		t.Errorf("err = %v, want ErrExpiredOrInvalid", err)
	}
}

func TestAuthenticate_DeletedAccount(t *testing.T) {
	svc, mock := newTestService(t, time.Hour)
	user := seedUser(t, mock, "carlos", "hunter22", model.RoleUser)

	token, _, err := svc.IssueToken(user)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	mock.DeleteUser(user.ID)

	if _, err := svc.Authenticate(context.Background(), "Bearer "+token); !errors.Is(err, ErrUnknownIdentity) {
		t.Errorf("err = %v, want ErrUnknownIdentity", err)
	}
}

func TestAuthenticate_RoleReadFromStore(t *testing.T) {
	svc, mock := newTestService(t, time.Hour)
	admin := seedUser(t, mock, "root", "changeit99", model.RoleAdmin)

	token, _, err := svc.IssueToken(admin)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	resolved, err := svc.Authenticate(context.Background(), "Bearer "+token)
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if !resolved.IsAdmin() {
		t.Error("expected admin role on resolved user")
	}
}
