// Package auth issues and verifies bearer tokens and decides what an
// authenticated user may do.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/wakelan/wakelan/internal/model"
)

// Authentication failures, ordered from "no credential at all" to "valid
// credential for a vanished account". All map to 401.
var (
	ErrMissingToken     = errors.New("missing token")
	ErrMalformedToken   = errors.New("malformed token")
	ErrExpiredOrInvalid = errors.New("expired or invalid token")
	ErrUnknownIdentity  = errors.New("token references unknown identity")
)

// ErrInvalidCredentials is returned by Login for a bad username/password
// pair. The two cases are deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserSource is the slice of the store the service needs to resolve tokens
// and credentials back to accounts.
type UserSource interface {
	GetUser(ctx context.Context, id int) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

// Claims are the JWT claims carried by an issued token. Role is recorded
// for inspection but authorization always re-reads the stored user, so a
// role edit takes effect on the next request and a deleted account fails
// authentication outright.
type Claims struct {
	UserID   int        `json:"user_id"`
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service authenticates requests and issues tokens. Tokens are stateless:
// once issued they cannot be revoked before expiry.
type Service struct {
	secret []byte
	expiry time.Duration
	users  UserSource
}

func NewService(secret string, expiry time.Duration, users UserSource) (*Service, error) {
	if len(secret) < 32 {
		return nil, errors.New("jwt secret must be at least 32 characters")
	}
	if expiry <= 0 {
		expiry = 24 * time.Hour
	}
	return &Service{
		secret: []byte(secret),
		expiry: expiry,
		users:  users,
	}, nil
}

// Login verifies a username/password pair against the stored bcrypt hash
// and issues a token for the account.
func (s *Service) Login(ctx context.Context, username, password string) (string, time.Time, model.User, error) {
	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		return "", time.Time{}, model.User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", time.Time{}, model.User{}, ErrInvalidCredentials
	}

	token, expiresAt, err := s.IssueToken(user)
	if err != nil {
		return "", time.Time{}, model.User{}, err
	}
	return token, expiresAt, user, nil
}

// IssueToken signs a token for the user with the configured expiry.
func (s *Service) IssueToken(user model.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(s.expiry)
	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "wakelan",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Authenticate resolves an Authorization header value to the stored user it
// acts as. The returned user, not the raw claims, is what downstream
// authorization works with.
func (s *Service) Authenticate(ctx context.Context, authHeader string) (model.User, error) {
	if authHeader == "" {
		return model.User{}, ErrMissingToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return model.User{}, ErrMalformedToken
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return model.User{}, ErrMalformedToken
		}
		return model.User{}, ErrExpiredOrInvalid
	}
	if !token.Valid {
		return model.User{}, ErrExpiredOrInvalid
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if err != nil {
		return model.User{}, ErrUnknownIdentity
	}
	return user, nil
}

// HashPassword wraps bcrypt with the default cost.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}
