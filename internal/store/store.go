// Package store persists users, equipos and their assignment relation.
package store

import (
	"context"
	"errors"

	"github.com/wakelan/wakelan/internal/model"
)

// Sentinel errors mapped to HTTP statuses by the API layer.
var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateMAC      = errors.New("mac address already registered")
	ErrDuplicateUsername = errors.New("username already taken")
	ErrAlreadyAssigned   = errors.New("equipo already assigned to user")
	ErrNotAssigned       = errors.New("equipo not assigned to user")
)

// Store is the persistence boundary. Implementations must make every
// multi-step mutation atomic: either all field changes and uniqueness
// checks commit, or none do.
type Store interface {
	// Users
	CreateUser(ctx context.Context, username, passwordHash string, role model.Role) (model.User, error)
	GetUser(ctx context.Context, id int) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)

	// Equipos
	CreateEquipo(ctx context.Context, eq model.Equipo) (model.Equipo, error)
	GetEquipo(ctx context.Context, id int) (model.Equipo, error)
	ListEquipos(ctx context.Context) ([]model.Equipo, error)
	ListEquiposForUser(ctx context.Context, userID int) ([]model.Equipo, error)
	UpdateEquipo(ctx context.Context, eq model.Equipo) (model.Equipo, error)
	DeleteEquipo(ctx context.Context, id int) error
	// RecordObservation saves the ip/estado seen by a status read. It is a
	// non-semantic write; callers log failures instead of surfacing them.
	RecordObservation(ctx context.Context, id int, ip string, estado model.State) error

	// Assignments
	AssignEquipo(ctx context.Context, userID, equipoID int) error
	UnassignEquipo(ctx context.Context, userID, equipoID int) error
	IsAssigned(ctx context.Context, userID, equipoID int) (bool, error)
	CountAssigned(ctx context.Context, userID int) (int, error)
}
