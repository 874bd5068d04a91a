package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wakelan/wakelan/internal/model"
)

// Mock is an in-memory Store used by handler and guard tests. It enforces
// the same uniqueness and cascade rules as the Postgres implementation.
type Mock struct {
	mu           sync.RWMutex
	users        map[int]model.User
	equipos      map[int]model.Equipo
	assignments  map[[2]int]bool // [userID, equipoID]
	nextUserID   int
	nextEquipoID int
}

func NewMock() *Mock {
	return &Mock{
		users:        make(map[int]model.User),
		equipos:      make(map[int]model.Equipo),
		assignments:  make(map[[2]int]bool),
		nextUserID:   1,
		nextEquipoID: 1,
	}
}

func (m *Mock) CreateUser(_ context.Context, username, passwordHash string, role model.Role) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return model.User{}, ErrDuplicateUsername
		}
	}
	u := model.User{
		ID:           m.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	m.users[u.ID] = u
	m.nextUserID++
	return u, nil
}

func (m *Mock) GetUser(_ context.Context, id int) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (m *Mock) GetUserByUsername(_ context.Context, username string) (model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return model.User{}, ErrNotFound
}

func (m *Mock) ListUsers(_ context.Context) ([]model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]model.User, 0, len(m.users))
	for _, u := range m.users {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// DeleteUser removes a user and their assignment rows. Only the mock needs
// this directly; it backs the UnknownIdentity test path.
func (m *Mock) DeleteUser(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, id)
	for key := range m.assignments {
		if key[0] == id {
			delete(m.assignments, key)
		}
	}
}

func (m *Mock) CreateEquipo(_ context.Context, eq model.Equipo) (model.Equipo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.equipos {
		if existing.MACAddress == eq.MACAddress {
			return model.Equipo{}, ErrDuplicateMAC
		}
	}
	eq.ID = m.nextEquipoID
	if eq.Estado == "" {
		eq.Estado = model.StateUnknown
	}
	eq.CreatedAt = time.Now()
	m.equipos[eq.ID] = eq
	m.nextEquipoID++
	return eq, nil
}

func (m *Mock) GetEquipo(_ context.Context, id int) (model.Equipo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	eq, ok := m.equipos[id]
	if !ok {
		return model.Equipo{}, ErrNotFound
	}
	return eq, nil
}

func (m *Mock) ListEquipos(_ context.Context) ([]model.Equipo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedEquipos(func(int) bool { return true }), nil
}

func (m *Mock) ListEquiposForUser(_ context.Context, userID int) ([]model.Equipo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedEquipos(func(equipoID int) bool {
		return m.assignments[[2]int{userID, equipoID}]
	}), nil
}

func (m *Mock) sortedEquipos(include func(equipoID int) bool) []model.Equipo {
	equipos := make([]model.Equipo, 0, len(m.equipos))
	for id, eq := range m.equipos {
		if include(id) {
			equipos = append(equipos, eq)
		}
	}
	sort.Slice(equipos, func(i, j int) bool { return equipos[i].ID < equipos[j].ID })
	return equipos
}

func (m *Mock) UpdateEquipo(_ context.Context, eq model.Equipo) (model.Equipo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.equipos[eq.ID]
	if !ok {
		return model.Equipo{}, ErrNotFound
	}
	for id, other := range m.equipos {
		if id != eq.ID && other.MACAddress == eq.MACAddress {
			return model.Equipo{}, ErrDuplicateMAC
		}
	}
	existing.Nombre = eq.Nombre
	existing.MACAddress = eq.MACAddress
	existing.Descripcion = eq.Descripcion
	m.equipos[eq.ID] = existing
	return existing, nil
}

func (m *Mock) DeleteEquipo(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.equipos[id]; !ok {
		return ErrNotFound
	}
	delete(m.equipos, id)
	for key := range m.assignments {
		if key[1] == id {
			delete(m.assignments, key)
		}
	}
	return nil
}

func (m *Mock) RecordObservation(_ context.Context, id int, ip string, estado model.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	eq, ok := m.equipos[id]
	if !ok {
		return ErrNotFound
	}
	eq.IPAddress = ip
	eq.Estado = estado
	m.equipos[id] = eq
	return nil
}

func (m *Mock) AssignEquipo(_ context.Context, userID, equipoID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.equipos[equipoID]; !ok {
		return ErrNotFound
	}
	key := [2]int{userID, equipoID}
	if m.assignments[key] {
		return ErrAlreadyAssigned
	}
	m.assignments[key] = true
	return nil
}

func (m *Mock) UnassignEquipo(_ context.Context, userID, equipoID int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[userID]; !ok {
		return ErrNotFound
	}
	if _, ok := m.equipos[equipoID]; !ok {
		return ErrNotFound
	}
	key := [2]int{userID, equipoID}
	if !m.assignments[key] {
		return ErrNotAssigned
	}
	delete(m.assignments, key)
	return nil
}

func (m *Mock) IsAssigned(_ context.Context, userID, equipoID int) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.assignments[[2]int{userID, equipoID}], nil
}

func (m *Mock) CountAssigned(_ context.Context, userID int) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for key := range m.assignments {
		if key[0] == userID {
			count++
		}
	}
	return count, nil
}
