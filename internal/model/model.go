// Package model defines the entities shared by the store, the API layer and
// the network probing code.
package model

import "time"

// Role determines what a user may do. Admins manage equipos and users and
// can act on every equipo; standard users are limited to equipos explicitly
// assigned to them.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

// State is the last-observed power state of an equipo.
type State string

const (
	StateUnknown State = "unknown"
	StateOnline  State = "online"
	StateOffline State = "offline"
)

// IPUnavailable is reported as the ip_address of an equipo whose MAC has no
// entry in the ARP cache.
const IPUnavailable = "unavailable"

// User is one account. PasswordHash is a bcrypt hash and never leaves the
// server.
type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Equipo is one managed machine. MACAddress is stored in canonical form
// (uppercase, colon-grouped). IPAddress and Estado are the last observation
// recorded by a status read and carry no freshness guarantee.
type Equipo struct {
	ID          int       `json:"id"`
	Nombre      string    `json:"nombre"`
	MACAddress  string    `json:"mac_address"`
	Descripcion string    `json:"descripcion,omitempty"`
	IPAddress   string    `json:"ip_address,omitempty"`
	Estado      State     `json:"estado"`
	CreatedAt   time.Time `json:"created_at"`
}

// EquipoStatus is the live-enriched view of an equipo returned by list and
// status reads. IPAddress is IPUnavailable when the MAC has no ARP entry.
type EquipoStatus struct {
	ID          int    `json:"id"`
	Nombre      string `json:"nombre"`
	MACAddress  string `json:"mac_address"`
	Descripcion string `json:"descripcion,omitempty"`
	IPAddress   string `json:"ip_address"`
	Estado      State  `json:"estado"`
}

// Status returns the equipo's status view without any live observation,
// i.e. with the state unknown and the ip unavailable.
func (e Equipo) Status() EquipoStatus {
	return EquipoStatus{
		ID:          e.ID,
		Nombre:      e.Nombre,
		MACAddress:  e.MACAddress,
		Descripcion: e.Descripcion,
		IPAddress:   IPUnavailable,
		Estado:      StateUnknown,
	}
}
