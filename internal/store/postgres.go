package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/wakelan/wakelan/internal/model"
)

// PG implements Store on PostgreSQL through a pgx connection pool.
type PG struct {
	pool *pgxpool.Pool
}

func NewPG(pool *pgxpool.Pool) *PG {
	return &PG{pool: pool}
}

const uniqueViolation = "23505"

// isUniqueViolation reports whether err is a unique-constraint violation on
// the named constraint.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == constraint
}

func (s *PG) CreateUser(ctx context.Context, username, passwordHash string, role model.Role) (model.User, error) {
	u := model.User{Username: username, PasswordHash: passwordHash, Role: role}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, role)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		username, passwordHash, role,
	).Scan(&u.ID, &u.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "users_username_key") {
			return model.User{}, ErrDuplicateUsername
		}
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *PG) GetUser(ctx context.Context, id int) (model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE id = $1`, id))
}

func (s *PG) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	return s.scanUser(s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users WHERE username = $1`, username))
}

func (s *PG) scanUser(row pgx.Row) (model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("scan user: %w", err)
	}
	return u, nil
}

func (s *PG) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, password_hash, role, created_at FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

const equipoColumns = `id, nombre, mac_address, COALESCE(descripcion, ''), COALESCE(ip_address, ''), estado, created_at`

func (s *PG) CreateEquipo(ctx context.Context, eq model.Equipo) (model.Equipo, error) {
	if eq.Estado == "" {
		eq.Estado = model.StateUnknown
	}
	err := s.pool.QueryRow(ctx,
		`INSERT INTO equipos (nombre, mac_address, descripcion, ip_address, estado)
		 VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		 RETURNING id, created_at`,
		eq.Nombre, eq.MACAddress, eq.Descripcion, eq.IPAddress, eq.Estado,
	).Scan(&eq.ID, &eq.CreatedAt)
	if err != nil {
		if isUniqueViolation(err, "equipos_mac_address_key") {
			return model.Equipo{}, ErrDuplicateMAC
		}
		return model.Equipo{}, fmt.Errorf("create equipo: %w", err)
	}
	return eq, nil
}

func (s *PG) GetEquipo(ctx context.Context, id int) (model.Equipo, error) {
	return scanEquipo(s.pool.QueryRow(ctx,
		`SELECT `+equipoColumns+` FROM equipos WHERE id = $1`, id))
}

func scanEquipo(row pgx.Row) (model.Equipo, error) {
	var eq model.Equipo
	err := row.Scan(&eq.ID, &eq.Nombre, &eq.MACAddress, &eq.Descripcion, &eq.IPAddress, &eq.Estado, &eq.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Equipo{}, ErrNotFound
	}
	if err != nil {
		return model.Equipo{}, fmt.Errorf("scan equipo: %w", err)
	}
	return eq, nil
}

func (s *PG) ListEquipos(ctx context.Context) ([]model.Equipo, error) {
	return s.queryEquipos(ctx,
		`SELECT `+equipoColumns+` FROM equipos ORDER BY id`)
}

func (s *PG) ListEquiposForUser(ctx context.Context, userID int) ([]model.Equipo, error) {
	return s.queryEquipos(ctx,
		`SELECT e.id, e.nombre, e.mac_address, COALESCE(e.descripcion, ''), COALESCE(e.ip_address, ''), e.estado, e.created_at
		 FROM equipos e
		 JOIN user_equipos ue ON ue.equipo_id = e.id
		 WHERE ue.user_id = $1
		 ORDER BY e.id`, userID)
}

func (s *PG) queryEquipos(ctx context.Context, sql string, args ...any) ([]model.Equipo, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query equipos: %w", err)
	}
	defer rows.Close()

	var equipos []model.Equipo
	for rows.Next() {
		var eq model.Equipo
		if err := rows.Scan(&eq.ID, &eq.Nombre, &eq.MACAddress, &eq.Descripcion, &eq.IPAddress, &eq.Estado, &eq.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan equipo: %w", err)
		}
		equipos = append(equipos, eq)
	}
	return equipos, rows.Err()
}

func (s *PG) UpdateEquipo(ctx context.Context, eq model.Equipo) (model.Equipo, error) {
	updated, err := scanEquipo(s.pool.QueryRow(ctx,
		`UPDATE equipos
		 SET nombre = $2, mac_address = $3, descripcion = NULLIF($4, '')
		 WHERE id = $1
		 RETURNING `+equipoColumns,
		eq.ID, eq.Nombre, eq.MACAddress, eq.Descripcion))
	if err != nil {
		if isUniqueViolation(err, "equipos_mac_address_key") {
			return model.Equipo{}, ErrDuplicateMAC
		}
		return model.Equipo{}, err
	}
	return updated, nil
}

func (s *PG) DeleteEquipo(ctx context.Context, id int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin delete equipo: %w", err)
	}
	defer tx.Rollback(ctx)

	// Assignment rows go first so no orphaned references survive even
	// without relying on the FK cascade.
	if _, err := tx.Exec(ctx, `DELETE FROM user_equipos WHERE equipo_id = $1`, id); err != nil {
		return fmt.Errorf("delete assignments: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM equipos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete equipo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return tx.Commit(ctx)
}

func (s *PG) RecordObservation(ctx context.Context, id int, ip string, estado model.State) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE equipos SET ip_address = NULLIF($2, ''), estado = $3 WHERE id = $1`,
		id, ip, estado)
	if err != nil {
		return fmt.Errorf("record observation: %w", err)
	}
	return nil
}

func (s *PG) AssignEquipo(ctx context.Context, userID, equipoID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin assign: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := existsIn(ctx, tx, `SELECT 1 FROM users WHERE id = $1`, userID); err != nil {
		return err
	}
	if err := existsIn(ctx, tx, `SELECT 1 FROM equipos WHERE id = $1`, equipoID); err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO user_equipos (user_id, equipo_id) VALUES ($1, $2)`, userID, equipoID)
	if err != nil {
		if isUniqueViolation(err, "user_equipos_pkey") {
			return ErrAlreadyAssigned
		}
		return fmt.Errorf("assign equipo: %w", err)
	}

	return tx.Commit(ctx)
}

func (s *PG) UnassignEquipo(ctx context.Context, userID, equipoID int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin unassign: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := existsIn(ctx, tx, `SELECT 1 FROM users WHERE id = $1`, userID); err != nil {
		return err
	}
	if err := existsIn(ctx, tx, `SELECT 1 FROM equipos WHERE id = $1`, equipoID); err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM user_equipos WHERE user_id = $1 AND equipo_id = $2`, userID, equipoID)
	if err != nil {
		return fmt.Errorf("unassign equipo: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotAssigned
	}

	return tx.Commit(ctx)
}

func existsIn(ctx context.Context, tx pgx.Tx, sql string, id int) error {
	var one int
	err := tx.QueryRow(ctx, sql, id).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("existence check: %w", err)
	}
	return nil
}

func (s *PG) IsAssigned(ctx context.Context, userID, equipoID int) (bool, error) {
	var assigned bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM user_equipos WHERE user_id = $1 AND equipo_id = $2)`,
		userID, equipoID,
	).Scan(&assigned)
	if err != nil {
		return false, fmt.Errorf("check assignment: %w", err)
	}
	return assigned, nil
}

func (s *PG) CountAssigned(ctx context.Context, userID int) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM user_equipos WHERE user_id = $1`, userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count assignments: %w", err)
	}
	return count, nil
}
