// Package repository persists roles. Only the seed command writes roles.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenant-admin/backend/internal/db"
	"tenant-admin/backend/internal/role/domain"
)

type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns a role repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{q: pool}
}

// GetByName returns the role with the given name, or nil if not found.
func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	err := r.q.QueryRow(ctx, `SELECT id, name, is_deleted, created_by, created_at, updated_at
		FROM roles WHERE name = $1`, name).
		Scan(&role.ID, &role.Name, &role.IsDeleted, &role.CreatedBy, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, db.MapError(err)
	}
	return &role, nil
}

// Ensure returns the role named name, creating it with createdBy when missing. An empty
// createdBy makes the new role its own creator.
func (r *PostgresRepository) Ensure(ctx context.Context, name, createdBy string) (*domain.Role, bool, error) {
	existing, err := r.GetByName(ctx, name)
	if err != nil || existing != nil {
		return existing, false, err
	}
	id := uuid.NewString()
	if createdBy == "" {
		createdBy = id
	}
	now := time.Now().UTC()
	tag, err := r.q.Exec(ctx, `INSERT INTO roles (id, name, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (name) DO NOTHING`, id, name, createdBy, now)
	if err != nil {
		return nil, false, db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		existing, err := r.GetByName(ctx, name)
		return existing, false, err
	}
	return &domain.Role{ID: id, Name: name, CreatedBy: createdBy, CreatedAt: now, UpdatedAt: now}, true, nil
}
