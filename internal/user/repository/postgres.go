package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenant-admin/backend/internal/db"
	"tenant-admin/backend/internal/user/domain"
)

const userColumns = `id, role_id, email, phone_number, password_hash, security_stamp, name,
	avatar_path, address, is_deleted, created_by, updated_by, created_at, updated_at`

type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns a user repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{q: pool}
}

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 AND NOT is_deleted`, id)
}

// GetByEmail returns the user with the given email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 AND NOT is_deleted`, email)
}

// FindByEmailOrPhone returns the user whose email or phone number equals username, or nil.
func (r *PostgresRepository) FindByEmailOrPhone(ctx context.Context, username string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users
		WHERE (email = $1 OR phone_number = $1) AND NOT is_deleted
		ORDER BY created_at
		LIMIT 1`, username)
}

// Create persists the user. The user must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	_, err := r.q.Exec(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, $10, $11, $12, $13)`,
		u.ID, u.RoleID, u.Email, u.PhoneNumber, u.PasswordHash, u.SecurityStamp, u.Name,
		nullIfEmpty(u.AvatarPath), nullIfEmpty(u.Address), u.CreatedBy, nullIfEmpty(u.UpdatedBy),
		u.CreatedAt, u.UpdatedAt)
	return db.MapError(err)
}

func (r *PostgresRepository) getOne(ctx context.Context, sql string, args ...any) (*domain.User, error) {
	var u domain.User
	var avatar, address, updatedBy *string
	err := r.q.QueryRow(ctx, sql, args...).Scan(
		&u.ID, &u.RoleID, &u.Email, &u.PhoneNumber, &u.PasswordHash, &u.SecurityStamp, &u.Name,
		&avatar, &address, &u.IsDeleted, &u.CreatedBy, &updatedBy, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, db.MapError(err)
	}
	u.AvatarPath = deref(avatar)
	u.Address = deref(address)
	u.UpdatedBy = deref(updatedBy)
	return &u, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
