package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tenant-admin/backend/internal/db"
	"tenant-admin/backend/internal/session/domain"
)

const sessionColumns = `id, user_id, device_id, auth_type, auth_id,
	encrypted_access_token, encrypted_refresh_token, jwt_id, is_revoked,
	access_token_expiration, refresh_token_expiration,
	device_type, platform, device_name, is_deleted,
	created_by, updated_by, created_at, updated_at`

const liveClause = `NOT is_revoked AND NOT is_deleted`

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository returns a session repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// WithTx runs fn in a read-committed transaction. Row locks taken by the Tx find methods make
// a second writer wait and then re-check the live predicate against the committed row.
func (r *PostgresRepository) WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(ctx, &postgresTx{q: tx})
	})
}

// ListActiveByUser returns live sessions for userID, oldest first.
func (r *PostgresRepository) ListActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error) {
	return getMany(ctx, r.pool, `SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = $1 AND `+liveClause+`
		ORDER BY created_at, id`, userID)
}

// GetActiveByNonce returns the live session for (deviceID, nonce), or nil if not found.
func (r *PostgresRepository) GetActiveByNonce(ctx context.Context, deviceID, nonce string) (*domain.Session, error) {
	return getOne(ctx, r.pool, `SELECT `+sessionColumns+` FROM sessions
		WHERE device_id = $1 AND jwt_id = $2 AND `+liveClause, deviceID, nonce)
}

type postgresTx struct {
	q db.Querier
}

func (t *postgresTx) FindActiveByUserAndDevice(ctx context.Context, userID, deviceID string) (*domain.Session, error) {
	return getOne(ctx, t.q, `SELECT `+sessionColumns+` FROM sessions
		WHERE user_id = $1 AND device_id = $2 AND `+liveClause+`
		FOR UPDATE`, userID, deviceID)
}

func (t *postgresTx) ListActiveByDevice(ctx context.Context, deviceID string) ([]*domain.Session, error) {
	return getMany(ctx, t.q, `SELECT `+sessionColumns+` FROM sessions
		WHERE device_id = $1 AND `+liveClause+`
		ORDER BY created_at, id
		FOR UPDATE`, deviceID)
}

func (t *postgresTx) Create(ctx context.Context, s *domain.Session) error {
	if s.ID == "" {
		return errors.New("session id is required")
	}
	if s.CreatedAt.IsZero() || s.UpdatedAt.IsZero() {
		return errors.New("session timestamps are required")
	}
	_, err := t.q.Exec(ctx, `INSERT INTO sessions (`+sessionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		s.ID, s.UserID, s.DeviceID, s.AuthType, s.AuthID,
		s.EncryptedAccessToken, s.EncryptedRefreshToken, s.JWTID, s.IsRevoked,
		s.AccessTokenExpiration, s.RefreshTokenExpiration,
		string(s.DeviceType), string(s.Platform), nullIfEmpty(s.DeviceName), s.IsDeleted,
		s.CreatedBy, nullIfEmpty(s.UpdatedBy), s.CreatedAt, s.UpdatedAt,
	)
	if err = db.MapError(err); errors.Is(err, db.ErrConflict) {
		return fmt.Errorf("%w: %w", ErrSessionConflict, err)
	}
	return err
}

func (t *postgresTx) Update(ctx context.Context, s *domain.Session) error {
	if s.UpdatedAt.IsZero() {
		return errors.New("session updated_at is required")
	}
	tag, err := t.q.Exec(ctx, `UPDATE sessions SET
			encrypted_access_token = $2,
			encrypted_refresh_token = $3,
			jwt_id = $4,
			access_token_expiration = $5,
			refresh_token_expiration = $6,
			device_type = $7,
			platform = $8,
			device_name = $9,
			updated_by = $10,
			updated_at = $11
		WHERE id = $1 AND `+liveClause,
		s.ID, s.EncryptedAccessToken, s.EncryptedRefreshToken, s.JWTID,
		s.AccessTokenExpiration, s.RefreshTokenExpiration,
		string(s.DeviceType), string(s.Platform), nullIfEmpty(s.DeviceName),
		nullIfEmpty(s.UpdatedBy), s.UpdatedAt,
	)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (t *postgresTx) Revoke(ctx context.Context, id, updatedBy string, softDelete bool, at time.Time) error {
	tag, err := t.q.Exec(ctx, `UPDATE sessions SET
			is_revoked = true,
			is_deleted = is_deleted OR $3,
			updated_by = $2,
			updated_at = $4
		WHERE id = $1 AND `+liveClause, id, nullIfEmpty(updatedBy), softDelete, at)
	if err != nil {
		return db.MapError(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func getMany(ctx context.Context, q db.Querier, sql string, args ...any) ([]*domain.Session, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	var out []*domain.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, db.MapError(err)
	}
	return out, nil
}

func getOne(ctx context.Context, q db.Querier, sql string, args ...any) (*domain.Session, error) {
	s, err := scanSession(q.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

func scanSession(row pgx.Row) (*domain.Session, error) {
	var (
		s                    domain.Session
		deviceType, platform string
		deviceName, updated  *string
	)
	err := row.Scan(
		&s.ID, &s.UserID, &s.DeviceID, &s.AuthType, &s.AuthID,
		&s.EncryptedAccessToken, &s.EncryptedRefreshToken, &s.JWTID, &s.IsRevoked,
		&s.AccessTokenExpiration, &s.RefreshTokenExpiration,
		&deviceType, &platform, &deviceName, &s.IsDeleted,
		&s.CreatedBy, &updated, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, db.MapError(err)
	}
	s.DeviceType = domain.DeviceType(deviceType)
	s.Platform = domain.Platform(platform)
	if deviceName != nil {
		s.DeviceName = *deviceName
	}
	if updated != nil {
		s.UpdatedBy = *updated
	}
	return &s, nil
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
