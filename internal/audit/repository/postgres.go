package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"tenant-admin/backend/internal/audit/domain"
	"tenant-admin/backend/internal/db"
)

type PostgresRepository struct {
	q db.Querier
}

// NewPostgresRepository returns an audit log repository backed by the given pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{q: pool}
}

// Create persists the audit log. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	_, err := r.q.Exec(ctx, `INSERT INTO audit_logs (id, user_id, action, resource, ip, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, nullIfEmpty(a.UserID), a.Action, a.Resource, a.IP, nullIfEmpty(a.Metadata), a.CreatedAt)
	return db.MapError(err)
}

// ListByUser returns the newest audit logs for userID, at most limit rows.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int32) ([]*domain.AuditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.q.Query(ctx, `SELECT id, user_id, action, resource, ip, metadata, created_at
		FROM audit_logs WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, db.MapError(err)
	}
	defer rows.Close()

	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var uid, meta *string
		if err := rows.Scan(&a.ID, &uid, &a.Action, &a.Resource, &a.IP, &meta, &a.CreatedAt); err != nil {
			return nil, db.MapError(err)
		}
		if uid != nil {
			a.UserID = *uid
		}
		if meta != nil {
			a.Metadata = *meta
		}
		out = append(out, &a)
	}
	return out, db.MapError(rows.Err())
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
