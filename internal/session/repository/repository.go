package repository

import (
	"context"
	"errors"
	"time"

	"tenant-admin/backend/internal/session/domain"
)

var (
	// ErrSessionNotFound is returned by Update and Revoke when the row is no longer live.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionConflict is returned by Create when a live session already exists for the
	// same user and device.
	ErrSessionConflict = errors.New("live session already exists for device")
)

// Repository defines persistence for sessions. Writes happen inside WithTx.
type Repository interface {
	// WithTx runs fn in one transaction, committing when fn returns nil.
	WithTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// ListActiveByUser returns the user's live sessions ordered by creation time.
	ListActiveByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	// GetActiveByNonce returns the live session for deviceID whose JWTID is nonce, or nil.
	GetActiveByNonce(ctx context.Context, deviceID, nonce string) (*domain.Session, error)
}

// Tx is the unit of work handed to Repository.WithTx. Find and list methods lock the returned
// rows until the transaction ends. Timestamps are supplied by the caller.
type Tx interface {
	// FindActiveByUserAndDevice returns the live row for (userID, deviceID), or nil.
	FindActiveByUserAndDevice(ctx context.Context, userID, deviceID string) (*domain.Session, error)
	// ListActiveByDevice returns every live row on deviceID, one per user, oldest first.
	ListActiveByDevice(ctx context.Context, deviceID string) ([]*domain.Session, error)
	// Create inserts s; the ID, CreatedAt and UpdatedAt must be set.
	Create(ctx context.Context, s *domain.Session) error
	// Update overwrites tokens, nonce, expirations, device metadata and UpdatedAt of the live row s.ID.
	Update(ctx context.Context, s *domain.Session) error
	// Revoke marks the live row id revoked at the given time, and deleted when softDelete is set.
	Revoke(ctx context.Context, id, updatedBy string, softDelete bool, at time.Time) error
}
