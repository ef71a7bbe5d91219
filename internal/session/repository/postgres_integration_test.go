//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"

	"tenant-admin/backend/internal/db/dbtest"
	"tenant-admin/backend/internal/session/domain"
)

func newSession(t *testing.T, userID, deviceID, nonce string) *domain.Session {
	t.Helper()
	now := time.Now().UTC()
	id, err := NewID(now)
	require.NoError(t, err)
	return &domain.Session{
		ID:                     id,
		UserID:                 userID,
		DeviceID:               deviceID,
		AuthType:               domain.AuthTypeEmail,
		AuthID:                 "a@b.com",
		EncryptedAccessToken:   "enc-access-" + nonce,
		EncryptedRefreshToken:  "enc-refresh-" + nonce,
		JWTID:                  nonce,
		AccessTokenExpiration:  now.Add(15 * time.Minute),
		RefreshTokenExpiration: now.Add(7 * 24 * time.Hour),
		DeviceType:             domain.DeviceTypeDesktop,
		Platform:               domain.PlatformLinux,
		CreatedBy:              userID,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
}

func setup(t *testing.T, ctx context.Context) (*PostgresRepository, *pgxpool.Pool) {
	pool := dbtest.StartPostgres(t, ctx)
	dbtest.InsertUser(t, ctx, pool, "user-1", "a@b.com", "0900000001", "hash", "stamp")
	return NewPostgresRepository(pool), pool
}

func create(t *testing.T, ctx context.Context, repo *PostgresRepository, s *domain.Session) error {
	t.Helper()
	return repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		return tx.Create(ctx, s)
	})
}

func TestIntegration_SessionRepository(t *testing.T) {
	ctx := context.Background()
	repo, _ := setup(t, ctx)

	first := newSession(t, "user-1", "dev-1", "nonce-1")
	require.NoError(t, create(t, ctx, repo, first))

	t.Run("second live row for the same device conflicts", func(t *testing.T) {
		err := create(t, ctx, repo, newSession(t, "user-1", "dev-1", "nonce-x"))
		require.ErrorIs(t, err, ErrSessionConflict)
	})

	t.Run("find and get by nonce", func(t *testing.T) {
		err := repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			got, err := tx.FindActiveByUserAndDevice(ctx, "user-1", "dev-1")
			require.NoError(t, err)
			require.NotNil(t, got)
			require.Equal(t, first.ID, got.ID)
			require.Equal(t, domain.PlatformLinux, got.Platform)
			return nil
		})
		require.NoError(t, err)

		got, err := repo.GetActiveByNonce(ctx, "dev-1", "nonce-1")
		require.NoError(t, err)
		require.NotNil(t, got)

		missing, err := repo.GetActiveByNonce(ctx, "dev-1", "other")
		require.NoError(t, err)
		require.Nil(t, missing)
	})

	t.Run("update overwrites in place", func(t *testing.T) {
		err := repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			cur, err := tx.FindActiveByUserAndDevice(ctx, "user-1", "dev-1")
			require.NoError(t, err)
			cur.JWTID = "nonce-2"
			cur.DeviceName = "workstation"
			cur.UpdatedBy = "user-1"
			return tx.Update(ctx, cur)
		})
		require.NoError(t, err)

		got, err := repo.GetActiveByNonce(ctx, "dev-1", "nonce-2")
		require.NoError(t, err)
		require.NotNil(t, got)
		require.Equal(t, first.ID, got.ID)
		require.Equal(t, "workstation", got.DeviceName)
	})

	t.Run("revoke then write again reports not found", func(t *testing.T) {
		err := repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			return tx.Revoke(ctx, first.ID, "user-1", true, time.Now().UTC())
		})
		require.NoError(t, err)

		err = repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			return tx.Revoke(ctx, first.ID, "user-1", true, time.Now().UTC())
		})
		require.ErrorIs(t, err, ErrSessionNotFound)

		err = repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			return tx.Update(ctx, first)
		})
		require.ErrorIs(t, err, ErrSessionNotFound)

		sessions, err := repo.ListActiveByUser(ctx, "user-1")
		require.NoError(t, err)
		require.Empty(t, sessions)
	})

	t.Run("new row allowed after revoke", func(t *testing.T) {
		require.NoError(t, create(t, ctx, repo, newSession(t, "user-1", "dev-1", "nonce-3")))
		require.NoError(t, create(t, ctx, repo, newSession(t, "user-1", "dev-2", "nonce-4")))

		sessions, err := repo.ListActiveByUser(ctx, "user-1")
		require.NoError(t, err)
		require.Len(t, sessions, 2)

		err = repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			got, err := tx.ListActiveByDevice(ctx, "dev-2")
			require.NoError(t, err)
			require.Len(t, got, 1)
			require.Equal(t, "nonce-4", got[0].JWTID)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestIntegration_ListActiveByDeviceAcrossUsers(t *testing.T) {
	ctx := context.Background()
	repo, pool := setup(t, ctx)
	dbtest.InsertUser(t, ctx, pool, "user-2", "c@d.com", "0900000002", "hash", "stamp")

	require.NoError(t, create(t, ctx, repo, newSession(t, "user-1", "shared", "nonce-1")))
	require.NoError(t, create(t, ctx, repo, newSession(t, "user-2", "shared", "nonce-2")))
	require.NoError(t, create(t, ctx, repo, newSession(t, "user-2", "other", "nonce-3")))

	revokedAt := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	err := repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
		live, err := tx.ListActiveByDevice(ctx, "shared")
		if err != nil {
			return err
		}
		require.Len(t, live, 2)
		for _, s := range live {
			if err := tx.Revoke(ctx, s.ID, s.UserID, true, revokedAt); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	var left int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM sessions WHERE device_id = 'shared' AND NOT is_revoked`).Scan(&left))
	require.Zero(t, left)

	var stamped int
	require.NoError(t, pool.QueryRow(ctx,
		`SELECT count(*) FROM sessions WHERE device_id = 'shared' AND updated_at = $1`, revokedAt).Scan(&stamped))
	require.Equal(t, 2, stamped)

	others, err := repo.ListActiveByUser(ctx, "user-2")
	require.NoError(t, err)
	require.Len(t, others, 1)
	require.Equal(t, "other", others[0].DeviceID)
}

func TestIntegration_RowLockSerializesWriters(t *testing.T) {
	ctx := context.Background()
	repo, _ := setup(t, ctx)
	s := newSession(t, "user-1", "dev-1", "nonce-1")
	require.NoError(t, create(t, ctx, repo, s))

	locked := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			cur, err := tx.FindActiveByUserAndDevice(ctx, "user-1", "dev-1")
			if err != nil {
				return err
			}
			close(locked)
			<-release
			return tx.Revoke(ctx, cur.ID, "user-1", false, time.Now().UTC())
		})
	}()
	<-locked

	second := make(chan *domain.Session, 1)
	go func() {
		_ = repo.WithTx(ctx, func(ctx context.Context, tx Tx) error {
			cur, err := tx.FindActiveByUserAndDevice(ctx, "user-1", "dev-1")
			second <- cur
			return err
		})
	}()

	select {
	case <-second:
		t.Fatal("second reader should block on the row lock")
	case <-time.After(200 * time.Millisecond):
	}
	close(release)
	require.NoError(t, <-done)
	require.Nil(t, <-second, "row revoked by the first writer must not be returned")
}
