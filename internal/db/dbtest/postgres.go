//go:build integration

// Package dbtest starts a throwaway Postgres for integration tests.
package dbtest

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"tenant-admin/backend/internal/db"
	"tenant-admin/backend/internal/db/migrate"
)

// StartPostgres runs a postgres container, applies the embedded migrations and returns a pool.
// The container and pool are released when the test ends.
func StartPostgres(t *testing.T, ctx context.Context) *pgxpool.Pool {
	t.Helper()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:18-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "testdb",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	connString := fmt.Sprintf("postgres://test:test@%s:%s/testdb?sslmode=disable", host, port.Port())
	require.NoError(t, migrate.Run(connString, "up"))

	pool, err := db.NewPool(ctx, db.PoolConfig{ConnString: connString, MaxConns: 10})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return pool
}

// InsertUser creates a role (if needed) and a user row with the given id, email and password hash.
func InsertUser(t *testing.T, ctx context.Context, pool *pgxpool.Pool, id, email, phone, hash, stamp string) {
	t.Helper()
	_, err := pool.Exec(ctx, `INSERT INTO roles (id, name, created_by) VALUES ('role-user', 'User', 'role-user')
		ON CONFLICT (name) DO NOTHING`)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO users (id, role_id, email, phone_number, password_hash, security_stamp, name, created_by)
		VALUES ($1, 'role-user', $2, $3, $4, $5, $6, $1)`, id, email, phone, hash, stamp, "Test User")
	require.NoError(t, err)
}
