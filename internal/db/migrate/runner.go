// Package migrate applies the embedded SQL migrations using golang-migrate.
package migrate

import (
	"errors"
	"fmt"
	"strings"

	"tenant-admin/backend/internal/db"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// ErrNoChange is returned by Runner.Up/Down when already at the target version.
var ErrNoChange = migrate.ErrNoChange

// Direction is a migration direction accepted by Run.
type Direction string

const (
	Up   Direction = "up"
	Down Direction = "down"
)

// ParseDirection validates s as a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case Up, Down:
		return Direction(s), nil
	}
	return "", fmt.Errorf("direction must be up or down, got %q", s)
}

// Runner wraps a golang-migrate instance over the embedded migrations.
type Runner struct {
	m *migrate.Migrate
}

// NewRunner opens the embedded source and the database at dsn. Caller must call Close.
func NewRunner(dsn string) (*Runner, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	sourceDriver, err := iofs.New(db.MigrationFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("migrate source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Runner{m: m}, nil
}

// Up applies all pending migrations.
func (r *Runner) Up() error { return r.m.Up() }

// Down rolls back all migrations.
func (r *Runner) Down() error { return r.m.Down() }

// Version returns the current schema version and whether it is dirty. A database with no
// migrations applied reports version 0.
func (r *Runner) Version() (uint, bool, error) {
	v, dirty, err := r.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return v, dirty, err
}

// Close releases the source and database handles.
func (r *Runner) Close() error {
	srcErr, dbErr := r.m.Close()
	return errors.Join(srcErr, dbErr)
}

// Run applies migrations in the given direction ("up" or "down") using dsn.
// Already being at the target version is not an error.
func Run(dsn string, direction string) error {
	dir, err := ParseDirection(direction)
	if err != nil {
		return err
	}
	r, err := NewRunner(dsn)
	if err != nil {
		return err
	}
	defer func() { _ = r.Close() }()

	switch dir {
	case Up:
		err = r.Up()
	case Down:
		err = r.Down()
	}
	if err != nil && !errors.Is(err, ErrNoChange) {
		return err
	}
	return nil
}
