// migrate runs DB migrations from embedded SQL; use with go run ./cmd/migrate.
package main

import (
	"errors"
	"fmt"

	"github.com/alecthomas/kong"

	"tenant-admin/backend/internal/db/migrate"
	"tenant-admin/backend/internal/logger"
)

var cli struct {
	DatabaseURL string `help:"Postgres connection string." env:"DATABASE_URL" required:""`
	Direction   string `help:"Migration direction." enum:"up,down" default:"up"`
	Debug       bool   `help:"Enable debug logging." env:"DEBUG"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("migrate"),
		kong.Description("Apply or roll back the embedded database migrations."),
	)
	kctx.FatalIfErrorf(run())
}

func run() error {
	log := logger.Setup(cli.Debug, "")

	dir, err := migrate.ParseDirection(cli.Direction)
	if err != nil {
		return err
	}
	r, err := migrate.NewRunner(cli.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			log.Warn().Err(err).Msg("close migration runner")
		}
	}()

	switch dir {
	case migrate.Up:
		err = r.Up()
	case migrate.Down:
		err = r.Down()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		// Already at target version; success.
		err = nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", cli.Direction, err)
	}

	version, dirty, err := r.Version()
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	log.Info().Str("direction", cli.Direction).Uint("version", version).Bool("dirty", dirty).Msg("migrations applied")
	return nil
}
