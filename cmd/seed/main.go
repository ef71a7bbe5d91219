// seed creates the built-in roles and an admin user. Idempotent: existing roles are kept and
// the admin is skipped if a user with the same email already exists.
package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"tenant-admin/backend/internal/db"
	"tenant-admin/backend/internal/logger"
	roledomain "tenant-admin/backend/internal/role/domain"
	rolerepo "tenant-admin/backend/internal/role/repository"
	"tenant-admin/backend/internal/security"
	userdomain "tenant-admin/backend/internal/user/domain"
	userrepo "tenant-admin/backend/internal/user/repository"
)

var cli struct {
	DatabaseURL   string `help:"Postgres connection string." env:"DATABASE_URL" required:""`
	AdminEmail    string `help:"Admin login email." env:"SEED_ADMIN_EMAIL" default:"admin@example.com"`
	AdminPhone    string `help:"Admin login phone number." env:"SEED_ADMIN_PHONE" default:"0900000000"`
	AdminName     string `help:"Admin display name." env:"SEED_ADMIN_NAME" default:"Administrator"`
	AdminPassword string `help:"Admin password, at most 40 bytes (bcrypt input is password plus a 32 byte stamp)." env:"SEED_ADMIN_PASSWORD" required:""`
	BcryptCost    int    `help:"bcrypt cost for the admin password." env:"BCRYPT_COST" default:"10"`
	Debug         bool   `help:"Enable debug logging." env:"DEBUG"`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("seed"),
		kong.Description("Create the built-in roles and the admin user."),
	)
	kctx.FatalIfErrorf(run(context.Background()))
}

func run(ctx context.Context) error {
	log := logger.Setup(cli.Debug, "")
	ctx = log.WithContext(ctx)

	pool, err := db.NewPool(ctx, db.PoolConfig{ConnString: cli.DatabaseURL, MaxConns: 2})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	roles := rolerepo.NewPostgresRepository(pool)
	var admin *roledomain.Role
	for _, name := range roledomain.DefaultRoles {
		createdBy := ""
		if admin != nil {
			createdBy = admin.ID
		}
		role, created, err := roles.Ensure(ctx, name, createdBy)
		if err != nil {
			return fmt.Errorf("ensure role %s: %w", name, err)
		}
		if name == roledomain.RoleAdmin {
			admin = role
		}
		log.Info().Str("role", name).Bool("created", created).Msg("role")
	}

	users := userrepo.NewPostgresRepository(pool)
	email := strings.ToLower(strings.TrimSpace(cli.AdminEmail))
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup admin: %w", err)
	}
	if existing != nil {
		log.Info().Str("email", email).Msg("admin user already exists; skipping")
		return nil
	}

	if len(cli.AdminPassword) > security.MaxPasswordLength {
		return fmt.Errorf("admin password is %d bytes, at most %d allowed", len(cli.AdminPassword), security.MaxPasswordLength)
	}
	stamp := security.NewSecurityStamp()
	hash, err := security.NewHasher(cli.BcryptCost).Hash(cli.AdminPassword, stamp)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	id := uuid.NewString()
	user := &userdomain.User{
		ID:            id,
		RoleID:        admin.ID,
		Email:         email,
		PhoneNumber:   strings.TrimSpace(cli.AdminPhone),
		PasswordHash:  hash,
		SecurityStamp: stamp,
		Name:          cli.AdminName,
		CreatedBy:     id,
	}
	if err := users.Create(ctx, user); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	log.Info().Str("email", email).Str("user_id", id).Msg("admin user created")
	return nil
}
