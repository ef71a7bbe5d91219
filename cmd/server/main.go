// server runs the auth gRPC server. Configuration comes from the environment and an optional .env file.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"tenant-admin/backend/internal/audit"
	auditrepo "tenant-admin/backend/internal/audit/repository"
	"tenant-admin/backend/internal/config"
	"tenant-admin/backend/internal/db"
	"tenant-admin/backend/internal/health"
	"tenant-admin/backend/internal/identity/service"
	"tenant-admin/backend/internal/logger"
	"tenant-admin/backend/internal/security"
	"tenant-admin/backend/internal/server"
	"tenant-admin/backend/internal/server/interceptors"
	sessionrepo "tenant-admin/backend/internal/session/repository"
	"tenant-admin/backend/internal/telemetry"
	otelsetup "tenant-admin/backend/internal/telemetry/otel"
	userrepo "tenant-admin/backend/internal/user/repository"
)

const healthInterval = 10 * time.Second

var (
	version = "dev"
	cli     struct {
		Debug   bool             `help:"Enable debug logging." env:"DEBUG"`
		Version kong.VersionFlag `help:"Print version and exit."`
	}
)

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("server"),
		kong.Description("Auth and session gRPC server."),
		kong.Vars{"version": version},
	)
	kctx.FatalIfErrorf(run(context.Background()))
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log := logger.Setup(cli.Debug || cfg.IsDevelopment(), cfg.LogLevel)
	ctx = log.WithContext(ctx)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, cfg.ServiceName, cfg.OTLPInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer shutdownProviders(log, providers)

	tokens, err := security.NewTokenProvider(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	if err != nil {
		log.Fatal().Err(err).Msg("token provider")
	}
	encryptor, err := security.NewTokenEncryptor(cfg.EncryptionKey)
	if err != nil {
		log.Fatal().Err(err).Msg("token encryptor")
	}

	pool, err := db.NewPool(ctx, db.PoolConfig{ConnString: cfg.DatabaseURL, MaxConns: cfg.DBMaxConns})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	emitter := otelsetup.NewEventEmitter(providers.LoggerProvider)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(pool), interceptors.ClientIP, log)
	authSvc := service.NewAuthService(
		userrepo.NewPostgresRepository(pool),
		sessionrepo.NewPostgresRepository(pool),
		security.NewHasher(cfg.BcryptCost),
		tokens,
		encryptor,
		service.WithAuditLogger(auditLogger),
		service.WithEventEmitter(emitter),
		service.WithMetrics(telemetry.GetMetrics()),
	)

	checker := health.NewChecker(pool)
	go checker.Run(ctx, healthInterval)

	srv := server.NewServer(server.Deps{
		Auth:    authSvc,
		Logger:  log,
		Emitter: emitter,
		Health:  checker,
	})

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.GRPCAddr).Str("version", version).Msg("gRPC server listening")
		serveErr <- srv.Serve(lis)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down gRPC server")
	checker.Shutdown()
	srv.GracefulStop()
	// Let async audit telemetry emits finish before the providers flush.
	time.Sleep(telemetry.ShutdownDrainDuration)
	log.Info().Msg("gRPC server stopped")
	return nil
}

func shutdownProviders(log zerolog.Logger, providers *otelsetup.Providers) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := providers.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("telemetry shutdown")
	}
}
