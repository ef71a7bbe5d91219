package server

import (
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"tenant-admin/backend/internal/health"
	"tenant-admin/backend/internal/server/interceptors"
	"tenant-admin/backend/internal/telemetry"
)

// Full method names of the standard health service; they never require a Bearer token.
const (
	HealthCheckMethod = "/grpc.health.v1.Health/Check"
	HealthListMethod  = "/grpc.health.v1.Health/List"
)

// Deps holds the collaborators of the gRPC server.
type Deps struct {
	// Auth resolves Bearer access tokens. Required.
	Auth interceptors.Authenticator
	// Logger is the base logger; each RPC gets a child logger in its context.
	Logger zerolog.Logger
	// Emitter receives one grpc_request event per RPC. If nil, no events are emitted.
	Emitter telemetry.EventEmitter
	// Health publishes readiness. If nil, the health service is not registered.
	Health *health.Checker
	// PublicMethods are extra full method names that skip authentication. Health is the only
	// service registered here; the auth RPC bindings (Login, Refresh) come from the embedding
	// service, which registers them on the returned server and lists their full names here.
	PublicMethods []string
}

// PublicMethods returns the set of full method names that do not require a Bearer token.
func PublicMethods(extra ...string) map[string]bool {
	m := map[string]bool{
		HealthCheckMethod: true,
		HealthListMethod:  true,
	}
	for _, name := range extra {
		m[name] = true
	}
	return m
}

// NewServer returns a grpc.Server with OTel instrumentation and the unary chain
// logging → auth → telemetry, and registers the health service. Callers register their own
// services on the returned server before Serve.
func NewServer(deps Deps, opts ...grpc.ServerOption) *grpc.Server {
	skipTelemetry := map[string]bool{
		HealthCheckMethod: true,
		HealthListMethod:  true,
	}
	base := []grpc.ServerOption{
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			interceptors.LoggingUnary(deps.Logger),
			interceptors.AuthUnary(deps.Auth, PublicMethods(deps.PublicMethods...)),
			interceptors.TelemetryUnary(deps.Emitter, skipTelemetry),
		),
	}
	srv := grpc.NewServer(append(base, opts...)...)
	if deps.Health != nil {
		healthpb.RegisterHealthServer(srv, deps.Health.Server())
	}
	return srv
}
