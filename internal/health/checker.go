package health

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the health service entry for the auth backend. The empty name reports overall health.
const ServiceName = "tenant-admin.auth"

const pingTimeout = 2 * time.Second

// Pinger reports whether a dependency is reachable (e.g. *pgxpool.Pool).
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker drives the standard gRPC health service from a database ping. With a nil pinger the
// server is always SERVING.
type Checker struct {
	server *grpchealth.Server
	pinger Pinger
}

// NewChecker returns a Checker whose statuses start as NOT_SERVING until the first Check.
func NewChecker(pinger Pinger) *Checker {
	srv := grpchealth.NewServer()
	srv.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	srv.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Checker{server: srv, pinger: pinger}
}

// Server returns the health server to register on a grpc.Server.
func (c *Checker) Server() *grpchealth.Server {
	return c.server
}

// Check pings the dependency once and publishes the result.
func (c *Checker) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	status := healthpb.HealthCheckResponse_SERVING
	if c.pinger != nil {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := c.pinger.Ping(pingCtx)
		cancel()
		if err != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("health: database ping failed")
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	c.server.SetServingStatus("", status)
	c.server.SetServingStatus(ServiceName, status)
	return status
}

// Run checks every interval until ctx is done.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	c.Check(ctx)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Check(ctx)
		}
	}
}

// Shutdown marks every service NOT_SERVING so clients drain before the listener closes.
func (c *Checker) Shutdown() {
	c.server.Shutdown()
}
