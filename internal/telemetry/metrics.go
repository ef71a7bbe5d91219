package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "tenant-admin/backend"

// Outcome attribute values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeNoop    = "noop"
)

// Metrics holds the OpenTelemetry instruments for the auth service.
type Metrics struct {
	LoginTotal           metric.Int64Counter
	LoginFailuresTotal   metric.Int64Counter
	RefreshTotal         metric.Int64Counter
	RefreshFailuresTotal metric.Int64Counter
	LogoutTotal          metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance bound to the global MeterProvider.
// Call after the providers are installed with SetGlobal.
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = NewMetrics(otel.GetMeterProvider().Meter(meterName))
	})
	return metrics
}

// NewMetrics creates the instruments on meter. Instrument creation errors leave a no-op instrument.
func NewMetrics(meter metric.Meter) *Metrics {
	m := &Metrics{}
	m.LoginTotal, _ = meter.Int64Counter(
		"auth.login.total",
		metric.WithDescription("Total number of login attempts"),
		metric.WithUnit("{attempt}"),
	)
	m.LoginFailuresTotal, _ = meter.Int64Counter(
		"auth.login.failures.total",
		metric.WithDescription("Total number of failed logins"),
		metric.WithUnit("{attempt}"),
	)
	m.RefreshTotal, _ = meter.Int64Counter(
		"auth.refresh.total",
		metric.WithDescription("Total number of refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	m.RefreshFailuresTotal, _ = meter.Int64Counter(
		"auth.refresh.failures.total",
		metric.WithDescription("Total number of rejected refresh attempts"),
		metric.WithUnit("{attempt}"),
	)
	m.LogoutTotal, _ = meter.Int64Counter(
		"auth.logout.total",
		metric.WithDescription("Total number of logout calls"),
		metric.WithUnit("{call}"),
	)
	return m
}

// Count adds one to counter with an outcome attribute. A nil Metrics or counter is a no-op.
func (m *Metrics) Count(ctx context.Context, counter metric.Int64Counter, outcome string) {
	if m == nil || counter == nil {
		return
	}
	counter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
