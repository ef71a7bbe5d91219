package domain

import "time"

// Event types emitted by the auth service.
const (
	EventLoginSucceeded   = "auth.login.succeeded"
	EventLoginFailed      = "auth.login.failed"
	EventRefreshSucceeded = "auth.refresh.succeeded"
	EventRefreshFailed    = "auth.refresh.failed"
	EventLogout           = "auth.logout"
	EventGRPCRequest      = "grpc_request"
)

// SourceAuthService identifies events raised by the auth service.
const SourceAuthService = "auth-service"

// SourceGRPCInterceptor identifies per-RPC events raised by the server interceptor chain.
const SourceGRPCInterceptor = "grpc_interceptor"

// Event is a telemetry event with optional user/device/session scope.
type Event struct {
	UserID    string
	DeviceID  string
	SessionID string
	EventType string
	Source    string
	Metadata  []byte // JSON
	CreatedAt time.Time
}
