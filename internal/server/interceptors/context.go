package interceptors

import "context"

type contextKey struct{ name string }

var (
	userIDKey    = contextKey{"user_id"}
	deviceIDKey  = contextKey{"device_id"}
	sessionIDKey = contextKey{"session_id"}
)

// Principal is the identity resolved from a verified access token.
type Principal struct {
	UserID    string
	DeviceID  string
	SessionID string
}

// Authenticator resolves an access token into the principal that owns it.
// It must fail when the token is invalid or its session is no longer live.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*Principal, error)
}

// WithIdentity returns a context with user_id, device_id, and session_id set.
// Handlers and the auth service can read these via GetUserID, GetDeviceID, GetSessionID.
func WithIdentity(ctx context.Context, userID, deviceID, sessionID string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	ctx = context.WithValue(ctx, deviceIDKey, deviceID)
	ctx = context.WithValue(ctx, sessionIDKey, sessionID)
	return ctx
}

// GetUserID returns the user_id from context and true if set; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(userIDKey).(string)
	return v, ok
}

// GetDeviceID returns the device_id from context and true if set; otherwise "", false.
func GetDeviceID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(deviceIDKey).(string)
	return v, ok
}

// GetSessionID returns the session_id from context and true if set; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(sessionIDKey).(string)
	return v, ok
}
