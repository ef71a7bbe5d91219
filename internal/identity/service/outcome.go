package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	auditdomain "tenant-admin/backend/internal/audit/domain"
	"tenant-admin/backend/internal/telemetry"
	telemetrydomain "tenant-admin/backend/internal/telemetry/domain"
)

// outcome is one auth result to audit and emit.
type outcome struct {
	action    string
	event     string
	userID    string
	deviceID  string
	sessionID string
	err       error
}

type outcomeMetadata struct {
	DeviceID  string `json:"device_id,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// record writes o to the audit log and the telemetry emitter. Both are best-effort.
func (s *AuthService) record(ctx context.Context, o outcome) {
	meta := outcomeMetadata{DeviceID: o.deviceID, SessionID: o.sessionID}
	if o.err != nil {
		meta.Error = o.err.Error()
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Str("action", o.action).Msg("auth: marshal outcome metadata")
		raw = []byte("{}")
	}

	if s.auditLogger != nil {
		s.auditLogger.LogEvent(ctx, o.userID, o.action, auditdomain.ResourceSession, string(raw))
	}
	telemetry.EmitAsync(s.emitter, ctx, &telemetrydomain.Event{
		UserID:    o.userID,
		DeviceID:  o.deviceID,
		SessionID: o.sessionID,
		EventType: o.event,
		Source:    telemetrydomain.SourceAuthService,
		Metadata:  raw,
		CreatedAt: s.now().UTC(),
	})

	l := zerolog.Ctx(ctx).Debug()
	if o.err != nil {
		l = zerolog.Ctx(ctx).Info().Err(o.err)
	}
	l.Str("action", o.action).Str("user_id", o.userID).Str("device_id", o.deviceID).Msg("auth outcome")
}
