package domain

import "time"

// Actions recorded by the auth service.
const (
	ActionLogin          = "login"
	ActionLoginFailure   = "login_failure"
	ActionRefresh        = "refresh"
	ActionRefreshFailure = "refresh_failure"
	ActionLogout         = "logout"
)

// ResourceSession is the resource name for session lifecycle events.
const ResourceSession = "session"

// AuditLog represents an audit event. UserID is empty when the actor is unknown.
type AuditLog struct {
	ID        string
	UserID    string
	Action    string
	Resource  string
	IP        string
	Metadata  string
	CreatedAt time.Time
}
