package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric/noop"

	"tenant-admin/backend/internal/audit"
	auditdomain "tenant-admin/backend/internal/audit/domain"
	"tenant-admin/backend/internal/security"
	"tenant-admin/backend/internal/server/interceptors"
	sessiondomain "tenant-admin/backend/internal/session/domain"
	sessionrepo "tenant-admin/backend/internal/session/repository"
	"tenant-admin/backend/internal/telemetry"
	telemetrydomain "tenant-admin/backend/internal/telemetry/domain"
	userdomain "tenant-admin/backend/internal/user/domain"
)

// Sentinel errors for auth service; the transport maps them to status codes.
// Token failures use the security package sentinels.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidDevice      = errors.New("invalid device")
	ErrConcurrentLogin    = errors.New("concurrent login on the same device")
)

// Profile is the public view of the logged-in user.
type Profile struct {
	UserID      string
	Email       string
	PhoneNumber string
	Name        string
	AvatarPath  string
	Address     string
}

// LoginResult holds the plaintext token pair issued by Login with the user and device it belongs to.
type LoginResult struct {
	AccessToken            string
	RefreshToken           string
	AccessTokenExpiration  time.Time
	RefreshTokenExpiration time.Time
	User                   Profile
	Device                 sessiondomain.DeviceInfo
}

// RefreshResult holds the rotated token pair.
type RefreshResult struct {
	AccessToken            string
	RefreshToken           string
	AccessTokenExpiration  time.Time
	RefreshTokenExpiration time.Time
	DeviceID               string
}

// UserRepo is the minimal user repository needed by the auth service.
type UserRepo interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
	FindByEmailOrPhone(ctx context.Context, username string) (*userdomain.User, error)
}

// SessionRepo is the minimal session repository needed by the auth service.
type SessionRepo interface {
	WithTx(ctx context.Context, fn func(ctx context.Context, tx sessionrepo.Tx) error) error
	ListActiveByUser(ctx context.Context, userID string) ([]*sessiondomain.Session, error)
	GetActiveByNonce(ctx context.Context, deviceID, nonce string) (*sessiondomain.Session, error)
}

// Option configures optional AuthService collaborators.
type Option func(*AuthService)

// WithAuditLogger records every login, refresh and logout outcome through l.
func WithAuditLogger(l audit.AuditLogger) Option {
	return func(s *AuthService) { s.auditLogger = l }
}

// WithEventEmitter emits a telemetry event per outcome through e.
func WithEventEmitter(e telemetry.EventEmitter) Option {
	return func(s *AuthService) { s.emitter = e }
}

// WithMetrics counts outcomes on m instead of a no-op meter.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(s *AuthService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithClock overrides the clock used for row timestamps and stored expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *AuthService) { s.now = now }
}

// AuthService implements password login, refresh-token rotation, logout and device listing.
// Each (user, device) pair has at most one live session.
type AuthService struct {
	userRepo    UserRepo
	sessionRepo SessionRepo
	hasher      *security.Hasher
	tokens      *security.TokenProvider
	encryptor   *security.TokenEncryptor
	auditLogger audit.AuditLogger
	emitter     telemetry.EventEmitter
	metrics     *telemetry.Metrics
	now         func() time.Time
	decoy       decoy
}

// NewAuthService returns an AuthService with the given dependencies.
func NewAuthService(
	userRepo UserRepo,
	sessionRepo SessionRepo,
	hasher *security.Hasher,
	tokens *security.TokenProvider,
	encryptor *security.TokenEncryptor,
	opts ...Option,
) *AuthService {
	s := &AuthService{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokens:      tokens,
		encryptor:   encryptor,
		metrics:     telemetry.NewMetrics(noop.NewMeterProvider().Meter("")),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Login verifies username (email or phone) and password, issues a token pair bound to the device,
// and stores it encrypted. A live session for the same user and device is overwritten in place.
func (s *AuthService) Login(ctx context.Context, username, password string, device sessiondomain.DeviceInfo) (*LoginResult, error) {
	res, sessionID, userID, err := s.login(ctx, username, password, device)
	if err != nil {
		s.metrics.Count(ctx, s.metrics.LoginTotal, telemetry.OutcomeFailure)
		s.metrics.Count(ctx, s.metrics.LoginFailuresTotal, telemetry.OutcomeFailure)
		s.record(ctx, outcome{
			action:    auditdomain.ActionLoginFailure,
			event:     telemetrydomain.EventLoginFailed,
			userID:    userID,
			deviceID:  device.ID,
			sessionID: sessionID,
			err:       err,
		})
		return nil, err
	}
	s.metrics.Count(ctx, s.metrics.LoginTotal, telemetry.OutcomeSuccess)
	s.record(ctx, outcome{
		action:    auditdomain.ActionLogin,
		event:     telemetrydomain.EventLoginSucceeded,
		userID:    userID,
		deviceID:  res.Device.ID,
		sessionID: sessionID,
	})
	return res, nil
}

func (s *AuthService) login(ctx context.Context, username, password string, device sessiondomain.DeviceInfo) (*LoginResult, string, string, error) {
	device.ID = strings.TrimSpace(device.ID)
	device.Name = strings.TrimSpace(device.Name)
	if err := device.Validate(); err != nil {
		return nil, "", "", fmt.Errorf("%w: %v", ErrInvalidDevice, err)
	}
	user, err := s.VerifyCredentials(ctx, username, password)
	if err != nil {
		return nil, "", "", err
	}
	pair, err := s.tokens.Issue(user.ID, device.ID)
	if err != nil {
		return nil, "", user.ID, fmt.Errorf("issue tokens: %w", err)
	}
	encAccess, encRefresh, err := s.encryptPair(pair)
	if err != nil {
		return nil, "", user.ID, err
	}

	var sess *sessiondomain.Session
	err = s.sessionRepo.WithTx(ctx, func(ctx context.Context, tx sessionrepo.Tx) error {
		existing, err := tx.FindActiveByUserAndDevice(ctx, user.ID, device.ID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		if existing != nil {
			existing.JWTID = pair.Nonce
			existing.EncryptedAccessToken = encAccess
			existing.EncryptedRefreshToken = encRefresh
			existing.AccessTokenExpiration = pair.AccessExpiresAt
			existing.RefreshTokenExpiration = pair.RefreshExpiresAt
			existing.DeviceType = device.Type
			existing.Platform = device.Platform
			existing.DeviceName = device.Name
			existing.UpdatedBy = user.ID
			existing.UpdatedAt = now
			sess = existing
			return tx.Update(ctx, existing)
		}
		id, err := sessionrepo.NewID(now)
		if err != nil {
			return err
		}
		sess = &sessiondomain.Session{
			ID:                     id,
			UserID:                 user.ID,
			DeviceID:               device.ID,
			AuthType:               sessiondomain.AuthTypeEmail,
			AuthID:                 user.Email,
			EncryptedAccessToken:   encAccess,
			EncryptedRefreshToken:  encRefresh,
			JWTID:                  pair.Nonce,
			AccessTokenExpiration:  pair.AccessExpiresAt,
			RefreshTokenExpiration: pair.RefreshExpiresAt,
			DeviceType:             device.Type,
			Platform:               device.Platform,
			DeviceName:             device.Name,
			CreatedBy:              user.ID,
			UpdatedBy:              user.ID,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		return tx.Create(ctx, sess)
	})
	if errors.Is(err, sessionrepo.ErrSessionConflict) {
		return nil, "", user.ID, ErrConcurrentLogin
	}
	if err != nil {
		return nil, "", user.ID, fmt.Errorf("store session: %w", err)
	}
	return &LoginResult{
		AccessToken:            pair.AccessToken,
		RefreshToken:           pair.RefreshToken,
		AccessTokenExpiration:  pair.AccessExpiresAt,
		RefreshTokenExpiration: pair.RefreshExpiresAt,
		User: Profile{
			UserID:      user.ID,
			Email:       user.Email,
			PhoneNumber: user.PhoneNumber,
			Name:        user.Name,
			AvatarPath:  user.AvatarPath,
			Address:     user.Address,
		},
		Device: device,
	}, sess.ID, user.ID, nil
}

// Refresh exchanges a refresh token for a new pair. The presented token must be the one stored
// for the live session of its (user, device); that session is revoked and a new one is created,
// so a refresh token can be used at most once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, deviceID string) (*RefreshResult, error) {
	res, sessionID, userID, err := s.refresh(ctx, refreshToken, strings.TrimSpace(deviceID))
	if err != nil {
		s.metrics.Count(ctx, s.metrics.RefreshTotal, telemetry.OutcomeFailure)
		s.metrics.Count(ctx, s.metrics.RefreshFailuresTotal, telemetry.OutcomeFailure)
		s.record(ctx, outcome{
			action:   auditdomain.ActionRefreshFailure,
			event:    telemetrydomain.EventRefreshFailed,
			userID:   userID,
			deviceID: deviceID,
			err:      err,
		})
		return nil, err
	}
	s.metrics.Count(ctx, s.metrics.RefreshTotal, telemetry.OutcomeSuccess)
	s.record(ctx, outcome{
		action:    auditdomain.ActionRefresh,
		event:     telemetrydomain.EventRefreshSucceeded,
		userID:    userID,
		deviceID:  res.DeviceID,
		sessionID: sessionID,
	})
	return res, nil
}

func (s *AuthService) refresh(ctx context.Context, refreshToken, deviceID string) (*RefreshResult, string, string, error) {
	if refreshToken == "" || deviceID == "" {
		return nil, "", "", security.ErrInvalidToken
	}
	claims, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		return nil, "", "", err
	}
	userID := claims.UserID()
	if claims.DeviceID != deviceID {
		return nil, "", userID, security.ErrInvalidToken
	}

	var res *RefreshResult
	var sessionID string
	err = s.sessionRepo.WithTx(ctx, func(ctx context.Context, tx sessionrepo.Tx) error {
		current, err := tx.FindActiveByUserAndDevice(ctx, userID, deviceID)
		if err != nil {
			return err
		}
		if current == nil {
			return security.ErrTokenNotFound
		}
		if current.JWTID != claims.Nonce() {
			return security.ErrInvalidToken
		}
		stored, err := s.encryptor.Decrypt(current.EncryptedRefreshToken)
		if err != nil || !security.TokensEqual(stored, refreshToken) {
			return security.ErrInvalidToken
		}
		now := s.now().UTC()
		if !now.Before(current.RefreshTokenExpiration) {
			return security.ErrTokenExpired
		}
		user, err := s.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user == nil {
			return security.ErrInvalidToken
		}

		if err := tx.Revoke(ctx, current.ID, userID, false, now); err != nil {
			if errors.Is(err, sessionrepo.ErrSessionNotFound) {
				return security.ErrInvalidToken
			}
			return err
		}
		pair, err := s.tokens.Issue(userID, deviceID)
		if err != nil {
			return fmt.Errorf("issue tokens: %w", err)
		}
		encAccess, encRefresh, err := s.encryptPair(pair)
		if err != nil {
			return err
		}
		id, err := sessionrepo.NewID(now)
		if err != nil {
			return err
		}
		next := &sessiondomain.Session{
			ID:                     id,
			UserID:                 userID,
			DeviceID:               deviceID,
			AuthType:               current.AuthType,
			AuthID:                 current.AuthID,
			EncryptedAccessToken:   encAccess,
			EncryptedRefreshToken:  encRefresh,
			JWTID:                  pair.Nonce,
			AccessTokenExpiration:  pair.AccessExpiresAt,
			RefreshTokenExpiration: pair.RefreshExpiresAt,
			DeviceType:             current.DeviceType,
			Platform:               current.Platform,
			DeviceName:             current.DeviceName,
			CreatedBy:              userID,
			UpdatedBy:              userID,
			CreatedAt:              now,
			UpdatedAt:              now,
		}
		if err := tx.Create(ctx, next); err != nil {
			if errors.Is(err, sessionrepo.ErrSessionConflict) {
				return security.ErrInvalidToken
			}
			return err
		}
		sessionID = next.ID
		res = &RefreshResult{
			AccessToken:            pair.AccessToken,
			RefreshToken:           pair.RefreshToken,
			AccessTokenExpiration:  pair.AccessExpiresAt,
			RefreshTokenExpiration: pair.RefreshExpiresAt,
			DeviceID:               deviceID,
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, security.ErrInvalidToken) {
			return nil, "", userID, err
		}
		return nil, "", userID, fmt.Errorf("rotate session: %w", err)
	}
	return res, sessionID, userID, nil
}

// Logout revokes and soft-deletes the live sessions on deviceID. When the auth interceptor put a
// user in ctx only that user's session is touched; otherwise every live session on the device is
// revoked. Logging out a device with no live session is a no-op.
func (s *AuthService) Logout(ctx context.Context, deviceID string) error {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return ErrInvalidDevice
	}
	actor, _ := interceptors.GetUserID(ctx)

	var revoked []*sessiondomain.Session
	err := s.sessionRepo.WithTx(ctx, func(ctx context.Context, tx sessionrepo.Tx) error {
		var live []*sessiondomain.Session
		if actor != "" {
			current, err := tx.FindActiveByUserAndDevice(ctx, actor, deviceID)
			if err != nil {
				return err
			}
			if current != nil {
				live = append(live, current)
			}
		} else {
			var err error
			if live, err = tx.ListActiveByDevice(ctx, deviceID); err != nil {
				return err
			}
		}

		now := s.now().UTC()
		for _, sess := range live {
			updatedBy := actor
			if updatedBy == "" {
				updatedBy = sess.UserID
			}
			if err := tx.Revoke(ctx, sess.ID, updatedBy, true, now); err != nil {
				if errors.Is(err, sessionrepo.ErrSessionNotFound) {
					continue
				}
				return err
			}
			revoked = append(revoked, sess)
		}
		return nil
	})
	if err != nil {
		s.metrics.Count(ctx, s.metrics.LogoutTotal, telemetry.OutcomeFailure)
		return fmt.Errorf("logout: %w", err)
	}
	if len(revoked) == 0 {
		s.metrics.Count(ctx, s.metrics.LogoutTotal, telemetry.OutcomeNoop)
		return nil
	}
	s.metrics.Count(ctx, s.metrics.LogoutTotal, telemetry.OutcomeSuccess)
	for _, sess := range revoked {
		s.record(ctx, outcome{
			action:    auditdomain.ActionLogout,
			event:     telemetrydomain.EventLogout,
			userID:    sess.UserID,
			deviceID:  deviceID,
			sessionID: sess.ID,
		})
	}
	return nil
}

// ActiveDevices lists the devices holding a live session for userID. No token material is returned.
func (s *AuthService) ActiveDevices(ctx context.Context, userID string) ([]sessiondomain.ActiveDevice, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}
	sessions, err := s.sessionRepo.ListActiveByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	devices := make([]sessiondomain.ActiveDevice, 0, len(sessions))
	for _, sess := range sessions {
		devices = append(devices, sess.ToActiveDevice())
	}
	return devices, nil
}

// Authenticate verifies an access token and requires the session it was issued for to still be
// live. It implements interceptors.Authenticator.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*interceptors.Principal, error) {
	claims, err := s.tokens.VerifyAccess(accessToken)
	if err != nil {
		return nil, err
	}
	sess, err := s.sessionRepo.GetActiveByNonce(ctx, claims.DeviceID, claims.Nonce())
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if sess == nil || sess.UserID != claims.UserID() {
		return nil, security.ErrTokenNotFound
	}
	return &interceptors.Principal{
		UserID:    sess.UserID,
		DeviceID:  sess.DeviceID,
		SessionID: sess.ID,
	}, nil
}

func (s *AuthService) encryptPair(pair *security.TokenPair) (string, string, error) {
	encAccess, err := s.encryptor.Encrypt(pair.AccessToken)
	if err != nil {
		return "", "", fmt.Errorf("encrypt access token: %w", err)
	}
	encRefresh, err := s.encryptor.Encrypt(pair.RefreshToken)
	if err != nil {
		return "", "", fmt.Errorf("encrypt refresh token: %w", err)
	}
	return encAccess, encRefresh, nil
}
