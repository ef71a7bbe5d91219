//go:build integration

package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"tenant-admin/backend/internal/audit"
	auditdomain "tenant-admin/backend/internal/audit/domain"
	auditrepo "tenant-admin/backend/internal/audit/repository"
	"tenant-admin/backend/internal/db/dbtest"
	"tenant-admin/backend/internal/security"
	sessionrepo "tenant-admin/backend/internal/session/repository"
	userrepo "tenant-admin/backend/internal/user/repository"
)

func newPostgresService(t *testing.T, ctx context.Context) *AuthService {
	t.Helper()
	svc, _ := newAuditedPostgresService(t, ctx)
	return svc
}

func newAuditedPostgresService(t *testing.T, ctx context.Context) (*AuthService, *auditrepo.PostgresRepository) {
	t.Helper()
	pool := dbtest.StartPostgres(t, ctx)

	hasher := security.NewHasher(4)
	stamp := security.NewSecurityStamp()
	hash, err := hasher.Hash("secret1", stamp)
	require.NoError(t, err)
	dbtest.InsertUser(t, ctx, pool, "user-a", "a@b.com", "0900000001", hash, stamp)

	tokens, err := security.NewTestTokenProvider()
	require.NoError(t, err)
	enc, err := security.NewTestTokenEncryptor()
	require.NoError(t, err)
	dbtest.InsertUser(t, ctx, pool, "user-b", "b@b.com", "0900000002", hash, stamp)

	audits := auditrepo.NewPostgresRepository(pool)
	svc := NewAuthService(userrepo.NewPostgresRepository(pool), sessionrepo.NewPostgresRepository(pool), hasher, tokens, enc,
		WithAuditLogger(audit.NewLogger(audits, nil, zerolog.Nop())))
	return svc, audits
}

func TestIntegration_LoginRefreshLogout(t *testing.T) {
	ctx := context.Background()
	svc := newPostgresService(t, ctx)

	login, err := svc.Login(ctx, "a@b.com", "secret1", device("d1"))
	require.NoError(t, err)
	require.NotEmpty(t, login.AccessToken)
	require.Equal(t, "d1", login.Device.ID)

	relogin, err := svc.Login(ctx, "0900000001", "secret1", device("d1"))
	require.NoError(t, err)

	devices, err := svc.ActiveDevices(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, devices, 1)

	_, err = svc.Refresh(ctx, login.RefreshToken, "d1")
	require.ErrorIs(t, err, security.ErrInvalidToken)

	refreshed, err := svc.Refresh(ctx, relogin.RefreshToken, "d1")
	require.NoError(t, err)

	_, err = svc.Refresh(ctx, relogin.RefreshToken, "d1")
	require.ErrorIs(t, err, security.ErrInvalidToken)

	p, err := svc.Authenticate(ctx, refreshed.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "user-a", p.UserID)

	require.NoError(t, svc.Logout(ctx, "d1"))
	require.NoError(t, svc.Logout(ctx, "d1"))

	devices, err = svc.ActiveDevices(ctx, "user-a")
	require.NoError(t, err)
	require.Empty(t, devices)

	_, err = svc.Refresh(ctx, refreshed.RefreshToken, "d1")
	require.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestIntegration_LogoutSharedDevice(t *testing.T) {
	ctx := context.Background()
	svc := newPostgresService(t, ctx)

	a, err := svc.Login(ctx, "a@b.com", "secret1", device("d1"))
	require.NoError(t, err)
	b, err := svc.Login(ctx, "b@b.com", "secret1", device("d1"))
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "d1"))

	for _, user := range []string{"user-a", "user-b"} {
		devices, err := svc.ActiveDevices(ctx, user)
		require.NoError(t, err)
		require.Empty(t, devices, user)
	}
	_, err = svc.Refresh(ctx, a.RefreshToken, "d1")
	require.ErrorIs(t, err, security.ErrInvalidToken)
	_, err = svc.Refresh(ctx, b.RefreshToken, "d1")
	require.ErrorIs(t, err, security.ErrInvalidToken)
}

func TestIntegration_AuditTrail(t *testing.T) {
	ctx := context.Background()
	svc, audits := newAuditedPostgresService(t, ctx)

	_, err := svc.Login(ctx, "a@b.com", "wrong", device("d1"))
	require.ErrorIs(t, err, ErrInvalidCredentials)
	login, err := svc.Login(ctx, "a@b.com", "secret1", device("d1"))
	require.NoError(t, err)
	_, err = svc.Refresh(ctx, login.RefreshToken, "d1")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, "d1"))
	require.NoError(t, svc.Logout(ctx, "d1"))

	logs, err := audits.ListByUser(ctx, "user-a", 0)
	require.NoError(t, err)
	counts := map[string]int{}
	for _, l := range logs {
		require.Equal(t, auditdomain.ResourceSession, l.Resource)
		require.Equal(t, "unknown", l.IP)
		counts[l.Action]++
	}
	// The failed login has no resolved user, and the repeated logout is a no-op.
	require.Equal(t, map[string]int{
		auditdomain.ActionLogin:   1,
		auditdomain.ActionRefresh: 1,
		auditdomain.ActionLogout:  1,
	}, counts)
}

func TestIntegration_ConcurrentRefresh(t *testing.T) {
	ctx := context.Background()
	svc := newPostgresService(t, ctx)

	login, err := svc.Login(ctx, "a@b.com", "secret1", device("d1"))
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Refresh(ctx, login.RefreshToken, "d1")
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.ErrorIs(t, err, security.ErrInvalidToken)
	}
	require.Equal(t, 1, succeeded)

	devices, err := svc.ActiveDevices(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, devices, 1)
}

func TestIntegration_ConcurrentFirstLogin(t *testing.T) {
	ctx := context.Background()
	svc := newPostgresService(t, ctx)

	const n = 4
	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, errs[i] = svc.Login(ctx, "a@b.com", "secret1", device("d1"))
		}(i)
	}
	close(start)
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		require.True(t, errors.Is(err, ErrConcurrentLogin), "unexpected error: %v", err)
	}
	require.GreaterOrEqual(t, succeeded, 1)

	devices, err := svc.ActiveDevices(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, devices, 1)
}
