package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// MinSecretLength is the minimum HMAC signing secret length in bytes.
const MinSecretLength = 32

// Token use values carried in the "use" claim.
const (
	UseAccess  = "access"
	UseRefresh = "refresh"
)

// Claims holds the JWT claims shared by access and refresh tokens. The registered ID (jti)
// is the session nonce; both tokens of one issuance carry the same nonce.
type Claims struct {
	jwt.RegisteredClaims
	DeviceID string `json:"device_id"`
	Use      string `json:"use"`
}

// UserID returns the subject.
func (c *Claims) UserID() string { return c.Subject }

// Nonce returns the session nonce (jti).
func (c *Claims) Nonce() string { return c.ID }

// TokenPair is one issuance: an access and a refresh token bound to the same nonce.
type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	Nonce            string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenProvider issues and validates HS256 access and refresh JWTs.
type TokenProvider struct {
	secret     []byte
	issuer     string
	audience   string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// NewTokenProvider returns a TokenProvider that signs with secret. issuer and audience are set
// on claims and validated on Verify. Returns ErrConfiguration for a short secret or when the
// refresh TTL is not longer than the access TTL.
func NewTokenProvider(secret, issuer, audience string, accessTTL, refreshTTL time.Duration) (*TokenProvider, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("%w: signing secret must be at least %d bytes", ErrConfiguration, MinSecretLength)
	}
	if accessTTL <= 0 || refreshTTL <= accessTTL {
		return nil, fmt.Errorf("%w: refresh ttl must exceed access ttl", ErrConfiguration)
	}
	return &TokenProvider{
		secret:     []byte(secret),
		issuer:     issuer,
		audience:   audience,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// RefreshTTL returns the configured refresh token lifetime.
func (p *TokenProvider) RefreshTTL() time.Duration { return p.refreshTTL }

// Issue signs a new access/refresh pair for userID on deviceID under a fresh nonce.
func (p *TokenProvider) Issue(userID, deviceID string) (*TokenPair, error) {
	if userID == "" || deviceID == "" {
		return nil, errors.New("user id and device id are required")
	}
	nonce := uuid.NewString()
	now := p.now().UTC()
	pair := &TokenPair{
		Nonce:            nonce,
		AccessExpiresAt:  now.Add(p.accessTTL),
		RefreshExpiresAt: now.Add(p.refreshTTL),
	}
	var err error
	pair.AccessToken, err = p.sign(p.claims(userID, deviceID, nonce, UseAccess, now, pair.AccessExpiresAt))
	if err != nil {
		return nil, err
	}
	pair.RefreshToken, err = p.sign(p.claims(userID, deviceID, nonce, UseRefresh, now, pair.RefreshExpiresAt))
	if err != nil {
		return nil, err
	}
	return pair, nil
}

func (p *TokenProvider) claims(userID, deviceID, nonce, use string, now, exp time.Time) *Claims {
	return &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        nonce,
			Subject:   userID,
			Issuer:    p.issuer,
			Audience:  jwt.ClaimStrings{p.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
		DeviceID: deviceID,
		Use:      use,
	}
}

func (p *TokenProvider) sign(claims *Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// Verify parses and validates a token (signature, exp, iss, aud) and returns its claims.
// Returns ErrTokenExpired when exp has passed and ErrInvalidToken for anything else.
func (p *TokenProvider) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(p.issuer),
		jwt.WithAudience(p.audience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || claims.ID == "" || claims.DeviceID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyAccess is Verify restricted to access tokens.
func (p *TokenProvider) VerifyAccess(tokenString string) (*Claims, error) {
	return p.verifyUse(tokenString, UseAccess)
}

// VerifyRefresh is Verify restricted to refresh tokens.
func (p *TokenProvider) VerifyRefresh(tokenString string) (*Claims, error) {
	return p.verifyUse(tokenString, UseRefresh)
}

func (p *TokenProvider) verifyUse(tokenString, use string) (*Claims, error) {
	claims, err := p.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Use != use {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
