package security

import "time"

// Test secrets for unit tests only. Do not use in production.
const (
	testSigningSecret = "test-signing-secret-at-least-32-bytes!!"
	// TestEncryptionKey is a 32-byte AES key, hex encoded.
	TestEncryptionKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"
)

// NewTestTokenProvider returns a TokenProvider using the embedded test secret with 15m/24h TTLs.
// For unit tests only.
func NewTestTokenProvider() (*TokenProvider, error) {
	return NewTokenProvider(testSigningSecret, "test-issuer", "test-audience", 15*time.Minute, 24*time.Hour)
}

// NewTestTokenEncryptor returns a TokenEncryptor using TestEncryptionKey. For unit tests only.
func NewTestTokenEncryptor() (*TokenEncryptor, error) {
	return NewTokenEncryptor(TestEncryptionKey)
}

// WithClock returns a copy of p that reads the current time from now. For tests that need to
// issue or verify tokens at a fixed instant.
func (p *TokenProvider) WithClock(now func() time.Time) *TokenProvider {
	cp := *p
	cp.now = now
	return &cp
}
