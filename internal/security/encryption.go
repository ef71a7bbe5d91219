package security

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
)

const (
	encryptionKeySize = 32
	gcmNonceSize      = 12
	gcmTagSize        = 16
)

// TokenEncryptor encrypts token strings for storage with AES-256-GCM. The envelope format is
// hex(nonce) "." hex(tag) "." hex(ciphertext). It is safe for concurrent use.
type TokenEncryptor struct {
	aead cipher.AEAD
}

// NewTokenEncryptor builds an encryptor from a hex-encoded 32-byte key. Returns
// ErrConfiguration when the key is missing, not hex, or the wrong length.
func NewTokenEncryptor(hexKey string) (*TokenEncryptor, error) {
	if hexKey == "" {
		return nil, fmt.Errorf("%w: encryption key is required", ErrConfiguration)
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: encryption key is not valid hex", ErrConfiguration)
	}
	if len(key) != encryptionKeySize {
		return nil, fmt.Errorf("%w: encryption key must be %d bytes, got %d", ErrConfiguration, encryptionKeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	aead, err := cipher.NewGCMWithNonceSize(block, gcmNonceSize)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return &TokenEncryptor{aead: aead}, nil
}

// Encrypt seals plaintext under a fresh random nonce.
func (e *TokenEncryptor) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}
	sealed := e.aead.Seal(nil, nonce, []byte(plaintext), nil)
	ct, tag := sealed[:len(sealed)-gcmTagSize], sealed[len(sealed)-gcmTagSize:]
	return hex.EncodeToString(nonce) + "." + hex.EncodeToString(tag) + "." + hex.EncodeToString(ct), nil
}

// Decrypt opens an envelope produced by Encrypt. Any malformed part or authentication failure
// returns ErrDecryption.
func (e *TokenEncryptor) Decrypt(envelope string) (string, error) {
	parts := strings.Split(envelope, ".")
	if len(parts) != 3 {
		return "", ErrDecryption
	}
	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != gcmNonceSize {
		return "", ErrDecryption
	}
	tag, err := hex.DecodeString(parts[1])
	if err != nil || len(tag) != gcmTagSize {
		return "", ErrDecryption
	}
	ct, err := hex.DecodeString(parts[2])
	if err != nil {
		return "", ErrDecryption
	}
	plaintext, err := e.aead.Open(nil, nonce, append(ct, tag...), nil)
	if err != nil {
		return "", ErrDecryption
	}
	return string(plaintext), nil
}
