package security

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrPasswordTooLong is returned when password plus security stamp exceed bcrypt's 72 byte input.
var ErrPasswordTooLong = errors.New("password too long")

const (
	maxBcryptInput = 72
	// StampLength is the length of stamps from NewSecurityStamp.
	StampLength = 32
	// MaxPasswordLength is the longest password, in bytes, that fits with a NewSecurityStamp stamp.
	MaxPasswordLength = maxBcryptInput - StampLength
)

// Hasher hashes and verifies passwords using bcrypt. The hashed input is the password
// followed by the user's security stamp. Callers must not log or persist plaintext passwords.
type Hasher struct {
	Cost int
}

// NewHasher returns a Hasher with the given bcrypt cost (4–31).
func NewHasher(cost int) *Hasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.MinCost
	}
	if cost > bcrypt.MaxCost {
		cost = bcrypt.MaxCost
	}
	return &Hasher{Cost: cost}
}

// Hash produces a bcrypt hash of password+stamp suitable for storage.
func (h *Hasher) Hash(password, stamp string) (string, error) {
	input := salted(password, stamp)
	if len(input) > maxBcryptInput {
		return "", ErrPasswordTooLong
	}
	b, err := bcrypt.GenerateFromPassword(input, h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Compare verifies password+stamp against the stored hash. The cost is read from the hash.
// Returns nil on match; ErrPasswordTooLong for input Hash would have rejected,
// bcrypt.ErrMismatchedHashAndPassword or a hash format error otherwise.
func (h *Hasher) Compare(hash, password, stamp string) error {
	input := salted(password, stamp)
	if len(input) > maxBcryptInput {
		return ErrPasswordTooLong
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), input)
}

// NewSecurityStamp returns a fresh random per-user stamp.
func NewSecurityStamp() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func salted(password, stamp string) []byte {
	b := make([]byte, 0, len(password)+len(stamp))
	b = append(b, password...)
	return append(b, stamp...)
}
