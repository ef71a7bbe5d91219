package security

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidToken is returned when a token is malformed, has a bad signature, or does not
	// belong to a live session.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned when a token or its session is past expiry. It wraps
	// ErrInvalidToken so callers that only care about authorization can match either.
	ErrTokenExpired = fmt.Errorf("%w: token expired", ErrInvalidToken)
	// ErrTokenNotFound is returned when no live session exists for the presented token.
	ErrTokenNotFound = fmt.Errorf("%w: token not found", ErrInvalidToken)
	// ErrDecryption is returned when an encrypted envelope is malformed or fails authentication.
	ErrDecryption = errors.New("decryption failed")
	// ErrConfiguration is returned when a signing secret or encryption key is missing or malformed.
	ErrConfiguration = errors.New("invalid security configuration")
)
