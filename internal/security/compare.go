package security

import (
	"crypto/sha256"
	"crypto/subtle"
)

// TokensEqual reports whether two token strings are equal in constant time. Both sides are
// digested first so the comparison does not leak length.
func TokensEqual(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
