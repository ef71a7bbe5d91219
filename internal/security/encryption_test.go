package security

import (
	"errors"
	"strings"
	"testing"
)

func TestTokenEncryptor_RoundTrip(t *testing.T) {
	e, err := NewTestTokenEncryptor()
	if err != nil {
		t.Fatalf("NewTestTokenEncryptor: %v", err)
	}
	for _, s := range []string{"", "a", "eyJhbGciOiJIUzI1NiJ9.payload.sig", strings.Repeat("x", 4096)} {
		env, err := e.Encrypt(s)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		if got, err := e.Decrypt(env); err != nil || got != s {
			t.Errorf("Decrypt(Encrypt(%.16q)) = %q, %v", s, got, err)
		}
	}
}

func TestTokenEncryptor_EnvelopeFormat(t *testing.T) {
	e, _ := NewTestTokenEncryptor()
	env, err := e.Encrypt("hello")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	parts := strings.Split(env, ".")
	if len(parts) != 3 {
		t.Fatalf("want 3 parts, got %d", len(parts))
	}
	if len(parts[0]) != 24 || len(parts[1]) != 32 || len(parts[2]) != 10 {
		t.Errorf("part lengths = %d,%d,%d, want 24,32,10", len(parts[0]), len(parts[1]), len(parts[2]))
	}
}

func TestTokenEncryptor_FreshNonce(t *testing.T) {
	e, _ := NewTestTokenEncryptor()
	a, _ := e.Encrypt("same")
	b, _ := e.Encrypt("same")
	if a == b {
		t.Error("two encryptions of the same plaintext should differ")
	}
}

func TestTokenEncryptor_BitFlipFails(t *testing.T) {
	e, _ := NewTestTokenEncryptor()
	env, err := e.Encrypt("refresh-token-value")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	for i := 0; i < len(env); i++ {
		if env[i] == '.' {
			continue
		}
		b := []byte(env)
		if b[i] == '0' {
			b[i] = '1'
		} else {
			b[i] = '0'
		}
		if _, err := e.Decrypt(string(b)); !errors.Is(err, ErrDecryption) {
			t.Fatalf("flip at %d: want ErrDecryption, got %v", i, err)
		}
	}
}

func TestTokenEncryptor_Malformed(t *testing.T) {
	e, _ := NewTestTokenEncryptor()
	for _, env := range []string{"", "abc", "a.b", "a.b.c.d", "zz.zz.zz", "00.00.00"} {
		if _, err := e.Decrypt(env); !errors.Is(err, ErrDecryption) {
			t.Errorf("Decrypt(%q): want ErrDecryption, got %v", env, err)
		}
	}
}

func TestTokenEncryptor_WrongKey(t *testing.T) {
	e1, _ := NewTestTokenEncryptor()
	e2, err := NewTokenEncryptor(strings.Repeat("ab", 32))
	if err != nil {
		t.Fatalf("NewTokenEncryptor: %v", err)
	}
	env, _ := e1.Encrypt("secret")
	if _, err := e2.Decrypt(env); !errors.Is(err, ErrDecryption) {
		t.Errorf("want ErrDecryption, got %v", err)
	}
}

func TestNewTokenEncryptor_BadKey(t *testing.T) {
	for _, key := range []string{"", "not-hex", strings.Repeat("ab", 16), strings.Repeat("ab", 33)} {
		if _, err := NewTokenEncryptor(key); !errors.Is(err, ErrConfiguration) {
			t.Errorf("NewTokenEncryptor(%q): want ErrConfiguration, got %v", key, err)
		}
	}
}
