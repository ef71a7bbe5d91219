package security

import "testing"

func TestTokensEqual(t *testing.T) {
	if !TokensEqual("test-refresh-token-456", "test-refresh-token-456") {
		t.Error("identical tokens should be equal")
	}
	if TokensEqual("token-1", "token-2") {
		t.Error("different tokens should not be equal")
	}
	if TokensEqual("token", "token-longer") {
		t.Error("tokens of different length should not be equal")
	}
	if !TokensEqual("", "") {
		t.Error("empty tokens should be equal")
	}
}
