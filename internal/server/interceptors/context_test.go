package interceptors

import (
	"context"
	"testing"
)

func TestWithIdentity_SetsAllValues(t *testing.T) {
	ctx := WithIdentity(context.Background(), "user-1", "device-1", "session-1")

	userID, ok := GetUserID(ctx)
	if !ok {
		t.Fatal("GetUserID should return true")
	}
	if userID != "user-1" {
		t.Errorf("user_id = %q, want %q", userID, "user-1")
	}

	deviceID, ok := GetDeviceID(ctx)
	if !ok {
		t.Fatal("GetDeviceID should return true")
	}
	if deviceID != "device-1" {
		t.Errorf("device_id = %q, want %q", deviceID, "device-1")
	}

	sessionID, ok := GetSessionID(ctx)
	if !ok {
		t.Fatal("GetSessionID should return true")
	}
	if sessionID != "session-1" {
		t.Errorf("session_id = %q, want %q", sessionID, "session-1")
	}
}

func TestGetters_EmptyContext(t *testing.T) {
	ctx := context.Background()
	if _, ok := GetUserID(ctx); ok {
		t.Error("GetUserID should return false on empty context")
	}
	if _, ok := GetDeviceID(ctx); ok {
		t.Error("GetDeviceID should return false on empty context")
	}
	if _, ok := GetSessionID(ctx); ok {
		t.Error("GetSessionID should return false on empty context")
	}
}

func TestWithIdentity_Overrides(t *testing.T) {
	ctx := WithIdentity(context.Background(), "user-1", "device-1", "session-1")
	ctx = WithIdentity(ctx, "user-2", "device-2", "session-2")

	if v, _ := GetUserID(ctx); v != "user-2" {
		t.Errorf("user_id = %q, want %q", v, "user-2")
	}
	if v, _ := GetDeviceID(ctx); v != "device-2" {
		t.Errorf("device_id = %q, want %q", v, "device-2")
	}
}
