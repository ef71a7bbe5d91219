package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type sample struct {
	DeviceID string `validate:"notblank,max=8"`
	Email    string `json:"email" validate:"required,email"`
	Color    string `validate:"color"`
}

func newSampleValidator() *Validator {
	return New(map[string]StringRule{
		"color": func(s string) bool { return s == "red" || s == "blue" },
	})
}

func TestStruct_Valid(t *testing.T) {
	v := newSampleValidator()
	require.NoError(t, v.Struct(sample{DeviceID: "d1", Email: "a@b.com", Color: "red"}))
}

func TestStruct_Messages(t *testing.T) {
	v := newSampleValidator()
	err := v.Struct(sample{DeviceID: "   ", Email: "nope", Color: "green"})
	require.Error(t, err)
	msg := err.Error()
	require.Contains(t, msg, "device_id is required")
	require.Contains(t, msg, "email must be a valid email address")
	require.Contains(t, msg, `color has invalid value "green"`)
	require.Equal(t, 3, len(strings.Split(msg, "; ")))
}

func TestStruct_Max(t *testing.T) {
	v := newSampleValidator()
	err := v.Struct(sample{DeviceID: "123456789", Email: "a@b.com", Color: "blue"})
	require.EqualError(t, err, "device_id must be at most 8 characters")
}

func TestToSnake(t *testing.T) {
	require.Equal(t, "phone_number", toSnake("PhoneNumber"))
	require.Equal(t, "device_id", toSnake("DeviceID"))
	require.Equal(t, "id", toSnake("ID"))
}
