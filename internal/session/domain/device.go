package domain

import (
	"fmt"
	"strings"

	"tenant-admin/backend/internal/validation"
)

// DeviceType classifies the client hardware.
type DeviceType string

const (
	DeviceTypeMobile  DeviceType = "MOBILE"
	DeviceTypeDesktop DeviceType = "DESKTOP"
	DeviceTypeTablet  DeviceType = "TABLET"
)

// Platform is the client browser or operating system.
type Platform string

const (
	PlatformChrome  Platform = "CHROME"
	PlatformFirefox Platform = "FIREFOX"
	PlatformSafari  Platform = "SAFARI"
	PlatformEdge    Platform = "EDGE"
	PlatformIOS     Platform = "IOS"
	PlatformAndroid Platform = "ANDROID"
	PlatformWindows Platform = "WINDOWS"
	PlatformMacOS   Platform = "MACOS"
	PlatformLinux   Platform = "LINUX"
)

// ParseDeviceType parses s case-insensitively.
func ParseDeviceType(s string) (DeviceType, error) {
	switch t := DeviceType(strings.ToUpper(strings.TrimSpace(s))); t {
	case DeviceTypeMobile, DeviceTypeDesktop, DeviceTypeTablet:
		return t, nil
	}
	return "", fmt.Errorf("unknown device type %q", s)
}

// ParsePlatform parses s case-insensitively.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToUpper(strings.TrimSpace(s))); p {
	case PlatformChrome, PlatformFirefox, PlatformSafari, PlatformEdge,
		PlatformIOS, PlatformAndroid, PlatformWindows, PlatformMacOS, PlatformLinux:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// DeviceInfo describes the client a session is opened from. Name is optional.
type DeviceInfo struct {
	ID       string     `json:"device_id" validate:"notblank,max=255"`
	Type     DeviceType `json:"device_type" validate:"device_type"`
	Platform Platform   `json:"platform" validate:"platform"`
	Name     string     `json:"device_name" validate:"max=255"`
}

var deviceValidator = validation.New(map[string]validation.StringRule{
	"device_type": func(s string) bool {
		_, err := ParseDeviceType(s)
		return err == nil
	},
	"platform": func(s string) bool {
		_, err := ParsePlatform(s)
		return err == nil
	},
})

// Validate checks the device id and enum values.
func (d DeviceInfo) Validate() error {
	return deviceValidator.Struct(d)
}
