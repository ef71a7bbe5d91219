package domain

import "time"

// AuthTypeEmail is the only auth type issued today; AuthID then holds the user's email.
const AuthTypeEmail = "email"

// Session is one device's login for a user. At most one session per (UserID, DeviceID) is
// live (not revoked and not deleted). JWTID is the nonce shared by the tokens issued for it.
// The token fields hold encrypted envelopes, never plaintext.
type Session struct {
	ID                     string
	UserID                 string
	DeviceID               string
	AuthType               string
	AuthID                 string
	EncryptedAccessToken   string
	EncryptedRefreshToken  string
	JWTID                  string
	IsRevoked              bool
	AccessTokenExpiration  time.Time
	RefreshTokenExpiration time.Time
	DeviceType             DeviceType
	Platform               Platform
	DeviceName             string // optional
	IsDeleted              bool
	CreatedBy              string
	UpdatedBy              string
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Live reports whether the session is neither revoked nor deleted.
func (s *Session) Live() bool {
	return !s.IsRevoked && !s.IsDeleted
}

// Device returns the device metadata stored on the session.
func (s *Session) Device() DeviceInfo {
	return DeviceInfo{ID: s.DeviceID, Type: s.DeviceType, Platform: s.Platform, Name: s.DeviceName}
}

// ActiveDevice is the public projection of a live session. It never carries token material.
type ActiveDevice struct {
	DeviceID               string
	DeviceType             DeviceType
	Platform               Platform
	DeviceName             string
	AccessTokenExpiration  time.Time
	RefreshTokenExpiration time.Time
}

// ToActiveDevice projects s to its device metadata and expirations.
func (s *Session) ToActiveDevice() ActiveDevice {
	return ActiveDevice{
		DeviceID:               s.DeviceID,
		DeviceType:             s.DeviceType,
		Platform:               s.Platform,
		DeviceName:             s.DeviceName,
		AccessTokenExpiration:  s.AccessTokenExpiration,
		RefreshTokenExpiration: s.RefreshTokenExpiration,
	}
}
