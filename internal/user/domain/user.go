package domain

import (
	"time"

	"tenant-admin/backend/internal/validation"
)

// User is the core user entity. PasswordHash is bcrypt(password + SecurityStamp).
type User struct {
	ID            string
	RoleID        string `validate:"required"`
	Email         string `validate:"required,email"`
	PhoneNumber   string `validate:"required,max=32"`
	PasswordHash  string `validate:"required"`
	SecurityStamp string `validate:"required"`
	Name          string
	AvatarPath    string // optional
	Address       string // optional
	IsDeleted     bool
	CreatedBy     string
	UpdatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

var userValidator = validation.New(nil)

// Validate validates the user for persistence.
func (u *User) Validate() error {
	return userValidator.Struct(u)
}
