package domain

import "time"

// Built-in role names created by the seed command.
const (
	RoleAdmin   = "Admin"
	RoleNhieuXe = "NhieuXe"
	RoleNhaXe   = "NhaXe"
	RoleDriver  = "Driver"
	RoleUser    = "User"
)

// DefaultRoles lists the seeded roles, Admin first.
var DefaultRoles = []string{RoleAdmin, RoleNhieuXe, RoleNhaXe, RoleDriver, RoleUser}

// Role is a named permission group a user belongs to.
type Role struct {
	ID        string
	Name      string
	IsDeleted bool
	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}
