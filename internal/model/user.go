package model

import "time"

// Role is the privilege level of a user.  Admin rights are granted and
// revoked by superadmins; the SUPERADMIN role itself is assigned out of
// band.
type Role string

const (
	RoleMember     Role = "MEMBER"
	RoleAdmin      Role = "ADMIN"
	RoleSuperAdmin Role = "SUPERADMIN"
)

// User is a registered member of the community.
type User struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
