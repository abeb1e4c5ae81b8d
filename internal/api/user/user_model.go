package user

import (
	"time"

	"github.com/google/uuid"
)

// Role is the access level stored on every user record.
type Role string

const (
	RoleUser        Role = "user"
	RoleAdmin       Role = "admin"
	RoleSuperAdmin  Role = "superadmin"
	RoleDeactivated Role = "deactivated"
	RoleUnverified  Role = "unverified"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin, RoleDeactivated, RoleUnverified:
		return true
	}
	return false
}

// User is the identity record held in the users store. Users are never
// physically deleted; deactivation is a flag flip.
type User struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	Email          *string   `json:"email,omitempty"`
	UserAvatar     *string   `json:"user_avatar,omitempty"`
	UserCountry    *string   `json:"user_country,omitempty"`
	TeamName       *string   `json:"team_name,omitempty"`
	JobName        *string   `json:"job_name,omitempty"`
	Role           Role      `json:"role"`
	HashedPassword string    `json:"-"`
	Deactivated    bool      `json:"deactivated"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateUserRequest is the JSON body for user registration.
type CreateUserRequest struct {
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	Email       *string `json:"email,omitempty"`
	UserAvatar  *string `json:"user_avatar,omitempty"`
	UserCountry *string `json:"user_country,omitempty"`
	TeamName    *string `json:"team_name,omitempty"`
	JobName     *string `json:"job_name,omitempty"`
}
