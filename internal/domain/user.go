package domain

import "time"

// Role represents the user's permission level in the system.
type Role string

const (
	// RoleAdmin grants full administrative access.
	RoleAdmin Role = "admin"
	// RoleUser grants standard access.
	RoleUser Role = "user"
)

// User represents an authenticated account in the system.
type User struct {
	Timestamps
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string    `json:"display_name"`
	Bio          string    `json:"bio,omitempty"`
	Role         Role      `json:"role"` // admin or user
	Active       bool      `json:"active"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// IsAdmin returns true if the user has administrative privileges.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsActive returns true if the user can log in and use the system.
func (u *User) IsActive() bool {
	return u.Active
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}
