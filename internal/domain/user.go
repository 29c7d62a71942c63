package domain

import (
	"time"

	"github.com/google/uuid"
)

// UserRole gates what a user may do together with UserStatus.
type UserRole string

const (
	UserRoleUser   UserRole = "user"
	UserRoleSeller UserRole = "seller"
	UserRoleAdmin  UserRole = "admin"
)

// Valid reports whether r is one of the defined roles.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleUser, UserRoleSeller, UserRoleAdmin:
		return true
	}
	return false
}

// UserStatus is the account standing, mutated only by admins.
type UserStatus string

const (
	UserStatusApproved UserStatus = "approved"
	UserStatusPending  UserStatus = "pending"
	UserStatusBlocked  UserStatus = "blocked"
)

// Valid reports whether s is one of the defined statuses.
func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusApproved, UserStatusPending, UserStatusBlocked:
		return true
	}
	return false
}

// User is an account on the marketplace. Email is unique.
type User struct {
	ID           uuid.UUID  `json:"id" db:"id"`
	Name         string     `json:"name" db:"name"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password_hash"`
	Role         UserRole   `json:"role" db:"role"`
	Status       UserStatus `json:"status" db:"status"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"`
}

// RefreshToken is a persisted long-lived credential used to mint new access tokens.
type RefreshToken struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	Token     string    `json:"token" db:"token"`
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Revoked   bool      `json:"revoked" db:"revoked"`
}
