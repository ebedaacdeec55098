package user

import (
	"time"

	"github.com/google/uuid"
)

// Role determines what a user may do across orders, shipments and devices.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleProvider Role = "provider"
	RoleShipper  Role = "shipper"
	RoleAdmin    Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleProvider, RoleShipper, RoleAdmin:
		return true
	}
	return false
}

// User represents an account in the domain.
type User struct {
	ID             uuid.UUID
	Username       string
	Email          string
	PasswordHashed string
	FullName       string
	PhoneNumber    *string
	Role           Role
	Address        *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// RefreshToken is a persisted refresh token issued alongside an access token.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
