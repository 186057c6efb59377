// Package domain defines the team member model. Users authenticate against a
// per-user password digest and carry a role that gates write and admin
// operations; a successful authentication becomes the audit actor.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/envguard/internal/errors"
)

// User-specific error definitions.
var (
	// ErrUserNotFound indicates no user exists with the given name.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same name already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrInvalidCredentials indicates a failed username/password authentication.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")

	// ErrInvalidRole indicates an unknown role name.
	ErrInvalidRole = errors.Wrap(errors.ErrInvalidInput, "invalid role")

	// ErrPermissionDenied indicates the user's role does not allow the operation.
	ErrPermissionDenied = errors.Wrap(errors.ErrForbidden, "permission denied")
)

// Role gates what a user may do.
type Role string

// Known roles, from least to most privileged.
const (
	RoleRead  Role = "read"
	RoleWrite Role = "write"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known kinds.
func (r Role) Valid() bool {
	switch r {
	case RoleRead, RoleWrite, RoleAdmin:
		return true
	}
	return false
}

// CanWrite reports whether the role allows mutating variables and environments.
func (r Role) CanWrite() bool {
	return r == RoleWrite || r == RoleAdmin
}

// CanAdmin reports whether the role allows team and settings management.
func (r Role) CanAdmin() bool {
	return r == RoleAdmin
}

// User is one team member.
type User struct {
	ID             uuid.UUID
	Name           string
	PasswordDigest string
	Role           Role
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
