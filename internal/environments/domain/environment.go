// Package domain defines the environment entity. Environments group variables
// (production, staging, development) and own them: deleting an environment
// cascades to every variable inside it.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/envguard/internal/errors"
)

// Environment-specific error definitions.
var (
	// ErrEnvironmentNotFound indicates no environment exists with the given id or name.
	ErrEnvironmentNotFound = errors.Wrap(errors.ErrNotFound, "environment not found")

	// ErrEnvironmentAlreadyExists indicates an environment with the same name already exists.
	ErrEnvironmentAlreadyExists = errors.Wrap(errors.ErrConflict, "environment already exists")
)

// Environment is a named group of variables.
type Environment struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
