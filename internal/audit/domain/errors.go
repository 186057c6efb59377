package domain

import (
	"github.com/allisson/envguard/internal/errors"
)

// Audit-specific error definitions.
var (
	// ErrAuditLogNotFound indicates no audit log entry exists with the given id.
	ErrAuditLogNotFound = errors.Wrap(errors.ErrNotFound, "audit log not found")

	// ErrInvalidAction indicates an attempt to append an entry with an unknown action.
	ErrInvalidAction = errors.Wrap(errors.ErrInvalidInput, "invalid audit action")
)
