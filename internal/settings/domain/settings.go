// Package domain defines the per-installation settings row. There is exactly
// one settings row per store; it is created by Initialize and holds the salt
// and master password digest everything else depends on.
package domain

import (
	"time"

	"github.com/allisson/envguard/internal/errors"
)

// Settings-specific error definitions.
var (
	// ErrNotInitialized indicates the store has no settings row yet.
	ErrNotInitialized = errors.Wrap(errors.ErrNotFound, "store not initialized")

	// ErrAlreadyInitialized indicates Initialize ran on an initialized store.
	ErrAlreadyInitialized = errors.Wrap(errors.ErrConflict, "store already initialized")
)

// AppSettings is the single per-installation settings row.
//
// Salt is the hex-encoded random salt fed to key derivation.
// MasterPasswordDigest is the Argon2id digest used for verification; neither
// the password nor the derived key is ever persisted.
type AppSettings struct {
	ProjectName               string
	Salt                      string
	MasterPasswordDigest      string
	DefaultEnvironment        string
	RotationDefaultPeriodDays int
	AuditRetentionDays        int
	CreatedAt                 time.Time
	UpdatedAt                 time.Time
}
