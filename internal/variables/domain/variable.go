// Package domain defines the variable entity. A variable belongs to one
// environment and its key is unique within that environment. Secret variables
// hold ciphertext in Value; plain variables hold the text as given.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/envguard/internal/errors"
)

// Variable-specific error definitions.
var (
	// ErrVariableNotFound indicates no variable exists with the given environment and key.
	ErrVariableNotFound = errors.Wrap(errors.ErrNotFound, "variable not found")

	// ErrVariableAlreadyExists indicates a concurrent insert hit the (environment_id, key)
	// unique constraint.
	ErrVariableAlreadyExists = errors.Wrap(errors.ErrConflict, "variable already exists")
)

// Variable is one stored key/value pair.
//
// Encrypted mirrors IsSecret once a row is committed; it exists so a reader
// can tell whether Value is ciphertext without consulting IsSecret semantics.
type Variable struct {
	ID                 uuid.UUID
	EnvironmentID      uuid.UUID
	Key                string
	Value              string
	IsSecret           bool
	Encrypted          bool
	Tags               []string
	Description        string
	RotationEnabled    bool
	RotationPeriodDays *int
	LastRotated        *time.Time
	NextRotation       *time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// HasTag reports whether the variable carries the tag.
func (v *Variable) HasTag(tag string) bool {
	for _, t := range v.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// ListFilter narrows variable listings. Zero values mean "no constraint".
type ListFilter struct {
	// Tag keeps only variables carrying this exact tag.
	Tag string

	// KeySearch keeps only variables whose key contains this substring.
	KeySearch string

	// SecretsOnly keeps only secret variables.
	SecretsOnly bool
}
