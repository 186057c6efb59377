// Package domain defines rotation provenance. Every rotation appends exactly
// one history entry recording fingerprints of the old and new ciphertext,
// kept separate from the audit trail so due-date and history queries stay fast.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/envguard/internal/errors"
)

// ErrNothingToRotate indicates a batch run found no due secrets.
var ErrNothingToRotate = errors.Wrap(errors.ErrNotFound, "no due secrets to rotate")

// RotationHistoryEntry records one completed rotation of a variable.
// Append-only; removed only by the variable cascade.
type RotationHistoryEntry struct {
	ID                  uuid.UUID
	VariableID          uuid.UUID
	RotatedAt           time.Time
	OldValueFingerprint string
	NewValueFingerprint string
	RotatedBy           string
	Reason              string
}

// Failure pairs a variable key with the error that stopped its rotation.
type Failure struct {
	Key string
	Err error
}

// BatchResult reports the outcome of a batch rotation run.
type BatchResult struct {
	Rotated  int
	Failures []Failure
}

// Failed returns the number of variables whose rotation failed.
func (r *BatchResult) Failed() int {
	return len(r.Failures)
}
