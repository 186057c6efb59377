// Package service implements the tamper-evidence primitive for the audit trail.
package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
)

// Fingerprinter computes deterministic integrity fingerprints for audit log
// entries and for stored values.
type Fingerprinter interface {
	// Fingerprint computes the entry's integrity fingerprint from its fields.
	Fingerprint(entry *auditDomain.AuditLog) string

	// ValueFingerprint computes the fingerprint of a single stored value,
	// used wherever the audit trail must reference a value without quoting it.
	ValueFingerprint(value string) string
}

type sha256Fingerprinter struct{}

// NewFingerprinter creates a SHA-256 based fingerprinter.
func NewFingerprinter() Fingerprinter {
	return &sha256Fingerprinter{}
}

// canonicalize concatenates the fingerprinted fields in their canonical order:
//
//	timestamp:action:entity_type:entity_id:old_value:new_value:user_id
//
// The order and the RFC3339Nano timestamp rendering are part of the stored
// format; changing either invalidates every previously written fingerprint.
// Fields outside this list (user name, IP, details) are not covered.
func canonicalize(entry *auditDomain.AuditLog) string {
	return strings.Join([]string{
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		string(entry.Action),
		entry.EntityType,
		entry.EntityID,
		entry.OldValue,
		entry.NewValue,
		entry.UserID,
	}, ":")
}

// Fingerprint computes the SHA-256 hex digest of the canonical entry form.
func (f *sha256Fingerprinter) Fingerprint(entry *auditDomain.AuditLog) string {
	sum := sha256.Sum256([]byte(canonicalize(entry)))
	return hex.EncodeToString(sum[:])
}

// ValueFingerprint computes the SHA-256 hex digest of a value.
func (f *sha256Fingerprinter) ValueFingerprint(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
