// Package domain defines the audit trail domain model. Audit log entries are
// append-only: they are written once with a tamper-evident fingerprint and
// never updated, the only deletion path being the retention purge.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Action identifies the kind of mutation an audit log entry records.
type Action string

// Known audit actions. Append rejects anything outside this set.
const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionRotate Action = "rotate"
	ActionExport Action = "export"
	ActionImport Action = "import"
	ActionClone  Action = "clone"
)

// Valid reports whether the action is one of the known kinds.
func (a Action) Valid() bool {
	switch a {
	case ActionCreate, ActionUpdate, ActionDelete, ActionRotate, ActionExport, ActionImport, ActionClone:
		return true
	}
	return false
}

// Entity types referenced by audit log entries.
const (
	EntityEnvironment = "environment"
	EntityVariable    = "variable"
	EntityUser        = "user"
	EntitySettings    = "settings"
)

// Actor identifies who performed an audited operation.
type Actor struct {
	ID        string
	Name      string
	IPAddress string
}

// SystemActor is the actor recorded for operations not attributed to a user
// (scheduler runs, unauthenticated CLI usage).
func SystemActor() Actor {
	return Actor{ID: "system", Name: "system", IPAddress: "localhost"}
}

// AuditLog is one append-only entry in the audit trail.
//
// For secret variables OldValue/NewValue hold ciphertext (or a value
// fingerprint for deletions and rotations), never plaintext. Details carries
// extensible string metadata serialized only at the storage boundary.
type AuditLog struct {
	ID          uuid.UUID
	Timestamp   time.Time
	Action      Action
	EntityType  string
	EntityID    string
	OldValue    string
	NewValue    string
	UserID      string
	UserName    string
	IPAddress   string
	Details     map[string]string
	Fingerprint string
}

// Filter narrows audit log queries. Zero values mean "no constraint".
type Filter struct {
	Action     Action
	EntityType string
	EntityID   string
	Start      *time.Time
	End        *time.Time
	Limit      int
	Offset     int
}

// VerificationResult is the outcome of an integrity check on a stored entry.
type VerificationResult struct {
	Entry                 *AuditLog
	Valid                 bool
	StoredFingerprint     string
	RecomputedFingerprint string
}

// ActionCount pairs an action with how many entries recorded it.
type ActionCount struct {
	Action Action
	Count  int64
}

// Stats summarizes the audit trail for the dashboard.
type Stats struct {
	TotalEntries  int64
	CountByAction []ActionCount
}
