// Package usecase implements the audit trail boundary consumed by the other
// modules: append, filtered query, integrity verification, and retention purge.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
)

// AppendInput carries the fields of a new audit log entry. Timestamp, id and
// fingerprint are assigned by the use case.
type AppendInput struct {
	Action     auditDomain.Action
	EntityType string
	EntityID   string
	OldValue   string
	NewValue   string
	Actor      auditDomain.Actor
	Details    map[string]string
}

// AuditLogUseCase is the audit trail surface other subsystems depend on.
// Append participates in the caller's transaction when invoked inside
// database.TxManager.WithTx.
type AuditLogUseCase interface {
	// Append writes one entry with a freshly computed integrity fingerprint.
	Append(ctx context.Context, input AppendInput) (*auditDomain.AuditLog, error)

	// Query returns entries matching the filter, newest-first.
	Query(ctx context.Context, filter auditDomain.Filter) ([]*auditDomain.AuditLog, error)

	// Verify recomputes the fingerprint of a stored entry and compares it with
	// the persisted one. A mismatch means some covered field was modified in
	// storage after the entry was written.
	Verify(ctx context.Context, id uuid.UUID) (*auditDomain.VerificationResult, error)

	// Purge deletes entries older than retentionDays and returns the count
	// removed. With dryRun it only counts. This is the sole deletion path.
	Purge(ctx context.Context, retentionDays int, dryRun bool) (int64, error)

	// Stats summarizes the audit trail.
	Stats(ctx context.Context) (*auditDomain.Stats, error)
}

// AuditLogRepository persists audit log entries. Entries are never updated.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *auditDomain.AuditLog) error
	Get(ctx context.Context, id uuid.UUID) (*auditDomain.AuditLog, error)
	List(ctx context.Context, filter auditDomain.Filter) ([]*auditDomain.AuditLog, error)
	CountOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
	Count(ctx context.Context) (int64, error)
	CountByAction(ctx context.Context) ([]auditDomain.ActionCount, error)
}
