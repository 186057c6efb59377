package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditService "github.com/allisson/envguard/internal/audit/service"
	apperrors "github.com/allisson/envguard/internal/errors"
)

// auditLogUseCase implements AuditLogUseCase.
type auditLogUseCase struct {
	repo          AuditLogRepository
	fingerprinter auditService.Fingerprinter
	now           func() time.Time
}

// NewAuditLogUseCase creates a new audit log use case instance.
func NewAuditLogUseCase(repo AuditLogRepository, fingerprinter auditService.Fingerprinter) AuditLogUseCase {
	return &auditLogUseCase{
		repo:          repo,
		fingerprinter: fingerprinter,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Append writes one entry with a freshly computed integrity fingerprint.
func (a *auditLogUseCase) Append(
	ctx context.Context,
	input AppendInput,
) (*auditDomain.AuditLog, error) {
	if !input.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", auditDomain.ErrInvalidAction, input.Action)
	}

	actor := input.Actor
	if actor.ID == "" {
		actor = auditDomain.SystemActor()
	}

	entry := &auditDomain.AuditLog{
		ID: uuid.Must(uuid.NewV7()),
		// Truncated to microseconds so the canonical RFC3339Nano rendering
		// survives a database round-trip unchanged.
		Timestamp:  a.now().Truncate(time.Microsecond),
		Action:     input.Action,
		EntityType: input.EntityType,
		EntityID:   input.EntityID,
		OldValue:   input.OldValue,
		NewValue:   input.NewValue,
		UserID:     actor.ID,
		UserName:   actor.Name,
		IPAddress:  actor.IPAddress,
		Details:    input.Details,
	}
	entry.Fingerprint = a.fingerprinter.Fingerprint(entry)

	if err := a.repo.Create(ctx, entry); err != nil {
		return nil, err
	}

	return entry, nil
}

// Query returns entries matching the filter, newest-first.
func (a *auditLogUseCase) Query(
	ctx context.Context,
	filter auditDomain.Filter,
) ([]*auditDomain.AuditLog, error) {
	if filter.Action != "" && !filter.Action.Valid() {
		return nil, fmt.Errorf("%w: %q", auditDomain.ErrInvalidAction, filter.Action)
	}
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return a.repo.List(ctx, filter)
}

// Verify recomputes a stored entry's fingerprint and compares it with the
// persisted one.
func (a *auditLogUseCase) Verify(
	ctx context.Context,
	id uuid.UUID,
) (*auditDomain.VerificationResult, error) {
	entry, err := a.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	recomputed := a.fingerprinter.Fingerprint(entry)

	return &auditDomain.VerificationResult{
		Entry:                 entry,
		Valid:                 recomputed == entry.Fingerprint,
		StoredFingerprint:     entry.Fingerprint,
		RecomputedFingerprint: recomputed,
	}, nil
}

// Purge deletes entries older than retentionDays and returns the count removed.
func (a *auditLogUseCase) Purge(ctx context.Context, retentionDays int, dryRun bool) (int64, error) {
	if retentionDays < 0 {
		return 0, apperrors.Wrap(apperrors.ErrInvalidInput, "retention days must not be negative")
	}

	cutoff := a.now().AddDate(0, 0, -retentionDays)

	if dryRun {
		return a.repo.CountOlderThan(ctx, cutoff)
	}
	return a.repo.DeleteOlderThan(ctx, cutoff)
}

// Stats summarizes the audit trail.
func (a *auditLogUseCase) Stats(ctx context.Context) (*auditDomain.Stats, error) {
	total, err := a.repo.Count(ctx)
	if err != nil {
		return nil, err
	}

	byAction, err := a.repo.CountByAction(ctx)
	if err != nil {
		return nil, err
	}

	return &auditDomain.Stats{
		TotalEntries:  total,
		CountByAction: byAction,
	}, nil
}
