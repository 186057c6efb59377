package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
)

// RunAuditView lists audit log entries matching the filter, newest-first.
func RunAuditView(
	ctx context.Context,
	auditLog auditUsecase.AuditLogUseCase,
	w io.Writer,
	filter auditDomain.Filter,
	format string,
) error {
	entries, err := auditLog.Query(ctx, filter)
	if err != nil {
		return fmt.Errorf("failed to query audit logs: %w", err)
	}

	if format == "json" {
		items := make([]map[string]any, 0, len(entries))
		for _, entry := range entries {
			items = append(items, auditEntrySummary(entry))
		}
		return printJSON(w, items)
	}

	if len(entries) == 0 {
		fmt.Fprintln(w, "No audit log entries found")
		return nil
	}
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			entry.Timestamp.Format(time.RFC3339),
			entry.Action,
			entry.EntityType,
			entry.EntityID,
			entry.UserName,
		)
	}
	return nil
}

// RunAuditVerify recomputes a stored entry's fingerprint and reports whether
// it still matches the persisted one.
func RunAuditVerify(
	ctx context.Context,
	auditLog auditUsecase.AuditLogUseCase,
	w io.Writer,
	rawID string,
	format string,
) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid audit log id %q: %w", rawID, err)
	}

	result, err := auditLog.Verify(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to verify audit log: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{
			"id":                     rawID,
			"valid":                  result.Valid,
			"stored_fingerprint":     result.StoredFingerprint,
			"recomputed_fingerprint": result.RecomputedFingerprint,
		})
	}

	if result.Valid {
		fmt.Fprintf(w, "Entry %s is intact\n", rawID)
	} else {
		fmt.Fprintf(w, "Entry %s FAILED verification: stored %s, recomputed %s\n",
			rawID, result.StoredFingerprint, result.RecomputedFingerprint)
	}
	return nil
}

// RunAuditClean deletes audit logs older than the specified number of days.
// Supports dry-run mode to preview the deletion count.
func RunAuditClean(
	ctx context.Context,
	auditLog auditUsecase.AuditLogUseCase,
	logger *slog.Logger,
	w io.Writer,
	days int,
	dryRun bool,
	format string,
) error {
	if days < 0 {
		return fmt.Errorf("days must be a positive number, got: %d", days)
	}

	logger.Info("cleaning audit logs",
		slog.Int("days", days),
		slog.Bool("dry_run", dryRun),
	)

	count, err := auditLog.Purge(ctx, days, dryRun)
	if err != nil {
		return fmt.Errorf("failed to purge audit logs: %w", err)
	}

	if format == "json" {
		return printJSON(w, map[string]any{
			"count":   count,
			"days":    days,
			"dry_run": dryRun,
		})
	}

	if dryRun {
		fmt.Fprintf(w, "Dry-run mode: Would delete %d audit log(s) older than %d day(s)\n", count, days)
	} else {
		fmt.Fprintf(w, "Successfully deleted %d audit log(s) older than %d day(s)\n", count, days)
	}
	return nil
}

// auditEntrySummary builds the JSON representation of an audit log entry.
func auditEntrySummary(entry *auditDomain.AuditLog) map[string]any {
	summary := map[string]any{
		"id":          entry.ID.String(),
		"timestamp":   entry.Timestamp.Format(time.RFC3339Nano),
		"action":      entry.Action,
		"entity_type": entry.EntityType,
		"entity_id":   entry.EntityID,
		"user_id":     entry.UserID,
		"user_name":   entry.UserName,
		"fingerprint": entry.Fingerprint,
	}
	if len(entry.Details) > 0 {
		summary["details"] = entry.Details
	}
	return summary
}
