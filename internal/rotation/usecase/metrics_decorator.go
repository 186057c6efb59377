package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/metrics"
	"github.com/allisson/envguard/internal/rotation/domain"
	varDomain "github.com/allisson/envguard/internal/variables/domain"
)

// engineWithMetrics decorates Engine with metrics instrumentation.
type engineWithMetrics struct {
	next    Engine
	metrics metrics.BusinessMetrics
}

// NewEngineWithMetrics wraps an Engine with metrics recording.
func NewEngineWithMetrics(engine Engine, m metrics.BusinessMetrics) Engine {
	return &engineWithMetrics{
		next:    engine,
		metrics: m,
	}
}

func (e *engineWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	e.metrics.RecordOperation(ctx, "rotation", operation, status)
	e.metrics.RecordDuration(ctx, "rotation", operation, time.Since(start), status)
}

// DueSecrets records metrics for due-secret listing operations.
func (e *engineWithMetrics) DueSecrets(
	ctx context.Context,
	environment string,
	includeNonExpired bool,
) ([]*varDomain.Variable, error) {
	start := time.Now()
	variables, err := e.next.DueSecrets(ctx, environment, includeNonExpired)
	e.record(ctx, "due_secrets", start, err)
	return variables, err
}

// Rotate records metrics for single rotation operations.
func (e *engineWithMetrics) Rotate(
	ctx context.Context,
	environment, key, reason string,
	actor auditDomain.Actor,
) (*varDomain.Variable, error) {
	start := time.Now()
	variable, err := e.next.Rotate(ctx, environment, key, reason, actor)
	e.record(ctx, "rotate", start, err)
	return variable, err
}

// RotateBatch records metrics for batch rotation runs, including per-run
// success and failure counts.
func (e *engineWithMetrics) RotateBatch(
	ctx context.Context,
	environment, reason string,
	actor auditDomain.Actor,
) (*domain.BatchResult, error) {
	start := time.Now()
	result, err := e.next.RotateBatch(ctx, environment, reason, actor)
	e.record(ctx, "rotate_batch", start, err)

	if result != nil {
		for i := 0; i < result.Rotated; i++ {
			e.metrics.RecordOperation(ctx, "rotation", "rotate_batch_item", "success")
		}
		for range result.Failures {
			e.metrics.RecordOperation(ctx, "rotation", "rotate_batch_item", "error")
		}
	}

	return result, err
}

// Schedule records metrics for bulk scheduling operations.
func (e *engineWithMetrics) Schedule(
	ctx context.Context,
	environment string,
	enable bool,
	defaultPeriodDays *int,
	actor auditDomain.Actor,
) (int64, error) {
	start := time.Now()
	affected, err := e.next.Schedule(ctx, environment, enable, defaultPeriodDays, actor)
	e.record(ctx, "schedule", start, err)
	return affected, err
}

// History records metrics for rotation history queries.
func (e *engineWithMetrics) History(
	ctx context.Context,
	environment, key string,
	limit int,
) ([]*domain.RotationHistoryEntry, error) {
	start := time.Now()
	entries, err := e.next.History(ctx, environment, key, limit)
	e.record(ctx, "history", start, err)
	return entries, err
}
