package usecase

import (
	"context"
	"time"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	"github.com/allisson/envguard/internal/metrics"
	"github.com/allisson/envguard/internal/variables/domain"
)

// secretStoreWithMetrics decorates SecretStore with metrics instrumentation.
type secretStoreWithMetrics struct {
	next    SecretStore
	metrics metrics.BusinessMetrics
}

// NewSecretStoreWithMetrics wraps a SecretStore with metrics recording.
func NewSecretStoreWithMetrics(store SecretStore, m metrics.BusinessMetrics) SecretStore {
	return &secretStoreWithMetrics{
		next:    store,
		metrics: m,
	}
}

func (s *secretStoreWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	s.metrics.RecordOperation(ctx, "variables", operation, status)
	s.metrics.RecordDuration(ctx, "variables", operation, time.Since(start), status)
}

// Set records metrics for variable upsert operations.
func (s *secretStoreWithMetrics) Set(ctx context.Context, input SetVariableInput) (*domain.Variable, error) {
	start := time.Now()
	variable, err := s.next.Set(ctx, input)
	s.record(ctx, "variable_set", start, err)
	return variable, err
}

// Get records metrics for variable read operations.
func (s *secretStoreWithMetrics) Get(
	ctx context.Context,
	environment, key string,
	reveal bool,
) (*domain.Variable, error) {
	start := time.Now()
	variable, err := s.next.Get(ctx, environment, key, reveal)
	s.record(ctx, "variable_get", start, err)
	return variable, err
}

// Delete records metrics for variable deletion operations.
func (s *secretStoreWithMetrics) Delete(
	ctx context.Context,
	environment, key string,
	actor auditDomain.Actor,
) error {
	start := time.Now()
	err := s.next.Delete(ctx, environment, key, actor)
	s.record(ctx, "variable_delete", start, err)
	return err
}

// List records metrics for variable listing operations.
func (s *secretStoreWithMetrics) List(
	ctx context.Context,
	environment string,
	filter domain.ListFilter,
) ([]*domain.Variable, error) {
	start := time.Now()
	variables, err := s.next.List(ctx, environment, filter)
	s.record(ctx, "variable_list", start, err)
	return variables, err
}
