package usecase

import "time"

// AuditLogUseCaseImpl exposes the concrete implementation to external tests.
type AuditLogUseCaseImpl = auditLogUseCase

// SetNow overrides the clock used by the use case in tests.
func (a *auditLogUseCase) SetNow(now func() time.Time) { a.now = now }
