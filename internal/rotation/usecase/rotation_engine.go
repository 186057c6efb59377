// Package usecase implements the rotation engine: due-secret listing,
// single and batch rotation, bulk scheduling, and history queries.
package usecase

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/google/uuid"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
	auditService "github.com/allisson/envguard/internal/audit/service"
	auditUsecase "github.com/allisson/envguard/internal/audit/usecase"
	cryptoDomain "github.com/allisson/envguard/internal/crypto/domain"
	cryptoService "github.com/allisson/envguard/internal/crypto/service"
	"github.com/allisson/envguard/internal/database"
	envDomain "github.com/allisson/envguard/internal/environments/domain"
	apperrors "github.com/allisson/envguard/internal/errors"
	"github.com/allisson/envguard/internal/rotation/domain"
	settingsDomain "github.com/allisson/envguard/internal/settings/domain"
	appValidation "github.com/allisson/envguard/internal/validation"
	varDomain "github.com/allisson/envguard/internal/variables/domain"
)

// Engine defines the interface for rotation business logic operations.
type Engine interface {
	DueSecrets(ctx context.Context, environment string, includeNonExpired bool) ([]*varDomain.Variable, error)
	Rotate(ctx context.Context, environment, key, reason string, actor auditDomain.Actor) (*varDomain.Variable, error)
	RotateBatch(ctx context.Context, environment, reason string, actor auditDomain.Actor) (*domain.BatchResult, error)
	Schedule(ctx context.Context, environment string, enable bool, defaultPeriodDays *int, actor auditDomain.Actor) (int64, error)
	History(ctx context.Context, environment, key string, limit int) ([]*domain.RotationHistoryEntry, error)
}

// VariableRepository defines the variable repository operations the engine needs.
type VariableRepository interface {
	GetByKey(ctx context.Context, environmentID uuid.UUID, key string) (*varDomain.Variable, error)
	Update(ctx context.Context, variable *varDomain.Variable) error
	ListDue(ctx context.Context, environmentID uuid.UUID, now time.Time, includeNonExpired bool) ([]*varDomain.Variable, error)
	SetRotationEnabled(ctx context.Context, environmentID uuid.UUID, enabled bool, defaultPeriodDays *int, now time.Time) (int64, error)
}

// HistoryRepository defines rotation history repository operations.
type HistoryRepository interface {
	Create(ctx context.Context, entry *domain.RotationHistoryEntry) error
	ListByVariable(ctx context.Context, variableID uuid.UUID, limit int) ([]*domain.RotationHistoryEntry, error)
	ListByEnvironment(ctx context.Context, environmentID uuid.UUID, limit int) ([]*domain.RotationHistoryEntry, error)
}

// EnvironmentGetter resolves environment names.
type EnvironmentGetter interface {
	GetByName(ctx context.Context, name string) (*envDomain.Environment, error)
}

// SettingsGetter provides the installation defaults recorded at init.
type SettingsGetter interface {
	Get(ctx context.Context) (*settingsDomain.AppSettings, error)
}

// RotationEngine handles rotation-related business logic.
type RotationEngine struct {
	txManager     database.TxManager
	varRepo       VariableRepository
	historyRepo   HistoryRepository
	envRepo       EnvironmentGetter
	settingsRepo  SettingsGetter
	session       *cryptoDomain.MasterKeySession
	envelope      cryptoService.Envelope
	generator     cryptoService.SecretGenerator
	fingerprinter auditService.Fingerprinter
	auditLog      auditUsecase.AuditLogUseCase
	limiter       *rate.Limiter
	now           func() time.Time
}

// NewRotationEngine creates a new RotationEngine. batchPerSec paces batch
// rotation so a large due set does not monopolize the database.
func NewRotationEngine(
	txManager database.TxManager,
	varRepo VariableRepository,
	historyRepo HistoryRepository,
	envRepo EnvironmentGetter,
	settingsRepo SettingsGetter,
	session *cryptoDomain.MasterKeySession,
	envelope cryptoService.Envelope,
	generator cryptoService.SecretGenerator,
	fingerprinter auditService.Fingerprinter,
	auditLog auditUsecase.AuditLogUseCase,
	batchPerSec float64,
) *RotationEngine {
	return &RotationEngine{
		txManager:     txManager,
		varRepo:       varRepo,
		historyRepo:   historyRepo,
		envRepo:       envRepo,
		settingsRepo:  settingsRepo,
		session:       session,
		envelope:      envelope,
		generator:     generator,
		fingerprinter: fingerprinter,
		auditLog:      auditLog,
		limiter:       rate.NewLimiter(rate.Limit(batchPerSec), 1),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// DueSecrets lists the rotation-enabled secrets of an environment that are due
// (next_rotation unset or passed). With includeNonExpired it lists every
// rotation-enabled secret.
func (e *RotationEngine) DueSecrets(
	ctx context.Context,
	environment string,
	includeNonExpired bool,
) ([]*varDomain.Variable, error) {
	env, err := e.envRepo.GetByName(ctx, environment)
	if err != nil {
		return nil, err
	}
	return e.varRepo.ListDue(ctx, env.ID, e.now(), includeNonExpired)
}

// Rotate replaces one variable's secret value with a freshly generated one.
func (e *RotationEngine) Rotate(
	ctx context.Context,
	environment, key, reason string,
	actor auditDomain.Actor,
) (*varDomain.Variable, error) {
	env, err := e.envRepo.GetByName(ctx, environment)
	if err != nil {
		return nil, err
	}

	variable, err := e.varRepo.GetByKey(ctx, env.ID, key)
	if err != nil {
		return nil, err
	}

	if err := e.rotateVariable(ctx, env.Name, variable, reason, actor); err != nil {
		return nil, err
	}
	return variable, nil
}

// rotateVariable performs one rotation: generate a replacement, encrypt it,
// advance the schedule, and commit the row, a history entry, and one 'rotate'
// audit entry in a single transaction. Encryption runs before any persistence,
// so a locked session or a generation failure leaves the variable untouched.
func (e *RotationEngine) rotateVariable(
	ctx context.Context,
	environmentName string,
	variable *varDomain.Variable,
	reason string,
	actor auditDomain.Actor,
) error {
	if !variable.IsSecret {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "only secret variables can be rotated")
	}

	sessionKey, err := e.session.Acquire()
	if err != nil {
		return err
	}
	defer cryptoDomain.Zero(sessionKey)

	replacement, err := e.generator.Generate()
	if err != nil {
		return err
	}

	newValue, err := e.envelope.Encrypt(replacement, sessionKey)
	if err != nil {
		return err
	}

	now := e.now()
	oldValue := variable.Value

	variable.Value = newValue
	variable.Encrypted = true
	variable.LastRotated = &now
	variable.UpdatedAt = now
	if variable.RotationPeriodDays != nil {
		next := now.AddDate(0, 0, *variable.RotationPeriodDays)
		variable.NextRotation = &next
	} else {
		// On-demand only: no period, no next due time.
		variable.NextRotation = nil
	}

	historyEntry := &domain.RotationHistoryEntry{
		ID:                  uuid.Must(uuid.NewV7()),
		VariableID:          variable.ID,
		RotatedAt:           now,
		OldValueFingerprint: e.fingerprinter.ValueFingerprint(oldValue),
		NewValueFingerprint: e.fingerprinter.ValueFingerprint(newValue),
		RotatedBy:           actor.Name,
		Reason:              reason,
	}

	return e.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := e.varRepo.Update(ctx, variable); err != nil {
			return err
		}

		if err := e.historyRepo.Create(ctx, historyEntry); err != nil {
			return err
		}

		_, err := e.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionRotate,
			EntityType: auditDomain.EntityVariable,
			EntityID:   environmentName + "/" + variable.Key,
			OldValue:   oldValue,
			NewValue:   newValue,
			Actor:      actor,
			Details:    map[string]string{"reason": reason},
		})
		return err
	})
}

// RotateBatch rotates every due secret in an environment sequentially. One
// variable's failure is collected and does not stop the batch; cancellation is
// honored between items so an interrupted run leaves no partial per-variable
// state. An empty due set returns ErrNothingToRotate.
func (e *RotationEngine) RotateBatch(
	ctx context.Context,
	environment, reason string,
	actor auditDomain.Actor,
) (*domain.BatchResult, error) {
	env, err := e.envRepo.GetByName(ctx, environment)
	if err != nil {
		return nil, err
	}

	due, err := e.varRepo.ListDue(ctx, env.ID, e.now(), false)
	if err != nil {
		return nil, err
	}
	if len(due) == 0 {
		return nil, domain.ErrNothingToRotate
	}

	result := &domain.BatchResult{}
	for _, variable := range due {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := e.limiter.Wait(ctx); err != nil {
			return result, err
		}

		if err := e.rotateVariable(ctx, env.Name, variable, reason, actor); err != nil {
			result.Failures = append(result.Failures, domain.Failure{Key: variable.Key, Err: err})
			continue
		}
		result.Rotated++
	}

	return result, nil
}

// Schedule bulk-toggles rotation on every secret variable in an environment
// without rotating anything, and records the toggle in the audit trail. When
// enabling without an explicit period, the installation default recorded at
// init applies, keeping every rotation-enabled secret with a period set.
func (e *RotationEngine) Schedule(
	ctx context.Context,
	environment string,
	enable bool,
	defaultPeriodDays *int,
	actor auditDomain.Actor,
) (int64, error) {
	if err := appValidation.WrapValidationError(
		appValidation.RotationPeriod{}.Validate(defaultPeriodDays),
	); err != nil {
		return 0, err
	}

	if enable && defaultPeriodDays == nil {
		stored, err := e.settingsRepo.Get(ctx)
		if err != nil {
			return 0, err
		}
		days := stored.RotationDefaultPeriodDays
		defaultPeriodDays = &days
	}

	env, err := e.envRepo.GetByName(ctx, environment)
	if err != nil {
		return 0, err
	}

	var affected int64
	err = e.txManager.WithTx(ctx, func(ctx context.Context) error {
		affected, err = e.varRepo.SetRotationEnabled(ctx, env.ID, enable, defaultPeriodDays, e.now())
		if err != nil {
			return err
		}

		details := map[string]string{"rotation_enabled": boolString(enable)}
		_, err = e.auditLog.Append(ctx, auditUsecase.AppendInput{
			Action:     auditDomain.ActionUpdate,
			EntityType: auditDomain.EntityEnvironment,
			EntityID:   env.Name,
			Actor:      actor,
			Details:    details,
		})
		return err
	})
	if err != nil {
		return 0, err
	}

	return affected, nil
}

// History retrieves rotation history newest-first. With a key it covers that
// variable; without one it covers the whole environment.
func (e *RotationEngine) History(
	ctx context.Context,
	environment, key string,
	limit int,
) ([]*domain.RotationHistoryEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	env, err := e.envRepo.GetByName(ctx, environment)
	if err != nil {
		return nil, err
	}

	if key == "" {
		return e.historyRepo.ListByEnvironment(ctx, env.ID, limit)
	}

	variable, err := e.varRepo.GetByKey(ctx, env.ID, key)
	if err != nil {
		return nil, err
	}
	return e.historyRepo.ListByVariable(ctx, variable.ID, limit)
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
