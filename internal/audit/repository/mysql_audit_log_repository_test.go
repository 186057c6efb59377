package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
)

func mysqlAuditLogRows(t *testing.T, entries ...*auditDomain.AuditLog) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{
		"id", "timestamp", "action", "entity_type", "entity_id", "old_value", "new_value",
		"user_id", "user_name", "ip_address", "details", "fingerprint",
	})
	for _, e := range entries {
		id, err := e.ID.MarshalBinary()
		require.NoError(t, err)
		details, err := marshalDetails(e.Details)
		require.NoError(t, err)
		rows.AddRow(
			id, e.Timestamp, string(e.Action), e.EntityType, e.EntityID, e.OldValue,
			e.NewValue, e.UserID, e.UserName, e.IPAddress, details, e.Fingerprint,
		)
	}
	return rows
}

func TestMySQLAuditLogRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLAuditLogRepository(db)
	entry := testAuditLog()

	id, err := entry.ID.MarshalBinary()
	require.NoError(t, err)
	detailsJSON, err := marshalDetails(entry.Details)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO audit_logs`).
		WithArgs(
			id, entry.Timestamp, string(entry.Action), entry.EntityType, entry.EntityID,
			entry.OldValue, entry.NewValue, entry.UserID, entry.UserName, entry.IPAddress,
			detailsJSON, entry.Fingerprint,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), entry))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMySQLAuditLogRepository_Get(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAuditLogRepository(db)
		entry := testAuditLog()

		id, err := entry.ID.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT (.+) FROM audit_logs WHERE id`).
			WithArgs(id).
			WillReturnRows(mysqlAuditLogRows(t, entry))

		got, err := repo.Get(context.Background(), entry.ID)
		require.NoError(t, err)
		assert.Equal(t, entry, got)
	})

	t.Run("not found", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewMySQLAuditLogRepository(db)
		id := uuid.Must(uuid.NewV7())

		idBinary, err := id.MarshalBinary()
		require.NoError(t, err)

		mock.ExpectQuery(`SELECT (.+) FROM audit_logs WHERE id`).
			WithArgs(idBinary).
			WillReturnRows(mysqlAuditLogRows(t))

		_, err = repo.Get(context.Background(), id)
		require.ErrorIs(t, err, auditDomain.ErrAuditLogNotFound)
	})
}

func TestMySQLAuditLogRepository_List(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLAuditLogRepository(db)
	entry := testAuditLog()
	end := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT (.+) FROM audit_logs WHERE entity_id = \? AND timestamp <= \? ORDER BY timestamp DESC`).
		WithArgs(entry.EntityID, end, 25, 0).
		WillReturnRows(mysqlAuditLogRows(t, entry))

	entries, err := repo.List(context.Background(), auditDomain.Filter{
		EntityID: entry.EntityID,
		End:      &end,
		Limit:    25,
	})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestMySQLAuditLogRepository_DeleteOlderThan(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewMySQLAuditLogRepository(db)
	cutoff := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM audit_logs WHERE timestamp <`).
		WithArgs(cutoff).
		WillReturnResult(sqlmock.NewResult(0, 9))

	deleted, err := repo.DeleteOlderThan(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(9), deleted)
}
