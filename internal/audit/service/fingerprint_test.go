package service

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	auditDomain "github.com/allisson/envguard/internal/audit/domain"
)

func sampleEntry() *auditDomain.AuditLog {
	return &auditDomain.AuditLog{
		ID:         uuid.Must(uuid.NewV7()),
		Timestamp:  time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC),
		Action:     auditDomain.ActionUpdate,
		EntityType: auditDomain.EntityVariable,
		EntityID:   "var-123",
		OldValue:   "old-ciphertext",
		NewValue:   "new-ciphertext",
		UserID:     "user-1",
		UserName:   "alice",
		IPAddress:  "localhost",
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	fingerprinter := NewFingerprinter()
	entry := sampleEntry()

	first := fingerprinter.Fingerprint(entry)
	second := fingerprinter.Fingerprint(entry)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestFingerprint_AnyCoveredFieldChangesDigest(t *testing.T) {
	fingerprinter := NewFingerprinter()
	base := fingerprinter.Fingerprint(sampleEntry())

	mutations := map[string]func(*auditDomain.AuditLog){
		"timestamp":   func(e *auditDomain.AuditLog) { e.Timestamp = e.Timestamp.Add(time.Second) },
		"action":      func(e *auditDomain.AuditLog) { e.Action = auditDomain.ActionDelete },
		"entity_type": func(e *auditDomain.AuditLog) { e.EntityType = auditDomain.EntityEnvironment },
		"entity_id":   func(e *auditDomain.AuditLog) { e.EntityID = "var-999" },
		"old_value":   func(e *auditDomain.AuditLog) { e.OldValue = "tampered" },
		"new_value":   func(e *auditDomain.AuditLog) { e.NewValue = "tampered" },
		"user_id":     func(e *auditDomain.AuditLog) { e.UserID = "user-2" },
	}

	for field, mutate := range mutations {
		entry := sampleEntry()
		mutate(entry)
		assert.NotEqual(t, base, fingerprinter.Fingerprint(entry), field)
	}
}

func TestFingerprint_UncoveredFieldsDoNotChangeDigest(t *testing.T) {
	fingerprinter := NewFingerprinter()
	base := fingerprinter.Fingerprint(sampleEntry())

	entry := sampleEntry()
	entry.UserName = "bob"
	entry.IPAddress = "10.0.0.1"
	entry.Details = map[string]string{"key": "API_KEY"}

	assert.Equal(t, base, fingerprinter.Fingerprint(entry))
}

func TestValueFingerprint(t *testing.T) {
	fingerprinter := NewFingerprinter()

	first := fingerprinter.ValueFingerprint("ciphertext-blob")
	second := fingerprinter.ValueFingerprint("ciphertext-blob")

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
	assert.NotEqual(t, first, fingerprinter.ValueFingerprint("other"))
}
