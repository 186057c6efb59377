// Package domain defines the cryptographic domain model: the in-memory master
// key session and the error kinds shared by the key derivation and envelope
// services.
package domain

import (
	"crypto/subtle"
	"sync"
)

// KeySize is the required master key length in bytes (AES-256).
const KeySize = 32

// MasterKeySession holds the password-derived master key for the lifetime of a
// process session. The key material never leaves process memory: it is set
// after a successful password verification, handed out as scoped copies for
// the duration of a single encrypt/decrypt operation, and zeroed on Clear.
//
// Set is idempotent for the same key, so repeated unlocks with the correct
// password are no-ops. Clear does not race with in-flight operations because
// each operation works on its own copy obtained via Acquire.
type MasterKeySession struct {
	mu  sync.RWMutex
	key []byte
}

// NewMasterKeySession creates an empty (locked) session.
func NewMasterKeySession() *MasterKeySession {
	return &MasterKeySession{}
}

// Set installs derived key material into the session. Installing the same key
// again is a no-op; installing a different key replaces and zeroes the old one.
// Returns ErrInvalidKeySize if the key is not exactly KeySize bytes.
func (s *MasterKeySession) Set(key []byte) error {
	if len(key) != KeySize {
		return ErrInvalidKeySize
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.key != nil && subtle.ConstantTimeCompare(s.key, key) == 1 {
		return nil
	}

	Zero(s.key)
	s.key = make([]byte, KeySize)
	copy(s.key, key)
	return nil
}

// Acquire returns a copy of the key material scoped to a single operation.
// The caller must Zero the copy when the operation completes.
// Returns ErrMasterKeyNotSet if no key has been established.
func (s *MasterKeySession) Acquire() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.key == nil {
		return nil, ErrMasterKeyNotSet
	}

	key := make([]byte, KeySize)
	copy(key, s.key)
	return key, nil
}

// Established reports whether key material is currently installed.
func (s *MasterKeySession) Established() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.key != nil
}

// Clear zeroes and removes the key material. Safe to call on an empty session.
func (s *MasterKeySession) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	Zero(s.key)
	s.key = nil
}
