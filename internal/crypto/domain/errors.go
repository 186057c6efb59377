package domain

import (
	"github.com/allisson/envguard/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// so callers can branch on the error kind (errors.Is) while commands render
// the specific message.
var (
	// ErrMasterKeyNotSet indicates an operation needed the master key but no
	// session has been established yet. The caller should unlock the session
	// (verify the master password and derive the key) and retry.
	ErrMasterKeyNotSet = errors.Wrap(errors.ErrUnauthorized, "master key not set")

	// ErrInvalidMasterPassword indicates the supplied master password does not
	// match the stored digest. Surfaced before any write happens.
	ErrInvalidMasterPassword = errors.Wrap(errors.ErrUnauthorized, "invalid master password")

	// ErrInvalidCiphertext indicates a stored blob does not parse as
	// "<nonce>:<ciphertext>": wrong part count or undecodable encodings.
	ErrInvalidCiphertext = errors.Wrap(errors.ErrInvalidInput, "invalid ciphertext format")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// This error can occur due to:
	//   - Wrong master key in use (session established with a different password)
	//   - Ciphertext has been tampered with (authentication failure)
	//   - Corrupted encrypted data
	//
	// For security reasons, the specific cause is not disclosed to prevent
	// information leakage that could aid attackers.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")

	// ErrInvalidKeySize indicates the derived key is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")
)
