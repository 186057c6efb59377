// Package service provides the cryptographic services behind secret storage:
// password-based key derivation, persisted password digests, and the envelope
// cipher that turns secret values into text blobs safe for a relational store.
package service

// KeyDeriver turns a master password plus the per-installation salt into
// symmetric key material.
type KeyDeriver interface {
	// DeriveKey stretches the password into a 32-byte key.
	DeriveKey(password string, salt []byte) []byte
}

// PasswordHasher produces and verifies the persisted one-way digest of the
// master password. The digest is all that is ever stored; neither the password
// nor the derived key is persisted.
type PasswordHasher interface {
	// Hash returns a salted, iterated digest of the password.
	Hash(password string) (string, error)

	// Verify reports whether the password matches the stored digest.
	// Comparison is constant-time.
	Verify(password string, digest string) bool
}

// Envelope encrypts and decrypts secret values under a session key.
type Envelope interface {
	// Encrypt seals plaintext under the key with a fresh random nonce and
	// returns the textual blob "<hexNonce>:<base64Ciphertext>".
	Encrypt(plaintext string, key []byte) (string, error)

	// Decrypt opens a blob produced by Encrypt. Fails with
	// domain.ErrInvalidCiphertext on a malformed blob and
	// domain.ErrDecryptionFailed when the key is wrong or the ciphertext
	// was tampered with.
	Decrypt(blob string, key []byte) (string, error)
}

// SecretGenerator produces replacement values for rotated secrets.
type SecretGenerator interface {
	// Generate returns a new high-entropy secret value encoded as text.
	Generate() (string, error)
}
