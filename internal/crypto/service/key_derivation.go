package service

import (
	"crypto/sha256"

	"github.com/allisson/go-pwdhash"
	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/allisson/envguard/internal/crypto/domain"
	apperrors "github.com/allisson/envguard/internal/errors"
)

// DefaultIterations is the PBKDF2 work factor used when none is configured.
// The value is part of the installation's key derivation contract: changing it
// changes the derived key, so it is only configurable at setup time.
const DefaultIterations = 10000

// pbkdf2KeyDeriver implements KeyDeriver using PBKDF2-SHA256.
//
// PBKDF2 is deliberately slow and iterated so that brute-force search over
// candidate passwords is expensive. The derived key is deterministic for a
// given (password, salt, iterations) triple, which is what lets every session
// unlocked with the same password decrypt previously stored ciphertext.
type pbkdf2KeyDeriver struct {
	iterations int
}

// NewKeyDeriver creates a PBKDF2-SHA256 key deriver. A non-positive iteration
// count falls back to DefaultIterations.
func NewKeyDeriver(iterations int) KeyDeriver {
	if iterations <= 0 {
		iterations = DefaultIterations
	}
	return &pbkdf2KeyDeriver{iterations: iterations}
}

// DeriveKey stretches the password into 32 bytes of key material.
func (d *pbkdf2KeyDeriver) DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, d.iterations, cryptoDomain.KeySize, sha256.New)
}

// argonPasswordHasher implements PasswordHasher using Argon2id.
//
// The persisted digest is independent from the PBKDF2-derived encryption key:
// verifying a password never reveals or reconstructs key material, and the
// digest alone is useless for decrypting stored secrets.
type argonPasswordHasher struct {
	hasher *pwdhash.PasswordHasher
}

// NewPasswordHasher creates an Argon2id password hasher.
// Uses the Moderate policy for a balance between security and performance.
func NewPasswordHasher() PasswordHasher {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with valid policy
		panic(err)
	}

	return &argonPasswordHasher{hasher: hasher}
}

// Hash returns a salted, iterated digest of the password.
func (a *argonPasswordHasher) Hash(password string) (string, error) {
	digest, err := a.hasher.Hash([]byte(password))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash master password")
	}
	return digest, nil
}

// Verify performs a constant-time comparison between a password and its digest.
func (a *argonPasswordHasher) Verify(password string, digest string) bool {
	ok, err := a.hasher.Verify([]byte(password), digest)
	if err != nil {
		return false
	}
	return ok
}
