package service

import (
	"crypto/rand"
	"encoding/hex"

	apperrors "github.com/allisson/envguard/internal/errors"
)

// DefaultSecretLength is the number of random bytes in a generated secret.
const DefaultSecretLength = 32

// randomSecretGenerator implements SecretGenerator with crypto/rand.
type randomSecretGenerator struct {
	length int
}

// NewSecretGenerator creates a generator producing hex-encoded random secrets.
// A non-positive length falls back to DefaultSecretLength (32 bytes, 64 hex chars).
func NewSecretGenerator(length int) SecretGenerator {
	if length <= 0 {
		length = DefaultSecretLength
	}
	return &randomSecretGenerator{length: length}
}

// Generate returns a new hex-encoded random secret value.
func (g *randomSecretGenerator) Generate() (string, error) {
	randomBytes := make([]byte, g.length)
	if _, err := rand.Read(randomBytes); err != nil {
		return "", apperrors.Wrap(err, "failed to generate random secret")
	}
	return hex.EncodeToString(randomBytes), nil
}
