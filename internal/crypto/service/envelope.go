package service

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"

	cryptoDomain "github.com/allisson/envguard/internal/crypto/domain"
	apperrors "github.com/allisson/envguard/internal/errors"
)

// blobSeparator splits the nonce from the ciphertext in the stored text blob.
const blobSeparator = ":"

// aesGCMEnvelope implements Envelope using AES-256-GCM.
//
// Each encryption draws a fresh random 96-bit nonce, so the same plaintext
// encrypted twice under the same key yields different blobs. The GCM
// authentication tag (appended to the ciphertext) makes tampering and
// wrong-key decryption detectable instead of silently yielding garbage.
//
// The blob is text so it round-trips through a text-oriented store:
// the nonce hex-encoded, the ciphertext base64-encoded, joined by a colon.
type aesGCMEnvelope struct{}

// NewEnvelope creates an AES-256-GCM envelope cipher.
func NewEnvelope() Envelope {
	return &aesGCMEnvelope{}
}

// newAEAD builds the GCM instance for a 32-byte key.
func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create AES cipher")
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create GCM")
	}

	return aead, nil
}

// Encrypt seals plaintext under the key and returns "<hexNonce>:<base64Ciphertext>".
func (e *aesGCMEnvelope) Encrypt(plaintext string, key []byte) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", apperrors.Wrap(err, "failed to generate nonce")
	}

	ciphertext := aead.Seal(nil, nonce, []byte(plaintext), nil)

	return hex.EncodeToString(nonce) + blobSeparator + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Decrypt opens a blob produced by Encrypt.
func (e *aesGCMEnvelope) Decrypt(blob string, key []byte) (string, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return "", err
	}

	parts := strings.Split(blob, blobSeparator)
	if len(parts) != 2 {
		return "", cryptoDomain.ErrInvalidCiphertext
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil || len(nonce) != aead.NonceSize() {
		return "", cryptoDomain.ErrInvalidCiphertext
	}

	ciphertext, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", cryptoDomain.ErrInvalidCiphertext
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", cryptoDomain.ErrDecryptionFailed
	}

	return string(plaintext), nil
}
