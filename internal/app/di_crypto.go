package app

import (
	auditService "github.com/allisson/envguard/internal/audit/service"
	cryptoDomain "github.com/allisson/envguard/internal/crypto/domain"
	cryptoService "github.com/allisson/envguard/internal/crypto/service"
)

// MasterKeySession returns the process-wide master key session.
func (c *Container) MasterKeySession() *cryptoDomain.MasterKeySession {
	c.sessionInit.Do(func() {
		c.session = cryptoDomain.NewMasterKeySession()
	})
	return c.session
}

// Envelope returns the envelope encryption service.
func (c *Container) Envelope() cryptoService.Envelope {
	c.envelopeInit.Do(func() {
		c.envelope = cryptoService.NewEnvelope()
	})
	return c.envelope
}

// KeyDeriver returns the master key derivation service.
func (c *Container) KeyDeriver() cryptoService.KeyDeriver {
	c.keyDeriverInit.Do(func() {
		c.keyDeriver = cryptoService.NewKeyDeriver(c.config.PBKDF2Iterations)
	})
	return c.keyDeriver
}

// PasswordHasher returns the password hashing service.
func (c *Container) PasswordHasher() cryptoService.PasswordHasher {
	c.passwordHasherInit.Do(func() {
		c.passwordHasher = cryptoService.NewPasswordHasher()
	})
	return c.passwordHasher
}

// SecretGenerator returns the random secret generator.
func (c *Container) SecretGenerator() cryptoService.SecretGenerator {
	c.secretGeneratorInit.Do(func() {
		c.secretGenerator = cryptoService.NewSecretGenerator(cryptoService.DefaultSecretLength)
	})
	return c.secretGenerator
}

// Fingerprinter returns the audit fingerprint service.
func (c *Container) Fingerprinter() auditService.Fingerprinter {
	c.fingerprinterInit.Do(func() {
		c.fingerprinter = auditService.NewFingerprinter()
	})
	return c.fingerprinter
}
