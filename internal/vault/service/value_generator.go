// Package service provides value generation for secret rotation. Each secret
// type gets a freshly generated value in the shape callers of that type
// expect: random passwords, sk_-prefixed API tokens, raw key material.
package service

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"

	cryptoService "github.com/keywell/vault/internal/crypto/service"
	vaultDomain "github.com/keywell/vault/internal/vault/domain"
)

const passwordChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789!@#$%^&*-_=+"

// Generation defaults per secret type.
const (
	passwordLength = 32
	tokenBytes     = 24
	keyBytes       = 32
)

// ValueGenerator produces a new secret value during rotation.
type ValueGenerator interface {
	// Generate returns a fresh value appropriate to the secret type.
	Generate(secretType vaultDomain.SecretType) ([]byte, error)
}

type valueGenerator struct{}

// NewValueGenerator creates a rotation value generator covering all secret types.
func NewValueGenerator() ValueGenerator {
	return &valueGenerator{}
}

// Generate returns a fresh value appropriate to the secret type.
func (g *valueGenerator) Generate(secretType vaultDomain.SecretType) ([]byte, error) {
	switch secretType {
	case vaultDomain.SecretTypePassword, vaultDomain.SecretTypeDatabasePassword:
		password, err := generatePassword(passwordLength)
		if err != nil {
			return nil, err
		}
		return []byte(password), nil

	case vaultDomain.SecretTypeAPIKey:
		token, err := cryptoService.GenerateSecureToken(tokenBytes)
		if err != nil {
			return nil, err
		}
		return []byte("sk_" + token), nil

	case vaultDomain.SecretTypeOAuthToken:
		token, err := cryptoService.GenerateSecureToken(tokenBytes)
		if err != nil {
			return nil, err
		}
		return []byte(token), nil

	case vaultDomain.SecretTypeEncryptionKey:
		material := make([]byte, keyBytes)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("failed to generate key material: %w", err)
		}
		return material, nil

	case vaultDomain.SecretTypeGeneric:
		token, err := cryptoService.GenerateSecureToken(tokenBytes)
		if err != nil {
			return nil, err
		}
		return []byte(token), nil

	case vaultDomain.SecretTypeCertificate, vaultDomain.SecretTypeSSHKey:
		// Certificates and SSH keys are issued by external tooling; rotation
		// cannot synthesize them.
		return nil, errors.New("secret type requires an externally supplied value")
	}

	return nil, vaultDomain.ErrInvalidSecretType
}

// generatePassword creates a cryptographically secure random password drawn
// from letters, digits, and punctuation.
func generatePassword(length int) (string, error) {
	if length < 1 {
		return "", errors.New("length must be at least 1")
	}

	password := make([]byte, length)
	charsLen := big.NewInt(int64(len(passwordChars)))

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, charsLen)
		if err != nil {
			return "", fmt.Errorf("failed to generate random character: %w", err)
		}
		password[i] = passwordChars[n.Int64()]
	}

	return string(password), nil
}
