package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/allisson/go-pwdhash"

	apperrors "github.com/keywell/vault/internal/errors"
)

// GenerateSecureToken returns a hex-encoded string of length cryptographically
// secure random bytes. The returned string is 2*length characters.
func GenerateSecureToken(length int) (string, error) {
	if length <= 0 {
		return "", apperrors.Wrap(apperrors.ErrInvalidInput, "token length must be positive")
	}

	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	return hex.EncodeToString(b), nil
}

// GenerateKeyMaterial returns 32 bytes of cryptographically secure random key material.
func GenerateKeyMaterial() ([]byte, error) {
	material := make([]byte, 32)
	if _, err := rand.Read(material); err != nil {
		return nil, fmt.Errorf("failed to generate key material: %w", err)
	}
	return material, nil
}

// tokenHasher implements TokenHasher using Argon2id.
type tokenHasher struct {
	hasher *pwdhash.PasswordHasher
}

// NewTokenHasher creates a TokenHasher for API bearer tokens.
// Uses the Moderate policy for a balance between security and performance.
func NewTokenHasher() TokenHasher {
	hasher, err := pwdhash.New(
		pwdhash.WithPolicy(pwdhash.PolicyModerate),
	)
	if err != nil {
		// This should never happen with a valid policy
		panic(err)
	}

	return &tokenHasher{hasher: hasher}
}

// HashToken hashes a plain bearer token using Argon2id.
func (t *tokenHasher) HashToken(token string) (string, error) {
	hashed, err := t.hasher.Hash([]byte(token))
	if err != nil {
		return "", apperrors.Wrap(err, "failed to hash token")
	}
	return hashed, nil
}

// CompareToken performs a constant-time comparison between a plain token and its hash.
func (t *tokenHasher) CompareToken(token, hashed string) bool {
	ok, err := t.hasher.Verify([]byte(token), hashed)
	if err != nil {
		return false
	}
	return ok
}
