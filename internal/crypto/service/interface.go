// Package service implements the cryptographic primitives used by the vault:
// symmetric encryption with derived keys, password hashing, HMAC signing,
// secure token generation, and the wrapped key-material store.
package service

import (
	"context"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
)

// Cipher performs symmetric encryption of secret values using versioned key
// material. Implementations must produce a fresh salt and IV per call.
type Cipher interface {
	// Encrypt encrypts plaintext under a key derived from material and tags
	// the envelope with keyVersion.
	Encrypt(plaintext, material []byte, keyVersion uint) (cryptoDomain.EncryptedValue, error)

	// Decrypt re-derives the key from material using the envelope's salt and
	// decrypts. Returns ErrDecryptionFailed on any padding or format mismatch.
	Decrypt(value cryptoDomain.EncryptedValue, material []byte) ([]byte, error)
}

// PasswordHasher hashes and verifies passwords with a slow key-derivation
// function. The encoded form is self-describing so parameters can evolve.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
}

// Signer produces and verifies keyed-hash signatures over request payloads.
type Signer interface {
	Sign(data, key []byte) string
	Verify(data []byte, signature string, key []byte) bool
}

// TokenHasher hashes API bearer tokens with argon2id for at-rest storage and
// performs constant-time verification.
type TokenHasher interface {
	HashToken(token string) (string, error)
	CompareToken(token, hashed string) bool
}

// KeyMaterialStore stores raw key material separately from key metadata.
// Implementations must never collocate material with the metadata record and
// must make Delete irrecoverable.
type KeyMaterialStore interface {
	Get(ctx context.Context, keyID string) ([]byte, error)
	Put(ctx context.Context, keyID string, material []byte) error
	Delete(ctx context.Context, keyID string) error
}
