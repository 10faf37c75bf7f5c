package domain

import (
	"github.com/keywell/vault/internal/errors"
)

// Cryptographic operation error definitions.
//
// These domain-specific errors wrap standard errors from internal/errors
// to provide context for cryptographic failures. All errors are mapped to
// appropriate HTTP status codes by the error handling layer.
var (
	// ErrNoActiveKey indicates no encryption key with active status exists.
	// This is fatal for the vault: nothing can be encrypted without it.
	ErrNoActiveKey = errors.Wrap(errors.ErrInvalidState, "no active encryption key")

	// ErrKeyNotFound indicates the referenced encryption key does not exist.
	ErrKeyNotFound = errors.Wrap(errors.ErrNotFound, "encryption key not found")

	// ErrKeyDestroyed indicates the key material was irrecoverably deleted.
	// Ciphertext tagged with this key version can never be decrypted again;
	// the condition holds on every retry.
	ErrKeyDestroyed = errors.Wrap(errors.ErrInvalidState, "encryption key destroyed")

	// ErrInvalidTransition indicates a key status change the lifecycle
	// machine does not permit (e.g., resurrecting a destroyed key).
	ErrInvalidTransition = errors.Wrap(errors.ErrInvalidState, "invalid key status transition")

	// ErrUnsupportedAlgorithm indicates the requested encryption algorithm is not supported.
	ErrUnsupportedAlgorithm = errors.Wrap(errors.ErrInvalidInput, "unsupported algorithm")

	// ErrInvalidKeySize indicates the key material is not exactly 32 bytes.
	ErrInvalidKeySize = errors.Wrap(errors.ErrInvalidInput, "invalid key size")

	// ErrDecryptionFailed indicates a decryption operation failed.
	//
	// This error can occur due to a wrong key, a corrupted ciphertext, or a
	// padding/format mismatch. The specific cause is not disclosed to prevent
	// padding-oracle style information leakage.
	ErrDecryptionFailed = errors.Wrap(errors.ErrInvalidInput, "decryption failed")
)
