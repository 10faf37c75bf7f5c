// Package domain defines the core cryptographic domain models for the key
// lifecycle: versioned symmetric encryption keys, their status machine, and the
// encrypted-value envelope produced by the cipher layer.
//
// Key metadata and raw key material are modeled separately on purpose. The
// EncryptionKey entity carries metadata only; material lives behind the
// KeyMaterialStore abstraction and the two are never persisted in one record.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// KeyStatus represents the lifecycle status of an encryption key.
type KeyStatus string

const (
	// KeyStatusActive marks the key used for all new encryptions.
	// At most one key is active at a time.
	KeyStatusActive KeyStatus = "active"

	// KeyStatusRotating marks a key that has been rotated out. It no longer
	// encrypts new data but remains valid for decrypting ciphertext tagged
	// with its version until its deprecation date passes.
	KeyStatusRotating KeyStatus = "rotating"

	// KeyStatusDeprecated marks a key past its deprecation date. It can
	// still decrypt but should be retired from the fleet.
	KeyStatusDeprecated KeyStatus = "deprecated"

	// KeyStatusDestroyed marks a key whose material has been irrecoverably
	// deleted. Ciphertext tagged with a destroyed key version is permanently
	// undecryptable. Terminal.
	KeyStatusDestroyed KeyStatus = "destroyed"
)

// CanTransitionTo reports whether the status machine permits moving from s to
// next. Destroy is reachable from every non-destroyed state; everything else
// moves strictly forward.
func (s KeyStatus) CanTransitionTo(next KeyStatus) bool {
	if s == KeyStatusDestroyed {
		return false
	}
	if next == KeyStatusDestroyed {
		return true
	}

	switch s {
	case KeyStatusActive:
		return next == KeyStatusRotating
	case KeyStatusRotating:
		return next == KeyStatusDeprecated
	default:
		return false
	}
}

// EncryptionKey holds the metadata of a versioned symmetric encryption key.
// Raw key material is stored separately and referenced by the key ID.
type EncryptionKey struct {
	// ID is the unique identifier (UUIDv7).
	ID uuid.UUID
	// Version is the monotonically increasing version within the key lineage.
	Version uint
	// Algorithm is the encryption algorithm this key is used with.
	Algorithm Algorithm
	// Status is the lifecycle status of the key.
	Status KeyStatus
	// CreatedAt is the UTC timestamp when the key was stored.
	CreatedAt time.Time
	// RotatedAt is set when the key is rotated out of active service.
	RotatedAt *time.Time
	// DeprecateAt is when a rotated-out key becomes eligible for deprecation.
	DeprecateAt *time.Time
	// ExpiresAt is when the key should be rotated; the expiry monitor raises
	// notifications ahead of this date.
	ExpiresAt *time.Time
}

// ActiveKey pairs key metadata with its unwrapped material for encryption use.
// The material must be zeroed by the caller when no longer needed.
type ActiveKey struct {
	Key      EncryptionKey
	Material []byte
}

// EncryptedValue is the envelope produced by the cipher layer. KeyVersion
// records which EncryptionKey the value was encrypted under so rotation never
// invalidates old ciphertext while that key's material survives.
type EncryptedValue struct {
	Ciphertext []byte
	IV         []byte
	Salt       []byte
	KeyVersion uint
}
