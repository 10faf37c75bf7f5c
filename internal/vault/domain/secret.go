// Package domain defines the secrets vault domain model. Secrets carry an
// append-only version history: every update inserts a new SecretVersion row
// and bumps CurrentVersion; rows are never rewritten or deleted.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SecretType drives value generation during rotation.
type SecretType string

// Secret types.
const (
	SecretTypePassword         SecretType = "password"
	SecretTypeAPIKey           SecretType = "api_key"
	SecretTypeCertificate      SecretType = "certificate"
	SecretTypeEncryptionKey    SecretType = "encryption_key"
	SecretTypeDatabasePassword SecretType = "database_password"
	SecretTypeOAuthToken       SecretType = "oauth_token"
	SecretTypeSSHKey           SecretType = "ssh_key"
	SecretTypeGeneric          SecretType = "generic"
)

// IsValid reports whether the secret type is one of the known types.
func (t SecretType) IsValid() bool {
	switch t {
	case SecretTypePassword, SecretTypeAPIKey, SecretTypeCertificate,
		SecretTypeEncryptionKey, SecretTypeDatabasePassword,
		SecretTypeOAuthToken, SecretTypeSSHKey, SecretTypeGeneric:
		return true
	}
	return false
}

// SecretStatus is the lifecycle state of a secret. It doubles as a coarse
// mutual-exclusion flag: ciphertext mutations require an atomic
// active -> rotating transition first and must release it afterwards.
type SecretStatus string

// Secret statuses.
const (
	SecretStatusActive     SecretStatus = "active"
	SecretStatusRotating   SecretStatus = "rotating"
	SecretStatusDeprecated SecretStatus = "deprecated"
	SecretStatusRevoked    SecretStatus = "revoked"
	SecretStatusDestroyed  SecretStatus = "destroyed"
)

// CanTransitionTo reports whether the status machine permits moving from the
// current status to the target status. Destroyed is terminal; revoked only
// admits destruction.
func (s SecretStatus) CanTransitionTo(target SecretStatus) bool {
	if s == SecretStatusDestroyed {
		return false
	}
	if target == SecretStatusDestroyed {
		return true
	}

	switch s {
	case SecretStatusActive:
		return target == SecretStatusRotating ||
			target == SecretStatusDeprecated ||
			target == SecretStatusRevoked
	case SecretStatusRotating:
		return target == SecretStatusActive
	case SecretStatusDeprecated:
		return target == SecretStatusRevoked
	case SecretStatusRevoked:
		return false
	}
	return false
}

// Readable reports whether plaintext may be served for this status.
func (s SecretStatus) Readable() bool {
	return s == SecretStatusActive
}

// Secret is the metadata record for a named secret. The encrypted value
// lives in SecretVersion rows.
type Secret struct {
	// ID is the unique identifier for this secret.
	ID uuid.UUID
	// Name is the unique logical name used to access the secret.
	Name string
	// Type drives value generation during rotation.
	Type SecretType
	// CurrentVersion is the version number currently served for reads.
	CurrentVersion uint
	// Status is the lifecycle state.
	Status SecretStatus
	// RotationEnabled turns on automatic rescheduling after each rotation.
	RotationEnabled bool
	// RotationIntervalDays is the automatic rotation period.
	RotationIntervalDays uint
	// CreatedAt is the UTC timestamp when this secret was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last mutation.
	UpdatedAt time.Time
	// RotatingSince is set while status is rotating, for staleness scans.
	RotatingSince *time.Time
	// ExpiresAt is an optional hard expiry for the secret.
	ExpiresAt *time.Time
	// Tags are free-form labels for listing and filtering.
	Tags []string
	// Metadata holds caller-supplied key/value annotations.
	Metadata map[string]string
}

// SecretVersion is one immutable encrypted value of a secret.
type SecretVersion struct {
	// ID is the unique identifier for this version row.
	ID uuid.UUID
	// SecretID references the owning secret.
	SecretID uuid.UUID
	// VersionNumber is monotonic per secret, starting at 1.
	VersionNumber uint
	// Ciphertext is the encrypted secret value.
	Ciphertext []byte
	// IV is the AES-CBC initialization vector for this version.
	IV []byte
	// Salt is the key-derivation salt for this version.
	Salt []byte
	// KeyVersion records which encryption key encrypted this version.
	KeyVersion uint
	// IsCurrent marks the single version serving reads. Exactly one version
	// per secret has it set, and its number equals Secret.CurrentVersion.
	IsCurrent bool
	// CreatedBy describes the actor that produced this version.
	CreatedBy string
	// CreatedAt is the UTC timestamp when this version was created.
	CreatedAt time.Time
	// ChangeReason documents why the version was created.
	ChangeReason *string
}
