package domain

import (
	"github.com/keywell/vault/internal/errors"
)

// Vault error definitions.
var (
	// ErrSecretNotFound indicates the referenced secret does not exist.
	ErrSecretNotFound = errors.Wrap(errors.ErrNotFound, "secret not found")

	// ErrSecretExists indicates a secret with the same name already exists.
	ErrSecretExists = errors.Wrap(errors.ErrConflict, "secret already exists")

	// ErrSecretNotActive indicates the secret is revoked, destroyed, or
	// mid-rotation; reads reject rather than block while it holds.
	ErrSecretNotActive = errors.Wrap(errors.ErrInvalidState, "secret not active")

	// ErrVersionNotFound indicates the requested version does not exist.
	ErrVersionNotFound = errors.Wrap(errors.ErrNotFound, "secret version not found")

	// ErrInvalidTransition indicates a secret status change the lifecycle
	// machine does not permit.
	ErrInvalidTransition = errors.Wrap(errors.ErrInvalidState, "invalid secret status transition")

	// ErrInvalidSecretType indicates a secret type outside the known set.
	ErrInvalidSecretType = errors.Wrap(errors.ErrInvalidInput, "invalid secret type")
)
