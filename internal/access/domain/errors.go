package domain

import (
	"github.com/keywell/vault/internal/errors"
)

// Access-control error definitions.
var (
	// ErrAccessDenied indicates no enabled policy matched the request.
	// Denials are always audit-logged and never retried automatically.
	ErrAccessDenied = errors.Wrap(errors.ErrForbidden, "access denied")

	// ErrPolicyNotFound indicates the referenced policy does not exist.
	ErrPolicyNotFound = errors.Wrap(errors.ErrNotFound, "access policy not found")

	// ErrPolicyExists indicates a policy with the same name already exists.
	ErrPolicyExists = errors.Wrap(errors.ErrConflict, "access policy already exists")

	// ErrInvalidPattern indicates the secret pattern could not be compiled.
	ErrInvalidPattern = errors.Wrap(errors.ErrInvalidInput, "invalid secret pattern")

	// ErrInvalidOperation indicates an operation outside the known set.
	ErrInvalidOperation = errors.Wrap(errors.ErrInvalidInput, "invalid operation")
)
