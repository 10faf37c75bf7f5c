// Package dto provides data transfer objects for the secrets API.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/keywell/vault/internal/validation"
)

// CreateSecretRequest is the payload for creating a secret.
type CreateSecretRequest struct {
	Name                 string            `json:"name"`
	Type                 string            `json:"type"`
	Value                string            `json:"value"` // base64-encoded
	RotationEnabled      bool              `json:"rotation_enabled"`
	RotationIntervalDays uint              `json:"rotation_interval_days"`
	ExpiresAt            *time.Time        `json:"expires_at,omitempty"`
	Tags                 []string          `json:"tags,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

// Validate validates the create secret request.
func (r CreateSecretRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, 255),
			customValidation.SecretName,
		),
		validation.Field(&r.Type, validation.Required),
		validation.Field(&r.Value,
			validation.Required,
			customValidation.Base64,
		),
	)
}

// UpdateSecretRequest is the payload for storing a new secret version.
type UpdateSecretRequest struct {
	Value  string `json:"value"` // base64-encoded
	Reason string `json:"reason,omitempty"`
}

// Validate validates the update secret request.
func (r UpdateSecretRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Value,
			validation.Required,
			customValidation.Base64,
		),
		validation.Field(&r.Reason, validation.Length(0, 255)),
	)
}

// RollbackSecretRequest is the payload for rolling a secret back to a
// historical version.
type RollbackSecretRequest struct {
	Version uint `json:"version"`
}

// Validate validates the rollback secret request.
func (r RollbackSecretRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Version, validation.Required, validation.Min(uint(1))),
	)
}
