// Package dto provides data transfer objects for the rotation API.
package dto

import (
	"time"

	validation "github.com/jellydator/validation"
	"github.com/jellydator/validation/is"

	customValidation "github.com/keywell/vault/internal/validation"
)

// ScheduleRotationRequest is the payload for scheduling a rotation.
type ScheduleRotationRequest struct {
	SecretID     string    `json:"secret_id"`
	ScheduledAt  time.Time `json:"scheduled_at"`
	RotationType string    `json:"rotation_type"`
}

// Validate validates the schedule rotation request.
func (r ScheduleRotationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.SecretID, validation.Required, is.UUID),
		validation.Field(&r.ScheduledAt, validation.Required),
		validation.Field(&r.RotationType, validation.Required),
	)
}

// EmergencyRotateRequest is the payload for an emergency rotation sweep.
// An empty pattern matches every active secret.
type EmergencyRotateRequest struct {
	Pattern string `json:"pattern,omitempty"`
}

// Validate validates the emergency rotate request.
func (r EmergencyRotateRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Pattern, validation.When(r.Pattern != "", customValidation.GlobPattern)),
	)
}
