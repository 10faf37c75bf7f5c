// Package dto provides data transfer objects for the access-control API.
package dto

import (
	validation "github.com/jellydator/validation"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	accessUseCase "github.com/keywell/vault/internal/access/usecase"
	customValidation "github.com/keywell/vault/internal/validation"
)

// PolicyRequest is the payload for creating or updating a policy.
type PolicyRequest struct {
	PolicyName        string            `json:"policy_name"`
	SecretPattern     string            `json:"secret_pattern"`
	AllowedUsers      []string          `json:"allowed_users,omitempty"`
	AllowedRoles      []string          `json:"allowed_roles,omitempty"`
	AllowedServices   []string          `json:"allowed_services,omitempty"`
	AllowedOperations []string          `json:"allowed_operations"`
	Conditions        map[string]string `json:"conditions,omitempty"`
	Priority          int               `json:"priority"`
	Enabled           bool              `json:"enabled"`
}

// Validate validates the policy request.
func (r PolicyRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PolicyName,
			validation.Required,
			validation.Length(1, 255),
			customValidation.NoWhitespace,
		),
		validation.Field(&r.SecretPattern,
			validation.Required,
			customValidation.GlobPattern,
		),
		validation.Field(&r.AllowedOperations,
			validation.Required,
			validation.Length(1, 0),
		),
	)
}

// ToConfig converts the request to the use case policy config.
func (r PolicyRequest) ToConfig() accessUseCase.PolicyConfig {
	return accessUseCase.PolicyConfig{
		PolicyName:        r.PolicyName,
		SecretPattern:     r.SecretPattern,
		AllowedUsers:      r.AllowedUsers,
		AllowedRoles:      r.AllowedRoles,
		AllowedServices:   r.AllowedServices,
		AllowedOperations: MapOperations(r.AllowedOperations),
		Conditions:        r.Conditions,
		Priority:          r.Priority,
		Enabled:           r.Enabled,
	}
}

// GrantAccessRequest is the payload for granting a user access to a pattern.
type GrantAccessRequest struct {
	UserID        string   `json:"user_id"`
	SecretPattern string   `json:"secret_pattern"`
	Operations    []string `json:"operations"`
}

// Validate validates the grant access request.
func (r GrantAccessRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.SecretPattern, validation.Required, customValidation.GlobPattern),
		validation.Field(&r.Operations, validation.Required, validation.Length(1, 0)),
	)
}

// RevokeAccessRequest is the payload for revoking a previously granted access.
type RevokeAccessRequest struct {
	UserID        string `json:"user_id"`
	SecretPattern string `json:"secret_pattern"`
}

// Validate validates the revoke access request.
func (r RevokeAccessRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.UserID, validation.Required, customValidation.NotBlank),
		validation.Field(&r.SecretPattern, validation.Required, customValidation.GlobPattern),
	)
}

// MapOperations converts operation strings to domain operations. Validity is
// checked by the use case.
func MapOperations(operations []string) []accessDomain.Operation {
	result := make([]accessDomain.Operation, 0, len(operations))
	for _, op := range operations {
		result = append(result, accessDomain.Operation(op))
	}
	return result
}
