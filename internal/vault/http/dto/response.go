package dto

import (
	"encoding/base64"
	"time"

	vaultDomain "github.com/keywell/vault/internal/vault/domain"
	vaultUseCase "github.com/keywell/vault/internal/vault/usecase"
)

// SecretResponse represents secret metadata in API responses. The plaintext
// value is never included here.
type SecretResponse struct {
	ID                   string            `json:"id"`
	Name                 string            `json:"name"`
	Type                 string            `json:"type"`
	CurrentVersion       uint              `json:"current_version"`
	Status               string            `json:"status"`
	RotationEnabled      bool              `json:"rotation_enabled"`
	RotationIntervalDays uint              `json:"rotation_interval_days"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
	ExpiresAt            *time.Time        `json:"expires_at,omitempty"`
	Tags                 []string          `json:"tags,omitempty"`
	Metadata             map[string]string `json:"metadata,omitempty"`
}

// SecretValueResponse carries a decrypted secret value.
// SECURITY: Must be transmitted over HTTPS in production.
type SecretValueResponse struct {
	Name    string `json:"name"`
	Version uint   `json:"version"`
	Value   string `json:"value"` // base64-encoded plaintext
}

// SecretVersionResponse represents version metadata without ciphertext.
type SecretVersionResponse struct {
	VersionNumber uint      `json:"version_number"`
	IsCurrent     bool      `json:"is_current"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
	ChangeReason  *string   `json:"change_reason,omitempty"`
}

// ListSecretsResponse is a paginated secret metadata list.
type ListSecretsResponse struct {
	Secrets []SecretResponse `json:"secrets"`
	Count   int              `json:"count"`
}

// ListSecretVersionsResponse is the version history of one secret.
type ListSecretVersionsResponse struct {
	Versions []SecretVersionResponse `json:"versions"`
	Count    int                     `json:"count"`
}

// MapSecretToResponse converts a domain secret to an API response.
func MapSecretToResponse(secret *vaultDomain.Secret) SecretResponse {
	return SecretResponse{
		ID:                   secret.ID.String(),
		Name:                 secret.Name,
		Type:                 string(secret.Type),
		CurrentVersion:       secret.CurrentVersion,
		Status:               string(secret.Status),
		RotationEnabled:      secret.RotationEnabled,
		RotationIntervalDays: secret.RotationIntervalDays,
		CreatedAt:            secret.CreatedAt,
		UpdatedAt:            secret.UpdatedAt,
		ExpiresAt:            secret.ExpiresAt,
		Tags:                 secret.Tags,
		Metadata:             secret.Metadata,
	}
}

// MapSecretValueToResponse converts a decrypted read result to an API response.
// The caller must zero the plaintext after the response is written.
func MapSecretValueToResponse(value *vaultUseCase.SecretValue) SecretValueResponse {
	return SecretValueResponse{
		Name:    value.Secret.Name,
		Version: value.Version,
		Value:   base64.StdEncoding.EncodeToString(value.Plaintext),
	}
}

// MapSecretsToListResponse converts domain secrets to a paginated list response.
func MapSecretsToListResponse(secrets []*vaultDomain.Secret) ListSecretsResponse {
	responses := make([]SecretResponse, 0, len(secrets))
	for _, secret := range secrets {
		responses = append(responses, MapSecretToResponse(secret))
	}
	return ListSecretsResponse{Secrets: responses, Count: len(responses)}
}

// MapVersionsToListResponse converts version rows to a list response.
func MapVersionsToListResponse(versions []*vaultDomain.SecretVersion) ListSecretVersionsResponse {
	responses := make([]SecretVersionResponse, 0, len(versions))
	for _, version := range versions {
		responses = append(responses, SecretVersionResponse{
			VersionNumber: version.VersionNumber,
			IsCurrent:     version.IsCurrent,
			CreatedBy:     version.CreatedBy,
			CreatedAt:     version.CreatedAt,
			ChangeReason:  version.ChangeReason,
		})
	}
	return ListSecretVersionsResponse{Versions: responses, Count: len(responses)}
}
