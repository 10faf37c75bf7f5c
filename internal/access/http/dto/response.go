package dto

import (
	"time"

	accessDomain "github.com/keywell/vault/internal/access/domain"
)

// PolicyResponse represents an access policy in API responses.
type PolicyResponse struct {
	ID                string            `json:"id"`
	PolicyName        string            `json:"policy_name"`
	SecretPattern     string            `json:"secret_pattern"`
	AllowedUsers      []string          `json:"allowed_users,omitempty"`
	AllowedRoles      []string          `json:"allowed_roles,omitempty"`
	AllowedServices   []string          `json:"allowed_services,omitempty"`
	AllowedOperations []string          `json:"allowed_operations"`
	Conditions        map[string]string `json:"conditions,omitempty"`
	Priority          int               `json:"priority"`
	Enabled           bool              `json:"enabled"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
}

// ListPoliciesResponse is the full policy list ordered by priority.
type ListPoliciesResponse struct {
	Policies []PolicyResponse `json:"policies"`
	Count    int              `json:"count"`
}

// AccessLogEntryResponse represents one audit entry.
type AccessLogEntryResponse struct {
	ID         string    `json:"id"`
	SecretName string    `json:"secret_name"`
	SecretID   *string   `json:"secret_id,omitempty"`
	AccessedBy string    `json:"accessed_by"`
	AccessType string    `json:"access_type"`
	Granted    bool      `json:"granted"`
	Timestamp  time.Time `json:"timestamp"`
}

// ListAccessLogResponse is a paginated audit log slice, newest first.
type ListAccessLogResponse struct {
	Entries []AccessLogEntryResponse `json:"entries"`
	Count   int                      `json:"count"`
}

// AccessMetricsResponse aggregates access decisions over a window.
type AccessMetricsResponse struct {
	TotalAttempts uint            `json:"total_attempts"`
	GrantedCount  uint            `json:"granted_count"`
	DeniedCount   uint            `json:"denied_count"`
	ByOperation   map[string]uint `json:"by_operation"`
}

// MapPolicyToResponse converts a domain policy to an API response.
func MapPolicyToResponse(policy *accessDomain.AccessPolicy) PolicyResponse {
	operations := make([]string, 0, len(policy.AllowedOperations))
	for _, op := range policy.AllowedOperations {
		operations = append(operations, string(op))
	}

	return PolicyResponse{
		ID:                policy.ID.String(),
		PolicyName:        policy.PolicyName,
		SecretPattern:     policy.SecretPattern,
		AllowedUsers:      policy.AllowedUsers,
		AllowedRoles:      policy.AllowedRoles,
		AllowedServices:   policy.AllowedServices,
		AllowedOperations: operations,
		Conditions:        policy.Conditions,
		Priority:          policy.Priority,
		Enabled:           policy.Enabled,
		CreatedAt:         policy.CreatedAt,
		UpdatedAt:         policy.UpdatedAt,
	}
}

// MapPoliciesToListResponse converts domain policies to a list response.
func MapPoliciesToListResponse(policies []*accessDomain.AccessPolicy) ListPoliciesResponse {
	responses := make([]PolicyResponse, 0, len(policies))
	for _, policy := range policies {
		responses = append(responses, MapPolicyToResponse(policy))
	}
	return ListPoliciesResponse{Policies: responses, Count: len(responses)}
}

// MapAccessLogToResponse converts audit entries to a list response.
func MapAccessLogToResponse(entries []*accessDomain.AccessLogEntry) ListAccessLogResponse {
	responses := make([]AccessLogEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response := AccessLogEntryResponse{
			ID:         entry.ID.String(),
			SecretName: entry.SecretName,
			AccessedBy: entry.AccessedBy,
			AccessType: string(entry.AccessType),
			Granted:    entry.Granted,
			Timestamp:  entry.Timestamp,
		}
		if entry.SecretID != nil {
			id := entry.SecretID.String()
			response.SecretID = &id
		}
		responses = append(responses, response)
	}
	return ListAccessLogResponse{Entries: responses, Count: len(responses)}
}

// MapAccessMetricsToResponse converts domain metrics to an API response.
func MapAccessMetricsToResponse(metrics *accessDomain.AccessMetrics) AccessMetricsResponse {
	byOperation := make(map[string]uint, len(metrics.ByOperation))
	for op, count := range metrics.ByOperation {
		byOperation[string(op)] = count
	}

	return AccessMetricsResponse{
		TotalAttempts: metrics.TotalAttempts,
		GrantedCount:  metrics.GrantedCount,
		DeniedCount:   metrics.DeniedCount,
		ByOperation:   byOperation,
	}
}
