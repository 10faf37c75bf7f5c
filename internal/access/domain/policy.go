// Package domain defines the access-control domain model: allow-list policies
// matched by secret-name pattern, operation, and actor identity. There is no
// deny policy type; anything no policy allows is denied.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operation identifies a vault operation subject to authorization.
type Operation string

// Operations that policies can allow.
const (
	OperationRead   Operation = "read"
	OperationCreate Operation = "create"
	OperationUpdate Operation = "update"
	OperationDelete Operation = "delete"
	OperationRotate Operation = "rotate"
	OperationRevoke Operation = "revoke"
)

// IsValid reports whether the operation is one of the known operations.
func (o Operation) IsValid() bool {
	switch o {
	case OperationRead, OperationCreate, OperationUpdate,
		OperationDelete, OperationRotate, OperationRevoke:
		return true
	}
	return false
}

// Actor identifies who is performing an operation: a user (with roles),
// a service, or both. The zero value is an anonymous actor that only
// wildcard-free policies with empty allow-lists could match (none can).
type Actor struct {
	// UserID is the identifier of the human user, empty for service calls.
	UserID string
	// Roles are the roles held by the user.
	Roles []string
	// Service is the calling service name, empty for interactive calls.
	Service string
}

// AccessPolicy is a pure allow-rule. A request is granted when the secret
// name matches SecretPattern, the operation is in AllowedOperations, the
// actor matches one of the allow-lists, and every condition key equals the
// corresponding request context value.
type AccessPolicy struct {
	// ID is the unique identifier for this policy.
	ID uuid.UUID
	// PolicyName is the unique human-readable name.
	PolicyName string
	// SecretPattern is a glob over secret names: * matches any run, ? one char.
	SecretPattern string
	// AllowedUsers lists user ids this policy grants access to.
	AllowedUsers []string
	// AllowedRoles lists roles this policy grants access to.
	AllowedRoles []string
	// AllowedServices lists service names this policy grants access to.
	AllowedServices []string
	// AllowedOperations lists the operations this policy allows.
	AllowedOperations []Operation
	// Conditions are exact-match key/value requirements on the request context.
	Conditions map[string]string
	// Priority orders evaluation; higher priorities are evaluated first.
	Priority int
	// Enabled policies participate in evaluation; disabled ones are skipped.
	Enabled bool
	// CreatedAt is the UTC timestamp when this policy was created.
	CreatedAt time.Time
	// UpdatedAt is the UTC timestamp of the last mutation.
	UpdatedAt time.Time
}

// MatchesActor reports whether the actor is named by any of the policy's
// allow-lists.
func (p *AccessPolicy) MatchesActor(actor Actor) bool {
	if actor.UserID != "" {
		for _, user := range p.AllowedUsers {
			if user == actor.UserID {
				return true
			}
		}
		for _, allowed := range p.AllowedRoles {
			for _, role := range actor.Roles {
				if allowed == role {
					return true
				}
			}
		}
	}
	if actor.Service != "" {
		for _, service := range p.AllowedServices {
			if service == actor.Service {
				return true
			}
		}
	}
	return false
}

// MatchesConditions reports whether every condition key is present in the
// request context with an exactly equal value.
func (p *AccessPolicy) MatchesConditions(requestContext map[string]string) bool {
	for key, want := range p.Conditions {
		if requestContext[key] != want {
			return false
		}
	}
	return true
}

// AllowsOperation reports whether the operation is in the policy's allow-list.
func (p *AccessPolicy) AllowsOperation(operation Operation) bool {
	for _, allowed := range p.AllowedOperations {
		if allowed == operation {
			return true
		}
	}
	return false
}

// AccessLogEntry records one access decision. Entries are append-only and
// feed both the audit trail and access-metrics aggregation.
type AccessLogEntry struct {
	// ID is the unique identifier for this entry.
	ID uuid.UUID
	// SecretName is the name of the secret that was accessed.
	SecretName string
	// SecretID is the id of the secret, nil when the secret does not exist.
	SecretID *uuid.UUID
	// AccessedBy describes the actor: user id or service name.
	AccessedBy string
	// AccessType is the operation that was attempted.
	AccessType Operation
	// Granted records whether access was allowed.
	Granted bool
	// Timestamp is the UTC time of the decision.
	Timestamp time.Time
}

// AccessMetrics aggregates the access log for reporting.
type AccessMetrics struct {
	// TotalAttempts counts all logged decisions in the window.
	TotalAttempts uint
	// GrantedCount counts allowed decisions.
	GrantedCount uint
	// DeniedCount counts denied decisions.
	DeniedCount uint
	// ByOperation breaks attempts down per operation.
	ByOperation map[Operation]uint
}
