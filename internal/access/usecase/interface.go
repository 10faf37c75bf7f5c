// Package usecase implements the access-control policy engine: first-match
// evaluation of allow-list policies in priority order with implicit default
// deny, policy administration, and the append-only access log.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/keywell/vault/internal/access/domain"
)

// PolicyRepository defines persistence operations for access policies.
type PolicyRepository interface {
	Create(ctx context.Context, policy *accessDomain.AccessPolicy) error
	Get(ctx context.Context, id uuid.UUID) (*accessDomain.AccessPolicy, error)
	GetByName(ctx context.Context, name string) (*accessDomain.AccessPolicy, error)
	ListEnabled(ctx context.Context) ([]*accessDomain.AccessPolicy, error)
	List(ctx context.Context) ([]*accessDomain.AccessPolicy, error)
	Update(ctx context.Context, policy *accessDomain.AccessPolicy) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// AccessLogRepository defines persistence operations for the access log.
type AccessLogRepository interface {
	Create(ctx context.Context, entry *accessDomain.AccessLogEntry) error
	List(ctx context.Context, secretName string, offset, limit int) ([]*accessDomain.AccessLogEntry, error)
	Metrics(ctx context.Context, since time.Time) (*accessDomain.AccessMetrics, error)
}

// PolicyConfig is the caller-supplied definition of a policy.
type PolicyConfig struct {
	PolicyName        string
	SecretPattern     string
	AllowedUsers      []string
	AllowedRoles      []string
	AllowedServices   []string
	AllowedOperations []accessDomain.Operation
	Conditions        map[string]string
	Priority          int
	Enabled           bool
}

// AccessUseCase defines the business operations for access control.
type AccessUseCase interface {
	// CheckAccess decides whether the actor may perform the operation on the
	// named secret. The first enabled policy, in priority order, that matches
	// pattern, operation, actor, and conditions grants access; no match denies.
	CheckAccess(
		ctx context.Context,
		secretName string,
		operation accessDomain.Operation,
		actor accessDomain.Actor,
		requestContext map[string]string,
	) (bool, error)

	// CreatePolicy stores a new policy.
	CreatePolicy(ctx context.Context, config PolicyConfig) (*accessDomain.AccessPolicy, error)

	// UpdatePolicy rewrites the named policy's rule fields.
	UpdatePolicy(ctx context.Context, name string, config PolicyConfig) (*accessDomain.AccessPolicy, error)

	// DeletePolicy removes the named policy.
	DeletePolicy(ctx context.Context, name string) error

	// GetPolicy retrieves the named policy.
	GetPolicy(ctx context.Context, name string) (*accessDomain.AccessPolicy, error)

	// ListPolicies returns all policies ordered by priority descending.
	ListPolicies(ctx context.Context) ([]*accessDomain.AccessPolicy, error)

	// GrantAccess creates a dedicated single-user policy for the pattern and
	// operations instead of mutating shared policies.
	GrantAccess(
		ctx context.Context,
		userID, secretPattern string,
		operations []accessDomain.Operation,
	) (*accessDomain.AccessPolicy, error)

	// RevokeAccess deletes the dedicated single-user policy created by
	// GrantAccess for this user and pattern.
	RevokeAccess(ctx context.Context, userID, secretPattern string) error

	// RecordAccess appends an audit entry. Persistence failures are logged
	// and swallowed; recording never blocks the caller.
	RecordAccess(ctx context.Context, entry *accessDomain.AccessLogEntry)

	// GetAccessLog returns audit entries newest first, optionally filtered by
	// secret name.
	GetAccessLog(ctx context.Context, secretName string, offset, limit int) ([]*accessDomain.AccessLogEntry, error)

	// GetAccessMetrics aggregates decisions over the trailing window.
	GetAccessMetrics(ctx context.Context, window time.Duration) (*accessDomain.AccessMetrics, error)
}
