package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	accessService "github.com/keywell/vault/internal/access/service"
	apperrors "github.com/keywell/vault/internal/errors"
)

// accessUseCase implements the AccessUseCase interface.
type accessUseCase struct {
	policyRepo PolicyRepository
	logRepo    AccessLogRepository
	matcher    accessService.PatternMatcher
	logger     *slog.Logger
}

// NewAccessUseCase creates a new access use case instance with the provided dependencies.
func NewAccessUseCase(
	policyRepo PolicyRepository,
	logRepo AccessLogRepository,
	matcher accessService.PatternMatcher,
	logger *slog.Logger,
) AccessUseCase {
	return &accessUseCase{
		policyRepo: policyRepo,
		logRepo:    logRepo,
		matcher:    matcher,
		logger:     logger,
	}
}

// CheckAccess evaluates enabled policies in priority order and stops at the
// first full match. No matching policy means denial.
func (a *accessUseCase) CheckAccess(
	ctx context.Context,
	secretName string,
	operation accessDomain.Operation,
	actor accessDomain.Actor,
	requestContext map[string]string,
) (bool, error) {
	if !operation.IsValid() {
		return false, accessDomain.ErrInvalidOperation
	}

	policies, err := a.policyRepo.ListEnabled(ctx)
	if err != nil {
		return false, err
	}

	for _, policy := range policies {
		matched, err := a.matcher.Matches(policy.SecretPattern, secretName)
		if err != nil {
			// A policy with a broken pattern cannot grant anything; skip it
			// rather than failing every check in the system.
			a.logger.Error(
				"skipping policy with invalid pattern",
				slog.String("policy", policy.PolicyName),
				slog.Any("error", err),
			)
			continue
		}
		if !matched {
			continue
		}
		if !policy.AllowsOperation(operation) {
			continue
		}
		if !policy.MatchesActor(actor) {
			continue
		}
		if !policy.MatchesConditions(requestContext) {
			continue
		}
		return true, nil
	}

	return false, nil
}

// CreatePolicy stores a new policy.
func (a *accessUseCase) CreatePolicy(ctx context.Context, config PolicyConfig) (*accessDomain.AccessPolicy, error) {
	if err := validatePolicyConfig(config); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	policy := &accessDomain.AccessPolicy{
		ID:                uuid.Must(uuid.NewV7()),
		PolicyName:        config.PolicyName,
		SecretPattern:     config.SecretPattern,
		AllowedUsers:      config.AllowedUsers,
		AllowedRoles:      config.AllowedRoles,
		AllowedServices:   config.AllowedServices,
		AllowedOperations: config.AllowedOperations,
		Conditions:        config.Conditions,
		Priority:          config.Priority,
		Enabled:           config.Enabled,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := a.policyRepo.Create(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// UpdatePolicy rewrites the named policy's rule fields.
func (a *accessUseCase) UpdatePolicy(
	ctx context.Context,
	name string,
	config PolicyConfig,
) (*accessDomain.AccessPolicy, error) {
	if err := validatePolicyConfig(config); err != nil {
		return nil, err
	}

	policy, err := a.policyRepo.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	policy.SecretPattern = config.SecretPattern
	policy.AllowedUsers = config.AllowedUsers
	policy.AllowedRoles = config.AllowedRoles
	policy.AllowedServices = config.AllowedServices
	policy.AllowedOperations = config.AllowedOperations
	policy.Conditions = config.Conditions
	policy.Priority = config.Priority
	policy.Enabled = config.Enabled
	policy.UpdatedAt = time.Now().UTC()

	if err := a.policyRepo.Update(ctx, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

// DeletePolicy removes the named policy.
func (a *accessUseCase) DeletePolicy(ctx context.Context, name string) error {
	policy, err := a.policyRepo.GetByName(ctx, name)
	if err != nil {
		return err
	}
	return a.policyRepo.Delete(ctx, policy.ID)
}

// GetPolicy retrieves the named policy.
func (a *accessUseCase) GetPolicy(ctx context.Context, name string) (*accessDomain.AccessPolicy, error) {
	return a.policyRepo.GetByName(ctx, name)
}

// ListPolicies returns all policies ordered by priority descending.
func (a *accessUseCase) ListPolicies(ctx context.Context) ([]*accessDomain.AccessPolicy, error) {
	return a.policyRepo.List(ctx)
}

// GrantAccess creates a dedicated single-user policy. Grant policies use a
// deterministic name so RevokeAccess can find them later.
func (a *accessUseCase) GrantAccess(
	ctx context.Context,
	userID, secretPattern string,
	operations []accessDomain.Operation,
) (*accessDomain.AccessPolicy, error) {
	return a.CreatePolicy(ctx, PolicyConfig{
		PolicyName:        grantPolicyName(userID, secretPattern),
		SecretPattern:     secretPattern,
		AllowedUsers:      []string{userID},
		AllowedOperations: operations,
		Enabled:           true,
	})
}

// RevokeAccess deletes the dedicated single-user policy for this user and pattern.
func (a *accessUseCase) RevokeAccess(ctx context.Context, userID, secretPattern string) error {
	return a.DeletePolicy(ctx, grantPolicyName(userID, secretPattern))
}

// RecordAccess appends an audit entry. Failures are swallowed so the primary
// operation is never blocked by audit persistence.
func (a *accessUseCase) RecordAccess(ctx context.Context, entry *accessDomain.AccessLogEntry) {
	if err := a.logRepo.Create(ctx, entry); err != nil {
		a.logger.Error(
			"failed to record access log entry",
			slog.String("secret", entry.SecretName),
			slog.String("operation", string(entry.AccessType)),
			slog.Any("error", err),
		)
	}
}

// GetAccessLog returns audit entries newest first.
func (a *accessUseCase) GetAccessLog(
	ctx context.Context,
	secretName string,
	offset, limit int,
) ([]*accessDomain.AccessLogEntry, error) {
	return a.logRepo.List(ctx, secretName, offset, limit)
}

// GetAccessMetrics aggregates decisions over the trailing window.
func (a *accessUseCase) GetAccessMetrics(
	ctx context.Context,
	window time.Duration,
) (*accessDomain.AccessMetrics, error) {
	since := time.Now().UTC().Add(-window)
	return a.logRepo.Metrics(ctx, since)
}

// validatePolicyConfig rejects policies that could never be evaluated.
func validatePolicyConfig(config PolicyConfig) error {
	if config.PolicyName == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "policy name is required")
	}
	if config.SecretPattern == "" {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "secret pattern is required")
	}
	if len(config.AllowedOperations) == 0 {
		return apperrors.Wrap(apperrors.ErrInvalidInput, "at least one operation is required")
	}
	for _, operation := range config.AllowedOperations {
		if !operation.IsValid() {
			return accessDomain.ErrInvalidOperation
		}
	}
	return nil
}

// grantPolicyName builds the deterministic name for GrantAccess policies.
func grantPolicyName(userID, secretPattern string) string {
	return fmt.Sprintf("grant:%s:%s", userID, secretPattern)
}
