package usecase

import (
	"context"
	"time"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	"github.com/keywell/vault/internal/metrics"
)

// accessUseCaseWithMetrics decorates AccessUseCase with metrics instrumentation.
type accessUseCaseWithMetrics struct {
	next    AccessUseCase
	metrics metrics.BusinessMetrics
}

// NewAccessUseCaseWithMetrics wraps an AccessUseCase with metrics recording.
func NewAccessUseCaseWithMetrics(useCase AccessUseCase, m metrics.BusinessMetrics) AccessUseCase {
	return &accessUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// record emits the operation counter and duration histogram for one call.
func (a *accessUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	a.metrics.RecordOperation(ctx, "access", operation, status)
	a.metrics.RecordDuration(ctx, "access", operation, time.Since(start), status)
}

func (a *accessUseCaseWithMetrics) CheckAccess(
	ctx context.Context,
	secretName string,
	operation accessDomain.Operation,
	actor accessDomain.Actor,
	requestContext map[string]string,
) (bool, error) {
	start := time.Now()
	granted, err := a.next.CheckAccess(ctx, secretName, operation, actor, requestContext)
	a.record(ctx, "check_access", start, err)
	return granted, err
}

func (a *accessUseCaseWithMetrics) CreatePolicy(ctx context.Context, config PolicyConfig) (*accessDomain.AccessPolicy, error) {
	start := time.Now()
	policy, err := a.next.CreatePolicy(ctx, config)
	a.record(ctx, "policy_create", start, err)
	return policy, err
}

func (a *accessUseCaseWithMetrics) UpdatePolicy(
	ctx context.Context,
	name string,
	config PolicyConfig,
) (*accessDomain.AccessPolicy, error) {
	start := time.Now()
	policy, err := a.next.UpdatePolicy(ctx, name, config)
	a.record(ctx, "policy_update", start, err)
	return policy, err
}

func (a *accessUseCaseWithMetrics) DeletePolicy(ctx context.Context, name string) error {
	start := time.Now()
	err := a.next.DeletePolicy(ctx, name)
	a.record(ctx, "policy_delete", start, err)
	return err
}

func (a *accessUseCaseWithMetrics) GetPolicy(ctx context.Context, name string) (*accessDomain.AccessPolicy, error) {
	start := time.Now()
	policy, err := a.next.GetPolicy(ctx, name)
	a.record(ctx, "policy_get", start, err)
	return policy, err
}

func (a *accessUseCaseWithMetrics) ListPolicies(ctx context.Context) ([]*accessDomain.AccessPolicy, error) {
	start := time.Now()
	policies, err := a.next.ListPolicies(ctx)
	a.record(ctx, "policy_list", start, err)
	return policies, err
}

func (a *accessUseCaseWithMetrics) GrantAccess(
	ctx context.Context,
	userID, secretPattern string,
	operations []accessDomain.Operation,
) (*accessDomain.AccessPolicy, error) {
	start := time.Now()
	policy, err := a.next.GrantAccess(ctx, userID, secretPattern, operations)
	a.record(ctx, "grant_access", start, err)
	return policy, err
}

func (a *accessUseCaseWithMetrics) RevokeAccess(ctx context.Context, userID, secretPattern string) error {
	start := time.Now()
	err := a.next.RevokeAccess(ctx, userID, secretPattern)
	a.record(ctx, "revoke_access", start, err)
	return err
}

func (a *accessUseCaseWithMetrics) RecordAccess(ctx context.Context, entry *accessDomain.AccessLogEntry) {
	start := time.Now()
	a.next.RecordAccess(ctx, entry)
	a.record(ctx, "record_access", start, nil)
}

func (a *accessUseCaseWithMetrics) GetAccessLog(
	ctx context.Context,
	secretName string,
	offset, limit int,
) ([]*accessDomain.AccessLogEntry, error) {
	start := time.Now()
	entries, err := a.next.GetAccessLog(ctx, secretName, offset, limit)
	a.record(ctx, "access_log", start, err)
	return entries, err
}

func (a *accessUseCaseWithMetrics) GetAccessMetrics(
	ctx context.Context,
	window time.Duration,
) (*accessDomain.AccessMetrics, error) {
	start := time.Now()
	result, err := a.next.GetAccessMetrics(ctx, window)
	a.record(ctx, "access_metrics", start, err)
	return result, err
}
