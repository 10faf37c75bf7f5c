package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	accessUseCase "github.com/keywell/vault/internal/access/usecase"
)

// PolicyInput carries the raw CLI flags of the create-policy command.
type PolicyInput struct {
	Name       string
	Pattern    string
	Operations string
	Users      string
	Roles      string
	Services   string
	Priority   int
}

// RunCreatePolicy creates an enabled access policy from CLI input. At least
// one of users, roles, or services should be set for the policy to ever
// match an actor.
func RunCreatePolicy(
	ctx context.Context,
	useCase accessUseCase.AccessUseCase,
	logger *slog.Logger,
	w io.Writer,
	input PolicyInput,
	format string,
) error {
	operations, err := parseOperations(input.Operations)
	if err != nil {
		return err
	}

	logger.Info("creating access policy",
		slog.String("policy_name", input.Name),
		slog.String("pattern", input.Pattern),
	)

	policy, err := useCase.CreatePolicy(ctx, accessUseCase.PolicyConfig{
		PolicyName:        input.Name,
		SecretPattern:     input.Pattern,
		AllowedUsers:      splitList(input.Users),
		AllowedRoles:      splitList(input.Roles),
		AllowedServices:   splitList(input.Services),
		AllowedOperations: operations,
		Priority:          input.Priority,
		Enabled:           true,
	})
	if err != nil {
		return fmt.Errorf("failed to create policy: %w", err)
	}

	logger.Info("access policy created",
		slog.String("policy_id", policy.ID.String()),
		slog.String("policy_name", policy.PolicyName),
	)

	if format == "json" {
		result := map[string]interface{}{
			"id":             policy.ID.String(),
			"policy_name":    policy.PolicyName,
			"secret_pattern": policy.SecretPattern,
			"priority":       policy.Priority,
			"enabled":        policy.Enabled,
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(jsonBytes))
		return nil
	}

	fmt.Fprintf(w, "Created policy %s (%s) for pattern %s\n",
		policy.PolicyName, policy.ID, policy.SecretPattern)
	return nil
}
