package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
	cryptoService "github.com/keywell/vault/internal/crypto/service"
	cryptoUseCase "github.com/keywell/vault/internal/crypto/usecase"
)

// RunCreateKey generates fresh key material and stores it as a new active key.
// The version is one above the highest stored version, or 1 for the first key.
// Raw material never leaves the process; only metadata is printed.
//
// Requirements: Database must be migrated and the keeper URI must be configured.
func RunCreateKey(
	ctx context.Context,
	keyUseCase cryptoUseCase.KeyUseCase,
	logger *slog.Logger,
	w io.Writer,
	algorithmStr string,
	format string,
) error {
	logger.Info("creating new encryption key", slog.String("algorithm", algorithmStr))

	// Parse algorithm
	algorithm, err := parseAlgorithm(algorithmStr)
	if err != nil {
		return err
	}

	keys, err := keyUseCase.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	// Keys are ordered by version descending.
	version := uint(1)
	if len(keys) > 0 {
		version = keys[0].Version + 1
	}

	material, err := cryptoService.GenerateKeyMaterial()
	if err != nil {
		return fmt.Errorf("failed to generate key material: %w", err)
	}
	defer cryptoDomain.Zero(material)

	key, err := keyUseCase.StoreKey(ctx, material, version, algorithm)
	if err != nil {
		return fmt.Errorf("failed to store key: %w", err)
	}

	logger.Info("encryption key created",
		slog.String("key_id", key.ID.String()),
		slog.Uint64("version", uint64(key.Version)),
	)

	if format == "json" {
		return outputKeyJSON(w, key)
	}
	fmt.Fprintf(w, "Created key %s (version %d, algorithm %s)\n", key.ID, key.Version, key.Algorithm)
	return nil
}

// outputKeyJSON outputs key metadata in JSON format for machine consumption.
func outputKeyJSON(w io.Writer, key *cryptoDomain.EncryptionKey) error {
	result := map[string]interface{}{
		"id":        key.ID.String(),
		"version":   key.Version,
		"algorithm": string(key.Algorithm),
		"status":    string(key.Status),
	}
	if key.ExpiresAt != nil {
		result["expires_at"] = key.ExpiresAt
	}

	jsonBytes, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	fmt.Fprintln(w, string(jsonBytes))
	return nil
}
