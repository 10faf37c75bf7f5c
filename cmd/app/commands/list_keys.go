package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	cryptoUseCase "github.com/keywell/vault/internal/crypto/usecase"
)

// RunListKeys prints metadata of every stored encryption key, newest version
// first. Key material is never printed.
func RunListKeys(
	ctx context.Context,
	keyUseCase cryptoUseCase.KeyUseCase,
	logger *slog.Logger,
	w io.Writer,
	format string,
) error {
	keys, err := keyUseCase.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	logger.Info("listing encryption keys", slog.Int("count", len(keys)))

	if format == "json" {
		results := make([]map[string]interface{}, 0, len(keys))
		for _, key := range keys {
			result := map[string]interface{}{
				"id":        key.ID.String(),
				"version":   key.Version,
				"algorithm": string(key.Algorithm),
				"status":    string(key.Status),
			}
			if key.ExpiresAt != nil {
				result["expires_at"] = key.ExpiresAt
			}
			results = append(results, result)
		}
		jsonBytes, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(jsonBytes))
		return nil
	}

	if len(keys) == 0 {
		fmt.Fprintln(w, "No encryption keys found")
		return nil
	}

	for _, key := range keys {
		expires := "never"
		if key.ExpiresAt != nil {
			expires = key.ExpiresAt.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "%s version=%d algorithm=%s status=%s expires=%s\n",
			key.ID, key.Version, key.Algorithm, key.Status, expires)
	}
	return nil
}
