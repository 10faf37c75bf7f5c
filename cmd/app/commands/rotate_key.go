package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	cryptoUseCase "github.com/keywell/vault/internal/crypto/usecase"
)

// RunRotateKey rotates the given active key: a freshly generated key becomes
// the sole active key and the old key keeps decrypting until its deprecation
// date passes. Existing ciphertext stays readable.
//
// Key rotation is recommended every 90 days or when suspecting key compromise.
func RunRotateKey(
	ctx context.Context,
	keyUseCase cryptoUseCase.KeyUseCase,
	logger *slog.Logger,
	w io.Writer,
	idStr string,
	format string,
) error {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid key id: %s", idStr)
	}

	logger.Info("rotating encryption key", slog.String("key_id", id.String()))

	newKeyID, err := keyUseCase.RotateKey(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to rotate key: %w", err)
	}

	logger.Info("encryption key rotated",
		slog.String("old_key_id", id.String()),
		slog.String("new_key_id", newKeyID.String()),
	)

	if format == "json" {
		result := map[string]interface{}{
			"old_key_id": id.String(),
			"new_key_id": newKeyID.String(),
		}
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(jsonBytes))
		return nil
	}

	fmt.Fprintf(w, "Rotated key %s, new active key is %s\n", id, newKeyID)
	return nil
}
