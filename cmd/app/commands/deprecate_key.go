package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	cryptoUseCase "github.com/keywell/vault/internal/crypto/usecase"
)

// RunDeprecateKey moves a rotated-out key to the deprecated status. The key
// keeps decrypting old ciphertext; only destruction removes that ability.
func RunDeprecateKey(
	ctx context.Context,
	keyUseCase cryptoUseCase.KeyUseCase,
	logger *slog.Logger,
	w io.Writer,
	idStr string,
) error {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid key id: %s", idStr)
	}

	logger.Info("deprecating encryption key", slog.String("key_id", id.String()))

	if err := keyUseCase.DeprecateKey(ctx, id); err != nil {
		return fmt.Errorf("failed to deprecate key: %w", err)
	}

	logger.Info("encryption key deprecated", slog.String("key_id", id.String()))
	fmt.Fprintf(w, "Deprecated key %s\n", id)
	return nil
}
