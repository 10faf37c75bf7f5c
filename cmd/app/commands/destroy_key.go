package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	cryptoUseCase "github.com/keywell/vault/internal/crypto/usecase"
)

// RunDestroyKey irreversibly destroys a deprecated key and deletes its
// material from the keeper. Ciphertext encrypted under the key becomes
// permanently unreadable, so the command refuses to run without --force.
func RunDestroyKey(
	ctx context.Context,
	keyUseCase cryptoUseCase.KeyUseCase,
	logger *slog.Logger,
	w io.Writer,
	idStr string,
	force bool,
) error {
	id, err := uuid.Parse(idStr)
	if err != nil {
		return fmt.Errorf("invalid key id: %s", idStr)
	}

	if !force {
		return fmt.Errorf("destroying key %s makes its ciphertext unreadable; re-run with --force to confirm", id)
	}

	logger.Info("destroying encryption key", slog.String("key_id", id.String()))

	if err := keyUseCase.DestroyKey(ctx, id); err != nil {
		return fmt.Errorf("failed to destroy key: %w", err)
	}

	logger.Info("encryption key destroyed", slog.String("key_id", id.String()))
	fmt.Fprintf(w, "Destroyed key %s\n", id)
	return nil
}
