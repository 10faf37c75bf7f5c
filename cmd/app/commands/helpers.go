// Package commands contains CLI command implementations for the application.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"

	accessDomain "github.com/keywell/vault/internal/access/domain"
	"github.com/keywell/vault/internal/app"
	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
)

// IOTuple holds reader and writer for commands, allowing for testing.
type IOTuple struct {
	Reader io.Reader
	Writer io.Writer
}

// DefaultIO returns an IOTuple with os.Stdin and os.Stdout.
func DefaultIO() IOTuple {
	return IOTuple{
		Reader: os.Stdin,
		Writer: os.Stdout,
	}
}

// closeContainer closes all resources in the container and logs any errors.
func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

// closeMigrate closes the migration instance and logs any errors.
func closeMigrate(migrate *migrate.Migrate, logger *slog.Logger) {
	sourceError, databaseError := migrate.Close()
	if sourceError != nil || databaseError != nil {
		logger.Error(
			"failed to close the migrate",
			slog.Any("source_error", sourceError),
			slog.Any("database_error", databaseError),
		)
	}
}

// parseAlgorithm converts algorithm string to cryptoDomain.Algorithm type.
// Returns an error if the algorithm string is invalid.
func parseAlgorithm(algorithmStr string) (cryptoDomain.Algorithm, error) {
	switch algorithmStr {
	case "aes-256-cbc":
		return cryptoDomain.AES256CBC, nil
	default:
		return "", fmt.Errorf("invalid algorithm: %s (valid options: aes-256-cbc)", algorithmStr)
	}
}

// parseOperations converts a comma-separated operation list to domain operations.
// Returns an error on the first unknown operation.
func parseOperations(operationsStr string) ([]accessDomain.Operation, error) {
	parts := strings.Split(operationsStr, ",")
	operations := make([]accessDomain.Operation, 0, len(parts))
	for _, part := range parts {
		operation := accessDomain.Operation(strings.TrimSpace(part))
		if !operation.IsValid() {
			return nil, fmt.Errorf(
				"invalid operation: %s (valid options: read, create, update, delete, rotate, revoke)",
				part,
			)
		}
		operations = append(operations, operation)
	}
	return operations, nil
}

// splitList converts a comma-separated list to a slice, dropping empty items.
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
