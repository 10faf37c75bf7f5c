package commands

import (
	"fmt"
	"io"

	cryptoService "github.com/keywell/vault/internal/crypto/service"
)

// RunHashAPIToken prints the argon2id hash of an operator API token. The hash
// goes into the API_TOKEN_HASH setting; the plaintext token is handed to API
// clients and never stored.
func RunHashAPIToken(tokenHasher cryptoService.TokenHasher, w io.Writer, token string) error {
	if token == "" {
		return fmt.Errorf("token must not be empty")
	}

	hash, err := tokenHasher.HashToken(token)
	if err != nil {
		return fmt.Errorf("failed to hash token: %w", err)
	}

	fmt.Fprintln(w, hash)
	return nil
}
