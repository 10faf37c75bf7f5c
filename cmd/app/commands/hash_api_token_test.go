package commands

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	cryptoService "github.com/keywell/vault/internal/crypto/service"
)

func TestRunHashAPIToken(t *testing.T) {
	hasher := cryptoService.NewTokenHasher()

	t.Run("prints-verifiable-hash", func(t *testing.T) {
		var out bytes.Buffer
		err := RunHashAPIToken(hasher, &out, "super-secret-token")

		require.NoError(t, err)
		hash := strings.TrimSpace(out.String())
		require.NotEmpty(t, hash)
		require.True(t, hasher.CompareToken("super-secret-token", hash))
		require.False(t, hasher.CompareToken("wrong-token", hash))
	})

	t.Run("empty-token", func(t *testing.T) {
		err := RunHashAPIToken(hasher, &bytes.Buffer{}, "")
		require.Error(t, err)
	})
}
