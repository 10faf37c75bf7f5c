package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	t.Run("PreservesErrorChain", func(t *testing.T) {
		wrapped := Wrap(ErrNotFound, "failed to load secret")
		require.Error(t, wrapped)
		assert.True(t, Is(wrapped, ErrNotFound))
		assert.Equal(t, "failed to load secret: not found", wrapped.Error())
	})

	t.Run("NilError", func(t *testing.T) {
		assert.Nil(t, Wrap(nil, "context"))
	})

	t.Run("DoubleWrapKeepsRoot", func(t *testing.T) {
		inner := Wrap(ErrInvalidState, "secret is rotating")
		outer := Wrap(inner, "rotation failed")
		assert.True(t, Is(outer, ErrInvalidState))
	})
}

func TestSentinelsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrConflict,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrForbidden,
		ErrInvalidState,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, Is(a, b), "%v should not match %v", a, b)
		}
	}
}
