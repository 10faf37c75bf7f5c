package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyStatusCanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from KeyStatus
		to   KeyStatus
		want bool
	}{
		{"ActiveToRotating", KeyStatusActive, KeyStatusRotating, true},
		{"RotatingToDeprecated", KeyStatusRotating, KeyStatusDeprecated, true},
		{"ActiveToDestroyed", KeyStatusActive, KeyStatusDestroyed, true},
		{"RotatingToDestroyed", KeyStatusRotating, KeyStatusDestroyed, true},
		{"DeprecatedToDestroyed", KeyStatusDeprecated, KeyStatusDestroyed, true},
		{"ActiveToDeprecated", KeyStatusActive, KeyStatusDeprecated, false},
		{"RotatingToActive", KeyStatusRotating, KeyStatusActive, false},
		{"DeprecatedToActive", KeyStatusDeprecated, KeyStatusActive, false},
		{"DestroyedIsTerminal", KeyStatusDestroyed, KeyStatusActive, false},
		{"DestroyedToDestroyed", KeyStatusDestroyed, KeyStatusDestroyed, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestZero(t *testing.T) {
	b := []byte{1, 2, 3, 4}
	Zero(b)
	assert.Equal(t, []byte{0, 0, 0, 0}, b)

	// Must not panic on nil
	Zero(nil)
}
