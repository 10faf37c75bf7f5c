package service

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
)

// pbkdf2Hasher implements PasswordHasher with PBKDF2-SHA256.
//
// The encoded form is "pbkdf2$<iterations>$<saltHex>$<hashHex>", which keeps
// the work factor alongside the hash so it can be raised without breaking
// verification of existing hashes.
type pbkdf2Hasher struct {
	iterations int
}

// NewPasswordHasher creates a PasswordHasher with the default iteration count.
func NewPasswordHasher() PasswordHasher {
	return &pbkdf2Hasher{iterations: cryptoDomain.PasswordHashIterations}
}

// Hash hashes password with a random 16-byte salt.
func (h *pbkdf2Hasher) Hash(password string) (string, error) {
	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := pbkdf2.Key([]byte(password), salt, h.iterations, cryptoDomain.KeySize, sha256.New)

	return fmt.Sprintf(
		"pbkdf2$%d$%s$%s",
		h.iterations,
		hex.EncodeToString(salt),
		hex.EncodeToString(hash),
	), nil
}

// Verify recomputes the hash from the encoded parameters and compares it in
// constant time. Malformed encodings verify as false, never as an error.
func (h *pbkdf2Hasher) Verify(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != "pbkdf2" {
		return false
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false
	}

	salt, err := hex.DecodeString(parts[2])
	if err != nil {
		return false
	}

	expected, err := hex.DecodeString(parts[3])
	if err != nil {
		return false
	}

	hash := pbkdf2.Key([]byte(password), salt, iterations, len(expected), sha256.New)

	return subtle.ConstantTimeCompare(hash, expected) == 1
}
