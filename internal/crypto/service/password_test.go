package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher()

	encoded, err := hasher.Hash("correct horse battery staple")
	require.NoError(t, err)

	parts := strings.Split(encoded, "$")
	require.Len(t, parts, 4)
	assert.Equal(t, "pbkdf2", parts[0])
	assert.Equal(t, "100000", parts[1])
	assert.Len(t, parts[2], 32) // 16 salt bytes hex-encoded
	assert.Len(t, parts[3], 64) // 32 hash bytes hex-encoded

	assert.True(t, hasher.Verify("correct horse battery staple", encoded))
	assert.False(t, hasher.Verify("wrong password", encoded))
}

func TestPasswordHasher_UniqueSalts(t *testing.T) {
	hasher := NewPasswordHasher()

	first, err := hasher.Hash("same")
	require.NoError(t, err)
	second, err := hasher.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Verify("same", first))
	assert.True(t, hasher.Verify("same", second))
}

func TestPasswordHasher_VerifyMalformedEncodings(t *testing.T) {
	hasher := NewPasswordHasher()

	malformed := []string{
		"",
		"pbkdf2",
		"pbkdf2$abc$00$00",
		"pbkdf2$-1$00$00",
		"bcrypt$100000$00$00",
		"pbkdf2$100000$zz$00",
		"pbkdf2$100000$00$zz",
		"pbkdf2$100000$00$00$extra",
	}

	for _, encoded := range malformed {
		assert.False(t, hasher.Verify("password", encoded), "encoded=%q", encoded)
	}
}

func TestSigner(t *testing.T) {
	signer := NewSigner()
	key := []byte("webhook-signing-key")
	payload := []byte(`{"event":"secret.rotated","secret":"db_password"}`)

	signature := signer.Sign(payload, key)
	assert.Len(t, signature, 64)

	assert.True(t, signer.Verify(payload, signature, key))
	assert.False(t, signer.Verify([]byte("tampered"), signature, key))
	assert.False(t, signer.Verify(payload, signature, []byte("other-key")))
	assert.False(t, signer.Verify(payload, "not-hex", key))
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := GenerateSecureToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	_, err = GenerateSecureToken(0)
	assert.Error(t, err)
}

func TestTokenHasher(t *testing.T) {
	hasher := NewTokenHasher()

	hashed, err := hasher.HashToken("api-token-value")
	require.NoError(t, err)
	assert.NotEqual(t, "api-token-value", hashed)

	assert.True(t, hasher.CompareToken("api-token-value", hashed))
	assert.False(t, hasher.CompareToken("other-token", hashed))
	assert.False(t, hasher.CompareToken("api-token-value", "not-a-hash"))
}
