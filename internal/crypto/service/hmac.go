package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// hmacSigner implements Signer with HMAC-SHA256. Signatures are hex-encoded
// and used to sign webhook and notification payloads.
type hmacSigner struct{}

// NewSigner creates a new HMAC-SHA256 signer.
func NewSigner() Signer {
	return &hmacSigner{}
}

// Sign computes the hex-encoded HMAC-SHA256 signature of data under key.
func (s *hmacSigner) Sign(data, key []byte) string {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify checks a signature in constant time. Malformed signatures verify as false.
func (s *hmacSigner) Verify(data []byte, signature string, key []byte) bool {
	expected, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(data)

	return hmac.Equal(mac.Sum(nil), expected)
}
