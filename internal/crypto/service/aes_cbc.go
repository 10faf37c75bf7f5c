package service

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	cryptoDomain "github.com/keywell/vault/internal/crypto/domain"
)

// AESCBCCipher implements the Cipher interface using AES-256-CBC with PKCS7
// padding and PBKDF2 key derivation.
//
// Each encryption generates a random 16-byte salt and IV. The actual AES key
// is derived from the stored key material with PBKDF2-SHA256, so the material
// itself never touches the block cipher and every value is encrypted under a
// distinct derived key.
//
// Thread safety: the cipher is stateless and safe for concurrent use.
type AESCBCCipher struct{}

// NewAESCBC creates a new AES-256-CBC cipher instance.
func NewAESCBC() *AESCBCCipher {
	return &AESCBCCipher{}
}

// Encrypt encrypts plaintext under a key derived from material and tags the
// resulting envelope with keyVersion.
func (c *AESCBCCipher) Encrypt(
	plaintext, material []byte,
	keyVersion uint,
) (cryptoDomain.EncryptedValue, error) {
	if len(material) != cryptoDomain.KeySize {
		return cryptoDomain.EncryptedValue{}, cryptoDomain.ErrInvalidKeySize
	}

	salt := make([]byte, cryptoDomain.SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return cryptoDomain.EncryptedValue{}, fmt.Errorf("failed to generate salt: %w", err)
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return cryptoDomain.EncryptedValue{}, fmt.Errorf("failed to generate iv: %w", err)
	}

	key := deriveKey(material, salt)
	defer cryptoDomain.Zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return cryptoDomain.EncryptedValue{}, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	ciphertext := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ciphertext, padded)

	return cryptoDomain.EncryptedValue{
		Ciphertext: ciphertext,
		IV:         iv,
		Salt:       salt,
		KeyVersion: keyVersion,
	}, nil
}

// Decrypt re-derives the key from material using the envelope's salt and
// decrypts the ciphertext. Padding and format mismatches are collapsed into
// ErrDecryptionFailed so callers cannot distinguish failure causes.
func (c *AESCBCCipher) Decrypt(
	value cryptoDomain.EncryptedValue,
	material []byte,
) ([]byte, error) {
	if len(material) != cryptoDomain.KeySize {
		return nil, cryptoDomain.ErrInvalidKeySize
	}
	if len(value.IV) != aes.BlockSize ||
		len(value.Ciphertext) == 0 ||
		len(value.Ciphertext)%aes.BlockSize != 0 {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	key := deriveKey(material, value.Salt)
	defer cryptoDomain.Zero(key)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}

	padded := make([]byte, len(value.Ciphertext))
	cipher.NewCBCDecrypter(block, value.IV).CryptBlocks(padded, value.Ciphertext)

	plaintext, ok := pkcs7Unpad(padded, aes.BlockSize)
	if !ok {
		return nil, cryptoDomain.ErrDecryptionFailed
	}

	return plaintext, nil
}

// deriveKey derives a 256-bit AES key from key material and a salt.
func deriveKey(material, salt []byte) []byte {
	return pbkdf2.Key(material, salt, cryptoDomain.KeyDerivationIterations, cryptoDomain.KeySize, sha256.New)
}

// pkcs7Pad appends PKCS7 padding so the result is a whole number of blocks.
// A full block of padding is added when the input is already block-aligned.
func pkcs7Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(padLen)}, padLen)...)
}

// pkcs7Unpad strips and validates PKCS7 padding.
func pkcs7Unpad(data []byte, blockSize int) ([]byte, bool) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, false
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize || padLen > len(data) {
		return nil, false
	}

	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, false
		}
	}

	return data[:len(data)-padLen], true
}
