package domain

// Algorithm represents the cryptographic algorithm used for encryption.
type Algorithm string

const (
	// AES256CBC represents AES-256 in CBC mode with PKCS7 padding.
	//
	// The encryption key is never used directly: a per-value 256-bit key is
	// derived from the stored key material with PBKDF2 and a random salt, so
	// compromise of a single derived key does not expose the key material.
	//
	// Key features:
	//   - 256-bit derived key
	//   - 16-byte IV (random per encryption)
	//   - 16-byte salt for key derivation
	AES256CBC Algorithm = "aes-256-cbc"
)

// KeyDerivationIterations is the PBKDF2 iteration count used when deriving
// encryption keys from key material.
const KeyDerivationIterations = 10000

// PasswordHashIterations is the PBKDF2 iteration count used for password
// hashing, which needs a far higher work factor than key derivation.
const PasswordHashIterations = 100000

// KeySize is the size in bytes of all symmetric keys and derived keys.
const KeySize = 32

// SaltSize is the size in bytes of PBKDF2 salts.
const SaltSize = 16
