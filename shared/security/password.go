package security

import (
	"github.com/matthewhartstonge/argon2"
)

// PasswordHasher hashes and verifies passwords with argon2id.
// The encoded output carries its own parameters and a random salt, so a
// hasher can verify hashes produced under a different configuration.
type PasswordHasher struct {
	config argon2.Config
}

// NewPasswordHasher creates a PasswordHasher with the library defaults.
func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{config: argon2.DefaultConfig()}
}

// NewPasswordHasherWithConfig creates a PasswordHasher with custom argon2 parameters.
func NewPasswordHasherWithConfig(config argon2.Config) *PasswordHasher {
	return &PasswordHasher{config: config}
}

// Hash returns the PHC encoded argon2id hash of password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	encoded, err := h.config.HashEncoded([]byte(password))
	if err != nil {
		return "", err
	}

	return string(encoded), nil
}

// Verify reports whether password matches the encoded hash.
// A malformed or corrupted hash never matches.
func (h *PasswordHasher) Verify(password, encoded string) bool {
	if encoded == "" {
		return false
	}

	ok, err := argon2.VerifyEncoded([]byte(password), []byte(encoded))
	if err != nil {
		return false
	}

	return ok
}

var defaultHasher = NewPasswordHasher()

// HashPassword hashes password with the default hasher.
func HashPassword(password string) (string, error) {
	return defaultHasher.Hash(password)
}

// VerifyPassword verifies password against encoded with the default hasher.
func VerifyPassword(password, encoded string) bool {
	return defaultHasher.Verify(password, encoded)
}
