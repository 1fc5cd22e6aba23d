// Package secrets handles encryption-at-rest for GitHub Personal Access
// Tokens. Tokens are stored as Fernet ciphertext; the key is shared with the
// web API that writes them.
package secrets

import (
	"fmt"

	"github.com/fernet/fernet-go"
)

// TokenCipher encrypts and decrypts PATs with a single Fernet key.
type TokenCipher struct {
	key *fernet.Key
}

// NewTokenCipher parses a URL-safe base64 Fernet key.
func NewTokenCipher(key string) (*TokenCipher, error) {
	k, err := fernet.DecodeKey(key)
	if err != nil {
		return nil, fmt.Errorf("secrets: invalid encryption key: %w", err)
	}
	return &TokenCipher{key: k}, nil
}

// Encrypt returns the Fernet ciphertext for plaintext. Used by tooling and
// tests; the scheduler itself only decrypts.
func (c *TokenCipher) Encrypt(plaintext string) (string, error) {
	tok, err := fernet.EncryptAndSign([]byte(plaintext), c.key)
	if err != nil {
		return "", fmt.Errorf("secrets: encrypt: %w", err)
	}
	return string(tok), nil
}

// Decrypt verifies and decrypts a stored token. Tokens do not expire (TTL 0);
// an invalid or tampered token returns an error.
func (c *TokenCipher) Decrypt(ciphertext string) (string, error) {
	msg := fernet.VerifyAndDecrypt([]byte(ciphertext), 0, []*fernet.Key{c.key})
	if msg == nil {
		return "", fmt.Errorf("secrets: decrypt: invalid token or wrong key")
	}
	return string(msg), nil
}
