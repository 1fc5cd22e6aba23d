package secrets

import (
	"testing"

	"github.com/fernet/fernet-go"
)

func generateKey(t *testing.T) string {
	t.Helper()
	var k fernet.Key
	if err := k.Generate(); err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return k.Encode()
}

func TestTokenCipher_RoundTrip(t *testing.T) {
	c, err := NewTokenCipher(generateKey(t))
	if err != nil {
		t.Fatalf("NewTokenCipher: %v", err)
	}

	enc, err := c.Encrypt("ghp_example_token")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if enc == "ghp_example_token" {
		t.Fatal("ciphertext equals plaintext")
	}

	dec, err := c.Decrypt(enc)
	if err != nil {
		t.Fatalf("Decrypt: %v", err)
	}
	if dec != "ghp_example_token" {
		t.Errorf("got %q, want %q", dec, "ghp_example_token")
	}
}

func TestTokenCipher_WrongKey(t *testing.T) {
	c1, err := NewTokenCipher(generateKey(t))
	if err != nil {
		t.Fatalf("NewTokenCipher: %v", err)
	}
	c2, err := NewTokenCipher(generateKey(t))
	if err != nil {
		t.Fatalf("NewTokenCipher: %v", err)
	}

	enc, err := c1.Encrypt("secret")
	if err != nil {
		t.Fatalf("Encrypt: %v", err)
	}
	if _, err := c2.Decrypt(enc); err == nil {
		t.Error("expected error decrypting with wrong key")
	}
}

func TestTokenCipher_InvalidKey(t *testing.T) {
	if _, err := NewTokenCipher("not-a-key"); err == nil {
		t.Error("expected error for invalid key")
	}
}

func TestTokenCipher_GarbageCiphertext(t *testing.T) {
	c, err := NewTokenCipher(generateKey(t))
	if err != nil {
		t.Fatalf("NewTokenCipher: %v", err)
	}
	if _, err := c.Decrypt("garbage"); err == nil {
		t.Error("expected error for garbage ciphertext")
	}
}
