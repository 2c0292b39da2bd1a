package credstore

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

// DefaultPassphrase is compiled into the binary. Tokens sealed with it are
// obfuscated against casual inspection of the session directory, nothing
// more: anyone holding the binary holds the key.
const DefaultPassphrase = "storefront-go/session-token/v1"

// hkdfInfo binds derived keys to this use so the same passphrase cannot
// produce a key for anything else.
const hkdfInfo = "storefront-go access token"

// ErrCiphertext is returned by Decrypt for malformed or tampered input.
var ErrCiphertext = errors.New("credstore: invalid token ciphertext")

// TokenCipher seals access tokens at rest.
type TokenCipher interface {
	Encrypt(plain string) (string, error)
	Decrypt(sealed string) (string, error)
}

// Cipher is an XChaCha20-Poly1305 TokenCipher. Output is
// base64url(nonce || ciphertext || tag).
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher derives a 256-bit key from passphrase with HKDF-SHA256.
func NewCipher(passphrase string) (*Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("credstore: empty encryption passphrase")
	}

	key := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(passphrase), nil, []byte(hkdfInfo)), key); err != nil {
		return nil, fmt.Errorf("credstore: deriving key: %w", err)
	}

	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, fmt.Errorf("credstore: creating cipher: %w", err)
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plain with a fresh random nonce.
func (c *Cipher) Encrypt(plain string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize(), c.aead.NonceSize()+len(plain)+c.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("credstore: generating nonce: %w", err)
	}

	sealed := c.aead.Seal(nonce, nonce, []byte(plain), nil)

	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

// Decrypt opens a value produced by Encrypt.
func (c *Cipher) Decrypt(sealed string) (string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCiphertext, err)
	}

	if len(raw) < c.aead.NonceSize()+c.aead.Overhead() {
		return "", fmt.Errorf("%w: too short", ErrCiphertext)
	}

	nonce, body := raw[:c.aead.NonceSize()], raw[c.aead.NonceSize():]

	plain, err := c.aead.Open(nil, nonce, body, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrCiphertext, err)
	}

	return string(plain), nil
}
