// Package cryptox holds the cryptographic primitives of the vault: the
// symmetric cipher protecting stored secrets, key file management and the
// one-way hashers used for account passwords.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/dmitrijs2005/credvault/internal/common"
)

// KeySize is the length of the vault key in bytes (AES-256).
const KeySize = 32

// tokenVersion prefixes every token and is authenticated as additional data.
const tokenVersion byte = 0x01

var tokenEncoding = base64.URLEncoding

// Cipher seals and opens string values with AES-256-GCM under one key.
// A Cipher is safe for concurrent use.
type Cipher struct {
	aead cipher.AEAD
}

// NewCipher returns a Cipher bound to key, which must be KeySize bytes long.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: want %d bytes, got %d", ErrInvalidKey, KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	return &Cipher{aead: aead}, nil
}

// Encrypt seals plaintext and returns a printable token of the form
// base64url(version || nonce || ciphertext+tag). A fresh random nonce is used
// on every call, so encrypting the same value twice yields different tokens.
func (c *Cipher) Encrypt(plaintext string) (string, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}

	out := make([]byte, 0, 1+len(nonce)+len(plaintext)+c.aead.Overhead())
	out = append(out, tokenVersion)
	out = append(out, nonce...)
	out = c.aead.Seal(out, nonce, []byte(plaintext), []byte{tokenVersion})

	return tokenEncoding.EncodeToString(out), nil
}

// Decrypt opens a token produced by Encrypt. Any malformed, truncated or
// tampered token, as well as a token sealed under another key, fails with
// common.ErrIntegrity.
func (c *Cipher) Decrypt(token string) (string, error) {
	raw, err := tokenEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("%w: malformed token", common.ErrIntegrity)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < 1+nonceSize+c.aead.Overhead() {
		return "", fmt.Errorf("%w: token too short", common.ErrIntegrity)
	}
	if raw[0] != tokenVersion {
		return "", fmt.Errorf("%w: unknown token version %d", common.ErrIntegrity, raw[0])
	}

	plaintext, err := c.aead.Open(nil, raw[1:1+nonceSize], raw[1+nonceSize:], []byte{tokenVersion})
	if err != nil {
		return "", common.ErrIntegrity
	}

	return string(plaintext), nil
}

// Encrypt is a convenience wrapper that seals plaintext under key.
func Encrypt(plaintext string, key []byte) (string, error) {
	c, err := NewCipher(key)
	if err != nil {
		return "", err
	}
	return c.Encrypt(plaintext)
}

// Decrypt is a convenience wrapper that opens token under key.
func Decrypt(token string, key []byte) (string, error) {
	c, err := NewCipher(key)
	if err != nil {
		return "", err
	}
	return c.Decrypt(token)
}
