// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package secret encrypts short secrets (recovery phrases) with a
// process-wide AES-256-GCM key. Each call to Encrypt draws a fresh random
// nonce, which is stored next to the ciphertext.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"autoblog/internal/apperr"
)

// KeySize is the required key length in bytes (AES-256).
const KeySize = 32

// Sealed is an encrypted value as persisted: hex ciphertext plus the hex
// nonce it was sealed with. Neither is useful without the other.
type Sealed struct {
	Ciphertext string `json:"encryptedData"`
	IV         string `json:"iv"`
}

// Codec encrypts and decrypts with a fixed key.
type Codec struct {
	aead cipher.AEAD
}

// NewCodec builds a codec from a hex-encoded 32-byte key. A missing,
// non-hex or wrong-length key is a configuration error.
func NewCodec(hexKey string) (*Codec, error) {
	hexKey = strings.TrimSpace(hexKey)
	if hexKey == "" {
		return nil, apperr.Configuration("RECOVERY_PHRASES_KEY is not set", nil)
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, apperr.Configuration("RECOVERY_PHRASES_KEY is not valid hex", err)
	}
	if len(key) != KeySize {
		return nil, apperr.Configuration(
			fmt.Sprintf("RECOVERY_PHRASES_KEY must be %d bytes (%d hex chars), got %d bytes", KeySize, KeySize*2, len(key)), nil)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, apperr.Configuration("create cipher", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, apperr.Configuration("create gcm", err)
	}
	return &Codec{aead: aead}, nil
}

// Encrypt seals plaintext under a new random nonce.
func (c *Codec) Encrypt(plaintext string) (Sealed, error) {
	nonce := make([]byte, c.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return Sealed{}, fmt.Errorf("secret nonce: %w", err)
	}
	ct := c.aead.Seal(nil, nonce, []byte(plaintext), nil)
	return Sealed{
		Ciphertext: hex.EncodeToString(ct),
		IV:         hex.EncodeToString(nonce),
	}, nil
}

// Decrypt opens a value produced by Encrypt.
func (c *Codec) Decrypt(ciphertext, iv string) (string, error) {
	ct, err := hex.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("secret decode ciphertext: %w", err)
	}
	nonce, err := hex.DecodeString(iv)
	if err != nil {
		return "", fmt.Errorf("secret decode iv: %w", err)
	}
	if len(nonce) != c.aead.NonceSize() {
		return "", fmt.Errorf("secret decode iv: want %d bytes, got %d", c.aead.NonceSize(), len(nonce))
	}
	pt, err := c.aead.Open(nil, nonce, ct, nil)
	if err != nil {
		return "", fmt.Errorf("secret open: %w", err)
	}
	return string(pt), nil
}

// Open is a convenience wrapper around Decrypt for a Sealed value.
func (c *Codec) Open(s Sealed) (string, error) {
	return c.Decrypt(s.Ciphertext, s.IV)
}

// GenerateKey returns a new random hex key suitable for RECOVERY_PHRASES_KEY.
func GenerateKey() (string, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return "", fmt.Errorf("generate key: %w", err)
	}
	return hex.EncodeToString(key), nil
}
