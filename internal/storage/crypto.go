package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

// Envelope layout: magic(8) + salt(16) + nonce(12) + ciphertext||tag.
const (
	envelopeMagic = "GCM3NCR0"
	saltLen       = 16
	nonceLen      = 12
	pbkdf2Iters   = 100000
	keyLen        = 32
)

// IsEnvelope reports whether data starts with the encryption magic.
func IsEnvelope(data []byte) bool {
	return len(data) >= len(envelopeMagic) && string(data[:len(envelopeMagic)]) == envelopeMagic
}

// EncryptEnvelope seals plaintext with a password-derived AES-GCM key.
func EncryptEnvelope(plaintext []byte, password string) ([]byte, error) {
	salt := make([]byte, saltLen)
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generate nonce: %w", err)
	}

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	sealed := gcm.Seal(nil, nonce, plaintext, nil)

	out := make([]byte, 0, len(envelopeMagic)+saltLen+nonceLen+len(sealed))
	out = append(out, envelopeMagic...)
	out = append(out, salt...)
	out = append(out, nonce...)
	out = append(out, sealed...)
	return out, nil
}

// DecryptEnvelope opens a sealed envelope produced by EncryptEnvelope.
func DecryptEnvelope(data []byte, password string) ([]byte, error) {
	minLen := len(envelopeMagic) + saltLen + nonceLen + 16
	if len(data) < minLen {
		return nil, fmt.Errorf("envelope too short: %d bytes", len(data))
	}
	if !IsEnvelope(data) {
		return nil, fmt.Errorf("missing envelope magic")
	}

	off := len(envelopeMagic)
	salt := data[off : off+saltLen]
	nonce := data[off+saltLen : off+saltLen+nonceLen]
	sealed := data[off+saltLen+nonceLen:]

	gcm, err := newGCM(password, salt)
	if err != nil {
		return nil, err
	}

	plaintext, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}

func newGCM(password string, salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iters, keyLen, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create GCM: %w", err)
	}
	return gcm, nil
}
