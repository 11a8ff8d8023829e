// Package secret seals small secrets, such as API keys, for storage at rest.
package secret

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/argon2"
)

var (
	// ErrEmptyPassphrase is returned when a sealer is created without a passphrase.
	ErrEmptyPassphrase = errors.New("empty passphrase")

	// ErrInvalidCiphertext is returned when the sealed value is malformed
	ErrInvalidCiphertext = errors.New("invalid ciphertext: too short")

	// ErrDecryptionFailed is returned when decryption fails
	ErrDecryptionFailed = errors.New("decryption failed: authentication failed")
)

// Sealer seals and opens secrets.
type Sealer interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}

// Argon2id parameters for key derivation.
const (
	saltSize    = 16
	keySize     = 32 // AES-256
	argonTime   = 1
	argonMemory = 64 * 1024
	argonLanes  = 4
)

// AESSealer derives a fresh AES-256 key from a passphrase with Argon2id for
// every sealed value and encrypts with AES-GCM. The output is base64 of
// salt | nonce | ciphertext.
type AESSealer struct {
	passphrase []byte
}

// NewAESSealer creates a sealer for passphrase.
func NewAESSealer(passphrase string) (*AESSealer, error) {
	if passphrase == "" {
		return nil, ErrEmptyPassphrase
	}
	return &AESSealer{passphrase: []byte(passphrase)}, nil
}

// Seal encrypts plaintext. An empty plaintext seals to an empty string.
func (s *AESSealer) Seal(plaintext string) (string, error) {
	if plaintext == "" {
		return "", nil
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	gcm, err := s.aead(salt)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	out := make([]byte, 0, saltSize+len(nonce)+len(plaintext)+gcm.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = gcm.Seal(out, nonce, []byte(plaintext), nil)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a value produced by Seal.
func (s *AESSealer) Open(sealed string) (string, error) {
	if sealed == "" {
		return "", nil
	}

	data, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	if len(data) < saltSize {
		return "", ErrInvalidCiphertext
	}

	gcm, err := s.aead(data[:saltSize])
	if err != nil {
		return "", err
	}

	rest := data[saltSize:]
	nonceSize := gcm.NonceSize()
	if len(rest) < nonceSize+gcm.Overhead()+1 {
		return "", ErrInvalidCiphertext
	}

	plaintext, err := gcm.Open(nil, rest[:nonceSize], rest[nonceSize:], nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}

func (s *AESSealer) aead(salt []byte) (cipher.AEAD, error) {
	key := argon2.IDKey(s.passphrase, salt, argonTime, argonMemory, argonLanes, keySize)

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

var _ Sealer = (*AESSealer)(nil)
