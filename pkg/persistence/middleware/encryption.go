package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/buml/pkg/ports"
)

// envelopePrefix marks a token encrypted by this middleware.
const envelopePrefix = "enc:v1:"

// ErrNotEncrypted is returned by Load when the stored value has no envelope.
var ErrNotEncrypted = errors.New("stored model is missing encrypted data envelope")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt,
	// so keys can be rotated without rewriting stored models first.
	FallbackKeys [][]byte
}

// ParseKeys decodes base64 keys; the first one becomes the active key.
func ParseKeys(encoded ...string) (EncryptionConfig, error) {
	var cfg EncryptionConfig
	for i, s := range encoded {
		key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
		if err != nil {
			return cfg, fmt.Errorf("decode key %d: %w", i, err)
		}
		if i == 0 {
			cfg.ActiveKey = key
		} else {
			cfg.FallbackKeys = append(cfg.FallbackKeys, key)
		}
	}
	return cfg, cfg.validate()
}

func (c EncryptionConfig) validate() error {
	if len(c.ActiveKey) != 32 {
		return errors.New("active key must be 32 bytes (AES-256)")
	}
	for i, k := range c.FallbackKeys {
		if len(k) != 32 {
			return fmt.Errorf("fallback key %d must be 32 bytes (AES-256)", i)
		}
	}
	return nil
}

type encryptionMiddleware struct {
	next   ports.TokenStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts tokens at rest
// with AES-GCM. Keys and List pass through unchanged.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}
	return func(next ports.TokenStore) ports.TokenStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Save(ctx context.Context, key, token string) error {
	ciphertext, err := encrypt([]byte(token), m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt model: %w", err)
	}
	return m.next.Save(ctx, key, envelopePrefix+base64.StdEncoding.EncodeToString(ciphertext))
}

func (m *encryptionMiddleware) Load(ctx context.Context, key string) (string, error) {
	stored, err := m.next.Load(ctx, key)
	if err != nil {
		return "", err
	}

	encoded, ok := strings.CutPrefix(stored, envelopePrefix)
	if !ok {
		return "", ErrNotEncrypted
	}
	ciphertext, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return "", fmt.Errorf("failed to decrypt model: %w", err)
	}
	return string(plainText), nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, key string) error {
	return m.next.Delete(ctx, key)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
