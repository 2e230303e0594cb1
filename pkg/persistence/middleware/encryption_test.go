package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/buml/pkg/adapters/memory"
	"github.com/aretw0/buml/pkg/persistence/middleware"
	"github.com/aretw0/buml/pkg/ports"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secure(t *testing.T, store ports.TokenStore, cfg middleware.EncryptionConfig) ports.TokenStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return middleware.Chain(store, mw)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	ports.RunTokenStoreContract(t, secure(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})

	require.NoError(t, store.Save(ctx, "library", "eyJmb3JtYXQiOiJidW1sL3YxIn0="))

	raw, err := underlying.Load(ctx, "library")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(raw, "enc:v1:"))
	assert.NotContains(t, raw, "eyJmb3JtYXQi")

	got, err := store.Load(ctx, "library")
	require.NoError(t, err)
	assert.Equal(t, "eyJmb3JtYXQiOiJidW1sL3YxIn0=", got)

	keys, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"library"}, keys)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)

	require.NoError(t, secure(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey}).Save(ctx, "m", "token"))

	rotated := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	got, err := rotated.Load(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, "token", got)

	wrong := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err = wrong.Load(ctx, "m")
	assert.Error(t, err)
}

func TestEncryptionMiddleware_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	assert.Error(t, err)

	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(ctx, "plain", "token"))
	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err = store.Load(ctx, "plain")
	assert.ErrorIs(t, err, middleware.ErrNotEncrypted)

	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrModelNotFound)
}

func TestParseKeys(t *testing.T) {
	active := base64.StdEncoding.EncodeToString(generateKey(t))
	old := base64.StdEncoding.EncodeToString(generateKey(t))

	cfg, err := middleware.ParseKeys(active, old)
	require.NoError(t, err)
	assert.Len(t, cfg.ActiveKey, 32)
	assert.Len(t, cfg.FallbackKeys, 1)

	_, err = middleware.ParseKeys("not base64!")
	assert.Error(t, err)
	_, err = middleware.ParseKeys(base64.StdEncoding.EncodeToString([]byte("too short")))
	assert.Error(t, err)
	_, err = middleware.ParseKeys()
	assert.Error(t, err)
}
