package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunTokenStoreContract runs a suite of tests to verify that a TokenStore implementation
// adheres to the defined interface contract.
func RunTokenStoreContract(t *testing.T, store TokenStore) {
	ctx := context.Background()
	key := "contract-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, "dG9rZW4tMQ=="), "Save should not return error")

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "dG9rZW4tMQ==", loaded)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, "first"))
		require.NoError(t, store.Save(ctx, key, "second"))

		loaded, err := store.Load(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "second", loaded, "last writer wins")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+key)
		assert.ErrorIs(t, err, ErrModelNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, key, "doomed"))
		require.NoError(t, store.Delete(ctx, key), "Delete should not return error")

		_, err := store.Load(ctx, key)
		assert.ErrorIs(t, err, ErrModelNotFound, "Load after Delete should return ErrModelNotFound")

		assert.NoError(t, store.Delete(ctx, key), "Delete should be idempotent")
	})

	t.Run("List", func(t *testing.T) {
		k1, k2 := key+"-1", key+"-2"
		require.NoError(t, store.Save(ctx, k1, "a"))
		require.NoError(t, store.Save(ctx, k2, "b"))
		defer func() {
			_ = store.Delete(ctx, k1)
			_ = store.Delete(ctx, k2)
		}()

		keys, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, k1)
		assert.Contains(t, keys, k2)
	})
}
