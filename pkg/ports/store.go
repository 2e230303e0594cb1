package ports

import (
	"context"
	"errors"
	"time"
)

// ErrModelNotFound is returned by TokenStore.Load when no model is stored under a key.
var ErrModelNotFound = errors.New("domain model not found")

// TokenStore persists encoded domain models (see pkg/codec) by key.
// Implementations must be safe for concurrent use.
type TokenStore interface {
	// Save stores token under key, replacing any previous value.
	Save(ctx context.Context, key, token string) error

	// Load returns the token stored under key.
	// Returns ErrModelNotFound if the key does not exist.
	Load(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// List returns the stored keys.
	List(ctx context.Context) ([]string, error)
}

// UnlockFunc releases a lock obtained from a Locker.
type UnlockFunc func(ctx context.Context) error

// Locker serialises read-modify-write cycles on a key across processes.
type Locker interface {
	// Lock blocks until the lock on key is held or ctx is done.
	// The lock expires after ttl if never released.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}

// ModelLocator fetches and publishes encoded models at a URL.
type ModelLocator interface {
	Download(ctx context.Context, url string) (string, error)
	Upload(ctx context.Context, token, url string) error
}
