package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/buml/internal/logging"
	"github.com/aretw0/buml/pkg/codec"
	"github.com/aretw0/buml/pkg/domain"
	"github.com/aretw0/buml/pkg/ports"
)

// DefaultKey is the store key of the process-wide active model.
const DefaultKey = "active"

// ErrNoModel is returned when no model has been stored under a key yet.
var ErrNoModel = errors.New("no domain model has been created yet, call new_model first")

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager serialises read-modify-write cycles on stored models.
// Locks are per key and reference counted so unused ones are dropped.
type Manager struct {
	store ports.TokenStore
	codec *codec.Codec

	mu    sync.Mutex
	locks map[string]*lockEntry

	locker  ports.Locker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables cross-process locking around Update.
func WithLocker(locker ports.Locker, ttl time.Duration) Option {
	return func(m *Manager) {
		m.locker = locker
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager over store, encoding models with c.
func NewManager(store ports.TokenStore, c *codec.Codec, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		codec:   c,
		locks:   make(map[string]*lockEntry),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) acquire(key string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		entry = &lockEntry{}
		m.locks[key] = entry
	}
	entry.refs++
	return entry
}

func (m *Manager) release(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[key]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, key)
	}
}

// Load decodes the model stored under key.
func (m *Manager) Load(ctx context.Context, key string) (*domain.DomainModel, error) {
	token, err := m.store.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ports.ErrModelNotFound) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("load model %q: %w", key, err)
	}
	return m.codec.Decode(token)
}

// Save encodes model and stores it under key, replacing the previous one.
func (m *Manager) Save(ctx context.Context, key string, model *domain.DomainModel) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.save(ctx, key, model)
	})
}

func (m *Manager) save(ctx context.Context, key string, model *domain.DomainModel) error {
	token, err := m.codec.Encode(model)
	if err != nil {
		return err
	}
	if err := m.store.Save(ctx, key, token); err != nil {
		return fmt.Errorf("save model %q: %w", key, err)
	}
	return nil
}

// Update loads the model under key, applies fn and saves the result.
// Nothing is written when fn returns an error.
func (m *Manager) Update(ctx context.Context, key string, fn func(*domain.DomainModel) error) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		model, err := m.Load(ctx, key)
		if err != nil {
			return err
		}
		if err := fn(model); err != nil {
			return err
		}
		return m.save(ctx, key, model)
	})
}

// Delete removes the model stored under key.
func (m *Manager) Delete(ctx context.Context, key string) error {
	return m.WithLock(ctx, key, func(ctx context.Context) error {
		return m.store.Delete(ctx, key)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying token store.
func (m *Manager) Store() ports.TokenStore {
	return m.store
}

// Codec returns the codec used to encode stored models.
func (m *Manager) Codec() *codec.Codec {
	return m.codec
}

// WithLock executes fn while holding the lock for key.
func (m *Manager) WithLock(ctx context.Context, key string, fn func(context.Context) error) error {
	entry := m.acquire(key)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(key)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, key, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"key", key,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
