package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/buml/pkg/ports"
)

// Store implements ports.TokenStore in memory.
// Tokens are immutable strings, so values never alias caller state.
// Safe for concurrent use.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]string),
	}
}

// Save stores the token in memory.
func (s *Store) Save(ctx context.Context, key, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = token
	return nil
}

// Load retrieves the token from memory.
func (s *Store) Load(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, ok := s.data[key]
	if !ok {
		return "", ports.ErrModelNotFound
	}
	return token, nil
}

// Delete removes the key.
func (s *Store) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

// List returns the stored keys in sorted order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
