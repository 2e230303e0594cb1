package session

import (
	"context"

	"github.com/aretw0/buml/pkg/domain"
)

// ActiveModel is the handle to the single model the stateful tools work on.
type ActiveModel struct {
	manager *Manager
	key     string
}

// Active returns a handle bound to key. An empty key means DefaultKey.
func (m *Manager) Active(key string) *ActiveModel {
	if key == "" {
		key = DefaultKey
	}
	return &ActiveModel{manager: m, key: key}
}

// Key returns the store key the handle is bound to.
func (a *ActiveModel) Key() string { return a.key }

// Get returns a fresh copy of the active model, or ErrNoModel.
func (a *ActiveModel) Get(ctx context.Context) (*domain.DomainModel, error) {
	return a.manager.Load(ctx, a.key)
}

// Set replaces the active model.
func (a *ActiveModel) Set(ctx context.Context, m *domain.DomainModel) error {
	return a.manager.Save(ctx, a.key, m)
}

// Update applies fn to the active model and stores the result if fn succeeds.
func (a *ActiveModel) Update(ctx context.Context, fn func(*domain.DomainModel) error) error {
	return a.manager.Update(ctx, a.key, fn)
}
