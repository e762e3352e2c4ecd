package workspace

import (
	"context"
	"log/slog"
	"sync"
)

// Registry lazily opens one Store per tenant and shares it between callers.
type Registry struct {
	deps   Deps
	logger *slog.Logger

	mu     sync.Mutex
	stores map[string]*Store
	onOpen []func(*Store)
}

// NewRegistry creates a registry whose stores share deps.
func NewRegistry(deps Deps, logger *slog.Logger) *Registry {
	return &Registry{
		deps:   deps,
		logger: logger,
		stores: make(map[string]*Store),
	}
}

// OnOpen registers a hook run for every newly opened store.
func (r *Registry) OnOpen(fn func(*Store)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onOpen = append(r.onOpen, fn)
	for _, s := range r.stores {
		fn(s)
	}
}

// Get returns the tenant's store, opening it on first use.
func (r *Registry) Get(ctx context.Context, tenantID string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores[tenantID]; ok {
		return s, nil
	}

	s, err := Open(ctx, tenantID, r.deps, r.logger)
	if err != nil {
		return nil, err
	}
	r.stores[tenantID] = s
	for _, fn := range r.onOpen {
		fn(s)
	}
	return s, nil
}

// Tenants returns the ids of the opened stores.
func (r *Registry) Tenants() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.stores))
	for id := range r.stores {
		out = append(out, id)
	}
	return out
}
