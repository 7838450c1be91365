package provider

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe, priority-ordered set of providers. It is built
// once at startup and reused for the process lifetime.
type Registry struct {
	mu        sync.RWMutex
	providers []Provider // ascending priority
}

// NewRegistry creates a registry holding the given providers.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{}
	for _, p := range providers {
		_ = r.Register(p)
	}
	return r
}

// Register adds a provider, keeping the chain sorted by priority. Duplicate
// registrations overwrite the previous entry. Equal priorities keep
// registration order.
func (r *Registry) Register(p Provider) error {
	if p == nil || p.Name() == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, existing := range r.providers {
		if existing.Name() == p.Name() {
			r.providers = append(r.providers[:i], r.providers[i+1:]...)
			break
		}
	}
	r.providers = append(r.providers, p)
	sort.SliceStable(r.providers, func(i, j int) bool {
		return r.providers[i].Priority() < r.providers[j].Priority()
	})
	return nil
}

// Ordered returns the providers in ascending priority order.
func (r *Registry) Ordered() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}

// Statuses returns a status snapshot per provider, in priority order.
func (r *Registry) Statuses() []ProviderStatus {
	providers := r.Ordered()
	out := make([]ProviderStatus, 0, len(providers))
	for _, p := range providers {
		out = append(out, p.Status())
	}
	return out
}
