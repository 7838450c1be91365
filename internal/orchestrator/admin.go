package orchestrator

import (
	"github.com/seenimoa/divlens/internal/cache"
	"github.com/seenimoa/divlens/internal/provider"
)

// ProvidersStatus returns a health snapshot per provider, in priority order.
func (o *Orchestrator) ProvidersStatus() []provider.ProviderStatus {
	return o.registry.Statuses()
}

// CacheStats returns cache usage counters.
func (o *Orchestrator) CacheStats() cache.Stats {
	return o.store.Stats()
}

// ClearCache removes every cache entry.
func (o *Orchestrator) ClearCache() int {
	return o.store.ClearAll()
}

// ClearCacheCategory removes a category's entries, both period variants.
func (o *Orchestrator) ClearCacheCategory(c provider.Category) int {
	return o.store.ClearCategory(string(c))
}

// ClearCacheSymbol removes every entry for a symbol.
func (o *Orchestrator) ClearCacheSymbol(symbol string) int {
	return o.store.ClearSymbol(symbol)
}

// WarmCache loads fresh persisted entries into memory.
func (o *Orchestrator) WarmCache() int {
	return o.store.Warm()
}
