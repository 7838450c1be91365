// Package orchestrator resolves financial data requests against the cache
// and the provider fallback chain, and composes the full per-symbol analysis.
package orchestrator

import (
	"context"
	"fmt"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/divlens/internal/cache"
	"github.com/seenimoa/divlens/internal/provider"
)

// cacheSource is the provider name reported for cache hits.
const cacheSource = "cache"

// Config holds the cache lifetimes the orchestrator writes with.
type Config struct {
	TTLHours         map[string]int // category -> hours
	NegativeTTLHours int
}

// Orchestrator owns the provider chain and the cache store for the process
// lifetime. It is safe for concurrent use.
type Orchestrator struct {
	registry *provider.Registry
	store    *cache.Store
	cfg      Config
	now      func() time.Time
	log      zerolog.Logger
}

// New creates an orchestrator over the given provider chain and store.
func New(registry *provider.Registry, store *cache.Store, cfg Config, log zerolog.Logger) *Orchestrator {
	if cfg.NegativeTTLHours <= 0 {
		cfg.NegativeTTLHours = 1
	}
	return &Orchestrator{
		registry: registry,
		store:    store,
		cfg:      cfg,
		now:      time.Now,
		log:      log.With().Str("component", "orchestrator").Logger(),
	}
}

// Fetch resolves one category for one symbol: a fresh cache entry wins,
// otherwise providers are tried in priority order. SUCCESS is cached and
// returned, NO_DATA is returned without trying further providers, and
// RATE_LIMITED or PROVIDER_ERROR fall through to the next provider. When no
// provider succeeds a negative entry is cached for the exact key.
func (o *Orchestrator) Fetch(ctx context.Context, req provider.Request) *provider.Result {
	if req.Category.Periodic() && req.Period == "" {
		req.Period = provider.PeriodAnnual
	}
	cacheType := req.Category.CacheType(req.Period)
	log := o.log.With().Str("category", cacheType).Str("symbol", req.Symbol).Logger()

	if r := o.fromCache(req.Category, cacheType, req.Symbol, log); r != nil {
		return r
	}

	var attempts []string
	for _, p := range o.registry.Ordered() {
		if err := ctx.Err(); err != nil {
			return provider.Failure("", fmt.Sprintf("request cancelled: %v", err))
		}
		if !p.IsAvailable() {
			log.Debug().Str("provider", p.Name()).Msg("Provider unavailable, skipping")
			attempts = append(attempts, p.Name()+": unavailable")
			continue
		}
		if !p.EndpointAvailable(req.Category) {
			log.Debug().Str("provider", p.Name()).Msg("Endpoint blocked, skipping")
			attempts = append(attempts, p.Name()+": endpoint blocked")
			continue
		}

		r := o.call(ctx, p, req)
		switch r.Status {
		case provider.StatusSuccess:
			o.save(cacheType, req.Symbol, r.Data, o.ttlHours(req.Category), log)
			log.Debug().Str("provider", p.Name()).Msg("Fetched")
			return r
		case provider.StatusNoData:
			log.Debug().Str("provider", p.Name()).Str("reason", r.Error).Msg("No data")
			return r
		default:
			log.Warn().Str("provider", p.Name()).Str("status", string(r.Status)).Str("error", r.Error).
				Msg("Provider failed, trying next")
			attempts = append(attempts, fmt.Sprintf("%s: %s", p.Name(), r.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return provider.Failure("", fmt.Sprintf("request cancelled: %v", err))
	}

	o.store.SetNegative(cacheType, req.Symbol, o.cfg.NegativeTTLHours)
	log.Warn().Strs("attempts", attempts).Int("negative_ttl_hours", o.cfg.NegativeTTLHours).
		Msg("All providers exhausted")

	msg := fmt.Sprintf("all providers exhausted for %s %s", cacheType, req.Symbol)
	if len(attempts) > 0 {
		msg += ": " + strings.Join(attempts, "; ")
	}
	return provider.Failure("", msg)
}

// fromCache returns the cached result for the key, or nil on a miss.
func (o *Orchestrator) fromCache(cat provider.Category, cacheType, symbol string, log zerolog.Logger) *provider.Result {
	entry, ok := o.store.Get(cacheType, symbol)
	if !ok {
		return nil
	}

	cachedAt, expiresAt := entry.Metadata.CachedAt, entry.Metadata.ExpiresAt
	if entry.Negative() {
		log.Debug().Time("expires_at", expiresAt).Msg("Negative cache hit")
		r := provider.Failure(cacheSource, fmt.Sprintf("all providers failed recently for %s %s (cached until %s)",
			cacheType, symbol, expiresAt.Format(time.RFC3339)))
		r.CachedAt, r.ExpiresAt = &cachedAt, &expiresAt
		return r
	}

	data, err := provider.DecodePayload(cat, entry.Data)
	if err != nil {
		log.Warn().Err(err).Msg("Cached payload unreadable, refetching")
		return nil
	}
	log.Debug().Msg("Cache hit")

	r := provider.Success(cacheSource, data)
	r.CachedAt, r.ExpiresAt = &cachedAt, &expiresAt
	return r
}

// save persists a successful payload. A payload that cannot be encoded is
// still returned to the caller, just not cached.
func (o *Orchestrator) save(cacheType, symbol string, data any, ttlHours int, log zerolog.Logger) {
	raw, err := provider.EncodePayload(data)
	if err != nil {
		log.Warn().Err(err).Msg("Payload not cacheable")
		return
	}
	o.store.Set(cacheType, symbol, raw, ttlHours)
}

// call runs one provider fetch, converting a panic or a nil result into
// PROVIDER_ERROR so the walk can continue.
func (o *Orchestrator) call(ctx context.Context, p provider.Provider, req provider.Request) (r *provider.Result) {
	defer func() {
		if rec := recover(); rec != nil {
			o.log.Error().Str("provider", p.Name()).Str("category", string(req.Category)).Str("symbol", req.Symbol).
				Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("Provider panicked")
			r = provider.Failuref(p.Name(), "unexpected failure: %v", rec)
		}
	}()

	r = provider.Dispatch(ctx, p, req)
	if r == nil {
		return provider.Failure(p.Name(), "provider returned no result")
	}
	if r.Status == provider.StatusSuccess && r.Data == nil {
		return provider.NoData(p.Name(), "empty payload")
	}
	if r.Status != provider.StatusSuccess {
		r.Data = nil
	}
	return r
}

func (o *Orchestrator) ttlHours(c provider.Category) int {
	if h, ok := o.cfg.TTLHours[string(c)]; ok && h > 0 {
		return h
	}
	return defaultTTLHours[c]
}

var defaultTTLHours = map[provider.Category]int{
	provider.CategoryOverview:  24,
	provider.CategoryDividends: 48,
	provider.CategoryIncome:    168,
	provider.CategoryBalance:   168,
	provider.CategoryCashFlow:  168,
	provider.CategoryEarnings:  168,
}
