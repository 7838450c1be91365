package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/seenimoa/divlens/internal/infra"
)

// Options tune a provider's cooldowns, quota and call spacing.
type Options struct {
	Priority          int
	DailyLimit        int           // 0 = unlimited
	MinCallInterval   time.Duration // 0 = no spacing
	RateLimitCooldown time.Duration
	AuthCooldown      time.Duration
	PremiumCooldown   time.Duration
	Clock             func() time.Time
}

// DefaultOptions returns the stock cooldowns and one call per second.
func DefaultOptions() Options {
	return Options{
		MinCallInterval:   time.Second,
		RateLimitCooldown: 60 * time.Minute,
		AuthCooldown:      24 * time.Hour,
		PremiumCooldown:   1440 * time.Minute,
	}
}

// BaseProvider holds the exhaustion, quota and endpoint-block state shared by
// all provider implementations. Embed it in concrete providers.
type BaseProvider struct {
	name     string
	priority int
	opts     Options
	now      func() time.Time
	limiter  *rate.Limiter
	log      zerolog.Logger

	mu              sync.Mutex
	exhaustedUntil  time.Time
	exhaustedReason string
	dailyCalls      int
	resetDate       string
	blocked         map[Category]time.Time
}

// NewBaseProvider creates the shared state for a provider.
func NewBaseProvider(name string, opts Options, log zerolog.Logger) *BaseProvider {
	defaults := DefaultOptions()
	if opts.RateLimitCooldown <= 0 {
		opts.RateLimitCooldown = defaults.RateLimitCooldown
	}
	if opts.AuthCooldown <= 0 {
		opts.AuthCooldown = defaults.AuthCooldown
	}
	if opts.PremiumCooldown <= 0 {
		opts.PremiumCooldown = defaults.PremiumCooldown
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}

	limit := rate.Inf
	if opts.MinCallInterval > 0 {
		limit = rate.Every(opts.MinCallInterval)
	}

	return &BaseProvider{
		name:      name,
		priority:  opts.Priority,
		opts:      opts,
		now:       now,
		limiter:   rate.NewLimiter(limit, 1),
		log:       log.With().Str("provider", name).Logger(),
		resetDate: now().Format("2006-01-02"),
		blocked:   make(map[Category]time.Time),
	}
}

func (b *BaseProvider) Name() string            { return b.name }
func (b *BaseProvider) Priority() int           { return b.priority }
func (b *BaseProvider) Logger() *zerolog.Logger { return &b.log }

// IsAvailable is false within a cooldown window or when the daily quota is
// spent for the current local date.
func (b *BaseProvider) IsAvailable() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.rollover(now)
	if now.Before(b.exhaustedUntil) {
		return false
	}
	if b.opts.DailyLimit > 0 && b.dailyCalls >= b.opts.DailyLimit {
		return false
	}
	return true
}

// EndpointAvailable is false while the category is blocked. Expired blocks are
// dropped on read.
func (b *BaseProvider) EndpointAvailable(c Category) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	until, ok := b.blocked[c]
	if !ok {
		return true
	}
	if b.now().Before(until) {
		return false
	}
	delete(b.blocked, c)
	return true
}

// Status returns a snapshot of the provider's state.
func (b *BaseProvider) Status() ProviderStatus {
	available := b.IsAvailable()

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	st := ProviderStatus{
		Name:       b.name,
		Priority:   b.priority,
		Available:  available,
		DailyCalls: b.dailyCalls,
	}
	if b.opts.DailyLimit > 0 {
		limit := b.opts.DailyLimit
		st.DailyLimit = &limit
	}
	if now.Before(b.exhaustedUntil) {
		until := b.exhaustedUntil
		st.ExhaustedUntil = &until
		st.ExhaustedReason = b.exhaustedReason
	}
	for c, until := range b.blocked {
		if now.Before(until) {
			st.BlockedEndpoints = append(st.BlockedEndpoints, c)
		}
	}
	sort.Slice(st.BlockedEndpoints, func(i, j int) bool {
		return st.BlockedEndpoints[i] < st.BlockedEndpoints[j]
	})
	st.BlockedEndpointCount = len(st.BlockedEndpoints)
	return st
}

// ErrExhausted is returned by Acquire when the provider entered a cooldown
// or spent its daily quota while the call waited for the limiter.
var ErrExhausted = errors.New("provider exhausted")

// Acquire waits for the call-spacing limiter, then admits the call only if
// the provider is still out of cooldown and under its daily quota. The check
// and the quota increment share one critical section.
func (b *BaseProvider) Acquire(ctx context.Context) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limiter: %w", b.name, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	b.rollover(now)
	if now.Before(b.exhaustedUntil) {
		return fmt.Errorf("%s in cooldown until %s: %w", b.name, b.exhaustedUntil.Format(time.RFC3339), ErrExhausted)
	}
	if b.opts.DailyLimit > 0 && b.dailyCalls >= b.opts.DailyLimit {
		return fmt.Errorf("%s daily quota of %d spent: %w", b.name, b.opts.DailyLimit, ErrExhausted)
	}
	b.dailyCalls++
	return nil
}

// MarkRateLimited puts the whole provider into the rate-limit cooldown.
func (b *BaseProvider) MarkRateLimited(reason string) {
	b.exhaust(b.opts.RateLimitCooldown, reason)
}

// MarkAuthFailed puts the whole provider into the longer auth cooldown.
func (b *BaseProvider) MarkAuthFailed(reason string) {
	b.exhaust(b.opts.AuthCooldown, reason)
}

// BlockEndpoint disables a single category, leaving the others usable.
func (b *BaseProvider) BlockEndpoint(c Category, reason string) {
	b.mu.Lock()
	until := b.now().Add(b.opts.PremiumCooldown)
	b.blocked[c] = until
	b.mu.Unlock()

	b.log.Warn().Str("category", string(c)).Time("blocked_until", until).Str("reason", reason).
		Msg("Endpoint blocked")
}

func (b *BaseProvider) exhaust(d time.Duration, reason string) {
	b.mu.Lock()
	until := b.now().Add(d)
	if until.After(b.exhaustedUntil) {
		b.exhaustedUntil = until
		b.exhaustedReason = reason
	}
	b.mu.Unlock()

	b.log.Warn().Time("exhausted_until", until).Str("reason", reason).Msg("Provider exhausted")
}

// rollover resets the daily counter when the local date changes. Must be
// called with mu held.
func (b *BaseProvider) rollover(now time.Time) {
	today := now.Format("2006-01-02")
	if today != b.resetDate {
		b.dailyCalls = 0
		b.resetDate = today
	}
}

// Classify turns a transport error into a Result and applies the matching
// state transition: 429 cools the provider down, 401/403 trigger the auth
// cooldown, 402 blocks the endpoint, 404 is NO_DATA.
func (b *BaseProvider) Classify(c Category, symbol string, err error) *Result {
	var httpErr *infra.HTTPError
	if errors.As(err, &httpErr) {
		switch httpErr.StatusCode {
		case http.StatusTooManyRequests:
			b.MarkRateLimited("HTTP 429")
			return RateLimited(b.name, "rate limited (HTTP 429)")
		case http.StatusUnauthorized, http.StatusForbidden:
			b.MarkAuthFailed(fmt.Sprintf("HTTP %d", httpErr.StatusCode))
			return Failuref(b.name, "authentication failed (HTTP %d)", httpErr.StatusCode)
		case http.StatusPaymentRequired:
			b.BlockEndpoint(c, "HTTP 402")
			return Failure(b.name, "premium subscription required for "+string(c))
		case http.StatusNotFound:
			return NoData(b.name, fmt.Sprintf("no %s data for %s", c, symbol))
		}
	}

	b.log.Warn().Err(err).Str("category", string(c)).Str("symbol", symbol).Msg("Fetch failed")
	return Failure(b.name, err.Error())
}

// Guard runs the common pre-call checks and returns a non-nil Result when the
// call must not proceed.
func (b *BaseProvider) Guard(ctx context.Context, c Category) *Result {
	if !b.EndpointAvailable(c) {
		return Failure(b.name, "endpoint blocked: "+string(c))
	}
	if !b.IsAvailable() {
		return RateLimited(b.name, "provider exhausted")
	}
	if err := b.Acquire(ctx); err != nil {
		if errors.Is(err, ErrExhausted) {
			return RateLimited(b.name, err.Error())
		}
		return Failure(b.name, err.Error())
	}
	return nil
}
