// Package providers builds the provider fallback chain from configuration.
package providers

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/seenimoa/divlens/internal/config"
	"github.com/seenimoa/divlens/internal/infra"
	"github.com/seenimoa/divlens/internal/provider"
	"github.com/seenimoa/divlens/internal/providers/alphavantage"
	"github.com/seenimoa/divlens/internal/providers/eodhd"
	"github.com/seenimoa/divlens/internal/providers/fmp"
	"github.com/seenimoa/divlens/internal/providers/yfinance"
)

// Build creates every configured provider and returns them as a
// priority-ordered registry. Providers that require an API key are left out
// of the chain when the key is unset; yfinance is included when enabled.
func Build(cfg config.ProvidersConfig, log zerolog.Logger) *provider.Registry {
	client := infra.NewClient(time.Duration(cfg.HTTPTimeoutSeconds) * time.Second)
	reg := provider.NewRegistry()

	// --- FMP (requires API key) ---
	if cfg.FMP.APIKey != "" {
		_ = reg.Register(fmp.New(fmp.Config{
			APIKey:  cfg.FMP.APIKey,
			BaseURL: cfg.FMP.BaseURL,
			Options: options(cfg, cfg.FMP),
			Client:  client,
		}, log))
	}

	// --- Alpha Vantage (requires API key) ---
	if cfg.AlphaVantage.APIKey != "" {
		_ = reg.Register(alphavantage.New(alphavantage.Config{
			APIKey:  cfg.AlphaVantage.APIKey,
			BaseURL: cfg.AlphaVantage.BaseURL,
			Options: options(cfg, cfg.AlphaVantage),
			Client:  client,
		}, log))
	}

	// --- EODHD (requires API key) ---
	if cfg.EODHD.APIKey != "" {
		_ = reg.Register(eodhd.New(eodhd.Config{
			APIKey:  cfg.EODHD.APIKey,
			BaseURL: cfg.EODHD.BaseURL,
			Options: options(cfg, cfg.EODHD),
			Client:  client,
		}, log))
	}

	// --- YFinance (free, no API key) ---
	if cfg.YFinance.Enabled {
		_ = reg.Register(yfinance.New(yfinance.Config{
			BaseURL: cfg.YFinance.BaseURL,
			Options: options(cfg, cfg.YFinance),
			Client:  client,
		}, log))
	}

	names := make([]string, 0, reg.Len())
	for _, p := range reg.Ordered() {
		names = append(names, p.Name())
	}
	log.Info().Strs("chain", names).Msg("Providers registered")
	if reg.Len() == 0 {
		log.Warn().Msg("No providers configured; every fetch will fail")
	}
	return reg
}

// options merges the shared cooldown settings with one provider's entry.
func options(cfg config.ProvidersConfig, pc config.ProviderConfig) provider.Options {
	return provider.Options{
		Priority:          pc.Priority,
		DailyLimit:        pc.DailyLimit,
		MinCallInterval:   time.Duration(cfg.MinCallIntervalMS) * time.Millisecond,
		RateLimitCooldown: config.Minutes(cfg.RateLimitCooldownMinutes),
		AuthCooldown:      config.Minutes(cfg.AuthCooldownMinutes),
		PremiumCooldown:   config.Minutes(cfg.PremiumCooldownMinutes),
	}
}
