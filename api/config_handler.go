// Package api: configuration inspection endpoints.
package api

import (
	"net/http"

	"github.com/seenimoa/divlens/internal/config"
)

// ConfigView is the running configuration with credentials left out.
type ConfigView struct {
	Providers map[string]ProviderView `json:"providers"`
	Cache     config.CacheConfig      `json:"cache"`
	API       config.APIConfig        `json:"api"`
	Logging   config.LoggingConfig    `json:"logging"`
	News      config.NewsConfig       `json:"news"`
}

// ProviderView is one provider's settings without its API key.
type ProviderView struct {
	Enabled    bool   `json:"enabled"`
	HasKey     bool   `json:"has_key"`
	Priority   int    `json:"priority"`
	DailyLimit int    `json:"daily_limit"`
	BaseURL    string `json:"base_url,omitempty"`
}

// handleGetConfig returns the current (running) configuration.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusNotFound, "no configuration loaded")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: viewConfig(s.cfg)})
}

// handleGetConfigKeys returns the status of all provider API keys.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusNotFound, "no configuration loaded")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: config.CheckAPIKeys(s.cfg)})
}

func viewConfig(cfg *config.Config) ConfigView {
	pv := func(pc config.ProviderConfig) ProviderView {
		return ProviderView{
			Enabled:    pc.Enabled,
			HasKey:     pc.APIKey != "",
			Priority:   pc.Priority,
			DailyLimit: pc.DailyLimit,
			BaseURL:    pc.BaseURL,
		}
	}
	return ConfigView{
		Providers: map[string]ProviderView{
			"fmp":          pv(cfg.Providers.FMP),
			"alphavantage": pv(cfg.Providers.AlphaVantage),
			"eodhd":        pv(cfg.Providers.EODHD),
			"yfinance":     pv(cfg.Providers.YFinance),
		},
		Cache:   cfg.Cache,
		API:     cfg.API,
		Logging: cfg.Logging,
		News:    cfg.News,
	}
}
