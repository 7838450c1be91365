package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"

	"github.com/seenimoa/divlens/internal/cache"
	"github.com/seenimoa/divlens/internal/config"
	"github.com/seenimoa/divlens/internal/infra"
	"github.com/seenimoa/divlens/internal/logger"
	"github.com/seenimoa/divlens/internal/news"
	"github.com/seenimoa/divlens/internal/orchestrator"
	"github.com/seenimoa/divlens/internal/providers"
)

// app is the wired process: one provider chain and one cache store shared by
// every command.
type app struct {
	log   zerolog.Logger
	store *cache.Store
	orch  *orchestrator.Orchestrator
	news  *news.Client // nil when disabled
}

func newApp(cfg *config.Config) (*app, error) {
	log := logger.New(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})
	logger.SetGlobalLogger(log)

	store, err := cache.NewStore(afero.NewOsFs(), cache.Config{
		Enabled:          cfg.Cache.Enabled,
		Dir:              cfg.Cache.Dir,
		MaxMemoryEntries: cfg.Cache.MaxMemoryEntries,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if cfg.Cache.WarmOnStartup {
		n := store.Warm()
		log.Debug().Int("entries", n).Msg("Cache warmed")
	}

	registry := providers.Build(cfg.Providers, log)
	orch := orchestrator.New(registry, store, orchestrator.Config{
		TTLHours:         cfg.Cache.TTLHours,
		NegativeTTLHours: cfg.Cache.NegativeTTLHours,
	}, log)

	a := &app{log: log, store: store, orch: orch}
	if cfg.News.Enabled {
		timeout := time.Duration(cfg.Providers.HTTPTimeoutSeconds) * time.Second
		a.news = news.NewClient(cfg.News.FeedURL, cfg.News.Limit, infra.NewClient(timeout), log)
	}
	return a, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.log.Warn().Err(err).Msg("Cache close failed")
	}
}
