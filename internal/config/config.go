// Package config handles configuration loading for divlens.
// It supports YAML config files with environment variable overrides and an
// optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Providers ProvidersConfig `mapstructure:"providers" yaml:"providers"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"`
	News      NewsConfig      `mapstructure:"news"      yaml:"news"`
}

// ProvidersConfig holds upstream data provider settings.
type ProvidersConfig struct {
	FMP          ProviderConfig `mapstructure:"fmp"          yaml:"fmp"`
	AlphaVantage ProviderConfig `mapstructure:"alphavantage" yaml:"alphavantage"`
	EODHD        ProviderConfig `mapstructure:"eodhd"        yaml:"eodhd"`
	YFinance     ProviderConfig `mapstructure:"yfinance"     yaml:"yfinance"`

	RateLimitCooldownMinutes int `mapstructure:"rate_limit_cooldown_minutes" yaml:"rate_limit_cooldown_minutes"`
	AuthCooldownMinutes      int `mapstructure:"auth_cooldown_minutes"       yaml:"auth_cooldown_minutes"`
	PremiumCooldownMinutes   int `mapstructure:"premium_cooldown_minutes"    yaml:"premium_cooldown_minutes"`
	MinCallIntervalMS        int `mapstructure:"min_call_interval_ms"        yaml:"min_call_interval_ms"`
	HTTPTimeoutSeconds       int `mapstructure:"http_timeout_seconds"        yaml:"http_timeout_seconds"`
}

// ProviderConfig holds one provider's credential and chain position.
type ProviderConfig struct {
	APIKey     string `mapstructure:"api_key"     yaml:"api_key"`
	Enabled    bool   `mapstructure:"enabled"     yaml:"enabled"`
	Priority   int    `mapstructure:"priority"    yaml:"priority"`
	DailyLimit int    `mapstructure:"daily_limit" yaml:"daily_limit"` // 0 = unlimited
	BaseURL    string `mapstructure:"base_url"    yaml:"base_url"`    // override for testing/proxies
}

// CacheConfig holds disk cache settings.
type CacheConfig struct {
	Enabled          bool           `mapstructure:"enabled"            yaml:"enabled"`
	Dir              string         `mapstructure:"dir"                yaml:"dir"`
	WarmOnStartup    bool           `mapstructure:"warm_on_startup"    yaml:"warm_on_startup"`
	MaxMemoryEntries int            `mapstructure:"max_memory_entries" yaml:"max_memory_entries"`
	TTLHours         map[string]int `mapstructure:"ttl_hours"          yaml:"ttl_hours"` // category -> hours
	NegativeTTLHours int            `mapstructure:"negative_ttl_hours" yaml:"negative_ttl_hours"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// NewsConfig holds headline feed settings.
type NewsConfig struct {
	Enabled bool   `mapstructure:"enabled"  yaml:"enabled"`
	FeedURL string `mapstructure:"feed_url" yaml:"feed_url"` // %s is replaced by the symbol
	Limit   int    `mapstructure:"limit"    yaml:"limit"`
}

// DefaultTTLHours are the per-category cache TTLs.
var DefaultTTLHours = map[string]int{
	"overview":  24,
	"dividends": 48,
	"income":    168,
	"balance":   168,
	"cashflow":  168,
	"earnings":  168,
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.divlens/config.yaml (home directory)
//  3. /etc/divlens/config.yaml (system)
//
// Environment variables override config file values.
// Format: DIVLENS_<SECTION>_<KEY>, e.g., DIVLENS_CACHE_DIR
func Load() (*Config, error) {
	loadDotEnv()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".divlens"))
	v.AddConfigPath("/etc/divlens")

	bindEnv(v)

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("DIVLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	overrideFromEnv(&cfg)
	cfg.fillTTLs()
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Provider chain (lower priority is tried first)
	v.SetDefault("providers.fmp.priority", 0)
	v.SetDefault("providers.fmp.daily_limit", 250)
	v.SetDefault("providers.alphavantage.priority", 1)
	v.SetDefault("providers.alphavantage.daily_limit", 25)
	v.SetDefault("providers.eodhd.priority", 2)
	v.SetDefault("providers.eodhd.daily_limit", 20)
	v.SetDefault("providers.yfinance.enabled", true)
	v.SetDefault("providers.yfinance.priority", 3)
	v.SetDefault("providers.yfinance.daily_limit", 0)

	v.SetDefault("providers.rate_limit_cooldown_minutes", 60)
	v.SetDefault("providers.auth_cooldown_minutes", 1440)
	v.SetDefault("providers.premium_cooldown_minutes", 1440)
	v.SetDefault("providers.min_call_interval_ms", 1000)
	v.SetDefault("providers.http_timeout_seconds", 30)

	// Cache defaults
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.dir", "./data/cache")
	v.SetDefault("cache.warm_on_startup", true)
	v.SetDefault("cache.max_memory_entries", 512)
	for category, hours := range DefaultTTLHours {
		v.SetDefault("cache.ttl_hours."+category, hours)
	}
	v.SetDefault("cache.negative_ttl_hours", 1)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// News defaults
	v.SetDefault("news.enabled", true)
	v.SetDefault("news.feed_url", "https://feeds.finance.yahoo.com/rss/2.0/headline?s=%s&region=US&lang=en-US")
	v.SetDefault("news.limit", 10)
}

// fillTTLs restores defaults for any category missing from the TTL map.
func (c *Config) fillTTLs() {
	if c.Cache.TTLHours == nil {
		c.Cache.TTLHours = make(map[string]int, len(DefaultTTLHours))
	}
	for category, hours := range DefaultTTLHours {
		if c.Cache.TTLHours[category] <= 0 {
			c.Cache.TTLHours[category] = hours
		}
	}
	if c.Cache.NegativeTTLHours <= 0 {
		c.Cache.NegativeTTLHours = 1
	}
}

// TTLHoursFor returns the configured TTL for a category.
func (c *Config) TTLHoursFor(category string) int {
	if h, ok := c.Cache.TTLHours[category]; ok && h > 0 {
		return h
	}
	return DefaultTTLHours[category]
}

// Minutes converts a minute count to a duration.
func Minutes(n int) time.Duration {
	return time.Duration(n) * time.Minute
}

// loadDotEnv loads ./.env when present. Existing environment variables win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
