package config

import "os"

// APIKeySource says where a provider credential was read from.
type APIKeySource string

const (
	KeySourceEnv    APIKeySource = "env"
	KeySourceConfig APIKeySource = "config"
	KeySourceNone   APIKeySource = "none"
)

// KeyStatus describes one provider credential without exposing it.
type KeyStatus struct {
	Provider string       `json:"provider"` // chain name, e.g. "fmp"
	Name     string       `json:"name"`
	EnvVar   string       `json:"env_var"`
	Source   APIKeySource `json:"source"`
	IsSet    bool         `json:"is_set"`
	Masked   string       `json:"masked,omitempty"` // e.g., "abc...xyz"
}

// keyedProvider binds a keyed provider to its env variable and config slot.
type keyedProvider struct {
	provider, name, envVar string
	slot                   func(*ProvidersConfig) *ProviderConfig
}

var keyedProviders = []keyedProvider{
	{"fmp", "Financial Modeling Prep", "FMP_API_KEY", func(p *ProvidersConfig) *ProviderConfig { return &p.FMP }},
	{"alphavantage", "Alpha Vantage", "ALPHA_VANTAGE_API_KEY", func(p *ProvidersConfig) *ProviderConfig { return &p.AlphaVantage }},
	{"eodhd", "EODHD", "EODHD_API_KEY", func(p *ProvidersConfig) *ProviderConfig { return &p.EODHD }},
}

// CheckAPIKeys returns the status of every provider credential. A provider
// whose key is unset is left out of the fallback chain.
func CheckAPIKeys(cfg *Config) []KeyStatus {
	out := make([]KeyStatus, 0, len(keyedProviders))
	for _, kp := range keyedProviders {
		value := kp.slot(&cfg.Providers).APIKey
		st := KeyStatus{
			Provider: kp.provider,
			Name:     kp.name,
			EnvVar:   kp.envVar,
			Source:   KeySourceNone,
			IsSet:    value != "",
		}
		if st.IsSet {
			st.Source = KeySourceConfig
			if os.Getenv(kp.envVar) == value {
				st.Source = KeySourceEnv
			}
			st.Masked = maskKey(value)
		}
		out = append(out, st)
	}
	return out
}

// overrideFromEnv reads the well-known provider key variables, which take
// precedence over anything in the config file.
func overrideFromEnv(cfg *Config) {
	for _, kp := range keyedProviders {
		if key := os.Getenv(kp.envVar); key != "" {
			kp.slot(&cfg.Providers).APIKey = key
		}
	}
}

// maskKey keeps the first and last three characters of a key.
func maskKey(key string) string {
	if len(key) <= 8 {
		return "***"
	}
	return key[:3] + "..." + key[len(key)-3:]
}
