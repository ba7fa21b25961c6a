package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// FileConfig mirrors the on-disk YAML configuration layout.
type FileConfig struct {
	ListenAddr string                   `yaml:"listenAddr"`
	Season     int                      `yaml:"season"`
	Providers  map[string]ProviderFile  `yaml:"providers"`
	CacheTTL   map[string]time.Duration `yaml:"cacheTtl"`
	Analytics  AnalyticsSettings        `yaml:"analytics"`
	Session    SessionSettings          `yaml:"session"`
}

// ProviderFile declares per-provider transport settings in the YAML document.
type ProviderFile struct {
	BaseURL        string        `yaml:"baseUrl"`
	ConnectTimeout time.Duration `yaml:"connectTimeout"`
	RequestTimeout time.Duration `yaml:"requestTimeout"`
	Retries        *int          `yaml:"retries"`
	RetryDelay     time.Duration `yaml:"retryDelay"`
	RatePerSecond  float64       `yaml:"ratePerSecond"`
	Burst          int           `yaml:"burst"`
	MaxInflight    int           `yaml:"maxInflight"`
}

// LoadFile loads a pitwall configuration YAML document and layers it over defaults.
func LoadFile(path string) (Settings, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = os.Getenv("PITWALL_CONFIG")
	}
	path = strings.TrimSpace(path)
	if path == "" {
		path = "config/pitwall.yaml"
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("read config: %w", err)
	}

	var file FileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return Settings{}, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg := Default()
	file.applyTo(&cfg)
	if err := cfg.Validate(); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

func (f FileConfig) applyTo(cfg *Settings) {
	if addr := strings.TrimSpace(f.ListenAddr); addr != "" {
		cfg.ListenAddr = addr
	}
	if f.Season > 1949 {
		cfg.Season = f.Season
	}
	for name, pf := range f.Providers {
		key := Provider(strings.ToLower(strings.TrimSpace(name)))
		current, ok := cfg.Providers[key]
		if !ok {
			continue
		}
		if v := strings.TrimSpace(pf.BaseURL); v != "" {
			current.BaseURL = v
		}
		if pf.ConnectTimeout > 0 {
			current.ConnectTimeout = pf.ConnectTimeout
		}
		if pf.RequestTimeout > 0 {
			current.RequestTimeout = pf.RequestTimeout
		}
		if pf.Retries != nil && *pf.Retries >= 0 {
			current.Retries = *pf.Retries
		}
		if pf.RetryDelay > 0 {
			current.RetryDelay = pf.RetryDelay
		}
		if pf.RatePerSecond > 0 {
			current.RatePerSecond = pf.RatePerSecond
		}
		if pf.Burst > 0 {
			current.Burst = pf.Burst
		}
		if pf.MaxInflight > 0 {
			current.MaxInflight = pf.MaxInflight
		}
		cfg.Providers[key] = current
	}
	for category, ttl := range f.CacheTTL {
		if ttl > 0 {
			cfg.CacheTTL[strings.TrimSpace(category)] = ttl
		}
	}
	if f.Analytics.FuelCorrectionPerLap > 0 {
		cfg.Analytics.FuelCorrectionPerLap = f.Analytics.FuelCorrectionPerLap
	}
	if f.Analytics.OutlierThreshold > 0 {
		cfg.Analytics.OutlierThreshold = f.Analytics.OutlierThreshold
	}
	if f.Analytics.OutlinePoints > 0 {
		cfg.Analytics.OutlinePoints = f.Analytics.OutlinePoints
	}
	if v := strings.TrimSpace(f.Analytics.OutlineDir); v != "" {
		cfg.Analytics.OutlineDir = v
	}
	if f.Session.ResolveTTL > 0 {
		cfg.Session.ResolveTTL = f.Session.ResolveTTL
	}
	if f.Session.EndGrace > 0 {
		cfg.Session.EndGrace = f.Session.EndGrace
	}
	if f.Session.DemoTTL > 0 {
		cfg.Session.DemoTTL = f.Session.DemoTTL
	}
	if v := strings.TrimSpace(f.Session.FallbackKey); v != "" {
		cfg.Session.FallbackKey = v
	}
}

// Validate performs semantic validation on the assembled configuration.
func (s Settings) Validate() error {
	for name, provider := range s.Providers {
		if strings.TrimSpace(provider.BaseURL) == "" {
			return fmt.Errorf("provider %s: base URL required", name)
		}
		if provider.RequestTimeout <= 0 {
			return fmt.Errorf("provider %s: request timeout must be >0", name)
		}
		if provider.Retries < 0 {
			return fmt.Errorf("provider %s: retries must be >=0", name)
		}
	}
	if s.Analytics.OutlierThreshold <= 1 {
		return fmt.Errorf("analytics outlierThreshold must be >1")
	}
	if s.Analytics.OutlinePoints <= 0 {
		return fmt.Errorf("analytics outlinePoints must be >0")
	}
	if s.Session.ResolveTTL <= 0 {
		return fmt.Errorf("session resolveTtl must be >0")
	}
	if strings.TrimSpace(s.Session.FallbackKey) == "" {
		return fmt.Errorf("session fallbackKey required")
	}
	return nil
}
