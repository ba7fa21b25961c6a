// Package config centralises runtime configuration for pitwall services.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Provider names a supported upstream data provider.
type Provider string

const (
	// ProviderOpenF1 is the live-telemetry provider (per-session car data).
	ProviderOpenF1 Provider = "openf1"
	// ProviderJolpica is the historical-statistics provider (Ergast API shape).
	ProviderJolpica Provider = "jolpica"
)

// ProviderSettings aggregates transport configuration for one upstream.
type ProviderSettings struct {
	BaseURL        string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	Retries        int
	RetryDelay     time.Duration
	// RatePerSecond and Burst configure the token bucket; zero disables it.
	RatePerSecond float64
	Burst         int
	// MaxInflight caps concurrent outstanding requests; zero disables the gate.
	MaxInflight int
}

// AnalyticsSettings holds the tuning constants for the analytics routines.
//
// FuelCorrectionPerLap and OutlierThreshold are inherited heuristics with no
// cited physical derivation; they are configurable rather than corrected.
type AnalyticsSettings struct {
	FuelCorrectionPerLap float64 `yaml:"fuelCorrectionPerLap"`
	OutlierThreshold     float64 `yaml:"outlierThreshold"`
	OutlinePoints        int     `yaml:"outlinePoints"`
	OutlineDir           string  `yaml:"outlineDir"`
}

// SessionSettings controls the live/demo session resolver.
type SessionSettings struct {
	ResolveTTL  time.Duration `yaml:"resolveTtl"`
	EndGrace    time.Duration `yaml:"endGrace"`
	DemoTTL     time.Duration `yaml:"demoTtl"`
	FallbackKey string        `yaml:"fallbackKey"`
}

// Settings contains the pitwall configuration tree loaded from defaults and overrides.
type Settings struct {
	ListenAddr string
	Season     int
	Providers  map[Provider]ProviderSettings
	CacheTTL   map[string]time.Duration
	Analytics  AnalyticsSettings
	Session    SessionSettings
}

// Default returns the default pitwall configuration.
func Default() Settings {
	return Settings{
		ListenAddr: ":8080",
		Season:     2025,
		Providers: map[Provider]ProviderSettings{
			ProviderOpenF1: {
				BaseURL:        "https://api.openf1.org/v1",
				ConnectTimeout: 5 * time.Second,
				RequestTimeout: 15 * time.Second,
				Retries:        2,
				RetryDelay:     time.Second,
				RatePerSecond:  0,
				Burst:          0,
				MaxInflight:    3,
			},
			ProviderJolpica: {
				BaseURL:        "https://api.jolpi.ca/ergast/f1",
				ConnectTimeout: 5 * time.Second,
				RequestTimeout: 15 * time.Second,
				Retries:        2,
				RetryDelay:     time.Second,
				// Published ceiling is ~4 req/s; stay slightly under it.
				RatePerSecond: 3.5,
				Burst:         4,
				MaxInflight:   0,
			},
		},
		CacheTTL: DefaultCacheTTL(),
		Analytics: AnalyticsSettings{
			FuelCorrectionPerLap: 0.03,
			OutlierThreshold:     1.10,
			OutlinePoints:        250,
			OutlineDir:           "data/outlines",
		},
		Session: SessionSettings{
			ResolveTTL:  60 * time.Second,
			EndGrace:    30 * time.Minute,
			DemoTTL:     300 * time.Second,
			FallbackKey: "9869", // most recent known race, never serve zero content
		},
	}
}

// DefaultCacheTTL returns the category-to-TTL table used by the cache store.
//
// TTLs span two orders of magnitude: seconds for live feeds, a day for
// near-static data, so expiry must be a function of the key category.
func DefaultCacheTTL() map[string]time.Duration {
	return map[string]time.Duration{
		"live_positions":         10 * time.Second,
		"live_timing":            10 * time.Second,
		"live_weather":           60 * time.Second,
		"live_race_control":      10 * time.Second,
		"live_radio":             15 * time.Second,
		"live_pit_stops":         10 * time.Second,
		"live_session":           30 * time.Second,
		"session_resolve":        60 * time.Second,
		"session_info":           time.Hour,
		"schedule":               time.Hour,
		"next_race":              30 * time.Minute,
		"race_results":           time.Hour,
		"qualifying_results":     time.Hour,
		"standings_drivers":      15 * time.Minute,
		"standings_constructors": 15 * time.Minute,
		"driver_profile":         time.Hour,
		"strategy":               5 * time.Minute,
		"position_chart":         5 * time.Minute,
		"laptimes":               5 * time.Minute,
		"degradation":            5 * time.Minute,
		"track_outline":          24 * time.Hour,
	}
}

// FromEnv loads configuration values from environment variables, overriding defaults.
func FromEnv() Settings {
	return ApplyEnv(Default())
}

// ApplyEnv overlays PITWALL_* environment variables on a copy of base, so
// the environment always wins over file and default values.
func ApplyEnv(base Settings) Settings {
	cfg := base.clone()

	if v := strings.TrimSpace(os.Getenv("PITWALL_LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(os.Getenv("PITWALL_SEASON")); v != "" {
		if season, err := strconv.Atoi(v); err == nil && season > 1949 {
			cfg.Season = season
		}
	}
	if v := strings.TrimSpace(os.Getenv("PITWALL_OUTLINE_DIR")); v != "" {
		cfg.Analytics.OutlineDir = v
	}
	if v := strings.TrimSpace(os.Getenv("PITWALL_FALLBACK_SESSION")); v != "" {
		cfg.Session.FallbackKey = v
	}

	openf1 := cfg.Providers[ProviderOpenF1]
	if v := strings.TrimSpace(os.Getenv("PITWALL_OPENF1_BASE_URL")); v != "" {
		openf1.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PITWALL_OPENF1_TIMEOUT")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			openf1.RequestTimeout = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("PITWALL_OPENF1_MAX_INFLIGHT")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			openf1.MaxInflight = n
		}
	}
	cfg.Providers[ProviderOpenF1] = openf1

	jolpica := cfg.Providers[ProviderJolpica]
	if v := strings.TrimSpace(os.Getenv("PITWALL_JOLPICA_BASE_URL")); v != "" {
		jolpica.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv("PITWALL_JOLPICA_TIMEOUT")); v != "" {
		if dur, err := time.ParseDuration(v); err == nil {
			jolpica.RequestTimeout = dur
		}
	}
	if v := strings.TrimSpace(os.Getenv("PITWALL_JOLPICA_RATE")); v != "" {
		if rate, err := strconv.ParseFloat(v, 64); err == nil && rate > 0 {
			jolpica.RatePerSecond = rate
		}
	}
	cfg.Providers[ProviderJolpica] = jolpica

	return cfg
}

// Option mutates Settings when applied via Apply.
type Option func(*Settings)

// Apply applies the provided Option set to a copy of the base Settings.
func Apply(base Settings, opts ...Option) Settings {
	cfg := base.clone()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Provider returns the provider-specific configuration if present.
func (s Settings) Provider(name Provider) (ProviderSettings, bool) {
	cfg, ok := s.Providers[Provider(strings.ToLower(strings.TrimSpace(string(name))))]
	return cfg, ok
}

// TTLFor resolves the TTL for a cache key category, with a 5 minute default.
func (s Settings) TTLFor(category string) time.Duration {
	if ttl, ok := s.CacheTTL[category]; ok {
		return ttl
	}
	return 5 * time.Minute
}

// WithListenAddr overrides the HTTP listen address.
func WithListenAddr(addr string) Option {
	addr = strings.TrimSpace(addr)
	return func(s *Settings) {
		if addr != "" {
			s.ListenAddr = addr
		}
	}
}

// WithProviderBaseURL overrides the base URL for the given provider.
func WithProviderBaseURL(name Provider, baseURL string) Option {
	baseURL = strings.TrimSpace(baseURL)
	return func(s *Settings) {
		if baseURL == "" {
			return
		}
		cfg, ok := s.Providers[name]
		if !ok {
			return
		}
		cfg.BaseURL = baseURL
		s.Providers[name] = cfg
	}
}

// WithCacheTTL overrides the TTL for a single cache category.
func WithCacheTTL(category string, ttl time.Duration) Option {
	category = strings.TrimSpace(category)
	return func(s *Settings) {
		if category == "" || ttl <= 0 {
			return
		}
		if s.CacheTTL == nil {
			s.CacheTTL = make(map[string]time.Duration)
		}
		s.CacheTTL[category] = ttl
	}
}

// WithFallbackSession overrides the last-known-race session identifier.
func WithFallbackSession(key string) Option {
	key = strings.TrimSpace(key)
	return func(s *Settings) {
		if key != "" {
			s.Session.FallbackKey = key
		}
	}
}

func (s Settings) clone() Settings {
	clone := s
	clone.Providers = make(map[Provider]ProviderSettings, len(s.Providers))
	for k, v := range s.Providers {
		clone.Providers[k] = v
	}
	clone.CacheTTL = make(map[string]time.Duration, len(s.CacheTTL))
	for k, v := range s.CacheTTL {
		clone.CacheTTL[k] = v
	}
	return clone
}
