package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigProvidesProviderSettings(t *testing.T) {
	cfg := Default()

	openf1, ok := cfg.Provider(ProviderOpenF1)
	if !ok {
		t.Fatalf("expected openf1 provider settings")
	}
	if openf1.BaseURL == "" || openf1.MaxInflight != 3 {
		t.Fatalf("expected openf1 defaults with inflight gate of 3, got %+v", openf1)
	}

	jolpica, ok := cfg.Provider(ProviderJolpica)
	if !ok {
		t.Fatalf("expected jolpica provider settings")
	}
	if jolpica.RatePerSecond <= 0 || jolpica.RatePerSecond >= 4 {
		t.Fatalf("expected jolpica rate under the published 4/s ceiling, got %f", jolpica.RatePerSecond)
	}
	if jolpica.Burst != 4 {
		t.Fatalf("expected burst 4, got %d", jolpica.Burst)
	}
}

func TestTTLForFallsBackToDefault(t *testing.T) {
	cfg := Default()
	if ttl := cfg.TTLFor("live_positions"); ttl != 10*time.Second {
		t.Fatalf("expected 10s for live_positions, got %s", ttl)
	}
	if ttl := cfg.TTLFor("track_outline"); ttl != 24*time.Hour {
		t.Fatalf("expected 24h for track_outline, got %s", ttl)
	}
	if ttl := cfg.TTLFor("unmapped_category"); ttl != 5*time.Minute {
		t.Fatalf("expected 5m default, got %s", ttl)
	}
}

func TestFromEnvOverridesValues(t *testing.T) {
	t.Setenv("PITWALL_LISTEN_ADDR", ":9090")
	t.Setenv("PITWALL_SEASON", "2024")
	t.Setenv("PITWALL_OPENF1_BASE_URL", "https://live.test")
	t.Setenv("PITWALL_OPENF1_TIMEOUT", "20s")
	t.Setenv("PITWALL_OPENF1_MAX_INFLIGHT", "5")
	t.Setenv("PITWALL_JOLPICA_BASE_URL", "https://hist.test")
	t.Setenv("PITWALL_JOLPICA_RATE", "2.0")
	t.Setenv("PITWALL_FALLBACK_SESSION", "1234")

	cfg := FromEnv()
	if cfg.ListenAddr != ":9090" || cfg.Season != 2024 {
		t.Fatalf("expected listen/season overrides, got %s/%d", cfg.ListenAddr, cfg.Season)
	}
	openf1, _ := cfg.Provider(ProviderOpenF1)
	if openf1.BaseURL != "https://live.test" || openf1.RequestTimeout != 20*time.Second || openf1.MaxInflight != 5 {
		t.Fatalf("expected openf1 overrides, got %+v", openf1)
	}
	jolpica, _ := cfg.Provider(ProviderJolpica)
	if jolpica.BaseURL != "https://hist.test" || jolpica.RatePerSecond != 2.0 {
		t.Fatalf("expected jolpica overrides, got %+v", jolpica)
	}
	if cfg.Session.FallbackKey != "1234" {
		t.Fatalf("expected fallback session override, got %s", cfg.Session.FallbackKey)
	}
}

func TestApplyEnvOverlaysLoadedSettings(t *testing.T) {
	t.Setenv("PITWALL_LISTEN_ADDR", ":9090")
	t.Setenv("PITWALL_JOLPICA_RATE", "2.5")

	base := Default()
	base.ListenAddr = ":7070"
	base.Season = 2024
	base = Apply(base, WithProviderBaseURL(ProviderJolpica, "https://file.test"))

	cfg := ApplyEnv(base)
	if cfg.ListenAddr != ":9090" {
		t.Fatalf("environment must win over the file layer, got %s", cfg.ListenAddr)
	}
	jolpica, _ := cfg.Provider(ProviderJolpica)
	if jolpica.RatePerSecond != 2.5 {
		t.Fatalf("expected env rate override, got %f", jolpica.RatePerSecond)
	}
	// Values the environment does not name keep their file-layer settings.
	if cfg.Season != 2024 || jolpica.BaseURL != "https://file.test" {
		t.Fatalf("file-layer values should survive, got season %d url %s", cfg.Season, jolpica.BaseURL)
	}
	if base.ListenAddr != ":7070" {
		t.Fatalf("ApplyEnv must not mutate its input")
	}
}

func TestApplyReturnsMutatedClone(t *testing.T) {
	base := Default()
	cfg := Apply(base,
		WithListenAddr(":7000"),
		WithProviderBaseURL(ProviderJolpica, "https://mirror.test"),
		WithCacheTTL("schedule", 2*time.Hour),
		WithFallbackSession("4242"),
	)

	if cfg.ListenAddr != ":7000" {
		t.Fatalf("expected listen addr override")
	}
	jolpica, _ := cfg.Provider(ProviderJolpica)
	if jolpica.BaseURL != "https://mirror.test" {
		t.Fatalf("expected provider URL override")
	}
	if cfg.TTLFor("schedule") != 2*time.Hour {
		t.Fatalf("expected schedule TTL override")
	}

	// the base must not observe the mutation
	if base.ListenAddr == ":7000" || base.TTLFor("schedule") == 2*time.Hour {
		t.Fatalf("expected Apply to operate on a clone")
	}
}

func TestLoadFileLayersOverDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pitwall.yaml")
	doc := `
listenAddr: ":9191"
season: 2024
providers:
  jolpica:
    baseUrl: https://file.test
    ratePerSecond: 1.5
cacheTtl:
  schedule: 30m
analytics:
  fuelCorrectionPerLap: 0.05
session:
  fallbackKey: "7777"
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ListenAddr != ":9191" || cfg.Season != 2024 {
		t.Fatalf("expected file overrides, got %s/%d", cfg.ListenAddr, cfg.Season)
	}
	jolpica, _ := cfg.Provider(ProviderJolpica)
	if jolpica.BaseURL != "https://file.test" || jolpica.RatePerSecond != 1.5 {
		t.Fatalf("expected jolpica file overrides, got %+v", jolpica)
	}
	if jolpica.Burst != 4 {
		t.Fatalf("expected untouched defaults to survive, got burst %d", jolpica.Burst)
	}
	if cfg.TTLFor("schedule") != 30*time.Minute {
		t.Fatalf("expected schedule TTL from file")
	}
	if cfg.Analytics.FuelCorrectionPerLap != 0.05 {
		t.Fatalf("expected fuel correction override")
	}
	if cfg.Session.FallbackKey != "7777" {
		t.Fatalf("expected fallback key override")
	}
}

func TestLoadFileRejectsInvalidDocument(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pitwall.yaml")
	doc := `
analytics:
  outlierThreshold: 0.5
`
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Fatalf("expected validation failure for outlierThreshold <= 1")
	}
}
