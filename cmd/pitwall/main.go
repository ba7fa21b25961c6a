// Command pitwall launches the F1 data integration service: both upstream
// adapters, the view cache, the session resolver, and the HTTP surface.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sourcegraph/conc"

	"github.com/pitwall-io/pitwall/config"
	"github.com/pitwall-io/pitwall/core/analytics"
	"github.com/pitwall-io/pitwall/core/views"
	"github.com/pitwall-io/pitwall/internal/adapters/jolpica"
	"github.com/pitwall-io/pitwall/internal/adapters/openf1"
	"github.com/pitwall-io/pitwall/internal/api"
	"github.com/pitwall-io/pitwall/internal/cache"
	"github.com/pitwall-io/pitwall/internal/observability"
	"github.com/pitwall-io/pitwall/internal/session"
	"github.com/pitwall-io/pitwall/internal/transport"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 5 * time.Second
)

func main() {
	configPath := flag.String("config", "", "path to pitwall YAML configuration (default: config/pitwall.yaml)")
	development := flag.Bool("dev", false, "use the human-readable console log encoder")
	flag.Parse()

	logger, err := observability.NewZapLogger(*development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	observability.SetLogger(logger)

	settings, err := loadSettings(*configPath)
	if err != nil {
		logger.Error("load configuration", observability.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metrics, err := observability.NewCoreMetrics()
	if err != nil {
		logger.Error("initialise metrics", observability.Field{Key: "error", Value: err.Error()})
		os.Exit(1)
	}

	openf1Settings := settings.Providers[config.ProviderOpenF1]
	jolpicaSettings := settings.Providers[config.ProviderJolpica]

	liveTransport := transport.NewClient(openf1Settings.ConnectTimeout, openf1Settings.RequestTimeout)
	defer liveTransport.Close()
	historyTransport := transport.NewClient(jolpicaSettings.ConnectTimeout, jolpicaSettings.RequestTimeout)
	defer historyTransport.Close()

	live := openf1.NewClient(openf1Settings, liveTransport, metrics)
	history := jolpica.NewClient(jolpicaSettings, historyTransport, metrics)

	store := cache.NewStore(settings.CacheTTL, nil)
	store.Instrument(metrics)
	resolver := session.NewResolver(live, store, settings.Session, nil)
	svc := views.NewService(live, history, store, resolver, settings, nil)
	analyzer := analytics.NewAnalyzer(live, store, resolver, settings)

	server := &http.Server{
		Addr:              settings.ListenAddr,
		Handler:           api.NewServer(svc, analyzer).Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	var lifecycle conc.WaitGroup
	lifecycle.Go(func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", observability.Field{Key: "error", Value: err.Error()})
			cancel()
		}
	})
	logger.Info("pitwall started",
		observability.Field{Key: "addr", Value: settings.ListenAddr},
		observability.Field{Key: "season", Value: settings.Season})

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", observability.Field{Key: "error", Value: err.Error()})
	}
	lifecycle.Wait()
	logger.Info("pitwall stopped")
}

// loadSettings layers file configuration over defaults when a file exists,
// then applies environment overrides on top.
func loadSettings(path string) (config.Settings, error) {
	settings := config.Default()
	loaded, err := config.LoadFile(path)
	switch {
	case err == nil:
		settings = loaded
	case errors.Is(err, os.ErrNotExist):
		observability.Log().Info("configuration file not found, using defaults")
	default:
		return config.Settings{}, err
	}
	settings = config.ApplyEnv(settings)
	if err := settings.Validate(); err != nil {
		return config.Settings{}, err
	}
	return settings, nil
}
