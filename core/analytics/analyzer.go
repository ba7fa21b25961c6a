package analytics

import (
	"sync"
	"time"

	"github.com/pitwall-io/pitwall/config"
	"github.com/pitwall-io/pitwall/internal/adapters/openf1"
	"github.com/pitwall-io/pitwall/internal/cache"
	"github.com/pitwall-io/pitwall/internal/session"
)

// Analyzer owns the analytics collaborators. Like the view layer, every
// output is cached by category and tagged with the resolved session.
type Analyzer struct {
	live     *openf1.Client
	store    *cache.Store
	resolver *session.Resolver
	settings config.Settings

	// outlineMu serializes track-outline reconstruction per Analyzer.
	outlineMu sync.Mutex
}

// NewAnalyzer wires the analytics layer.
func NewAnalyzer(live *openf1.Client, store *cache.Store, resolver *session.Resolver, settings config.Settings) *Analyzer {
	return &Analyzer{
		live:     live,
		store:    store,
		resolver: resolver,
		settings: settings,
	}
}

func (a *Analyzer) cacheTTL(category string, res session.Resolution) time.Duration {
	return res.CacheTTL(a.settings.TTLFor(category), a.settings.Session.DemoTTL)
}
