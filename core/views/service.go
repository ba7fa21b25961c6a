// Package views implements the merge/enrichment layer: every function fans
// out the upstream fetches it needs, reduces raw event streams to one row
// per driver, joins static reference data, and returns a JSON-serializable
// view tagged with the resolved session's live/demo status.
package views

import (
	"time"

	"github.com/pitwall-io/pitwall/config"
	"github.com/pitwall-io/pitwall/internal/adapters/jolpica"
	"github.com/pitwall-io/pitwall/internal/adapters/openf1"
	"github.com/pitwall-io/pitwall/internal/cache"
	"github.com/pitwall-io/pitwall/internal/observability"
	"github.com/pitwall-io/pitwall/internal/session"
)

// Service owns the view layer's collaborators. All views are methods on it
// so the cache, the resolver, and both upstream clients stay injectable.
type Service struct {
	live     *openf1.Client
	history  *jolpica.Client
	store    *cache.Store
	resolver *session.Resolver
	settings config.Settings
	clock    func() time.Time
}

// NewService wires the view layer. clock may be nil.
func NewService(live *openf1.Client, history *jolpica.Client, store *cache.Store, resolver *session.Resolver, settings config.Settings, clock func() time.Time) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		live:     live,
		history:  history,
		store:    store,
		resolver: resolver,
		settings: settings,
		clock:    clock,
	}
}

// Store exposes the cache for the administrative surface.
func (s *Service) Store() *cache.Store { return s.store }

// Resolver exposes the session resolver for the administrative surface.
func (s *Service) Resolver() *session.Resolver { return s.resolver }

// Season reports the configured championship season.
func (s *Service) Season() int { return s.settings.Season }

// LiveInflight reports how many live-provider request slots are in use.
func (s *Service) LiveInflight() int { return s.live.InflightInUse() }

// cached runs fetch once per TTL window for the given key. The TTL comes
// from the key's category, stretched for demo sessions.
func cached[T any](s *Service, key string, res session.Resolution, fetch func() (T, error)) (T, error) {
	ttl := res.CacheTTL(s.settings.TTLFor(cache.Category(key)), s.settings.Session.DemoTTL)
	if hit, ok := s.store.GetWithTTL(key, ttl); ok {
		if v, ok := hit.(T); ok {
			return v, nil
		}
	}
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	s.store.Set(key, v)
	return v, nil
}

// logSubFetch records a degraded sub-fetch. Views keep going with whatever
// data the sibling fetches produced.
func logSubFetch(view string, err error) {
	if err == nil {
		return
	}
	observability.Log().Warn("view sub-fetch degraded",
		observability.Field{Key: "view", Value: view},
		observability.Field{Key: "error", Value: err.Error()})
}
