// Package session decides which session every live view reads from: the
// provider's current session when one is running, an operator-pinned
// historical session, or a hardcoded fallback when the provider is
// unreachable.
package session

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/pitwall-io/pitwall/config"
	"github.com/pitwall-io/pitwall/internal/adapters/openf1"
	"github.com/pitwall-io/pitwall/internal/cache"
	"github.com/pitwall-io/pitwall/internal/observability"
)

// Mode labels how the active session was chosen.
type Mode string

const (
	// ModeLive means the provider reported a session currently running.
	ModeLive Mode = "live"
	// ModeOverride means an operator pinned a session explicitly.
	ModeOverride Mode = "override"
	// ModeFallback means no session is running; the most recent finished
	// session (or the configured fallback when the provider is unreachable)
	// is served with demo semantics.
	ModeFallback Mode = "fallback"
)

const resolveKey = "session_resolve:current"

// Resolution is the outcome of one resolve pass. Views treat it as a value.
type Resolution struct {
	SessionKey string          `json:"session_key"`
	Mode       Mode            `json:"mode"`
	IsLive     bool            `json:"is_live"`
	IsDemo     bool            `json:"is_demo"`
	Session    *openf1.Session `json:"session,omitempty"`
}

// CacheTTL stretches a live category's TTL when serving a demo session:
// historical data never changes, so the short live TTLs would only burn
// upstream quota.
func (r Resolution) CacheTTL(base, demoTTL time.Duration) time.Duration {
	if r.IsDemo && demoTTL > base {
		return demoTTL
	}
	return base
}

// Resolver owns the active-session decision and its short-lived cache.
type Resolver struct {
	mu       sync.Mutex
	client   *openf1.Client
	store    *cache.Store
	settings config.SessionSettings
	override string
	clock    func() time.Time
}

// NewResolver constructs a resolver. clock may be nil.
func NewResolver(client *openf1.Client, store *cache.Store, settings config.SessionSettings, clock func() time.Time) *Resolver {
	if clock == nil {
		clock = time.Now
	}
	return &Resolver{
		client:   client,
		store:    store,
		settings: settings,
		override: "",
		clock:    clock,
	}
}

// Resolve returns the session the live views should read. The decision is
// cached for the configured resolve TTL so concurrent view fan-outs do not
// each hit the provider.
func (r *Resolver) Resolve(ctx context.Context) Resolution {
	r.mu.Lock()
	override := r.override
	r.mu.Unlock()

	if override != "" {
		return r.resolveOverride(ctx, override)
	}

	if cached, ok := r.store.GetWithTTL(resolveKey, r.settings.ResolveTTL); ok {
		if res, ok := cached.(Resolution); ok {
			return res
		}
	}

	res := r.resolveLatest(ctx)
	r.store.Set(resolveKey, res)
	return res
}

// SetOverride pins a session key and flushes live state so views repopulate
// from the pinned session immediately.
func (r *Resolver) SetOverride(key string) {
	r.mu.Lock()
	r.override = key
	r.mu.Unlock()
	r.flushLiveState()
	observability.Log().Info("session override set", observability.Field{Key: "session_key", Value: key})
}

// ClearOverride returns to automatic resolution.
func (r *Resolver) ClearOverride() {
	r.mu.Lock()
	r.override = ""
	r.mu.Unlock()
	r.flushLiveState()
	observability.Log().Info("session override cleared")
}

// Override reports the pinned session key, empty when automatic.
func (r *Resolver) Override() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.override
}

func (r *Resolver) flushLiveState() {
	r.store.Clear("session_resolve")
	r.store.Clear("live_")
}

func (r *Resolver) resolveOverride(ctx context.Context, key string) Resolution {
	res := Resolution{
		SessionKey: key,
		Mode:       ModeOverride,
		IsLive:     false,
		IsDemo:     true,
		Session:    nil,
	}
	res.Session = r.sessionInfo(ctx, key)
	if res.Session != nil && r.isRunning(*res.Session) {
		// Pinning the genuinely current session is not demo mode.
		res.IsLive = true
		res.IsDemo = false
	}
	return res
}

func (r *Resolver) resolveLatest(ctx context.Context) Resolution {
	latest, err := r.client.LatestSession(ctx)
	if err != nil || latest == nil {
		if err != nil {
			observability.Log().Warn("session resolve failed, using fallback",
				observability.Field{Key: "error", Value: err.Error()},
				observability.Field{Key: "fallback", Value: r.settings.FallbackKey})
		}
		return Resolution{
			SessionKey: r.settings.FallbackKey,
			Mode:       ModeFallback,
			IsLive:     false,
			IsDemo:     true,
			Session:    r.sessionInfo(ctx, r.settings.FallbackKey),
		}
	}

	if r.isRunning(*latest) {
		// Live fetches keep querying with the provider's "latest" selector;
		// the concrete session id stays available on Session.
		return Resolution{
			SessionKey: openf1.SessionLatest,
			Mode:       ModeLive,
			IsLive:     true,
			IsDemo:     false,
			Session:    latest,
		}
	}

	// The most recent session already finished; serve that session itself
	// with demo semantics rather than a dead feed.
	return Resolution{
		SessionKey: strconv.Itoa(latest.SessionKey),
		Mode:       ModeFallback,
		IsLive:     false,
		IsDemo:     true,
		Session:    latest,
	}
}

// isRunning reports whether the session is between its start and its end
// plus the configured grace window. Unparseable bounds count as running so
// a malformed feed never kills a genuinely live session.
func (r *Resolver) isRunning(s openf1.Session) bool {
	now := r.clock().UTC()
	start, err := parseDate(s.DateStart)
	if err != nil {
		return true
	}
	if now.Before(start) {
		return false
	}
	end, err := parseDate(s.DateEnd)
	if err != nil {
		return true
	}
	return now.Before(end.Add(r.settings.EndGrace))
}

// sessionInfo fetches session metadata through the long-TTL cache; nil when
// the provider cannot supply it.
func (r *Resolver) sessionInfo(ctx context.Context, key string) *openf1.Session {
	cacheKey := "session_info:" + key
	if cached, ok := r.store.Get(cacheKey); ok {
		if s, ok := cached.(*openf1.Session); ok {
			return s
		}
	}
	s, err := r.client.SessionByKey(ctx, key)
	if err != nil {
		observability.Log().Debug("session metadata fetch failed",
			observability.Field{Key: "session_key", Value: key},
			observability.Field{Key: "error", Value: err.Error()})
		return nil
	}
	if s != nil {
		r.store.Set(cacheKey, s)
	}
	return s
}

func parseDate(v string) (time.Time, error) {
	return time.Parse(time.RFC3339, v)
}
