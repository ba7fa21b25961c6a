package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pitwall-io/pitwall/config"
	"github.com/pitwall-io/pitwall/internal/adapters/openf1"
	"github.com/pitwall-io/pitwall/internal/cache"
	"github.com/pitwall-io/pitwall/internal/transport"
)

func testSettings() config.SessionSettings {
	return config.SessionSettings{
		ResolveTTL:  60 * time.Second,
		EndGrace:    30 * time.Minute,
		DemoTTL:     300 * time.Second,
		FallbackKey: "9869",
	}
}

func newTestResolver(t *testing.T, handler http.Handler, now time.Time) (*Resolver, *cache.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	httpClient := transport.NewClient(time.Second, 5*time.Second)
	t.Cleanup(httpClient.Close)
	client := openf1.NewClient(config.ProviderSettings{
		BaseURL:     srv.URL,
		Retries:     0,
		RetryDelay:  time.Millisecond,
		MaxInflight: 3,
	}, httpClient, nil)
	clock := func() time.Time { return now }
	store := cache.NewStore(map[string]time.Duration{}, clock)
	return NewResolver(client, store, testSettings(), clock), store
}

func sessionJSON(key int, start, end time.Time) string {
	return fmt.Sprintf(`[{"session_key":%d,"session_name":"Race","date_start":%q,"date_end":%q,"year":2025}]`,
		key, start.Format(time.RFC3339), end.Format(time.RFC3339))
}

func TestResolveLiveSession(t *testing.T) {
	now := time.Date(2025, 12, 7, 13, 30, 0, 0, time.UTC)
	var calls atomic.Int32
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		fmt.Fprint(w, sessionJSON(9999, now.Add(-time.Hour), now.Add(time.Hour)))
	}), now)

	res := r.Resolve(context.Background())
	if res.Mode != ModeLive || !res.IsLive || res.IsDemo {
		t.Fatalf("expected live resolution, got %+v", res)
	}
	// Live fetches keep using the provider's "latest" selector.
	if res.SessionKey != openf1.SessionLatest {
		t.Fatalf("unexpected key %q", res.SessionKey)
	}
	if res.Session == nil || res.Session.SessionKey != 9999 {
		t.Fatalf("concrete session id missing: %+v", res.Session)
	}

	// Second resolve inside the TTL serves from cache.
	r.Resolve(context.Background())
	if calls.Load() != 1 {
		t.Fatalf("expected one upstream call, got %d", calls.Load())
	}
}

func TestResolveWithinEndGraceStaysLive(t *testing.T) {
	now := time.Date(2025, 12, 7, 15, 10, 0, 0, time.UTC)
	// Session ended 10 minutes ago, inside the 30 minute grace window.
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, sessionJSON(9999, now.Add(-2*time.Hour), now.Add(-10*time.Minute)))
	}), now)

	res := r.Resolve(context.Background())
	if res.Mode != ModeLive {
		t.Fatalf("session within grace should resolve live, got %+v", res)
	}
}

func TestResolveEndedSessionServesItsOwnKey(t *testing.T) {
	now := time.Date(2025, 12, 8, 10, 0, 0, 0, time.UTC)
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		fmt.Fprint(w, sessionJSON(9999, now.Add(-20*time.Hour), now.Add(-18*time.Hour)))
	}), now)

	res := r.Resolve(context.Background())
	if res.Mode != ModeFallback || !res.IsDemo {
		t.Fatalf("ended session should resolve with demo semantics, got %+v", res)
	}
	// Between events the finished session itself is served, not the
	// hardcoded fallback reserved for an unreachable provider.
	if res.SessionKey != "9999" {
		t.Fatalf("expected the session's own id, got %q", res.SessionKey)
	}
	if res.Session == nil || res.Session.SessionKey != 9999 {
		t.Fatalf("session metadata missing: %+v", res.Session)
	}
}

func TestResolveUnreachableProviderFallsBack(t *testing.T) {
	now := time.Now().UTC()
	r, _ := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}), now)

	res := r.Resolve(context.Background())
	if res.Mode != ModeFallback || res.SessionKey != "9869" {
		t.Fatalf("unreachable provider should fall back, got %+v", res)
	}
	if res.Session != nil {
		t.Fatalf("metadata should be absent when the provider is down")
	}
}

func TestOverridePinsSessionAndFlushesLiveState(t *testing.T) {
	now := time.Now().UTC()
	r, store := newTestResolver(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Pinned session finished long ago.
		fmt.Fprint(w, sessionJSON(9644, now.Add(-60*24*time.Hour), now.Add(-60*24*time.Hour+2*time.Hour)))
	}), now)

	store.Set("live_positions:current", "stale")
	store.Set("schedule:2025", "keep")

	r.SetOverride("9644")
	if _, ok := store.Get("live_positions:current"); ok {
		t.Fatalf("override should flush live state")
	}
	if _, ok := store.Get("schedule:2025"); !ok {
		t.Fatalf("override must not flush non-live state")
	}

	res := r.Resolve(context.Background())
	if res.Mode != ModeOverride || !res.IsDemo || res.SessionKey != "9644" {
		t.Fatalf("unexpected override resolution %+v", res)
	}

	r.ClearOverride()
	if r.Override() != "" {
		t.Fatalf("override should clear")
	}
}

func TestDemoTTLStretch(t *testing.T) {
	demo := Resolution{SessionKey: "9869", Mode: ModeFallback, IsLive: false, IsDemo: true, Session: nil}
	if got := demo.CacheTTL(10*time.Second, 300*time.Second); got != 300*time.Second {
		t.Fatalf("demo should stretch short live TTLs, got %v", got)
	}
	if got := demo.CacheTTL(time.Hour, 300*time.Second); got != time.Hour {
		t.Fatalf("demo must not shorten long TTLs, got %v", got)
	}
	live := Resolution{SessionKey: "9999", Mode: ModeLive, IsLive: true, IsDemo: false, Session: nil}
	if got := live.CacheTTL(10*time.Second, 300*time.Second); got != 10*time.Second {
		t.Fatalf("live TTLs stay untouched, got %v", got)
	}
}
