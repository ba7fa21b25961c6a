package cache

import (
	"context"
	"testing"
	"time"
)

func newTestStore() (*Store, *time.Time) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore(map[string]time.Duration{
		"live_positions": 10 * time.Second,
		"schedule":       time.Hour,
	}, func() time.Time { return now })
	return store, &now
}

func TestGetWithinTTLReturnsValue(t *testing.T) {
	store, now := newTestStore()
	store.Set("live_positions:latest", "payload")

	*now = now.Add(9 * time.Second)
	got, ok := store.Get("live_positions:latest")
	if !ok || got != "payload" {
		t.Fatalf("expected hit within TTL, got %v/%v", got, ok)
	}
}

func TestGetAfterTTLMisses(t *testing.T) {
	store, now := newTestStore()
	store.Set("live_positions:latest", "payload")

	*now = now.Add(10 * time.Second)
	if _, ok := store.Get("live_positions:latest"); ok {
		t.Fatalf("expected miss at exactly TTL")
	}
}

func TestCategoryTTLSelection(t *testing.T) {
	store, now := newTestStore()
	store.Set("schedule:2025", "races")

	*now = now.Add(30 * time.Minute)
	if _, ok := store.Get("schedule:2025"); !ok {
		t.Fatalf("expected schedule entry to survive 30m with 1h TTL")
	}

	store.Set("unmapped:key", 1)
	*now = now.Add(DefaultTTL)
	if _, ok := store.Get("unmapped:key"); ok {
		t.Fatalf("expected default TTL to apply to unmapped category")
	}
}

func TestGetWithTTLOverride(t *testing.T) {
	store, now := newTestStore()
	store.Set("live_positions:latest", "payload")

	*now = now.Add(200 * time.Second)
	if _, ok := store.Get("live_positions:latest"); ok {
		t.Fatalf("expected category TTL miss")
	}
	if got, ok := store.GetWithTTL("live_positions:latest", 300*time.Second); !ok || got != "payload" {
		t.Fatalf("expected override TTL hit, got %v/%v", got, ok)
	}
}

func TestClearPrefixDropsOnlyMatchingKeys(t *testing.T) {
	store, _ := newTestStore()
	store.Set("live_positions:latest", 1)
	store.Set("live_timing:latest", 2)
	store.Set("schedule:2025", 3)

	if dropped := store.Clear("live_"); dropped != 2 {
		t.Fatalf("expected 2 dropped entries, got %d", dropped)
	}
	if _, ok := store.Get("schedule:2025"); !ok {
		t.Fatalf("expected unrelated entry to survive prefix clear")
	}
	if _, ok := store.Get("live_positions:latest"); ok {
		t.Fatalf("expected prefixed entry to be dropped")
	}
}

func TestClearAllAndStats(t *testing.T) {
	store, now := newTestStore()
	store.Set("live_positions:latest", 1)
	store.Set("schedule:2025", 2)

	*now = now.Add(15 * time.Second)
	stats := store.Stats()
	if stats.Total != 2 || stats.Expired != 1 || stats.Active != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if dropped := store.Clear(""); dropped != 2 {
		t.Fatalf("expected full flush to drop 2, got %d", dropped)
	}
	if stats := store.Stats(); stats.Total != 0 {
		t.Fatalf("expected empty store, got %+v", stats)
	}
}

type lookupRecorder struct {
	hits   map[string]int
	misses map[string]int
}

func (r *lookupRecorder) RecordCache(_ context.Context, category string, hit bool) {
	if hit {
		r.hits[category]++
		return
	}
	r.misses[category]++
}

func TestLookupOutcomesReachRecorder(t *testing.T) {
	store, now := newTestStore()
	rec := &lookupRecorder{hits: map[string]int{}, misses: map[string]int{}}
	store.Instrument(rec)

	store.Get("live_positions:latest")
	store.Set("live_positions:latest", "payload")
	store.Get("live_positions:latest")
	*now = now.Add(10 * time.Second)
	store.Get("live_positions:latest")

	if rec.hits["live_positions"] != 1 {
		t.Fatalf("expected 1 hit, got %d", rec.hits["live_positions"])
	}
	if rec.misses["live_positions"] != 2 {
		t.Fatalf("expected misses for the absent and expired lookups, got %d", rec.misses["live_positions"])
	}
}

func TestSetOverwrites(t *testing.T) {
	store, _ := newTestStore()
	store.Set("schedule:2025", "old")
	store.Set("schedule:2025", "new")
	got, ok := store.Get("schedule:2025")
	if !ok || got != "new" {
		t.Fatalf("expected overwrite, got %v/%v", got, ok)
	}
}
