package openf1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pitwall-io/pitwall/config"
	"github.com/pitwall-io/pitwall/internal/transport"
)

func newTestClient(t *testing.T, handler http.Handler, maxInflight int) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	httpClient := transport.NewClient(time.Second, 5*time.Second)
	t.Cleanup(httpClient.Close)
	settings := config.ProviderSettings{
		BaseURL:     srv.URL,
		Retries:     0,
		RetryDelay:  time.Millisecond,
		MaxInflight: maxInflight,
	}
	return NewClient(settings, httpClient, nil)
}

func TestPositionsForwardsSessionKey(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/position" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("session_key") != "9869" {
			t.Errorf("session_key not forwarded: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"session_key":9869,"driver_number":1,"position":3,"date":"2025-12-07T13:05:00+00:00"}]`)) //nolint:errcheck
	}), 3)

	positions, err := c.Positions(context.Background(), "9869")
	if err != nil {
		t.Fatalf("Positions: %v", err)
	}
	if len(positions) != 1 || positions[0].DriverNumber != 1 || positions[0].Position != 3 {
		t.Fatalf("unexpected rows %+v", positions)
	}
}

func TestLapsNilDurationForInProgressLap(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("driver_number") != "44" {
			t.Errorf("driver_number not forwarded: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"driver_number":44,"lap_number":2,"lap_duration":null,"is_pit_out_lap":true}]`)) //nolint:errcheck
	}), 3)

	laps, err := c.Laps(context.Background(), SessionLatest, 44)
	if err != nil {
		t.Fatalf("Laps: %v", err)
	}
	if laps[0].LapDuration != nil {
		t.Fatalf("null duration should decode as nil")
	}
	if !laps[0].IsPitOutLap {
		t.Fatalf("pit-out flag lost")
	}
}

func TestGateBoundsConcurrentRequests(t *testing.T) {
	var inflight, peak atomic.Int32
	release := make(chan struct{})
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := inflight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		<-release
		inflight.Add(-1)
		w.Write([]byte(`[]`)) //nolint:errcheck
	}), 2)

	var wg sync.WaitGroup
	for i := 0; i < 6; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Positions(context.Background(), SessionLatest)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := peak.Load(); got > 2 {
		t.Fatalf("gate allowed %d concurrent requests", got)
	}
	if c.InflightInUse() != 0 {
		t.Fatalf("gate slots leaked: %d", c.InflightInUse())
	}
}

func TestLocationsBoundsByTime(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("date>") == "" || q.Get("date<") == "" {
			t.Errorf("location fetch must be time-bounded: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`[{"driver_number":1,"x":-1062,"y":2437,"z":10,"date":"2025-12-07T13:10:00+00:00"}]`)) //nolint:errcheck
	}), 3)

	points, err := c.Locations(context.Background(), "9869", 1, "2025-12-07T13:10:00", "2025-12-07T13:12:00")
	if err != nil {
		t.Fatalf("Locations: %v", err)
	}
	if len(points) != 1 || points[0].X != -1062 {
		t.Fatalf("unexpected points %+v", points)
	}
}
