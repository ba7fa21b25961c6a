package views

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pitwall-io/pitwall/config"
	"github.com/pitwall-io/pitwall/internal/adapters/jolpica"
	"github.com/pitwall-io/pitwall/internal/adapters/openf1"
	"github.com/pitwall-io/pitwall/internal/cache"
	"github.com/pitwall-io/pitwall/internal/session"
	"github.com/pitwall-io/pitwall/internal/transport"
)

// newTestService points both upstream clients at one httptest server; the
// handler dispatches on path.
func newTestService(t *testing.T, handler http.Handler) *Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	httpClient := transport.NewClient(time.Second, 5*time.Second)
	t.Cleanup(httpClient.Close)

	provider := config.ProviderSettings{
		BaseURL:     srv.URL,
		Retries:     0,
		RetryDelay:  time.Millisecond,
		MaxInflight: 3,
	}
	live := openf1.NewClient(provider, httpClient, nil)
	history := jolpica.NewClient(provider, httpClient, nil)

	settings := config.Default()
	store := cache.NewStore(settings.CacheTTL, nil)
	resolver := session.NewResolver(live, store, settings.Session, nil)
	return NewService(live, history, store, resolver, settings, nil)
}

// liveSessionJSON brackets now so the resolver lands in live mode.
func liveSessionJSON() string {
	now := time.Now().UTC()
	return fmt.Sprintf(`[{"session_key":9999,"session_name":"Race","session_type":"Race","date_start":%q,"date_end":%q,"year":2025}]`,
		now.Add(-time.Hour).Format(time.RFC3339), now.Add(time.Hour).Format(time.RFC3339))
}

func liveHandler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions":
			fmt.Fprint(w, liveSessionJSON())
		case "/position":
			// Driver 1 has an older and a newer record; the newer must win
			// regardless of array order.
			fmt.Fprint(w, `[
				{"driver_number":1,"position":1,"date":"2025-12-07T13:05:00+00:00"},
				{"driver_number":44,"position":3,"date":"2025-12-07T13:06:00+00:00"},
				{"driver_number":1,"position":5,"date":"2025-12-07T13:01:00+00:00"}
			]`)
		case "/stints":
			fmt.Fprint(w, `[
				{"driver_number":1,"stint_number":1,"compound":"MEDIUM","lap_start":1,"lap_end":10},
				{"driver_number":1,"stint_number":2,"compound":"SOFT","lap_start":11},
				{"driver_number":44,"stint_number":1,"compound":"HARD","lap_start":1,"lap_end":12}
			]`)
		case "/pit":
			fmt.Fprint(w, `[{"driver_number":1,"lap_number":10,"pit_duration":22.5,"date":"2025-12-07T13:04:00+00:00"}]`)
		case "/laps":
			fmt.Fprint(w, `[
				{"driver_number":1,"lap_number":14,"lap_duration":91.0,"duration_sector_1":30.0,"duration_sector_2":30.5,"duration_sector_3":30.5},
				{"driver_number":1,"lap_number":15,"lap_duration":92.0,"duration_sector_1":30.4,"duration_sector_2":31.0,"duration_sector_3":30.6},
				{"driver_number":44,"lap_number":15,"lap_duration":90.5,"duration_sector_1":29.8,"duration_sector_2":30.2,"duration_sector_3":30.5}
			]`)
		case "/intervals":
			fmt.Fprint(w, `[
				{"driver_number":1,"gap_to_leader":1.2,"interval":1.2,"date":"2025-12-07T13:06:00+00:00"},
				{"driver_number":44,"gap_to_leader":0,"interval":0,"date":"2025-12-07T13:06:00+00:00"}
			]`)
		case "/weather":
			fmt.Fprint(w, `[
				{"air_temperature":24.0,"track_temperature":35.0,"rainfall":0,"date":"2025-12-07T13:00:00+00:00"},
				{"air_temperature":23.5,"track_temperature":33.0,"rainfall":0.2,"humidity":60,"date":"2025-12-07T13:06:00+00:00"}
			]`)
		case "/race_control":
			fmt.Fprint(w, `[{"category":"Flag","flag":"YELLOW","message":"YELLOW IN SECTOR 2","scope":"Sector","date":"2025-12-07T13:05:30+00:00","lap_number":14}]`)
		case "/team_radio":
			fmt.Fprint(w, `[{"driver_number":44,"recording_url":"https://example.com/radio.mp3","date":"2025-12-07T13:05:00+00:00"}]`)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			fmt.Fprint(w, `[]`)
		}
	})
}

func TestLivePositionsMergesNewestRecordPerDriver(t *testing.T) {
	s := newTestService(t, liveHandler(t))

	view, err := s.LivePositions(context.Background())
	if err != nil {
		t.Fatalf("LivePositions: %v", err)
	}
	if view.Count != 2 {
		t.Fatalf("expected 2 drivers, got %d", view.Count)
	}
	leader := view.Positions[0]
	if leader.Number != 1 || leader.Position != 1 {
		t.Fatalf("driver 1's newest record (P1) must win, got %+v", leader)
	}
	if leader.Tyre != "SOFT" || leader.StintNumber != 2 {
		t.Fatalf("current stint should be the highest stint number, got %+v", leader)
	}
	if leader.TyreAge != 0 {
		t.Fatalf("open stint age is unknown without the current lap, got %d", leader.TyreAge)
	}
	if leader.PitStops != 1 {
		t.Fatalf("pit count lost: %d", leader.PitStops)
	}
	second := view.Positions[1]
	if second.Number != 44 || second.TyreAge != 11 {
		t.Fatalf("closed stint age is lap_end-lap_start, got %+v", second)
	}
}

func TestLiveTimingBestFlags(t *testing.T) {
	s := newTestService(t, liveHandler(t))

	view, err := s.LiveTiming(context.Background())
	if err != nil {
		t.Fatalf("LiveTiming: %v", err)
	}
	if view.SessionBest.Lap == nil || *view.SessionBest.Lap != 90.5 {
		t.Fatalf("session best lap wrong: %+v", view.SessionBest)
	}

	rows := make(map[int]TimingRow, len(view.Timing))
	for _, row := range view.Timing {
		rows[row.Number] = row
	}
	d1 := rows[1]
	if d1.LapNumber != 15 {
		t.Fatalf("latest lap per driver should win, got %d", d1.LapNumber)
	}
	if d1.IsPersonalBest {
		t.Fatalf("lap 15 (92.0) is slower than lap 14 (91.0), not a personal best")
	}
	d44 := rows[44]
	if !d44.IsBestLap || !d44.IsPersonalBest {
		t.Fatalf("driver 44 holds the session best, got %+v", d44)
	}
	if d44.S1Status != "best" {
		t.Fatalf("driver 44 holds best sector 1, got %q", d44.S1Status)
	}
}

func TestLiveWeatherPicksNewestSample(t *testing.T) {
	s := newTestService(t, liveHandler(t))

	view, err := s.LiveWeather(context.Background())
	if err != nil {
		t.Fatalf("LiveWeather: %v", err)
	}
	if view.Weather == nil {
		t.Fatalf("expected a weather report")
	}
	if view.Weather.AirTemperature != 23.5 || !view.Weather.IsRaining {
		t.Fatalf("newest sample should win: %+v", view.Weather)
	}
}

func TestDashboardRecomputesOpenStintTyreAge(t *testing.T) {
	s := newTestService(t, liveHandler(t))

	dash, err := s.Dashboard(context.Background())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if !dash.Session.IsLive {
		t.Fatalf("session should resolve live: %+v", dash.Session)
	}
	var leader PositionRow
	for _, row := range dash.Positions.Positions {
		if row.Number == 1 {
			leader = row
		}
	}
	// Driver 1's open stint started on lap 11 and their current lap is 15.
	if leader.TyreAge != 4 {
		t.Fatalf("dashboard pass should compute tyre age 4, got %d", leader.TyreAge)
	}
	if leader.CurrentLap != 15 {
		t.Fatalf("current lap should be attached, got %d", leader.CurrentLap)
	}

	// The cached positions view must stay untouched by the dashboard pass.
	cachedView, err := s.LivePositions(context.Background())
	if err != nil {
		t.Fatalf("LivePositions: %v", err)
	}
	for _, row := range cachedView.Positions {
		if row.Number == 1 && row.TyreAge != 0 {
			t.Fatalf("dashboard mutated the cached view: %+v", row)
		}
	}
}

func TestLiveViewsAreCached(t *testing.T) {
	calls := 0
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions":
			fmt.Fprint(w, liveSessionJSON())
		case "/weather":
			calls++
			fmt.Fprint(w, `[{"air_temperature":20.0,"date":"2025-12-07T13:00:00+00:00"}]`)
		default:
			fmt.Fprint(w, `[]`)
		}
	})
	s := newTestService(t, handler)

	if _, err := s.LiveWeather(context.Background()); err != nil {
		t.Fatalf("LiveWeather: %v", err)
	}
	if _, err := s.LiveWeather(context.Background()); err != nil {
		t.Fatalf("LiveWeather: %v", err)
	}
	if calls != 1 {
		t.Fatalf("second call inside the TTL must hit the cache, got %d fetches", calls)
	}
}

func TestRadioAndRaceControlTails(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/sessions":
			fmt.Fprint(w, liveSessionJSON())
		case "/race_control":
			fmt.Fprint(w, manyMessages(40))
		case "/team_radio":
			fmt.Fprint(w, manyRadio(30))
		default:
			fmt.Fprint(w, `[]`)
		}
	})
	s := newTestService(t, handler)

	rc, err := s.LiveRaceControl(context.Background())
	if err != nil {
		t.Fatalf("LiveRaceControl: %v", err)
	}
	if len(rc.Messages) != 25 {
		t.Fatalf("race control keeps the last 25, got %d", len(rc.Messages))
	}
	radio, err := s.LiveRadio(context.Background())
	if err != nil {
		t.Fatalf("LiveRadio: %v", err)
	}
	if len(radio.Radio) != 15 {
		t.Fatalf("radio keeps the last 15, got %d", len(radio.Radio))
	}
}

func manyMessages(n int) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"category":"Other","message":"msg %d","date":"2025-12-07T13:%02d:00+00:00"}`, i, i)
	}
	return out + "]"
}

func manyRadio(n int) string {
	out := "["
	for i := 0; i < n; i++ {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf(`{"driver_number":1,"recording_url":"https://example.com/%d.mp3","date":"2025-12-07T13:%02d:00+00:00"}`, i, i)
	}
	return out + "]"
}
