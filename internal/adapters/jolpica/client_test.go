package jolpica

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pitwall-io/pitwall/config"
	"github.com/pitwall-io/pitwall/internal/transport"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	httpClient := transport.NewClient(time.Second, 5*time.Second)
	t.Cleanup(httpClient.Close)
	settings := config.ProviderSettings{
		BaseURL:    srv.URL,
		Retries:    0,
		RetryDelay: time.Millisecond,
		// unlimited bucket keeps the test fast
		RatePerSecond: 0,
	}
	return NewClient(settings, httpClient, nil)
}

func TestScheduleDecodesRaceTable(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2025.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "100" {
			t.Errorf("limit not forwarded: %s", r.URL.RawQuery)
		}
		w.Write([]byte(`{"MRData":{"total":"24","RaceTable":{"season":"2025","Races":[
			{"season":"2025","round":"1","raceName":"Australian Grand Prix",
			 "Circuit":{"circuitId":"albert_park","circuitName":"Albert Park Circuit",
			   "Location":{"lat":"-37.8497","long":"144.968","locality":"Melbourne","country":"Australia"}},
			 "date":"2025-03-16","time":"04:00:00Z"}]}}}`)) //nolint:errcheck
	}))

	table, err := c.Schedule(context.Background(), 2025)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if len(table.Races) != 1 {
		t.Fatalf("expected one race, got %d", len(table.Races))
	}
	race := table.Races[0]
	if race.Circuit.CircuitID != "albert_park" || race.Round != "1" {
		t.Fatalf("unexpected race %+v", race)
	}
}

func TestRaceResultsLastRound(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2025/last/results.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"MRData":{"RaceTable":{"season":"2025","Races":[
			{"raceName":"Abu Dhabi Grand Prix","round":"24","Results":[
			  {"number":"4","position":"1","positionText":"1","points":"25",
			   "Driver":{"driverId":"norris","code":"NOR","givenName":"Lando","familyName":"Norris"},
			   "Constructor":{"constructorId":"mclaren","name":"McLaren"},
			   "grid":"2","laps":"58","status":"Finished",
			   "Time":{"millis":"5070042","time":"1:24:30.042"},
			   "FastestLap":{"rank":"1","lap":"40","Time":{"time":"1:26.103"}}}]}]}}}`)) //nolint:errcheck
	}))

	table, err := c.RaceResults(context.Background(), 2025, "last")
	if err != nil {
		t.Fatalf("RaceResults: %v", err)
	}
	res := table.Races[0].Results[0]
	if res.Driver.DriverID != "norris" || res.Points != "25" {
		t.Fatalf("unexpected result %+v", res)
	}
	if res.FastestLap == nil || res.FastestLap.Rank != "1" {
		t.Fatalf("fastest lap lost: %+v", res.FastestLap)
	}
}

func TestDriverStandingsDecode(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2025/driverStandings.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"MRData":{"StandingsTable":{"season":"2025","StandingsLists":[
			{"season":"2025","round":"24","DriverStandings":[
			  {"position":"1","points":"437","wins":"7",
			   "Driver":{"driverId":"norris","permanentNumber":"4"},
			   "Constructors":[{"constructorId":"mclaren","name":"McLaren"}]}]}]}}}`)) //nolint:errcheck
	}))

	table, err := c.DriverStandings(context.Background(), 2025)
	if err != nil {
		t.Fatalf("DriverStandings: %v", err)
	}
	row := table.StandingsLists[0].DriverStandings[0]
	if row.Points != "437" || row.Driver.DriverID != "norris" {
		t.Fatalf("unexpected standing %+v", row)
	}
}
