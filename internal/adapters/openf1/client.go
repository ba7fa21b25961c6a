package openf1

import (
	"context"
	"net/url"
	"strconv"

	"github.com/pitwall-io/pitwall/config"
	"github.com/pitwall-io/pitwall/internal/adapters/shared"
	"github.com/pitwall-io/pitwall/internal/observability"
	"github.com/pitwall-io/pitwall/internal/ratelimit"
	"github.com/pitwall-io/pitwall/internal/transport"
)

// SessionLatest selects whichever session the provider considers current.
const SessionLatest = "latest"

// Client fetches live telemetry. All requests pass through a fixed-size
// concurrency gate so bursts of view fan-outs cannot stampede the upstream.
type Client struct {
	fetcher *shared.Fetcher
	gate    *ratelimit.Gate
}

// NewClient constructs the telemetry client from provider settings.
func NewClient(settings config.ProviderSettings, httpClient *transport.Client, metrics *observability.CoreMetrics) *Client {
	gate := ratelimit.NewGate(settings.MaxInflight)
	return &Client{
		fetcher: shared.NewFetcher(string(config.ProviderOpenF1), settings.BaseURL, httpClient, gate, settings.Retries, settings.RetryDelay, metrics),
		gate:    gate,
	}
}

// InflightInUse reports how many gate slots are currently held.
func (c *Client) InflightInUse() int { return c.gate.InUse() }

func sessionQuery(sessionKey string) url.Values {
	q := url.Values{}
	if sessionKey != "" {
		q.Set("session_key", sessionKey)
	}
	return q
}

// Sessions fetches session metadata filtered by the given query.
func (c *Client) Sessions(ctx context.Context, query url.Values) ([]Session, error) {
	var out []Session
	if err := c.fetcher.GetJSON(ctx, "/sessions", query, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SessionByKey fetches a single session's metadata.
func (c *Client) SessionByKey(ctx context.Context, sessionKey string) (*Session, error) {
	sessions, err := c.Sessions(ctx, sessionQuery(sessionKey))
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// LatestSession fetches the provider's current session.
func (c *Client) LatestSession(ctx context.Context) (*Session, error) {
	return c.SessionByKey(ctx, SessionLatest)
}

// Positions fetches the position feed for a session.
func (c *Client) Positions(ctx context.Context, sessionKey string) ([]Position, error) {
	var out []Position
	if err := c.fetcher.GetJSON(ctx, "/position", sessionQuery(sessionKey), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Laps fetches the lap feed for a session, optionally for one driver.
func (c *Client) Laps(ctx context.Context, sessionKey string, driverNumber int) ([]Lap, error) {
	q := sessionQuery(sessionKey)
	if driverNumber > 0 {
		q.Set("driver_number", strconv.Itoa(driverNumber))
	}
	var out []Lap
	if err := c.fetcher.GetJSON(ctx, "/laps", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Stints fetches the stint feed for a session.
func (c *Client) Stints(ctx context.Context, sessionKey string) ([]Stint, error) {
	var out []Stint
	if err := c.fetcher.GetJSON(ctx, "/stints", sessionQuery(sessionKey), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Intervals fetches the gap feed for a session.
func (c *Client) Intervals(ctx context.Context, sessionKey string) ([]Interval, error) {
	var out []Interval
	if err := c.fetcher.GetJSON(ctx, "/intervals", sessionQuery(sessionKey), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// WeatherFeed fetches the weather samples for a session.
func (c *Client) WeatherFeed(ctx context.Context, sessionKey string) ([]Weather, error) {
	var out []Weather
	if err := c.fetcher.GetJSON(ctx, "/weather", sessionQuery(sessionKey), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// RaceControlFeed fetches race-control messages for a session.
func (c *Client) RaceControlFeed(ctx context.Context, sessionKey string) ([]RaceControl, error) {
	var out []RaceControl
	if err := c.fetcher.GetJSON(ctx, "/race_control", sessionQuery(sessionKey), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// TeamRadioFeed fetches the radio capture list for a session.
func (c *Client) TeamRadioFeed(ctx context.Context, sessionKey string) ([]TeamRadio, error) {
	var out []TeamRadio
	if err := c.fetcher.GetJSON(ctx, "/team_radio", sessionQuery(sessionKey), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Pits fetches the pit-stop feed for a session.
func (c *Client) Pits(ctx context.Context, sessionKey string) ([]Pit, error) {
	var out []Pit
	if err := c.fetcher.GetJSON(ctx, "/pit", sessionQuery(sessionKey), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Locations fetches on-track coordinates for one driver between two
// instants. The feed is dense, so callers always bound it by time.
func (c *Client) Locations(ctx context.Context, sessionKey string, driverNumber int, dateFrom, dateTo string) ([]Location, error) {
	q := sessionQuery(sessionKey)
	q.Set("driver_number", strconv.Itoa(driverNumber))
	if dateFrom != "" {
		q.Set("date>", dateFrom)
	}
	if dateTo != "" {
		q.Set("date<", dateTo)
	}
	var out []Location
	if err := c.fetcher.GetJSON(ctx, "/location", q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
