package jolpica

import (
	"context"
	"fmt"
	"net/url"

	"github.com/pitwall-io/pitwall/config"
	"github.com/pitwall-io/pitwall/internal/adapters/shared"
	"github.com/pitwall-io/pitwall/internal/observability"
	"github.com/pitwall-io/pitwall/internal/ratelimit"
	"github.com/pitwall-io/pitwall/internal/transport"
)

// Client fetches historical statistics. Every request draws a token from a
// shared bucket pinned under the provider's published request ceiling.
type Client struct {
	fetcher *shared.Fetcher
}

// NewClient constructs the statistics client from provider settings.
func NewClient(settings config.ProviderSettings, httpClient *transport.Client, metrics *observability.CoreMetrics) *Client {
	bucket := ratelimit.NewBucket(settings.RatePerSecond, settings.Burst)
	return &Client{
		fetcher: shared.NewFetcher(string(config.ProviderJolpica), settings.BaseURL, httpClient, bucket, settings.Retries, settings.RetryDelay, metrics),
	}
}

func listQuery(limit int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}
	return q
}

func (c *Client) getTable(ctx context.Context, endpoint string, limit int) (*MRData, error) {
	var env Envelope
	if err := c.fetcher.GetJSON(ctx, endpoint, listQuery(limit), &env); err != nil {
		return nil, err
	}
	return &env.MRData, nil
}

// Schedule fetches the full race calendar for a season.
func (c *Client) Schedule(ctx context.Context, season int) (*RaceTable, error) {
	data, err := c.getTable(ctx, fmt.Sprintf("/%d.json", season), 100)
	if err != nil {
		return nil, err
	}
	return data.RaceTable, nil
}

// RaceResults fetches the classification for one round; round "last" selects
// the most recently completed race.
func (c *Client) RaceResults(ctx context.Context, season int, round string) (*RaceTable, error) {
	data, err := c.getTable(ctx, fmt.Sprintf("/%d/%s/results.json", season, round), 100)
	if err != nil {
		return nil, err
	}
	return data.RaceTable, nil
}

// QualifyingResults fetches the qualifying classification for one round.
func (c *Client) QualifyingResults(ctx context.Context, season int, round string) (*RaceTable, error) {
	data, err := c.getTable(ctx, fmt.Sprintf("/%d/%s/qualifying.json", season, round), 100)
	if err != nil {
		return nil, err
	}
	return data.RaceTable, nil
}

// DriverStandings fetches the current driver championship for a season.
func (c *Client) DriverStandings(ctx context.Context, season int) (*StandingsTable, error) {
	data, err := c.getTable(ctx, fmt.Sprintf("/%d/driverStandings.json", season), 100)
	if err != nil {
		return nil, err
	}
	return data.StandingsTable, nil
}

// ConstructorStandings fetches the current constructor championship.
func (c *Client) ConstructorStandings(ctx context.Context, season int) (*StandingsTable, error) {
	data, err := c.getTable(ctx, fmt.Sprintf("/%d/constructorStandings.json", season), 100)
	if err != nil {
		return nil, err
	}
	return data.StandingsTable, nil
}

// DriverResults fetches every race result a driver scored in a season.
func (c *Client) DriverResults(ctx context.Context, season int, driverID string) (*RaceTable, error) {
	data, err := c.getTable(ctx, fmt.Sprintf("/%d/drivers/%s/results.json", season, url.PathEscape(driverID)), 100)
	if err != nil {
		return nil, err
	}
	return data.RaceTable, nil
}
