package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CoreMetrics tracks fetch, retry, and cache activity for the integration layer.
//
// Instruments come from the global meter provider, which is a noop unless the
// host process installs a real one.
type CoreMetrics struct {
	fetches   metric.Int64Counter
	retries   metric.Int64Counter
	rateWaits metric.Int64Counter
	cacheHits metric.Int64Counter
	cacheMiss metric.Int64Counter
}

// NewCoreMetrics constructs the core instrument set.
func NewCoreMetrics() (*CoreMetrics, error) {
	meter := otel.Meter("pitwall/core")

	fetches, err := meter.Int64Counter("pitwall_fetch_total",
		metric.WithDescription("Upstream fetch attempts by provider and outcome."))
	if err != nil {
		return nil, err
	}
	retries, err := meter.Int64Counter("pitwall_fetch_retries_total",
		metric.WithDescription("Retry attempts by provider."))
	if err != nil {
		return nil, err
	}
	rateWaits, err := meter.Int64Counter("pitwall_rate_limit_waits_total",
		metric.WithDescription("Times a fetch waited on the token bucket or inflight gate."))
	if err != nil {
		return nil, err
	}
	cacheHits, err := meter.Int64Counter("pitwall_cache_hits_total",
		metric.WithDescription("Cache hits by key category."))
	if err != nil {
		return nil, err
	}
	cacheMiss, err := meter.Int64Counter("pitwall_cache_misses_total",
		metric.WithDescription("Cache misses by key category."))
	if err != nil {
		return nil, err
	}

	return &CoreMetrics{
		fetches:   fetches,
		retries:   retries,
		rateWaits: rateWaits,
		cacheHits: cacheHits,
		cacheMiss: cacheMiss,
	}, nil
}

// RecordFetch counts one upstream fetch attempt.
func (m *CoreMetrics) RecordFetch(ctx context.Context, provider, outcome string) {
	if m == nil {
		return
	}
	m.fetches.Add(ctx, 1, metric.WithAttributes(
		attribute.String("provider", provider),
		attribute.String("outcome", outcome),
	))
}

// RecordRetry counts one retry attempt.
func (m *CoreMetrics) RecordRetry(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.retries.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordRateWait counts one wait on admission control.
func (m *CoreMetrics) RecordRateWait(ctx context.Context, provider string) {
	if m == nil {
		return
	}
	m.rateWaits.Add(ctx, 1, metric.WithAttributes(attribute.String("provider", provider)))
}

// RecordCache counts a cache lookup outcome for a key category.
func (m *CoreMetrics) RecordCache(ctx context.Context, category string, hit bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("category", category))
	if hit {
		m.cacheHits.Add(ctx, 1, attrs)
		return
	}
	m.cacheMiss.Add(ctx, 1, attrs)
}
