// Package shared holds the upstream plumbing both provider adapters build
// on: the retrying JSON fetcher and its admission hooks.
package shared

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/goccy/go-json"

	"github.com/pitwall-io/pitwall/errs"
	"github.com/pitwall-io/pitwall/internal/observability"
	"github.com/pitwall-io/pitwall/internal/transport"
)

// Admission gates a request before it reaches the wire. Enter blocks until
// a slot (or rate token) is available; Leave releases it.
type Admission interface {
	Enter(ctx context.Context) error
	Leave()
}

// Fetcher issues GET requests against one upstream with bounded retries.
// A zero retry count still makes one attempt.
type Fetcher struct {
	provider   string
	baseURL    string
	client     *transport.Client
	admission  Admission
	retries    int
	retryDelay time.Duration
	metrics    *observability.CoreMetrics
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewFetcher constructs a fetcher for one provider. admission and metrics
// may be nil.
func NewFetcher(provider, baseURL string, client *transport.Client, admission Admission, retries int, retryDelay time.Duration, metrics *observability.CoreMetrics) *Fetcher {
	if retries < 0 {
		retries = 0
	}
	if retryDelay <= 0 {
		retryDelay = time.Second
	}
	return &Fetcher{
		provider:   provider,
		baseURL:    strings.TrimRight(baseURL, "/"),
		client:     client,
		admission:  admission,
		retries:    retries,
		retryDelay: retryDelay,
		metrics:    metrics,
		sleep:      sleepCtx,
	}
}

// GetJSON fetches endpoint with the given query and decodes the body into v.
// Retryable failures (rate limiting, network errors, 5xx) are retried up to
// the configured count; all failures surface as *errs.E.
func (f *Fetcher) GetJSON(ctx context.Context, endpoint string, query url.Values, v any) error {
	body, err := f.Get(ctx, endpoint, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errs.New(f.provider, errs.CodeDecode,
			errs.WithEndpoint(endpoint),
			errs.WithMessage("decode response body"),
			errs.WithCause(err))
	}
	return nil
}

// Get fetches endpoint and returns the raw body.
func (f *Fetcher) Get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	target := f.baseURL + endpoint
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	rateBackoff := backoff.NewExponentialBackOff()
	rateBackoff.InitialInterval = f.retryDelay
	rateBackoff.Multiplier = 2
	rateBackoff.MaxInterval = 10 * time.Second
	rateBackoff.RandomizationFactor = 0

	attempts := f.retries + 1
	var lastErr *errs.E
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			f.metrics.RecordRetry(ctx, f.provider)
			var wait time.Duration
			if lastErr != nil && lastErr.Code == errs.CodeRateLimited {
				wait = rateBackoff.NextBackOff()
			} else {
				wait = f.retryDelay * time.Duration(attempt)
			}
			if err := f.sleep(ctx, wait); err != nil {
				return nil, errs.New(f.provider, errs.CodeNetwork,
					errs.WithEndpoint(endpoint),
					errs.WithAttempts(attempt),
					errs.WithMessage("canceled while backing off"),
					errs.WithCause(err))
			}
		}

		body, err := f.do(ctx, endpoint, target)
		if err == nil {
			f.metrics.RecordFetch(ctx, f.provider, "ok")
			return body, nil
		}
		lastErr = err
		lastErr.Attempts = attempt + 1
		if !lastErr.Retryable() {
			break
		}
	}
	f.metrics.RecordFetch(ctx, f.provider, string(lastErr.Code))
	return nil, lastErr
}

func (f *Fetcher) do(ctx context.Context, endpoint, target string) ([]byte, *errs.E) {
	if f.admission != nil {
		start := time.Now()
		if err := f.admission.Enter(ctx); err != nil {
			return nil, errs.New(f.provider, errs.CodeNetwork,
				errs.WithEndpoint(endpoint),
				errs.WithMessage("canceled waiting for admission"),
				errs.WithCause(err))
		}
		defer f.admission.Leave()
		if waited := time.Since(start); waited > 50*time.Millisecond {
			f.metrics.RecordRateWait(ctx, f.provider)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errs.New(f.provider, errs.CodeInvalid,
			errs.WithEndpoint(endpoint),
			errs.WithMessage("build request"),
			errs.WithCause(err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.HTTP().Do(req)
	if err != nil {
		return nil, errs.New(f.provider, errs.CodeNetwork,
			errs.WithEndpoint(endpoint),
			errs.WithMessage("request failed"),
			errs.WithCause(err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, errs.New(f.provider, errs.CodeRateLimited,
			errs.WithEndpoint(endpoint),
			errs.WithHTTP(resp.StatusCode))
	case resp.StatusCode == http.StatusNotFound:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, errs.New(f.provider, errs.CodeNotFound,
			errs.WithEndpoint(endpoint),
			errs.WithHTTP(resp.StatusCode))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		code := errs.CodeUpstream
		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			code = errs.CodeInvalid
		}
		return nil, errs.New(f.provider, code,
			errs.WithEndpoint(endpoint),
			errs.WithHTTP(resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.New(f.provider, errs.CodeNetwork,
			errs.WithEndpoint(endpoint),
			errs.WithMessage("read response body"),
			errs.WithCause(err))
	}
	return body, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
