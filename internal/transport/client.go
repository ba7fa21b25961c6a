// Package transport owns the shared HTTP client used by every upstream fetch.
package transport

import (
	"net"
	"net/http"
	"sync"
	"time"
)

const (
	defaultConnectTimeout = 5 * time.Second
	defaultRequestTimeout = 15 * time.Second
	maxIdleConns          = 20
	maxIdleConnsPerHost   = 10
)

// Client lazily materialises one pooled http.Client shared by all fetchers.
// It is purely transport: no retry or rate limiting lives here.
type Client struct {
	mu             sync.Mutex
	inner          *http.Client
	closed         bool
	connectTimeout time.Duration
	requestTimeout time.Duration
}

// NewClient constructs a shared client with the provided timeouts.
// Zero durations fall back to the defaults (connect 5s, request 15s).
func NewClient(connectTimeout, requestTimeout time.Duration) *Client {
	if connectTimeout <= 0 {
		connectTimeout = defaultConnectTimeout
	}
	if requestTimeout <= 0 {
		requestTimeout = defaultRequestTimeout
	}
	return &Client{
		mu:             sync.Mutex{},
		inner:          nil,
		closed:         false,
		connectTimeout: connectTimeout,
		requestTimeout: requestTimeout,
	}
}

// HTTP returns the shared http.Client, creating it on first use and
// recreating it if the client was previously closed.
func (c *Client) HTTP() *http.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inner == nil || c.closed {
		c.inner = c.build()
		c.closed = false
	}
	return c.inner
}

// Close releases pooled connections. Safe to call more than once; a later
// HTTP() call builds a fresh client.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.inner != nil && !c.closed {
		c.inner.CloseIdleConnections()
	}
	c.closed = true
}

func (c *Client) build() *http.Client {
	dialer := &net.Dialer{
		Timeout:   c.connectTimeout,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          maxIdleConns,
		MaxIdleConnsPerHost:   maxIdleConnsPerHost,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   c.connectTimeout,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   c.requestTimeout,
		// redirects are followed by default; nothing to configure
	}
}
