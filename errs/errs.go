// Package errs provides structured error types shared across the pitwall core.
package errs

import (
	"strconv"
	"strings"
)

// Code identifies an upstream failure category.
type Code string

const (
	// CodeRateLimited indicates the upstream rejected the request with HTTP 429.
	CodeRateLimited Code = "rate_limited"
	// CodeNetwork indicates a transport failure (timeout, connection error).
	CodeNetwork Code = "network"
	// CodeUpstream indicates a non-2xx response from the provider.
	CodeUpstream Code = "upstream"
	// CodeDecode indicates an unparseable upstream payload.
	CodeDecode Code = "decode"
	// CodeNotFound indicates a missing resource.
	CodeNotFound Code = "not_found"
	// CodeInvalid indicates invalid input provided by the caller.
	CodeInvalid Code = "invalid_request"
	// CodeUnavailable indicates the provider could not be reached after retries.
	CodeUnavailable Code = "unavailable"
)

// E captures structured error information produced by the integration layer.
//
// Values of *E are the failure sentinels the retry wrappers return: ordinary
// upstream degradation is reported through them, never through panics, so
// view code can render "no data" instead of crashing.
type E struct {
	Provider string
	Code     Code
	HTTP     int
	Endpoint string
	Message  string
	Attempts int

	cause error
}

// Option configures an error envelope.
type Option func(*E)

// New constructs an error envelope for the provider and failure code.
func New(provider string, code Code, opts ...Option) *E {
	e := &E{
		Provider: strings.TrimSpace(provider),
		Code:     code,
		HTTP:     0,
		Endpoint: "",
		Message:  "",
		Attempts: 0,
		cause:    nil,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// WithMessage attaches a human-readable message to the error.
func WithMessage(message string) Option {
	trimmed := strings.TrimSpace(message)
	return func(e *E) {
		e.Message = trimmed
	}
}

// WithHTTP records the associated HTTP status code.
func WithHTTP(status int) Option {
	return func(e *E) {
		e.HTTP = status
	}
}

// WithEndpoint records the upstream endpoint that produced the failure.
func WithEndpoint(endpoint string) Option {
	trimmed := strings.TrimSpace(endpoint)
	return func(e *E) {
		e.Endpoint = trimmed
	}
}

// WithAttempts records how many attempts were made before giving up.
func WithAttempts(attempts int) Option {
	return func(e *E) {
		e.Attempts = attempts
	}
}

// WithCause sets the underlying cause error.
func WithCause(err error) Option {
	return func(e *E) {
		e.cause = err
	}
}

func (e *E) Error() string {
	if e == nil {
		return "<nil>"
	}
	var parts []string

	provider := strings.TrimSpace(e.Provider)
	if provider == "" {
		provider = "unknown"
	}
	parts = append(parts, "provider="+provider)

	code := strings.TrimSpace(string(e.Code))
	if code == "" {
		code = "unknown"
	}
	parts = append(parts, "code="+code)

	if e.Endpoint != "" {
		parts = append(parts, "endpoint="+strconv.Quote(e.Endpoint))
	}
	if e.HTTP > 0 {
		parts = append(parts, "http="+strconv.Itoa(e.HTTP))
	}
	if e.Attempts > 0 {
		parts = append(parts, "attempts="+strconv.Itoa(e.Attempts))
	}
	if e.Message != "" {
		parts = append(parts, "message="+strconv.Quote(e.Message))
	}
	if e.cause != nil {
		parts = append(parts, "cause="+strconv.Quote(e.cause.Error()))
	}

	return strings.Join(parts, " ")
}

func (e *E) Unwrap() error { return e.cause }

// Retryable reports whether the failure category is worth another attempt.
func (e *E) Retryable() bool {
	if e == nil {
		return false
	}
	switch e.Code {
	case CodeRateLimited, CodeNetwork, CodeUpstream:
		return true
	default:
		return false
	}
}
