package errs

import (
	"errors"
	"strings"
	"testing"
)

func TestErrorFormatsEnvelopeFields(t *testing.T) {
	cause := errors.New("connection reset")
	err := New("openf1", CodeNetwork,
		WithEndpoint("position"),
		WithHTTP(0),
		WithAttempts(3),
		WithMessage("fetch failed"),
		WithCause(cause),
	)

	msg := err.Error()
	for _, want := range []string{"provider=openf1", "code=network", `endpoint="position"`, "attempts=3", `message="fetch failed"`, `cause="connection reset"`} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected %q in error string, got %q", want, msg)
		}
	}
}

func TestUnwrapExposesCause(t *testing.T) {
	cause := errors.New("deadline exceeded")
	err := New("jolpica", CodeNetwork, WithCause(cause))
	if !errors.Is(err, cause) {
		t.Fatalf("expected errors.Is to match the wrapped cause")
	}
}

func TestNilEnvelopeIsSafe(t *testing.T) {
	var e *E
	if got := e.Error(); got != "<nil>" {
		t.Fatalf("expected <nil>, got %q", got)
	}
	if e.Retryable() {
		t.Fatalf("nil envelope must not be retryable")
	}
}

func TestRetryableCodes(t *testing.T) {
	cases := map[Code]bool{
		CodeRateLimited: true,
		CodeNetwork:     true,
		CodeUpstream:    true,
		CodeDecode:      false,
		CodeNotFound:    false,
		CodeInvalid:     false,
		CodeUnavailable: false,
	}
	for code, want := range cases {
		if got := New("openf1", code).Retryable(); got != want {
			t.Fatalf("code %s: expected retryable=%v, got %v", code, want, got)
		}
	}
}
