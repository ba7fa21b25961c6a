package transport

import (
	"testing"
	"time"
)

func TestHTTPReturnsSameClientAcrossCalls(t *testing.T) {
	c := NewClient(0, 0)
	first := c.HTTP()
	second := c.HTTP()
	if first != second {
		t.Fatalf("expected the shared client to be reused")
	}
	if first.Timeout != 15*time.Second {
		t.Fatalf("expected default request timeout, got %s", first.Timeout)
	}
}

func TestCloseThenHTTPRebuildsClient(t *testing.T) {
	c := NewClient(time.Second, 2*time.Second)
	first := c.HTTP()
	c.Close()
	second := c.HTTP()
	if first == second {
		t.Fatalf("expected a fresh client after Close")
	}
	if second.Timeout != 2*time.Second {
		t.Fatalf("expected configured timeout to survive rebuild, got %s", second.Timeout)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c := NewClient(0, 0)
	c.HTTP()
	c.Close()
	c.Close()
}
