package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/pitwall-io/pitwall/internal/observability"
)

const requestIDHeader = "X-Request-ID"

// requestID tags every request with a correlation id, honouring one supplied
// by the caller, and echoes it on the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// accessLog emits one structured line per request.
func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(sw, r)
		observability.Log().Info("request",
			observability.Field{Key: "method", Value: r.Method},
			observability.Field{Key: "path", Value: r.URL.Path},
			observability.Field{Key: "status", Value: sw.status},
			observability.Field{Key: "duration_ms", Value: time.Since(start).Milliseconds()},
			observability.Field{Key: "request_id", Value: sw.Header().Get(requestIDHeader)})
	})
}

// recoverer converts handler panics into 500s so one bad request cannot take
// the process down.
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				observability.Log().Error("handler panic",
					observability.Field{Key: "path", Value: r.URL.Path},
					observability.Field{Key: "panic", Value: rec})
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
