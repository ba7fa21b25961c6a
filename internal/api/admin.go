package api

import (
	"net/http"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/pitwall-io/pitwall/internal/refdata"
)

const maxJSONBodyBytes int64 = 1 << 20 // 1 MiB

func (s *Server) getHealth(w http.ResponseWriter, r *http.Request) {
	res := s.views.Resolver().Resolve(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"season":        s.views.Season(),
		"session_key":   res.SessionKey,
		"session_mode":  string(res.Mode),
		"cache":         s.views.Store().Stats(),
		"live_inflight": s.views.LiveInflight(),
	})
}

func (s *Server) listDemoSessions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"sessions": refdata.DemoSessions,
		"active":   s.views.Resolver().Override(),
	})
}

type demoSessionPayload struct {
	SessionKey string `json:"session_key"`
}

func (s *Server) setDemoSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	var payload demoSessionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	key := strings.TrimSpace(payload.SessionKey)
	if _, err := strconv.Atoi(key); err != nil {
		writeError(w, http.StatusBadRequest, "session_key must be a numeric session id")
		return
	}
	s.views.Resolver().SetOverride(key)
	writeJSON(w, http.StatusOK, map[string]any{"session_key": key, "mode": "override"})
}

func (s *Server) clearDemoSession(w http.ResponseWriter, _ *http.Request) {
	s.views.Resolver().ClearOverride()
	writeJSON(w, http.StatusOK, map[string]any{"mode": "auto"})
}

// clearCache drops cached views, optionally limited to a key prefix such as
// "live_" or "standings_drivers".
func (s *Server) clearCache(w http.ResponseWriter, r *http.Request) {
	prefix := strings.TrimSpace(r.URL.Query().Get("prefix"))
	dropped := s.views.Store().Clear(prefix)
	writeJSON(w, http.StatusOK, map[string]any{"dropped": dropped, "prefix": prefix})
}
