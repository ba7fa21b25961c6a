package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
)

// sessionKeyParam reads the optional ?session_key= selector; empty means the
// resolver's current session.
func sessionKeyParam(r *http.Request) string {
	return strings.TrimSpace(r.URL.Query().Get("session_key"))
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.views.LiveSession(r.Context()))
}

func (s *Server) getPositions(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.LivePositions(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getTiming(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.LiveTiming(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getWeather(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.LiveWeather(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getRaceControl(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.LiveRaceControl(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getRadio(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.LiveRadio(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getPitStops(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.LivePitStops(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.Dashboard(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getSchedule(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.Schedule(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getNextRace(w http.ResponseWriter, r *http.Request) {
	next, err := s.views.NextRace(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	if next == nil {
		writeJSON(w, http.StatusOK, map[string]any{"next_race": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"next_race": next})
}

func (s *Server) getResults(w http.ResponseWriter, r *http.Request) {
	round := chi.URLParam(r, "round")
	if round != "last" {
		if n, err := strconv.Atoi(round); err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "round must be a positive number or \"last\"")
			return
		}
	}
	view, err := s.views.RaceResults(r.Context(), round)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getQualifying(w http.ResponseWriter, r *http.Request) {
	round := chi.URLParam(r, "round")
	if round != "last" {
		if n, err := strconv.Atoi(round); err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "round must be a positive number or \"last\"")
			return
		}
	}
	view, err := s.views.QualifyingResults(r.Context(), round)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getDriverStandings(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.DriverStandings(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getConstructorStandings(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.ConstructorStandings(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getDriverProfile(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		writeError(w, http.StatusBadRequest, "driver number must be a positive integer")
		return
	}
	view, err := s.views.DriverProfile(r.Context(), number)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getHome(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.Home(r.Context())
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getStrategy(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.Strategy(r.Context(), sessionKeyParam(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getPositionChart(w http.ResponseWriter, r *http.Request) {
	view, err := s.views.PositionChart(r.Context(), sessionKeyParam(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getLapTimes(w http.ResponseWriter, r *http.Request) {
	var drivers []int
	if raw := strings.TrimSpace(r.URL.Query().Get("drivers")); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n < 1 {
				writeError(w, http.StatusBadRequest, "drivers must be a comma-separated list of car numbers")
				return
			}
			drivers = append(drivers, n)
		}
	}
	view, err := s.views.LapTimes(r.Context(), sessionKeyParam(r), drivers)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getDegradation(w http.ResponseWriter, r *http.Request) {
	view, err := s.analytics.Degradation(r.Context(), sessionKeyParam(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getTrackMap(w http.ResponseWriter, r *http.Request) {
	view, err := s.analytics.TrackMap(r.Context(), sessionKeyParam(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (s *Server) getTrackOutline(w http.ResponseWriter, r *http.Request) {
	outline, err := s.analytics.Outline(r.Context(), sessionKeyParam(r))
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"outline": outline})
}
