// Package api exposes the aggregated views over HTTP: a read-only surface
// for the live and historical views plus a small administrative surface for
// session overrides and cache control. Handlers forward core outputs
// verbatim; shaping stays in the core packages.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pitwall-io/pitwall/core/analytics"
	"github.com/pitwall-io/pitwall/core/views"
)

// Server binds the HTTP surface to the core layers.
type Server struct {
	views     *views.Service
	analytics *analytics.Analyzer
}

// NewServer wires the HTTP surface.
func NewServer(svc *views.Service, analyzer *analytics.Analyzer) *Server {
	return &Server{views: svc, analytics: analyzer}
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.getHealth)

		// live views
		r.Get("/session", s.getSession)
		r.Get("/positions", s.getPositions)
		r.Get("/timing", s.getTiming)
		r.Get("/weather", s.getWeather)
		r.Get("/race-control", s.getRaceControl)
		r.Get("/radio", s.getRadio)
		r.Get("/pit-stops", s.getPitStops)
		r.Get("/dashboard", s.getDashboard)

		// historical views
		r.Get("/schedule", s.getSchedule)
		r.Get("/next-race", s.getNextRace)
		r.Get("/results/{round}", s.getResults)
		r.Get("/qualifying/{round}", s.getQualifying)
		r.Get("/standings/drivers", s.getDriverStandings)
		r.Get("/standings/constructors", s.getConstructorStandings)
		r.Get("/driver/{number}", s.getDriverProfile)
		r.Get("/home", s.getHome)

		// race analysis
		r.Get("/strategy", s.getStrategy)
		r.Get("/position-chart", s.getPositionChart)
		r.Get("/laptimes", s.getLapTimes)
		r.Get("/degradation", s.getDegradation)
		r.Get("/track-map", s.getTrackMap)
		r.Get("/track-outline", s.getTrackOutline)

		// administrative surface
		r.Get("/demo/sessions", s.listDemoSessions)
		r.Post("/demo/session", s.setDemoSession)
		r.Delete("/demo/session", s.clearDemoSession)
		r.Post("/cache/clear", s.clearCache)
	})

	return r
}
