package analytics

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/pitwall-io/pitwall/internal/adapters/openf1"
	"github.com/pitwall-io/pitwall/internal/observability"
	"github.com/pitwall-io/pitwall/internal/refdata"
	"github.com/pitwall-io/pitwall/internal/session"
)

// DegradationPoint is one fuel-corrected lap inside a stint.
type DegradationPoint struct {
	Lap           int     `json:"lap"`
	RawTime       float64 `json:"raw_time"`
	CorrectedTime float64 `json:"corrected_time"`
}

// TrendPoint is one end of the fitted trend line.
type TrendPoint struct {
	Lap  int     `json:"lap"`
	Time float64 `json:"time"`
}

// StintDegradation is the regression result for one stint. Slope is nil
// when the stint had fewer than three usable points.
type StintDegradation struct {
	StintNumber int                `json:"stint_number"`
	Compound    string             `json:"compound"`
	TyreColor   string             `json:"tyre_color"`
	LapStart    int                `json:"lap_start"`
	LapEnd      int                `json:"lap_end"`
	Points      []DegradationPoint `json:"points"`
	Slope       *float64           `json:"deg_per_lap,omitempty"`
	Intercept   *float64           `json:"intercept,omitempty"`
	TrendLine   []TrendPoint       `json:"trend_line,omitempty"`
}

// DriverDegradation groups a driver's stint regressions.
type DriverDegradation struct {
	refdata.Record
	Stints []StintDegradation `json:"stints"`
}

// DegradationView is the whole-field tyre-degradation analysis.
type DegradationView struct {
	IsDemo     bool                `json:"is_demo"`
	SessionKey string              `json:"session_key"`
	Drivers    []DriverDegradation `json:"drivers"`
	TotalLaps  int                 `json:"total_laps"`
}

// Degradation fits a per-stint lap-time trend for every driver: outlier
// laps beyond the configured share of the stint median are dropped, times
// are fuel-corrected, and an OLS slope is reported as seconds lost per lap.
func (a *Analyzer) Degradation(ctx context.Context, sessionKey string) (DegradationView, error) {
	res := a.resolve(ctx, sessionKey)
	key := "degradation:" + res.SessionKey
	if hit, ok := a.store.GetWithTTL(key, a.cacheTTL("degradation", res)); ok {
		if view, ok := hit.(DegradationView); ok {
			return view, nil
		}
	}

	var (
		laps    []openf1.Lap
		stints  []openf1.Stint
		lapsErr error
	)
	p := pool.New().WithMaxGoroutines(2)
	p.Go(func() { laps, lapsErr = a.live.Laps(ctx, res.SessionKey, 0) })
	p.Go(func() {
		var err error
		if stints, err = a.live.Stints(ctx, res.SessionKey); err != nil {
			observability.Log().Warn("degradation stint fetch degraded",
				observability.Field{Key: "error", Value: err.Error()})
		}
	})
	p.Wait()
	if lapsErr != nil {
		return DegradationView{}, lapsErr
	}

	view := buildDegradation(a.season(res), res, laps, stints,
		a.settings.Analytics.FuelCorrectionPerLap, a.settings.Analytics.OutlierThreshold)
	a.store.Set(key, view)
	return view, nil
}

func buildDegradation(season int, res session.Resolution, laps []openf1.Lap, stints []openf1.Stint, fuelPerLap, outlierThreshold float64) DegradationView {
	view := DegradationView{IsDemo: res.IsDemo, SessionKey: res.SessionKey, Drivers: nil, TotalLaps: 0}

	lapsByDriver := make(map[int][]openf1.Lap)
	for _, lap := range laps {
		if lap.DriverNumber == 0 {
			continue
		}
		lapsByDriver[lap.DriverNumber] = append(lapsByDriver[lap.DriverNumber], lap)
		if lap.LapNumber > view.TotalLaps {
			view.TotalLaps = lap.LapNumber
		}
	}

	stintsByDriver := make(map[int][]openf1.Stint)
	for _, st := range stints {
		if st.DriverNumber != 0 {
			stintsByDriver[st.DriverNumber] = append(stintsByDriver[st.DriverNumber], st)
		}
	}

	for dn, driverStints := range stintsByDriver {
		driverLaps := lapsByDriver[dn]
		if len(driverLaps) == 0 {
			continue
		}
		sort.Slice(driverStints, func(i, j int) bool { return driverStints[i].StintNumber < driverStints[j].StintNumber })

		var rows []StintDegradation
		for _, st := range driverStints {
			row := analyzeStint(st, driverLaps, view.TotalLaps, fuelPerLap, outlierThreshold)
			if len(row.Points) > 0 {
				rows = append(rows, row)
			}
		}
		if len(rows) == 0 {
			continue
		}
		view.Drivers = append(view.Drivers, DriverDegradation{
			Record: refdata.Enrich(season, dn),
			Stints: rows,
		})
	}
	sort.Slice(view.Drivers, func(i, j int) bool { return view.Drivers[i].Number < view.Drivers[j].Number })
	return view
}

func analyzeStint(st openf1.Stint, driverLaps []openf1.Lap, totalLaps int, fuelPerLap, outlierThreshold float64) StintDegradation {
	compound := st.Compound
	if compound == "" {
		compound = refdata.CompoundUnknown
	}
	row := StintDegradation{
		StintNumber: st.StintNumber,
		Compound:    compound,
		TyreColor:   refdata.TyreColor(compound),
		LapStart:    st.LapStart,
		LapEnd:      st.LapEnd,
		Points:      nil,
		Slope:       nil,
		Intercept:   nil,
		TrendLine:   nil,
	}

	end := st.LapEnd
	if end == 0 {
		end = totalLaps
	}

	type timedLap struct {
		number   int
		duration float64
	}
	var usable []timedLap
	for _, lap := range driverLaps {
		if lap.LapNumber < st.LapStart || lap.LapNumber > end {
			continue
		}
		if lap.IsPitOutLap || lap.LapDuration == nil || *lap.LapDuration <= 0 {
			continue
		}
		usable = append(usable, timedLap{number: lap.LapNumber, duration: *lap.LapDuration})
	}
	if len(usable) == 0 {
		return row
	}
	sort.Slice(usable, func(i, j int) bool { return usable[i].number < usable[j].number })

	durations := make([]float64, len(usable))
	for i, lap := range usable {
		durations[i] = lap.duration
	}
	ceiling := Median(durations) * outlierThreshold
	clean := usable[:0:0]
	for _, lap := range usable {
		if lap.duration <= ceiling {
			clean = append(clean, lap)
		}
	}
	// Too aggressive a filter (wet sessions, safety cars) keeps nothing
	// useful; fall back to the unfiltered stint.
	if len(clean) < 2 {
		clean = usable
	}

	xs := make([]float64, len(clean))
	ys := make([]float64, len(clean))
	for i, lap := range clean {
		corrected := lap.duration - fuelPerLap*float64(totalLaps-lap.number)
		row.Points = append(row.Points, DegradationPoint{
			Lap:           lap.number,
			RawTime:       lap.duration,
			CorrectedTime: corrected,
		})
		xs[i] = float64(lap.number)
		ys[i] = corrected
	}

	slope, intercept, ok := OLS(xs, ys)
	if !ok {
		return row
	}
	row.Slope = &slope
	row.Intercept = &intercept
	first := clean[0].number
	last := clean[len(clean)-1].number
	row.TrendLine = []TrendPoint{
		{Lap: first, Time: intercept + slope*float64(first)},
		{Lap: last, Time: intercept + slope*float64(last)},
	}
	return row
}

// resolve mirrors the view layer's session handling: "latest" goes through
// the resolver, explicit keys are demo-tagged pass-throughs.
func (a *Analyzer) resolve(ctx context.Context, sessionKey string) session.Resolution {
	if sessionKey == "" || sessionKey == openf1.SessionLatest {
		return a.resolver.Resolve(ctx)
	}
	res := a.resolver.Resolve(ctx)
	if res.SessionKey == sessionKey {
		return res
	}
	return session.Resolution{
		SessionKey: sessionKey,
		Mode:       session.ModeOverride,
		IsLive:     false,
		IsDemo:     true,
		Session:    nil,
	}
}

func (a *Analyzer) season(res session.Resolution) int {
	if res.Session != nil && res.Session.Year > 0 {
		return res.Session.Year
	}
	return a.settings.Season
}
