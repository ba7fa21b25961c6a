package views

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/pitwall-io/pitwall/internal/adapters/openf1"
	"github.com/pitwall-io/pitwall/internal/refdata"
	"github.com/pitwall-io/pitwall/internal/session"
)

// StintSpan is one continuous run on a tyre set. LapEnd zero means the
// stint is still open.
type StintSpan struct {
	Compound       string `json:"compound"`
	LapStart       int    `json:"lap_start"`
	LapEnd         int    `json:"lap_end,omitempty"`
	StintNumber    int    `json:"stint_number"`
	TyreAgeAtStart int    `json:"tyre_age_at_start"`
}

// PitVisit is one pit-lane visit for the strategy chart.
type PitVisit struct {
	LapNumber   int      `json:"lap_number"`
	PitDuration *float64 `json:"pit_duration"`
}

// StrategyRow is one driver's tyre strategy.
type StrategyRow struct {
	refdata.Record
	Stints         []StintSpan `json:"stints"`
	PitStops       []PitVisit  `json:"pit_stops"`
	FinishPosition int         `json:"finish_position"`
}

// StrategyView is the whole-field tyre strategy.
type StrategyView struct {
	IsDemo     bool          `json:"is_demo"`
	SessionKey string        `json:"session_key"`
	Drivers    []StrategyRow `json:"drivers"`
	TotalLaps  int           `json:"total_laps"`
}

// LapPosition is one sample of a driver's race position.
type LapPosition struct {
	Lap      int `json:"lap"`
	Position int `json:"position"`
}

// PositionChartRow is one driver's lap-by-lap position trace.
type PositionChartRow struct {
	refdata.Record
	Positions []LapPosition `json:"positions"`
}

// PositionChartView is the position-change chart's data.
type PositionChartView struct {
	IsDemo     bool               `json:"is_demo"`
	SessionKey string             `json:"session_key"`
	Drivers    []PositionChartRow `json:"drivers"`
	TotalLaps  int                `json:"total_laps"`
}

// LapSample is one lap in the lap-time comparison.
type LapSample struct {
	Lap      int      `json:"lap"`
	Time     *float64 `json:"time"`
	S1       *float64 `json:"s1"`
	S2       *float64 `json:"s2"`
	S3       *float64 `json:"s3"`
	Compound string   `json:"compound"`
	IsPitOut bool     `json:"is_pit_out"`
	STSpeed  *float64 `json:"st_speed"`
}

// LapTimesRow is one driver's lap history.
type LapTimesRow struct {
	refdata.Record
	Laps         []LapSample `json:"laps"`
	PersonalBest *float64    `json:"personal_best"`
}

// LapTimesView is the lap-time comparison data.
type LapTimesView struct {
	IsDemo      bool          `json:"is_demo"`
	SessionKey  string        `json:"session_key"`
	Drivers     []LapTimesRow `json:"drivers"`
	TotalLaps   int           `json:"total_laps"`
	SessionBest *float64      `json:"session_best"`
}

// Strategy returns stints, pit stops, and finish order for the whole field.
func (s *Service) Strategy(ctx context.Context, sessionKey string) (StrategyView, error) {
	res := s.resolveKey(ctx, sessionKey)
	return cached(s, "strategy:"+res.SessionKey, res, func() (StrategyView, error) {
		var (
			stints    []openf1.Stint
			pits      []openf1.Pit
			positions []openf1.Position
			stintsErr error
		)
		p := pool.New().WithMaxGoroutines(3)
		p.Go(func() { stints, stintsErr = s.live.Stints(ctx, res.SessionKey) })
		p.Go(func() {
			var err error
			if pits, err = s.live.Pits(ctx, res.SessionKey); err != nil {
				logSubFetch("strategy", err)
			}
		})
		p.Go(func() {
			var err error
			if positions, err = s.live.Positions(ctx, res.SessionKey); err != nil {
				logSubFetch("strategy", err)
			}
		})
		p.Wait()
		if stintsErr != nil {
			return StrategyView{}, stintsErr
		}

		byDriver := make(map[int][]StintSpan)
		totalLaps := 0
		for _, st := range stints {
			if st.DriverNumber == 0 {
				continue
			}
			compound := st.Compound
			if compound == "" {
				compound = refdata.CompoundUnknown
			}
			byDriver[st.DriverNumber] = append(byDriver[st.DriverNumber], StintSpan{
				Compound:       compound,
				LapStart:       st.LapStart,
				LapEnd:         st.LapEnd,
				StintNumber:    st.StintNumber,
				TyreAgeAtStart: st.TyreAgeAtStart,
			})
			reach := st.LapEnd
			if reach == 0 {
				reach = st.LapStart
			}
			if reach > totalLaps {
				totalLaps = reach
			}
		}

		pitsByDriver := make(map[int][]PitVisit)
		for _, pit := range pits {
			if pit.DriverNumber == 0 {
				continue
			}
			pitsByDriver[pit.DriverNumber] = append(pitsByDriver[pit.DriverNumber], PitVisit{
				LapNumber:   pit.LapNumber,
				PitDuration: pit.PitDuration,
			})
		}

		// Last reported position per driver decides the finish order.
		finish := make(map[int]int)
		lastDate := make(map[int]string)
		for _, pos := range positions {
			if pos.DriverNumber == 0 {
				continue
			}
			if prev, ok := lastDate[pos.DriverNumber]; !ok || pos.Date > prev {
				lastDate[pos.DriverNumber] = pos.Date
				finish[pos.DriverNumber] = pos.Position
			}
		}

		season := s.season(res)
		rows := make([]StrategyRow, 0, len(byDriver))
		for dn, spans := range byDriver {
			sort.Slice(spans, func(i, j int) bool { return spans[i].StintNumber < spans[j].StintNumber })
			position := finish[dn]
			if position == 0 {
				position = 99
			}
			rows = append(rows, StrategyRow{
				Record:         refdata.Enrich(season, dn),
				Stints:         spans,
				PitStops:       pitsByDriver[dn],
				FinishPosition: position,
			})
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].FinishPosition < rows[j].FinishPosition })

		return StrategyView{
			IsDemo:     res.IsDemo,
			SessionKey: res.SessionKey,
			Drivers:    rows,
			TotalLaps:  totalLaps,
		}, nil
	})
}

// PositionChart maps position samples onto lap numbers: for each of a
// driver's laps, the latest position record dated at or before that lap's
// start is the position they held on that lap.
func (s *Service) PositionChart(ctx context.Context, sessionKey string) (PositionChartView, error) {
	res := s.resolveKey(ctx, sessionKey)
	return cached(s, "position_chart:"+res.SessionKey, res, func() (PositionChartView, error) {
		var (
			laps      []openf1.Lap
			positions []openf1.Position
			lapsErr   error
		)
		p := pool.New().WithMaxGoroutines(2)
		p.Go(func() { laps, lapsErr = s.live.Laps(ctx, res.SessionKey, 0) })
		p.Go(func() {
			var err error
			if positions, err = s.live.Positions(ctx, res.SessionKey); err != nil {
				logSubFetch("position_chart", err)
			}
		})
		p.Wait()
		if lapsErr != nil {
			return PositionChartView{}, lapsErr
		}
		return s.buildPositionChart(res.SessionKey, s.season(res), res.IsDemo, laps, positions), nil
	})
}

func (s *Service) buildPositionChart(sessionKey string, season int, isDemo bool, laps []openf1.Lap, positions []openf1.Position) PositionChartView {
	view := PositionChartView{IsDemo: isDemo, SessionKey: sessionKey, Drivers: nil, TotalLaps: 0}

	type lapMark struct {
		number int
		start  string
	}
	lapsByDriver := make(map[int][]lapMark)
	for _, lap := range laps {
		if lap.DriverNumber == 0 || lap.LapNumber == 0 || lap.DateStart == "" {
			continue
		}
		lapsByDriver[lap.DriverNumber] = append(lapsByDriver[lap.DriverNumber], lapMark{number: lap.LapNumber, start: lap.DateStart})
		if lap.LapNumber > view.TotalLaps {
			view.TotalLaps = lap.LapNumber
		}
	}

	posByDriver := make(map[int][]openf1.Position)
	for _, pos := range positions {
		if pos.DriverNumber != 0 {
			posByDriver[pos.DriverNumber] = append(posByDriver[pos.DriverNumber], pos)
		}
	}

	for dn, marks := range lapsByDriver {
		samples := posByDriver[dn]
		if len(samples) == 0 {
			continue
		}
		sort.Slice(samples, func(i, j int) bool { return samples[i].Date < samples[j].Date })
		sort.Slice(marks, func(i, j int) bool { return marks[i].number < marks[j].number })

		trace := make([]LapPosition, 0, len(marks))
		idx := 0
		for _, mark := range marks {
			for idx < len(samples)-1 && samples[idx+1].Date <= mark.start {
				idx++
			}
			trace = append(trace, LapPosition{Lap: mark.number, Position: samples[idx].Position})
		}
		view.Drivers = append(view.Drivers, PositionChartRow{
			Record:    refdata.Enrich(season, dn),
			Positions: trace,
		})
	}
	sort.Slice(view.Drivers, func(i, j int) bool { return view.Drivers[i].Number < view.Drivers[j].Number })
	return view
}

// LapTimes returns lap-by-lap times with compound tagging for comparison
// charts. A non-empty driverNumbers filter bypasses the cache.
func (s *Service) LapTimes(ctx context.Context, sessionKey string, driverNumbers []int) (LapTimesView, error) {
	res := s.resolveKey(ctx, sessionKey)
	if len(driverNumbers) == 0 {
		return cached(s, "laptimes:"+res.SessionKey, res, func() (LapTimesView, error) {
			return s.buildLapTimes(ctx, res.SessionKey, s.season(res), res.IsDemo, nil)
		})
	}
	return s.buildLapTimes(ctx, res.SessionKey, s.season(res), res.IsDemo, driverNumbers)
}

func (s *Service) buildLapTimes(ctx context.Context, sessionKey string, season int, isDemo bool, filter []int) (LapTimesView, error) {
	var (
		laps    []openf1.Lap
		stints  []openf1.Stint
		lapsErr error
	)
	p := pool.New().WithMaxGoroutines(2)
	p.Go(func() { laps, lapsErr = s.live.Laps(ctx, sessionKey, 0) })
	p.Go(func() {
		var err error
		if stints, err = s.live.Stints(ctx, sessionKey); err != nil {
			logSubFetch("laptimes", err)
		}
	})
	p.Wait()
	if lapsErr != nil {
		return LapTimesView{}, lapsErr
	}

	wanted := make(map[int]bool, len(filter))
	for _, dn := range filter {
		wanted[dn] = true
	}

	stintsByDriver := make(map[int][]openf1.Stint)
	for _, st := range stints {
		if st.DriverNumber != 0 {
			stintsByDriver[st.DriverNumber] = append(stintsByDriver[st.DriverNumber], st)
		}
	}
	compoundAt := func(dn, lapNumber int) string {
		for _, st := range stintsByDriver[dn] {
			end := st.LapEnd
			if end == 0 {
				end = 999
			}
			if st.LapStart <= lapNumber && lapNumber <= end {
				if st.Compound != "" {
					return st.Compound
				}
				break
			}
		}
		return refdata.CompoundUnknown
	}

	view := LapTimesView{IsDemo: isDemo, SessionKey: sessionKey, Drivers: nil, TotalLaps: 0, SessionBest: nil}
	byDriver := make(map[int][]LapSample)
	for _, lap := range laps {
		dn := lap.DriverNumber
		if dn == 0 {
			continue
		}
		if len(wanted) > 0 && !wanted[dn] {
			continue
		}
		if lap.LapNumber > view.TotalLaps {
			view.TotalLaps = lap.LapNumber
		}
		if d := lap.LapDuration; d != nil && *d > 0 {
			if view.SessionBest == nil || *d < *view.SessionBest {
				v := *d
				view.SessionBest = &v
			}
		}
		byDriver[dn] = append(byDriver[dn], LapSample{
			Lap:      lap.LapNumber,
			Time:     lap.LapDuration,
			S1:       lap.DurationSector1,
			S2:       lap.DurationSector2,
			S3:       lap.DurationSector3,
			Compound: compoundAt(dn, lap.LapNumber),
			IsPitOut: lap.IsPitOutLap,
			STSpeed:  lap.STSpeed,
		})
	}

	for dn, samples := range byDriver {
		sort.Slice(samples, func(i, j int) bool { return samples[i].Lap < samples[j].Lap })
		var personalBest *float64
		for _, sample := range samples {
			if sample.Time != nil && *sample.Time > 0 {
				if personalBest == nil || *sample.Time < *personalBest {
					v := *sample.Time
					personalBest = &v
				}
			}
		}
		view.Drivers = append(view.Drivers, LapTimesRow{
			Record:       refdata.Enrich(season, dn),
			Laps:         samples,
			PersonalBest: personalBest,
		})
	}
	sort.Slice(view.Drivers, func(i, j int) bool { return view.Drivers[i].Number < view.Drivers[j].Number })
	return view, nil
}

// resolveKey resolves "latest"/"" through the session resolver and passes
// explicit historical keys straight through with demo semantics.
func (s *Service) resolveKey(ctx context.Context, sessionKey string) session.Resolution {
	if sessionKey == "" || sessionKey == openf1.SessionLatest {
		return s.resolver.Resolve(ctx)
	}
	res := s.resolver.Resolve(ctx)
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
