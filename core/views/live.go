package views

import (
	"context"
	"sort"

	"github.com/sourcegraph/conc/pool"

	"github.com/pitwall-io/pitwall/internal/adapters/openf1"
	"github.com/pitwall-io/pitwall/internal/refdata"
	"github.com/pitwall-io/pitwall/internal/session"
)

// SessionView describes the resolved session for consumers.
type SessionView struct {
	IsLive      bool   `json:"is_live"`
	IsDemo      bool   `json:"is_demo"`
	Mode        string `json:"mode"`
	SessionKey  string `json:"session_key"`
	SessionName string `json:"session_name"`
	SessionType string `json:"session_type"`
	CircuitName string `json:"circuit_short_name"`
	CountryName string `json:"country_name"`
	Location    string `json:"location"`
	DateStart   string `json:"date_start"`
	DateEnd     string `json:"date_end"`
	Year        int    `json:"year"`
}

// PositionRow is one car in the running order, joined from the position,
// stint, and pit feeds.
type PositionRow struct {
	refdata.Record
	Position    int    `json:"position"`
	Tyre        string `json:"tyre"`
	TyreColor   string `json:"tyre_color"`
	TyreAge     int    `json:"tyre_age"`
	StintNumber int    `json:"stint_number"`
	PitStops    int    `json:"pit_stops"`
	CurrentLap  int    `json:"current_lap,omitempty"`

	stintLapStart int
}

// PositionsView is the running order.
type PositionsView struct {
	IsDemo     bool          `json:"is_demo"`
	SessionKey string        `json:"session_key"`
	Positions  []PositionRow `json:"positions"`
	Count      int           `json:"count"`
}

// TimingRow is one driver's latest lap with sector state and gaps.
type TimingRow struct {
	refdata.Record
	LapNumber      int      `json:"lap_number"`
	LapDuration    *float64 `json:"lap_duration"`
	IsPersonalBest bool     `json:"is_personal_best"`
	Sector1        *float64 `json:"sector_1"`
	Sector2        *float64 `json:"sector_2"`
	Sector3        *float64 `json:"sector_3"`
	S1Status       string   `json:"s1_status"`
	S2Status       string   `json:"s2_status"`
	S3Status       string   `json:"s3_status"`
	IsBestLap      bool     `json:"is_best_lap"`
	GapToLeader    any      `json:"gap_to_leader"`
	Interval       any      `json:"interval"`
}

// SessionBest aggregates the session-wide best sector and lap times.
type SessionBest struct {
	Sector1 *float64 `json:"sector_1"`
	Sector2 *float64 `json:"sector_2"`
	Sector3 *float64 `json:"sector_3"`
	Lap     *float64 `json:"lap"`
}

// TimingView is the timing table.
type TimingView struct {
	IsDemo          bool        `json:"is_demo"`
	SessionKey      string      `json:"session_key"`
	Timing          []TimingRow `json:"timing"`
	SessionBest     SessionBest `json:"session_best"`
	TotalLapsInData int         `json:"total_laps_in_data"`
}

// WeatherReport is the latest trackside weather sample.
type WeatherReport struct {
	AirTemperature   float64 `json:"air_temperature"`
	TrackTemperature float64 `json:"track_temperature"`
	Humidity         float64 `json:"humidity"`
	Pressure         float64 `json:"pressure"`
	Rainfall         float64 `json:"rainfall"`
	IsRaining        bool    `json:"is_raining"`
	WindSpeed        float64 `json:"wind_speed"`
	WindDirection    float64 `json:"wind_direction"`
}

// WeatherView wraps the latest weather sample; nil when the feed is empty.
type WeatherView struct {
	IsDemo  bool           `json:"is_demo"`
	Weather *WeatherReport `json:"weather"`
}

// RaceControlMessage is one stewarding/flag message.
type RaceControlMessage struct {
	Date         string `json:"date"`
	Category     string `json:"category"`
	Flag         string `json:"flag"`
	Message      string `json:"message"`
	Scope        string `json:"scope"`
	DriverNumber int    `json:"driver_number,omitempty"`
	LapNumber    int    `json:"lap_number,omitempty"`
}

// RaceControlView carries the most recent stewarding messages.
type RaceControlView struct {
	IsDemo   bool                 `json:"is_demo"`
	Messages []RaceControlMessage `json:"messages"`
}

// RadioRow is one team-radio capture.
type RadioRow struct {
	refdata.Record
	Date         string `json:"date"`
	RecordingURL string `json:"recording_url"`
}

// RadioView carries the most recent radio captures.
type RadioView struct {
	IsDemo bool       `json:"is_demo"`
	Radio  []RadioRow `json:"radio"`
}

// PitStopRow is one completed pit stop.
type PitStopRow struct {
	refdata.Record
	Date        string   `json:"date"`
	LapNumber   int      `json:"lap_number"`
	PitDuration *float64 `json:"pit_duration"`
}

// PitStopsView carries every pit stop of the session.
type PitStopsView struct {
	IsDemo   bool         `json:"is_demo"`
	PitStops []PitStopRow `json:"pit_stops"`
}

// DashboardView bundles everything the live screen needs in one response.
type DashboardView struct {
	Session     SessionView     `json:"session"`
	Positions   PositionsView   `json:"positions"`
	Timing      TimingView      `json:"timing"`
	Weather     WeatherView     `json:"weather"`
	RaceControl RaceControlView `json:"race_control"`
}

const (
	raceControlTail = 25
	radioTail       = 15

	sectorStatusBest   = "best"
	sectorStatusPB     = "pb"
	sectorStatusNormal = "normal"
)

// LiveSession reports the resolved session.
func (s *Service) LiveSession(ctx context.Context) SessionView {
	res := s.resolver.Resolve(ctx)
	view := SessionView{
		IsLive:     res.IsLive,
		IsDemo:     res.IsDemo,
		Mode:       string(res.Mode),
		SessionKey: res.SessionKey,
	}
	if info := res.Session; info != nil {
		view.SessionName = info.SessionName
		view.SessionType = info.SessionType
		view.CircuitName = info.CircuitName
		view.CountryName = info.CountryName
		view.Location = info.Location
		view.DateStart = info.DateStart
		view.DateEnd = info.DateEnd
		view.Year = info.Year
	}
	return view
}

// LivePositions merges the position, stint, and pit feeds into the running
// order, one enriched row per driver.
func (s *Service) LivePositions(ctx context.Context) (PositionsView, error) {
	res := s.resolver.Resolve(ctx)
	return cached(s, "live_positions:"+res.SessionKey, res, func() (PositionsView, error) {
		var (
			positions []openf1.Position
			stints    []openf1.Stint
			pits      []openf1.Pit
			posErr    error
		)
		p := pool.New().WithMaxGoroutines(3)
		p.Go(func() { positions, posErr = s.live.Positions(ctx, res.SessionKey) })
		p.Go(func() {
			var err error
			if stints, err = s.live.Stints(ctx, res.SessionKey); err != nil {
				logSubFetch("live_positions", err)
			}
		})
		p.Go(func() {
			var err error
			if pits, err = s.live.Pits(ctx, res.SessionKey); err != nil {
				logSubFetch("live_positions", err)
			}
		})
		p.Wait()
		if posErr != nil {
			return PositionsView{}, posErr
		}
		view := buildPositions(s.season(res), res, positions, stints, pits)
		return view, nil
	})
}

func buildPositions(season int, res session.Resolution, positions []openf1.Position, stints []openf1.Stint, pits []openf1.Pit) PositionsView {
	latest := make(map[int]openf1.Position)
	for _, p := range positions {
		if p.DriverNumber == 0 {
			continue
		}
		if cur, ok := latest[p.DriverNumber]; !ok || p.Date > cur.Date {
			latest[p.DriverNumber] = p
		}
	}

	currentStint := make(map[int]openf1.Stint)
	for _, st := range stints {
		if st.DriverNumber == 0 {
			continue
		}
		if cur, ok := currentStint[st.DriverNumber]; !ok || st.StintNumber > cur.StintNumber {
			currentStint[st.DriverNumber] = st
		}
	}

	pitCounts := make(map[int]int)
	for _, p := range pits {
		if p.DriverNumber != 0 {
			pitCounts[p.DriverNumber]++
		}
	}

	rows := make([]PositionRow, 0, len(latest))
	for dn, pos := range latest {
		st := currentStint[dn]
		compound := st.Compound
		if compound == "" {
			compound = refdata.CompoundUnknown
		}
		tyreAge := 0
		// A closed stint's age is its length; an open stint's true age needs
		// the current lap, which only the dashboard pass knows.
		if st.LapStart > 0 && st.LapEnd > 0 {
			tyreAge = st.LapEnd - st.LapStart
		}
		stintNumber := st.StintNumber
		if stintNumber == 0 {
			stintNumber = 1
		}
		rows = append(rows, PositionRow{
			Record:        refdata.Enrich(season, dn),
			Position:      pos.Position,
			Tyre:          compound,
			TyreColor:     refdata.TyreColor(compound),
			TyreAge:       tyreAge,
			StintNumber:   stintNumber,
			PitStops:      pitCounts[dn],
			CurrentLap:    0,
			stintLapStart: st.LapStart,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Position < rows[j].Position })

	return PositionsView{
		IsDemo:     res.IsDemo,
		SessionKey: res.SessionKey,
		Positions:  rows,
		Count:      len(rows),
	}
}

// LiveTiming merges the lap and interval feeds into the timing table with
// personal/session-best sector flags.
func (s *Service) LiveTiming(ctx context.Context) (TimingView, error) {
	res := s.resolver.Resolve(ctx)
	return cached(s, "live_timing:"+res.SessionKey, res, func() (TimingView, error) {
		var (
			laps      []openf1.Lap
			intervals []openf1.Interval
			lapsErr   error
		)
		p := pool.New().WithMaxGoroutines(2)
		p.Go(func() { laps, lapsErr = s.live.Laps(ctx, res.SessionKey, 0) })
		p.Go(func() {
			var err error
			if intervals, err = s.live.Intervals(ctx, res.SessionKey); err != nil {
				logSubFetch("live_timing", err)
			}
		})
		p.Wait()
		if lapsErr != nil {
			return TimingView{}, lapsErr
		}
		return buildTiming(s.season(res), res, laps, intervals), nil
	})
}

func buildTiming(season int, res session.Resolution, laps []openf1.Lap, intervals []openf1.Interval) TimingView {
	latest := make(map[int]openf1.Lap)
	pbLap := make(map[int]float64)
	pbS1 := make(map[int]float64)
	pbS2 := make(map[int]float64)
	pbS3 := make(map[int]float64)
	var best SessionBest

	minTo := func(m map[int]float64, dn int, v *float64) {
		if v == nil || *v <= 0 {
			return
		}
		if cur, ok := m[dn]; !ok || *v < cur {
			m[dn] = *v
		}
	}
	sessionMin := func(cur **float64, v *float64) {
		if v == nil || *v <= 0 {
			return
		}
		if *cur == nil || *v < **cur {
			val := *v
			*cur = &val
		}
	}

	for _, lap := range laps {
		dn := lap.DriverNumber
		if dn == 0 {
			continue
		}
		if cur, ok := latest[dn]; !ok || lap.LapNumber > cur.LapNumber {
			latest[dn] = lap
		}
		minTo(pbLap, dn, lap.LapDuration)
		minTo(pbS1, dn, lap.DurationSector1)
		minTo(pbS2, dn, lap.DurationSector2)
		minTo(pbS3, dn, lap.DurationSector3)
		sessionMin(&best.Lap, lap.LapDuration)
		sessionMin(&best.Sector1, lap.DurationSector1)
		sessionMin(&best.Sector2, lap.DurationSector2)
		sessionMin(&best.Sector3, lap.DurationSector3)
	}

	latestInterval := make(map[int]openf1.Interval)
	for _, iv := range intervals {
		dn := iv.DriverNumber
		if dn == 0 {
			continue
		}
		if cur, ok := latestInterval[dn]; !ok || iv.Date > cur.Date {
			latestInterval[dn] = iv
		}
	}

	sectorStatus := func(v *float64, sessionBest *float64, personalBest float64, hasPB bool) string {
		if v == nil || *v <= 0 {
			return sectorStatusNormal
		}
		if sessionBest != nil && *v == *sessionBest {
			return sectorStatusBest
		}
		if hasPB && *v == personalBest {
			return sectorStatusPB
		}
		return sectorStatusNormal
	}

	rows := make([]TimingRow, 0, len(latest))
	for dn, lap := range latest {
		iv := latestInterval[dn]
		pb, hasPB := pbLap[dn]
		p1, has1 := pbS1[dn]
		p2, has2 := pbS2[dn]
		p3, has3 := pbS3[dn]
		rows = append(rows, TimingRow{
			Record:         refdata.Enrich(season, dn),
			LapNumber:      lap.LapNumber,
			LapDuration:    lap.LapDuration,
			IsPersonalBest: lap.LapDuration != nil && hasPB && *lap.LapDuration == pb,
			Sector1:        lap.DurationSector1,
			Sector2:        lap.DurationSector2,
			Sector3:        lap.DurationSector3,
			S1Status:       sectorStatus(lap.DurationSector1, best.Sector1, p1, has1),
			S2Status:       sectorStatus(lap.DurationSector2, best.Sector2, p2, has2),
			S3Status:       sectorStatus(lap.DurationSector3, best.Sector3, p3, has3),
			IsBestLap:      lap.LapDuration != nil && best.Lap != nil && *lap.LapDuration == *best.Lap,
			GapToLeader:    iv.GapToLeader,
			Interval:       iv.Interval,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Number < rows[j].Number })

	return TimingView{
		IsDemo:          res.IsDemo,
		SessionKey:      res.SessionKey,
		Timing:          rows,
		SessionBest:     best,
		TotalLapsInData: len(laps),
	}
}

// LiveWeather reports the most recent weather sample.
func (s *Service) LiveWeather(ctx context.Context) (WeatherView, error) {
	res := s.resolver.Resolve(ctx)
	return cached(s, "live_weather:"+res.SessionKey, res, func() (WeatherView, error) {
		samples, err := s.live.WeatherFeed(ctx, res.SessionKey)
		if err != nil {
			return WeatherView{}, err
		}
		view := WeatherView{IsDemo: res.IsDemo, Weather: nil}
		var latest *openf1.Weather
		for i := range samples {
			if latest == nil || samples[i].Date > latest.Date {
				latest = &samples[i]
			}
		}
		if latest != nil {
			view.Weather = &WeatherReport{
				AirTemperature:   latest.AirTemperature,
				TrackTemperature: latest.TrackTemperature,
				Humidity:         latest.Humidity,
				Pressure:         latest.Pressure,
				Rainfall:         latest.Rainfall,
				IsRaining:        latest.Rainfall > 0,
				WindSpeed:        latest.WindSpeed,
				WindDirection:    latest.WindDirection,
			}
		}
		return view, nil
	})
}

// LiveRaceControl reports the most recent stewarding messages.
func (s *Service) LiveRaceControl(ctx context.Context) (RaceControlView, error) {
	res := s.resolver.Resolve(ctx)
	return cached(s, "live_race_control:"+res.SessionKey, res, func() (RaceControlView, error) {
		msgs, err := s.live.RaceControlFeed(ctx, res.SessionKey)
		if err != nil {
			return RaceControlView{}, err
		}
		if len(msgs) > raceControlTail {
			msgs = msgs[len(msgs)-raceControlTail:]
		}
		out := make([]RaceControlMessage, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, RaceControlMessage{
				Date:         m.Date,
				Category:     m.Category,
				Flag:         m.Flag,
				Message:      m.Message,
				Scope:        m.Scope,
				DriverNumber: m.DriverNumber,
				LapNumber:    m.LapNumber,
			})
		}
		return RaceControlView{IsDemo: res.IsDemo, Messages: out}, nil
	})
}

// LiveRadio reports the most recent team-radio captures.
func (s *Service) LiveRadio(ctx context.Context) (RadioView, error) {
	res := s.resolver.Resolve(ctx)
	return cached(s, "live_radio:"+res.SessionKey, res, func() (RadioView, error) {
		msgs, err := s.live.TeamRadioFeed(ctx, res.SessionKey)
		if err != nil {
			return RadioView{}, err
		}
		if len(msgs) > radioTail {
			msgs = msgs[len(msgs)-radioTail:]
		}
		season := s.season(res)
		out := make([]RadioRow, 0, len(msgs))
		for _, m := range msgs {
			out = append(out, RadioRow{
				Record:       refdata.Enrich(season, m.DriverNumber),
				Date:         m.Date,
				RecordingURL: m.RecordingURL,
			})
		}
		return RadioView{IsDemo: res.IsDemo, Radio: out}, nil
	})
}

// LivePitStops reports every pit stop of the session.
func (s *Service) LivePitStops(ctx context.Context) (PitStopsView, error) {
	res := s.resolver.Resolve(ctx)
	return cached(s, "live_pit_stops:"+res.SessionKey, res, func() (PitStopsView, error) {
		pits, err := s.live.Pits(ctx, res.SessionKey)
		if err != nil {
			return PitStopsView{}, err
		}
		season := s.season(res)
		out := make([]PitStopRow, 0, len(pits))
		for _, p := range pits {
			if p.DriverNumber == 0 {
				continue
			}
			out = append(out, PitStopRow{
				Record:      refdata.Enrich(season, p.DriverNumber),
				Date:        p.Date,
				LapNumber:   p.LapNumber,
				PitDuration: p.PitDuration,
			})
		}
		return PitStopsView{IsDemo: res.IsDemo, PitStops: out}, nil
	})
}

// Dashboard fetches the live screen's five views concurrently, then
// cross-enriches: open-stint tyre ages are recomputed from each driver's
// current lap, which the stint feed alone cannot express.
func (s *Service) Dashboard(ctx context.Context) (DashboardView, error) {
	var (
		sessionView SessionView
		positions   PositionsView
		timing      TimingView
		weather     WeatherView
		raceControl RaceControlView
	)
	p := pool.New().WithMaxGoroutines(5)
	p.Go(func() { sessionView = s.LiveSession(ctx) })
	p.Go(func() {
		var err error
		if positions, err = s.LivePositions(ctx); err != nil {
			logSubFetch("dashboard", err)
		}
	})
	p.Go(func() {
		var err error
		if timing, err = s.LiveTiming(ctx); err != nil {
			logSubFetch("dashboard", err)
		}
	})
	p.Go(func() {
		var err error
		if weather, err = s.LiveWeather(ctx); err != nil {
			logSubFetch("dashboard", err)
		}
	})
	p.Go(func() {
		var err error
		if raceControl, err = s.LiveRaceControl(ctx); err != nil {
			logSubFetch("dashboard", err)
		}
	})
	p.Wait()

	// Work on copies so cached position rows stay untouched.
	rows := make([]PositionRow, len(positions.Positions))
	copy(rows, positions.Positions)
	timingByDriver := make(map[int]TimingRow, len(timing.Timing))
	for _, t := range timing.Timing {
		timingByDriver[t.Number] = t
	}
	for i := range rows {
		t, ok := timingByDriver[rows[i].Number]
		if !ok || t.LapNumber == 0 {
			continue
		}
		if rows[i].stintLapStart > 0 && rows[i].TyreAge == 0 {
			if age := t.LapNumber - rows[i].stintLapStart; age > 0 {
				rows[i].TyreAge = age
			}
		}
		rows[i].CurrentLap = t.LapNumber
	}
	positions.Positions = rows

	return DashboardView{
		Session:     sessionView,
		Positions:   positions,
		Timing:      timing,
		Weather:     weather,
		RaceControl: raceControl,
	}, nil
}

// season picks the roster season: the session's own year when known,
// otherwise the configured season.
func (s *Service) season(res session.Resolution) int {
	if res.Session != nil && res.Session.Year > 0 {
		return res.Session.Year
	}
	return s.settings.Season
}
