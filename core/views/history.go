package views

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sourcegraph/conc/pool"

	"github.com/pitwall-io/pitwall/errs"
	"github.com/pitwall-io/pitwall/internal/adapters/jolpica"
	"github.com/pitwall-io/pitwall/internal/refdata"
	"github.com/pitwall-io/pitwall/internal/session"
)

// SessionTime is one supporting session's schedule slot.
type SessionTime struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// ScheduleEntry is one race weekend on the calendar.
type ScheduleEntry struct {
	Round        int                    `json:"round"`
	Name         string                 `json:"name"`
	Circuit      string                 `json:"circuit"`
	CircuitID    string                 `json:"circuit_id"`
	CircuitImage string                 `json:"circuit_image"`
	Country      string                 `json:"country"`
	Locality     string                 `json:"locality"`
	Lat          float64                `json:"lat"`
	Lng          float64                `json:"lng"`
	Date         string                 `json:"date"`
	Time         string                 `json:"time"`
	Sessions     map[string]SessionTime `json:"sessions"`
	RaceDatetime string                 `json:"race_datetime,omitempty"`
	IsPast       bool                   `json:"is_past"`
	IsNext       bool                   `json:"is_next"`
}

// ScheduleView is the season calendar.
type ScheduleView struct {
	Season     string          `json:"season"`
	Races      []ScheduleEntry `json:"races"`
	TotalRaces int             `json:"total_races"`
}

// ResultRow is one classified finisher.
type ResultRow struct {
	refdata.Record
	Position       int     `json:"position"`
	Grid           int     `json:"grid"`
	Laps           int     `json:"laps"`
	Status         string  `json:"status"`
	IsDNF          bool    `json:"is_dnf"`
	Points         float64 `json:"points"`
	Time           string  `json:"time"`
	Gap            string  `json:"gap"`
	FastestLapTime string  `json:"fastest_lap_time"`
	FastestLapRank int     `json:"fastest_lap_rank"`
	FastestLapLap  int     `json:"fastest_lap_lap"`
}

// RaceResultsView is one race's classification.
type RaceResultsView struct {
	Round            int         `json:"round"`
	Name             string      `json:"name"`
	Circuit          string      `json:"circuit"`
	Country          string      `json:"country"`
	Date             string      `json:"date"`
	Results          []ResultRow `json:"results"`
	DNFCount         int         `json:"dnf_count"`
	FastestLapDriver int         `json:"fastest_lap_driver,omitempty"`
	TotalLaps        int         `json:"total_laps"`
}

// QualifyingRow is one row of a qualifying classification.
type QualifyingRow struct {
	refdata.Record
	Position int    `json:"position"`
	Q1       string `json:"q1"`
	Q2       string `json:"q2"`
	Q3       string `json:"q3"`
}

// QualifyingView is one round's qualifying classification.
type QualifyingView struct {
	Round   int             `json:"round"`
	Name    string          `json:"name"`
	Date    string          `json:"date"`
	Results []QualifyingRow `json:"results"`
}

// DriverStandingRow is one driver's championship row with gap arithmetic.
type DriverStandingRow struct {
	refdata.Record
	Position    int     `json:"position"`
	Points      float64 `json:"points"`
	GapToLeader float64 `json:"gap_to_leader"`
	GapToPrev   float64 `json:"gap_to_prev"`
	Wins        int     `json:"wins"`
	Nationality string  `json:"nationality,omitempty"`
	ErgastID    string  `json:"ergast_id,omitempty"`
}

// DriverStandingsView is the driver championship table.
type DriverStandingsView struct {
	Standings []DriverStandingRow `json:"standings"`
	Season    string              `json:"season"`
	Round     string              `json:"round"`
	Fallback  bool                `json:"fallback,omitempty"`
}

// ConstructorStandingRow is one team's championship row.
type ConstructorStandingRow struct {
	Position    int              `json:"position"`
	Team        string           `json:"team"`
	TeamColor   string           `json:"team_color"`
	Points      float64          `json:"points"`
	GapToLeader float64          `json:"gap_to_leader"`
	Wins        int              `json:"wins"`
	Nationality string           `json:"nationality,omitempty"`
	Drivers     []refdata.Record `json:"drivers"`
}

// ConstructorStandingsView is the constructor championship table.
type ConstructorStandingsView struct {
	Standings []ConstructorStandingRow `json:"standings"`
	Season    string                   `json:"season"`
	Fallback  bool                     `json:"fallback,omitempty"`
}

// SeasonResult is one race in a driver's season.
type SeasonResult struct {
	Round    int     `json:"round"`
	Race     string  `json:"race"`
	Position int     `json:"position"`
	Grid     int     `json:"grid"`
	Points   float64 `json:"points"`
	Status   string  `json:"status"`
}

// SeasonStats aggregates a driver's season.
type SeasonStats struct {
	Races      int            `json:"races"`
	Points     float64        `json:"points"`
	Wins       int            `json:"wins"`
	Podiums    int            `json:"podiums"`
	DNFs       int            `json:"dnfs"`
	BestFinish int            `json:"best_finish,omitempty"`
	Results    []SeasonResult `json:"results"`
}

// DriverProfileView is a driver's full profile with season stats.
type DriverProfileView struct {
	refdata.Record
	SeasonStats *SeasonStats    `json:"season_stats,omitempty"`
	Teammate    *refdata.Record `json:"teammate,omitempty"`
}

// HomeView bundles the home screen's heavy load.
type HomeView struct {
	NextRace      *ScheduleEntry      `json:"next_race"`
	LastRace      RaceResultsView     `json:"last_race"`
	StandingsTop3 []DriverStandingRow `json:"standings_top3"`
}

// nextRaceWindow keeps a race "next" for a while after lights out, since it
// may still be running.
const nextRaceWindow = 6 * time.Hour

var finishedStatuses = map[string]struct{}{
	"Finished": {},
	"+1 Lap":   {},
	"+2 Laps":  {},
	"+3 Laps":  {},
}

func errDriverNotFound(number int) error {
	return errs.New("core", errs.CodeNotFound,
		errs.WithMessage(fmt.Sprintf("driver %d not in any known roster", number)))
}

func isDNF(status string) bool {
	_, ok := finishedStatuses[status]
	return !ok
}

func atoi(v string) int {
	n, _ := strconv.Atoi(v)
	return n
}

func points(v string) float64 {
	d, err := decimal.NewFromString(v)
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

// gap computes a points difference rounded to one decimal, the resolution
// championship tables are displayed at.
func gap(a, b string) float64 {
	da, errA := decimal.NewFromString(a)
	db, errB := decimal.NewFromString(b)
	if errA != nil || errB != nil {
		return 0
	}
	return da.Sub(db).Round(1).InexactFloat64()
}

// Schedule returns the season calendar with per-session times, past/next
// markers, and circuit enrichment.
func (s *Service) Schedule(ctx context.Context) (ScheduleView, error) {
	return cached(s, "schedule:"+strconv.Itoa(s.settings.Season), session.Resolution{}, func() (ScheduleView, error) {
		table, err := s.history.Schedule(ctx, s.settings.Season)
		if err != nil {
			return ScheduleView{}, err
		}
		return s.buildSchedule(table), nil
	})
}

func (s *Service) buildSchedule(table *jolpica.RaceTable) ScheduleView {
	view := ScheduleView{Season: strconv.Itoa(s.settings.Season), Races: nil, TotalRaces: 0}
	if table == nil {
		return view
	}
	if table.Season != "" {
		view.Season = table.Season
	}
	now := s.clock().UTC()

	for _, race := range table.Races {
		entry := ScheduleEntry{
			Round:        atoi(race.Round),
			Name:         race.RaceName,
			Circuit:      race.Circuit.CircuitName,
			CircuitID:    race.Circuit.CircuitID,
			CircuitImage: refdata.CircuitImage(race.Circuit.CircuitID),
			Country:      race.Circuit.Location.Country,
			Locality:     race.Circuit.Location.Locality,
			Lat:          parseCoord(race.Circuit.Location.Lat),
			Lng:          parseCoord(race.Circuit.Location.Long),
			Date:         race.Date,
			Time:         race.Time,
			Sessions:     map[string]SessionTime{},
			RaceDatetime: "",
			IsPast:       false,
			IsNext:       false,
		}

		supporting := map[string]*jolpica.RaceSession{
			"fp1":               race.FirstPractice,
			"fp2":               race.SecondPractice,
			"fp3":               race.ThirdPractice,
			"qualifying":        race.Qualifying,
			"sprint":            race.Sprint,
			"sprint_qualifying": race.SprintQualifying,
		}
		for name, sess := range supporting {
			if sess != nil {
				entry.Sessions[name] = SessionTime{Date: sess.Date, Time: sess.Time}
			}
		}
		entry.Sessions["race"] = SessionTime{Date: race.Date, Time: race.Time}

		if dt, ok := raceStart(race.Date, race.Time); ok {
			entry.RaceDatetime = dt.Format(time.RFC3339)
			entry.IsPast = dt.Before(now)
		}
		view.Races = append(view.Races, entry)
	}

	for i := range view.Races {
		if !view.Races[i].IsPast {
			view.Races[i].IsNext = true
			break
		}
	}
	view.TotalRaces = len(view.Races)
	return view
}

func parseCoord(v string) float64 {
	f, _ := strconv.ParseFloat(v, 64)
	return f
}

func raceStart(date, clockTime string) (time.Time, bool) {
	if date == "" {
		return time.Time{}, false
	}
	if clockTime == "" {
		clockTime = "14:00:00Z"
	}
	dt, err := time.Parse(time.RFC3339, date+"T"+clockTime)
	if err != nil {
		return time.Time{}, false
	}
	return dt.UTC(), true
}

// NextRace returns the next upcoming race, keeping a recently started one
// for six hours after lights out. Nil when the season is over.
func (s *Service) NextRace(ctx context.Context) (*ScheduleEntry, error) {
	schedule, err := s.Schedule(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock().UTC()
	for i := range schedule.Races {
		race := schedule.Races[i]
		if race.RaceDatetime == "" {
			continue
		}
		dt, err := time.Parse(time.RFC3339, race.RaceDatetime)
		if err != nil {
			continue
		}
		if dt.Add(nextRaceWindow).After(now) {
			return &race, nil
		}
	}
	return nil, nil
}

// RaceResults returns the classification for one round; round "last"
// selects the most recently completed race.
func (s *Service) RaceResults(ctx context.Context, round string) (RaceResultsView, error) {
	return cached(s, "race_results:"+round, session.Resolution{}, func() (RaceResultsView, error) {
		table, err := s.history.RaceResults(ctx, s.settings.Season, round)
		if err != nil {
			return RaceResultsView{}, err
		}
		return s.buildRaceResults(table), nil
	})
}

func (s *Service) buildRaceResults(table *jolpica.RaceTable) RaceResultsView {
	var view RaceResultsView
	if table == nil || len(table.Races) == 0 {
		return view
	}
	race := table.Races[0]
	view.Round = atoi(race.Round)
	view.Name = race.RaceName
	view.Circuit = race.Circuit.CircuitName
	view.Country = race.Circuit.Location.Country
	view.Date = race.Date

	for _, r := range race.Results {
		number := atoi(r.Number)
		row := ResultRow{
			Record:         refdata.Enrich(s.settings.Season, number),
			Position:       atoi(r.Position),
			Grid:           atoi(r.Grid),
			Laps:           atoi(r.Laps),
			Status:         r.Status,
			IsDNF:          isDNF(r.Status),
			Points:         points(r.Points),
			Time:           "",
			Gap:            "",
			FastestLapTime: "",
			FastestLapRank: 0,
			FastestLapLap:  0,
		}
		if r.Time != nil {
			row.Time = r.Time.Time
			row.Gap = r.Time.Time
		}
		if fl := r.FastestLap; fl != nil {
			row.FastestLapRank = atoi(fl.Rank)
			row.FastestLapLap = atoi(fl.Lap)
			if fl.Time != nil {
				row.FastestLapTime = fl.Time.Time
			}
			if row.FastestLapRank == 1 {
				view.FastestLapDriver = number
			}
		}
		if row.IsDNF {
			view.DNFCount++
		}
		if row.Laps > view.TotalLaps {
			view.TotalLaps = row.Laps
		}
		view.Results = append(view.Results, row)
	}
	return view
}

// LastRace returns the most recent completed race's classification.
func (s *Service) LastRace(ctx context.Context) (RaceResultsView, error) {
	return s.RaceResults(ctx, "last")
}

// QualifyingResults returns a round's qualifying classification.
func (s *Service) QualifyingResults(ctx context.Context, round string) (QualifyingView, error) {
	return cached(s, "qualifying_results:"+round, session.Resolution{}, func() (QualifyingView, error) {
		table, err := s.history.QualifyingResults(ctx, s.settings.Season, round)
		if err != nil {
			return QualifyingView{}, err
		}
		var view QualifyingView
		if table == nil || len(table.Races) == 0 {
			return view, nil
		}
		race := table.Races[0]
		view.Round = atoi(race.Round)
		view.Name = race.RaceName
		view.Date = race.Date
		for _, q := range race.QualifyingResults {
			view.Results = append(view.Results, QualifyingRow{
				Record:   refdata.Enrich(s.settings.Season, atoi(q.Number)),
				Position: atoi(q.Position),
				Q1:       q.Q1,
				Q2:       q.Q2,
				Q3:       q.Q3,
			})
		}
		return view, nil
	})
}

// DriverStandings returns the driver championship. When the provider has no
// standings yet, the season-final fallback table is served so the
// application never renders an empty championship.
func (s *Service) DriverStandings(ctx context.Context) (DriverStandingsView, error) {
	return cached(s, "standings_drivers:"+strconv.Itoa(s.settings.Season), session.Resolution{}, func() (DriverStandingsView, error) {
		table, err := s.history.DriverStandings(ctx, s.settings.Season)
		if err != nil {
			return DriverStandingsView{}, err
		}
		if table == nil || len(table.StandingsLists) == 0 {
			return s.fallbackDriverStandings(), nil
		}
		list := table.StandingsLists[0]
		view := DriverStandingsView{
			Standings: nil,
			Season:    list.Season,
			Round:     list.Round,
			Fallback:  false,
		}
		leader, prev := "", ""
		for _, row := range list.DriverStandings {
			if leader == "" {
				leader = row.Points
			}
			number := refdata.NumberForErgastID(row.Driver.DriverID)
			if number == 0 {
				number = atoi(row.Driver.PermanentNumber)
			}
			entry := DriverStandingRow{
				Record:      refdata.Enrich(s.settings.Season, number),
				Position:    atoi(row.Position),
				Points:      points(row.Points),
				GapToLeader: gap(leader, row.Points),
				GapToPrev:   0,
				Wins:        atoi(row.Wins),
				Nationality: row.Driver.Nationality,
				ErgastID:    row.Driver.DriverID,
			}
			if prev != "" {
				entry.GapToPrev = gap(prev, row.Points)
			}
			view.Standings = append(view.Standings, entry)
			prev = row.Points
		}
		return view, nil
	})
}

func (s *Service) fallbackDriverStandings() DriverStandingsView {
	view := DriverStandingsView{Standings: nil, Season: "2025", Round: "24", Fallback: true}
	var leader, prev float64
	for i, row := range refdata.FallbackDriverStandings {
		if i == 0 {
			leader = row.Points
		}
		entry := DriverStandingRow{
			Record:      refdata.Enrich(s.settings.Season, row.Number),
			Position:    row.Position,
			Points:      row.Points,
			GapToLeader: roundGap(leader - row.Points),
			GapToPrev:   0,
			Wins:        row.Wins,
			Nationality: "",
			ErgastID:    "",
		}
		if i > 0 {
			entry.GapToPrev = roundGap(prev - row.Points)
		}
		view.Standings = append(view.Standings, entry)
		prev = row.Points
	}
	return view
}

func roundGap(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

// ConstructorStandings returns the constructor championship, with the same
// fallback behaviour as DriverStandings.
func (s *Service) ConstructorStandings(ctx context.Context) (ConstructorStandingsView, error) {
	return cached(s, "standings_constructors:"+strconv.Itoa(s.settings.Season), session.Resolution{}, func() (ConstructorStandingsView, error) {
		table, err := s.history.ConstructorStandings(ctx, s.settings.Season)
		if err != nil {
			return ConstructorStandingsView{}, err
		}
		if table == nil || len(table.StandingsLists) == 0 {
			return s.fallbackConstructorStandings(), nil
		}
		list := table.StandingsLists[0]
		view := ConstructorStandingsView{Standings: nil, Season: list.Season, Fallback: false}
		leader := ""
		for _, row := range list.ConstructorStandings {
			if leader == "" {
				leader = row.Points
			}
			team := row.Constructor.Name
			view.Standings = append(view.Standings, ConstructorStandingRow{
				Position:    atoi(row.Position),
				Team:        team,
				TeamColor:   refdata.TeamColor(team),
				Points:      points(row.Points),
				GapToLeader: gap(leader, row.Points),
				Wins:        atoi(row.Wins),
				Nationality: row.Constructor.Nationality,
				Drivers:     s.teamRecords(team),
			})
		}
		return view, nil
	})
}

func (s *Service) fallbackConstructorStandings() ConstructorStandingsView {
	view := ConstructorStandingsView{Standings: nil, Season: "2025", Fallback: true}
	var leader float64
	for i, row := range refdata.FallbackConstructorStandings {
		if i == 0 {
			leader = row.Points
		}
		view.Standings = append(view.Standings, ConstructorStandingRow{
			Position:    row.Position,
			Team:        row.Team,
			TeamColor:   refdata.TeamColor(row.Team),
			Points:      row.Points,
			GapToLeader: roundGap(leader - row.Points),
			Wins:        row.Wins,
			Nationality: "",
			Drivers:     s.teamRecords(row.Team),
		})
	}
	return view
}

func (s *Service) teamRecords(team string) []refdata.Record {
	numbers := refdata.TeamDrivers(s.settings.Season, team)
	out := make([]refdata.Record, 0, len(numbers))
	for _, n := range numbers {
		out = append(out, refdata.Enrich(s.settings.Season, n))
	}
	return out
}

// DriverProfile returns a driver's record with season stats aggregated
// from their race results, plus their teammate for comparison.
func (s *Service) DriverProfile(ctx context.Context, number int) (DriverProfileView, error) {
	if _, ok := refdata.DriverByNumber(s.settings.Season, number); !ok {
		return DriverProfileView{}, errDriverNotFound(number)
	}
	return cached(s, "driver_profile:"+strconv.Itoa(number), session.Resolution{}, func() (DriverProfileView, error) {
		view := DriverProfileView{
			Record:      refdata.Enrich(s.settings.Season, number),
			SeasonStats: nil,
			Teammate:    nil,
		}
		if mate := refdata.Teammate(s.settings.Season, number); mate != 0 {
			rec := refdata.Enrich(s.settings.Season, mate)
			view.Teammate = &rec
		}

		ergastID := refdata.ErgastIDForNumber(number)
		if ergastID == "" {
			return view, nil
		}
		table, err := s.history.DriverResults(ctx, s.settings.Season, ergastID)
		if err != nil {
			logSubFetch("driver_profile", err)
			return view, nil
		}
		if table == nil {
			return view, nil
		}

		stats := SeasonStats{Races: 0, Points: 0, Wins: 0, Podiums: 0, DNFs: 0, BestFinish: 0, Results: nil}
		total := decimal.Zero
		for _, race := range table.Races {
			if len(race.Results) == 0 {
				continue
			}
			r := race.Results[0]
			pos := atoi(r.Position)
			pts, _ := decimal.NewFromString(r.Points)
			total = total.Add(pts)
			if pos == 1 {
				stats.Wins++
			}
			if pos <= 3 && pos > 0 {
				stats.Podiums++
			}
			if stats.BestFinish == 0 || (pos > 0 && pos < stats.BestFinish) {
				stats.BestFinish = pos
			}
			if isDNF(r.Status) {
				stats.DNFs++
			}
			stats.Results = append(stats.Results, SeasonResult{
				Round:    atoi(race.Round),
				Race:     race.RaceName,
				Position: pos,
				Grid:     atoi(r.Grid),
				Points:   pts.InexactFloat64(),
				Status:   r.Status,
			})
		}
		stats.Races = len(stats.Results)
		stats.Points = total.InexactFloat64()
		if stats.Races > 0 {
			view.SeasonStats = &stats
		}
		return view, nil
	})
}

// Home bundles the home screen's heavy load: next race, last race, and the
// championship top three, fetched concurrently.
func (s *Service) Home(ctx context.Context) (HomeView, error) {
	var (
		next      *ScheduleEntry
		last      RaceResultsView
		standings DriverStandingsView
	)
	p := pool.New().WithMaxGoroutines(3)
	p.Go(func() {
		var err error
		if next, err = s.NextRace(ctx); err != nil {
			logSubFetch("home", err)
		}
	})
	p.Go(func() {
		var err error
		if last, err = s.LastRace(ctx); err != nil {
			logSubFetch("home", err)
		}
	})
	p.Go(func() {
		var err error
		if standings, err = s.DriverStandings(ctx); err != nil {
			logSubFetch("home", err)
		}
	})
	p.Wait()

	top3 := standings.Standings
	if len(top3) > 3 {
		top3 = top3[:3]
	}
	return HomeView{NextRace: next, LastRace: last, StandingsTop3: top3}, nil
}
