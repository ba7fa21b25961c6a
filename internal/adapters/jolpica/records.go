// Package jolpica adapts the historical-statistics provider. Responses
// arrive in the Ergast "MRData" envelope with every number encoded as a
// string, so the record types keep string fields and leave numeric
// interpretation to the views.
package jolpica

// Envelope is the outer MRData wrapper common to every endpoint.
type Envelope struct {
	MRData MRData `json:"MRData"`
}

// MRData carries whichever table the endpoint returns.
type MRData struct {
	Limit          string          `json:"limit"`
	Offset         string          `json:"offset"`
	Total          string          `json:"total"`
	RaceTable      *RaceTable      `json:"RaceTable,omitempty"`
	StandingsTable *StandingsTable `json:"StandingsTable,omitempty"`
}

// RaceTable lists races, optionally with results attached.
type RaceTable struct {
	Season string `json:"season"`
	Round  string `json:"round"`
	Races  []Race `json:"Races"`
}

// Race is one event on the calendar.
type Race struct {
	Season            string       `json:"season"`
	Round             string       `json:"round"`
	RaceName          string       `json:"raceName"`
	Circuit           Circuit      `json:"Circuit"`
	Date              string       `json:"date"`
	Time              string       `json:"time"`
	FirstPractice     *RaceSession `json:"FirstPractice,omitempty"`
	SecondPractice    *RaceSession `json:"SecondPractice,omitempty"`
	ThirdPractice     *RaceSession `json:"ThirdPractice,omitempty"`
	Qualifying        *RaceSession `json:"Qualifying,omitempty"`
	Sprint            *RaceSession `json:"Sprint,omitempty"`
	SprintQualifying  *RaceSession `json:"SprintQualifying,omitempty"`
	Results           []Result     `json:"Results,omitempty"`
	QualifyingResults []Qualifying `json:"QualifyingResults,omitempty"`
}

// RaceSession is a supporting session's date and time.
type RaceSession struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// Circuit identifies the venue of a race.
type Circuit struct {
	CircuitID   string   `json:"circuitId"`
	CircuitName string   `json:"circuitName"`
	Location    Location `json:"Location"`
}

// Location is the venue's geography.
type Location struct {
	Lat      string `json:"lat"`
	Long     string `json:"long"`
	Locality string `json:"locality"`
	Country  string `json:"country"`
}

// Driver identifies a driver in provider terms.
type Driver struct {
	DriverID        string `json:"driverId"`
	PermanentNumber string `json:"permanentNumber"`
	Code            string `json:"code"`
	GivenName       string `json:"givenName"`
	FamilyName      string `json:"familyName"`
	DateOfBirth     string `json:"dateOfBirth"`
	Nationality     string `json:"nationality"`
}

// Constructor identifies a team in provider terms.
type Constructor struct {
	ConstructorID string `json:"constructorId"`
	Name          string `json:"name"`
	Nationality   string `json:"nationality"`
}

// Result is one classified finisher of a race.
type Result struct {
	Number       string      `json:"number"`
	Position     string      `json:"position"`
	PositionText string      `json:"positionText"`
	Points       string      `json:"points"`
	Driver       Driver      `json:"Driver"`
	Constructor  Constructor `json:"Constructor"`
	Grid         string      `json:"grid"`
	Laps         string      `json:"laps"`
	Status       string      `json:"status"`
	Time         *ResultTime `json:"Time,omitempty"`
	FastestLap   *FastestLap `json:"FastestLap,omitempty"`
}

// ResultTime is the finishing time relative to the winner.
type ResultTime struct {
	Millis string `json:"millis"`
	Time   string `json:"time"`
}

// FastestLap is a finisher's best lap.
type FastestLap struct {
	Rank string   `json:"rank"`
	Lap  string   `json:"lap"`
	Time *LapTime `json:"Time,omitempty"`
}

// LapTime is a formatted lap time such as "1:31.447".
type LapTime struct {
	Time string `json:"time"`
}

// Qualifying is one row of a qualifying classification.
type Qualifying struct {
	Position    string      `json:"position"`
	Number      string      `json:"number"`
	Driver      Driver      `json:"Driver"`
	Constructor Constructor `json:"Constructor"`
	Q1          string      `json:"Q1"`
	Q2          string      `json:"Q2"`
	Q3          string      `json:"Q3"`
}

// StandingsTable lists championship standings snapshots.
type StandingsTable struct {
	Season         string          `json:"season"`
	StandingsLists []StandingsList `json:"StandingsLists"`
}

// StandingsList is one snapshot of the championship after a round.
type StandingsList struct {
	Season               string                `json:"season"`
	Round                string                `json:"round"`
	DriverStandings      []DriverStanding      `json:"DriverStandings,omitempty"`
	ConstructorStandings []ConstructorStanding `json:"ConstructorStandings,omitempty"`
}

// DriverStanding is one driver's championship row.
type DriverStanding struct {
	Position     string        `json:"position"`
	PositionText string        `json:"positionText"`
	Points       string        `json:"points"`
	Wins         string        `json:"wins"`
	Driver       Driver        `json:"Driver"`
	Constructors []Constructor `json:"Constructors"`
}

// ConstructorStanding is one team's championship row.
type ConstructorStanding struct {
	Position     string      `json:"position"`
	PositionText string      `json:"positionText"`
	Points       string      `json:"points"`
	Wins         string      `json:"wins"`
	Constructor  Constructor `json:"Constructor"`
}
