// Package openf1 adapts the live telemetry provider: typed endpoint records
// and a concurrency-gated client with bounded retries.
package openf1

// Session is one row of the /sessions endpoint.
type Session struct {
	SessionKey  int    `json:"session_key"`
	MeetingKey  int    `json:"meeting_key"`
	SessionName string `json:"session_name"`
	SessionType string `json:"session_type"`
	CountryName string `json:"country_name"`
	CircuitName string `json:"circuit_short_name"`
	Location    string `json:"location"`
	DateStart   string `json:"date_start"`
	DateEnd     string `json:"date_end"`
	GMTOffset   string `json:"gmt_offset"`
	Year        int    `json:"year"`
}

// Position is one row of the /position endpoint.
type Position struct {
	SessionKey   int    `json:"session_key"`
	DriverNumber int    `json:"driver_number"`
	Position     int    `json:"position"`
	Date         string `json:"date"`
}

// Lap is one row of the /laps endpoint. Duration fields are nil for laps
// still in progress or not set.
type Lap struct {
	SessionKey      int      `json:"session_key"`
	DriverNumber    int      `json:"driver_number"`
	LapNumber       int      `json:"lap_number"`
	LapDuration     *float64 `json:"lap_duration"`
	DurationSector1 *float64 `json:"duration_sector_1"`
	DurationSector2 *float64 `json:"duration_sector_2"`
	DurationSector3 *float64 `json:"duration_sector_3"`
	IsPitOutLap     bool     `json:"is_pit_out_lap"`
	STSpeed         *float64 `json:"st_speed"`
	DateStart       string   `json:"date_start"`
}

// Stint is one row of the /stints endpoint.
type Stint struct {
	SessionKey     int    `json:"session_key"`
	DriverNumber   int    `json:"driver_number"`
	StintNumber    int    `json:"stint_number"`
	Compound       string `json:"compound"`
	LapStart       int    `json:"lap_start"`
	LapEnd         int    `json:"lap_end"`
	TyreAgeAtStart int    `json:"tyre_age_at_start"`
}

// Interval is one row of the /intervals endpoint. Gaps arrive as numbers,
// or strings like "+1 LAP", so they stay untyped here.
type Interval struct {
	SessionKey   int    `json:"session_key"`
	DriverNumber int    `json:"driver_number"`
	GapToLeader  any    `json:"gap_to_leader"`
	Interval     any    `json:"interval"`
	Date         string `json:"date"`
}

// Weather is one row of the /weather endpoint.
type Weather struct {
	SessionKey       int     `json:"session_key"`
	AirTemperature   float64 `json:"air_temperature"`
	TrackTemperature float64 `json:"track_temperature"`
	Humidity         float64 `json:"humidity"`
	Pressure         float64 `json:"pressure"`
	Rainfall         float64 `json:"rainfall"`
	WindSpeed        float64 `json:"wind_speed"`
	WindDirection    float64 `json:"wind_direction"`
	Date             string  `json:"date"`
}

// RaceControl is one row of the /race_control endpoint.
type RaceControl struct {
	SessionKey   int    `json:"session_key"`
	DriverNumber int    `json:"driver_number"`
	Category     string `json:"category"`
	Flag         string `json:"flag"`
	Scope        string `json:"scope"`
	Message      string `json:"message"`
	LapNumber    int    `json:"lap_number"`
	Date         string `json:"date"`
}

// TeamRadio is one row of the /team_radio endpoint.
type TeamRadio struct {
	SessionKey   int    `json:"session_key"`
	DriverNumber int    `json:"driver_number"`
	RecordingURL string `json:"recording_url"`
	Date         string `json:"date"`
}

// Pit is one row of the /pit endpoint.
type Pit struct {
	SessionKey   int      `json:"session_key"`
	DriverNumber int      `json:"driver_number"`
	LapNumber    int      `json:"lap_number"`
	PitDuration  *float64 `json:"pit_duration"`
	Date         string   `json:"date"`
}

// Location is one row of the /location endpoint, the on-track coordinates
// sampled for a single car.
type Location struct {
	SessionKey   int     `json:"session_key"`
	DriverNumber int     `json:"driver_number"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Z            float64 `json:"z"`
	Date         string  `json:"date"`
}
