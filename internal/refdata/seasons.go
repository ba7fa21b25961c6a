package refdata

// StandingEntry is one row of a season-final fallback table, served when the
// history provider has no standings yet (or is down) so the application
// never renders an empty championship.
type StandingEntry struct {
	Position int     `json:"position"`
	Number   int     `json:"driver_number,omitempty"`
	Team     string  `json:"team,omitempty"`
	Points   float64 `json:"points"`
	Wins     int     `json:"wins"`
}

// FallbackDriverStandings is the most recent completed season's final
// driver classification.
var FallbackDriverStandings = []StandingEntry{
	{Position: 1, Number: 4, Points: 437, Wins: 7},
	{Position: 2, Number: 81, Points: 410, Wins: 7},
	{Position: 3, Number: 1, Points: 396, Wins: 8},
	{Position: 4, Number: 63, Points: 319, Wins: 2},
	{Position: 5, Number: 16, Points: 242, Wins: 0},
	{Position: 6, Number: 44, Points: 156, Wins: 0},
	{Position: 7, Number: 12, Points: 150, Wins: 0},
	{Position: 8, Number: 23, Points: 73, Wins: 0},
	{Position: 9, Number: 27, Points: 51, Wins: 0},
	{Position: 10, Number: 55, Points: 49, Wins: 0},
	{Position: 11, Number: 87, Points: 45, Wins: 0},
	{Position: 12, Number: 14, Points: 40, Wins: 0},
	{Position: 13, Number: 22, Points: 33, Wins: 0},
	{Position: 14, Number: 61, Points: 51, Wins: 0},
	{Position: 15, Number: 30, Points: 30, Wins: 0},
	{Position: 16, Number: 18, Points: 32, Wins: 0},
	{Position: 17, Number: 31, Points: 30, Wins: 0},
	{Position: 18, Number: 10, Points: 22, Wins: 0},
	{Position: 19, Number: 5, Points: 19, Wins: 0},
	{Position: 20, Number: 7, Points: 0, Wins: 0},
}

// FallbackConstructorStandings is the matching constructor classification.
var FallbackConstructorStandings = []StandingEntry{
	{Position: 1, Team: "McLaren", Points: 847, Wins: 14},
	{Position: 2, Team: "Mercedes", Points: 469, Wins: 2},
	{Position: 3, Team: "Red Bull Racing", Points: 426, Wins: 8},
	{Position: 4, Team: "Ferrari", Points: 398, Wins: 0},
	{Position: 5, Team: "Williams", Points: 122, Wins: 0},
	{Position: 6, Team: "RB", Points: 84, Wins: 0},
	{Position: 7, Team: "Haas F1 Team", Points: 75, Wins: 0},
	{Position: 8, Team: "Aston Martin", Points: 72, Wins: 0},
	{Position: 9, Team: "Kick Sauber", Points: 70, Wins: 0},
	{Position: 10, Team: "Alpine", Points: 22, Wins: 0},
}

// DemoSession is one historical session an operator can pin for demo mode.
type DemoSession struct {
	SessionKey  string `json:"session_key"`
	MeetingName string `json:"meeting_name"`
	SessionName string `json:"session_name"`
	Year        int    `json:"year"`
}

// DemoSessions lists recent race sessions known to have full telemetry.
var DemoSessions = []DemoSession{
	{SessionKey: "9869", MeetingName: "Abu Dhabi Grand Prix", SessionName: "Race", Year: 2025},
	{SessionKey: "9820", MeetingName: "Qatar Grand Prix", SessionName: "Race", Year: 2025},
	{SessionKey: "9802", MeetingName: "Las Vegas Grand Prix", SessionName: "Race", Year: 2025},
	{SessionKey: "9778", MeetingName: "São Paulo Grand Prix", SessionName: "Race", Year: 2025},
	{SessionKey: "9762", MeetingName: "Mexico City Grand Prix", SessionName: "Race", Year: 2025},
	{SessionKey: "9740", MeetingName: "United States Grand Prix", SessionName: "Race", Year: 2025},
	{SessionKey: "9693", MeetingName: "Singapore Grand Prix", SessionName: "Race", Year: 2025},
	{SessionKey: "9673", MeetingName: "Azerbaijan Grand Prix", SessionName: "Race", Year: 2025},
	{SessionKey: "9662", MeetingName: "Italian Grand Prix", SessionName: "Race", Year: 2025},
	{SessionKey: "9644", MeetingName: "Dutch Grand Prix", SessionName: "Race", Year: 2025},
}
