// Package refdata holds the static reference tables the integration layer
// joins against: season rosters, team colours and assets, tyre compounds,
// circuits, and season-final fallback standings.
package refdata

import (
	"fmt"
	"strings"
)

// Driver describes one roster entry for a season.
type Driver struct {
	Number  int    `json:"driver_number"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Team    string `json:"team"`
	Country string `json:"country"`
}

// Record is a fully enriched driver entry, joined with team colour and
// photo URLs. It is derived, never stored.
type Record struct {
	Number        int    `json:"driver_number"`
	Name          string `json:"name"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Code          string `json:"code"`
	Team          string `json:"team"`
	TeamColor     string `json:"team_color"`
	Country       string `json:"country"`
	PhotoURL      string `json:"photo_url"`
	PhotoURLLarge string `json:"photo_url_large"`
}

// rosters by season; update at the start of each season.
var rosters = map[int]map[int]Driver{
	2025: {
		1:  {Number: 1, Name: "Max Verstappen", Code: "VER", Team: "Red Bull Racing", Country: "NL"},
		44: {Number: 44, Name: "Lewis Hamilton", Code: "HAM", Team: "Ferrari", Country: "GB"},
		16: {Number: 16, Name: "Charles Leclerc", Code: "LEC", Team: "Ferrari", Country: "MC"},
		4:  {Number: 4, Name: "Lando Norris", Code: "NOR", Team: "McLaren", Country: "GB"},
		81: {Number: 81, Name: "Oscar Piastri", Code: "PIA", Team: "McLaren", Country: "AU"},
		63: {Number: 63, Name: "George Russell", Code: "RUS", Team: "Mercedes", Country: "GB"},
		12: {Number: 12, Name: "Andrea Kimi Antonelli", Code: "ANT", Team: "Mercedes", Country: "IT"},
		14: {Number: 14, Name: "Fernando Alonso", Code: "ALO", Team: "Aston Martin", Country: "ES"},
		18: {Number: 18, Name: "Lance Stroll", Code: "STR", Team: "Aston Martin", Country: "CA"},
		10: {Number: 10, Name: "Pierre Gasly", Code: "GAS", Team: "Alpine", Country: "FR"},
		7:  {Number: 7, Name: "Jack Doohan", Code: "DOO", Team: "Alpine", Country: "AU"},
		23: {Number: 23, Name: "Alexander Albon", Code: "ALB", Team: "Williams", Country: "TH"},
		55: {Number: 55, Name: "Carlos Sainz", Code: "SAI", Team: "Williams", Country: "ES"},
		31: {Number: 31, Name: "Esteban Ocon", Code: "OCO", Team: "Haas F1 Team", Country: "FR"},
		87: {Number: 87, Name: "Oliver Bearman", Code: "BEA", Team: "Haas F1 Team", Country: "GB"},
		22: {Number: 22, Name: "Yuki Tsunoda", Code: "TSU", Team: "RB", Country: "JP"},
		30: {Number: 30, Name: "Liam Lawson", Code: "LAW", Team: "Red Bull Racing", Country: "NZ"},
		27: {Number: 27, Name: "Nico Hülkenberg", Code: "HUL", Team: "Kick Sauber", Country: "DE"},
		5:  {Number: 5, Name: "Gabriel Bortoleto", Code: "BOR", Team: "Kick Sauber", Country: "BR"},
		61: {Number: 61, Name: "Isack Hadjar", Code: "HAD", Team: "RB", Country: "FR"},
	},
	2024: {
		1:  {Number: 1, Name: "Max Verstappen", Code: "VER", Team: "Red Bull Racing", Country: "NL"},
		11: {Number: 11, Name: "Sergio Pérez", Code: "PER", Team: "Red Bull Racing", Country: "MX"},
		44: {Number: 44, Name: "Lewis Hamilton", Code: "HAM", Team: "Mercedes", Country: "GB"},
		63: {Number: 63, Name: "George Russell", Code: "RUS", Team: "Mercedes", Country: "GB"},
		16: {Number: 16, Name: "Charles Leclerc", Code: "LEC", Team: "Ferrari", Country: "MC"},
		55: {Number: 55, Name: "Carlos Sainz", Code: "SAI", Team: "Ferrari", Country: "ES"},
		4:  {Number: 4, Name: "Lando Norris", Code: "NOR", Team: "McLaren", Country: "GB"},
		81: {Number: 81, Name: "Oscar Piastri", Code: "PIA", Team: "McLaren", Country: "AU"},
		14: {Number: 14, Name: "Fernando Alonso", Code: "ALO", Team: "Aston Martin", Country: "ES"},
		18: {Number: 18, Name: "Lance Stroll", Code: "STR", Team: "Aston Martin", Country: "CA"},
		10: {Number: 10, Name: "Pierre Gasly", Code: "GAS", Team: "Alpine", Country: "FR"},
		31: {Number: 31, Name: "Esteban Ocon", Code: "OCO", Team: "Alpine", Country: "FR"},
		23: {Number: 23, Name: "Alexander Albon", Code: "ALB", Team: "Williams", Country: "TH"},
		2:  {Number: 2, Name: "Logan Sargeant", Code: "SAR", Team: "Williams", Country: "US"},
		27: {Number: 27, Name: "Nico Hülkenberg", Code: "HUL", Team: "Haas F1 Team", Country: "DE"},
		20: {Number: 20, Name: "Kevin Magnussen", Code: "MAG", Team: "Haas F1 Team", Country: "DK"},
		22: {Number: 22, Name: "Yuki Tsunoda", Code: "TSU", Team: "RB", Country: "JP"},
		3:  {Number: 3, Name: "Daniel Ricciardo", Code: "RIC", Team: "RB", Country: "AU"},
		77: {Number: 77, Name: "Valtteri Bottas", Code: "BOT", Team: "Kick Sauber", Country: "FI"},
		24: {Number: 24, Name: "Zhou Guanyu", Code: "ZHO", Team: "Kick Sauber", Country: "CN"},
	},
}

// ergastToNumber maps the history provider's driverId to the roster number.
var ergastToNumber = map[string]int{
	"max_verstappen": 1, "hamilton": 44, "leclerc": 16,
	"norris": 4, "piastri": 81, "russell": 63,
	"antonelli": 12, "alonso": 14, "stroll": 18,
	"gasly": 10, "doohan": 7, "albon": 23,
	"sainz": 55, "ocon": 31, "bearman": 87,
	"tsunoda": 22, "lawson": 30, "hulkenberg": 27,
	"bortoleto": 5, "hadjar": 61,
}

const driverPhotoBase = "https://media.formula1.com/content/dam/fom-website/drivers/2025Drivers"

// Roster returns the full roster for a season, falling back to the most
// recent known season when the requested one is absent.
func Roster(season int) map[int]Driver {
	if roster, ok := rosters[season]; ok {
		return roster
	}
	return rosters[2025]
}

// DriverByNumber looks up a roster entry by car number, with a single
// prior-season fallback when the number is not in the active roster.
func DriverByNumber(season, number int) (Driver, bool) {
	if d, ok := Roster(season)[number]; ok {
		return d, true
	}
	if d, ok := rosters[season-1][number]; ok {
		return d, true
	}
	return Driver{}, false
}

// NumberForErgastID resolves an Ergast driverId to a car number, zero when unknown.
func NumberForErgastID(driverID string) int {
	return ergastToNumber[strings.ToLower(strings.TrimSpace(driverID))]
}

// ErgastIDForNumber resolves a car number back to the Ergast driverId.
func ErgastIDForNumber(number int) string {
	for id, n := range ergastToNumber {
		if n == number {
			return id
		}
	}
	return ""
}

// Enrich builds a full driver record from the roster, tolerating unknown
// numbers with a placeholder entry so views never crash on new entrants.
func Enrich(season, number int) Record {
	d, ok := DriverByNumber(season, number)
	if !ok {
		return Record{
			Number:        number,
			Name:          fmt.Sprintf("Driver %d", number),
			FirstName:     "",
			LastName:      "",
			Code:          fmt.Sprintf("%d", number),
			Team:          "",
			TeamColor:     defaultTeamColor,
			Country:       "",
			PhotoURL:      "",
			PhotoURLLarge: "",
		}
	}
	first, last := splitName(d.Name)
	return Record{
		Number:        d.Number,
		Name:          d.Name,
		FirstName:     first,
		LastName:      last,
		Code:          d.Code,
		Team:          d.Team,
		TeamColor:     TeamColor(d.Team),
		Country:       d.Country,
		PhotoURL:      PhotoURL(d.Name),
		PhotoURLLarge: PhotoURLLarge(d.Name),
	}
}

// PhotoURL returns the official headshot URL for a driver name.
func PhotoURL(name string) string {
	slug := photoSlug(name)
	if slug == "" {
		return ""
	}
	return driverPhotoBase + "/" + slug + ".jpg.transform/2col/image.jpg"
}

// PhotoURLLarge returns the large (4col) headshot variant.
func PhotoURLLarge(name string) string {
	small := PhotoURL(name)
	if small == "" {
		return ""
	}
	return strings.Replace(small, "/2col/", "/4col/", 1)
}

func photoSlug(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	parts := strings.Fields(name)
	last := strings.ToLower(parts[len(parts)-1])
	// the media host drops diacritics
	replacer := strings.NewReplacer("ü", "u", "é", "e", "è", "e", "ä", "a", "ö", "o")
	return replacer.Replace(last)
}

func splitName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
