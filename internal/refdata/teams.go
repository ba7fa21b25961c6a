package refdata

const defaultTeamColor = "#888888"

var teamColors = map[string]string{
	"Red Bull Racing": "#3671C6",
	"Mercedes":        "#27F4D2",
	"Ferrari":         "#E8002D",
	"McLaren":         "#FF8000",
	"Aston Martin":    "#229971",
	"Alpine":          "#FF87BC",
	"Williams":        "#64C4FF",
	"Haas F1 Team":    "#B6BABD",
	"RB":              "#6692FF",
	"Kick Sauber":     "#52E252",
}

// TeamAssets groups the official media URLs for one team.
type TeamAssets struct {
	Logo string `json:"logo_url"`
	Car  string `json:"car_url"`
}

const teamAssetBase = "https://media.formula1.com/content/dam/fom-website/teams/2025"

var teamAssets = map[string]TeamAssets{
	"Red Bull Racing": asset("red-bull-racing"),
	"Ferrari":         asset("ferrari"),
	"McLaren":         asset("mclaren"),
	"Mercedes":        asset("mercedes"),
	"Aston Martin":    asset("aston-martin"),
	"Alpine":          asset("alpine"),
	"Williams":        asset("williams"),
	"Haas F1 Team":    asset("haas"),
	"RB":              asset("rb"),
	"Kick Sauber":     asset("kick-sauber"),
}

func asset(slug string) TeamAssets {
	return TeamAssets{
		Logo: teamAssetBase + "/" + slug + "-logo.png.transform/2col/image.png",
		Car:  teamAssetBase + "/" + slug + ".png.transform/4col/image.png",
	}
}

// TeamColor returns the display colour for a team, grey when unknown.
func TeamColor(team string) string {
	if c, ok := teamColors[team]; ok {
		return c
	}
	return defaultTeamColor
}

// AssetsFor returns the media assets for a team.
func AssetsFor(team string) TeamAssets {
	return teamAssets[team]
}

// Teams lists all known team names for a season roster.
func Teams(season int) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, d := range Roster(season) {
		if _, ok := seen[d.Team]; ok {
			continue
		}
		seen[d.Team] = struct{}{}
		out = append(out, d.Team)
	}
	return out
}

// TeamDrivers returns the roster numbers racing for a team in a season.
func TeamDrivers(season int, team string) []int {
	var out []int
	for number, d := range Roster(season) {
		if d.Team == team {
			out = append(out, number)
		}
	}
	return out
}

// Teammate returns the other roster driver on the same team, zero when none.
func Teammate(season, number int) int {
	d, ok := DriverByNumber(season, number)
	if !ok {
		return 0
	}
	for other, entry := range Roster(season) {
		if other != number && entry.Team == d.Team {
			return other
		}
	}
	return 0
}
