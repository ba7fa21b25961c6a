package refdata

import (
	"strings"
	"testing"
)

func TestRosterFallsBackToCurrentSeason(t *testing.T) {
	if len(Roster(2025)) != 20 {
		t.Fatalf("expected 20 drivers in 2025 roster, got %d", len(Roster(2025)))
	}
	if len(Roster(1998)) != 20 {
		t.Fatalf("unknown season should fall back to the current roster")
	}
}

func TestDriverByNumberPriorSeasonFallback(t *testing.T) {
	// 11 left the grid after 2024 but still appears in that season's data.
	d, ok := DriverByNumber(2025, 11)
	if !ok {
		t.Fatalf("expected prior-season fallback for number 11")
	}
	if d.Code != "PER" {
		t.Fatalf("unexpected driver for 11: %+v", d)
	}
	if _, ok := DriverByNumber(2025, 99); ok {
		t.Fatalf("number 99 should be unknown")
	}
}

func TestEnrichUnknownNumberPlaceholder(t *testing.T) {
	rec := Enrich(2025, 99)
	if rec.Name != "Driver 99" {
		t.Fatalf("unexpected placeholder name %q", rec.Name)
	}
	if rec.TeamColor != defaultTeamColor {
		t.Fatalf("placeholder should carry the default team colour")
	}
}

func TestEnrichKnownDriver(t *testing.T) {
	rec := Enrich(2025, 44)
	if rec.Team != "Ferrari" {
		t.Fatalf("44 drives for Ferrari in 2025, got %q", rec.Team)
	}
	if rec.TeamColor != "#E8002D" {
		t.Fatalf("unexpected team colour %q", rec.TeamColor)
	}
	if rec.FirstName != "Lewis" || rec.LastName != "Hamilton" {
		t.Fatalf("name split failed: %q %q", rec.FirstName, rec.LastName)
	}
	if !strings.Contains(rec.PhotoURL, "hamilton") {
		t.Fatalf("photo URL should slug the surname, got %q", rec.PhotoURL)
	}
	if !strings.Contains(rec.PhotoURLLarge, "/4col/") {
		t.Fatalf("large photo should use the 4col transform, got %q", rec.PhotoURLLarge)
	}
}

func TestPhotoSlugDropsDiacritics(t *testing.T) {
	if got := photoSlug("Nico Hülkenberg"); got != "hulkenberg" {
		t.Fatalf("photoSlug = %q", got)
	}
	if got := photoSlug("Sergio Pérez"); got != "perez" {
		t.Fatalf("photoSlug = %q", got)
	}
}

func TestErgastMappingRoundTrip(t *testing.T) {
	if n := NumberForErgastID("max_verstappen"); n != 1 {
		t.Fatalf("max_verstappen should map to 1, got %d", n)
	}
	if n := NumberForErgastID(" HAMILTON "); n != 44 {
		t.Fatalf("mapping should be case and space insensitive, got %d", n)
	}
	if id := ErgastIDForNumber(81); id != "piastri" {
		t.Fatalf("81 should map back to piastri, got %q", id)
	}
	if NumberForErgastID("not_a_driver") != 0 {
		t.Fatalf("unknown driverId should map to zero")
	}
}

func TestTeammate(t *testing.T) {
	if mate := Teammate(2025, 44); mate != 16 {
		t.Fatalf("44's teammate in 2025 is 16, got %d", mate)
	}
	if mate := Teammate(2025, 99); mate != 0 {
		t.Fatalf("unknown driver has no teammate, got %d", mate)
	}
}

func TestTyreColorDefaults(t *testing.T) {
	if TyreColor("SOFT") != "#FF3333" {
		t.Fatalf("unexpected soft colour")
	}
	if TyreColor("SUPERSOFT") != tyreColors[CompoundUnknown] {
		t.Fatalf("unknown compound should get the unknown colour")
	}
}

func TestCircuitImage(t *testing.T) {
	url := CircuitImage("spa")
	if !strings.HasSuffix(url, "/Belgium.png") {
		t.Fatalf("unexpected image URL %q", url)
	}
	if CircuitImage("nurburgring") != "" {
		t.Fatalf("unmapped circuit should produce no URL")
	}
}

func TestFallbackStandingsShape(t *testing.T) {
	if len(FallbackDriverStandings) != 20 {
		t.Fatalf("driver fallback should list a full grid")
	}
	if FallbackDriverStandings[0].Position != 1 || FallbackDriverStandings[0].Number != 4 {
		t.Fatalf("unexpected leader row %+v", FallbackDriverStandings[0])
	}
	if len(FallbackConstructorStandings) != 10 {
		t.Fatalf("constructor fallback should list all ten teams")
	}
}
