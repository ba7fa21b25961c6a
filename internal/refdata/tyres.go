package refdata

// CompoundUnknown tags stints whose compound the upstream did not report.
const CompoundUnknown = "UNKNOWN"

var tyreColors = map[string]string{
	"SOFT":          "#FF3333",
	"MEDIUM":        "#FFD700",
	"HARD":          "#CCCCCC",
	"INTERMEDIATE":  "#39B54A",
	"WET":           "#0067FF",
	CompoundUnknown: "#888888",
}

// TyreColor returns the display colour for a compound.
func TyreColor(compound string) string {
	if c, ok := tyreColors[compound]; ok {
		return c
	}
	return tyreColors[CompoundUnknown]
}
