package refdata

// Circuit carries the static geography for one venue.
type Circuit struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Name string  `json:"name"`
}

var circuits = map[string]Circuit{
	"bahrain":       {Lat: 26.0325, Lon: 50.5106, Name: "Bahrain International Circuit"},
	"jeddah":        {Lat: 21.6319, Lon: 39.1044, Name: "Jeddah Corniche Circuit"},
	"albert_park":   {Lat: -37.8497, Lon: 144.968, Name: "Albert Park Circuit"},
	"suzuka":        {Lat: 34.8431, Lon: 136.541, Name: "Suzuka International Racing Course"},
	"shanghai":      {Lat: 31.3389, Lon: 121.220, Name: "Shanghai International Circuit"},
	"miami":         {Lat: 25.9581, Lon: -80.2389, Name: "Miami International Autodrome"},
	"imola":         {Lat: 44.3439, Lon: 11.7167, Name: "Autodromo Enzo e Dino Ferrari"},
	"monaco":        {Lat: 43.7347, Lon: 7.42056, Name: "Circuit de Monaco"},
	"catalunya":     {Lat: 41.5700, Lon: 2.26111, Name: "Circuit de Barcelona-Catalunya"},
	"villeneuve":    {Lat: 45.5000, Lon: -73.5228, Name: "Circuit Gilles Villeneuve"},
	"red_bull_ring": {Lat: 47.2197, Lon: 14.7647, Name: "Red Bull Ring"},
	"silverstone":   {Lat: 52.0786, Lon: -1.01694, Name: "Silverstone Circuit"},
	"hungaroring":   {Lat: 47.5789, Lon: 19.2486, Name: "Hungaroring"},
	"spa":           {Lat: 50.4372, Lon: 5.97139, Name: "Circuit de Spa-Francorchamps"},
	"zandvoort":     {Lat: 52.3888, Lon: 4.54092, Name: "Circuit Zandvoort"},
	"monza":         {Lat: 45.6206, Lon: 9.28111, Name: "Autodromo Nazionale Monza"},
	"baku":          {Lat: 40.3725, Lon: 49.8533, Name: "Baku City Circuit"},
	"marina_bay":    {Lat: 1.29140, Lon: 103.864, Name: "Marina Bay Street Circuit"},
	"americas":      {Lat: 30.1328, Lon: -97.6411, Name: "Circuit of the Americas"},
	"rodriguez":     {Lat: 19.4042, Lon: -99.0907, Name: "Autódromo Hermanos Rodríguez"},
	"interlagos":    {Lat: -23.7036, Lon: -46.6997, Name: "Autódromo José Carlos Pace"},
	"vegas":         {Lat: 36.1147, Lon: -115.173, Name: "Las Vegas Street Circuit"},
	"losail":        {Lat: 25.4900, Lon: 51.4542, Name: "Lusail International Circuit"},
	"yas_marina":    {Lat: 24.4672, Lon: 54.6031, Name: "Yas Marina Circuit"},
}

// outlineImages maps the history provider's circuitId to the official track
// outline image name.
var outlineImages = map[string]string{
	"bahrain":       "Bahrain",
	"jeddah":        "Saudi%20Arabia",
	"albert_park":   "Australia",
	"suzuka":        "Japan",
	"shanghai":      "China",
	"miami":         "Miami",
	"imola":         "Emilia%20Romagna",
	"monaco":        "Monaco",
	"catalunya":     "Spain",
	"villeneuve":    "Canada",
	"red_bull_ring": "Austria",
	"silverstone":   "Great%20Britain",
	"hungaroring":   "Hungary",
	"spa":           "Belgium",
	"zandvoort":     "Netherlands",
	"monza":         "Italy",
	"baku":          "Azerbaijan",
	"marina_bay":    "Singapore",
	"americas":      "USA",
	"rodriguez":     "Mexico",
	"interlagos":    "Brazil",
	"vegas":         "Las%20Vegas",
	"losail":        "Qatar",
	"yas_marina":    "Abu%20Dhabi",
}

const circuitImageBase = "https://media.formula1.com/image/upload/f_auto/q_auto/v1677245035/content/dam/fom-website/2018-redesign-assets/Track%20outline%20702x405"

// CircuitByID returns the static geography for a circuitId.
func CircuitByID(circuitID string) (Circuit, bool) {
	c, ok := circuits[circuitID]
	return c, ok
}

// CircuitImage returns the official outline image URL for a circuitId,
// empty when unmapped.
func CircuitImage(circuitID string) string {
	name, ok := outlineImages[circuitID]
	if !ok {
		return ""
	}
	return circuitImageBase + "/" + name + ".png"
}
