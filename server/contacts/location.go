package contacts

import "strings"

const (
	METRO_PRIMARY    = "metro_primary"
	LOCALITY_PRIMARY = "locality_primary"
)

// LocationStrategy is the transient result of classifying a free-text
// location. It is computed fresh per search and never persisted.
type LocationStrategy struct {
	Strategy      string `json:"strategy"`
	MetroLocation string `json:"metro_location,omitempty"`
	City          string `json:"city"`
	State         string `json:"state,omitempty"`
	OriginalInput string `json:"original_input"`
	MatchedMetro  string `json:"matched_metro,omitempty"`
}

type metroAlias struct {
	alias string
	metro string
}

// metroAreas maps common aliases to the vendor's canonical metro labels.
// Kept as an ordered slice so substring matching is deterministic.
var metroAreas = []metroAlias{
	{"san francisco", "san francisco, california"},
	{"san francisco bay area", "san francisco, california"},
	{"bay area", "san francisco, california"},
	{"sf", "san francisco, california"},
	{"los angeles", "los angeles, california"},
	{"la", "los angeles, california"},
	{"new york", "new york, new york"},
	{"new york city", "new york, new york"},
	{"nyc", "new york, new york"},
	{"chicago", "chicago, illinois"},
	{"boston", "boston, massachusetts"},
	{"washington dc", "washington, district of columbia"},
	{"dc", "washington, district of columbia"},
	{"seattle", "seattle, washington"},
	{"atlanta", "atlanta, georgia"},
	{"dallas", "dallas, texas"},
	{"houston", "houston, texas"},
	{"miami", "miami, florida"},
	{"denver", "denver, colorado"},
	{"phoenix", "phoenix, arizona"},
	{"philadelphia", "philadelphia, pennsylvania"},
	{"detroit", "detroit, michigan"},
	{"minneapolis", "minneapolis, minnesota"},
	{"austin", "austin, texas"},
	{"san diego", "san diego, california"},
	{"portland", "portland, oregon"},
	{"orlando", "orlando, florida"},
	{"tampa", "tampa, florida"},
	{"nashville", "nashville, tennessee"},
	{"charlotte", "charlotte, north carolina"},
	{"pittsburgh", "pittsburgh, pennsylvania"},
	{"cleveland", "cleveland, ohio"},
	{"cincinnati", "cincinnati, ohio"},
	{"columbus", "columbus, ohio"},
	{"indianapolis", "indianapolis, indiana"},
	{"milwaukee", "milwaukee, wisconsin"},
	{"kansas city", "kansas city, missouri"},
	{"sacramento", "sacramento, california"},
	{"las vegas", "las vegas, nevada"},
	{"salt lake city", "salt lake city, utah"},
	{"raleigh", "raleigh, north carolina"},
	{"richmond", "richmond, virginia"},
	{"birmingham", "birmingham, alabama"},
	{"memphis", "memphis, tennessee"},
	{"louisville", "louisville, kentucky"},
	{"jacksonville", "jacksonville, florida"},
	{"oklahoma city", "oklahoma city, oklahoma"},
	{"buffalo", "buffalo, new york"},
	{"rochester", "rochester, new york"},
	{"albany", "albany, new york"},
	{"hartford", "hartford, connecticut"},
	{"providence", "providence, rhode island"},
}

// Classify maps a free-text location to either a metro search key or a
// (city, state) pair. It never errors and never touches the network.
func Classify(locationInput string) LocationStrategy {
	locationLower := strings.ToLower(strings.TrimSpace(locationInput))

	city := locationLower
	state := ""
	if idx := strings.Index(locationLower, ","); idx >= 0 {
		city = strings.TrimSpace(locationLower[:idx])
		state = strings.TrimSpace(locationLower[idx+1:])
		// only the first segment after the comma is the state/region
		if idx2 := strings.Index(state, ","); idx2 >= 0 {
			state = strings.TrimSpace(state[:idx2])
		}
	}

	matchedMetro, metroLocation := lookupMetro(city, locationLower)

	if metroLocation != "" {
		return LocationStrategy{
			Strategy:      METRO_PRIMARY,
			MetroLocation: metroLocation,
			City:          city,
			State:         state,
			OriginalInput: locationInput,
			MatchedMetro:  matchedMetro,
		}
	}

	return LocationStrategy{
		Strategy:      LOCALITY_PRIMARY,
		City:          city,
		State:         state,
		OriginalInput: locationInput,
	}
}

func lookupMetro(city, fullLocation string) (alias, metro string) {
	// exact hits on the city, then on the full lowered input
	for _, entry := range metroAreas {
		if entry.alias == city {
			return entry.alias, entry.metro
		}
	}
	for _, entry := range metroAreas {
		if entry.alias == fullLocation {
			return entry.alias, entry.metro
		}
	}

	if city == "" {
		return "", ""
	}

	// partial match, e.g. "san francisco east bay" vs "san francisco";
	// first hit in table order wins
	for _, entry := range metroAreas {
		if strings.Contains(city, entry.alias) || strings.Contains(entry.alias, city) {
			return entry.alias, entry.metro
		}
	}

	return "", ""
}
