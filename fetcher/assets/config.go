package assets

// Consts used across the package.
const (
	championPrefix = "ddragon:champions:"
	versionKey     = "ddragon:versions"

	// DefaultBaseURL is the data dragon root, always ending with a slash.
	DefaultBaseURL  = "https://ddragon.leagueoflegends.com/"
	DefaultLanguage = "en_US"

	// How many versions are kept on the stores.
	storedVersions = 3
)

// Definition for extracting the champion data.
type fullChampion struct {
	Version string                     `json:"version"`
	Data    map[string]ddragonChampion `json:"data"`
}

// A single champion as listed by the champion.json.
type ddragonChampion struct {
	ID    string   `json:"id"`
	Key   string   `json:"key"`
	Name  string   `json:"name"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
	Image struct {
		Full   string  `json:"full"`
		Sprite string  `json:"sprite"`
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		W      float64 `json:"w"`
		H      float64 `json:"h"`
	} `json:"image"`
}
