package exam

// Band maps a minimum total score to an approximate percentile and rank
// label. Purely presentational; not a psychometric model.
type Band struct {
	MinScore   int     `json:"min_score"`
	Percentile float64 `json:"percentile"`
	Rank       string  `json:"rank"`
}

// bands is evaluated top-down; the first row whose MinScore the total meets
// wins. Scores below the lowest bound fall through to floorBand.
var bands = []Band{
	{MinScore: 180, Percentile: 99.9, Rank: "Top 100"},
	{MinScore: 150, Percentile: 99.5, Rank: "Top 500"},
	{MinScore: 120, Percentile: 99.0, Rank: "Top 1,000"},
	{MinScore: 100, Percentile: 97.5, Rank: "Top 3,000"},
	{MinScore: 80, Percentile: 95.0, Rank: "Top 7,500"},
	{MinScore: 60, Percentile: 90.0, Rank: "Top 15,000"},
	{MinScore: 45, Percentile: 80.0, Rank: "Top 30,000"},
	{MinScore: 30, Percentile: 65.0, Rank: "Top 55,000"},
	{MinScore: 15, Percentile: 45.0, Rank: "Top 90,000"},
}

var floorBand = Band{MinScore: 0, Percentile: 25.0, Rank: "Below Top 90,000"}

// BandFor returns the percentile band for a total score.
func BandFor(totalMarks int) Band {
	for _, b := range bands {
		if totalMarks >= b.MinScore {
			return b
		}
	}
	return floorBand
}
