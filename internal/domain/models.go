package domain

// RatingSample is one player's rating immediately after their last rated
// game of the configured time class on one UTC calendar day.
type RatingSample struct {
	Date   string `json:"date"` // YYYY-MM-DD
	Rating int    `json:"rating"`
	Epoch  int64  `json:"epoch"` // end_time of the game the sample came from
}

// HistorySeries is ordered strictly ascending by Date.
type HistorySeries []RatingSample

type Side struct {
	Username string `json:"username"`
	Rating   int    `json:"rating"`
}

// GameRecord is one completed game as exposed to consumers. Never mutated
// after construction.
type GameRecord struct {
	URL       string `json:"url,omitempty"`
	EndTime   int64  `json:"end_time"`
	TimeClass string `json:"time_class"`
	Rated     bool   `json:"rated"`
	White     Side   `json:"white"`
	Black     Side   `json:"black"`
}
