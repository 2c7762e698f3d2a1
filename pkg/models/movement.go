package models

// Direction classifies a significant year-over-year movement.
type Direction string

const (
	DirectionRise Direction = "rise"
	DirectionDip  Direction = "dip"
)

// MovementRecord is a year-over-year change between the two nearest
// observed years of one country. Transient: produced during movement
// detection and discarded after ranking.
type MovementRecord struct {
	Country       string  `json:"country"`
	FromYear      int     `json:"from_year"`
	ToYear        int     `json:"to_year"`
	FromValue     float64 `json:"from_value"`
	ToValue       float64 `json:"to_value"`
	PercentChange float64 `json:"percent_change"`
}

// ExplanationEntry is a significant movement retained after filtering,
// with an optional contextual reason drawn from the event calendar.
type ExplanationEntry struct {
	Country       string    `json:"country"`
	Direction     Direction `json:"direction"`
	Year          int       `json:"year"` // year the movement completed (ToYear)
	PercentChange float64   `json:"percent_change"`
	Reason        string    `json:"reason,omitempty"`
}
