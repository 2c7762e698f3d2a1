package models

// CountryStats holds descriptive statistics of one country's series.
type CountryStats struct {
	Country    string  `json:"country"`
	Count      int     `json:"count"`
	Mean       float64 `json:"mean"`
	Median     float64 `json:"median"`
	Min        float64 `json:"min"`
	Max        float64 `json:"max"`
	StdDev     float64 `json:"std"` // sample standard deviation
	Latest     float64 `json:"latest"`
	LatestYear int     `json:"latest_year"`
}

// CAGRResult holds the compound annual growth rate of one country
// between its first and last observed values.
type CAGRResult struct {
	Country    string  `json:"country"`
	StartYear  int     `json:"start_year"`
	EndYear    int     `json:"end_year"`
	StartValue float64 `json:"start_value"`
	EndValue   float64 `json:"end_value"`
	CAGR       float64 `json:"cagr"` // percent
}

// GrowthPoint is a year-over-year growth observation for one country.
type GrowthPoint struct {
	Country    string  `json:"country"`
	Year       int     `json:"year"`
	GrowthRate float64 `json:"growth_rate"` // percent vs previous observed year
}

// Comparison summarises how two countries' series differ.
type Comparison struct {
	Country1   string  `json:"country1"`
	Country2   string  `json:"country2"`
	MeanDiff   float64 `json:"mean_diff"`
	MedianDiff float64 `json:"median_diff"`
	LatestDiff float64 `json:"latest_diff"`
}
