// Package models defines the shared data types used across GlobeTrends:
// indicator time series, detected movements, forecasts, and statistics.
package models

import (
	"math"
	"sort"
)

// TimeSeriesPoint is a single (country, year) observation of an indicator.
// Value is nil when the observation is missing for that year.
type TimeSeriesPoint struct {
	Country     string   `json:"country"`
	CountryCode string   `json:"country_code"`
	Year        int      `json:"year"`
	Value       *float64 `json:"value"`
}

// HasValue reports whether the point carries a usable numeric value.
// NaN and infinities are treated as absent, the same as nil.
func (p TimeSeriesPoint) HasValue() bool {
	if p.Value == nil {
		return false
	}
	v := *p.Value
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Float returns a pointer to v, for building points inline.
func Float(v float64) *float64 { return &v }

// NewPoint builds an observed TimeSeriesPoint.
func NewPoint(country, code string, year int, value float64) TimeSeriesPoint {
	return TimeSeriesPoint{Country: country, CountryCode: code, Year: year, Value: Float(value)}
}

// TimeSeriesTable is a collection of observations for one indicator.
// Rows may arrive in any order; consumers establish per-country year
// ordering via ByCountry. Within a country there is at most one point
// per year; years need not be contiguous.
type TimeSeriesTable []TimeSeriesPoint

// Countries returns the distinct country names in the table, sorted.
func (t TimeSeriesTable) Countries() []string {
	seen := make(map[string]bool)
	var out []string
	for _, p := range t {
		if !seen[p.Country] {
			seen[p.Country] = true
			out = append(out, p.Country)
		}
	}
	sort.Strings(out)
	return out
}

// ByCountry groups the table by country with each group sorted by year
// ascending. The input table is not modified.
func (t TimeSeriesTable) ByCountry() map[string][]TimeSeriesPoint {
	groups := make(map[string][]TimeSeriesPoint)
	for _, p := range t {
		groups[p.Country] = append(groups[p.Country], p)
	}
	for _, g := range groups {
		sort.Slice(g, func(i, j int) bool { return g[i].Year < g[j].Year })
	}
	return groups
}

// Sorted returns a copy of the table ordered by (country, year).
func (t TimeSeriesTable) Sorted() TimeSeriesTable {
	out := make(TimeSeriesTable, len(t))
	copy(out, t)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Country != out[j].Country {
			return out[i].Country < out[j].Country
		}
		return out[i].Year < out[j].Year
	})
	return out
}

// YearRange returns the minimum and maximum year present in the table.
// ok is false for an empty table.
func (t TimeSeriesTable) YearRange() (minYear, maxYear int, ok bool) {
	if len(t) == 0 {
		return 0, 0, false
	}
	minYear, maxYear = t[0].Year, t[0].Year
	for _, p := range t[1:] {
		if p.Year < minYear {
			minYear = p.Year
		}
		if p.Year > maxYear {
			maxYear = p.Year
		}
	}
	return minYear, maxYear, true
}

// Latest returns the most recent observed point per country, sorted by
// value descending. Countries with no usable values are omitted.
func (t TimeSeriesTable) Latest() []TimeSeriesPoint {
	var latest []TimeSeriesPoint
	for _, group := range t.ByCountry() {
		for i := len(group) - 1; i >= 0; i-- {
			if group[i].HasValue() {
				latest = append(latest, group[i])
				break
			}
		}
	}
	sort.Slice(latest, func(i, j int) bool {
		return *latest[i].Value > *latest[j].Value
	})
	return latest
}
