// Package stats computes descriptive statistics over country time
// series tables: per-country summaries, growth rates, CAGR, and
// pairwise comparisons.
package stats

import (
	"math"
	"sort"

	"github.com/econify/globetrends/pkg/models"
)

// CountryStatistics summarises every country in the table. Countries
// with no observed values are omitted.
func CountryStatistics(table models.TimeSeriesTable) []models.CountryStats {
	groups := table.ByCountry()

	var out []models.CountryStats
	for _, country := range table.Countries() {
		values, latest, latestYear := observedValues(groups[country])
		if len(values) == 0 {
			continue
		}
		out = append(out, models.CountryStats{
			Country:    country,
			Count:      len(values),
			Mean:       mean(values),
			Median:     median(values),
			Min:        minOf(values),
			Max:        maxOf(values),
			StdDev:     stdDev(values),
			Latest:     latest,
			LatestYear: latestYear,
		})
	}
	return out
}

// GrowthRates returns year-over-year growth in percent for every
// consecutive pair of observed values, per country. Pairs whose base
// value is zero are skipped.
func GrowthRates(table models.TimeSeriesTable) []models.GrowthPoint {
	groups := table.ByCountry()

	var out []models.GrowthPoint
	for _, country := range table.Countries() {
		var prev *models.TimeSeriesPoint
		for i := range groups[country] {
			p := groups[country][i]
			if !p.HasValue() {
				continue
			}
			if prev != nil && *prev.Value != 0 {
				out = append(out, models.GrowthPoint{
					Country:    country,
					Year:       p.Year,
					GrowthRate: (*p.Value - *prev.Value) / math.Abs(*prev.Value) * 100,
				})
			}
			prev = &groups[country][i]
		}
	}
	return out
}

// CAGR computes the compound annual growth rate between the first and
// last observed value of each country, in percent. Countries whose
// span is under a year or whose endpoint values make the rate
// undefined (non-positive start, negative end) are omitted.
func CAGR(table models.TimeSeriesTable) []models.CAGRResult {
	groups := table.ByCountry()

	var out []models.CAGRResult
	for _, country := range table.Countries() {
		first, last, ok := endpoints(groups[country])
		if !ok || last.Year <= first.Year {
			continue
		}
		start, end := *first.Value, *last.Value
		if start <= 0 || end < 0 {
			continue
		}
		years := float64(last.Year - first.Year)
		rate := (math.Pow(end/start, 1/years) - 1) * 100
		out = append(out, models.CAGRResult{
			Country:    country,
			StartYear:  first.Year,
			EndYear:    last.Year,
			StartValue: start,
			EndValue:   end,
			CAGR:       rate,
		})
	}
	return out
}

// LatestValues returns the most recent observation per country, ranked
// by value descending.
func LatestValues(table models.TimeSeriesTable) []models.TimeSeriesPoint {
	return table.Latest()
}

// CompareCountries contrasts two countries' series. ok is false when
// either country has no observed values.
func CompareCountries(table models.TimeSeriesTable, a, b string) (models.Comparison, bool) {
	groups := table.ByCountry()
	va, la, _ := observedValues(groups[a])
	vb, lb, _ := observedValues(groups[b])
	if len(va) == 0 || len(vb) == 0 {
		return models.Comparison{}, false
	}
	return models.Comparison{
		Country1:   a,
		Country2:   b,
		MeanDiff:   mean(va) - mean(vb),
		MedianDiff: median(va) - median(vb),
		LatestDiff: la - lb,
	}, true
}

// observedValues collects the observed values of one country group
// (already year-ascending) plus its latest observation.
func observedValues(group []models.TimeSeriesPoint) (values []float64, latest float64, latestYear int) {
	for _, p := range group {
		if !p.HasValue() {
			continue
		}
		values = append(values, *p.Value)
		latest = *p.Value
		latestYear = p.Year
	}
	return values, latest, latestYear
}

// endpoints returns the earliest and latest observed points of a
// year-ascending group.
func endpoints(group []models.TimeSeriesPoint) (first, last models.TimeSeriesPoint, ok bool) {
	for _, p := range group {
		if !p.HasValue() {
			continue
		}
		if !ok {
			first = p
			ok = true
		}
		last = p
	}
	return first, last, ok
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// stdDev is the sample standard deviation; 0 for a single value.
func stdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mu := mean(values)
	var ss float64
	for _, v := range values {
		d := v - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}
