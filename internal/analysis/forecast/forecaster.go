// Package forecast implements the per-country trend forecaster. Each
// country gets an independent linear model of value on year, evaluated
// on a chronological holdout, with normal-approximation prediction
// intervals derived from the residual standard error.
package forecast

import (
	"fmt"
	"sort"
	"sync"

	"github.com/econify/globetrends/pkg/models"
	"github.com/econify/globetrends/pkg/utils"
)

// DefaultConfidence is the confidence level used when a caller passes
// a value outside (0, 1).
const DefaultConfidence = 0.95

// defaultHoldout is the fraction of each country's observations held
// out chronologically for evaluation.
const defaultHoldout = 0.2

// Forecaster owns the per-country model registry. Training replaces a
// country's model wholesale; models for different countries never share
// fitted parameters. All methods are safe for concurrent use — the
// registry is the only shared state and is guarded by one lock.
type Forecaster struct {
	mu      sync.RWMutex
	models  map[string]models.CountryModel
	holdout float64
}

// NewForecaster creates a forecaster with an empty model registry.
// The registry is unbounded: the country universe is small (~200), so
// no eviction is needed; call Reset to drop all models.
func NewForecaster() *Forecaster {
	return &Forecaster{
		models:  make(map[string]models.CountryModel),
		holdout: defaultHoldout,
	}
}

// Train fits one linear model per country with at least two usable
// observations and returns holdout metrics keyed by country. Countries
// with insufficient or degenerate data are absent from the result —
// exclusion, not error, signals insufficiency. The split is
// chronological, so identical input always yields identical metrics.
func (f *Forecaster) Train(table models.TimeSeriesTable) map[string]models.ModelMetrics {
	result := make(map[string]models.ModelMetrics)

	for country, group := range table.ByCountry() {
		xs, ys := usableXY(group)
		n := len(xs)
		if n < 2 {
			continue
		}

		testN := int(float64(n) * f.holdout)
		if n-testN < 2 {
			testN = n - 2
		}
		trainN := n - testN

		fit, ok := fitLine(xs[:trainN], ys[:trainN])
		if !ok {
			continue
		}

		// With no holdout points (tiny series) evaluate on the
		// training portion so the country still reports metrics.
		evalX, evalY := xs[trainN:], ys[trainN:]
		if len(evalX) == 0 {
			evalX, evalY = xs[:trainN], ys[:trainN]
		}
		r2, rmse, mae := evaluate(fit, evalX, evalY)

		m := models.CountryModel{
			Country:        country,
			Slope:          fit.Slope,
			Intercept:      fit.Intercept,
			TrainStartYear: int(xs[0]),
			TrainEndYear:   int(xs[n-1]),
			TrainingPoints: trainN,
			ResidualSE:     residualSE(fit, xs[:trainN], ys[:trainN]),
			Metrics:        models.ModelMetrics{R2: r2, RMSE: rmse, MAE: mae},
		}

		f.mu.Lock()
		f.models[country] = m // replace-on-retrain
		f.mu.Unlock()

		result[country] = m.Metrics
	}
	return result
}

// Predict returns fitted values for every year present in the table,
// for countries that have a trained model. Countries without a model
// contribute no rows.
func (f *Forecaster) Predict(table models.TimeSeriesTable) []models.Prediction {
	var preds []models.Prediction
	for country, group := range table.ByCountry() {
		m, ok := f.Model(country)
		if !ok {
			continue
		}
		seen := make(map[int]bool)
		for _, p := range group {
			if seen[p.Year] {
				continue
			}
			seen[p.Year] = true
			v := m.Fitted(p.Year)
			preds = append(preds, models.Prediction{
				Country: country, Year: p.Year, Value: v, Lower: v, Upper: v,
			})
		}
	}
	sortPredictions(preds)
	return preds
}

// PredictNextPeriod forecasts the period after each trained country's
// last training year. The forecast year is always max(training years)
// + 1; it is never caller-chosen (use Predict for arbitrary years).
// Countries in the table without a trained model are omitted.
func (f *Forecaster) PredictNextPeriod(table models.TimeSeriesTable) []models.Prediction {
	return f.nextPeriod(table, 0)
}

// PredictWithConfidence is PredictNextPeriod with a symmetric
// confidence band: point estimate ± z(level)·residual standard error.
// The band widens with the confidence level and collapses to the point
// estimate when the training residual spread is zero. Levels outside
// (0, 1) fall back to DefaultConfidence.
func (f *Forecaster) PredictWithConfidence(table models.TimeSeriesTable, confidenceLevel float64) []models.Prediction {
	if confidenceLevel <= 0 || confidenceLevel >= 1 {
		confidenceLevel = DefaultConfidence
	}
	return f.nextPeriod(table, confidenceLevel)
}

// nextPeriod builds next-period forecasts; level 0 means no band.
func (f *Forecaster) nextPeriod(table models.TimeSeriesTable, level float64) []models.Prediction {
	var preds []models.Prediction
	for _, country := range table.Countries() {
		m, ok := f.Model(country)
		if !ok {
			continue
		}
		year := m.TrainEndYear + 1
		v := m.Fitted(year)
		p := models.Prediction{Country: country, Year: year, Value: v, Lower: v, Upper: v}
		if level > 0 {
			half := zQuantile((1+level)/2) * m.ResidualSE
			p.Lower = v - half
			p.Upper = v + half
		}
		preds = append(preds, p)
	}
	return preds
}

// Metrics returns a snapshot of holdout metrics for all trained models.
func (f *Forecaster) Metrics() map[string]models.ModelMetrics {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]models.ModelMetrics, len(f.models))
	for c, m := range f.models {
		out[c] = m.Metrics
	}
	return out
}

// Model returns the trained model for a country. ok is false when the
// country was never trained or had insufficient data — the caller
// decides whether to hide or gray out that country's forecast.
func (f *Forecaster) Model(country string) (models.CountryModel, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	m, ok := f.models[country]
	return m, ok
}

// Reset drops all trained models.
func (f *Forecaster) Reset() {
	f.mu.Lock()
	f.models = make(map[string]models.CountryModel)
	f.mu.Unlock()
}

// ModelSummary renders a human-readable report of one country's model:
// metrics plus a qualitative fit band. ok is false for untrained
// countries; no summary text is fabricated for them.
func (f *Forecaster) ModelSummary(country string) (string, bool) {
	m, ok := f.Model(country)
	if !ok {
		return "", false
	}

	quality := "weak fit"
	switch {
	case m.Metrics.R2 >= 0.8:
		quality = "good fit"
	case m.Metrics.R2 >= 0.5:
		quality = "moderate fit"
	}

	return fmt.Sprintf(
		"Trend model for %s (%d–%d, %d training points)\n"+
			"  R²:   %.4f (%s)\n"+
			"  RMSE: %s\n"+
			"  MAE:  %s\n"+
			"  Trend: %s per year",
		m.Country, m.TrainStartYear, m.TrainEndYear, m.TrainingPoints,
		m.Metrics.R2, quality,
		utils.FormatLargeNumber(m.Metrics.RMSE, 2),
		utils.FormatLargeNumber(m.Metrics.MAE, 2),
		utils.FormatLargeNumber(m.Slope, 2),
	), true
}

// usableXY extracts (year, value) pairs from a country group already
// sorted by year, skipping missing and malformed values.
func usableXY(group []models.TimeSeriesPoint) (xs, ys []float64) {
	for _, p := range group {
		if !p.HasValue() {
			continue
		}
		xs = append(xs, float64(p.Year))
		ys = append(ys, *p.Value)
	}
	return xs, ys
}

func sortPredictions(preds []models.Prediction) {
	sort.Slice(preds, func(i, j int) bool {
		if preds[i].Country != preds[j].Country {
			return preds[i].Country < preds[j].Country
		}
		return preds[i].Year < preds[j].Year
	})
}
