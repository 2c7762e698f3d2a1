package models

// ModelMetrics holds holdout evaluation metrics for one country model.
type ModelMetrics struct {
	R2   float64 `json:"r_squared"`
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// CountryModel is the fitted per-country regression state owned by the
// forecaster. Retraining replaces the whole value; it is never mutated
// in place.
type CountryModel struct {
	Country        string       `json:"country"`
	Slope          float64      `json:"slope"`
	Intercept      float64      `json:"intercept"`
	TrainStartYear int          `json:"train_start_year"`
	TrainEndYear   int          `json:"train_end_year"`
	TrainingPoints int          `json:"training_points"`
	ResidualSE     float64      `json:"residual_se"`
	Metrics        ModelMetrics `json:"metrics"`
}

// Fitted returns the model's predicted value for a year. Extrapolation
// beyond the training range is permitted; callers interpret far-horizon
// predictions as lower confidence.
func (m CountryModel) Fitted(year int) float64 {
	return m.Slope*float64(year) + m.Intercept
}

// Prediction is a single forecast row, optionally carrying a confidence
// band (Lower == Upper == Value when no band was requested).
type Prediction struct {
	Country string  `json:"country"`
	Year    int     `json:"year"`
	Value   float64 `json:"value"`
	Lower   float64 `json:"lower_bound"`
	Upper   float64 `json:"upper_bound"`
}
