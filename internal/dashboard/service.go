// Package dashboard orchestrates data acquisition and analysis for the
// CLI and the HTTP API. It routes fetches through the provider
// registry, keeps a read-through disk cache of indicator tables, and
// exposes the movement, forecast, and statistics engines behind one
// service type.
package dashboard

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/econify/globetrends/internal/analysis/forecast"
	"github.com/econify/globetrends/internal/analysis/movements"
	"github.com/econify/globetrends/internal/analysis/stats"
	"github.com/econify/globetrends/internal/config"
	"github.com/econify/globetrends/internal/datasource"
	"github.com/econify/globetrends/internal/infra"
	"github.com/econify/globetrends/internal/provider"
	"github.com/econify/globetrends/pkg/models"
)

// SeriesQuery identifies one indicator table.
type SeriesQuery struct {
	Indicator string   // short key ("gdp") or raw source code
	Countries []string // ISO3 codes
	StartYear int
	EndYear   int // 0 = last complete year
}

// normalize fills defaults and produces a stable representation.
func (q SeriesQuery) normalize(cfg *config.Config) SeriesQuery {
	if len(q.Countries) == 0 {
		q.Countries = cfg.Fetch.DefaultCountries
	}
	upper := make([]string, 0, len(q.Countries))
	for _, c := range q.Countries {
		upper = append(upper, strings.ToUpper(strings.TrimSpace(c)))
	}
	sort.Strings(upper)
	q.Countries = upper

	if q.StartYear == 0 {
		q.StartYear = cfg.Fetch.StartYear
	}
	if q.EndYear == 0 {
		if cfg.Fetch.EndYear != 0 {
			q.EndYear = cfg.Fetch.EndYear
		} else {
			q.EndYear = time.Now().Year() - 1
		}
	}
	return q
}

// cacheKey is the disk cache key for this query.
func (q SeriesQuery) cacheKey() string {
	return fmt.Sprintf("series:%s:%s:%d:%d",
		q.Indicator, strings.Join(q.Countries, ","), q.StartYear, q.EndYear)
}

// Service is the dashboard backend shared by the CLI and the API server.
type Service struct {
	cfg        *config.Config
	registry   *provider.Registry
	disk       *infra.DiskCache
	engine     *movements.Engine
	forecaster *forecast.Forecaster
	news       *datasource.News
}

// New creates a dashboard service backed by the given registry.
func New(cfg *config.Config, registry *provider.Registry) *Service {
	s := &Service{
		cfg:        cfg,
		registry:   registry,
		engine:     movements.NewEngine(),
		forecaster: forecast.NewForecaster(),
		news:       datasource.NewNews(),
	}
	if cfg.Cache.Enabled && cfg.Cache.Dir != "" {
		s.disk = infra.NewDiskCache(cfg.Cache.Dir, time.Duration(cfg.Cache.MaxAge)*time.Second)
	}
	return s
}

// Series returns the indicator table for the query, reading through the
// disk cache when enabled.
func (s *Service) Series(ctx context.Context, q SeriesQuery) (models.TimeSeriesTable, error) {
	q = q.normalize(s.cfg)
	if q.Indicator == "" {
		return nil, fmt.Errorf("indicator is required")
	}

	key := q.cacheKey()
	if s.disk != nil {
		if table, ok := s.disk.Load(key); ok {
			return table, nil
		}
	}

	result, err := s.registry.Fetch(ctx, provider.DatasetIndicatorSeries, provider.QueryParams{
		provider.ParamIndicator: q.Indicator,
		provider.ParamCountries: strings.Join(q.Countries, ","),
		provider.ParamStartYear: strconv.Itoa(q.StartYear),
		provider.ParamEndYear:   strconv.Itoa(q.EndYear),
		provider.ParamProvider:  s.cfg.Fetch.Provider,
	})
	if err != nil {
		return nil, err
	}

	table, ok := result.Data.(models.TimeSeriesTable)
	if !ok {
		return nil, fmt.Errorf("unexpected series payload type %T", result.Data)
	}

	if s.disk != nil && len(table) > 0 {
		s.disk.Store(key, table)
	}
	return table, nil
}

// Countries lists the countries the configured provider can serve.
func (s *Service) Countries(ctx context.Context) ([]models.Country, error) {
	result, err := s.registry.Fetch(ctx, provider.DatasetCountryList, provider.QueryParams{
		provider.ParamProvider: s.cfg.Fetch.Provider,
	})
	if err != nil {
		return nil, err
	}
	countries, ok := result.Data.([]models.Country)
	if !ok {
		return nil, fmt.Errorf("unexpected country payload type %T", result.Data)
	}
	return countries, nil
}

// Indicators lists the indicators available to the dashboard.
func (s *Service) Indicators(ctx context.Context) ([]models.Indicator, error) {
	result, err := s.registry.Fetch(ctx, provider.DatasetIndicatorCatalog, provider.QueryParams{
		provider.ParamProvider: s.cfg.Fetch.Provider,
	})
	if err != nil {
		return nil, err
	}
	indicators, ok := result.Data.([]models.Indicator)
	if !ok {
		return nil, fmt.Errorf("unexpected indicator payload type %T", result.Data)
	}
	return indicators, nil
}

// Movements fetches the series and explains its significant swings.
// An empty slice means there is nothing to say; callers render nothing.
func (s *Service) Movements(ctx context.Context, q SeriesQuery, topN int, minChangePct float64) ([]models.ExplanationEntry, error) {
	table, err := s.Series(ctx, q)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = s.cfg.Analysis.TopMovements
	}
	if minChangePct <= 0 {
		minChangePct = s.cfg.Analysis.MinChangePct
	}
	return s.engine.Detect(table, q.Indicator, topN, minChangePct), nil
}

// MovementLines renders movement explanations as display strings. A nil
// result means no significant movements were found.
func (s *Service) MovementLines(ctx context.Context, q SeriesQuery, topN int, minChangePct float64) ([]string, error) {
	table, err := s.Series(ctx, q)
	if err != nil {
		return nil, err
	}
	if topN <= 0 {
		topN = s.cfg.Analysis.TopMovements
	}
	if minChangePct <= 0 {
		minChangePct = s.cfg.Analysis.MinChangePct
	}
	return s.engine.GenerateExplanations(table, q.Indicator, topN, minChangePct), nil
}

// ForecastNext trains per-country models on the series and predicts the
// year after each country's last training year.
func (s *Service) ForecastNext(ctx context.Context, q SeriesQuery) ([]models.Prediction, map[string]models.ModelMetrics, error) {
	table, err := s.Series(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	metrics := s.forecaster.Train(table)
	return s.forecaster.PredictNextPeriod(table), metrics, nil
}

// ForecastWithConfidence is ForecastNext with an interval at the given
// confidence level.
func (s *Service) ForecastWithConfidence(ctx context.Context, q SeriesQuery, level float64) ([]models.Prediction, map[string]models.ModelMetrics, error) {
	table, err := s.Series(ctx, q)
	if err != nil {
		return nil, nil, err
	}
	if level <= 0 {
		level = s.cfg.Analysis.Confidence
	}
	metrics := s.forecaster.Train(table)
	return s.forecaster.PredictWithConfidence(table, level), metrics, nil
}

// ForecastFitted returns fitted values for the years present in the
// series, for charting the trend line.
func (s *Service) ForecastFitted(ctx context.Context, q SeriesQuery) ([]models.Prediction, error) {
	table, err := s.Series(ctx, q)
	if err != nil {
		return nil, err
	}
	s.forecaster.Train(table)
	return s.forecaster.Predict(table), nil
}

// ForecastSummary returns the human-readable model report for one
// country, training on the series first.
func (s *Service) ForecastSummary(ctx context.Context, q SeriesQuery, country string) (string, error) {
	table, err := s.Series(ctx, q)
	if err != nil {
		return "", err
	}
	s.forecaster.Train(table)
	summary, ok := s.forecaster.ModelSummary(country)
	if !ok {
		return "", fmt.Errorf("no trained model for %q", country)
	}
	return summary, nil
}

// Statistics computes per-country descriptive statistics for the series.
func (s *Service) Statistics(ctx context.Context, q SeriesQuery) ([]models.CountryStats, error) {
	table, err := s.Series(ctx, q)
	if err != nil {
		return nil, err
	}
	return stats.CountryStatistics(table), nil
}

// CAGR computes compound annual growth rates for the series.
func (s *Service) CAGR(ctx context.Context, q SeriesQuery) ([]models.CAGRResult, error) {
	table, err := s.Series(ctx, q)
	if err != nil {
		return nil, err
	}
	return stats.CAGR(table), nil
}

// News returns recent macroeconomic news articles.
func (s *Service) News(ctx context.Context, limit int) ([]models.NewsArticle, error) {
	return s.news.GetMacroNews(ctx, limit)
}

// Forecaster exposes the model registry, mainly for status reporting.
func (s *Service) Forecaster() *forecast.Forecaster {
	return s.forecaster
}
