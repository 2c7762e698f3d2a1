package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/econify/globetrends/internal/provider"
	"github.com/econify/globetrends/pkg/models"
)

// wbEntry is one observation in a World Bank v2 indicator response.
// The API returns a two-element array: [metadata, []wbEntry].
type wbEntry struct {
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	CountryISO3 string   `json:"countryiso3code"`
	Date        string   `json:"date"`
	Value       *float64 `json:"value"`
}

// ---------------------------------------------------------------------------
// IndicatorSeries — one indicator across countries and years.
// Endpoint: /country/{code}/indicator/{indicator}?date={start}:{end}
// ---------------------------------------------------------------------------

type seriesFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newSeriesFetcher(p *Provider) *seriesFetcher {
	return &seriesFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.DatasetIndicatorSeries,
			"World Bank indicator time series by country and year",
			[]string{provider.ParamIndicator, provider.ParamCountries},
			[]string{provider.ParamStartYear, provider.ParamEndYear},
			30*time.Minute, // indicator data updates at most yearly
			10, time.Second,
		),
		p: p,
	}
}

func (f *seriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(provider.DatasetIndicatorSeries, params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		r := cached.(*provider.FetchResult)
		cp := *r
		cp.Cached = true
		return &cp, nil
	}

	code := IndicatorCode(params[provider.ParamIndicator])
	countries := splitCountries(params[provider.ParamCountries])
	if len(countries) == 0 {
		return nil, &provider.ErrMissingParam{Param: provider.ParamCountries}
	}
	startYear, endYear := yearRange(params)

	var mu sync.Mutex
	var table models.TimeSeriesTable

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	for _, country := range countries {
		country := country
		g.Go(func() error {
			if err := f.RateLimit(gctx); err != nil {
				return err
			}
			points, err := f.fetchCountry(gctx, code, country, startYear, endYear)
			if err != nil {
				// One unreachable country never fails the whole request.
				return nil
			}
			mu.Lock()
			table = append(table, points...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table = table.Sorted()
	result := newResult(table)
	f.CacheSet(cacheKey, result)
	return result, nil
}

// fetchCountry retrieves one country's observations for one indicator.
func (f *seriesFetcher) fetchCountry(ctx context.Context, indicatorCode, country string, startYear, endYear int) ([]models.TimeSeriesPoint, error) {
	url := fmt.Sprintf("%s/country/%s/indicator/%s?date=%d:%d&format=json&per_page=1000",
		baseURL, country, indicatorCode, startYear, endYear)

	var raw []json.RawMessage
	if err := f.p.fetchJSON(ctx, url, &raw); err != nil {
		return nil, fmt.Errorf("worldbank series %s/%s: %w", country, indicatorCode, err)
	}
	// Response is [metadata, data]; data is null for unknown codes.
	if len(raw) < 2 || string(raw[1]) == "null" {
		return nil, nil
	}

	var entries []wbEntry
	if err := json.Unmarshal(raw[1], &entries); err != nil {
		return nil, fmt.Errorf("worldbank series %s/%s: %w", country, indicatorCode, err)
	}

	var points []models.TimeSeriesPoint
	for _, e := range entries {
		if e.Value == nil {
			continue
		}
		year, err := strconv.Atoi(e.Date)
		if err != nil {
			continue // quarterly or monthly periods are out of scope
		}
		iso3 := e.CountryISO3
		if iso3 == "" {
			iso3 = country
		}
		points = append(points, models.NewPoint(e.Country.Value, iso3, year, *e.Value))
	}
	return points, nil
}

// splitCountries parses the comma-separated countries parameter.
func splitCountries(s string) []string {
	var out []string
	for _, c := range strings.Split(s, ",") {
		c = strings.ToUpper(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// yearRange reads the optional year bounds, defaulting to 2000 through
// last year.
func yearRange(params provider.QueryParams) (start, end int) {
	start, end = 2000, time.Now().Year()-1
	if s := params[provider.ParamStartYear]; s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			start = v
		}
	}
	if s := params[provider.ParamEndYear]; s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			end = v
		}
	}
	if end < start {
		start, end = end, start
	}
	return start, end
}

// newResult wraps data in a FetchResult stamped with the current time.
func newResult(data any) *provider.FetchResult {
	return &provider.FetchResult{
		Data:      data,
		FetchedAt: time.Now(),
	}
}
