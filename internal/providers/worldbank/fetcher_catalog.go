package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/econify/globetrends/internal/provider"
	"github.com/econify/globetrends/pkg/models"
)

// ---------------------------------------------------------------------------
// CountryList — all real countries (aggregates filtered out).
// Endpoint: /country?format=json&per_page=500
// ---------------------------------------------------------------------------

// wbCountry is one entry in a World Bank v2 country response.
type wbCountry struct {
	ID       string `json:"id"` // ISO3
	ISO2Code string `json:"iso2Code"`
	Name     string `json:"name"`
	Region   struct {
		Value string `json:"value"`
	} `json:"region"`
	IncomeLevel struct {
		Value string `json:"value"`
	} `json:"incomeLevel"`
	CapitalCity string `json:"capitalCity"`
}

type countryListFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newCountryListFetcher(p *Provider) *countryListFetcher {
	return &countryListFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.DatasetCountryList,
			"World Bank country list (aggregates and regions excluded)",
			nil,
			nil,
			24*time.Hour, // the country list is effectively static
			10, time.Second,
		),
		p: p,
	}
}

func (f *countryListFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	cacheKey := provider.CacheKey(provider.DatasetCountryList, params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		r := cached.(*provider.FetchResult)
		cp := *r
		cp.Cached = true
		return &cp, nil
	}

	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	url := baseURL + "/country?format=json&per_page=500"
	var raw []json.RawMessage
	if err := f.p.fetchJSON(ctx, url, &raw); err != nil {
		// The popular set keeps the dashboard usable when the catalog
		// endpoint is down.
		return newResult(PopularCountries), nil
	}
	if len(raw) < 2 || string(raw[1]) == "null" {
		return newResult(PopularCountries), nil
	}

	var entries []wbCountry
	if err := json.Unmarshal(raw[1], &entries); err != nil {
		return nil, fmt.Errorf("worldbank countries: %w", err)
	}

	var countries []models.Country
	for _, e := range entries {
		// Only actual countries have capitals; aggregates don't.
		if e.CapitalCity == "" {
			continue
		}
		countries = append(countries, models.Country{
			Code:        e.ID,
			Name:        e.Name,
			Region:      e.Region.Value,
			IncomeLevel: e.IncomeLevel.Value,
		})
	}
	if len(countries) == 0 {
		countries = PopularCountries
	}

	result := newResult(countries)
	f.CacheSet(cacheKey, result)
	return result, nil
}

// ---------------------------------------------------------------------------
// IndicatorCatalog — the indicators this provider exposes.
// ---------------------------------------------------------------------------

type indicatorCatalogFetcher struct {
	provider.BaseFetcher
	p *Provider
}

func newIndicatorCatalogFetcher(p *Provider) *indicatorCatalogFetcher {
	return &indicatorCatalogFetcher{
		BaseFetcher: provider.NewBaseFetcher(
			provider.DatasetIndicatorCatalog,
			"World Bank indicators available to the dashboard",
			nil,
			nil,
		),
		p: p,
	}
}

func (f *indicatorCatalogFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return newResult(Indicators), nil
}
