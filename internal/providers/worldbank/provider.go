// Package worldbank implements a World Bank Open Data provider.
// Data is sourced from the World Bank API v2. No API key required.
package worldbank

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/econify/globetrends/internal/provider"
	"github.com/econify/globetrends/pkg/models"
)

const (
	providerName = "worldbank"

	baseURL = "https://api.worldbank.org/v2"
)

// Indicators maps the dashboard's short indicator keys to World Bank
// indicator codes.
var Indicators = []models.Indicator{
	{Key: "gdp", Code: "NY.GDP.MKTP.CD", Name: "GDP (current US$)", Unit: "US$"},
	{Key: "inflation", Code: "FP.CPI.TOTL.ZG", Name: "Inflation, consumer prices (annual %)", Unit: "%"},
	{Key: "unemployment", Code: "SL.UEM.TOTL.ZS", Name: "Unemployment, total (% of total labor force)", Unit: "%"},
	{Key: "population", Code: "SP.POP.TOTL", Name: "Population, total"},
	{Key: "gdp_per_capita", Code: "NY.GDP.PCAP.CD", Name: "GDP per capita (current US$)", Unit: "US$"},
	{Key: "exports", Code: "NE.EXP.GNFS.ZS", Name: "Exports of goods and services (% of GDP)", Unit: "%"},
}

// IndicatorCode resolves a short key or raw code to a World Bank
// indicator code. Unknown inputs pass through unchanged so callers can
// query arbitrary codes directly.
func IndicatorCode(keyOrCode string) string {
	for _, ind := range Indicators {
		if ind.Key == keyOrCode {
			return ind.Code
		}
	}
	return keyOrCode
}

// PopularCountries are the default selection shown before any country
// list has been fetched.
var PopularCountries = []models.Country{
	{Code: "USA", Name: "United States"},
	{Code: "CHN", Name: "China"},
	{Code: "JPN", Name: "Japan"},
	{Code: "DEU", Name: "Germany"},
	{Code: "GBR", Name: "United Kingdom"},
	{Code: "IND", Name: "India"},
	{Code: "FRA", Name: "France"},
	{Code: "BRA", Name: "Brazil"},
	{Code: "ITA", Name: "Italy"},
	{Code: "CAN", Name: "Canada"},
	{Code: "KOR", Name: "Korea, Rep."},
	{Code: "RUS", Name: "Russian Federation"},
	{Code: "AUS", Name: "Australia"},
	{Code: "MEX", Name: "Mexico"},
	{Code: "IDN", Name: "Indonesia"},
	{Code: "NLD", Name: "Netherlands"},
	{Code: "SAU", Name: "Saudi Arabia"},
	{Code: "TUR", Name: "Turkey"},
	{Code: "CHE", Name: "Switzerland"},
	{Code: "POL", Name: "Poland"},
	{Code: "ESP", Name: "Spain"},
	{Code: "ZAF", Name: "South Africa"},
	{Code: "ARG", Name: "Argentina"},
	{Code: "NGA", Name: "Nigeria"},
	{Code: "EGY", Name: "Egypt, Arab Rep."},
}

// Provider is the World Bank data provider.
type Provider struct {
	provider.BaseProvider
	client *http.Client
}

// New creates a new World Bank provider and registers all fetchers.
func New() *Provider {
	p := &Provider{
		BaseProvider: provider.NewBaseProvider(
			providerName,
			"World Bank Open Data — country-level socioeconomic indicators (free, no API key)",
			"https://data.worldbank.org",
			nil,
		),
		client: &http.Client{
			Timeout: 45 * time.Second,
		},
	}

	p.RegisterFetcher(newSeriesFetcher(p))
	p.RegisterFetcher(newCountryListFetcher(p))
	p.RegisterFetcher(newIndicatorCatalogFetcher(p))

	return p
}

// Ping verifies connectivity to the World Bank API.
func (p *Provider) Ping(ctx context.Context) error {
	url := baseURL + "/country/USA/indicator/NY.GDP.MKTP.CD?format=json&mrv=1"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("worldbank ping: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("worldbank ping: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("worldbank ping: HTTP %d", resp.StatusCode)
	}
	return nil
}

// fetchJSON fetches JSON from the given URL and decodes into dst.
func (p *Provider) fetchJSON(ctx context.Context, url string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body[:min(len(body), 200)]))
	}

	return json.NewDecoder(resp.Body).Decode(dst)
}
