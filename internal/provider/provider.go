// Package provider implements the data provider abstraction layer.
// It defines a Provider interface, a Fetcher interface, and a central
// registry that routes dataset requests to the appropriate provider.
package provider

import (
	"context"
	"fmt"
	"time"
)

// ProviderCredential describes a required credential for a provider.
type ProviderCredential struct {
	Name        string `json:"name"`        // e.g., "api_key"
	Description string `json:"description"` // where to obtain it
	Required    bool   `json:"required"`
	EnvVar      string `json:"env_var"` // environment variable name
}

// ProviderInfo holds metadata about a registered provider.
type ProviderInfo struct {
	Name        string               `json:"name"`        // e.g., "worldbank"
	Description string               `json:"description"` // human-readable description
	Website     string               `json:"website"`
	Credentials []ProviderCredential `json:"credentials"`
	Datasets    []Dataset            `json:"datasets"` // supported dataset types
}

// Provider is the interface that all data providers must implement.
// Each provider registers one or more Fetcher implementations for
// specific dataset types (e.g., IndicatorSeries, CountryList).
type Provider interface {
	// Info returns metadata about this provider.
	Info() ProviderInfo

	// Init initializes the provider with credentials and configuration.
	// Called once during registration. Returns an error if required
	// credentials are missing or invalid.
	Init(credentials map[string]string) error

	// Fetcher returns the fetcher for the given dataset, or nil if unsupported.
	Fetcher(dataset Dataset) Fetcher

	// SupportedDatasets returns all dataset types this provider can fetch.
	SupportedDatasets() []Dataset

	// Ping verifies the provider's connectivity and credentials.
	Ping(ctx context.Context) error
}

// QueryParams is the generic query parameter map passed to fetchers.
// Common keys include:
//   - "indicator"  : indicator key (e.g., "gdp", "inflation") or source code
//   - "countries"  : comma-separated ISO3 country codes (e.g., "USA,IND,CHN")
//   - "start_year" : first year of the requested range
//   - "end_year"   : last year of the requested range
//   - "limit"      : max results
//   - "provider"   : override provider name
//
// Each fetcher defines which keys it requires/supports.
type QueryParams map[string]string

// QueryParamKey constants for commonly used query parameters.
const (
	ParamIndicator = "indicator"
	ParamCountries = "countries"
	ParamStartYear = "start_year"
	ParamEndYear   = "end_year"
	ParamLimit     = "limit"
	ParamQuery     = "query"
	ParamProvider  = "provider"
)

// FetchResult wraps a fetcher result with metadata.
type FetchResult struct {
	Provider  string    `json:"provider"`   // which provider returned this data
	Dataset   Dataset   `json:"dataset"`    // the dataset type
	Data      any       `json:"data"`       // the fetched data (typed per dataset)
	FetchedAt time.Time `json:"fetched_at"` // when the data was fetched
	Cached    bool      `json:"cached"`     // whether this came from cache
}

// Fetcher is the interface for fetching a specific dataset type.
type Fetcher interface {
	// DatasetType returns the dataset type this fetcher handles.
	DatasetType() Dataset

	// Description returns a human-readable description of what this fetcher does.
	Description() string

	// RequiredParams returns the parameter keys this fetcher requires.
	RequiredParams() []string

	// OptionalParams returns the parameter keys this fetcher optionally accepts.
	OptionalParams() []string

	// Fetch retrieves data for the given query parameters.
	// The returned data type depends on the dataset:
	//   - IndicatorSeries  → models.TimeSeriesTable
	//   - CountryList      → []models.Country
	//   - IndicatorCatalog → []models.Indicator
	//   - MacroNews        → []models.NewsArticle
	Fetch(ctx context.Context, params QueryParams) (*FetchResult, error)
}

// ErrProviderNotFound is returned when a requested provider is not registered.
type ErrProviderNotFound struct {
	Name string
}

func (e *ErrProviderNotFound) Error() string {
	return fmt.Sprintf("provider %q not found", e.Name)
}

// ErrDatasetNotSupported is returned when a provider doesn't support a dataset.
type ErrDatasetNotSupported struct {
	Provider string
	Dataset  Dataset
}

func (e *ErrDatasetNotSupported) Error() string {
	return fmt.Sprintf("provider %q does not support dataset %q", e.Provider, e.Dataset)
}

// ErrMissingParam is returned when a required query parameter is missing.
type ErrMissingParam struct {
	Param string
}

func (e *ErrMissingParam) Error() string {
	return fmt.Sprintf("missing required parameter %q", e.Param)
}

// ErrInvalidCredentials is returned when provider credentials are invalid.
type ErrInvalidCredentials struct {
	Provider string
	Detail   string
}

func (e *ErrInvalidCredentials) Error() string {
	return fmt.Sprintf("invalid credentials for provider %q: %s", e.Provider, e.Detail)
}

// ValidateParams checks that all required parameters are present in params.
func ValidateParams(params QueryParams, required []string) error {
	for _, key := range required {
		if v, ok := params[key]; !ok || v == "" {
			return &ErrMissingParam{Param: key}
		}
	}
	return nil
}
