package provider

// Dataset identifies a standard dataset shape that providers can serve.
// Each Dataset maps to a specific data structure in pkg/models/.
type Dataset string

const (
	// DatasetIndicatorSeries is a country/year/value time series for one
	// indicator. Fetchers return models.TimeSeriesTable.
	DatasetIndicatorSeries Dataset = "IndicatorSeries"

	// DatasetCountryList enumerates the countries a provider can serve.
	// Fetchers return []models.Country.
	DatasetCountryList Dataset = "CountryList"

	// DatasetIndicatorCatalog enumerates the indicators a provider
	// exposes. Fetchers return []models.Indicator.
	DatasetIndicatorCatalog Dataset = "IndicatorCatalog"

	// DatasetMacroNews is a feed of macroeconomic news articles.
	// Fetchers return []models.NewsArticle.
	DatasetMacroNews Dataset = "MacroNews"
)

// AllDatasets returns every defined dataset type.
func AllDatasets() []Dataset {
	return []Dataset{
		DatasetIndicatorSeries,
		DatasetCountryList,
		DatasetIndicatorCatalog,
		DatasetMacroNews,
	}
}
