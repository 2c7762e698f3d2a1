package models

// Country describes a country a provider can serve.
type Country struct {
	Code        string `json:"code"` // ISO3, e.g. "USA"
	Name        string `json:"name"`
	Region      string `json:"region,omitempty"`
	IncomeLevel string `json:"income_level,omitempty"`
}

// Indicator describes one socioeconomic indicator: the short key the
// dashboard uses and the source code the provider queries with.
type Indicator struct {
	Key         string `json:"key"`  // e.g. "gdp"
	Code        string `json:"code"` // source code, e.g. "NY.GDP.MKTP.CD"
	Name        string `json:"name"`
	Unit        string `json:"unit,omitempty"`
	Description string `json:"description,omitempty"`
}
