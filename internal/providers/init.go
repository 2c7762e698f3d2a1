// Package providers initializes and registers all concrete data providers
// with the global provider registry.
package providers

import (
	"github.com/econify/globetrends/internal/provider"
	"github.com/econify/globetrends/internal/providers/worldbank"
)

// RegisterAll creates and registers all available providers with the
// global registry.
func RegisterAll() error {
	return RegisterAllTo(provider.Global())
}

// RegisterAllTo registers all available providers to the given registry.
func RegisterAllTo(reg *provider.Registry) error {
	// --- World Bank (free, no API key) ---
	wb := worldbank.New()
	if err := wb.Init(nil); err != nil {
		return err
	}
	if err := reg.Register(wb); err != nil {
		return err
	}

	return nil
}
