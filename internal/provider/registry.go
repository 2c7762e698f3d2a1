package provider

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Registry is a thread-safe registry of data providers.
// It maps provider names to Provider instances and maintains an index
// of which providers support which dataset types.
type Registry struct {
	mu         sync.RWMutex
	providers  map[string]Provider  // name → provider
	datasetIdx map[Dataset][]string // dataset → provider names (priority order)
	defaults   map[Dataset]string   // dataset → default provider name
}

// NewRegistry creates a new empty provider registry.
func NewRegistry() *Registry {
	return &Registry{
		providers:  make(map[string]Provider),
		datasetIdx: make(map[Dataset][]string),
		defaults:   make(map[Dataset]string),
	}
}

// Register adds a provider to the registry. If the provider requires
// credentials, they should be set via Init() before calling Register.
// Duplicate registrations overwrite the previous entry.
func (r *Registry) Register(p Provider) error {
	info := p.Info()
	if info.Name == "" {
		return fmt.Errorf("provider name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.providers[info.Name] = p

	for _, dataset := range p.SupportedDatasets() {
		existing := r.datasetIdx[dataset]
		found := false
		for _, name := range existing {
			if name == info.Name {
				found = true
				break
			}
		}
		if !found {
			r.datasetIdx[dataset] = append(existing, info.Name)
		}
		// First registrant becomes the default.
		if _, ok := r.defaults[dataset]; !ok {
			r.defaults[dataset] = info.Name
		}
	}

	return nil
}

// Unregister removes a provider from the registry.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.providers, name)

	for dataset, names := range r.datasetIdx {
		filtered := names[:0]
		for _, n := range names {
			if n != name {
				filtered = append(filtered, n)
			}
		}
		if len(filtered) == 0 {
			delete(r.datasetIdx, dataset)
			delete(r.defaults, dataset)
		} else {
			r.datasetIdx[dataset] = filtered
			if r.defaults[dataset] == name {
				r.defaults[dataset] = filtered[0]
			}
		}
	}
}

// Get returns a provider by name, or an error if not found.
func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, &ErrProviderNotFound{Name: name}
	}
	return p, nil
}

// List returns info about all registered providers, sorted by name.
func (r *Registry) List() []ProviderInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ProviderInfo, 0, len(r.providers))
	for _, p := range r.providers {
		infos = append(infos, p.Info())
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

// ProvidersFor returns the names of providers that support the given
// dataset, in priority order (first = default).
func (r *Registry) ProvidersFor(dataset Dataset) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.datasetIdx[dataset]
	result := make([]string, len(names))
	copy(result, names)
	return result
}

// DefaultProvider returns the default provider name for a dataset.
func (r *Registry) DefaultProvider(dataset Dataset) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name, ok := r.defaults[dataset]
	return name, ok
}

// SetDefault sets the default provider for a dataset.
func (r *Registry) SetDefault(dataset Dataset, providerName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.providers[providerName]
	if !ok {
		return &ErrProviderNotFound{Name: providerName}
	}
	if p.Fetcher(dataset) == nil {
		return &ErrDatasetNotSupported{Provider: providerName, Dataset: dataset}
	}

	r.defaults[dataset] = providerName
	return nil
}

// Fetch retrieves data for the given dataset using the provider named
// in params (or the default if unset).
func (r *Registry) Fetch(ctx context.Context, dataset Dataset, params QueryParams) (*FetchResult, error) {
	providerName := params[ParamProvider]

	r.mu.RLock()
	if providerName == "" {
		providerName = r.defaults[dataset]
	}
	p, ok := r.providers[providerName]
	r.mu.RUnlock()

	if !ok || providerName == "" {
		return nil, &ErrProviderNotFound{Name: providerName}
	}

	fetcher := p.Fetcher(dataset)
	if fetcher == nil {
		return nil, &ErrDatasetNotSupported{Provider: providerName, Dataset: dataset}
	}

	if err := ValidateParams(params, fetcher.RequiredParams()); err != nil {
		return nil, err
	}

	result, err := fetcher.Fetch(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("provider %q fetch %s: %w", providerName, dataset, err)
	}

	result.Provider = providerName
	result.Dataset = dataset
	if result.FetchedAt.IsZero() {
		result.FetchedAt = time.Now()
	}

	return result, nil
}

// FetchWithFallback tries the preferred provider first, then falls back
// to other providers that support the dataset, in priority order.
func (r *Registry) FetchWithFallback(ctx context.Context, dataset Dataset, params QueryParams) (*FetchResult, error) {
	result, err := r.Fetch(ctx, dataset, params)
	if err == nil {
		return result, nil
	}

	providers := r.ProvidersFor(dataset)
	preferred := params[ParamProvider]

	for _, name := range providers {
		if name == preferred {
			continue // Already tried.
		}
		fallbackParams := make(QueryParams, len(params))
		for k, v := range params {
			fallbackParams[k] = v
		}
		fallbackParams[ParamProvider] = name

		result, err = r.Fetch(ctx, dataset, fallbackParams)
		if err == nil {
			return result, nil
		}
	}

	return nil, fmt.Errorf("all providers failed for dataset %s: %w", dataset, err)
}

// DatasetCoverage returns a map of dataset types to the providers that
// support them.
func (r *Registry) DatasetCoverage() map[Dataset][]string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	coverage := make(map[Dataset][]string, len(r.datasetIdx))
	for dataset, names := range r.datasetIdx {
		cp := make([]string, len(names))
		copy(cp, names)
		coverage[dataset] = cp
	}
	return coverage
}

// global is the default global registry.
var global = NewRegistry()

// Global returns the default global provider registry.
func Global() *Registry {
	return global
}

// RegisterProvider adds a provider to the global registry.
func RegisterProvider(p Provider) error {
	return global.Register(p)
}
