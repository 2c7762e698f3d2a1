package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockFetcher implements the Fetcher interface for testing.
type mockFetcher struct {
	BaseFetcher
	fetchFn func(ctx context.Context, params QueryParams) (*FetchResult, error)
}

func newMockFetcher(dataset Dataset, required []string) *mockFetcher {
	return &mockFetcher{
		BaseFetcher: NewBaseFetcher(dataset, "mock fetcher for "+string(dataset), required, nil),
	}
}

func (m *mockFetcher) Fetch(ctx context.Context, params QueryParams) (*FetchResult, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, params)
	}
	return &FetchResult{
		Data:      "mock-data",
		FetchedAt: time.Now(),
	}, nil
}

// mockProvider implements the Provider interface for testing.
type mockProvider struct {
	BaseProvider
}

func newMockProvider(name string, datasets ...Dataset) *mockProvider {
	mp := &mockProvider{
		BaseProvider: NewBaseProvider(name, "Mock "+name, "https://example.com", nil),
	}
	for _, d := range datasets {
		mp.RegisterFetcher(newMockFetcher(d, []string{ParamIndicator}))
	}
	return mp
}

// --- Registry Tests ---

func TestRegistryRegisterAndGet(t *testing.T) {
	reg := NewRegistry()
	p := newMockProvider("test-provider", DatasetIndicatorSeries, DatasetCountryList)

	if err := p.Init(nil); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := reg.Register(p); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	got, err := reg.Get("test-provider")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Info().Name != "test-provider" {
		t.Errorf("expected name test-provider, got %s", got.Info().Name)
	}
}

func TestRegistryGetNotFound(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Get("nonexistent")
	if err == nil {
		t.Fatal("expected error for nonexistent provider")
	}
	if _, ok := err.(*ErrProviderNotFound); !ok {
		t.Errorf("expected ErrProviderNotFound, got %T", err)
	}
}

func TestRegistryList(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("beta", DatasetIndicatorSeries))
	_ = reg.Register(newMockProvider("alpha", DatasetCountryList))

	list := reg.List()
	if len(list) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(list))
	}
	// Should be sorted alphabetically.
	if list[0].Name != "alpha" {
		t.Errorf("expected first provider 'alpha', got %s", list[0].Name)
	}
	if list[1].Name != "beta" {
		t.Errorf("expected second provider 'beta', got %s", list[1].Name)
	}
}

func TestRegistryProvidersFor(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("p1", DatasetIndicatorSeries, DatasetCountryList))
	_ = reg.Register(newMockProvider("p2", DatasetIndicatorSeries))
	_ = reg.Register(newMockProvider("p3", DatasetCountryList))

	provs := reg.ProvidersFor(DatasetIndicatorSeries)
	if len(provs) != 2 {
		t.Fatalf("expected 2 providers for IndicatorSeries, got %d", len(provs))
	}

	provs = reg.ProvidersFor(DatasetCountryList)
	if len(provs) != 2 {
		t.Fatalf("expected 2 providers for CountryList, got %d", len(provs))
	}

	provs = reg.ProvidersFor(DatasetMacroNews)
	if len(provs) != 0 {
		t.Fatalf("expected 0 providers for MacroNews, got %d", len(provs))
	}
}

func TestRegistrySetDefault(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("p1", DatasetIndicatorSeries))
	_ = reg.Register(newMockProvider("p2", DatasetIndicatorSeries))

	// Default should be p1 (first registered).
	def, ok := reg.DefaultProvider(DatasetIndicatorSeries)
	if !ok || def != "p1" {
		t.Errorf("expected default p1, got %s (ok=%v)", def, ok)
	}

	// Change default.
	if err := reg.SetDefault(DatasetIndicatorSeries, "p2"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}
	def, ok = reg.DefaultProvider(DatasetIndicatorSeries)
	if !ok || def != "p2" {
		t.Errorf("expected default p2, got %s (ok=%v)", def, ok)
	}

	// Set default to non-existent provider.
	if err := reg.SetDefault(DatasetIndicatorSeries, "nope"); err == nil {
		t.Error("expected error setting default to non-existent provider")
	}
}

func TestRegistryUnregister(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("p1", DatasetIndicatorSeries))
	_ = reg.Register(newMockProvider("p2", DatasetIndicatorSeries))

	reg.Unregister("p1")

	if _, err := reg.Get("p1"); err == nil {
		t.Error("expected p1 to be gone")
	}

	// Default should have moved to p2.
	def, ok := reg.DefaultProvider(DatasetIndicatorSeries)
	if !ok || def != "p2" {
		t.Errorf("expected default to fall back to p2, got %s (ok=%v)", def, ok)
	}

	reg.Unregister("p2")
	if provs := reg.ProvidersFor(DatasetIndicatorSeries); len(provs) != 0 {
		t.Errorf("expected empty index after unregistering all, got %v", provs)
	}
}

func TestRegistryFetch(t *testing.T) {
	reg := NewRegistry()
	p := newMockProvider("wb", DatasetIndicatorSeries)
	_ = reg.Register(p)

	result, err := reg.Fetch(context.Background(), DatasetIndicatorSeries, QueryParams{
		ParamIndicator: "gdp",
	})
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if result.Provider != "wb" {
		t.Errorf("expected provider wb, got %s", result.Provider)
	}
	if result.Dataset != DatasetIndicatorSeries {
		t.Errorf("expected dataset IndicatorSeries, got %s", result.Dataset)
	}
	if result.Data != "mock-data" {
		t.Errorf("unexpected data: %v", result.Data)
	}
}

func TestRegistryFetchMissingParam(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("wb", DatasetIndicatorSeries))

	_, err := reg.Fetch(context.Background(), DatasetIndicatorSeries, QueryParams{})
	if err == nil {
		t.Fatal("expected error for missing required param")
	}
	var missing *ErrMissingParam
	if !errors.As(err, &missing) {
		t.Errorf("expected ErrMissingParam, got %T", err)
	}
}

func TestRegistryFetchUnsupportedDataset(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(newMockProvider("wb", DatasetIndicatorSeries))

	_, err := reg.Fetch(context.Background(), DatasetMacroNews, QueryParams{
		ParamProvider: "wb",
	})
	if err == nil {
		t.Fatal("expected error for unsupported dataset")
	}
	var unsupported *ErrDatasetNotSupported
	if !errors.As(err, &unsupported) {
		t.Errorf("expected ErrDatasetNotSupported, got %T", err)
	}
}

func TestRegistryFetchWithFallback(t *testing.T) {
	reg := NewRegistry()

	failing := newMockProvider("failing", DatasetIndicatorSeries)
	failing.fetchers[DatasetIndicatorSeries].(*mockFetcher).fetchFn =
		func(ctx context.Context, params QueryParams) (*FetchResult, error) {
			return nil, errors.New("upstream down")
		}
	working := newMockProvider("working", DatasetIndicatorSeries)

	_ = reg.Register(failing)
	_ = reg.Register(working)

	result, err := reg.FetchWithFallback(context.Background(), DatasetIndicatorSeries, QueryParams{
		ParamIndicator: "gdp",
	})
	if err != nil {
		t.Fatalf("FetchWithFallback failed: %v", err)
	}
	if result.Provider != "working" {
		t.Errorf("expected fallback to 'working', got %s", result.Provider)
	}
}

func TestValidateParams(t *testing.T) {
	err := ValidateParams(QueryParams{ParamIndicator: "gdp"}, []string{ParamIndicator})
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	err = ValidateParams(QueryParams{ParamIndicator: ""}, []string{ParamIndicator})
	if err == nil {
		t.Error("empty value should fail validation")
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	a := CacheKey(DatasetIndicatorSeries, QueryParams{
		ParamIndicator: "gdp",
		ParamCountries: "USA,IND",
		ParamStartYear: "2000",
	})
	b := CacheKey(DatasetIndicatorSeries, QueryParams{
		ParamStartYear: "2000",
		ParamCountries: "USA,IND",
		ParamIndicator: "gdp",
	})
	if a != b {
		t.Errorf("cache keys should not depend on map order: %q vs %q", a, b)
	}

	// Provider override must not change the key.
	c := CacheKey(DatasetIndicatorSeries, QueryParams{
		ParamIndicator: "gdp",
		ParamCountries: "USA,IND",
		ParamStartYear: "2000",
		ParamProvider:  "wb",
	})
	if a != c {
		t.Errorf("provider should be excluded from cache key: %q vs %q", a, c)
	}
}

func TestBaseProviderCredentials(t *testing.T) {
	bp := NewBaseProvider("secured", "needs a key", "https://example.com", []ProviderCredential{
		{Name: "api_key", Required: true, EnvVar: "SECURED_API_KEY"},
	})

	if err := bp.Init(nil); err == nil {
		t.Error("expected error for missing required credential")
	}
	if err := bp.Init(map[string]string{"api_key": "secret"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if bp.Credential("api_key") != "secret" {
		t.Error("credential not stored")
	}
}
