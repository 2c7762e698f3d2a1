package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/econify/globetrends/internal/config"
	"github.com/econify/globetrends/internal/dashboard"
	"github.com/econify/globetrends/internal/provider"
	"github.com/econify/globetrends/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Test Helpers
// ════════════════════════════════════════════════════════════════════

// stubProvider serves a fixed table for every series request.
type stubProvider struct {
	provider.BaseProvider
	table models.TimeSeriesTable
}

type stubSeriesFetcher struct {
	provider.BaseFetcher
	p *stubProvider
}

func (f *stubSeriesFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return &provider.FetchResult{Data: f.p.table, FetchedAt: time.Now()}, nil
}

type stubCatalogFetcher struct {
	provider.BaseFetcher
}

func (f *stubCatalogFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return &provider.FetchResult{
		Data:      []models.Indicator{{Key: "gdp", Code: "NY.GDP.MKTP.CD", Name: "GDP"}},
		FetchedAt: time.Now(),
	}, nil
}

type stubCountryFetcher struct {
	provider.BaseFetcher
}

func (f *stubCountryFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	return &provider.FetchResult{
		Data:      []models.Country{{Code: "USA", Name: "United States"}},
		FetchedAt: time.Now(),
	}, nil
}

func testTable() models.TimeSeriesTable {
	return models.TimeSeriesTable{
		models.NewPoint("United States", "USA", 2017, 100),
		models.NewPoint("United States", "USA", 2018, 105),
		models.NewPoint("United States", "USA", 2019, 110),
		models.NewPoint("United States", "USA", 2020, 95),
		models.NewPoint("United States", "USA", 2021, 112),
	}
}

func testServer(t *testing.T) *Server {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.Fetch.Provider = "stub"
	cfg.Cache.Dir = t.TempDir()

	p := &stubProvider{
		BaseProvider: provider.NewBaseProvider("stub", "fixed test data", "https://example.com", nil),
		table:        testTable(),
	}
	p.RegisterFetcher(&stubSeriesFetcher{
		BaseFetcher: provider.NewBaseFetcher(provider.DatasetIndicatorSeries, "stub series",
			[]string{provider.ParamIndicator}, nil),
		p: p,
	})
	p.RegisterFetcher(&stubCatalogFetcher{
		BaseFetcher: provider.NewBaseFetcher(provider.DatasetIndicatorCatalog, "stub catalog", nil, nil),
	})
	p.RegisterFetcher(&stubCountryFetcher{
		BaseFetcher: provider.NewBaseFetcher(provider.DatasetCountryList, "stub countries", nil, nil),
	})

	reg := provider.NewRegistry()
	if err := reg.Register(p); err != nil {
		t.Fatal(err)
	}

	return NewServerWithService(cfg, dashboard.New(cfg, reg))
}

func doRequest(t *testing.T, srv *Server, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) APIResponse {
	t.Helper()
	var resp APIResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

// decodeData re-marshals the envelope's data field into a typed value.
func decodeData(t *testing.T, resp APIResponse, out interface{}) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}

// ════════════════════════════════════════════════════════════════════
// Endpoint tests
// ════════════════════════════════════════════════════════════════════

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/health")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if !resp.Success {
		t.Error("expected success")
	}
}

func TestSeriesEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/series?indicator=gdp&countries=USA")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	var table models.TimeSeriesTable
	decodeData(t, resp, &table)
	if len(table) != 5 {
		t.Errorf("expected 5 points, got %d", len(table))
	}
}

func TestSeriesRequiresIndicator(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/series")

	if rec.Code != http.StatusInternalServerError && rec.Code != http.StatusBadRequest {
		t.Fatalf("expected error status, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Success {
		t.Error("expected failure envelope")
	}
}

func TestSeriesInvalidYear(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/series?indicator=gdp&start_year=abc")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSeriesCSVExport(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/series/export.csv?indicator=gdp&countries=USA")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, "country,country_code,year,value") {
		t.Errorf("unexpected CSV header:\n%s", body)
	}
	if !strings.Contains(body, "United States,USA,2017,100") {
		t.Errorf("data row missing:\n%s", body)
	}
}

func TestMovementsEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/movements?indicator=gdp&countries=USA")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	var data MovementsResponse
	decodeData(t, resp, &data)

	// 2020→2021 +17.9%, 2017→2018 +5.00% and 2019→2020 -13.6% all clear
	// the default 5% floor.
	if len(data.Entries) != 3 {
		t.Errorf("expected 3 movements, got %d", len(data.Entries))
	}
	if len(data.Lines) != len(data.Entries) {
		t.Errorf("lines/entries mismatch: %d vs %d", len(data.Lines), len(data.Entries))
	}
}

func TestMovementsThresholdParam(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet,
		"/api/v1/movements?indicator=gdp&countries=USA&min_change_pct=15")

	resp := decodeResponse(t, rec)
	var data MovementsResponse
	decodeData(t, resp, &data)
	if len(data.Entries) != 1 {
		t.Errorf("expected only the +17.9%% swing, got %d entries", len(data.Entries))
	}
}

func TestForecastNextEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/forecast/next?indicator=gdp&countries=USA")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	var data ForecastResponse
	decodeData(t, resp, &data)

	if len(data.Predictions) != 1 {
		t.Fatalf("expected 1 prediction, got %d", len(data.Predictions))
	}
	if data.Predictions[0].Year != 2022 {
		t.Errorf("forecast year = %d, want 2022", data.Predictions[0].Year)
	}
	if _, ok := data.Metrics["United States"]; !ok {
		t.Error("metrics missing for United States")
	}
}

func TestForecastConfidenceEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet,
		"/api/v1/forecast?indicator=gdp&countries=USA&confidence=0.9")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	var data ForecastResponse
	decodeData(t, resp, &data)

	pred := data.Predictions[0]
	if !(pred.Lower < pred.Value && pred.Value < pred.Upper) {
		t.Errorf("interval does not bracket value: [%f, %f] around %f",
			pred.Lower, pred.Upper, pred.Value)
	}
}

func TestForecastSummaryEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet,
		"/api/v1/forecast/summary/United%20States?indicator=gdp&countries=USA")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	var data map[string]string
	decodeData(t, resp, &data)
	if data["summary"] == "" {
		t.Error("summary is empty")
	}
}

func TestForecastSummaryUnknownCountry(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet,
		"/api/v1/forecast/summary/Atlantis?indicator=gdp&countries=USA")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/stats?indicator=gdp&countries=USA")

	resp := decodeResponse(t, rec)
	var stats []models.CountryStats
	decodeData(t, resp, &stats)
	if len(stats) != 1 || stats[0].Count != 5 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestCAGREndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/cagr?indicator=gdp&countries=USA")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	var results []models.CAGRResult
	decodeData(t, resp, &results)
	if len(results) != 1 {
		t.Errorf("expected 1 CAGR result, got %d", len(results))
	}
}

func TestIndicatorsEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/indicators")

	resp := decodeResponse(t, rec)
	var indicators []models.Indicator
	decodeData(t, resp, &indicators)
	if len(indicators) != 1 || indicators[0].Key != "gdp" {
		t.Errorf("unexpected indicators: %+v", indicators)
	}
}

func TestCountriesEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/countries")

	resp := decodeResponse(t, rec)
	var countries []models.Country
	decodeData(t, resp, &countries)
	if len(countries) != 1 || countries[0].Code != "USA" {
		t.Errorf("unexpected countries: %+v", countries)
	}
}

func TestChartEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/chart.svg?indicator=gdp&countries=USA")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "<svg") {
		t.Error("body is not SVG")
	}
}

func TestForecastChartEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet,
		"/api/v1/chart/forecast.svg?indicator=gdp&countries=USA&country=United%20States")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "Forecast") {
		t.Error("forecast legend missing")
	}
}

func TestForecastChartRequiresCountry(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/chart/forecast.svg?indicator=gdp")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestGetConfigEndpoint(t *testing.T) {
	srv := testServer(t)
	rec := doRequest(t, srv, http.MethodGet, "/api/v1/config")

	resp := decodeResponse(t, rec)
	var data ConfigResponse
	decodeData(t, resp, &data)
	if data.Config == nil || data.Config.Fetch.Provider != "stub" {
		t.Errorf("unexpected config payload: %+v", data.Config)
	}
}

// ════════════════════════════════════════════════════════════════════
// Envelope and merge tests
// ════════════════════════════════════════════════════════════════════

func TestAPIResponseJSON(t *testing.T) {
	tests := []struct {
		name string
		resp APIResponse
	}{
		{
			name: "success with data",
			resp: APIResponse{Success: true, Data: map[string]string{"key": "value"}},
		},
		{
			name: "error",
			resp: APIResponse{Success: false, Error: "something went wrong"},
		},
		{
			name: "success with nil data",
			resp: APIResponse{Success: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.resp)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}

			var got APIResponse
			if err := json.Unmarshal(data, &got); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if got.Success != tt.resp.Success {
				t.Errorf("Success: got %v, want %v", got.Success, tt.resp.Success)
			}
			if got.Error != tt.resp.Error {
				t.Errorf("Error: got %q, want %q", got.Error, tt.resp.Error)
			}
		})
	}
}

func TestMergeConfig(t *testing.T) {
	dst, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}

	src := &config.Config{}
	src.Analysis.TopMovements = 5
	src.Analysis.MinChangePct = 10
	src.API.Port = 9090
	src.Logging.Level = "debug"

	mergeConfig(dst, src)

	if dst.Analysis.TopMovements != 5 || dst.Analysis.MinChangePct != 10 {
		t.Errorf("analysis not merged: %+v", dst.Analysis)
	}
	if dst.API.Port != 9090 {
		t.Errorf("port not merged: %d", dst.API.Port)
	}
	if dst.Logging.Level != "debug" {
		t.Errorf("logging level not merged: %q", dst.Logging.Level)
	}
	// Untouched fields keep their defaults.
	if dst.Fetch.Provider != "worldbank" {
		t.Errorf("provider should be unchanged, got %q", dst.Fetch.Provider)
	}
}

func TestWSHubBroadcast(t *testing.T) {
	hub := NewWSHub()
	go hub.Run()

	client := &WSClient{hub: hub, send: make(chan WSMessage, 1)}
	hub.Register(client)

	hub.Broadcast(WSMessage{Type: "series_fetched"})

	select {
	case msg := <-client.send:
		if msg.Type != "series_fetched" {
			t.Errorf("unexpected message type %q", msg.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("broadcast not delivered")
	}

	hub.Unregister(client)
	if hub.ClientCount() != 0 {
		t.Errorf("client count = %d after unregister", hub.ClientCount())
	}
}
