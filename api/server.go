// Package api provides the HTTP REST API server for globetrends.
//
// It exposes endpoints for indicator time series, movement explanations,
// trend forecasts, descriptive statistics, macroeconomic news, chart and
// CSV exports, and WebSocket streaming.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/econify/globetrends/internal/config"
	"github.com/econify/globetrends/internal/dashboard"
	"github.com/econify/globetrends/internal/provider"
	"github.com/econify/globetrends/internal/providers"
	"github.com/econify/globetrends/internal/report"
	"github.com/econify/globetrends/pkg/models"
	"github.com/econify/globetrends/web"
)

// Server is the HTTP API server.
type Server struct {
	router  chi.Router
	cfg     *config.Config
	svc     *dashboard.Service
	wsHub   *WSHub
	serveUI bool // when true, serve the embedded web UI at /
}

// NewServer creates a configured API server with all routes and middleware.
func NewServer(cfg *config.Config) (*Server, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg); err != nil {
		return nil, fmt.Errorf("provider setup failed: %w", err)
	}

	srv := &Server{
		cfg:     cfg,
		svc:     dashboard.New(cfg, reg),
		wsHub:   NewWSHub(),
		serveUI: true, // serve embedded web UI by default
	}

	srv.router = srv.buildRouter()
	return srv, nil
}

// NewServerWithService creates a server around an existing dashboard
// service. Used by tests to inject stub providers.
func NewServerWithService(cfg *config.Config, svc *dashboard.Service) *Server {
	srv := &Server{
		cfg:   cfg,
		svc:   svc,
		wsHub: NewWSHub(),
	}
	srv.router = srv.buildRouter()
	return srv
}

// SetServeUI controls whether the embedded web UI is served.
// Must be called before ListenAndServe.
func (s *Server) SetServeUI(enabled bool) {
	s.serveUI = enabled
	s.router = s.buildRouter()
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server with graceful shutdown.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start WebSocket hub
	go s.wsHub.Run()

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS
	origins := []string{"*"}
	if len(s.cfg.API.CORSOrigins) > 0 {
		origins = s.cfg.API.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", s.handleHealth)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health (also available at /health)
		r.Get("/health", s.handleHealth)

		// Catalog
		r.Get("/indicators", s.handleIndicators)
		r.Get("/countries", s.handleCountries)

		// Time series
		r.Get("/series", s.handleSeries)
		r.Get("/series/export.csv", s.handleSeriesCSV)

		// Movement explanations
		r.Get("/movements", s.handleMovements)

		// Forecasting
		r.Get("/forecast/next", s.handleForecastNext)
		r.Get("/forecast", s.handleForecast)
		r.Get("/forecast/summary/{country}", s.handleForecastSummary)

		// Statistics
		r.Get("/stats", s.handleStats)
		r.Get("/cagr", s.handleCAGR)

		// News
		r.Get("/news", s.handleNews)

		// Charts
		r.Get("/chart.svg", s.handleChart)
		r.Get("/chart/forecast.svg", s.handleForecastChart)

		// Configuration
		r.Get("/config", s.handleGetConfig)
		r.Put("/config", s.handleUpdateConfig)

		// WebSocket
		r.Get("/ws", s.handleWebSocket)
	})

	// Serve embedded web UI (SPA with fallback to index.html)
	if s.serveUI {
		s.mountSPA(r, web.DistFS())
	}

	return r
}

// mountSPA serves the embedded static dashboard as a single-page app.
// Unknown paths fall back to index.html for client-side routing.
func (s *Server) mountSPA(r chi.Router, distFS fs.FS) {
	fileServer := http.FileServer(http.FS(distFS))

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		rPath := strings.TrimPrefix(r.URL.Path, "/")
		if rPath == "" {
			rPath = "index.html"
		}

		f, err := distFS.Open(rPath)
		if err != nil {
			serveIndexHTML(w, r, distFS)
			return
		}
		f.Close()

		if rPath == "index.html" || strings.HasSuffix(rPath, ".html") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		}

		fileServer.ServeHTTP(w, r)
	})
}

// serveIndexHTML reads and serves the embedded index.html for SPA fallback.
func serveIndexHTML(w http.ResponseWriter, r *http.Request, distFS fs.FS) {
	data, err := fs.ReadFile(distFS, "index.html")
	if err != nil {
		http.Error(w, "web UI not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.WriteHeader(http.StatusOK)
	w.Write(data) //nolint:errcheck
}

// ============================================================
// Request / Response types
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// MovementsResponse is the payload for GET /api/v1/movements.
type MovementsResponse struct {
	Entries []models.ExplanationEntry `json:"entries"`
	Lines   []string                  `json:"lines"`
}

// ForecastResponse is the payload for the forecast endpoints.
type ForecastResponse struct {
	Predictions []models.Prediction            `json:"predictions"`
	Metrics     map[string]models.ModelMetrics `json:"metrics"`
}

// ============================================================
// Handlers
// ============================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]interface{}{
			"status":   "ok",
			"version":  "dev",
			"provider": s.cfg.Fetch.Provider,
			"time":     time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	indicators, err := s.svc.Indicators(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: indicators})
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.svc.Countries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: countries})
}

func (s *Server) handleSeries(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	table, err := s.svc.Series(ctx, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "series_fetched",
		Data: map[string]interface{}{
			"indicator": q.Indicator,
			"points":    len(table),
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: table})
}

func (s *Server) handleSeriesCSV(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	table, err := s.svc.Series(ctx, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", q.Indicator+"_data.csv"))
	if err := report.WriteSeriesCSV(w, table); err != nil {
		log.Printf("failed to write CSV response: %v", err)
	}
}

func (s *Server) handleMovements(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	topN := intParam(r, "top_n", 0)
	minChange := floatParam(r, "min_change_pct", 0)

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	entries, err := s.svc.Movements(ctx, q, topN, minChange)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	lines, err := s.svc.MovementLines(ctx, q, topN, minChange)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    MovementsResponse{Entries: entries, Lines: lines},
	})
}

func (s *Server) handleForecastNext(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	preds, metrics, err := s.svc.ForecastNext(ctx, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.wsHub.Broadcast(WSMessage{
		Type: "forecast_complete",
		Data: map[string]interface{}{
			"indicator": q.Indicator,
			"countries": len(preds),
		},
	})

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ForecastResponse{Predictions: preds, Metrics: metrics},
	})
}

func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	level := floatParam(r, "confidence", 0)

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	preds, metrics, err := s.svc.ForecastWithConfidence(ctx, q, level)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    ForecastResponse{Predictions: preds, Metrics: metrics},
	})
}

func (s *Server) handleForecastSummary(w http.ResponseWriter, r *http.Request) {
	country := chi.URLParam(r, "country")
	if country == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}

	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	summary, err := s.svc.ForecastSummary(ctx, q, country)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    map[string]string{"country": country, "summary": summary},
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	stats, err := s.svc.Statistics(ctx, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: stats})
}

func (s *Server) handleCAGR(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	results, err := s.svc.CAGR(ctx, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: results})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", 10)

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	articles, err := s.svc.News(ctx, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: articles})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	table, err := s.svc.Series(ctx, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	cfg := report.DefaultChartConfig()
	cfg.Title = q.Indicator

	w.Header().Set("Content-Type", "image/svg+xml")
	fmt.Fprint(w, report.SeriesChart(table, cfg))
}

func (s *Server) handleForecastChart(w http.ResponseWriter, r *http.Request) {
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if country == "" {
		writeError(w, http.StatusBadRequest, "country is required")
		return
	}

	q, err := queryFromRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	level := floatParam(r, "confidence", 0)

	ctx, cancel := context.WithTimeout(r.Context(), 60*time.Second)
	defer cancel()

	table, err := s.svc.Series(ctx, q)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	preds, _, err := s.svc.ForecastWithConfidence(ctx, q, level)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var pred *models.Prediction
	for i := range preds {
		if strings.EqualFold(preds[i].Country, country) {
			pred = &preds[i]
			break
		}
	}
	if pred == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no forecast for %q", country))
		return
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	fmt.Fprint(w, report.ForecastChart(table, *pred, report.DefaultChartConfig()))
}

// ============================================================
// Query helpers
// ============================================================

// queryFromRequest builds a series query from URL parameters. Countries
// are passed as a comma-separated list of ISO3 codes.
func queryFromRequest(r *http.Request) (dashboard.SeriesQuery, error) {
	q := dashboard.SeriesQuery{
		Indicator: strings.TrimSpace(r.URL.Query().Get("indicator")),
	}

	if raw := r.URL.Query().Get("countries"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				q.Countries = append(q.Countries, c)
			}
		}
	}

	var err error
	if q.StartYear, err = yearParam(r, "start_year"); err != nil {
		return q, err
	}
	if q.EndYear, err = yearParam(r, "end_year"); err != nil {
		return q, err
	}
	return q, nil
}

func yearParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	year, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", name, raw)
	}
	return year, nil
}

func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func floatParam(r *http.Request, name string, def float64) float64 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return v
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("failed to write JSON response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}

// ============================================================
// WebSocket Hub
// ============================================================

// WSMessage is a message sent over WebSocket connections.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// WSHub manages WebSocket connections and message broadcasting.
type WSHub struct {
	mu         sync.RWMutex
	clients    map[*WSClient]bool
	broadcast  chan WSMessage
	register   chan *WSClient
	unregister chan *WSClient
}

// WSClient represents a single WebSocket connection.
type WSClient struct {
	hub  *WSHub
	send chan WSMessage
}

// NewWSHub creates a new WebSocket hub.
func NewWSHub() *WSHub {
	return &WSHub{
		clients:    make(map[*WSClient]bool),
		broadcast:  make(chan WSMessage, 256),
		register:   make(chan *WSClient),
		unregister: make(chan *WSClient),
	}
}

// Run starts the hub event loop.
func (h *WSHub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
		case msg := <-h.broadcast:
			h.mu.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Slow client; disconnect
					h.mu.RUnlock()
					h.mu.Lock()
					delete(h.clients, client)
					close(client.send)
					h.mu.Unlock()
					h.mu.RLock()
				}
			}
			h.mu.RUnlock()
		}
	}
}

// Broadcast sends a message to all connected WebSocket clients.
func (h *WSHub) Broadcast(msg WSMessage) {
	select {
	case h.broadcast <- msg:
	default:
		// Drop message if broadcast channel is full
	}
}

// ClientCount returns the number of connected WebSocket clients.
func (h *WSHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Register adds a client to the hub.
func (h *WSHub) Register(client *WSClient) {
	h.register <- client
}

// Unregister removes a client from the hub.
func (h *WSHub) Unregister(client *WSClient) {
	h.unregister <- client
}
