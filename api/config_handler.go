// Package api — configuration management endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/econify/globetrends/internal/config"
)

// configMu serialises writes to the config file.
var configMu sync.Mutex

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Config     *config.Config `json:"config"`
	ConfigFile string         `json:"config_file"` // path to the active config file
}

// handleGetConfig returns the current (running) configuration.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     s.cfg,
			ConfigFile: config.ConfigFilePath(),
		},
	})
}

// handleUpdateConfig merges the provided partial configuration into the
// running config, persists it to disk, and returns the updated config.
func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	configMu.Lock()
	defer configMu.Unlock()

	// Merge non-zero values from incoming into running config.
	mergeConfig(s.cfg, &incoming)

	// Persist to disk.
	cfgPath := config.ConfigFilePath()
	if err := config.SaveToFile(s.cfg, cfgPath); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save config: "+err.Error())
		return
	}

	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Config:     s.cfg,
			ConfigFile: cfgPath,
		},
	})
}

// mergeConfig copies non-zero/non-empty values from src into dst.
func mergeConfig(dst, src *config.Config) {
	// Fetch
	if src.Fetch.Provider != "" {
		dst.Fetch.Provider = src.Fetch.Provider
	}
	if len(src.Fetch.DefaultCountries) > 0 {
		dst.Fetch.DefaultCountries = src.Fetch.DefaultCountries
	}
	if src.Fetch.StartYear != 0 {
		dst.Fetch.StartYear = src.Fetch.StartYear
	}
	if src.Fetch.EndYear != 0 {
		dst.Fetch.EndYear = src.Fetch.EndYear
	}
	if src.Fetch.ConcurrentFetches != 0 {
		dst.Fetch.ConcurrentFetches = src.Fetch.ConcurrentFetches
	}
	if src.Fetch.RequestsPerSecond != 0 {
		dst.Fetch.RequestsPerSecond = src.Fetch.RequestsPerSecond
	}

	// Cache
	if src.Cache.TTL != 0 {
		dst.Cache.TTL = src.Cache.TTL
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.MaxAge != 0 {
		dst.Cache.MaxAge = src.Cache.MaxAge
	}

	// Analysis
	if src.Analysis.TopMovements != 0 {
		dst.Analysis.TopMovements = src.Analysis.TopMovements
	}
	if src.Analysis.MinChangePct != 0 {
		dst.Analysis.MinChangePct = src.Analysis.MinChangePct
	}
	if src.Analysis.HoldoutFraction != 0 {
		dst.Analysis.HoldoutFraction = src.Analysis.HoldoutFraction
	}
	if src.Analysis.Confidence != 0 {
		dst.Analysis.Confidence = src.Analysis.Confidence
	}

	// API
	if src.API.Host != "" {
		dst.API.Host = src.API.Host
	}
	if src.API.Port != 0 {
		dst.API.Port = src.API.Port
	}
	if len(src.API.CORSOrigins) > 0 {
		dst.API.CORSOrigins = src.API.CORSOrigins
	}

	// Web
	if src.Web.URL != "" {
		dst.Web.URL = src.Web.URL
	}

	// Logging
	if src.Logging.Level != "" {
		dst.Logging.Level = src.Logging.Level
	}
	if src.Logging.Format != "" {
		dst.Logging.Format = src.Logging.Format
	}
}
