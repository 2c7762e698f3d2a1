// Package config handles configuration loading for globetrends.
// It supports YAML config files with environment variable overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Fetch    FetchConfig    `mapstructure:"fetch"    yaml:"fetch"`
	Cache    CacheConfig    `mapstructure:"cache"    yaml:"cache"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Web      WebConfig      `mapstructure:"web"      yaml:"web"`
	Logging  LoggingConfig  `mapstructure:"logging"  yaml:"logging"`
}

// FetchConfig holds data acquisition settings.
type FetchConfig struct {
	Provider          string   `mapstructure:"provider"           yaml:"provider"` // e.g. "worldbank"
	DefaultCountries  []string `mapstructure:"default_countries"  yaml:"default_countries"`
	StartYear         int      `mapstructure:"start_year"         yaml:"start_year"`
	EndYear           int      `mapstructure:"end_year"           yaml:"end_year"` // 0 = last complete year
	ConcurrentFetches int      `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches"`
	RequestsPerSecond int      `mapstructure:"requests_per_second" yaml:"requests_per_second"`
}

// CacheConfig holds the memory and disk cache settings.
type CacheConfig struct {
	TTL     int    `mapstructure:"ttl"      yaml:"ttl"`     // seconds, in-memory
	Dir     string `mapstructure:"dir"      yaml:"dir"`     // disk cache directory
	MaxAge  int    `mapstructure:"max_age"  yaml:"max_age"` // seconds, on disk
	Enabled bool   `mapstructure:"enabled"  yaml:"enabled"`
}

// AnalysisConfig holds the movement and forecasting engine settings.
type AnalysisConfig struct {
	TopMovements    int     `mapstructure:"top_movements"     yaml:"top_movements"`    // per direction
	MinChangePct    float64 `mapstructure:"min_change_pct"    yaml:"min_change_pct"`   // significance floor
	HoldoutFraction float64 `mapstructure:"holdout_fraction"  yaml:"holdout_fraction"` // forecaster test split
	Confidence      float64 `mapstructure:"confidence"        yaml:"confidence"`       // default interval level
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// WebConfig holds the dashboard frontend configuration.
type WebConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// activeFile is the config file the running process loaded, if any.
var activeFile string

// ConfigFilePath returns the path of the loaded config file, or the
// default location under the home directory when none was found.
func ConfigFilePath() string {
	if activeFile != "" {
		return activeFile
	}
	return filepath.Join(homeDir(), ".globetrends", "config.yaml")
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.globetrends/config.yaml (home directory)
//  3. /etc/globetrends/config.yaml (system)
//
// Environment variables override config file values.
// Format: GLOBETRENDS_<SECTION>_<KEY>, e.g., GLOBETRENDS_API_PORT
func Load() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".globetrends"))
	v.AddConfigPath("/etc/globetrends")

	v.SetEnvPrefix("GLOBETRENDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found — that's fine, use defaults + env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	activeFile = v.ConfigFileUsed()
	return &cfg, nil
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetEnvPrefix("GLOBETRENDS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	activeFile = path
	return &cfg, nil
}

// SaveToFile writes the configuration to the given path as YAML,
// creating the directory if needed.
func SaveToFile(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")

	v.Set("fetch.provider", cfg.Fetch.Provider)
	v.Set("fetch.default_countries", cfg.Fetch.DefaultCountries)
	v.Set("fetch.start_year", cfg.Fetch.StartYear)
	v.Set("fetch.end_year", cfg.Fetch.EndYear)
	v.Set("fetch.concurrent_fetches", cfg.Fetch.ConcurrentFetches)
	v.Set("fetch.requests_per_second", cfg.Fetch.RequestsPerSecond)

	v.Set("cache.ttl", cfg.Cache.TTL)
	v.Set("cache.dir", cfg.Cache.Dir)
	v.Set("cache.max_age", cfg.Cache.MaxAge)
	v.Set("cache.enabled", cfg.Cache.Enabled)

	v.Set("analysis.top_movements", cfg.Analysis.TopMovements)
	v.Set("analysis.min_change_pct", cfg.Analysis.MinChangePct)
	v.Set("analysis.holdout_fraction", cfg.Analysis.HoldoutFraction)
	v.Set("analysis.confidence", cfg.Analysis.Confidence)

	v.Set("api.host", cfg.API.Host)
	v.Set("api.port", cfg.API.Port)
	v.Set("api.cors_origins", cfg.API.CORSOrigins)

	v.Set("web.url", cfg.Web.URL)

	v.Set("logging.level", cfg.Logging.Level)
	v.Set("logging.format", cfg.Logging.Format)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config file %s: %w", path, err)
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// Fetch defaults
	v.SetDefault("fetch.provider", "worldbank")
	v.SetDefault("fetch.default_countries", []string{"USA", "CHN", "JPN", "DEU", "IND"})
	v.SetDefault("fetch.start_year", 2000)
	v.SetDefault("fetch.end_year", 0) // resolved to last complete year at fetch time
	v.SetDefault("fetch.concurrent_fetches", 4)
	v.SetDefault("fetch.requests_per_second", 10)

	// Cache defaults
	v.SetDefault("cache.ttl", 900) // 15 minutes in memory
	v.SetDefault("cache.dir", filepath.Join(homeDir(), ".globetrends", "cache"))
	v.SetDefault("cache.max_age", 86400) // 1 day on disk
	v.SetDefault("cache.enabled", true)

	// Analysis defaults
	v.SetDefault("analysis.top_movements", 3)
	v.SetDefault("analysis.min_change_pct", 5.0)
	v.SetDefault("analysis.holdout_fraction", 0.2)
	v.SetDefault("analysis.confidence", 0.95)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Web defaults
	v.SetDefault("web.url", "http://localhost:3000")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
