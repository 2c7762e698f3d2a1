// globetrends — socioeconomic indicator dashboard
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/econify/globetrends/api"
	"github.com/econify/globetrends/internal/config"
	"github.com/econify/globetrends/internal/dashboard"
	"github.com/econify/globetrends/internal/provider"
	"github.com/econify/globetrends/internal/providers"
	"github.com/econify/globetrends/internal/report"
	"github.com/econify/globetrends/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "globetrends",
	Short: "globetrends — socioeconomic indicator dashboard",
	Long: `globetrends
A dashboard backend for World Bank socioeconomic indicators: fetch
country time series, surface significant year-over-year movements with
historical context, and forecast trends with linear models.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("indicator", "gdp", "indicator key (gdp, inflation, unemployment, population, gdp_per_capita, exports)")
	rootCmd.PersistentFlags().String("countries", "", "comma-separated ISO3 country codes (default from config)")
	rootCmd.PersistentFlags().Int("start-year", 0, "first year to fetch (default from config)")
	rootCmd.PersistentFlags().Int("end-year", 0, "last year to fetch (default: last complete year)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(movementsCmd)
	rootCmd.AddCommand(forecastCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// newService wires the provider registry and dashboard service.
func newService() (*dashboard.Service, error) {
	reg := provider.NewRegistry()
	if err := providers.RegisterAllTo(reg); err != nil {
		return nil, fmt.Errorf("provider setup failed: %w", err)
	}
	return dashboard.New(cfg, reg), nil
}

// queryFromFlags builds the series query shared by the analysis commands.
func queryFromFlags(cmd *cobra.Command) dashboard.SeriesQuery {
	q := dashboard.SeriesQuery{}
	q.Indicator, _ = cmd.Flags().GetString("indicator")
	if raw, _ := cmd.Flags().GetString("countries"); raw != "" {
		for _, c := range strings.Split(raw, ",") {
			if c = strings.TrimSpace(c); c != "" {
				q.Countries = append(q.Countries, c)
			}
		}
	}
	q.StartYear, _ = cmd.Flags().GetInt("start-year")
	q.EndYear, _ = cmd.Flags().GetInt("end-year")
	return q
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("globetrends %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch an indicator time series",
	Long:  "Fetch the indicator series for the selected countries and print it, or export it as CSV.",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		q := queryFromFlags(cmd)
		table, err := svc.Series(cmd.Context(), q)
		if err != nil {
			return err
		}
		if len(table) == 0 {
			fmt.Println("No data returned.")
			return nil
		}

		if asCSV, _ := cmd.Flags().GetBool("csv"); asCSV {
			return report.WriteSeriesCSV(os.Stdout, table)
		}

		fmt.Printf("%-24s %-5s %6s %18s\n", "Country", "Code", "Year", "Value")
		for _, p := range table.Sorted() {
			if !p.HasValue() {
				continue
			}
			fmt.Printf("%-24s %-5s %6d %18s\n",
				p.Country, p.CountryCode, p.Year, utils.FormatLargeNumber(*p.Value, 2))
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().Bool("csv", false, "write CSV to stdout")
}

// --- Movements Command ---

var movementsCmd = &cobra.Command{
	Use:   "movements",
	Short: "Explain significant year-over-year movements",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		q := queryFromFlags(cmd)
		topN, _ := cmd.Flags().GetInt("top")
		minChange, _ := cmd.Flags().GetFloat64("min-change")

		lines, err := svc.MovementLines(cmd.Context(), q, topN, minChange)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return nil
		}

		fmt.Printf("Significant movements — %s\n", q.Indicator)
		for _, line := range lines {
			fmt.Println("  " + line)
		}
		return nil
	},
}

func init() {
	movementsCmd.Flags().Int("top", 0, "movements to keep per direction (default from config)")
	movementsCmd.Flags().Float64("min-change", 0, "minimum |percent change| to report (default from config)")
}

// --- Forecast Command ---

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Forecast the next period with linear trend models",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		q := queryFromFlags(cmd)
		level, _ := cmd.Flags().GetFloat64("confidence")

		preds, metrics, err := svc.ForecastWithConfidence(cmd.Context(), q, level)
		if err != nil {
			return err
		}
		if len(preds) == 0 {
			fmt.Println("No country has enough data to forecast.")
			return nil
		}

		fmt.Printf("Trend forecasts — %s\n", q.Indicator)
		for _, p := range preds {
			line := fmt.Sprintf("  %-24s %d → %s", p.Country, p.Year, utils.FormatLargeNumber(p.Value, 2))
			if p.Upper > p.Lower {
				line += fmt.Sprintf("  (%s – %s)",
					utils.FormatLargeNumber(p.Lower, 2), utils.FormatLargeNumber(p.Upper, 2))
			}
			if m, ok := metrics[p.Country]; ok {
				line += fmt.Sprintf("  R²=%.3f", m.R2)
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	forecastCmd.Flags().Float64("confidence", 0, "confidence level for intervals (default from config)")
}

// --- Stats Command ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show descriptive statistics per country",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		q := queryFromFlags(cmd)
		stats, err := svc.Statistics(cmd.Context(), q)
		if err != nil {
			return err
		}
		cagr, err := svc.CAGR(cmd.Context(), q)
		if err != nil {
			return err
		}
		growth := make(map[string]float64, len(cagr))
		for _, c := range cagr {
			growth[c.Country] = c.CAGR
		}

		fmt.Printf("%-24s %6s %14s %14s %14s %8s\n",
			"Country", "N", "Latest", "Mean", "StdDev", "CAGR")
		for _, s := range stats {
			fmt.Printf("%-24s %6d %14s %14s %14s %7.2f%%\n",
				s.Country, s.Count,
				utils.FormatLargeNumber(s.Latest, 2),
				utils.FormatLargeNumber(s.Mean, 2),
				utils.FormatLargeNumber(s.StdDev, 2),
				growth[s.Country])
		}
		return nil
	},
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Show latest macroeconomic headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService()
		if err != nil {
			return err
		}

		limit, _ := cmd.Flags().GetInt("limit")
		articles, err := svc.News(cmd.Context(), limit)
		if err != nil {
			return err
		}

		for _, a := range articles {
			fmt.Printf("• %s (%s, %s)\n", a.Title, a.Source, a.PublishedAt.Format("2006-01-02"))
			if a.Summary != "" {
				fmt.Printf("  %s\n", a.Summary)
			}
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("limit", 10, "maximum number of headlines")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}

		if noUI, _ := cmd.Flags().GetBool("no-ui"); noUI {
			srv.SetServeUI(false)
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting globetrends API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

func init() {
	serveCmd.Flags().Bool("no-ui", false, "disable the embedded web UI")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  globetrends — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Config File:   %s\n", config.ConfigFilePath())
		fmt.Printf("    Provider:      %s\n", cfg.Fetch.Provider)
		fmt.Printf("    Countries:     %s\n", strings.Join(cfg.Fetch.DefaultCountries, ", "))
		fmt.Printf("    Year Range:    %d–%d (0 = last complete year)\n",
			cfg.Fetch.StartYear, cfg.Fetch.EndYear)
		fmt.Printf("    Cache:         %s (enabled: %t)\n", cfg.Cache.Dir, cfg.Cache.Enabled)
		fmt.Printf("    API Server:    %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		reg := provider.NewRegistry()
		if err := providers.RegisterAllTo(reg); err != nil {
			return err
		}
		fmt.Println("  Providers:")
		for _, info := range reg.List() {
			fmt.Printf("    %-12s %s (%d datasets)\n", info.Name, info.Description, len(info.Datasets))
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
