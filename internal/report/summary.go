package report

import (
	"fmt"
	"strings"

	"github.com/econify/globetrends/pkg/models"
	"github.com/econify/globetrends/pkg/utils"
)

// TextSummary renders a plain-text dashboard summary: per-country
// statistics, significant movements, and forecasts. Sections with no
// content are left out entirely.
func TextSummary(indicatorName string, stats []models.CountryStats, movements []string, preds []models.Prediction) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("=== %s ===\n", indicatorName))

	if len(stats) > 0 {
		sb.WriteString("\nCountry statistics:\n")
		for _, s := range stats {
			sb.WriteString(fmt.Sprintf("  %-20s latest %s (%d)  mean %s  range %s – %s\n",
				s.Country,
				utils.FormatLargeNumber(s.Latest, 2), s.LatestYear,
				utils.FormatLargeNumber(s.Mean, 2),
				utils.FormatLargeNumber(s.Min, 2),
				utils.FormatLargeNumber(s.Max, 2)))
		}
	}

	if len(movements) > 0 {
		sb.WriteString("\nSignificant movements:\n")
		for _, line := range movements {
			sb.WriteString("  " + line + "\n")
		}
	}

	if len(preds) > 0 {
		sb.WriteString("\nForecasts:\n")
		for _, p := range preds {
			line := fmt.Sprintf("  %-20s %d → %s", p.Country, p.Year, utils.FormatLargeNumber(p.Value, 2))
			if p.Upper > p.Lower {
				line += fmt.Sprintf("  (%s – %s)",
					utils.FormatLargeNumber(p.Lower, 2), utils.FormatLargeNumber(p.Upper, 2))
			}
			sb.WriteString(line + "\n")
		}
	}

	return sb.String()
}
