// Package report renders dashboard output: SVG charts of indicator
// series and forecasts, CSV exports, and plain-text summaries.
package report

import (
	"fmt"
	"math"
	"strings"

	"github.com/econify/globetrends/pkg/models"
	"github.com/econify/globetrends/pkg/utils"
)

// ChartConfig holds rendering parameters for SVG charts.
type ChartConfig struct {
	Width        int    // SVG width in pixels (default: 800)
	Height       int    // SVG height in pixels (default: 400)
	MarginTop    int    // top margin (default: 40)
	MarginRight  int    // right margin (default: 60)
	MarginBottom int    // bottom margin (default: 50)
	MarginLeft   int    // left margin (default: 70)
	BgColor      string // background color (default: "#ffffff")
	GridColor    string // grid line color (default: "#e8e8e8")
	TextColor    string // axis label color (default: "#333333")
	FontSize     int    // axis label font size (default: 11)
	Title        string // chart title
}

// DefaultChartConfig returns sensible defaults for chart rendering.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:        800,
		Height:       400,
		MarginTop:    40,
		MarginRight:  60,
		MarginBottom: 50,
		MarginLeft:   70,
		BgColor:      "#ffffff",
		GridColor:    "#e8e8e8",
		TextColor:    "#333333",
		FontSize:     11,
	}
}

// plotArea returns the usable drawing area dimensions.
func (c ChartConfig) plotArea() (x, y, w, h int) {
	return c.MarginLeft, c.MarginTop,
		c.Width - c.MarginLeft - c.MarginRight,
		c.Height - c.MarginTop - c.MarginBottom
}

// LineSeries represents one named line on a chart. NaN values are gaps.
type LineSeries struct {
	Name   string
	Values []float64
	Color  string // hex color (optional, auto-assigned if empty)
}

var defaultColors = []string{"#2196f3", "#ff9800", "#4caf50", "#e91e63", "#9c27b0", "#00bcd4"}

// LineChart generates an SVG line chart with one or more series.
// Labels are X-axis labels corresponding to data points.
func LineChart(series []LineSeries, labels []string, cfg ChartConfig) string {
	if len(series) == 0 {
		return emptySVG(cfg, "No data")
	}

	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}

	px, py, pw, ph := cfg.plotArea()

	minVal, maxVal := math.MaxFloat64, -math.MaxFloat64
	maxLen := 0
	for _, s := range series {
		if len(s.Values) > maxLen {
			maxLen = len(s.Values)
		}
		for _, v := range s.Values {
			if !math.IsNaN(v) && v < minVal {
				minVal = v
			}
			if !math.IsNaN(v) && v > maxVal {
				maxVal = v
			}
		}
	}
	if maxLen < 2 || minVal > maxVal {
		return emptySVG(cfg, "No data points")
	}

	vRange := maxVal - minVal
	if vRange < 0.001 {
		vRange = 1
	}
	minVal -= vRange * 0.05
	maxVal += vRange * 0.05
	vRange = maxVal - minVal

	var sb strings.Builder
	sb.WriteString(svgHeader(cfg))
	sb.WriteString(fmt.Sprintf(`<rect x="0" y="0" width="%d" height="%d" fill="%s"/>`,
		cfg.Width, cfg.Height, cfg.BgColor))
	if cfg.Title != "" {
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="20" font-size="14" font-weight="bold" fill="%s" text-anchor="middle">%s</text>`,
			cfg.Width/2, cfg.TextColor, escapeXML(cfg.Title)))
	}

	// Y-axis grid
	gridLines := 5
	for i := 0; i <= gridLines; i++ {
		val := minVal + vRange*float64(i)/float64(gridLines)
		y := py + ph - int(float64(ph)*float64(i)/float64(gridLines))
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-dasharray="3,3"/>`,
			px, y, px+pw, y, cfg.GridColor))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="%d" fill="%s" text-anchor="end">%s</text>`,
			px-5, y+4, cfg.FontSize, cfg.TextColor, utils.FormatLargeNumber(val, 1)))
	}

	// Draw series
	for si, s := range series {
		color := s.Color
		if color == "" {
			color = defaultColors[si%len(defaultColors)]
		}

		var pathParts []string
		for i, v := range s.Values {
			if math.IsNaN(v) {
				continue
			}
			cx := float64(px) + float64(i)*float64(pw)/float64(maxLen-1)
			ratio := (v - minVal) / vRange
			cy := float64(py+ph) - ratio*float64(ph)
			cmd := "L"
			if len(pathParts) == 0 {
				cmd = "M"
			}
			pathParts = append(pathParts, fmt.Sprintf("%s%.1f,%.1f", cmd, cx, cy))
		}
		if len(pathParts) > 1 {
			sb.WriteString(fmt.Sprintf(`<path d="%s" fill="none" stroke="%s" stroke-width="2"/>`,
				strings.Join(pathParts, " "), color))
		}

		// Legend
		ly := py + 10 + si*16
		sb.WriteString(fmt.Sprintf(`<line x1="%d" y1="%d" x2="%d" y2="%d" stroke="%s" stroke-width="2"/>`,
			px+10, ly, px+30, ly, color))
		sb.WriteString(fmt.Sprintf(`<text x="%d" y="%d" font-size="10" fill="%s">%s</text>`,
			px+35, ly+4, cfg.TextColor, escapeXML(s.Name)))
	}

	// X-axis labels
	if len(labels) > 0 {
		interval := maxLen / 6
		if interval < 1 {
			interval = 1
		}
		for i := 0; i < len(labels) && i < maxLen; i += interval {
			cx := float64(px) + float64(i)*float64(pw)/float64(maxLen-1)
			sb.WriteString(fmt.Sprintf(`<text x="%.1f" y="%d" font-size="%d" fill="%s" text-anchor="middle">%s</text>`,
				cx, py+ph+18, cfg.FontSize-1, cfg.TextColor, escapeXML(labels[i])))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesChart renders a multi-country indicator table as a line chart,
// one line per country, indexed over the union of years. Missing years
// appear as gaps.
func SeriesChart(table models.TimeSeriesTable, cfg ChartConfig) string {
	if len(table) == 0 {
		return emptySVG(cfg, "No data available")
	}

	minYear, maxYear, ok := table.YearRange()
	if !ok {
		return emptySVG(cfg, "No data available")
	}

	nYears := maxYear - minYear + 1
	labels := make([]string, nYears)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", minYear+i)
	}

	groups := table.ByCountry()
	var series []LineSeries
	for _, country := range table.Countries() {
		values := make([]float64, nYears)
		for i := range values {
			values[i] = math.NaN()
		}
		for _, p := range groups[country] {
			if p.HasValue() {
				values[p.Year-minYear] = *p.Value
			}
		}
		series = append(series, LineSeries{Name: country, Values: values})
	}

	return LineChart(series, labels, cfg)
}

// ForecastChart renders one country's observed series with its trend
// forecast appended. When the prediction carries a non-degenerate
// interval, a shaded band is drawn around the forecast point.
func ForecastChart(table models.TimeSeriesTable, pred models.Prediction, cfg ChartConfig) string {
	if cfg.Width == 0 {
		cfg = DefaultChartConfig()
	}
	if cfg.Title == "" {
		cfg.Title = fmt.Sprintf("%s — trend forecast for %d", pred.Country, pred.Year)
	}

	groups := table.ByCountry()
	group, ok := groups[pred.Country]
	if !ok {
		return emptySVG(cfg, "No data available")
	}

	var firstYear int
	for _, p := range group {
		if p.HasValue() {
			firstYear = p.Year
			break
		}
	}
	if firstYear == 0 {
		return emptySVG(cfg, "No data available")
	}

	nYears := pred.Year - firstYear + 1
	labels := make([]string, nYears)
	for i := range labels {
		labels[i] = fmt.Sprintf("%d", firstYear+i)
	}

	observed := make([]float64, nYears)
	forecastLine := make([]float64, nYears)
	lower := make([]float64, nYears)
	upper := make([]float64, nYears)
	for i := range observed {
		observed[i] = math.NaN()
		forecastLine[i] = math.NaN()
		lower[i] = math.NaN()
		upper[i] = math.NaN()
	}
	var lastObserved float64 = math.NaN()
	var lastIdx int
	for _, p := range group {
		if p.HasValue() && p.Year >= firstYear && p.Year < pred.Year {
			observed[p.Year-firstYear] = *p.Value
			lastObserved = *p.Value
			lastIdx = p.Year - firstYear
		}
	}

	// Connect the last observation to the forecast point.
	if !math.IsNaN(lastObserved) {
		forecastLine[lastIdx] = lastObserved
	}
	forecastLine[nYears-1] = pred.Value
	if pred.Upper > pred.Lower {
		lower[nYears-1] = pred.Lower
		upper[nYears-1] = pred.Upper
	}

	series := []LineSeries{
		{Name: pred.Country, Values: observed, Color: "#2196f3"},
		{Name: "Forecast", Values: forecastLine, Color: "#ff9800"},
	}
	if pred.Upper > pred.Lower {
		series = append(series,
			LineSeries{Name: "Lower bound", Values: lower, Color: "#ffe0b2"},
			LineSeries{Name: "Upper bound", Values: upper, Color: "#ffe0b2"},
		)
	}

	return LineChart(series, labels, cfg)
}

// --- SVG helpers ---

func svgHeader(cfg ChartConfig) string {
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="sans-serif">`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height)
}

func emptySVG(cfg ChartConfig, msg string) string {
	if cfg.Width == 0 {
		cfg.Width = 400
	}
	if cfg.Height == 0 {
		cfg.Height = 200
	}
	return fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"><rect width="%d" height="%d" fill="#f5f5f5"/><text x="%d" y="%d" text-anchor="middle" fill="#999" font-size="14">%s</text></svg>`,
		cfg.Width, cfg.Height, cfg.Width, cfg.Height, cfg.Width/2, cfg.Height/2, escapeXML(msg))
}

func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, `"`, "&quot;")
	return s
}
