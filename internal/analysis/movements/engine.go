// Package movements implements the movement explanation engine: it
// detects the largest year-over-year percentage swings per country in
// an indicator table, filters them by a significance floor, and
// attaches contextual labels from a static macro-event calendar.
package movements

import (
	"fmt"
	"math"
	"sort"

	"github.com/econify/globetrends/pkg/models"
	"github.com/econify/globetrends/pkg/utils"
)

// Defaults for the engine's tunables. Callers supply values per
// invocation; these are only the conventional starting points.
const (
	DefaultTopN         = 3
	DefaultMinChangePct = 5.0
)

// Engine detects and explains significant indicator movements. It holds
// only the immutable event calendar, so one Engine is safe for
// concurrent use.
type Engine struct {
	calendar Calendar
}

// NewEngine creates an engine backed by the built-in event calendar.
func NewEngine() *Engine {
	return &Engine{calendar: DefaultCalendar()}
}

// NewEngineWithCalendar creates an engine with a custom calendar.
func NewEngineWithCalendar(c Calendar) *Engine {
	return &Engine{calendar: c}
}

// Detect computes year-over-year movements, filters them by the
// significance floor, and returns at most topN rises and topN dips per
// country, each ranked by |percent change| descending with earlier
// years winning ties. indicatorKey selects which calendar events may
// be attached as reasons.
//
// Data-quality problems never fail the call: missing values are
// skipped, zero denominators drop only the affected pair, and a
// country without two observed years simply contributes nothing.
func (e *Engine) Detect(table models.TimeSeriesTable, indicatorKey string, topN int, minAbsChangePct float64) []models.ExplanationEntry {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if minAbsChangePct < 0 {
		minAbsChangePct = DefaultMinChangePct
	}

	groups := table.ByCountry()
	countries := make([]string, 0, len(groups))
	for c := range groups {
		countries = append(countries, c)
	}
	sort.Strings(countries)

	var entries []models.ExplanationEntry
	for _, country := range countries {
		records := pairwiseChanges(groups[country])

		var rises, dips []models.MovementRecord
		for _, r := range records {
			if math.Abs(r.PercentChange) < minAbsChangePct {
				continue
			}
			if r.PercentChange > 0 {
				rises = append(rises, r)
			} else if r.PercentChange < 0 {
				dips = append(dips, r)
			}
		}

		rankMovements(rises)
		rankMovements(dips)

		for _, r := range top(rises, topN) {
			entries = append(entries, e.entry(r, models.DirectionRise, indicatorKey))
		}
		for _, r := range top(dips, topN) {
			entries = append(entries, e.entry(r, models.DirectionDip, indicatorKey))
		}
	}
	return entries
}

// GenerateExplanations runs Detect and formats each retained movement
// as a one-line display string.
//
// Contract: when no movement survives filtering the result is an empty
// slice, and callers must render nothing at all — no heading and no
// "nothing found" placeholder.
func (e *Engine) GenerateExplanations(table models.TimeSeriesTable, indicatorKey string, topN int, minAbsChangePct float64) []string {
	entries := e.Detect(table, indicatorKey, topN, minAbsChangePct)
	if len(entries) == 0 {
		return nil
	}
	lines := make([]string, len(entries))
	for i, en := range entries {
		lines[i] = FormatEntry(en)
	}
	return lines
}

// FormatEntry renders one movement as a display line, e.g.
// "United States ▼ -8.00% in 2020 — COVID-19 pandemic".
func FormatEntry(en models.ExplanationEntry) string {
	glyph := "▲"
	if en.Direction == models.DirectionDip {
		glyph = "▼"
	}
	line := fmt.Sprintf("%s %s %s in %d", en.Country, glyph,
		utils.FormatSignedPercent(en.PercentChange, 2), en.Year)
	if en.Reason != "" {
		line += " — " + en.Reason
	}
	return line
}

// entry attaches the calendar reason for a retained movement.
func (e *Engine) entry(r models.MovementRecord, dir models.Direction, indicatorKey string) models.ExplanationEntry {
	return models.ExplanationEntry{
		Country:       r.Country,
		Direction:     dir,
		Year:          r.ToYear,
		PercentChange: r.PercentChange,
		Reason:        e.calendar.Lookup(r.ToYear, indicatorKey),
	}
}

// pairwiseChanges computes percent changes between the nearest observed
// years of one country group (already sorted by year). Missing values
// are skipped, so a pair may span a calendar gap. Pairs whose base
// value is zero are dropped: the ratio is undefined.
func pairwiseChanges(group []models.TimeSeriesPoint) []models.MovementRecord {
	var records []models.MovementRecord
	var prev *models.TimeSeriesPoint
	for i := range group {
		p := group[i]
		if !p.HasValue() {
			continue
		}
		if prev != nil {
			base := *prev.Value
			if base != 0 {
				curr := *p.Value
				records = append(records, models.MovementRecord{
					Country:       p.Country,
					FromYear:      prev.Year,
					ToYear:        p.Year,
					FromValue:     base,
					ToValue:       curr,
					PercentChange: (curr - base) / math.Abs(base) * 100,
				})
			}
		}
		prev = &group[i]
	}
	return records
}

// rankMovements orders records by |percent change| descending; equal
// magnitudes are broken by the earlier completion year so output is
// reproducible.
func rankMovements(records []models.MovementRecord) {
	sort.Slice(records, func(i, j int) bool {
		ai, aj := math.Abs(records[i].PercentChange), math.Abs(records[j].PercentChange)
		if ai != aj {
			return ai > aj
		}
		return records[i].ToYear < records[j].ToYear
	})
}

func top(records []models.MovementRecord, n int) []models.MovementRecord {
	if len(records) > n {
		return records[:n]
	}
	return records
}
