package report

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/econify/globetrends/pkg/models"
)

// WriteSeriesCSV writes an indicator table as CSV with the columns
// country, country_code, year, value. Rows without an observed value
// are omitted.
func WriteSeriesCSV(w io.Writer, table models.TimeSeriesTable) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"country", "country_code", "year", "value"}); err != nil {
		return err
	}
	for _, p := range table.Sorted() {
		if !p.HasValue() {
			continue
		}
		record := []string{
			p.Country,
			p.CountryCode,
			strconv.Itoa(p.Year),
			strconv.FormatFloat(*p.Value, 'f', -1, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteMovementsCSV writes movement explanations as CSV.
func WriteMovementsCSV(w io.Writer, entries []models.ExplanationEntry) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"country", "direction", "year", "percent_change", "reason"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			e.Country,
			string(e.Direction),
			strconv.Itoa(e.Year),
			strconv.FormatFloat(e.PercentChange, 'f', 2, 64),
			e.Reason,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePredictionsCSV writes forecasts as CSV.
func WritePredictionsCSV(w io.Writer, preds []models.Prediction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"country", "year", "value", "lower_bound", "upper_bound"}); err != nil {
		return err
	}
	for _, p := range preds {
		record := []string{
			p.Country,
			strconv.Itoa(p.Year),
			strconv.FormatFloat(p.Value, 'f', 2, 64),
			strconv.FormatFloat(p.Lower, 'f', 2, 64),
			strconv.FormatFloat(p.Upper, 'f', 2, 64),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
