package models

import (
	"math"
	"testing"
)

func TestHasValue(t *testing.T) {
	tests := []struct {
		name  string
		point TimeSeriesPoint
		want  bool
	}{
		{"observed", NewPoint("India", "IND", 2020, 10.5), true},
		{"missing", TimeSeriesPoint{Country: "India", Year: 2020}, false},
		{"nan", TimeSeriesPoint{Country: "India", Year: 2020, Value: Float(math.NaN())}, false},
		{"inf", TimeSeriesPoint{Country: "India", Year: 2020, Value: Float(math.Inf(1))}, false},
		{"zero", NewPoint("India", "IND", 2020, 0), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.point.HasValue(); got != tt.want {
				t.Errorf("HasValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestByCountrySortsYears(t *testing.T) {
	table := TimeSeriesTable{
		NewPoint("USA", "USA", 2021, 3),
		NewPoint("USA", "USA", 2019, 1),
		NewPoint("India", "IND", 2020, 5),
		NewPoint("USA", "USA", 2020, 2),
	}
	groups := table.ByCountry()
	usa := groups["USA"]
	if len(usa) != 3 {
		t.Fatalf("expected 3 USA points, got %d", len(usa))
	}
	for i := 1; i < len(usa); i++ {
		if usa[i].Year <= usa[i-1].Year {
			t.Errorf("years not ascending: %d before %d", usa[i-1].Year, usa[i].Year)
		}
	}
}

func TestCountriesSorted(t *testing.T) {
	table := TimeSeriesTable{
		NewPoint("USA", "USA", 2020, 1),
		NewPoint("China", "CHN", 2020, 2),
		NewPoint("India", "IND", 2020, 3),
		NewPoint("USA", "USA", 2021, 4),
	}
	got := table.Countries()
	want := []string{"China", "India", "USA"}
	if len(got) != len(want) {
		t.Fatalf("expected %d countries, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("countries[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestYearRange(t *testing.T) {
	table := TimeSeriesTable{
		NewPoint("USA", "USA", 2005, 1),
		NewPoint("USA", "USA", 2019, 2),
		NewPoint("India", "IND", 2010, 3),
	}
	minY, maxY, ok := table.YearRange()
	if !ok || minY != 2005 || maxY != 2019 {
		t.Errorf("YearRange() = %d, %d, %v; want 2005, 2019, true", minY, maxY, ok)
	}

	if _, _, ok := (TimeSeriesTable{}).YearRange(); ok {
		t.Error("empty table should report ok=false")
	}
}

func TestLatestRankedDescending(t *testing.T) {
	table := TimeSeriesTable{
		NewPoint("USA", "USA", 2019, 100),
		NewPoint("USA", "USA", 2020, 110),
		NewPoint("India", "IND", 2020, 50),
		{Country: "Ghost", CountryCode: "GST", Year: 2020}, // no value
	}
	latest := table.Latest()
	if len(latest) != 2 {
		t.Fatalf("expected 2 latest points, got %d", len(latest))
	}
	if latest[0].Country != "USA" || *latest[0].Value != 110 {
		t.Errorf("expected USA 110 first, got %s %v", latest[0].Country, latest[0].Value)
	}
	if latest[1].Country != "India" {
		t.Errorf("expected India second, got %s", latest[1].Country)
	}
}

func TestLatestSkipsTrailingMissing(t *testing.T) {
	table := TimeSeriesTable{
		NewPoint("USA", "USA", 2019, 100),
		{Country: "USA", CountryCode: "USA", Year: 2020}, // newest year missing
	}
	latest := table.Latest()
	if len(latest) != 1 || latest[0].Year != 2019 {
		t.Fatalf("expected latest observed year 2019, got %+v", latest)
	}
}

func TestFittedExtrapolates(t *testing.T) {
	m := CountryModel{Slope: 2, Intercept: -4000}
	if got := m.Fitted(2025); got != 50 {
		t.Errorf("Fitted(2025) = %v, want 50", got)
	}
}
