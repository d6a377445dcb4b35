package agro

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/jbadenas/pistaclima/internal/models"
)

// syntheticYear builds a full calendar year of enriched-looking records:
// cold winters (chill and frost), warm summers (GDD and ETc), no rain.
func syntheticYear(year int) []models.DailyWeatherRecord {
	var recs []models.DailyWeatherRecord
	day := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day.Year() == year {
		rec := models.DailyWeatherRecord{Date: day.Format(models.DateLayout)}
		if InChillWindow(day) {
			rec.TempMax, rec.TempMin = 8, -1
			rec.ChillHours = 20
			rec.FrostHours = 3
		} else {
			rec.TempMax, rec.TempMin = 30, 14
			rec.GDD = 15
			rec.ETo = 6
			rec.ETc = 5
		}
		recs = append(recs, rec)
		day = day.AddDate(0, 0, 1)
	}
	return recs
}

func TestSummarizeSingleYear(t *testing.T) {
	s := Summarize(syntheticYear(2020))

	if s.IsAnnualized {
		t.Error("single year flagged as annualized")
	}
	if s.YearsCount != 1 {
		t.Errorf("YearsCount = %d, want 1", s.YearsCount)
	}
	if s.TotalDays != 366 {
		t.Errorf("TotalDays = %d, want 366", s.TotalDays)
	}
	// Jan 1 - Feb 29 and Nov 1 - Dec 31 of a leap year = 121 chill days.
	wantChill := 121.0 * 20
	if math.Abs(s.TotalChillHours-wantChill) > 1e-6 {
		t.Errorf("TotalChillHours = %v, want %v", s.TotalChillHours, wantChill)
	}
	if s.TotalGDD <= 0 {
		t.Error("TotalGDD should accumulate over the growing season")
	}
	if s.WaterDeficit <= 0 {
		t.Error("dry synthetic year should show a water deficit")
	}
}

// Two identical years must annualize back to the single-year totals, not
// double them. This is the guard against 20-year requests reporting 20x
// accumulations.
func TestSummarizeAnnualizationScaling(t *testing.T) {
	one := Summarize(syntheticYear(2019))
	// 2019 and 2021 are both non-leap years carrying identical values.
	two := Summarize(append(syntheticYear(2019), syntheticYear(2021)...))

	if !two.IsAnnualized {
		t.Fatal("multi-year summary not flagged annualized")
	}
	if two.YearsCount != 2 {
		t.Fatalf("YearsCount = %d, want 2", two.YearsCount)
	}

	fields := []struct {
		name     string
		one, two float64
	}{
		{"TotalGDD", one.TotalGDD, two.TotalGDD},
		{"TotalChillHours", one.TotalChillHours, two.TotalChillHours},
		{"TotalFrostHours", one.TotalFrostHours, two.TotalFrostHours},
		{"FrostDays", one.FrostDays, two.FrostDays},
		{"TotalETC", one.TotalETC, two.TotalETC},
		{"TotalPrecipitation", one.TotalPrecipitation, two.TotalPrecipitation},
		{"WaterDeficit", one.WaterDeficit, two.WaterDeficit},
	}
	for _, f := range fields {
		if math.Abs(f.one-f.two) > 1e-6 {
			t.Errorf("%s: single-year %v vs annualized %v", f.name, f.one, f.two)
		}
	}
}

func TestSummarizeChillAcrossYearBoundary(t *testing.T) {
	// One winter spanning the year boundary: Dec 2019 + Jan 2020 all
	// belong to the 2020 campaign; two calendar years are present.
	var recs []models.DailyWeatherRecord
	for _, d := range []string{"2019-12-30", "2019-12-31", "2020-01-01", "2020-01-02"} {
		recs = append(recs, models.DailyWeatherRecord{Date: d, TempMax: 6, TempMin: 0, ChillHours: 10})
	}
	s := Summarize(recs)

	if s.YearsCount != 2 {
		t.Fatalf("YearsCount = %d, want 2", s.YearsCount)
	}
	// 40 campaign hours over 2 years of data annualize to 20.
	if math.Abs(s.TotalChillHours-20) > 1e-9 {
		t.Errorf("TotalChillHours = %v, want 20", s.TotalChillHours)
	}
}

func TestSummarizeSkipsMalformedDates(t *testing.T) {
	recs := []models.DailyWeatherRecord{
		{Date: "2020-06-01", GDD: 10},
		{Date: "garbage", GDD: 10},
	}
	s := Summarize(recs)
	if s.TotalDays != 1 {
		t.Errorf("TotalDays = %d, want 1", s.TotalDays)
	}
	if s.TotalGDD != 10 {
		t.Errorf("TotalGDD = %v, want 10", s.TotalGDD)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.TotalDays != 0 || s.YearsCount != 0 || s.IsAnnualized {
		t.Errorf("empty summary = %+v, want zero value", s)
	}
}

// End-to-end scenario: a year with frosty januaries and hot julys at
// latitude 37.5 derives chill only in winter and GDD only in season.
func TestDeriveThenSummarizeScenario(t *testing.T) {
	d := NewDeriver(37.5)
	var recs []models.DailyWeatherRecord
	day := time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)
	for day.Year() == 2021 {
		rec := models.DailyWeatherRecord{Date: day.Format(models.DateLayout)}
		if day.Month() == time.January {
			rec.TempMax, rec.TempMin = 5, -2
		} else {
			rec.TempMax, rec.TempMin = 30, 10
		}
		recs = append(recs, rec)
		day = day.AddDate(0, 0, 1)
	}

	enriched := d.EnrichAll(recs)
	if len(enriched) != 365 {
		t.Fatalf("enriched %d records, want 365", len(enriched))
	}
	for _, rec := range enriched {
		parsed, _ := rec.Day()
		switch parsed.Month() {
		case time.January:
			if rec.ChillHours <= 0 {
				t.Fatalf("%s: january chill_hours = %v, want > 0", rec.Date, rec.ChillHours)
			}
		case time.July:
			if rec.ChillHours != 0 {
				t.Fatalf("%s: july chill_hours = %v, want 0", rec.Date, rec.ChillHours)
			}
			if rec.GDD <= 0 {
				t.Fatalf("%s: july gdd = %v, want > 0", rec.Date, rec.GDD)
			}
		}
	}

	s := Summarize(enriched)
	if s.IsAnnualized {
		t.Error("single-year scenario flagged annualized")
	}
	if s.YearsCount != 1 {
		t.Errorf("YearsCount = %d, want 1", s.YearsCount)
	}
	if s.TotalGDD <= 0 || s.TotalChillHours <= 0 {
		t.Errorf("expected positive GDD (%v) and chill (%v)", s.TotalGDD, s.TotalChillHours)
	}
}

func ExampleSummarize() {
	recs := []models.DailyWeatherRecord{
		{Date: "2022-01-10", TempMax: 6, TempMin: -1, ChillHours: 18, FrostHours: 2},
		{Date: "2022-07-10", TempMax: 34, TempMin: 18, GDD: 19, ETc: 6.5},
	}
	s := Summarize(recs)
	fmt.Println(s.YearsCount, s.IsAnnualized)
	// Output: 1 false
}
