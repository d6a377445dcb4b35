package store

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/jbadenas/pistaclima/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestSaveAndGetDailyRecords(t *testing.T) {
	store := setupTestStore(t)
	key := LocationKey(38.9985, -3.3688)

	records := []models.DailyWeatherRecord{
		{Date: "2020-01-01", TempMax: 8.5, TempMin: -1.2, ChillHours: 14, FrostHours: 2},
		{Date: "2020-01-02", TempMax: 10.1, TempMin: 0.4, ChillHours: 11},
	}
	if err := store.SaveDailyRecords(key, records); err != nil {
		t.Fatalf("SaveDailyRecords: %v", err)
	}

	got, err := store.GetDailyRecords(key, "2020-01-01", "2020-01-31")
	if err != nil {
		t.Fatalf("GetDailyRecords: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != "2020-01-01" || got[0].ChillHours != 14 {
		t.Errorf("first record = %+v", got[0])
	}

	// Upsert replaces, not duplicates.
	records[0].ChillHours = 20
	if err := store.SaveDailyRecords(key, records[:1]); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	n, err := store.CountDailyRecords(key, "2020-01-01", "2020-01-31")
	if err != nil {
		t.Fatalf("CountDailyRecords: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2 after upsert", n)
	}
	got, _ = store.GetDailyRecords(key, "2020-01-01", "2020-01-01")
	if got[0].ChillHours != 20 {
		t.Errorf("upsert did not replace chill_hours: %v", got[0].ChillHours)
	}
}

func TestDailyRecordsIsolatedByLocation(t *testing.T) {
	store := setupTestStore(t)

	store.SaveDailyRecords("a", []models.DailyWeatherRecord{{Date: "2020-06-01", TempMax: 30}})
	store.SaveDailyRecords("b", []models.DailyWeatherRecord{{Date: "2020-06-01", TempMax: 20}})

	got, err := store.GetDailyRecords("a", "2020-01-01", "2020-12-31")
	if err != nil {
		t.Fatalf("GetDailyRecords: %v", err)
	}
	if len(got) != 1 || got[0].TempMax != 30 {
		t.Errorf("location a records = %+v", got)
	}
}

func TestAnalysisRunRoundTrip(t *testing.T) {
	store := setupTestStore(t)

	run := models.AnalysisRun{
		Location:    models.Location{Name: "Manzanares", Latitude: 38.9985, Longitude: -3.3688},
		StartDate:   "2004-01-01",
		EndDate:     "2023-12-31",
		RecordCount: 7305,
		Summary:     models.SeasonalSummary{TotalDays: 7305, TotalGDD: 2300, TotalChillHours: 950, YearsCount: 20, IsAnnualized: true},
		Suitability: models.SuitabilityResult{Score: 88, Warnings: []string{"Déficit hídrico de 640 mm/año"}},
		Report:      models.RankingReport{RiskLevel: "Moderado", TopVarieties: []string{"Kerman", "Sirora", "Larnaka"}},
	}

	id, err := store.InsertAnalysisRun(run)
	if err != nil {
		t.Fatalf("InsertAnalysisRun: %v", err)
	}
	if id == 0 {
		t.Fatal("id = 0")
	}

	got, err := store.GetAnalysisRun(id)
	if err != nil {
		t.Fatalf("GetAnalysisRun: %v", err)
	}
	if got == nil {
		t.Fatal("GetAnalysisRun returned nil")
	}
	if got.Location.Name != "Manzanares" || got.Summary.YearsCount != 20 {
		t.Errorf("round trip = %+v", got)
	}
	if got.Suitability.Score != 88 || len(got.Suitability.Warnings) != 1 {
		t.Errorf("suitability = %+v", got.Suitability)
	}
	if got.Report.RiskLevel != "Moderado" {
		t.Errorf("report = %+v", got.Report)
	}

	missing, err := store.GetAnalysisRun(9999)
	if err != nil {
		t.Fatalf("GetAnalysisRun(missing): %v", err)
	}
	if missing != nil {
		t.Error("missing run should be nil, not error")
	}
}

func TestGetRecentAnalyses(t *testing.T) {
	store := setupTestStore(t)

	for i := 0; i < 5; i++ {
		_, err := store.InsertAnalysisRun(models.AnalysisRun{
			Location: models.Location{Latitude: float64(i), Longitude: 0},
		})
		if err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	runs, err := store.GetRecentAnalyses(3)
	if err != nil {
		t.Fatalf("GetRecentAnalyses: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("len = %d, want 3", len(runs))
	}
	if runs[0].Location.Latitude != 4 {
		t.Errorf("newest first: got latitude %v, want 4", runs[0].Location.Latitude)
	}
}
