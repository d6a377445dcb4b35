package api_test

import (
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/jbadenas/pistaclima/internal/analysis"
	"github.com/jbadenas/pistaclima/internal/api"
	"github.com/jbadenas/pistaclima/internal/models"
	"github.com/jbadenas/pistaclima/internal/store"
	"github.com/jbadenas/pistaclima/internal/variety"
)

type fakeSource struct{}

func (fakeSource) FetchDailyHistory(lat, lon float64, startDate, endDate string) ([]models.DailyWeatherRecord, error) {
	var recs []models.DailyWeatherRecord
	start, _ := time.Parse(models.DateLayout, startDate)
	end, _ := time.Parse(models.DateLayout, endDate)
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		rec := models.DailyWeatherRecord{Date: day.Format(models.DateLayout), TempMax: 20, TempMin: 8}
		if day.Month() <= 2 || day.Month() >= 11 {
			rec.TempMax, rec.TempMin = 8, -1
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func setupServer(t *testing.T) *api.Server {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		t.Fatal(err)
	}

	catalog := variety.DefaultCatalog()
	runner := analysis.NewRunner(fakeSource{}, st, catalog)
	return api.NewServer(runner, st, catalog, nil, "8080")
}

func TestHealthEndpoint(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status"`) {
		t.Error("expected status field in JSON response")
	}
}

func TestVarietiesEndpoint(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest("GET", "/api/varieties", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var catalog []models.PistachioVariety
	if err := json.NewDecoder(w.Body).Decode(&catalog); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(catalog) == 0 {
		t.Fatal("empty catalog")
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest("GET", "/api/analyze?lat=39.0&lon=-3.37&years=2", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var run models.AnalysisRun
	if err := json.NewDecoder(w.Body).Decode(&run); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if run.Summary.YearsCount != 2 || !run.Summary.IsAnnualized {
		t.Errorf("summary = %+v, want 2 annualized years", run.Summary)
	}
	if run.Suitability.Score < 0 || run.Suitability.Score > 100 {
		t.Errorf("score = %d", run.Suitability.Score)
	}
}

func TestAnalyzeValidation(t *testing.T) {
	srv := setupServer(t)

	tests := []struct {
		name string
		url  string
	}{
		{"missing coordinates", "/api/analyze"},
		{"bad latitude", "/api/analyze?lat=abc&lon=0"},
		{"latitude out of range", "/api/analyze?lat=95&lon=0"},
		{"bad years", "/api/analyze?lat=39&lon=-3&years=0"},
		{"place without geocoder", "/api/analyze?place=Toledo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.url, nil)
			w := httptest.NewRecorder()
			srv.Handler().ServeHTTP(w, req)
			if w.Code != 400 {
				t.Errorf("expected 400, got %d", w.Code)
			}
		})
	}
}

func TestAnalysesEndpoint(t *testing.T) {
	srv := setupServer(t)

	// Produce one persisted run first.
	req := httptest.NewRequest("GET", "/api/analyze?lat=39.0&lon=-3.37&years=1", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("analyze: %d", w.Code)
	}

	req = httptest.NewRequest("GET", "/api/analyses", nil)
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var runs []models.AnalysisRun
	if err := json.NewDecoder(w.Body).Decode(&runs); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("len = %d, want 1", len(runs))
	}
}

func TestMetricsEndpoint(t *testing.T) {
	srv := setupServer(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
