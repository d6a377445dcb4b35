// Package analysis orchestrates one site evaluation: fetch (or reuse
// cached) daily weather, enrich it with agronomic indices, aggregate,
// score, profile, and rank cultivars. Each run is self-contained and safe
// to execute concurrently with others.
package analysis

import (
	"fmt"
	"log"
	"time"

	"github.com/jbadenas/pistaclima/internal/agro"
	"github.com/jbadenas/pistaclima/internal/ingest"
	"github.com/jbadenas/pistaclima/internal/metrics"
	"github.com/jbadenas/pistaclima/internal/models"
	"github.com/jbadenas/pistaclima/internal/store"
	"github.com/jbadenas/pistaclima/internal/variety"
)

// WeatherSource supplies the daily series for a point and date window.
type WeatherSource interface {
	FetchDailyHistory(lat, lon float64, startDate, endDate string) ([]models.DailyWeatherRecord, error)
}

// Runner runs site analyses against a weather source, a record cache and
// a cultivar catalog.
type Runner struct {
	source  WeatherSource
	store   *store.Store
	catalog []models.PistachioVariety
}

// NewRunner wires an analysis runner. store may be nil (no caching or
// persistence, e.g. one-shot CLI use).
func NewRunner(source WeatherSource, st *store.Store, catalog []models.PistachioVariety) *Runner {
	return &Runner{source: source, store: st, catalog: catalog}
}

// Run evaluates a location over the given number of trailing years and
// returns the persisted analysis. The window ends with the last complete
// calendar year so partial years don't skew annualization.
func (r *Runner) Run(loc models.Location, years int) (*models.AnalysisRun, error) {
	if years < 1 {
		years = 1
	}
	endYear := time.Now().UTC().Year() - 1
	startDate := fmt.Sprintf("%04d-01-01", endYear-years+1)
	endDate := fmt.Sprintf("%04d-12-31", endYear)

	records, err := r.loadRecords(loc, startDate, endDate)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no weather records for %.4f,%.4f in %s..%s", loc.Latitude, loc.Longitude, startDate, endDate)
	}

	run := r.Evaluate(loc, records)
	run.StartDate = startDate
	run.EndDate = endDate

	if r.store != nil {
		id, err := r.store.InsertAnalysisRun(*run)
		if err != nil {
			// Persistence is best-effort; the computed result still stands.
			log.Printf("analysis: persist run: %v", err)
		} else {
			run.ID = id
		}
	}
	return run, nil
}

// Evaluate runs the pure pipeline over an already-loaded series.
func (r *Runner) Evaluate(loc models.Location, records []models.DailyWeatherRecord) *models.AnalysisRun {
	deriver := agro.NewDeriver(loc.Latitude)
	enriched := deriver.EnrichAll(ingest.CoerceSeries(records))
	metrics.RecordsDerived.Add(float64(len(enriched)))

	summary := agro.Summarize(enriched)
	suitability := agro.ScoreSuitability(summary)

	profile := agro.BuildClimateProfile(enriched)
	engine := variety.NewEngine(r.catalog)
	report := variety.BuildReport(engine.Rank(profile), profile, loc)

	metrics.AnalysesComputed.Inc()
	log.Printf("analysis: %s (%.4f,%.4f) %d days, score %d, risk %s",
		loc.Name, loc.Latitude, loc.Longitude, summary.TotalDays, suitability.Score, report.RiskLevel)

	return &models.AnalysisRun{
		Location:    loc,
		RecordCount: len(enriched),
		Summary:     summary,
		Suitability: suitability,
		Report:      report,
		CreatedAt:   time.Now().UTC(),
	}
}

// loadRecords serves the series from the sqlite cache when it covers the
// window, refetching from the provider otherwise.
func (r *Runner) loadRecords(loc models.Location, startDate, endDate string) ([]models.DailyWeatherRecord, error) {
	key := store.LocationKey(loc.Latitude, loc.Longitude)

	if r.store != nil {
		cached, err := r.store.GetDailyRecords(key, startDate, endDate)
		if err != nil {
			log.Printf("analysis: read record cache: %v", err)
		} else if covers(cached, startDate, endDate) {
			log.Printf("analysis: %d cached days for %s", len(cached), key)
			return cached, nil
		}
	}

	records, err := r.source.FetchDailyHistory(loc.Latitude, loc.Longitude, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("fetch daily history: %w", err)
	}

	if r.store != nil && len(records) > 0 {
		if err := r.store.SaveDailyRecords(key, records); err != nil {
			log.Printf("analysis: cache records: %v", err)
		}
	}
	return records, nil
}

// covers reports whether a cached series plausibly spans the window: at
// least 90% of the expected days.
func covers(records []models.DailyWeatherRecord, startDate, endDate string) bool {
	if len(records) == 0 {
		return false
	}
	start, err1 := time.Parse(models.DateLayout, startDate)
	end, err2 := time.Parse(models.DateLayout, endDate)
	if err1 != nil || err2 != nil {
		return false
	}
	expected := int(end.Sub(start).Hours()/24) + 1
	return len(records) >= expected*9/10
}
