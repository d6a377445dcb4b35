package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jbadenas/pistaclima/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// LocationKey buckets nearby coordinates into one cache cell (~100 m).
func LocationKey(lat, lon float64) string {
	return fmt.Sprintf("%.3f,%.3f", lat, lon)
}

// SaveDailyRecords upserts a series for a location cell in one
// transaction. Re-fetching a window overwrites what was cached.
func (s *Store) SaveDailyRecords(locationKey string, records []models.DailyWeatherRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare(`
		INSERT INTO daily_records (location_key, date, temperature_max, temperature_min, temperature_avg,
			humidity, precipitation, wind_speed, solar_radiation, eto, etc, frost_hours, chill_hours, gdd, precomputed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(location_key, date) DO UPDATE SET
			temperature_max = excluded.temperature_max,
			temperature_min = excluded.temperature_min,
			temperature_avg = excluded.temperature_avg,
			humidity = excluded.humidity,
			precipitation = excluded.precipitation,
			wind_speed = excluded.wind_speed,
			solar_radiation = excluded.solar_radiation,
			eto = excluded.eto,
			etc = excluded.etc,
			frost_hours = excluded.frost_hours,
			chill_hours = excluded.chill_hours,
			gdd = excluded.gdd,
			precomputed = excluded.precomputed
	`)
	if err != nil {
		tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(locationKey, r.Date, r.TempMax, r.TempMin, r.TempAvg,
			r.Humidity, r.Precipitation, r.WindSpeed, r.SolarRadiation,
			r.ETo, r.ETc, r.FrostHours, r.ChillHours, r.GDD, r.Precomputed); err != nil {
			tx.Rollback()
			return fmt.Errorf("insert daily record %s: %w", r.Date, err)
		}
	}
	return tx.Commit()
}

// GetDailyRecords returns the cached series for a location cell between
// two ISO dates inclusive, ordered by date.
func (s *Store) GetDailyRecords(locationKey, startDate, endDate string) ([]models.DailyWeatherRecord, error) {
	rows, err := s.db.Query(`
		SELECT date, temperature_max, temperature_min, temperature_avg, humidity, precipitation,
			wind_speed, solar_radiation, eto, etc, frost_hours, chill_hours, gdd, precomputed
		FROM daily_records
		WHERE location_key = ? AND date >= ? AND date <= ?
		ORDER BY date ASC
	`, locationKey, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.DailyWeatherRecord
	for rows.Next() {
		var r models.DailyWeatherRecord
		if err := rows.Scan(&r.Date, &r.TempMax, &r.TempMin, &r.TempAvg, &r.Humidity, &r.Precipitation,
			&r.WindSpeed, &r.SolarRadiation, &r.ETo, &r.ETc, &r.FrostHours, &r.ChillHours, &r.GDD, &r.Precomputed); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// CountDailyRecords returns how many days are cached for a location cell
// in a date window.
func (s *Store) CountDailyRecords(locationKey, startDate, endDate string) (int, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM daily_records
		WHERE location_key = ? AND date >= ? AND date <= ?
	`, locationKey, startDate, endDate).Scan(&n)
	return n, err
}

// InsertAnalysisRun persists one completed analysis and returns its ID.
// Structured outputs are stored as JSON; they are plain data by contract.
func (s *Store) InsertAnalysisRun(run models.AnalysisRun) (int64, error) {
	summary, err := json.Marshal(run.Summary)
	if err != nil {
		return 0, fmt.Errorf("marshal summary: %w", err)
	}
	suitability, err := json.Marshal(run.Suitability)
	if err != nil {
		return 0, fmt.Errorf("marshal suitability: %w", err)
	}
	report, err := json.Marshal(run.Report)
	if err != nil {
		return 0, fmt.Errorf("marshal report: %w", err)
	}

	res, err := s.db.Exec(`
		INSERT INTO analysis_runs (location_name, latitude, longitude, start_date, end_date,
			record_count, summary_json, suitability_json, report_json, narrative, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.Location.Name, run.Location.Latitude, run.Location.Longitude, run.StartDate, run.EndDate,
		run.RecordCount, string(summary), string(suitability), string(report), run.Narrative, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetAnalysisRun returns one persisted analysis, or nil if absent.
func (s *Store) GetAnalysisRun(id int64) (*models.AnalysisRun, error) {
	row := s.db.QueryRow(`
		SELECT id, location_name, latitude, longitude, start_date, end_date,
			record_count, summary_json, suitability_json, report_json, narrative, created_at
		FROM analysis_runs WHERE id = ?
	`, id)
	run, err := scanAnalysisRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// GetRecentAnalyses returns the newest persisted analyses.
func (s *Store) GetRecentAnalyses(limit int) ([]models.AnalysisRun, error) {
	rows, err := s.db.Query(`
		SELECT id, location_name, latitude, longitude, start_date, end_date,
			record_count, summary_json, suitability_json, report_json, narrative, created_at
		FROM analysis_runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.AnalysisRun
	for rows.Next() {
		run, err := scanAnalysisRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysisRun(row rowScanner) (*models.AnalysisRun, error) {
	var (
		run                          models.AnalysisRun
		summary, suitability, report string
	)
	if err := row.Scan(&run.ID, &run.Location.Name, &run.Location.Latitude, &run.Location.Longitude,
		&run.StartDate, &run.EndDate, &run.RecordCount, &summary, &suitability, &report,
		&run.Narrative, &run.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(summary), &run.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}
	if err := json.Unmarshal([]byte(suitability), &run.Suitability); err != nil {
		return nil, fmt.Errorf("unmarshal suitability: %w", err)
	}
	if err := json.Unmarshal([]byte(report), &run.Report); err != nil {
		return nil, fmt.Errorf("unmarshal report: %w", err)
	}
	return &run, nil
}
