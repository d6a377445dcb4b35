package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jbadenas/pistaclima/internal/models"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// handleAnalyze evaluates a site. Query params: either place=<name> or
// lat=<deg>&lon=<deg>, plus optional years=<n> (default 20).
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	loc, ok := s.resolveLocation(w, r)
	if !ok {
		return
	}

	years := 20
	if v := r.URL.Query().Get("years"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 80 {
			http.Error(w, "years must be an integer between 1 and 80", http.StatusBadRequest)
			return
		}
		years = n
	}

	run, err := s.runner.Run(loc, years)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	writeJSON(w, run)
}

func (s *Server) resolveLocation(w http.ResponseWriter, r *http.Request) (models.Location, bool) {
	q := r.URL.Query()

	if place := q.Get("place"); place != "" {
		if s.geocoder == nil {
			http.Error(w, "place lookup not configured; use lat/lon", http.StatusBadRequest)
			return models.Location{}, false
		}
		loc, err := s.geocoder.Resolve(place)
		if err != nil {
			http.Error(w, "geocode: "+err.Error(), http.StatusBadGateway)
			return models.Location{}, false
		}
		return loc, true
	}

	lat, errLat := strconv.ParseFloat(q.Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(q.Get("lon"), 64)
	if errLat != nil || errLon != nil {
		http.Error(w, "lat and lon query parameters required", http.StatusBadRequest)
		return models.Location{}, false
	}
	if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		http.Error(w, "lat/lon out of range", http.StatusBadRequest)
		return models.Location{}, false
	}
	return models.Location{Latitude: lat, Longitude: lon}, true
}

func (s *Server) handleVarieties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.catalog)
}

func (s *Server) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, []models.AnalysisRun{})
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	runs, err := s.store.GetRecentAnalyses(limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if runs == nil {
		runs = []models.AnalysisRun{}
	}
	writeJSON(w, runs)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
