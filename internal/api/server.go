package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jbadenas/pistaclima/internal/analysis"
	"github.com/jbadenas/pistaclima/internal/geocode"
	"github.com/jbadenas/pistaclima/internal/models"
	"github.com/jbadenas/pistaclima/internal/store"
)

type Server struct {
	runner   *analysis.Runner
	store    *store.Store
	catalog  []models.PistachioVariety
	geocoder geocode.Resolver
	port     string
}

// NewServer wires the HTTP surface. geocoder may be nil, in which case
// place-name lookups are disabled and only lat/lon queries work.
func NewServer(runner *analysis.Runner, st *store.Store, catalog []models.PistachioVariety, geocoder geocode.Resolver, port string) *Server {
	return &Server{
		runner:   runner,
		store:    st,
		catalog:  catalog,
		geocoder: geocoder,
		port:     port,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/varieties", s.handleVarieties)
	mux.HandleFunc("/api/analyses", s.handleAnalyses)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("api: shutdown: %v", err)
		}
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
