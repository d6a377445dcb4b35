package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	kongdotenv "github.com/titusjaka/kong-dotenv-go"
	_ "modernc.org/sqlite"

	"github.com/jbadenas/pistaclima/internal/analysis"
	"github.com/jbadenas/pistaclima/internal/api"
	"github.com/jbadenas/pistaclima/internal/geocode"
	"github.com/jbadenas/pistaclima/internal/ingest"
	"github.com/jbadenas/pistaclima/internal/models"
	"github.com/jbadenas/pistaclima/internal/narrative"
	"github.com/jbadenas/pistaclima/internal/store"
	"github.com/jbadenas/pistaclima/internal/variety"
)

var cli struct {
	DB      string `help:"Path to the SQLite database." default:"data/pistaclima.db" env:"PISTACLIMA_DB"`
	Catalog string `help:"Optional JSON cultivar catalog overriding the built-in one." env:"PISTACLIMA_CATALOG"`

	Serve struct {
		Port string `help:"HTTP server port." default:"8080" env:"PORT"`
	} `cmd:"" help:"Run the HTTP API server."`

	Analyze struct {
		Place     string  `help:"Place name to geocode (alternative to --lat/--lon)."`
		Lat       float64 `help:"Latitude in decimal degrees."`
		Lon       float64 `help:"Longitude in decimal degrees."`
		Years     int     `help:"Trailing complete years of history to analyze." default:"20"`
		Narrative bool    `help:"Add an OpenAI-written narrative (needs OPENAI_API_KEY)."`
	} `cmd:"" help:"Analyze one site and print the result as JSON."`

	Varieties struct{} `cmd:"" help:"Print the cultivar catalog as JSON."`
}

func main() {
	kctx := kong.Parse(&cli,
		kong.Name("pistaclima"),
		kong.Description("Pistachio site-suitability and cultivar-matching service."),
		kong.Configuration(kongdotenv.ENVFileReader, ".env"),
	)

	catalog, err := variety.LoadCatalog(cli.Catalog)
	if err != nil {
		log.Fatalf("load catalog: %v", err)
	}

	switch kctx.Command() {
	case "varieties":
		printJSON(catalog)
		return
	case "serve":
		runServe(catalog)
	case "analyze":
		runAnalyze(catalog)
	default:
		kctx.FatalIfErrorf(fmt.Errorf("unknown command %q", kctx.Command()))
	}
}

func openStore() *store.Store {
	if dir := filepath.Dir(cli.DB); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("create database directory: %v", err)
		}
	}
	db, err := sql.Open("sqlite", cli.DB)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	db.Exec("PRAGMA journal_mode=WAL")
	db.Exec("PRAGMA busy_timeout=5000")

	st := store.New(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	return st
}

func runServe(catalog []models.PistachioVariety) {
	st := openStore()
	runner := analysis.NewRunner(ingest.NewOpenMeteo(), st, catalog)
	geocoder := geocode.NewCachedResolver(geocode.NewClient(), geocode.DefaultTTL, 256)
	server := api.NewServer(runner, st, catalog, geocoder, cli.Serve.Port)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Printf("starting server on :%s", cli.Serve.Port)
	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}

func runAnalyze(catalog []models.PistachioVariety) {
	st := openStore()
	runner := analysis.NewRunner(ingest.NewOpenMeteo(), st, catalog)

	loc := models.Location{Latitude: cli.Analyze.Lat, Longitude: cli.Analyze.Lon}
	if cli.Analyze.Place != "" {
		geocoder := geocode.NewCachedResolver(geocode.NewClient(), geocode.DefaultTTL, 16)
		resolved, err := geocoder.Resolve(cli.Analyze.Place)
		if err != nil {
			log.Fatalf("geocode %q: %v", cli.Analyze.Place, err)
		}
		loc = resolved
		log.Printf("resolved %q to %.4f,%.4f", cli.Analyze.Place, loc.Latitude, loc.Longitude)
	}
	if loc.Latitude == 0 && loc.Longitude == 0 {
		log.Fatal("either --place or --lat/--lon required")
	}

	run, err := runner.Run(loc, cli.Analyze.Years)
	if err != nil {
		log.Fatalf("analyze: %v", err)
	}

	if cli.Analyze.Narrative {
		gen, err := narrative.NewGenerator()
		if err != nil {
			log.Printf("narrative disabled: %v", err)
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
			defer cancel()
			text, err := gen.Generate(ctx, run)
			if err != nil {
				log.Printf("narrative: %v", err)
			} else {
				run.Narrative = text
			}
		}
	}

	printJSON(run)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Fatalf("encode: %v", err)
	}
}
