package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WeatherAPICalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pistaclima_weather_api_calls_total",
			Help: "Total weather provider API calls",
		},
		[]string{"provider", "status"},
	)

	WeatherAPILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pistaclima_weather_api_latency_seconds",
			Help:    "Weather provider API call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"provider"},
	)

	AnalysesComputed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pistaclima_analyses_computed_total",
			Help: "Total site analyses computed",
		},
	)

	RecordsDerived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pistaclima_records_derived_total",
			Help: "Total daily records enriched with agronomic indices",
		},
	)

	GeocodeCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pistaclima_geocode_cache_hits_total",
			Help: "Geocode lookups served from the TTL cache",
		},
	)

	GeocodeCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pistaclima_geocode_cache_misses_total",
			Help: "Geocode lookups that fell through to the provider",
		},
	)
)
