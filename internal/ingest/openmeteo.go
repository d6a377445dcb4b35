package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jbadenas/pistaclima/internal/httputil"
	"github.com/jbadenas/pistaclima/internal/metrics"
	"github.com/jbadenas/pistaclima/internal/models"
)

const openMeteoArchiveURL = "https://archive-api.open-meteo.com/v1/archive"

// OpenMeteo fetches daily historical weather from the Open-Meteo archive
// API and normalizes it into DailyWeatherRecord. All field-name probing
// stays here; the analysis pipeline only ever sees the strict shape.
type OpenMeteo struct {
	baseURL string
	client  *http.Client
}

// NewOpenMeteo returns a client for the public archive endpoint.
func NewOpenMeteo() *OpenMeteo {
	return &OpenMeteo{
		baseURL: openMeteoArchiveURL,
		client:  httputil.NewClient(),
	}
}

// NewOpenMeteoWithBase returns a client against a custom base URL (tests).
func NewOpenMeteoWithBase(baseURL string) *OpenMeteo {
	return &OpenMeteo{
		baseURL: baseURL,
		client:  httputil.NewClient(),
	}
}

// archiveResponse mirrors the provider's daily arrays. Pointers keep
// provider nulls distinguishable from zeroes.
type archiveResponse struct {
	Daily struct {
		Time          []string   `json:"time"`
		TempMax       []*float64 `json:"temperature_2m_max"`
		TempMin       []*float64 `json:"temperature_2m_min"`
		TempMean      []*float64 `json:"temperature_2m_mean"`
		Precipitation []*float64 `json:"precipitation_sum"`
		Humidity      []*float64 `json:"relative_humidity_2m_mean"`
		WindSpeed     []*float64 `json:"wind_speed_10m_max"`
		Radiation     []*float64 `json:"shortwave_radiation_sum"`
		ETo           []*float64 `json:"et0_fao_evapotranspiration"`
	} `json:"daily"`
}

// FetchDailyHistory retrieves the daily series for [startDate, endDate]
// (ISO dates) at a point. Transient provider errors retry with exponential
// backoff; malformed payloads and client errors are permanent.
func (o *OpenMeteo) FetchDailyHistory(lat, lon float64, startDate, endDate string) ([]models.DailyWeatherRecord, error) {
	url := fmt.Sprintf("%s?latitude=%.4f&longitude=%.4f&start_date=%s&end_date=%s"+
		"&daily=temperature_2m_max,temperature_2m_min,temperature_2m_mean,precipitation_sum,"+
		"relative_humidity_2m_mean,wind_speed_10m_max,shortwave_radiation_sum,et0_fao_evapotranspiration"+
		"&timezone=UTC",
		o.baseURL, lat, lon, startDate, endDate)

	var body []byte
	operation := func() error {
		start := time.Now()
		resp, err := o.client.Get(url)
		if err != nil {
			metrics.WeatherAPICalls.WithLabelValues("openmeteo", "error").Inc()
			return fmt.Errorf("fetch archive: %w", err)
		}
		defer resp.Body.Close()
		metrics.WeatherAPILatency.WithLabelValues("openmeteo").Observe(time.Since(start).Seconds())

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			metrics.WeatherAPICalls.WithLabelValues("openmeteo", fmt.Sprintf("%d", resp.StatusCode)).Inc()
			return fmt.Errorf("archive status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			metrics.WeatherAPICalls.WithLabelValues("openmeteo", fmt.Sprintf("%d", resp.StatusCode)).Inc()
			return backoff.Permanent(fmt.Errorf("archive status %d: %s", resp.StatusCode, string(b)))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("read body: %w", err))
		}
		metrics.WeatherAPICalls.WithLabelValues("openmeteo", "200").Inc()
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 2 * time.Minute
	if err := backoff.Retry(operation, bo); err != nil {
		return nil, err
	}

	var data archiveResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return nil, fmt.Errorf("unmarshal archive: %w", err)
	}
	return o.normalize(data), nil
}

func (o *OpenMeteo) normalize(data archiveResponse) []models.DailyWeatherRecord {
	d := data.Daily
	records := make([]models.DailyWeatherRecord, 0, len(d.Time))
	for i, date := range d.Time {
		rec := models.DailyWeatherRecord{
			Date:           date,
			TempMax:        deref(d.TempMax, i),
			TempMin:        deref(d.TempMin, i),
			TempAvg:        deref(d.TempMean, i),
			Precipitation:  deref(d.Precipitation, i),
			Humidity:       deref(d.Humidity, i),
			WindSpeed:      deref(d.WindSpeed, i),
			SolarRadiation: deref(d.Radiation, i), // MJ/m²/day for this provider
			ETo:            deref(d.ETo, i),
		}
		rec, ok := CoerceRecord(rec)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// deref reads arr[i], treating missing entries and nulls as 0.
func deref(arr []*float64, i int) float64 {
	if i >= len(arr) || arr[i] == nil {
		return 0
	}
	return *arr[i]
}
