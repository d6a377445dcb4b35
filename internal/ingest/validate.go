package ingest

import (
	"math"
	"time"

	"github.com/jbadenas/pistaclima/internal/models"
)

// CoerceRecord enforces the input contract at the boundary: non-finite
// numerics become 0, implausible values are clamped, and a record whose
// date does not parse is rejected. The analysis pipeline downstream never
// sees NaN.
func CoerceRecord(rec models.DailyWeatherRecord) (models.DailyWeatherRecord, bool) {
	if _, err := time.Parse(models.DateLayout, rec.Date); err != nil {
		return rec, false
	}

	rec.TempMax = finiteOrZero(rec.TempMax)
	rec.TempMin = finiteOrZero(rec.TempMin)
	rec.TempAvg = finiteOrZero(rec.TempAvg)
	rec.Humidity = finiteOrZero(rec.Humidity)
	rec.Precipitation = finiteOrZero(rec.Precipitation)
	rec.WindSpeed = finiteOrZero(rec.WindSpeed)
	rec.SolarRadiation = finiteOrZero(rec.SolarRadiation)
	rec.ETo = finiteOrZero(rec.ETo)
	rec.ETc = finiteOrZero(rec.ETc)
	rec.FrostHours = finiteOrZero(rec.FrostHours)
	rec.ChillHours = finiteOrZero(rec.ChillHours)
	rec.GDD = finiteOrZero(rec.GDD)

	if rec.Humidity < 0 {
		rec.Humidity = 0
	} else if rec.Humidity > 100 {
		rec.Humidity = 100
	}
	if rec.Precipitation < 0 {
		rec.Precipitation = 0
	}
	if rec.WindSpeed < 0 {
		rec.WindSpeed = 0
	}
	if rec.TempMax < rec.TempMin {
		rec.TempMax, rec.TempMin = rec.TempMin, rec.TempMax
	}
	return rec, true
}

// CoerceSeries applies CoerceRecord to a series, dropping rejects.
func CoerceSeries(records []models.DailyWeatherRecord) []models.DailyWeatherRecord {
	out := make([]models.DailyWeatherRecord, 0, len(records))
	for _, rec := range records {
		if coerced, ok := CoerceRecord(rec); ok {
			out = append(out, coerced)
		}
	}
	return out
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
