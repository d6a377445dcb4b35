package agro

import (
	"math"

	"github.com/jbadenas/pistaclima/internal/models"
)

// yearAccum accumulates one calendar year of enriched records.
type yearAccum struct {
	days       int
	tempSum    float64
	gdd        float64
	frostHours float64
	frostDays  int
	eto        float64
	etc        float64
	precip     float64
}

// Summarize aggregates an enriched series into a SeasonalSummary.
//
// A single-year series is summed directly: GDD only inside the April-
// October window, chill only inside November-February, everything else
// over all days. A multi-year series is annualized: per-calendar-year sums
// (per-winter-campaign sums for chill) are averaged across years, so a
// 20-year request reports one year's worth of accumulation, not twenty.
//
// Water deficit is computed after annualization as
// max(0, annualized ETc - annualized precipitation).
func Summarize(records []models.DailyWeatherRecord) models.SeasonalSummary {
	years := make(map[int]*yearAccum)
	campaignChill := make(map[int]float64)

	totalDays := 0
	for _, rec := range records {
		day, err := rec.Day()
		if err != nil {
			continue
		}
		totalDays++

		y := years[day.Year()]
		if y == nil {
			y = &yearAccum{}
			years[day.Year()] = y
		}
		y.days++
		y.tempSum += rec.TempMean()
		if InGDDWindow(day) {
			y.gdd += rec.GDD
		}
		y.frostHours += rec.FrostHours
		if rec.FrostHours > 0 {
			y.frostDays++
		}
		y.eto += rec.ETo
		y.etc += rec.ETc
		y.precip += rec.Precipitation

		if InChillWindow(day) {
			campaignChill[WinterCampaignYear(day)] += rec.ChillHours
		}
	}

	summary := models.SeasonalSummary{
		TotalDays:  totalDays,
		YearsCount: len(years),
	}
	if totalDays == 0 {
		return summary
	}

	if len(years) <= 1 {
		for _, y := range years {
			summary.AvgTemperature = y.tempSum / float64(y.days)
			summary.TotalGDD = y.gdd
			summary.TotalFrostHours = y.frostHours
			summary.FrostDays = float64(y.frostDays)
			summary.TotalETO = y.eto
			summary.TotalETC = y.etc
			summary.TotalPrecipitation = y.precip
		}
		for _, chill := range campaignChill {
			summary.TotalChillHours += chill
		}
		summary.WaterDeficit = math.Max(0, summary.TotalETC-summary.TotalPrecipitation)
		return summary
	}

	// Multi-year: arithmetic mean of per-year sums.
	n := float64(len(years))
	for _, y := range years {
		summary.AvgTemperature += y.tempSum / float64(y.days) / n
		summary.TotalGDD += y.gdd / n
		summary.TotalFrostHours += y.frostHours / n
		summary.FrostDays += float64(y.frostDays) / n
		summary.TotalETO += y.eto / n
		summary.TotalETC += y.etc / n
		summary.TotalPrecipitation += y.precip / n
	}
	// Chill is bucketed by winter campaign but divided by the number of
	// calendar years: N years of data span N+1 partial campaigns, and a
	// mean over campaigns would deflate the boundary winters.
	for _, chill := range campaignChill {
		summary.TotalChillHours += chill / n
	}
	summary.WaterDeficit = math.Max(0, summary.TotalETC-summary.TotalPrecipitation)
	summary.IsAnnualized = true
	return summary
}
