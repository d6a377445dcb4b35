package agro

import (
	"math"
	"sort"

	"github.com/jbadenas/pistaclima/internal/models"
)

const (
	// MinProfileDays is roughly one full campaign of daily records; below
	// this the profile is degraded rather than misleading.
	MinProfileDays = 300

	// HeatStressTemp marks a summer day as heat-stressed for the tree.
	HeatStressTemp = 38.0
	// ExtremeColdTemp marks a day as risking winter kill of dormant wood.
	ExtremeColdTemp = -12.0
)

// BuildClimateProfile builds the conservative cultivar-matching profile
// from an enriched multi-year series.
//
// Each metric is reduced to one scalar per calendar year (per winter
// campaign for chill) and then collapsed across years with a percentile
// chosen per the metric's direction of risk: P10 for favorable quantities
// (chill, GDD), P90 for adverse ones (spring frost, heat stress, extreme
// cold, water deficit), median for annual precipitation. A grower must
// plan for an unfavorable year, not an average one.
//
// Fewer than MinProfileDays of parseable input yields a zeroed profile
// with InsufficientData set; callers must check it explicitly.
func BuildClimateProfile(records []models.DailyWeatherRecord) models.ClimateProfile {
	type yearStats struct {
		gdd             float64
		springFrostDays int
		springFrostHrs  float64
		precip          float64
		etc             float64
		heatStress      int
		extremeCold     int
	}

	years := make(map[int]*yearStats)
	campaignChill := make(map[int]float64)

	var (
		validDays int
		tempSum   float64
		minTemp   = math.Inf(1)
		maxTemp   = math.Inf(-1)
	)

	for _, rec := range records {
		day, err := rec.Day()
		if err != nil {
			continue
		}
		validDays++
		tempSum += rec.TempMean()
		minTemp = math.Min(minTemp, rec.TempMin)
		maxTemp = math.Max(maxTemp, rec.TempMax)

		y := years[day.Year()]
		if y == nil {
			y = &yearStats{}
			years[day.Year()] = y
		}
		if InGDDWindow(day) {
			y.gdd += rec.GDD
		}
		if InSpringFrostWindow(day) {
			y.springFrostHrs += rec.FrostHours
			if rec.FrostHours > 0 {
				y.springFrostDays++
			}
		}
		if InSummerWindow(day) && rec.TempMax >= HeatStressTemp {
			y.heatStress++
		}
		if rec.TempMin <= ExtremeColdTemp {
			y.extremeCold++
		}
		y.precip += rec.Precipitation
		y.etc += rec.ETc

		if InChillWindow(day) {
			campaignChill[WinterCampaignYear(day)] += rec.ChillHours
		}
	}

	if validDays < MinProfileDays {
		return models.ClimateProfile{InsufficientData: true, YearsCount: len(years)}
	}

	var chills []float64
	for _, c := range campaignChill {
		chills = append(chills, c)
	}
	var gdds, frostDays, frostHours, precips, deficits, heatDays, coldDays []float64
	for _, y := range years {
		gdds = append(gdds, y.gdd)
		frostDays = append(frostDays, float64(y.springFrostDays))
		frostHours = append(frostHours, y.springFrostHrs)
		precips = append(precips, y.precip)
		deficits = append(deficits, math.Max(0, y.etc-y.precip))
		heatDays = append(heatDays, float64(y.heatStress))
		coldDays = append(coldDays, float64(y.extremeCold))
	}

	return models.ClimateProfile{
		AvgTemperature:     tempSum / float64(validDays),
		MinTemperature:     minTemp,
		MaxTemperature:     maxTemp,
		TotalChillHours:    Percentile(chills, 0.10),
		TotalGDD:           Percentile(gdds, 0.10),
		FrostDays:          Percentile(frostDays, 0.90),
		TotalFrostHours:    Percentile(frostHours, 0.90),
		TotalPrecipitation: Percentile(precips, 0.50),
		WaterDeficit:       Percentile(deficits, 0.90),
		HeatStressDays:     Percentile(heatDays, 0.90),
		ExtremeColdDays:    Percentile(coldDays, 0.90),
		YearsCount:         len(years),
	}
}

// Percentile returns the interpolated percentile p (0..1) of values,
// using linear interpolation between closest ranks (the R-7 method:
// index = (n-1)*p). Returns 0 for an empty slice.
func Percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted) == 1 {
		return sorted[0]
	}
	idx := float64(len(sorted)-1) * p
	lo := int(math.Floor(idx))
	hi := int(math.Ceil(idx))
	if lo == hi {
		return sorted[lo]
	}
	frac := idx - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
