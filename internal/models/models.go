package models

import "time"

// DateLayout is the ISO calendar-date form used throughout the pipeline.
const DateLayout = "2006-01-02"

// Location is a geographic point being evaluated for pistachio cultivation.
type Location struct {
	Name      string  `json:"name,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Elevation float64 `json:"elevation,omitempty"`
}

// DailyWeatherRecord is one normalized day of weather for a location.
// Providers are normalized into this shape at the ingest boundary; the
// analysis pipeline never probes alternative field spellings.
//
// ETo/ETc/GDD/chill/frost may arrive pre-populated; 0 means "not provided,
// derive it". Precomputed marks thermal indices that were already computed
// upstream from sub-daily data and must not be recomputed, only
// window-gated and clamped.
type DailyWeatherRecord struct {
	Date           string  `json:"date"`
	TempMax        float64 `json:"temperature_max"`
	TempMin        float64 `json:"temperature_min"`
	TempAvg        float64 `json:"temperature_avg"`
	Humidity       float64 `json:"humidity"`
	Precipitation  float64 `json:"precipitation"`
	WindSpeed      float64 `json:"wind_speed"`
	SolarRadiation float64 `json:"solar_radiation"`
	ETo            float64 `json:"eto"`
	ETc            float64 `json:"etc"`
	FrostHours     float64 `json:"frost_hours"`
	ChillHours     float64 `json:"chill_hours"`
	GDD            float64 `json:"gdd"`
	Precomputed    bool    `json:"precomputed"`
}

// Day parses the record's calendar date.
func (r DailyWeatherRecord) Day() (time.Time, error) {
	return time.Parse(DateLayout, r.Date)
}

// TempMean returns the daily mean temperature, preferring the provider's
// average when present.
func (r DailyWeatherRecord) TempMean() float64 {
	if r.TempAvg != 0 {
		return r.TempAvg
	}
	return (r.TempMax + r.TempMin) / 2
}

// SeasonalSummary aggregates enriched daily records for a site.
//
// When YearsCount > 1 every accumulated field is the arithmetic mean of
// per-year sums (per-campaign sums for chill), never a raw multi-year
// total, and IsAnnualized is true.
type SeasonalSummary struct {
	TotalDays          int     `json:"total_days"`
	AvgTemperature     float64 `json:"avg_temperature"`
	TotalGDD           float64 `json:"total_gdd"`
	TotalChillHours    float64 `json:"total_chill_hours"`
	TotalFrostHours    float64 `json:"total_frost_hours"`
	FrostDays          float64 `json:"frost_days"`
	TotalETO           float64 `json:"total_eto"`
	TotalETC           float64 `json:"total_etc"`
	TotalPrecipitation float64 `json:"total_precipitation"`
	WaterDeficit       float64 `json:"water_deficit"`
	YearsCount         int     `json:"years_count"`
	IsAnnualized       bool    `json:"is_annualized"`
}

// SuitabilityResult is the site-level verdict derived from a SeasonalSummary.
type SuitabilityResult struct {
	Score           int      `json:"score"`
	Warnings        []string `json:"warnings"`
	Recommendations []string `json:"recommendations"`
}

// ClimateProfile is the conservative multi-year profile used for cultivar
// matching. Favorable quantities (chill, GDD) carry their P10 across years;
// adverse quantities (frost, heat stress, extreme cold, water deficit) carry
// their P90, so the profile describes an unfavorable year rather than an
// average one.
type ClimateProfile struct {
	AvgTemperature     float64 `json:"avg_temperature"`
	MinTemperature     float64 `json:"min_temperature"`
	MaxTemperature     float64 `json:"max_temperature"`
	TotalChillHours    float64 `json:"total_chill_hours"`
	TotalGDD           float64 `json:"total_gdd"`
	FrostDays          float64 `json:"frost_days"`
	TotalFrostHours    float64 `json:"total_frost_hours"`
	TotalPrecipitation float64 `json:"total_precipitation"`
	WaterDeficit       float64 `json:"water_deficit"`
	HeatStressDays     float64 `json:"heat_stress_days"`
	ExtremeColdDays    float64 `json:"extreme_cold_days"`
	YearsCount         int     `json:"years_count"`
	InsufficientData   bool    `json:"insufficient_data"`
}

// VarietyRole distinguishes fruit-bearing cultivars from pollinizers.
type VarietyRole string

const (
	RoleFemale VarietyRole = "female"
	RoleMale   VarietyRole = "male"
)

// PistachioVariety is static reference data describing one cultivar.
// The catalog is loaded once and treated as read-only.
type PistachioVariety struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	Role            VarietyRole `json:"role"`
	Origin          string      `json:"origin,omitempty"`
	ChillHoursMin   float64     `json:"chill_hours_min"`
	ChillHoursMax   float64     `json:"chill_hours_max"`
	MaxSummerTemp   float64     `json:"max_summer_temp"`
	MinWinterTemp   float64     `json:"min_winter_temp"`
	AnnualWaterNeed float64     `json:"annual_water_need"`
	Pollinizers     []string    `json:"pollinizers,omitempty"`
	Notes           string      `json:"notes,omitempty"`
}

// VarietyRecommendation is one scored cultivar. Computed fresh on every
// request from immutable inputs; never persisted or mutated in place.
type VarietyRecommendation struct {
	Variety         PistachioVariety   `json:"variety"`
	Score           float64            `json:"score"`
	MatchingFactors []string           `json:"matching_factors"`
	Concerns        []string           `json:"concerns"`
	Recommendations []string           `json:"recommendations"`
	Pollinizers     []PistachioVariety `json:"pollinizers"`
}

// PlantingStrategy is derived from the top-ranked cultivar.
type PlantingStrategy struct {
	Variety           string   `json:"variety"`
	Pollinizer        string   `json:"pollinizer,omitempty"`
	MaleToFemaleRatio string   `json:"male_to_female_ratio"`
	Spacing           string   `json:"spacing"`
	TreesPerHectare   int      `json:"trees_per_hectare"`
	Timeline          []string `json:"timeline"`
}

// RankingReport is the aggregate cultivar-matching report.
type RankingReport struct {
	GeneratedAt            time.Time               `json:"generated_at"`
	Location               Location                `json:"location"`
	Profile                ClimateProfile          `json:"profile"`
	Recommendations        []VarietyRecommendation `json:"recommendations"`
	TopVarieties           []string                `json:"top_varieties"`
	ViableCount            int                     `json:"viable_count"`
	RiskScore              int                     `json:"risk_score"`
	RiskLevel              string                  `json:"risk_level"`
	PlantingStrategy       *PlantingStrategy       `json:"planting_strategy,omitempty"`
	GeneralRecommendations []string                `json:"general_recommendations"`
}

// AnalysisRun is one persisted site analysis.
type AnalysisRun struct {
	ID          int64             `json:"id"`
	Location    Location          `json:"location"`
	StartDate   string            `json:"start_date"`
	EndDate     string            `json:"end_date"`
	RecordCount int               `json:"record_count"`
	Summary     SeasonalSummary   `json:"summary"`
	Suitability SuitabilityResult `json:"suitability"`
	Report      RankingReport     `json:"report"`
	Narrative   string            `json:"narrative,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
