package variety

import (
	"fmt"
	"math"
	"time"

	"github.com/jbadenas/pistaclima/internal/models"
)

// Risk levels for the aggregate report.
const (
	RiskLow      = "Bajo"
	RiskModerate = "Moderado"
	RiskHigh     = "Alto"
	RiskVeryHigh = "Muy Alto"
)

// BuildReport assembles the aggregate cultivar report: risk assessment,
// planting strategy from the top-ranked cultivar, and general
// recommendations keyed off profile thresholds and latitude.
func BuildReport(recs []models.VarietyRecommendation, profile models.ClimateProfile, loc models.Location) models.RankingReport {
	report := models.RankingReport{
		GeneratedAt:     time.Now().UTC(),
		Location:        loc,
		Profile:         profile,
		Recommendations: recs,
	}

	for i, r := range recs {
		if i < 3 {
			report.TopVarieties = append(report.TopVarieties, r.Variety.Name)
		}
		if r.Score >= 60 {
			report.ViableCount++
		}
	}

	report.RiskScore = riskScore(profile)
	report.RiskLevel = riskLevel(report.RiskScore)

	if len(recs) > 0 && !profile.InsufficientData {
		report.PlantingStrategy = plantingStrategy(recs[0])
	}
	report.GeneralRecommendations = generalRecommendations(profile, loc)
	return report
}

// riskScore is additive: each adverse profile trait past its threshold
// contributes one or two points.
func riskScore(p models.ClimateProfile) int {
	score := 0
	if p.TotalChillHours < 600 {
		score += 2
	}
	switch {
	case p.FrostDays > 10:
		score += 2
	case p.FrostDays > 5:
		score++
	}
	switch {
	case p.HeatStressDays > 15:
		score += 2
	case p.HeatStressDays > 8:
		score++
	}
	switch {
	case p.WaterDeficit > 900:
		score += 2
	case p.WaterDeficit > 600:
		score++
	}
	if p.ExtremeColdDays > 3 {
		score += 2
	}
	return score
}

func riskLevel(score int) string {
	switch {
	case score <= 1:
		return RiskLow
	case score <= 3:
		return RiskModerate
	case score <= 5:
		return RiskHigh
	default:
		return RiskVeryHigh
	}
}

func plantingStrategy(top models.VarietyRecommendation) *models.PlantingStrategy {
	s := &models.PlantingStrategy{
		Variety:           top.Variety.Name,
		MaleToFemaleRatio: "1:8",
		Spacing:           "7 x 6 m",
		TreesPerHectare:   238,
		Timeline: []string{
			"Año 0: preparación del terreno y plantación en primavera",
			"Años 1-3: formación del árbol y riegos de establecimiento",
			"Años 4-6: entrada en producción",
			"Año 7+: plena producción",
		},
	}
	if len(top.Pollinizers) > 0 {
		s.Pollinizer = top.Pollinizers[0].Name
	}
	return s
}

func generalRecommendations(p models.ClimateProfile, loc models.Location) []string {
	var out []string
	if p.InsufficientData {
		out = append(out, "Serie climática insuficiente (menos de una campaña completa): ampliar el histórico antes de decidir")
		return out
	}

	absLat := math.Abs(loc.Latitude)
	if absLat > 42 {
		out = append(out, "Latitud elevada: comprobar que la variedad madura antes de las primeras heladas de otoño")
	}
	if absLat < 30 {
		out = append(out, "Latitud baja: inviernos templados, priorizar variedades de bajo requerimiento de frío")
	}
	if p.FrostDays > 5 {
		out = append(out, "Evitar fondos de valle y zonas de acumulación de aire frío")
	}
	if p.WaterDeficit > 600 {
		out = append(out, fmt.Sprintf("Dimensionar el riego para un déficit de hasta %.0f mm en año seco", p.WaterDeficit))
	}
	if p.TotalChillHours >= 600 && p.TotalChillHours <= 1500 {
		out = append(out, "Acumulación de frío dentro del rango óptimo para las variedades principales")
	}
	return out
}
