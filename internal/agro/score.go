package agro

import (
	"fmt"
	"math"

	"github.com/jbadenas/pistaclima/internal/models"
)

// Suitability thresholds for pistachio. Excess heat penalizes less than
// deficient heat: an orchard can be managed through a hot summer, not
// through a growing season that never accumulates.
const (
	chillMinHours = 600
	chillMaxHours = 1500
	gddMin        = 1500
	gddMax        = 3400
	frostDaysOK   = 10
	deficitOKmm   = 500
)

// ScoreSuitability maps a seasonal summary to a 0-100 site score with
// advisory warning and recommendation strings. The strings are display
// text, not structured codes; consumers show them verbatim.
func ScoreSuitability(s models.SeasonalSummary) models.SuitabilityResult {
	score := 100.0
	var warnings, recs []string

	if s.TotalChillHours < chillMinHours {
		score -= 30
		warnings = append(warnings, fmt.Sprintf("Horas frío insuficientes: %.0f h (mínimo recomendado %d h)", s.TotalChillHours, chillMinHours))
		recs = append(recs, "Considerar variedades de bajo requerimiento de frío (Mateur, Aegina)")
	} else if s.TotalChillHours > chillMaxHours {
		score -= 30
		warnings = append(warnings, fmt.Sprintf("Acumulación de frío excesiva: %.0f h (máximo recomendado %d h)", s.TotalChillHours, chillMaxHours))
		recs = append(recs, "Zona de invierno muy largo: evaluar riesgo de brotación tardía")
	}

	if s.TotalGDD < gddMin {
		score -= 25
		warnings = append(warnings, fmt.Sprintf("Integral térmica insuficiente: %.0f GDD (mínimo %d GDD)", s.TotalGDD, gddMin))
		recs = append(recs, "El fruto puede no alcanzar la madurez; valorar parcelas con mayor insolación")
	} else if s.TotalGDD > gddMax {
		score -= math.Min(8, (s.TotalGDD-gddMax)/100)
		warnings = append(warnings, fmt.Sprintf("Exceso de calor estival: %.0f GDD", s.TotalGDD))
		recs = append(recs, "Prever sombreo parcial o riego refrescante en veranos extremos")
	}

	if s.FrostDays > frostDaysOK {
		score -= s.FrostDays * 2
		warnings = append(warnings, fmt.Sprintf("Riesgo de helada elevado: %.0f días de helada al año", s.FrostDays))
		recs = append(recs, "Evitar fondos de valle; considerar protección antihelada en floración")
	}

	if s.WaterDeficit > deficitOKmm {
		score -= math.Min(25, (s.WaterDeficit-deficitOKmm)/40)
		warnings = append(warnings, fmt.Sprintf("Déficit hídrico de %.0f mm/año", s.WaterDeficit))
		recs = append(recs, fmt.Sprintf("Prever riego de apoyo de al menos %.0f mm/año", s.WaterDeficit-deficitOKmm))
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	return models.SuitabilityResult{
		Score:           int(math.Round(score)),
		Warnings:        warnings,
		Recommendations: recs,
	}
}
