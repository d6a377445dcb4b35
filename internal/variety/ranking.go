package variety

import (
	"fmt"
	"math"
	"sort"

	"github.com/jbadenas/pistaclima/internal/models"
)

// Blending weights, applied in this order. Each sub-score folds into the
// running score as score = score*(1-w) + sub*w, so earlier factors anchor
// the baseline and later ones adjust it.
const (
	weightChill   = 0.25
	weightHeat    = 0.20
	weightCold    = 0.15
	weightWater   = 0.20
	weightThermal = 0.10
	weightRisk    = 0.10

	pollinationPenalty = 15

	gddRangeMin = 1500
	gddRangeMax = 3000

	toleranceBuffer = 2.0 // °C of slack before the steep penalty slope
)

// Engine ranks cultivars against a climate profile. The catalog is
// read-only; the engine never mutates it.
type Engine struct {
	catalog []models.PistachioVariety
}

// NewEngine creates a ranking engine over a cultivar catalog.
func NewEngine(catalog []models.PistachioVariety) *Engine {
	return &Engine{catalog: catalog}
}

// Catalog returns the engine's cultivar catalog.
func (e *Engine) Catalog() []models.PistachioVariety {
	return e.catalog
}

// Rank scores every fruit-bearing cultivar against the profile and returns
// recommendations sorted by descending score. Pollinizer viability is a
// cross-cultivar check: a cultivar whose resolved pollinizers all miss the
// profile's chill minimum takes a flat pollination-risk penalty.
func (e *Engine) Rank(profile models.ClimateProfile) []models.VarietyRecommendation {
	var out []models.VarietyRecommendation
	for _, v := range e.catalog {
		if v.Role != models.RoleFemale {
			continue
		}
		out = append(out, e.evaluate(v, profile))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (e *Engine) evaluate(v models.PistachioVariety, p models.ClimateProfile) models.VarietyRecommendation {
	rec := models.VarietyRecommendation{Variety: v}

	score := 100.0
	blend := func(sub, w float64) {
		score = score*(1-w) + sub*w
	}

	chill := e.scoreChill(v, p, &rec)
	blend(chill, weightChill)
	blend(e.scoreHeat(v, p, &rec), weightHeat)
	blend(e.scoreCold(v, p, &rec), weightCold)
	blend(e.scoreWater(v, p, &rec), weightWater)
	blend(e.scoreThermal(v, p, &rec), weightThermal)
	blend(e.scoreClimateRisk(p, &rec), weightRisk)

	// Pollinizer viability: at least one resolved pollinizer must itself
	// reach dormancy release under the profile's chill.
	resolved := e.resolvePollinizers(v)
	rec.Pollinizers = resolved
	if len(resolved) > 0 {
		viable := false
		for _, pol := range resolved {
			if p.TotalChillHours >= pol.ChillHoursMin {
				viable = true
				break
			}
		}
		if !viable {
			score -= pollinationPenalty
			rec.Concerns = append(rec.Concerns,
				fmt.Sprintf("Riesgo de polinización: ningún polinizador de %s cubre su frío mínimo con %.0f h", v.Name, p.TotalChillHours))
			rec.Recommendations = append(rec.Recommendations,
				"Valorar polinizadores alternativos de menor requerimiento de frío")
		}
	}

	rec.Score = math.Max(0, math.Min(100, score))
	return rec
}

func (e *Engine) resolvePollinizers(v models.PistachioVariety) []models.PistachioVariety {
	var out []models.PistachioVariety
	for _, id := range v.Pollinizers {
		if pol := ByID(e.catalog, id); pol != nil {
			out = append(out, *pol)
		}
	}
	return out
}

func (e *Engine) scoreChill(v models.PistachioVariety, p models.ClimateProfile, rec *models.VarietyRecommendation) float64 {
	chill := p.TotalChillHours
	switch {
	case chill >= v.ChillHoursMin && chill <= v.ChillHoursMax:
		rec.MatchingFactors = append(rec.MatchingFactors,
			fmt.Sprintf("Requerimiento de frío cubierto (%.0f h en rango %.0f-%.0f)", chill, v.ChillHoursMin, v.ChillHoursMax))
		return 100
	case chill < v.ChillHoursMin:
		deficit := (v.ChillHoursMin - chill) / v.ChillHoursMin
		rec.Concerns = append(rec.Concerns,
			fmt.Sprintf("Déficit de horas frío: %.0f h frente a un mínimo de %.0f h", chill, v.ChillHoursMin))
		return math.Max(0, 100-deficit*250)
	default:
		excess := (chill - v.ChillHoursMax) / v.ChillHoursMax
		rec.Concerns = append(rec.Concerns,
			fmt.Sprintf("Exceso de frío invernal: %.0f h sobre un máximo de %.0f h", chill, v.ChillHoursMax))
		return math.Max(20, 100-excess*120)
	}
}

func (e *Engine) scoreHeat(v models.PistachioVariety, p models.ClimateProfile, rec *models.VarietyRecommendation) float64 {
	over := p.MaxTemperature - v.MaxSummerTemp
	if over <= 0 {
		rec.MatchingFactors = append(rec.MatchingFactors,
			fmt.Sprintf("Tolerancia al calor adecuada (máxima %.1f °C)", p.MaxTemperature))
		return 100
	}
	rec.Concerns = append(rec.Concerns,
		fmt.Sprintf("Máximas de %.1f °C superan la tolerancia de %.0f °C", p.MaxTemperature, v.MaxSummerTemp))
	if over <= toleranceBuffer {
		return 100 - over*10
	}
	return math.Max(0, 80-(over-toleranceBuffer)*15)
}

func (e *Engine) scoreCold(v models.PistachioVariety, p models.ClimateProfile, rec *models.VarietyRecommendation) float64 {
	under := v.MinWinterTemp - p.MinTemperature
	if under <= 0 {
		rec.MatchingFactors = append(rec.MatchingFactors,
			fmt.Sprintf("Resistencia al frío invernal adecuada (mínima %.1f °C)", p.MinTemperature))
		return 100
	}
	rec.Concerns = append(rec.Concerns,
		fmt.Sprintf("Mínimas de %.1f °C por debajo de la tolerancia de %.0f °C", p.MinTemperature, v.MinWinterTemp))
	if under <= toleranceBuffer {
		return 100 - under*10
	}
	return math.Max(0, 80-(under-toleranceBuffer)*15)
}

func (e *Engine) scoreWater(v models.PistachioVariety, p models.ClimateProfile, rec *models.VarietyRecommendation) float64 {
	if v.AnnualWaterNeed <= 0 {
		return 100
	}
	ratio := p.WaterDeficit / v.AnnualWaterNeed
	switch {
	case ratio <= 0.3:
		rec.MatchingFactors = append(rec.MatchingFactors, "Déficit hídrico asumible en secano")
		return 100
	case ratio <= 0.6:
		rec.Recommendations = append(rec.Recommendations, "Prever riego de apoyo en años secos")
		return 80
	default:
		rec.Concerns = append(rec.Concerns,
			fmt.Sprintf("Déficit hídrico de %.0f mm frente a una necesidad de %.0f mm/año", p.WaterDeficit, v.AnnualWaterNeed))
		rec.Recommendations = append(rec.Recommendations, "Necesario riego deficitario controlado")
		return math.Max(30, 80-(ratio-0.6)*100)
	}
}

func (e *Engine) scoreThermal(v models.PistachioVariety, p models.ClimateProfile, rec *models.VarietyRecommendation) float64 {
	gdd := p.TotalGDD
	switch {
	case gdd >= gddRangeMin && gdd <= gddRangeMax:
		rec.MatchingFactors = append(rec.MatchingFactors,
			fmt.Sprintf("Integral térmica suficiente (%.0f GDD)", gdd))
		return 100
	case gdd < gddRangeMin:
		deficit := (gddRangeMin - gdd) / gddRangeMin
		rec.Concerns = append(rec.Concerns,
			fmt.Sprintf("Integral térmica escasa: %.0f GDD (mínimo %d)", gdd, gddRangeMin))
		return math.Max(0, 100-deficit*200)
	default:
		// Excess accumulation is the milder failure mode.
		excess := (gdd - gddRangeMax) / gddRangeMax
		return math.Max(40, 100-excess*100)
	}
}

func (e *Engine) scoreClimateRisk(p models.ClimateProfile, rec *models.VarietyRecommendation) float64 {
	score := 100.0
	switch {
	case p.FrostDays > 10:
		score -= 30
		rec.Concerns = append(rec.Concerns,
			fmt.Sprintf("Riesgo alto de helada primaveral (%.0f días en marzo-abril)", p.FrostDays))
	case p.FrostDays > 5:
		score -= 15
		rec.Recommendations = append(rec.Recommendations, "Vigilar heladas tardías durante la floración")
	}
	switch {
	case p.HeatStressDays > 20:
		score -= 30
		rec.Concerns = append(rec.Concerns,
			fmt.Sprintf("Estrés térmico estival frecuente (%.0f días)", p.HeatStressDays))
	case p.HeatStressDays > 10:
		score -= 15
		rec.Recommendations = append(rec.Recommendations, "Prever riego refrescante en olas de calor")
	}
	return math.Max(0, score)
}
