package agro

import (
	"fmt"
	"math"

	"github.com/jbadenas/pistaclima/internal/models"
)

const (
	// BaseTempGDD is the growing-degree-day base temperature for pistachio.
	BaseTempGDD = 7.0
	// ChillThreshold is the chill-hour temperature threshold.
	ChillThreshold = 7.2
	// FrostThreshold is the frost-hour temperature threshold.
	FrostThreshold = 0.0

	// solarConstant is Gsc in MJ/m²/min (FAO-56).
	solarConstant = 0.0820
	// radToEvap converts MJ/m²/day to mm/day of evaporation equivalent.
	radToEvap = 0.408
)

// KcCurve is a four-stage piecewise-linear crop-coefficient phenology
// curve anchored at day-of-year breakpoints: flat initial Kc from bud
// break, a linear ramp to mid-season Kc during flowering and fruit set,
// flat mid-season Kc, and a linear decline to late-season Kc ending at
// harvest. Outside the season the orchard sits at the dormant Kc.
type KcCurve struct {
	BudBreakDOY  int
	FloweringDOY int
	FruitDevDOY  int
	RipeningDOY  int
	HarvestDOY   int

	KcDormant float64
	KcInitial float64
	KcMid     float64
	KcLate    float64
}

// DefaultKc is a central-Spain pistachio phenology (bud break early April,
// harvest mid September).
var DefaultKc = KcCurve{
	BudBreakDOY:  91,
	FloweringDOY: 121,
	FruitDevDOY:  166,
	RipeningDOY:  230,
	HarvestDOY:   258,
	KcDormant:    0.20,
	KcInitial:    0.40,
	KcMid:        1.10,
	KcLate:       0.45,
}

// At returns the crop coefficient for a day of year.
func (c KcCurve) At(doy int) float64 {
	d := float64(doy)
	switch {
	case doy < c.BudBreakDOY || doy > c.HarvestDOY:
		return c.KcDormant
	case doy < c.FloweringDOY:
		return c.KcInitial
	case doy < c.FruitDevDOY:
		frac := (d - float64(c.FloweringDOY)) / float64(c.FruitDevDOY-c.FloweringDOY)
		return c.KcInitial + frac*(c.KcMid-c.KcInitial)
	case doy < c.RipeningDOY:
		return c.KcMid
	default:
		frac := (d - float64(c.RipeningDOY)) / float64(c.HarvestDOY-c.RipeningDOY)
		return c.KcMid + frac*(c.KcLate-c.KcMid)
	}
}

// Deriver enriches raw daily weather records with ETo, ETc, GDD, chill
// hours and frost hours. It is a pure transform: no shared state, safe to
// use from multiple goroutines.
type Deriver struct {
	Latitude float64
	Kc       KcCurve
}

// NewDeriver returns a Deriver for a latitude with the default phenology.
func NewDeriver(latitude float64) *Deriver {
	return &Deriver{Latitude: latitude, Kc: DefaultKc}
}

// Enrich derives the agronomic indices for one record, returning an
// enriched copy. All derived fields are clamped to >= 0 and chill hours
// are zeroed outside the November-February window, including for
// precomputed inputs. An unparseable date is an error; callers decide
// whether to skip or fail.
func (d *Deriver) Enrich(rec models.DailyWeatherRecord) (models.DailyWeatherRecord, error) {
	day, err := rec.Day()
	if err != nil {
		return rec, fmt.Errorf("parse date %q: %w", rec.Date, err)
	}
	doy := day.YearDay()
	tmean := rec.TempMean()

	// ETo/ETc arriving as 0 means "not provided".
	if rec.ETo == 0 {
		rec.ETo = HargreavesETo(rec.TempMax, rec.TempMin, tmean, d.Latitude, doy)
	}
	if rec.ETc == 0 {
		rec.ETc = rec.ETo * d.Kc.At(doy)
	}

	if !rec.Precomputed {
		rec.GDD = math.Max(0, tmean-BaseTempGDD)
		rec.ChillHours = hoursBelow(rec.TempMin, rec.TempMax, ChillThreshold)
		rec.FrostHours = hoursBelow(rec.TempMin, rec.TempMax, FrostThreshold)
	}

	// Window gating and clamping apply uniformly, precomputed or not.
	if !InChillWindow(day) {
		rec.ChillHours = 0
	}
	rec.ETo = math.Max(0, rec.ETo)
	rec.ETc = math.Max(0, rec.ETc)
	rec.GDD = math.Max(0, rec.GDD)
	rec.ChillHours = math.Max(0, rec.ChillHours)
	rec.FrostHours = math.Max(0, rec.FrostHours)

	return rec, nil
}

// EnrichAll enriches a series, skipping records whose date cannot be
// parsed. A bad day should not fail a multi-decade batch.
func (d *Deriver) EnrichAll(records []models.DailyWeatherRecord) []models.DailyWeatherRecord {
	out := make([]models.DailyWeatherRecord, 0, len(records))
	for _, rec := range records {
		enriched, err := d.Enrich(rec)
		if err != nil {
			continue
		}
		out = append(out, enriched)
	}
	return out
}

// HargreavesETo estimates reference evapotranspiration (mm/day) with the
// Hargreaves-Samani formula: 0.0023 * (Tmean + 17.8) * sqrt(Tmax - Tmin) * Ra,
// with Ra expressed in evaporation equivalent. Negative results clamp to 0.
func HargreavesETo(tmax, tmin, tmean, latitude float64, doy int) float64 {
	ra := ExtraterrestrialRadiation(latitude, doy) * radToEvap
	eto := 0.0023 * (tmean + 17.8) * math.Sqrt(math.Abs(tmax-tmin)) * ra
	return math.Max(0, eto)
}

// ExtraterrestrialRadiation computes Ra (MJ/m²/day) for a latitude and day
// of year from solar declination and sunset hour angle (FAO-56 eq. 21-25).
func ExtraterrestrialRadiation(latitude float64, doy int) float64 {
	phi := latitude * math.Pi / 180
	dr := 1 + 0.033*math.Cos(2*math.Pi/365*float64(doy))
	delta := 0.409 * math.Sin(2*math.Pi/365*float64(doy)-1.39)

	x := -math.Tan(phi) * math.Tan(delta)
	// Polar day/night: keep acos in domain.
	if x < -1 {
		x = -1
	} else if x > 1 {
		x = 1
	}
	ws := math.Acos(x)

	return 24 * 60 / math.Pi * solarConstant * dr *
		(ws*math.Sin(phi)*math.Sin(delta) + math.Cos(phi)*math.Cos(delta)*math.Sin(ws))
}

// hoursBelow estimates how many of the day's 24 hours were below a
// threshold by linear interpolation between Tmin and Tmax. Tmax == Tmin is
// always resolved by the direct threshold comparisons, so the ratio never
// divides by zero.
func hoursBelow(tmin, tmax, threshold float64) float64 {
	if tmax <= threshold {
		return 24
	}
	if tmin >= threshold {
		return 0
	}
	h := 24 * (threshold - tmin) / (tmax - tmin)
	if h < 0 {
		return 0
	}
	if h > 24 {
		return 24
	}
	return h
}
