package variety

import (
	"testing"

	"github.com/jbadenas/pistaclima/internal/models"
)

func TestBuildReport(t *testing.T) {
	e := NewEngine(DefaultCatalog())
	profile := favourableProfile()
	loc := models.Location{Name: "Manzanares", Latitude: 39.0, Longitude: -3.37}

	recs := e.Rank(profile)
	report := BuildReport(recs, profile, loc)

	if len(report.TopVarieties) != 3 {
		t.Errorf("TopVarieties = %v, want 3 entries", report.TopVarieties)
	}
	if report.ViableCount == 0 {
		t.Error("favourable profile should yield viable cultivars")
	}
	if report.RiskLevel != RiskLow {
		t.Errorf("RiskLevel = %s, want %s", report.RiskLevel, RiskLow)
	}
	if report.PlantingStrategy == nil {
		t.Fatal("missing planting strategy")
	}
	if report.PlantingStrategy.Variety != recs[0].Variety.Name {
		t.Errorf("strategy variety = %s, want top-ranked %s", report.PlantingStrategy.Variety, recs[0].Variety.Name)
	}
	if report.PlantingStrategy.MaleToFemaleRatio == "" || report.PlantingStrategy.TreesPerHectare == 0 {
		t.Error("planting strategy incomplete")
	}
}

func TestRiskLevels(t *testing.T) {
	tests := []struct {
		name    string
		profile models.ClimateProfile
		want    string
	}{
		{"benign", favourableProfile(), RiskLow},
		{
			"chill deficit and frost",
			models.ClimateProfile{TotalChillHours: 400, FrostDays: 12, TotalGDD: 2000, YearsCount: 5},
			RiskHigh,
		},
		{
			"everything adverse",
			models.ClimateProfile{
				TotalChillHours: 300, FrostDays: 15, HeatStressDays: 25,
				WaterDeficit: 1200, ExtremeColdDays: 5, YearsCount: 5,
			},
			RiskVeryHigh,
		},
		{
			"single moderate trait",
			func() models.ClimateProfile {
				p := favourableProfile()
				p.FrostDays = 7
				p.WaterDeficit = 700
				return p
			}(),
			RiskModerate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := riskLevel(riskScore(tt.profile))
			if got != tt.want {
				t.Errorf("risk = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestReportInsufficientData(t *testing.T) {
	e := NewEngine(DefaultCatalog())
	profile := models.ClimateProfile{InsufficientData: true}
	report := BuildReport(e.Rank(profile), profile, models.Location{Latitude: 40})

	if report.PlantingStrategy != nil {
		t.Error("degraded profile should not produce a planting strategy")
	}
	if len(report.GeneralRecommendations) == 0 {
		t.Fatal("expected a need-more-data recommendation")
	}
}

func TestLatitudeRecommendations(t *testing.T) {
	e := NewEngine(DefaultCatalog())
	profile := favourableProfile()

	high := BuildReport(e.Rank(profile), profile, models.Location{Latitude: -43.5})
	found := false
	for _, r := range high.GeneralRecommendations {
		if len(r) > 0 && containsLatitudeWarning(r) {
			found = true
		}
	}
	if !found {
		t.Errorf("high-latitude site missing latitude recommendation: %v", high.GeneralRecommendations)
	}
}

func containsLatitudeWarning(s string) bool {
	return len(s) >= 7 && s[:7] == "Latitud"
}
