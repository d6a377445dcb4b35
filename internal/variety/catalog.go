package variety

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/jbadenas/pistaclima/internal/models"
)

// defaultCatalog is the built-in cultivar reference data. Chill ranges and
// tolerances follow published values for the main cultivars grown in Spain
// and the Mediterranean basin. Loaded once, read-only.
var defaultCatalog = []models.PistachioVariety{
	{
		ID: "kerman", Name: "Kerman", Role: models.RoleFemale, Origin: "Irán/California",
		ChillHoursMin: 800, ChillHoursMax: 1500, MaxSummerTemp: 45, MinWinterTemp: -18,
		AnnualWaterNeed: 700, Pollinizers: []string{"peters", "c-especial"},
		Notes: "Variedad de referencia; fruto grande, entrada en producción lenta",
	},
	{
		ID: "larnaka", Name: "Larnaka", Role: models.RoleFemale, Origin: "Chipre",
		ChillHoursMin: 500, ChillHoursMax: 900, MaxSummerTemp: 43, MinWinterTemp: -12,
		AnnualWaterNeed: 550, Pollinizers: []string{"guerrero", "c-especial"},
		Notes: "Productiva y precoz; adecuada para inviernos suaves",
	},
	{
		ID: "sirora", Name: "Sirora", Role: models.RoleFemale, Origin: "Australia",
		ChillHoursMin: 600, ChillHoursMax: 1000, MaxSummerTemp: 44, MinWinterTemp: -14,
		AnnualWaterNeed: 600, Pollinizers: []string{"peters"},
		Notes: "Buena apertura de cáscara; sensible a primaveras húmedas",
	},
	{
		ID: "mateur", Name: "Mateur", Role: models.RoleFemale, Origin: "Túnez",
		ChillHoursMin: 400, ChillHoursMax: 700, MaxSummerTemp: 44, MinWinterTemp: -10,
		AnnualWaterNeed: 500, Pollinizers: []string{"guerrero"},
		Notes: "Bajo requerimiento de frío; fruto pequeño muy aromático",
	},
	{
		ID: "aegina", Name: "Aegina", Role: models.RoleFemale, Origin: "Grecia",
		ChillHoursMin: 350, ChillHoursMax: 650, MaxSummerTemp: 42, MinWinterTemp: -10,
		AnnualWaterNeed: 450, Pollinizers: []string{"guerrero"},
		Notes: "Adaptada a clima mediterráneo litoral",
	},
	{
		ID: "peters", Name: "Peters", Role: models.RoleMale, Origin: "California",
		ChillHoursMin: 750, ChillHoursMax: 1300, MaxSummerTemp: 45, MinWinterTemp: -17,
		AnnualWaterNeed: 600,
		Notes: "Polinizador clásico de Kerman; floración solapada",
	},
	{
		ID: "c-especial", Name: "C-Especial", Role: models.RoleMale, Origin: "España",
		ChillHoursMin: 700, ChillHoursMax: 1200, MaxSummerTemp: 45, MinWinterTemp: -15,
		AnnualWaterNeed: 550,
		Notes: "Selección española de floración extendida",
	},
	{
		ID: "guerrero", Name: "Guerrero", Role: models.RoleMale, Origin: "España",
		ChillHoursMin: 450, ChillHoursMax: 900, MaxSummerTemp: 43, MinWinterTemp: -12,
		AnnualWaterNeed: 500,
		Notes: "Polinizador temprano para variedades de bajo frío",
	},
}

// DefaultCatalog returns a copy of the built-in cultivar catalog.
func DefaultCatalog() []models.PistachioVariety {
	out := make([]models.PistachioVariety, len(defaultCatalog))
	copy(out, defaultCatalog)
	return out
}

// LoadCatalog reads a cultivar catalog from a JSON file, falling back to
// the built-in catalog when path is empty.
func LoadCatalog(path string) ([]models.PistachioVariety, error) {
	if path == "" {
		return DefaultCatalog(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	var catalog []models.PistachioVariety
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(catalog) == 0 {
		return nil, fmt.Errorf("catalog %s is empty", path)
	}
	return catalog, nil
}

// ByID returns the variety with the given ID, or nil.
func ByID(catalog []models.PistachioVariety, id string) *models.PistachioVariety {
	for i := range catalog {
		if catalog[i].ID == id {
			return &catalog[i]
		}
	}
	return nil
}
