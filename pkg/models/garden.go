package models

// Garden bounds, in square feet. Inputs outside this range are rejected
// before any optimization work happens.
const (
	MinGardenArea = 1.0
	MaxGardenArea = 1000.0

	// MinZoneArea is the smallest workable zone. Anything narrower than
	// 2 sq ft cannot hold a single plant at common spacings.
	MinZoneArea = 2.0

	// ZoneAreaTolerance is how far the sum of zone areas may drift from
	// the garden area before the garden is considered inconsistent.
	ZoneAreaTolerance = 0.1
)

// Zone is a contiguous garden sub-area with a single sunlight condition.
// Zones are owned exclusively by their Garden.
type Zone struct {
	ID                string            `yaml:"id"`
	Area              float64           `yaml:"area"`
	SunlightCondition SunlightCondition `yaml:"sunlight"`
	// AssignedPlantIDs is populated by the optimizer; order is the
	// deterministic placement order.
	AssignedPlantIDs []string `yaml:"assigned_plants,omitempty"`
}

// Garden is the root aggregate: a plot with sunlight zones and the plants
// the gardener wants placed in them.
type Garden struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name,omitempty"`
	Area   float64 `yaml:"area"`
	Zones  []Zone  `yaml:"zones"`
	Plants []Plant `yaml:"plants"`
}

// PlantByID returns the plant with the given ID, or nil if the garden does
// not contain it.
func (g Garden) PlantByID(id string) *Plant {
	for i := range g.Plants {
		if g.Plants[i].ID == id {
			return &g.Plants[i]
		}
	}
	return nil
}
