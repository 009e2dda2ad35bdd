package models

// PlantType identifies a vegetable variety. The set is open: gardens may
// carry types the built-in companion table has never heard of.
type PlantType string

const (
	PlantTomato   PlantType = "tomato"
	PlantLettuce  PlantType = "lettuce"
	PlantCarrot   PlantType = "carrot"
	PlantOnion    PlantType = "onion"
	PlantBasil    PlantType = "basil"
	PlantPepper   PlantType = "pepper"
	PlantBean     PlantType = "bean"
	PlantCorn     PlantType = "corn"
	PlantSquash   PlantType = "squash"
	PlantCucumber PlantType = "cucumber"
	PlantPotato   PlantType = "potato"
	PlantCabbage  PlantType = "cabbage"
	PlantRadish   PlantType = "radish"
	PlantSpinach  PlantType = "spinach"
	PlantFennel   PlantType = "fennel"
)

// SunlightCondition represents how much light a zone provides or a plant needs.
type SunlightCondition string

const (
	FullSun      SunlightCondition = "full_sun"
	PartialShade SunlightCondition = "partial_shade"
	FullShade    SunlightCondition = "full_shade"
)

// sunlightHours maps each condition to an hours-equivalent rank so conditions
// can be compared: a zone with more light can host lower-light plants, not
// the other way around.
var sunlightHours = map[SunlightCondition]int{
	FullSun:      8,
	PartialShade: 4,
	FullShade:    2,
}

// Valid reports whether the condition is one of the three known values.
func (s SunlightCondition) Valid() bool {
	_, ok := sunlightHours[s]
	return ok
}

// Satisfies reports whether a zone providing s can host a plant needing need.
func (s SunlightCondition) Satisfies(need SunlightCondition) bool {
	return sunlightHours[s] >= sunlightHours[need]
}

// Plant describes a single plant placed (or to be placed) in a garden.
// Plants are owned by their Garden and referenced by Zones via ID.
type Plant struct {
	ID                       string            `yaml:"id"`
	Type                     PlantType         `yaml:"type"`
	SpacingInches            float64           `yaml:"spacing_inches"`
	SunlightNeeds            SunlightCondition `yaml:"sunlight_needs"`
	DaysToMaturity           int               `yaml:"days_to_maturity"`
	CompanionPlantTypes      []PlantType       `yaml:"companions,omitempty"`
	IncompatiblePlantTypes   []PlantType       `yaml:"incompatible,omitempty"`
	WateringFrequencyDays    int               `yaml:"watering_frequency_days"`
	FertilizingFrequencyDays int               `yaml:"fertilizing_frequency_days"`
}

// FootprintSqFt returns the square-foot area one plant of this spacing
// occupies: a square with sides of the spacing requirement.
func (p Plant) FootprintSqFt() float64 {
	ft := p.SpacingInches / 12.0
	return ft * ft
}
