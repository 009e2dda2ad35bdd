package models

import "time"

// ZoneLayout is one zone of a computed layout: its identity plus the plants
// the optimizer placed in it and the area those plants occupy.
type ZoneLayout struct {
	ZoneID            string            `yaml:"zone_id"`
	Area              float64           `yaml:"area"`
	SunlightCondition SunlightCondition `yaml:"sunlight"`
	PlantIDs          []string          `yaml:"plants"`
	UsedArea          float64           `yaml:"used_area"`
}

// Layout is the result of optimizing a Garden. It is derived data: it stays
// valid only while the source garden is unchanged (tracked by SourceHash)
// and younger than the configured freshness window.
type Layout struct {
	GardenID                string       `yaml:"garden_id"`
	Zones                   []ZoneLayout `yaml:"zones"`
	UnplacedPlantIDs        []string     `yaml:"unplaced_plants,omitempty"`
	SpaceUtilizationPercent float64      `yaml:"utilization_percent"`
	GeneratedAt             time.Time    `yaml:"generated_at"`
	SourceHash              string       `yaml:"source_hash,omitempty"`
}
