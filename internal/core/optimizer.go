package core

import (
	"fmt"
	"sort"

	"github.com/calebshay/trellis/pkg/models"
)

// DefaultOptimizerSettings returns the optimizer constants used when no
// configuration overrides them.
func DefaultOptimizerSettings() models.OptimizerSettings {
	return models.OptimizerSettings{
		MinUtilizationPercent: 30,
		AccessibilityBuffer:   1.2,
		FullSunWeight:         1.2,
	}
}

// LayoutOptimizer assigns a garden's plants to its zones, maximizing space
// utilization subject to sunlight and companion constraints.
type LayoutOptimizer interface {
	Optimize(garden models.Garden) (*models.Layout, error)
}

// layoutOptimizer implements LayoutOptimizer as a deterministic pure function
// of its Garden argument. It holds no mutable state and is safe for
// concurrent use.
type layoutOptimizer struct {
	table    CompanionTable
	settings models.OptimizerSettings
}

// NewLayoutOptimizer creates a LayoutOptimizer using the given companion
// table and settings.
func NewLayoutOptimizer(table CompanionTable, settings models.OptimizerSettings) LayoutOptimizer {
	return &layoutOptimizer{table: table, settings: settings}
}

// Optimize validates the garden, sizes each zone against its sunlight-viable
// candidates, places plants zone by zone in companion-count order, and
// computes the sunlight-weighted utilization. It either returns a complete
// Layout or an *OptimizationError; no partial result is ever produced.
//
// Given an identical Garden value, the output is identical except for the
// GeneratedAt timestamp.
func (o *layoutOptimizer) Optimize(garden models.Garden) (*models.Layout, error) {
	if err := o.validate(garden); err != nil {
		return nil, err
	}

	// Plants may declare their own companion and incompatibility sets on top
	// of the built-in table; placement must honor both.
	table, err := TableWithDeclarations(o.table, garden.Plants)
	if err != nil {
		return nil, &OptimizationError{Kind: ErrIncompatible, Detail: err.Error()}
	}
	if table != o.table {
		o = &layoutOptimizer{table: table, settings: o.settings}
	}

	layout := &models.Layout{
		GardenID:    garden.ID,
		Zones:       make([]models.ZoneLayout, 0, len(garden.Zones)),
		GeneratedAt: timeNow().UTC(),
	}

	placed := make(map[string]bool, len(garden.Plants))

	for _, zone := range garden.Zones {
		zl := o.placeZone(garden, zone, placed)
		layout.Zones = append(layout.Zones, zl)
	}

	for _, p := range garden.Plants {
		if !placed[p.ID] {
			layout.UnplacedPlantIDs = append(layout.UnplacedPlantIDs, p.ID)
		}
	}

	layout.SpaceUtilizationPercent = o.utilization(garden, layout.Zones)

	if layout.SpaceUtilizationPercent < o.settings.MinUtilizationPercent {
		return nil, &OptimizationError{
			Kind:        ErrBelowTarget,
			Utilization: layout.SpaceUtilizationPercent,
			Detail:      fmt.Sprintf("minimum is %.1f%%", o.settings.MinUtilizationPercent),
		}
	}

	// Placement already rejects incompatible neighbors, so this should be
	// unreachable. Checked anyway: a layout with an incompatible pair must
	// never leave this function.
	if err := o.recheckCompatibility(garden, layout.Zones); err != nil {
		return nil, err
	}

	return layout, nil
}

// validate fails fast on any structural problem, before placement touches
// anything.
func (o *layoutOptimizer) validate(garden models.Garden) error {
	if garden.Area < models.MinGardenArea || garden.Area > models.MaxGardenArea {
		return &OptimizationError{
			Kind:   ErrInvalidArea,
			Detail: fmt.Sprintf("%.1f sq ft is outside [%.0f, %.0f]", garden.Area, models.MinGardenArea, models.MaxGardenArea),
		}
	}

	if len(garden.Zones) == 0 {
		return &OptimizationError{Kind: ErrInvalidZones, Detail: "garden has no zones"}
	}

	var zoneTotal float64
	for _, z := range garden.Zones {
		if z.Area < models.MinZoneArea {
			return &OptimizationError{
				Kind:   ErrInvalidZones,
				ZoneID: z.ID,
				Detail: fmt.Sprintf("area %.2f sq ft is below the %.0f sq ft minimum", z.Area, models.MinZoneArea),
			}
		}
		if !z.SunlightCondition.Valid() {
			return &OptimizationError{
				Kind:   ErrInvalidZones,
				ZoneID: z.ID,
				Detail: fmt.Sprintf("unknown sunlight condition %q", z.SunlightCondition),
			}
		}
		zoneTotal += z.Area
	}

	if diff := zoneTotal - garden.Area; diff > models.ZoneAreaTolerance || diff < -models.ZoneAreaTolerance {
		return &OptimizationError{
			Kind:   ErrInvalidZones,
			Detail: fmt.Sprintf("zone areas sum to %.2f sq ft but garden is %.2f sq ft", zoneTotal, garden.Area),
		}
	}

	if len(garden.Plants) == 0 {
		return &OptimizationError{Kind: ErrInsufficientSpace, Detail: "garden has no plants to place"}
	}

	var required float64
	for _, p := range garden.Plants {
		if p.SpacingInches <= 0 {
			return &OptimizationError{
				Kind:   ErrInsufficientSpace,
				Detail: fmt.Sprintf("plant %s has non-positive spacing %.1f", p.ID, p.SpacingInches),
			}
		}
		required += p.FootprintSqFt() * o.settings.AccessibilityBuffer
	}
	if required > garden.Area {
		return &OptimizationError{
			Kind:   ErrInsufficientSpace,
			Detail: fmt.Sprintf("plants need %.1f sq ft (with access paths) but garden is %.1f sq ft", required, garden.Area),
		}
	}

	return nil
}

// placeZone selects the zone's sunlight-viable candidates, orders them by
// companion count (ties broken by plant ID for determinism), and places them
// greedily. A plant is placed only if it has zero incompatible neighbors
// among the plants already in the zone and its buffered footprint still fits
// the zone's area.
func (o *layoutOptimizer) placeZone(garden models.Garden, zone models.Zone, placed map[string]bool) models.ZoneLayout {
	zl := models.ZoneLayout{
		ZoneID:            zone.ID,
		Area:              zone.Area,
		SunlightCondition: zone.SunlightCondition,
	}

	var candidates []models.Plant
	for _, p := range garden.Plants {
		if placed[p.ID] {
			continue
		}
		if zone.SunlightCondition.Satisfies(p.SunlightNeeds) {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) == 0 {
		return zl
	}

	counts := make(map[string]int, len(candidates))
	for _, p := range candidates {
		for _, other := range candidates {
			if p.ID != other.ID && o.table.AreCompanions(p.Type, other.Type) {
				counts[p.ID]++
			}
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := counts[candidates[i].ID], counts[candidates[j].ID]
		if ci != cj {
			return ci > cj
		}
		return candidates[i].ID < candidates[j].ID
	})

	var inZone []models.Plant
	for _, p := range candidates {
		if o.hasIncompatibleNeighbor(p, inZone) {
			continue
		}
		footprint := o.effectiveFootprint(p, inZone) * o.settings.AccessibilityBuffer
		if zl.UsedArea+footprint > zone.Area {
			continue
		}
		inZone = append(inZone, p)
		zl.PlantIDs = append(zl.PlantIDs, p.ID)
		zl.UsedArea += footprint
		placed[p.ID] = true
	}

	return zl
}

func (o *layoutOptimizer) hasIncompatibleNeighbor(p models.Plant, neighbors []models.Plant) bool {
	for _, n := range neighbors {
		if o.table.AreIncompatible(p.Type, n.Type) {
			return true
		}
	}
	return false
}

// effectiveFootprint applies the best companion spacing factor available
// among the plant's zone neighbors, floored at CompanionSpacingFactor of the
// plant's own spacing so stacked reductions can never push spacing below 75%.
func (o *layoutOptimizer) effectiveFootprint(p models.Plant, neighbors []models.Plant) float64 {
	factor := 1.0
	for _, n := range neighbors {
		if f := o.table.SpacingFactor(p.Type, n.Type); f < factor {
			factor = f
		}
	}
	if factor < CompanionSpacingFactor {
		factor = CompanionSpacingFactor
	}
	ft := p.SpacingInches * factor / 12.0
	return ft * ft
}

// utilization is the sunlight-weighted share of garden area in productive
// use, as a percentage clamped to [0, 100]. A zone counts as in use, with
// its full area, once at least one plant is placed in it; zones left empty
// contribute nothing.
func (o *layoutOptimizer) utilization(garden models.Garden, zones []models.ZoneLayout) float64 {
	var weighted float64
	for _, zl := range zones {
		if len(zl.PlantIDs) == 0 {
			continue
		}
		w := 1.0
		if zl.SunlightCondition == models.FullSun {
			w = o.settings.FullSunWeight
		}
		weighted += zl.Area * w
	}
	pct := 100 * weighted / garden.Area
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

func (o *layoutOptimizer) recheckCompatibility(garden models.Garden, zones []models.ZoneLayout) error {
	for _, zl := range zones {
		for i := 0; i < len(zl.PlantIDs); i++ {
			for j := i + 1; j < len(zl.PlantIDs); j++ {
				a := garden.PlantByID(zl.PlantIDs[i])
				b := garden.PlantByID(zl.PlantIDs[j])
				if a == nil || b == nil {
					continue
				}
				if o.table.AreIncompatible(a.Type, b.Type) {
					return &OptimizationError{
						Kind:   ErrIncompatible,
						ZoneID: zl.ZoneID,
						Detail: fmt.Sprintf("%s and %s cannot share a zone", a.ID, b.ID),
					}
				}
			}
		}
	}
	return nil
}
