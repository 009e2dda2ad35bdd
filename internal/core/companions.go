// Package core contains the business logic for Trellis: the companion
// planting table, the layout optimizer, the care-schedule generator, the
// layout cache, and configuration management.
package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/calebshay/trellis/pkg/models"
)

// CompanionSpacingFactor is the spacing reduction applied between companion
// plants: companions may sit 25% closer together.
const CompanionSpacingFactor = 0.75

// CompanionTable answers companion and incompatibility queries between plant
// types. It is pure lookup: no state, no errors. Unknown types are neutral
// (not companion, not incompatible, spacing factor 1.0).
type CompanionTable interface {
	AreCompanions(a, b models.PlantType) bool
	AreIncompatible(a, b models.PlantType) bool
	SpacingFactor(a, b models.PlantType) float64
}

type pairKey struct {
	a, b models.PlantType
}

// orderedPair normalizes a pair so lookups are symmetric by construction.
func orderedPair(a, b models.PlantType) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

type companionTable struct {
	companions   map[pairKey]bool
	incompatible map[pairKey]bool
}

// NewCompanionTable builds a table from explicit pair lists. Pairs are stored
// symmetrically; the table is validated so no pair is both companion and
// incompatible.
func NewCompanionTable(companions, incompatible [][2]models.PlantType) (CompanionTable, error) {
	t := &companionTable{
		companions:   make(map[pairKey]bool, len(companions)),
		incompatible: make(map[pairKey]bool, len(incompatible)),
	}
	for _, p := range companions {
		t.companions[orderedPair(p[0], p[1])] = true
	}
	for _, p := range incompatible {
		t.incompatible[orderedPair(p[0], p[1])] = true
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// validate rejects tables where a pair is listed as both companion and
// incompatible, and self-pairs in the incompatible set (a type cannot be
// incompatible with itself, or no two plants of that type could share a zone).
func (t *companionTable) validate() error {
	var errs []string
	for k := range t.companions {
		if t.incompatible[k] {
			errs = append(errs, fmt.Sprintf("%s/%s listed as both companion and incompatible", k.a, k.b))
		}
	}
	for k := range t.incompatible {
		if k.a == k.b {
			errs = append(errs, fmt.Sprintf("%s listed as incompatible with itself", k.a))
		}
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return fmt.Errorf("companion table validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}

func (t *companionTable) AreCompanions(a, b models.PlantType) bool {
	return t.companions[orderedPair(a, b)]
}

func (t *companionTable) AreIncompatible(a, b models.PlantType) bool {
	return t.incompatible[orderedPair(a, b)]
}

// SpacingFactor returns the multiplier for the spacing between two plant
// types: CompanionSpacingFactor for companions, 1.0 otherwise. Enforcing the
// 75%-of-own-spacing floor is the optimizer's job, not this table's.
func (t *companionTable) SpacingFactor(a, b models.PlantType) float64 {
	if t.AreCompanions(a, b) {
		return CompanionSpacingFactor
	}
	return 1.0
}

// declaredTable overlays plant-declared companion and incompatibility pairs
// on a base table. Declared pairs extend the base; they never remove a base
// relation.
type declaredTable struct {
	base         CompanionTable
	companions   map[pairKey]bool
	incompatible map[pairKey]bool
}

// TableWithDeclarations extends base with the companion and incompatibility
// sets the plants themselves declare. Declared pairs are symmetric, like the
// built-in ones. A pair that ends up both companion and incompatible, through
// any mix of declarations and the base table, is rejected. With no
// declarations the base table is returned unchanged.
func TableWithDeclarations(base CompanionTable, plants []models.Plant) (CompanionTable, error) {
	companions := make(map[pairKey]bool)
	incompatible := make(map[pairKey]bool)
	for _, p := range plants {
		for _, other := range p.CompanionPlantTypes {
			companions[orderedPair(p.Type, other)] = true
		}
		for _, other := range p.IncompatiblePlantTypes {
			incompatible[orderedPair(p.Type, other)] = true
		}
	}
	if len(companions) == 0 && len(incompatible) == 0 {
		return base, nil
	}

	var errs []string
	for k := range incompatible {
		if k.a == k.b {
			errs = append(errs, fmt.Sprintf("%s declared incompatible with itself", k.a))
		}
		if companions[k] || base.AreCompanions(k.a, k.b) {
			errs = append(errs, fmt.Sprintf("%s/%s is both companion and incompatible", k.a, k.b))
		}
	}
	for k := range companions {
		if base.AreIncompatible(k.a, k.b) {
			errs = append(errs, fmt.Sprintf("%s/%s is both companion and incompatible", k.a, k.b))
		}
	}
	if len(errs) > 0 {
		sort.Strings(errs)
		return nil, fmt.Errorf("plant compatibility declarations invalid:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return &declaredTable{base: base, companions: companions, incompatible: incompatible}, nil
}

func (t *declaredTable) AreCompanions(a, b models.PlantType) bool {
	return t.companions[orderedPair(a, b)] || t.base.AreCompanions(a, b)
}

func (t *declaredTable) AreIncompatible(a, b models.PlantType) bool {
	return t.incompatible[orderedPair(a, b)] || t.base.AreIncompatible(a, b)
}

func (t *declaredTable) SpacingFactor(a, b models.PlantType) float64 {
	if t.AreCompanions(a, b) {
		return CompanionSpacingFactor
	}
	return 1.0
}

// defaultCompanionPairs are the built-in companion pairings for common
// vegetables.
var defaultCompanionPairs = [][2]models.PlantType{
	{models.PlantTomato, models.PlantBasil},
	{models.PlantTomato, models.PlantLettuce},
	{models.PlantTomato, models.PlantOnion},
	{models.PlantCarrot, models.PlantOnion},
	{models.PlantCarrot, models.PlantLettuce},
	{models.PlantCarrot, models.PlantRadish},
	{models.PlantLettuce, models.PlantRadish},
	{models.PlantLettuce, models.PlantSpinach},
	{models.PlantCorn, models.PlantBean},
	{models.PlantCorn, models.PlantSquash},
	{models.PlantBean, models.PlantSquash},
	{models.PlantBean, models.PlantCucumber},
	{models.PlantCucumber, models.PlantRadish},
	{models.PlantPepper, models.PlantBasil},
	{models.PlantPepper, models.PlantOnion},
	{models.PlantCabbage, models.PlantOnion},
	{models.PlantCabbage, models.PlantSpinach},
	{models.PlantPotato, models.PlantBean},
	{models.PlantPotato, models.PlantCabbage},
}

// defaultIncompatiblePairs are the built-in pairings that must never share a
// zone.
var defaultIncompatiblePairs = [][2]models.PlantType{
	{models.PlantTomato, models.PlantPotato},
	{models.PlantTomato, models.PlantCorn},
	{models.PlantTomato, models.PlantFennel},
	{models.PlantOnion, models.PlantBean},
	{models.PlantCarrot, models.PlantFennel},
	{models.PlantPotato, models.PlantCucumber},
	{models.PlantPotato, models.PlantSquash},
	{models.PlantCabbage, models.PlantTomato},
	{models.PlantFennel, models.PlantBean},
	{models.PlantFennel, models.PlantPepper},
}

// DefaultCompanionTable returns the built-in table. The built-in pair lists
// are known consistent, so construction never fails.
func DefaultCompanionTable() CompanionTable {
	t, err := NewCompanionTable(defaultCompanionPairs, defaultIncompatiblePairs)
	if err != nil {
		panic(fmt.Sprintf("built-in companion table is invalid: %v", err))
	}
	return t
}
