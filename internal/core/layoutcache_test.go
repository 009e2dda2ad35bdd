package core

import (
	"testing"
	"time"

	"github.com/calebshay/trellis/pkg/models"
)

func cacheTestGarden() models.Garden {
	return models.Garden{
		ID:   "g1",
		Area: 100,
		Zones: []models.Zone{
			{ID: "z1", Area: 100, SunlightCondition: models.FullSun},
		},
		Plants: []models.Plant{
			testPlant("p-lettuce", models.PlantLettuce, 12, models.FullSun),
			testPlant("p-tomato", models.PlantTomato, 24, models.FullSun),
		},
	}
}

func TestGardenHash_Stability(t *testing.T) {
	garden := cacheTestGarden()

	h1, err := GardenHash(garden)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h2, err := GardenHash(garden)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hash not stable: %s vs %s", h1, h2)
	}

	mutated := cacheTestGarden()
	mutated.Area = 99
	mutated.Zones[0].Area = 99
	h3, err := GardenHash(mutated)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h3 == h1 {
		t.Error("mutated garden must hash differently")
	}
}

// Zone assignments are optimizer output; re-hashing a garden whose zones
// carry assignments must match the pre-optimization hash.
func TestGardenHash_IgnoresAssignments(t *testing.T) {
	garden := cacheTestGarden()
	h1, err := GardenHash(garden)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	garden.Zones[0].AssignedPlantIDs = []string{"p-tomato", "p-lettuce"}
	h2, err := GardenHash(garden)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h1 != h2 {
		t.Error("assignments must not affect the garden hash")
	}
}

func TestMemoryLayoutCache_TTL(t *testing.T) {
	restore := timeNow
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	defer func() { timeNow = restore }()

	cache := NewMemoryLayoutCache()
	layout := &models.Layout{GardenID: "g1", SpaceUtilizationPercent: 80}

	cache.Put("k1", layout, time.Hour)

	got, ok := cache.Get("k1")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if got.GardenID != "g1" {
		t.Errorf("wrong cached layout: %+v", got)
	}

	now = now.Add(2 * time.Hour)
	if _, ok := cache.Get("k1"); ok {
		t.Error("expected entry to expire after TTL")
	}
}

func TestCachingOptimizer_ReusesFreshResult(t *testing.T) {
	restore := timeNow
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	timeNow = func() time.Time { return now }
	defer func() { timeNow = restore }()

	counting := &countingOptimizer{inner: newTestOptimizer()}
	co := NewCachingOptimizer(counting, NewMemoryLayoutCache(), time.Hour)

	garden := cacheTestGarden()

	first, err := co.Optimize(garden)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.SourceHash == "" {
		t.Error("expected cached layout to carry its source hash")
	}

	second, err := co.Optimize(garden)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counting.calls != 1 {
		t.Errorf("expected 1 optimizer call, got %d", counting.calls)
	}
	if second.SourceHash != first.SourceHash {
		t.Error("cached result must match")
	}

	// Mutating the garden invalidates the key.
	garden.Plants = garden.Plants[:1]
	if _, err := co.Optimize(garden); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counting.calls != 2 {
		t.Errorf("expected recompute after mutation, got %d calls", counting.calls)
	}

	// Expiry forces a recompute too.
	now = now.Add(2 * time.Hour)
	if _, err := co.Optimize(cacheTestGarden()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if counting.calls != 3 {
		t.Errorf("expected recompute after expiry, got %d calls", counting.calls)
	}
}

type countingOptimizer struct {
	inner LayoutOptimizer
	calls int
}

func (c *countingOptimizer) Optimize(garden models.Garden) (*models.Layout, error) {
	c.calls++
	return c.inner.Optimize(garden)
}
