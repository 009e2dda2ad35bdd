package storage

import (
	"testing"
	"time"

	"github.com/calebshay/trellis/pkg/models"
)

func storedLayout(gardenID, hash string, generated time.Time) models.Layout {
	return models.Layout{
		GardenID: gardenID,
		Zones: []models.ZoneLayout{
			{ZoneID: "z1", Area: 100, SunlightCondition: models.FullSun, PlantIDs: []string{"p1"}, UsedArea: 4.8},
		},
		SpaceUtilizationPercent: 100,
		GeneratedAt:             generated,
		SourceHash:              hash,
	}
}

func TestLayoutManager_FreshnessChecks(t *testing.T) {
	mgr := NewLayoutManager(t.TempDir())
	generated := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	if err := mgr.PutLayout(storedLayout("g1", "hash-a", generated)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Matching hash, within the window: served.
	if _, ok := mgr.GetFresh("g1", "hash-a", generated.Add(time.Hour), 24*time.Hour); !ok {
		t.Error("expected fresh layout to be served")
	}

	// The garden changed: not served.
	if _, ok := mgr.GetFresh("g1", "hash-b", generated.Add(time.Hour), 24*time.Hour); ok {
		t.Error("stale source hash must not be served")
	}

	// Older than the freshness window: not served.
	if _, ok := mgr.GetFresh("g1", "hash-a", generated.Add(25*time.Hour), 24*time.Hour); ok {
		t.Error("layout older than the window must not be served")
	}

	// Unknown garden: not served.
	if _, ok := mgr.GetFresh("g2", "hash-a", generated, 24*time.Hour); ok {
		t.Error("unknown garden must not be served")
	}
}

func TestLayoutManager_SaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	generated := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	mgr := NewLayoutManager(dir)
	if err := mgr.PutLayout(storedLayout("g1", "hash-a", generated)); err != nil {
		t.Fatal(err)
	}
	if err := mgr.Save(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded := NewLayoutManager(dir)
	if err := reloaded.Load(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	layout, ok := reloaded.GetFresh("g1", "hash-a", generated.Add(time.Minute), 24*time.Hour)
	if !ok {
		t.Fatal("expected layout to survive the round trip")
	}
	if layout.SpaceUtilizationPercent != 100 || len(layout.Zones) != 1 {
		t.Errorf("unexpected layout: %+v", layout)
	}
}

func TestLayoutManager_Remove(t *testing.T) {
	mgr := NewLayoutManager(t.TempDir())
	if err := mgr.PutLayout(storedLayout("g1", "hash-a", time.Now())); err != nil {
		t.Fatal(err)
	}
	if err := mgr.RemoveLayout("g1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mgr.RemoveLayout("g1"); err == nil {
		t.Fatal("expected removing unknown layout to fail")
	}
	if err := mgr.PutLayout(models.Layout{}); err == nil {
		t.Fatal("expected empty garden ID to be rejected")
	}
}
