package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/calebshay/trellis/internal/core"
	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/pkg/models"
)

// countingOptimizer wraps the real optimizer and counts invocations.
type countingOptimizer struct {
	inner core.LayoutOptimizer
	calls int
}

func (o *countingOptimizer) Optimize(garden models.Garden) (*models.Layout, error) {
	o.calls++
	return o.inner.Optimize(garden)
}

func TestOptimizeCmd(t *testing.T) {
	tmpDir := setupServices(t)
	log := &memoryEventLog{}
	EventLog = log
	registerGarden(t, tmpDir)

	if err := optimizeCmd.RunE(optimizeCmd, []string{"backyard"}); err != nil {
		t.Fatalf("optimize: %v", err)
	}

	garden, err := GardenMgr.GetGarden("backyard")
	if err != nil {
		t.Fatal(err)
	}
	hash, err := core.GardenHash(*garden)
	if err != nil {
		t.Fatal(err)
	}
	layout, ok := LayoutMgr.GetFresh("backyard", hash, time.Now().UTC(), LayoutTTL)
	if !ok {
		t.Fatal("expected a stored layout after optimize")
	}
	if layout.SpaceUtilizationPercent <= 0 {
		t.Errorf("utilization = %v, want > 0", layout.SpaceUtilizationPercent)
	}

	// Both plants fit; their assignments must be mirrored onto the garden.
	assigned := 0
	for _, z := range garden.Zones {
		assigned += len(z.AssignedPlantIDs)
	}
	if assigned != 2 {
		t.Errorf("expected 2 assigned plants on the garden, got %d", assigned)
	}

	if log.countByType(observability.EventGardenOptimized) != 1 {
		t.Error("expected a garden.optimized event")
	}
}

func TestOptimizeCmd_ReusesCurrentLayout(t *testing.T) {
	tmpDir := setupServices(t)
	registerGarden(t, tmpDir)

	counter := &countingOptimizer{inner: Optimizer}
	Optimizer = counter

	if err := optimizeCmd.RunE(optimizeCmd, []string{"backyard"}); err != nil {
		t.Fatalf("first optimize: %v", err)
	}
	if err := optimizeCmd.RunE(optimizeCmd, []string{"backyard"}); err != nil {
		t.Fatalf("second optimize: %v", err)
	}
	if counter.calls != 1 {
		t.Errorf("unchanged garden re-optimized: %d calls, want 1", counter.calls)
	}

	origForce := optimizeForce
	defer func() { optimizeForce = origForce }()
	optimizeForce = true
	if err := optimizeCmd.RunE(optimizeCmd, []string{"backyard"}); err != nil {
		t.Fatalf("forced optimize: %v", err)
	}
	if counter.calls != 2 {
		t.Errorf("--force did not recompute: %d calls, want 2", counter.calls)
	}
}

func TestOptimizeCmd_UnknownGarden(t *testing.T) {
	setupServices(t)

	err := optimizeCmd.RunE(optimizeCmd, []string{"nope"})
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found error, got %v", err)
	}
}
