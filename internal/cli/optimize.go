package cli

import (
	"fmt"
	"time"

	"github.com/calebshay/trellis/internal/core"
	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/pkg/models"
	"github.com/spf13/cobra"
)

var optimizeForce bool

var optimizeCmd = &cobra.Command{
	Use:   "optimize <garden-id>",
	Short: "Compute the space-optimized layout for a garden",
	Long: `Assign the garden's plants to its sunlight zones.

Placement honors each plant's sunlight needs, keeps incompatible plants out
of the same zone, and tightens spacing between companions. The result is
stored and reused while the garden is unchanged; use --force to recompute.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GardenMgr == nil || Optimizer == nil {
			return fmt.Errorf("optimizer not initialized")
		}

		garden, err := GardenMgr.GetGarden(args[0])
		if err != nil {
			return fmt.Errorf("getting garden %s: %w", args[0], err)
		}

		hash, err := core.GardenHash(*garden)
		if err != nil {
			return fmt.Errorf("hashing garden %s: %w", garden.ID, err)
		}

		if !optimizeForce && LayoutMgr != nil {
			if cached, ok := LayoutMgr.GetFresh(garden.ID, hash, time.Now().UTC(), LayoutTTL); ok {
				fmt.Printf("Layout for %s is current (generated %s); use --force to recompute.\n",
					garden.ID, cached.GeneratedAt.Format(time.RFC3339))
				printLayout(cached)
				return nil
			}
		}

		layout, err := Optimizer.Optimize(*garden)
		if err != nil {
			return fmt.Errorf("optimizing garden %s: %w", garden.ID, err)
		}
		layout.SourceHash = hash

		// Persist the layout and mirror the assignments onto the garden's
		// zones so 'garden show' reflects them.
		if LayoutMgr != nil {
			if err := LayoutMgr.PutLayout(*layout); err != nil {
				return fmt.Errorf("storing layout for %s: %w", garden.ID, err)
			}
			if err := LayoutMgr.Save(); err != nil {
				return fmt.Errorf("saving layouts: %w", err)
			}
		}
		placedByZone := make(map[string][]string, len(layout.Zones))
		for _, zl := range layout.Zones {
			placedByZone[zl.ZoneID] = zl.PlantIDs
		}
		for i := range garden.Zones {
			garden.Zones[i].AssignedPlantIDs = placedByZone[garden.Zones[i].ID]
		}
		if err := GardenMgr.UpdateGarden(*garden); err != nil {
			return fmt.Errorf("updating garden %s: %w", garden.ID, err)
		}
		if err := GardenMgr.Save(); err != nil {
			return fmt.Errorf("saving gardens: %w", err)
		}

		logEvent(observability.EventGardenOptimized, "garden optimized", map[string]any{
			"garden_id":   garden.ID,
			"utilization": layout.SpaceUtilizationPercent,
			"unplaced":    len(layout.UnplacedPlantIDs),
		})

		printLayout(layout)
		return nil
	},
}

func printLayout(layout *models.Layout) {
	fmt.Printf("Layout for %s (utilization %.1f%%)\n", layout.GardenID, layout.SpaceUtilizationPercent)
	for _, zl := range layout.Zones {
		fmt.Printf("  %-12s %-14s %5.1f/%.1f sq ft", zl.ZoneID, zl.SunlightCondition, zl.UsedArea, zl.Area)
		if len(zl.PlantIDs) > 0 {
			fmt.Printf("  %v", zl.PlantIDs)
		}
		fmt.Println()
	}
	if len(layout.UnplacedPlantIDs) > 0 {
		fmt.Printf("  Unplaced: %v\n", layout.UnplacedPlantIDs)
	}
}

func init() {
	optimizeCmd.Flags().BoolVar(&optimizeForce, "force", false, "Recompute even when a current layout exists")
	rootCmd.AddCommand(optimizeCmd)
}
