package cli

import (
	"fmt"
	"os"

	"github.com/calebshay/trellis/internal/observability"
	"github.com/calebshay/trellis/pkg/models"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var gardenCmd = &cobra.Command{
	Use:   "garden",
	Short: "Manage gardens (add, list, show, remove)",
	Long: `Garden registry commands.

A garden is described in a YAML file: its total area, its sunlight zones,
and the plants to place. Registered gardens are stored in gardens.yaml in
the trellis data directory.`,
}

var gardenAddCmd = &cobra.Command{
	Use:   "add <garden.yaml>",
	Short: "Register a garden from a YAML description",
	Long: `Register a garden from a YAML file.

The file must describe a single garden: id, area (sq ft), zones with their
areas and sunlight conditions, and the plants to place. Zone areas must sum
to the garden area.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GardenMgr == nil {
			return fmt.Errorf("garden manager not initialized")
		}

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading garden file: %w", err)
		}

		var garden models.Garden
		if err := yaml.Unmarshal(data, &garden); err != nil {
			return fmt.Errorf("parsing garden file %s: %w", args[0], err)
		}
		if garden.ID == "" {
			return fmt.Errorf("garden file %s has no id", args[0])
		}

		if err := GardenMgr.AddGarden(garden); err != nil {
			return fmt.Errorf("adding garden %s: %w", garden.ID, err)
		}
		if err := GardenMgr.Save(); err != nil {
			return fmt.Errorf("saving gardens: %w", err)
		}

		logEvent(observability.EventGardenCreated, "garden registered", map[string]any{
			"garden_id": garden.ID,
			"area":      garden.Area,
			"zones":     len(garden.Zones),
			"plants":    len(garden.Plants),
		})

		fmt.Printf("Registered garden %s\n", garden.ID)
		fmt.Printf("  Area:   %.1f sq ft\n", garden.Area)
		fmt.Printf("  Zones:  %d\n", len(garden.Zones))
		fmt.Printf("  Plants: %d\n", len(garden.Plants))
		return nil
	},
}

var gardenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered gardens",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if GardenMgr == nil {
			return fmt.Errorf("garden manager not initialized")
		}

		gardens, err := GardenMgr.GetAllGardens()
		if err != nil {
			return fmt.Errorf("listing gardens: %w", err)
		}
		if len(gardens) == 0 {
			fmt.Println("No gardens registered. Use 'trellis garden add' to register one.")
			return nil
		}

		fmt.Printf("%-16s %-20s %10s %6s %7s\n", "ID", "NAME", "AREA", "ZONES", "PLANTS")
		for _, g := range gardens {
			fmt.Printf("%-16s %-20s %8.1f   %6d %7d\n", g.ID, g.Name, g.Area, len(g.Zones), len(g.Plants))
		}
		return nil
	},
}

var gardenShowCmd = &cobra.Command{
	Use:   "show <garden-id>",
	Short: "Show a garden's zones, plants, and current assignments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GardenMgr == nil {
			return fmt.Errorf("garden manager not initialized")
		}

		garden, err := GardenMgr.GetGarden(args[0])
		if err != nil {
			return fmt.Errorf("getting garden %s: %w", args[0], err)
		}

		fmt.Printf("Garden %s", garden.ID)
		if garden.Name != "" {
			fmt.Printf(" (%s)", garden.Name)
		}
		fmt.Printf("\n  Area: %.1f sq ft\n\n  Zones:\n", garden.Area)
		for _, z := range garden.Zones {
			fmt.Printf("    %-12s %8.1f sq ft  %-14s", z.ID, z.Area, z.SunlightCondition)
			if len(z.AssignedPlantIDs) > 0 {
				fmt.Printf("  plants: %v", z.AssignedPlantIDs)
			}
			fmt.Println()
		}
		fmt.Println("\n  Plants:")
		for _, p := range garden.Plants {
			fmt.Printf("    %-16s %-10s spacing %4.0f in  needs %s\n", p.ID, p.Type, p.SpacingInches, p.SunlightNeeds)
		}
		return nil
	},
}

var gardenRemoveCmd = &cobra.Command{
	Use:   "remove <garden-id>",
	Short: "Remove a garden and its stored layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if GardenMgr == nil {
			return fmt.Errorf("garden manager not initialized")
		}

		if err := GardenMgr.RemoveGarden(args[0]); err != nil {
			return fmt.Errorf("removing garden %s: %w", args[0], err)
		}
		if err := GardenMgr.Save(); err != nil {
			return fmt.Errorf("saving gardens: %w", err)
		}

		// A layout without its garden is meaningless; drop it too.
		if LayoutMgr != nil {
			_ = LayoutMgr.RemoveLayout(args[0])
			_ = LayoutMgr.Save()
		}

		fmt.Printf("Removed garden %s\n", args[0])
		return nil
	},
}

func init() {
	gardenCmd.AddCommand(gardenAddCmd)
	gardenCmd.AddCommand(gardenListCmd)
	gardenCmd.AddCommand(gardenShowCmd)
	gardenCmd.AddCommand(gardenRemoveCmd)
	rootCmd.AddCommand(gardenCmd)
}
