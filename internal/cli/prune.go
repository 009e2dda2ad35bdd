package cli

import (
	"fmt"
	"time"

	"github.com/calebshay/trellis/internal/observability"
	"github.com/spf13/cobra"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove old completed and stale care tasks",
	Long: `Housekeeping for the care task store.

Removes completed tasks older than the completed-retention window and
pending tasks whose due date passed more than the stale-retention window
ago. Both windows are set in .gardenconfig under retention.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if ScheduleMgr == nil {
			return fmt.Errorf("schedule manager not initialized")
		}

		result, err := ScheduleMgr.Prune(time.Now().UTC(), Retention)
		if err != nil {
			return fmt.Errorf("pruning tasks: %w", err)
		}
		if err := ScheduleMgr.Save(); err != nil {
			return fmt.Errorf("saving tasks: %w", err)
		}

		logEvent(observability.EventTasksPruned, "care tasks pruned", map[string]any{
			"completed_removed": result.CompletedRemoved,
			"stale_removed":     result.StaleRemoved,
		})

		fmt.Printf("Pruned %d completed and %d stale task(s)\n", result.CompletedRemoved, result.StaleRemoved)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
