package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	trellismcp "github.com/calebshay/trellis/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the trellis MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the trellis MCP server on stdio",
	Long: `Start the trellis MCP server on stdio transport.

The server exposes trellis functionality as MCP tools that AI assistants
can call: optimize_garden, get_layout, list_care_tasks, complete_care_task,
get_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if GardenMgr == nil || ScheduleMgr == nil || LayoutMgr == nil {
			return fmt.Errorf("storage layer not initialized")
		}

		srv := trellismcp.NewServer(GardenMgr, ScheduleMgr, LayoutMgr, Optimizer, ScheduleGen, MetricsCalc, LayoutTTL, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
