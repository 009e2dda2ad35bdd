package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	appVersion = "dev"
	appCommit  = "none"
	appDate    = "unknown"
)

// SetVersionInfo sets the version information injected via ldflags.
func SetVersionInfo(version, commit, date string) {
	appVersion = version
	appCommit = commit
	appDate = date
}

var rootCmd = &cobra.Command{
	Use:   "trellis",
	Short: "Trellis - garden layout optimization and care scheduling",
	Long: `Trellis plans vegetable gardens: it assigns plants to sunlight zones while
respecting companion planting and spacing constraints, and generates the
recurring care schedule (watering, fertilizing, and more) for what it placed.

Gardens, layouts, and care tasks are stored as YAML files under the trellis
data directory, so everything is inspectable and diffable.`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trellis %s\ncommit: %s\nbuilt:  %s\n", appVersion, appCommit, appDate)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
