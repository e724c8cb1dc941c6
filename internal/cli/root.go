package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "taintgate",
	Short: "Taint enforcement gateway for AI agent actions",
	Long:  "Tracks where inputs came from and blocks untrusted data from steering\nsensitive actions. Control parameters demand trusted provenance; data\nparameters flow freely. Enforcement, not observability.",
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
