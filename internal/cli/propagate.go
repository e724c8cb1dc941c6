package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ppiankov/taintgate/internal/model"
	"github.com/ppiankov/taintgate/internal/taint"
)

func init() {
	rootCmd.AddCommand(propagateCmd)
}

var propagateCmd = &cobra.Command{
	Use:   "propagate [level]...",
	Short: "Combine input taint levels into the output taint level",
	Long: "Prints the taint level of an output derived from inputs at the given\n" +
		"levels: the riskiest input wins. No arguments yield trusted.\n" +
		"Unrecognized levels count as hostile.",
	RunE: runPropagate,
}

func runPropagate(cmd *cobra.Command, args []string) error {
	levels := make([]model.TaintLevel, len(args))
	for i, a := range args {
		levels[i] = model.ParseLevel(a)
	}
	fmt.Println(string(taint.Propagate(levels...)))
	return nil
}
