// Command wplace-archiver is the CLI surface over the diff/apply/restore
// engine: thin argument parsing and dispatch only, no business logic.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bczhc/wplace-archiver/internal/logging"
)

var verbose bool

func main() {
	root := &cobra.Command{
		Use:   "wplace-archiver",
		Short: "Content-addressed, chunk-oriented differential archiver for a tile canvas",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(verbose)
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		newDiffCmd(),
		newApplyCmd(),
		newCompareCmd(),
		newFilterCmd(),
		newShowCmd(),
		newTestCmd(),
		newRetrieveCmd(),
		newStitchCmd(),
		newTimelapseCmd(),
		newChecksumCmd(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
