// =============================================================================
// SDMX to DDF Converter - Index Command
// =============================================================================
//
// This file defines the 'index' command, which regenerates ddf--index.csv
// without converting anything.
//
// COMMAND USAGE:
//   sdmx2ddf index [dir]
//
// With no argument the configured output_dir is indexed.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/ddfindex"
)

var indexCmd = &cobra.Command{
	Use:   "index [dir]",
	Short: "Regenerate ddf--index.csv for a DDF directory",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.OutputDir
		if len(args) == 1 {
			dir = args[0]
		}

		log.Infof("Indexing %s", dir)
		path, err := ddfindex.Generate(appFs, dir)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Index written to %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(indexCmd)
}
