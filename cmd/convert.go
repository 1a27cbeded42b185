// =============================================================================
// SDMX to DDF Converter - Convert Command
// =============================================================================
//
// This file defines the 'convert' command, which runs the whole pipeline.
// The root command runs the same pipeline when invoked without a subcommand.
//
// COMMAND USAGE:
//   sdmx2ddf [flags]
//   sdmx2ddf convert [flags]
//
// FLAGS:
//   --skip-index : Do not write ddf--index.csv
//
// Input and output paths come from the configuration only.
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/converter"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

var skipIndex bool

// =============================================================================
// CONVERT COMMAND DEFINITION
// =============================================================================

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert the SDMX inputs into DDF CSV files",
	Long: `The convert command reads the structure and data messages once and writes
the concept, entity and datapoint files into the output directory, then
regenerates ddf--index.csv from every DDF file found there.

Existing files with the same names are overwritten. A failure stops the run;
files written before it are left in place.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd)
	},
}

func init() {
	rootCmd.AddCommand(convertCmd)

	for _, c := range []*cobra.Command{rootCmd, convertCmd} {
		c.Flags().BoolVar(&skipIndex, "skip-index", false, "Do not write ddf--index.csv")
	}
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runConvert(cmd *cobra.Command) error {
	if skipIndex {
		cfg.SkipIndex = true
	}

	conv := converter.New(cfg,
		converter.WithFs(appFs),
		converter.WithLogger(log),
		converter.WithRunID(runID),
	)
	result, err := conv.Run(cmd.Context())
	if err != nil {
		log.Errorf("Conversion failed after writing %d file(s)", len(result.OutputFiles))
		return err
	}

	// =========================================================================
	// SUMMARY REPORT
	// =========================================================================

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== SDMX to DDF Conversion Summary ===")
	fmt.Fprintf(out, "Series read:        %d\n", result.Stats.SeriesRead)
	fmt.Fprintf(out, "Indicators:         %d\n", result.Stats.Indicators)
	fmt.Fprintf(out, "Locations:          %d\n", result.Stats.Locations)
	fmt.Fprintf(out, "Datapoints written: %d\n", result.Stats.DatapointsWritten)
	fmt.Fprintf(out, "Datapoints dropped: %d\n", result.Stats.DatapointsDropped)
	fmt.Fprintf(out, "Files written:      %d\n", len(result.OutputFiles))
	if result.IndexFile != "" {
		fmt.Fprintf(out, "Index:              %s\n", result.IndexFile)
	}
	fmt.Fprintf(out, "Total time:         %s\n", result.Stats.ProcessingTime)

	return nil
}
