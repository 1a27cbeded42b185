// =============================================================================
// SDMX to DDF Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a written DDF
// directory for consistency without converting anything.
//
// COMMAND USAGE:
//   sdmx2ddf validate [dir] [flags]
//
// FLAGS:
//   --report     : Also write the findings to this file
//   --max-errors : Stop collecting after this many findings (0 = no limit)
//
// =============================================================================

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/validation"
)

var (
	reportFile string
	maxErrors  int
)

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check a DDF directory for consistency",
	Long: `The validate command reads every DDF file in the directory and checks that
datapoint keys refer to declared entities, that measures and entity domains are
declared concepts, and that concept ids are canonical.

With no argument the configured output_dir is validated. The command fails if
any error is found; warnings are reported but do not fail it.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := cfg.OutputDir
		if len(args) == 1 {
			dir = args[0]
		}

		options := validation.DefaultValidationOptions()
		options.MaxErrors = maxErrors

		log.Infof("Validating %s", dir)
		result, err := validation.NewValidatorWithOptions(appFs, dir, options).ValidateAll()
		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), validation.FormatErrors(result.Errors))
		fmt.Fprintf(cmd.OutOrStdout(), "\n%d file(s), %d row(s), %d error(s), %d warning(s)\n",
			result.FilesValidated, result.RowsValidated, result.ErrorCount, result.WarningCount)

		if reportFile != "" {
			if err := validation.WriteErrorLog(appFs, result.Errors, reportFile); err != nil {
				return err
			}
		}

		if !result.IsValid {
			return fmt.Errorf("%s is not a consistent DDF dataset: %d error(s)", dir, result.ErrorCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&reportFile, "report", "", "Also write the findings to this file")
	validateCmd.Flags().IntVar(&maxErrors, "max-errors", validation.DefaultValidationOptions().MaxErrors, "Stop collecting after this many findings (0 = no limit)")
}
