// =============================================================================
// SDMX to DDF Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every subcommand is
// attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (sdmx2ddf, runs the conversion)
//   ├── convertCmd  (sdmx2ddf convert)
//   ├── indexCmd    (sdmx2ddf index [dir])
//   ├── validateCmd (sdmx2ddf validate [dir])
//   └── versionCmd  (sdmx2ddf version)
//
// The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration before a subcommand runs
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/config"
	"github.com/ginjaninja78/sdmx-to-ddf/pkg/utils"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// appFs is the filesystem every command reads from and writes to.
var appFs = afero.NewOsFs()

// cfg is loaded by the root command before any subcommand runs.
var cfg *config.Config

// runID identifies this invocation in logs.
var runID string

// log carries the run_id of this invocation.
var log logrus.FieldLogger = logrus.StandardLogger()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "sdmx2ddf",
	Short: "SDMX to DDF Converter - Turn SDMX 2.0 exports into a DDF dataset",
	Long: `sdmx2ddf converts an SDMX 2.0 structure message (DSD) and a generic
data message into the CSV files of a DDF dataset:

  ddf--concepts--continuous.csv
  ddf--concepts--discrete.csv
  ddf--entities--location.csv
  ddf--datapoints--<indicator>--by--location--time.csv
  ddf--index.csv

Without a subcommand it runs the conversion, the same as 'convert'.

Example Usage:
  sdmx2ddf                              # Convert with config.yaml or defaults
  sdmx2ddf convert                      # Same as above
  sdmx2ddf convert --config ./uis.yaml  # Use a custom configuration file
  sdmx2ddf index ../../                 # Rebuild ddf--index.csv only
  sdmx2ddf validate ../../              # Check the written dataset`,

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd)
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
// An interrupt cancels the running conversion between files.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		config.DefaultPath,
		"Path to the configuration file; defaults apply when config.yaml is absent",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// initConfig loads the configuration and sets up logging.
func initConfig() error {
	loaded, err := config.Load(appFs, cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level, err := cfg.Level()
	if err != nil {
		return err
	}
	if verbose {
		level = logrus.DebugLevel
	}

	logger := logrus.StandardLogger()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	runID = utils.NewRunID()
	log = logger.WithField("run_id", runID)
	return nil
}
