// =============================================================================
// SDMX to DDF Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading the converter configuration. The
// pipeline runs with a fixed configuration; the YAML file only exists to
// move the job to other inputs without rebuilding it.
//
// CONFIGURATION FILE (config.yaml, optional):
//   dsd_file: ../source/education_dsd.xml
//   data_file: ../source/education.xml
//   output_dir: ../../
//   indicator_codelist: CL_EDULIT_IND
//   location_codelist: CL_LOCATION
//   codelists_by_position: false
//   indicator_concept: EDULIT_IND
//   location_concept: LOCATION
//   language: en
//   log_level: info
//   skip_index: false
//   workers: 4
//
// =============================================================================

package config

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/sdmx"
	"github.com/ginjaninja78/sdmx-to-ddf/pkg/utils"
)

// DefaultPath is the configuration file looked up when none is given.
const DefaultPath = "config.yaml"

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds the converter configuration.
type Config struct {
	// =========================================================================
	// INPUT AND OUTPUT
	// =========================================================================

	// DSDFile is the SDMX 2.0 structure message.
	// Default: "../source/education_dsd.xml"
	DSDFile string `yaml:"dsd_file"`

	// DataFile is the SDMX 2.0 generic data message.
	// Default: "../source/education.xml"
	DataFile string `yaml:"data_file"`

	// OutputDir receives every DDF file. Existing files are overwritten.
	// Default: "../../"
	OutputDir string `yaml:"output_dir"`

	// =========================================================================
	// CODE LISTS
	// =========================================================================

	// IndicatorCodeList is the id of the code list holding indicators.
	// When the structure does not declare it, the code list at position 0
	// is used and a warning is logged.
	// Default: "CL_EDULIT_IND"
	IndicatorCodeList string `yaml:"indicator_codelist"`

	// LocationCodeList is the id of the code list holding locations.
	// When the structure does not declare it, the code list at position 1
	// is used and a warning is logged.
	// Default: "CL_LOCATION"
	LocationCodeList string `yaml:"location_codelist"`

	// CodeListsByPosition ignores the ids above and takes the indicator
	// code list at position 0 and the location code list at position 1.
	// Default: false
	CodeListsByPosition bool `yaml:"codelists_by_position"`

	// =========================================================================
	// SERIES KEYS
	// =========================================================================

	// IndicatorConcept is the SeriesKey concept carrying the indicator.
	// Default: "EDULIT_IND"
	IndicatorConcept string `yaml:"indicator_concept"`

	// LocationConcept is the SeriesKey concept carrying the location.
	// Default: "LOCATION"
	LocationConcept string `yaml:"location_concept"`

	// Language selects the code Description used as a name.
	// Default: "en"
	Language string `yaml:"language"`

	// =========================================================================
	// RUN SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// SkipIndex disables writing ddf--index.csv after conversion.
	// Default: false
	SkipIndex bool `yaml:"skip_index"`

	// Workers is the number of datapoint files written concurrently.
	// Default: 4
	Workers int `yaml:"workers"`
}

// Default returns the configuration of the UIS education job.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load loads the configuration from a YAML file on fs.
//
// PARAMETERS:
//   - fsys: The filesystem to read from.
//   - path: The path to the configuration file.
//
// RETURNS:
//   - The configuration with defaults applied.
//   - An error if the file cannot be read, parsed or validated.
//
// A missing file at DefaultPath is not an error: the defaults are returned.
func Load(fsys afero.Fs, path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}

	if path == DefaultPath && !utils.FileExists(fsys, path) {
		return Default(), nil
	}

	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func applyDefaults(cfg *Config) {
	if cfg.DSDFile == "" {
		cfg.DSDFile = "../source/education_dsd.xml"
	}
	if cfg.DataFile == "" {
		cfg.DataFile = "../source/education.xml"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "../../"
	}
	if cfg.IndicatorCodeList == "" {
		cfg.IndicatorCodeList = "CL_EDULIT_IND"
	}
	if cfg.LocationCodeList == "" {
		cfg.LocationCodeList = "CL_LOCATION"
	}
	if cfg.IndicatorConcept == "" {
		cfg.IndicatorConcept = "EDULIT_IND"
	}
	if cfg.LocationConcept == "" {
		cfg.LocationConcept = "LOCATION"
	}
	if cfg.Language == "" {
		cfg.Language = "en"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}
}

// Validate checks the configuration for values the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.DSDFile == c.DataFile {
		return fmt.Errorf("dsd_file and data_file must differ, both are %q", c.DSDFile)
	}
	if !c.CodeListsByPosition && c.IndicatorCodeList == c.LocationCodeList {
		return fmt.Errorf("indicator_codelist and location_codelist must differ, both are %q", c.IndicatorCodeList)
	}
	if c.IndicatorConcept == c.LocationConcept {
		return fmt.Errorf("indicator_concept and location_concept must differ, both are %q", c.IndicatorConcept)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// IndicatorSelector returns the selector of the indicator code list.
// An undeclared id falls back to the first code list.
func (c *Config) IndicatorSelector() sdmx.Selector {
	if c.CodeListsByPosition {
		return sdmx.Selector{Position: 0}
	}
	return sdmx.Selector{ID: c.IndicatorCodeList, Fallback: true}
}

// LocationSelector returns the selector of the location code list.
// An undeclared id falls back to the second code list.
func (c *Config) LocationSelector() sdmx.Selector {
	if c.CodeListsByPosition {
		return sdmx.Selector{Position: 1}
	}
	return sdmx.Selector{ID: c.LocationCodeList, Position: 1, Fallback: true}
}

// SeriesKeys returns the SeriesKey concepts identifying a series.
func (c *Config) SeriesKeys() sdmx.SeriesKeys {
	return sdmx.SeriesKeys{
		Indicator: c.IndicatorConcept,
		Location:  c.LocationConcept,
	}
}

// Level returns the parsed log level.
func (c *Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("invalid log_level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
