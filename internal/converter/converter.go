// =============================================================================
// SDMX to DDF Converter - Converter Module
// =============================================================================
//
// This module contains the conversion pipeline. It reads both SDMX inputs
// once and writes every DDF file in a fixed order.
//
// CONVERSION PIPELINE:
//   1. Read the structure message (DSD)
//   2. Read the generic data message
//   3. Write ddf--concepts--continuous.csv
//   4. Write ddf--concepts--discrete.csv
//   5. Write ddf--entities--location.csv
//   6. Write one ddf--datapoints--<indicator>--by--location--time.csv each,
//      Workers files at a time
//   7. Write ddf--index.csv
//
// Any error aborts the run. Files written before the failure are left in
// place; the output directory is not rolled back.
//
// =============================================================================

package converter

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/config"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/csvwriter"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/ddf"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/ddfindex"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/sdmx"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/types"
	"github.com/ginjaninja78/sdmx-to-ddf/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one conversion run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string

	// OutputFiles lists every file written, in write order.
	OutputFiles []string

	// IndexFile is the path of ddf--index.csv, empty when indexing is skipped.
	IndexFile string

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the processing.
type ProcessingStats struct {
	// SeriesRead is the number of Series elements in the data message.
	SeriesRead int

	// Indicators is the number of indicators with a datapoints file.
	Indicators int

	// Locations is the number of location entities written.
	Locations int

	// DatapointsWritten is the number of datapoint rows across all files.
	DatapointsWritten int

	// DatapointsDropped is the number of missing or NaN observations.
	DatapointsDropped int

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the SDMX to DDF pipeline for one configuration.
type Converter struct {
	cfg    *config.Config
	fs     afero.Fs
	files  *utils.FileManager
	logger Logger
	runID  string
}

// Logger is the logging interface the converter writes to.
// logrus.FieldLogger satisfies it.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Option customizes a Converter.
type Option func(*Converter)

// WithFs runs the converter against fs instead of the OS filesystem.
func WithFs(fs afero.Fs) Option {
	return func(c *Converter) {
		c.fs = fs
	}
}

// WithLogger replaces the default logger.
func WithLogger(logger Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithRunID sets the run identifier instead of generating one.
func WithRunID(id string) Option {
	return func(c *Converter) {
		c.runID = id
	}
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter for the configuration.
func New(cfg *config.Config, opts ...Option) *Converter {
	c := &Converter{
		cfg: cfg,
		fs:  afero.NewOsFs(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.runID == "" {
		c.runID = utils.NewRunID()
	}
	if c.logger == nil {
		c.logger = logrus.StandardLogger().WithField("run_id", c.runID)
	}
	c.files = utils.NewFileManager(c.fs, cfg.OutputDir)

	return c
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline.
//
// ctx is checked between stages and before each datapoint file.
func (c *Converter) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()
	result := &Result{RunID: c.runID}

	for _, input := range []string{c.cfg.DSDFile, c.cfg.DataFile} {
		if !utils.HasExtension(input, ".xml") {
			c.logger.Warnf("Input %s does not have an .xml extension", input)
		}
	}

	// =========================================================================
	// STEP 1-2: READ SOURCES
	// =========================================================================

	c.logger.Infof("Reading structure from %s", c.cfg.DSDFile)
	structure, err := sdmx.ReadStructure(c.fs, c.cfg.DSDFile)
	if err != nil {
		return result, err
	}
	structure.Language = c.cfg.Language

	indicators, err := structure.CodeList(c.cfg.IndicatorSelector())
	if err != nil {
		return result, fmt.Errorf("indicator code list: %w", err)
	}
	locations, err := structure.CodeList(c.cfg.LocationSelector())
	if err != nil {
		return result, fmt.Errorf("location code list: %w", err)
	}
	for _, picked := range []struct {
		sel  sdmx.Selector
		list *sdmx.CodeList
	}{
		{c.cfg.IndicatorSelector(), indicators},
		{c.cfg.LocationSelector(), locations},
	} {
		if picked.sel.ID != "" && picked.list.ID != picked.sel.ID {
			c.logger.Warnf("Code list %s is not declared, using %s at position %d",
				picked.sel.ID, picked.list.ID, picked.sel.Position)
		}
	}
	c.logger.Debugf("Code list %s declares %d indicators, %s declares %d locations",
		indicators.ID, len(indicators.Codes), locations.ID, len(locations.Codes))

	if err := ctx.Err(); err != nil {
		return result, err
	}

	c.logger.Infof("Reading data from %s", c.cfg.DataFile)
	data, err := sdmx.ReadData(c.fs, c.cfg.DataFile, c.cfg.SeriesKeys())
	if err != nil {
		return result, err
	}
	result.Stats.SeriesRead = data.SeriesCount
	c.logger.Debugf("Read %d series for %d indicators", data.SeriesCount, data.Len())
	for _, key := range data.EmptySeries {
		c.logger.Warnf("Series %s has no observations", key)
	}

	if err := c.files.EnsureOutputDir(); err != nil {
		return result, err
	}

	// =========================================================================
	// STEP 3-4: CONCEPTS
	// =========================================================================

	c.logger.Infof("Creating concept files")

	continuous, err := ddf.ConceptsContinuous(data, indicators)
	if err != nil {
		return result, err
	}
	if err := c.write(result, ddf.ConceptsContinuousFile, ddf.ConceptsTable(continuous)); err != nil {
		return result, err
	}
	if err := c.write(result, ddf.ConceptsDiscreteFile, ddf.ConceptsTable(ddf.ConceptsDiscrete())); err != nil {
		return result, err
	}

	// =========================================================================
	// STEP 5: ENTITIES
	// =========================================================================

	c.logger.Infof("Creating entities files")

	entities := ddf.EntitiesLocation(locations)
	result.Stats.Locations = len(entities)
	if err := c.write(result, ddf.EntitiesFile(ddf.LocationConcept), ddf.EntitiesTable(ddf.LocationConcept, entities)); err != nil {
		return result, err
	}

	// =========================================================================
	// STEP 6: DATAPOINTS
	// =========================================================================

	workers := max(c.cfg.Workers, 1)
	c.logger.Infof("Creating datapoint files with %d workers", workers)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var planned []string
	for id, table := range ddf.Datapoints(data) {
		if gctx.Err() != nil {
			break
		}

		dropped := data.Indicators[id].Len() - len(table.Rows)
		if dropped > 0 {
			c.logger.Debugf("Dropped %d missing observations of %s", dropped, id)
		}
		if len(table.Rows) == 0 {
			c.logger.Warnf("Indicator %s has no datapoints left after dropping missing values", id)
		}

		path := c.files.Path(ddf.DatapointsFile(id, ddf.DatapointKeys()...))
		planned = append(planned, path)
		result.Stats.Indicators++
		result.Stats.DatapointsWritten += len(table.Rows)
		result.Stats.DatapointsDropped += dropped

		// g.Go blocks while every worker is busy.
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if err := csvwriter.Write(c.fs, path, table); err != nil {
				return err
			}
			c.logger.Debugf("Wrote %d rows to %s", len(table.Rows), path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	if err := ctx.Err(); err != nil {
		return result, err
	}
	result.OutputFiles = append(result.OutputFiles, planned...)

	// =========================================================================
	// STEP 7: INDEX
	// =========================================================================

	if c.cfg.SkipIndex {
		c.logger.Debugf("Skipping index file")
	} else {
		c.logger.Infof("Creating index file")
		indexPath, err := ddfindex.Generate(c.fs, c.cfg.OutputDir)
		if err != nil {
			return result, err
		}
		result.IndexFile = indexPath
	}

	result.Stats.ProcessingTime = time.Since(startTime)
	c.logger.Infof("Done: %d files, %d datapoints in %s",
		len(result.OutputFiles), result.Stats.DatapointsWritten, result.Stats.ProcessingTime)

	return result, nil
}

// write writes one table into the output directory and records it.
func (c *Converter) write(result *Result, name string, table *types.Table) error {
	path := c.files.Path(name)
	if err := csvwriter.Write(c.fs, path, table); err != nil {
		return err
	}

	c.logger.Debugf("Wrote %d rows to %s", len(table.Rows), path)
	result.OutputFiles = append(result.OutputFiles, path)
	return nil
}
