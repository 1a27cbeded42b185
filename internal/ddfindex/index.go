// =============================================================================
// SDMX to DDF Converter - Index Generator
// =============================================================================
//
// Scans a directory of DDF CSV files and writes ddf--index.csv, a manifest
// listing for every file which key columns it is indexed by and which value
// columns it provides.
//
// FILE NAME CONVENTION:
//   ddf--concepts[--<set>].csv                 key: concept
//   ddf--entities--<domain>[--<set>].csv       key: first header column
//   ddf--datapoints--<m>--by--<k1>--<k2>.csv   key: k1,k2
//
// OUTPUT:
//   key,value,file
//   concept,name,ddf--concepts--continuous.csv
//   location,name,ddf--entities--location.csv
//   "location,time",edu1,ddf--datapoints--edu1--by--location--time.csv
//
// =============================================================================

package ddfindex

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/csvparser"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/csvwriter"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/ddf"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/types"
	"github.com/ginjaninja78/sdmx-to-ddf/pkg/utils"
)

const (
	filePrefix    = "ddf--"
	nameSeparator = "--"
	conceptKey    = "concept"
)

// ErrUnknownFile is returned for a ddf--*.csv file whose name does not follow
// the concepts, entities or datapoints convention.
var ErrUnknownFile = errors.New("file name does not follow the DDF convention")

// Entry is one row of the index.
type Entry struct {
	Key   string
	Value string
	File  string
}

// Generate scans dir and writes ddf--index.csv into it, returning its path.
// An existing index is replaced.
func Generate(fs afero.Fs, dir string) (string, error) {
	entries, err := Build(fs, dir)
	if err != nil {
		return "", err
	}

	table := types.NewTable("key", "value", "file")
	for _, e := range entries {
		table.Append(e.Key, e.Value, e.File)
	}

	fm := utils.NewFileManager(fs, dir)
	path := fm.Path(ddf.IndexFile)
	if err := csvwriter.Write(fs, path, table); err != nil {
		return "", fmt.Errorf("failed to write index: %w", err)
	}

	return path, nil
}

// Build computes the index entries for every DDF file in dir, ordered by file
// name and then by header position.
func Build(fs afero.Fs, dir string) ([]Entry, error) {
	fm := utils.NewFileManager(fs, dir)

	names, err := fm.DiscoverFiles(filePrefix + "*.csv")
	if err != nil {
		return nil, err
	}

	var entries []Entry
	for _, name := range names {
		if name == ddf.IndexFile {
			continue
		}

		header, err := csvparser.ReadHeader(fs, fm.Path(name))
		if err != nil {
			return nil, err
		}

		fileEntries, err := entriesFor(name, header)
		if err != nil {
			return nil, err
		}
		entries = append(entries, fileEntries...)
	}

	return entries, nil
}

// entriesFor derives the entries of one file from its name and header.
func entriesFor(name string, header []string) ([]Entry, error) {
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), ".csv"), nameSeparator)

	var keys []string
	switch parts[0] {
	case "concepts":
		keys = []string{conceptKey}
	case "entities":
		if len(parts) < 2 || len(header) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFile, name)
		}
		keys = header[:1]
	case "datapoints":
		by := indexOf(parts, "by")
		if by < 2 || by == len(parts)-1 {
			return nil, fmt.Errorf("%w: %s", ErrUnknownFile, name)
		}
		keys = parts[by+1:]
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFile, name)
	}

	for _, k := range keys {
		if indexOf(header, k) < 0 {
			return nil, fmt.Errorf("%s: key column %q missing from header", name, k)
		}
	}

	key := strings.Join(keys, ",")
	var entries []Entry
	for _, column := range header {
		if indexOf(keys, column) >= 0 {
			continue
		}
		entries = append(entries, Entry{Key: key, Value: column, File: name})
	}

	return entries, nil
}

func indexOf(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
