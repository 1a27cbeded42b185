// =============================================================================
// SDMX to DDF Converter - CSV Parser Module
// =============================================================================
//
// This module reads DDF CSV files back, either the header alone (used by the
// index generator) or the full table (used when verifying a dataset).
//
// FEATURES:
//   - Reads from any afero.Fs, so the same code serves disk and memory
//   - Header-only reads stop after the first record
//   - Leading UTF-8 byte order marks are ignored
//
// =============================================================================

package csvparser

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/types"
)

// byteOrderMark is stripped from the first header cell.
const byteOrderMark = "\ufeff"

// ErrEmptyFile is returned for a CSV file without a header row.
var ErrEmptyFile = errors.New("CSV file is empty")

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// ReadHeader returns the header row of a CSV file.
func ReadHeader(fs afero.Fs, path string) ([]string, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := newReader(file)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	return cleanHeader(header), nil
}

// Parse reads a whole CSV file into a table.
func Parse(fs afero.Fs, path string) (*types.Table, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return ParseReader(file)
}

// ParseReader reads CSV records from r into a table.
func ParseReader(r io.Reader) (*types.Table, error) {
	records, err := newReader(r).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	return &types.Table{
		Header: cleanHeader(records[0]),
		Rows:   records[1:],
	}, nil
}

// newReader configures a CSV reader for DDF files.
func newReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(bufio.NewReader(r))
	reader.Comma = ','

	// DDF files are rectangular; a ragged row is an error.
	reader.FieldsPerRecord = 0
	reader.ReuseRecord = false

	return reader
}

// cleanHeader trims whitespace and a leading byte order mark.
func cleanHeader(header []string) []string {
	cleaned := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, byteOrderMark)
		}
		cleaned[i] = strings.TrimSpace(h)
	}
	return cleaned
}
