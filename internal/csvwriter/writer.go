// =============================================================================
// SDMX to DDF Converter - CSV Writer Module
// =============================================================================
//
// This module serializes DDF tables to CSV files.
//
// OUTPUT FORMAT:
//   concept,name,concept_type        <!-- header row, always present -->
//   edu1,Test Indicator,measure      <!-- one record per table row -->
//
//   - Comma delimited
//   - No index column
//   - Fields are quoted only when they contain a delimiter, quote or newline
//   - Existing files are overwritten
//
// =============================================================================

package csvwriter

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/types"
)

// =============================================================================
// WRITE OPTIONS
// =============================================================================

// WriteOptions contains options for CSV output.
type WriteOptions struct {
	// Delimiter separates fields.
	// Default: ','
	Delimiter rune

	// UseCRLF terminates records with \r\n instead of \n.
	// Default: false
	UseCRLF bool

	// FileMode is the permission of created files.
	// Default: 0644
	FileMode uint32
}

// DefaultWriteOptions returns the default write options.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Delimiter: ',',
		UseCRLF:   false,
		FileMode:  0644,
	}
}

// =============================================================================
// WRITE FUNCTIONS
// =============================================================================

// Write writes the table to path on fs with the default options.
func Write(fs afero.Fs, path string, table *types.Table) error {
	return WriteWithOptions(fs, path, table, DefaultWriteOptions())
}

// WriteWithOptions writes the table to path on fs.
//
// The parent directory must exist. Rows whose length differs from the header
// are rejected before anything is written.
func WriteWithOptions(fs afero.Fs, path string, table *types.Table, options WriteOptions) error {
	if err := checkShape(table); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}

	file, err := fs.OpenFile(path, createFlags, fileMode(options.FileMode))
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	buffered := bufio.NewWriter(file)
	writer := csv.NewWriter(buffered)
	writer.Comma = options.Delimiter
	writer.UseCRLF = options.UseCRLF

	if err := writer.Write(table.Header); err != nil {
		file.Close()
		return fmt.Errorf("failed to write header: %w", err)
	}
	if err := writer.WriteAll(table.Rows); err != nil {
		file.Close()
		return fmt.Errorf("failed to write rows: %w", err)
	}
	if err := buffered.Flush(); err != nil {
		file.Close()
		return fmt.Errorf("failed to flush %s: %w", filepath.Base(path), err)
	}

	return file.Close()
}

const createFlags = os.O_CREATE | os.O_TRUNC | os.O_WRONLY

func fileMode(mode uint32) os.FileMode {
	if mode == 0 {
		return 0644
	}
	return os.FileMode(mode)
}

// checkShape verifies every row has one cell per header column.
func checkShape(table *types.Table) error {
	if len(table.Header) == 0 {
		return fmt.Errorf("table has no header")
	}
	for i, row := range table.Rows {
		if len(row) != len(table.Header) {
			return fmt.Errorf("row %d has %d cells, header has %d", i+1, len(row), len(table.Header))
		}
	}
	return nil
}
