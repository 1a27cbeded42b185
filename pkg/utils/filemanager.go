// =============================================================================
// SDMX to DDF Converter - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the converter, including:
//   - Output directory management
//   - DDF file discovery
//   - Output path construction
//   - Run identifiers
//
// All operations go through an afero.Fs so that the converter can run
// against the OS filesystem or an in-memory one.
//
// =============================================================================

package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager handles file operations for the converter.
type FileManager struct {
	// Fs is the filesystem every operation runs against.
	Fs afero.Fs

	// OutputDir is the directory where DDF files are written.
	OutputDir string
}

// NewFileManager creates a new FileManager for the output directory.
// A nil fs selects the OS filesystem.
func NewFileManager(fs afero.Fs, outputDir string) *FileManager {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &FileManager{
		Fs:        fs,
		OutputDir: outputDir,
	}
}

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureOutputDir creates the output directory if it doesn't exist.
func (fm *FileManager) EnsureOutputDir() error {
	if err := fm.Fs.MkdirAll(fm.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", fm.OutputDir, err)
	}
	return nil
}

// Path returns the path of a file inside the output directory.
func (fm *FileManager) Path(name string) string {
	return filepath.Join(fm.OutputDir, name)
}

// =============================================================================
// FILE DISCOVERY
// =============================================================================

// DiscoverFiles returns the names of regular files in the output directory
// matching a glob pattern, sorted by name.
//
// PARAMETERS:
//   - pattern: A glob pattern matched against base names (e.g., "ddf--*.csv").
//              If empty, defaults to "*.csv".
func (fm *FileManager) DiscoverFiles(pattern string) ([]string, error) {
	if pattern == "" {
		pattern = "*.csv"
	}
	if _, err := filepath.Match(pattern, ""); err != nil {
		return nil, fmt.Errorf("invalid pattern %q: %w", pattern, err)
	}

	entries, err := afero.ReadDir(fm.Fs, fm.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", fm.OutputDir, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if matched, _ := filepath.Match(pattern, entry.Name()); matched {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	return names, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// FileExists checks if a file exists.
func FileExists(fs afero.Fs, path string) bool {
	_, err := fs.Stat(path)
	return !os.IsNotExist(err)
}

// HasExtension reports whether path ends in ext, ignoring case.
func HasExtension(path, ext string) bool {
	return strings.EqualFold(filepath.Ext(path), ext)
}

// NewRunID returns a random identifier for one conversion run.
func NewRunID() string {
	return uuid.New().String()
}
