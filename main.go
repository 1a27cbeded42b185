// =============================================================================
// SDMX to DDF Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   sdmx2ddf           - Convert the SDMX inputs into DDF CSV files
//   sdmx2ddf convert   - Same as above
//   sdmx2ddf index     - Regenerate ddf--index.csv for a directory
//   sdmx2ddf validate  - Check a DDF directory for consistency
//   sdmx2ddf version   - Display the application version
//
// ARCHITECTURE:
//   - cmd/       : CLI command definitions (Cobra)
//   - internal/  : SDMX readers, DDF extractors, CSV and index writers
//   - pkg/       : Shared utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sdmx-to-ddf/cmd"
)

func main() {
	cmd.Execute()
}
