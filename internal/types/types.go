// =============================================================================
// SDMX to DDF Converter - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - sdmx       (produces IndicatorTable)
//   - ddf        (consumes IndicatorTable, produces Table)
//   - csvwriter  (consumes Table)
//   - ddfindex   (consumes Table)
//
// =============================================================================

package types

// =============================================================================
// DATAPOINT TYPES
// =============================================================================

// Datapoint is a single observation of one indicator for one location.
type Datapoint struct {
	// Location is the canonical location id of the series.
	Location string

	// Time is the raw observation period, e.g. "2000".
	Time string

	// Value is the raw observation value as it appears in the source.
	// It is kept as text; "NaN" literals survive until extraction.
	Value string

	// Missing is set when the source observation had no time or no value.
	Missing bool
}

// IndicatorTable holds every observation of one indicator, concatenated
// across locations in the order the series appeared in the source document.
type IndicatorTable struct {
	// ID is the canonical indicator id.
	ID string

	// Rows contains the observations, grouped by location.
	Rows []Datapoint

	// Locations lists the locations in first-seen order.
	Locations []string
}

// Len returns the number of observations.
func (t *IndicatorTable) Len() int {
	return len(t.Rows)
}

// =============================================================================
// TABULAR OUTPUT
// =============================================================================

// Table is a header plus rows of string cells, ready to be written as CSV.
type Table struct {
	// Header contains the column names in output order.
	Header []string

	// Rows contains the records. Every row has len(Header) cells.
	Rows [][]string
}

// NewTable creates an empty table with the given header.
func NewTable(header ...string) *Table {
	return &Table{Header: header, Rows: [][]string{}}
}

// Append adds a record to the table.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Column returns the index of a header column, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}
