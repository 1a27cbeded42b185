// =============================================================================
// SDMX to DDF Converter - DDF Extractors
// =============================================================================
//
// Pure functions that project the parsed SDMX structures into the DDF tables:
//
//   ConceptsContinuous -> ddf--concepts--continuous.csv
//   ConceptsDiscrete   -> ddf--concepts--discrete.csv
//   EntitiesLocation   -> ddf--entities--location.csv
//   Datapoints         -> ddf--datapoints--<indicator>--by--location--time.csv
//
// =============================================================================

package ddf

import (
	"errors"
	"fmt"
	"strings"
)

// Concept types used in the concept files.
const (
	ConceptTypeMeasure      = "measure"
	ConceptTypeString       = "string"
	ConceptTypeTime         = "time"
	ConceptTypeEntityDomain = "entity_domain"
)

// Dimension concepts of every datapoint file.
const (
	LocationConcept = "location"
	TimeConcept     = "time"
	NameConcept     = "name"
)

// MissingLiteral is the value text that marks a missing observation.
const MissingLiteral = "NaN"

// ErrUnknownIndicator is returned when the data contains an indicator the
// structure's code list does not declare.
var ErrUnknownIndicator = errors.New("indicator not declared in code list")

// Concept is one row of a concepts file.
type Concept struct {
	ID   string
	Name string
	Type string

	// Drillup is the canonical parent concept. It is not written out.
	Drillup string
}

// Entity is one row of an entities file.
type Entity struct {
	ID   string
	Name string
}

// =============================================================================
// FILE NAMES
// =============================================================================

// Output file names.
const (
	ConceptsContinuousFile = "ddf--concepts--continuous.csv"
	ConceptsDiscreteFile   = "ddf--concepts--discrete.csv"
	IndexFile              = "ddf--index.csv"
)

// EntitiesFile returns the file name of an entity domain.
func EntitiesFile(domain string) string {
	return fmt.Sprintf("ddf--entities--%s.csv", domain)
}

// DatapointsFile returns the file name of a measure by the given keys.
func DatapointsFile(measure string, keys ...string) string {
	return fmt.Sprintf("ddf--datapoints--%s--by--%s.csv", measure, strings.Join(keys, "--"))
}

// DatapointKeys are the dimensions every datapoint file is keyed by.
func DatapointKeys() []string {
	return []string{LocationConcept, TimeConcept}
}
