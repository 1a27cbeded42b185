// =============================================================================
// SDMX to DDF Converter - Validation Engine
// =============================================================================
//
// This module checks a written DDF directory for consistency between its
// concept, entity and datapoint files, including:
//   - Concept ids in canonical form and declared once
//   - Entity domains declared as entity_domain concepts
//   - Datapoint headers matching the file name
//   - Datapoint keys referring to declared entities
//   - Numeric time and value cells
//
// VALIDATION STRATEGY:
//   Validation is performed at three levels:
//   1. Concepts: every ddf--concepts*.csv file
//   2. Entities: every ddf--entities--<domain>.csv file
//   3. Datapoints: every ddf--datapoints--<measure>--by--<keys>.csv file
//
// ERROR HANDLING:
//   - Findings are collected, not returned immediately
//   - Each finding includes file, row, column and value
//   - Findings are errors (dataset is inconsistent) or warnings
//   - Only I/O and CSV syntax failures abort validation
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/afero"

	"github.com/ginjaninja78/sdmx-to-ddf/internal/conceptid"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/csvparser"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/ddf"
	"github.com/ginjaninja78/sdmx-to-ddf/internal/types"
	"github.com/ginjaninja78/sdmx-to-ddf/pkg/utils"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

// Rules reported in ValidationError.Rule.
const (
	RuleConceptID     = "concept_id"
	RuleDuplicate     = "duplicate"
	RuleConceptType   = "concept_type"
	RuleUndeclared    = "undeclared"
	RuleHeader        = "header"
	RuleUnknownEntity = "unknown_entity"
	RuleNumeric       = "numeric"
	RuleMissingIndex  = "missing_index"
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single validation finding.
type ValidationError struct {
	// Severity indicates the severity of the finding.
	// "error" = the dataset is inconsistent
	// "warning" = the dataset is usable but suspicious
	Severity string

	// File is the base name of the file containing the finding.
	File string

	// Row is the 1-based record number, 0 for file-level findings.
	// The header is not counted.
	Row int

	// Column is the header column of the offending cell, if any.
	Column string

	// Value is the offending value.
	Value string

	// Rule is the rule that was violated.
	Rule string

	// Message is a human-readable message.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	location := e.File
	if e.Row > 0 {
		location = fmt.Sprintf("%s, row %d", location, e.Row)
	}
	if e.Column != "" {
		location = fmt.Sprintf("%s, column '%s'", location, e.Column)
	}
	return fmt.Sprintf("[%s] %s: %s (value: '%s')",
		strings.ToUpper(e.Severity),
		location,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no errors.
	IsValid bool

	// Errors contains all findings, including warnings.
	Errors []*ValidationError

	// ErrorCount is the number of errors.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// FilesValidated is the number of DDF files read.
	FilesValidated int

	// RowsValidated is the number of records read.
	RowsValidated int

	// Truncated is set when MaxErrors stopped the collection early.
	Truncated bool
}

func (r *ValidationResult) add(e *ValidationError, maxErrors int) {
	if maxErrors > 0 && len(r.Errors) >= maxErrors {
		r.Truncated = true
		return
	}
	r.Errors = append(r.Errors, e)
	if e.Severity == SeverityError {
		r.ErrorCount++
	} else {
		r.WarningCount++
	}
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks one DDF directory.
type Validator struct {
	files   *utils.FileManager
	options ValidationOptions

	// concepts maps a declared concept id to its concept_type.
	concepts map[string]string

	// entities maps an entity domain to its declared ids.
	entities map[string]map[string]bool
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// MaxErrors caps the number of findings collected. 0 means no limit.
	MaxErrors int

	// RequireIndex reports a missing ddf--index.csv as a warning.
	RequireIndex bool
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{
		MaxErrors:    1000,
		RequireIndex: true,
	}
}

// NewValidator creates a Validator for dir with default options.
func NewValidator(fs afero.Fs, dir string) *Validator {
	return NewValidatorWithOptions(fs, dir, DefaultValidationOptions())
}

// NewValidatorWithOptions creates a Validator for dir.
func NewValidatorWithOptions(fs afero.Fs, dir string, options ValidationOptions) *Validator {
	return &Validator{
		files:   utils.NewFileManager(fs, dir),
		options: options,
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTIONS
// =============================================================================

// Validate checks the DDF files in dir with default options.
func Validate(fs afero.Fs, dir string) (*ValidationResult, error) {
	return NewValidator(fs, dir).ValidateAll()
}

// ValidateAll reads every DDF file in the directory and checks it.
//
// RETURNS:
//   - The collected findings.
//   - An error if a file cannot be read or is not valid CSV.
func (v *Validator) ValidateAll() (*ValidationResult, error) {
	v.concepts = make(map[string]string)
	v.entities = make(map[string]map[string]bool)
	result := &ValidationResult{}

	names, err := v.files.DiscoverFiles("ddf--*.csv")
	if err != nil {
		return nil, err
	}

	var conceptFiles, entityFiles, datapointFiles []string
	hasIndex := false
	for _, name := range names {
		switch {
		case name == ddf.IndexFile:
			hasIndex = true
		case strings.HasPrefix(name, "ddf--concepts"):
			conceptFiles = append(conceptFiles, name)
		case strings.HasPrefix(name, "ddf--entities--"):
			entityFiles = append(entityFiles, name)
		case strings.HasPrefix(name, "ddf--datapoints--"):
			datapointFiles = append(datapointFiles, name)
		}
	}

	// Concepts and entities are declarations; read them before the
	// datapoints that refer to them.
	for _, group := range []struct {
		names    []string
		validate func(string, *types.Table, *ValidationResult)
	}{
		{conceptFiles, v.validateConcepts},
		{entityFiles, v.validateEntities},
		{datapointFiles, v.validateDatapoints},
	} {
		for _, name := range group.names {
			table, err := csvparser.Parse(v.files.Fs, v.files.Path(name))
			if err != nil {
				return nil, err
			}
			result.FilesValidated++
			result.RowsValidated += len(table.Rows)
			group.validate(name, table, result)
		}
	}

	if v.options.RequireIndex && !hasIndex {
		v.report(result, &ValidationError{
			Severity: SeverityWarning,
			File:     ddf.IndexFile,
			Rule:     RuleMissingIndex,
			Message:  "index file not found",
		})
	}

	result.IsValid = result.ErrorCount == 0
	return result, nil
}

func (v *Validator) report(result *ValidationResult, e *ValidationError) {
	result.add(e, v.options.MaxErrors)
}

// =============================================================================
// FILE-LEVEL VALIDATION
// =============================================================================

func (v *Validator) validateConcepts(name string, table *types.Table, result *ValidationResult) {
	idCol := table.Column("concept")
	typeCol := table.Column("concept_type")
	if idCol < 0 || typeCol < 0 {
		v.report(result, &ValidationError{
			Severity: SeverityError,
			File:     name,
			Rule:     RuleHeader,
			Value:    strings.Join(table.Header, ","),
			Message:  "concepts file needs concept and concept_type columns",
		})
		return
	}

	for i, row := range table.Rows {
		id, conceptType := row[idCol], row[typeCol]
		if msg := validateConceptID(id); msg != "" {
			v.report(result, &ValidationError{
				Severity: SeverityError, File: name, Row: i + 1, Column: "concept",
				Value:    id, Rule: RuleConceptID, Message: msg,
			})
		}
		if _, dup := v.concepts[id]; dup {
			v.report(result, &ValidationError{
				Severity: SeverityError, File: name, Row: i + 1, Column: "concept",
				Value:    id, Rule: RuleDuplicate, Message: "concept declared more than once",
			})
			continue
		}
		if !knownConceptType(conceptType) {
			v.report(result, &ValidationError{
				Severity: SeverityWarning, File: name, Row: i + 1, Column: "concept_type",
				Value:    conceptType, Rule: RuleConceptType, Message: "unknown concept type",
			})
		}
		v.concepts[id] = conceptType
	}
}

func (v *Validator) validateEntities(name string, table *types.Table, result *ValidationResult) {
	if len(table.Header) == 0 {
		return
	}
	domain := table.Header[0]

	if conceptType, ok := v.concepts[domain]; !ok {
		v.report(result, &ValidationError{
			Severity: SeverityError, File: name, Column: domain,
			Value:    domain, Rule: RuleUndeclared, Message: "entity domain is not a declared concept",
		})
	} else if conceptType != ddf.ConceptTypeEntityDomain {
		v.report(result, &ValidationError{
			Severity: SeverityError, File: name, Column: domain,
			Value:    conceptType, Rule: RuleConceptType,
			Message:  fmt.Sprintf("entity domain must have concept_type %s", ddf.ConceptTypeEntityDomain),
		})
	}

	ids := v.entities[domain]
	if ids == nil {
		ids = make(map[string]bool)
		v.entities[domain] = ids
	}
	for i, row := range table.Rows {
		id := row[0]
		if msg := validateConceptID(id); msg != "" {
			v.report(result, &ValidationError{
				Severity: SeverityError, File: name, Row: i + 1, Column: domain,
				Value:    id, Rule: RuleConceptID, Message: msg,
			})
		}
		if ids[id] {
			v.report(result, &ValidationError{
				Severity: SeverityError, File: name, Row: i + 1, Column: domain,
				Value:    id, Rule: RuleDuplicate, Message: "entity declared more than once",
			})
		}
		ids[id] = true
	}
}

func (v *Validator) validateDatapoints(name string, table *types.Table, result *ValidationResult) {
	measure, keys, ok := parseDatapointsName(name)
	if !ok {
		v.report(result, &ValidationError{
			Severity: SeverityError, File: name, Value: name,
			Rule:     RuleHeader, Message: "file name does not follow ddf--datapoints--<measure>--by--<keys>.csv",
		})
		return
	}

	expected := append(append([]string{}, keys...), measure)
	if strings.Join(table.Header, ",") != strings.Join(expected, ",") {
		v.report(result, &ValidationError{
			Severity: SeverityError, File: name, Value: strings.Join(table.Header, ","),
			Rule:     RuleHeader, Message: fmt.Sprintf("header should be %s", strings.Join(expected, ",")),
		})
		return
	}

	if conceptType, declared := v.concepts[measure]; !declared {
		v.report(result, &ValidationError{
			Severity: SeverityError, File: name, Column: measure,
			Value:    measure, Rule: RuleUndeclared, Message: "measure is not a declared concept",
		})
	} else if conceptType != ddf.ConceptTypeMeasure {
		v.report(result, &ValidationError{
			Severity: SeverityWarning, File: name, Column: measure,
			Value:    conceptType, Rule: RuleConceptType, Message: "datapoint value concept is not a measure",
		})
	}

	for i, row := range table.Rows {
		for k, key := range keys {
			value := row[k]
			if ids, domain := v.entities[key]; domain {
				if !ids[value] {
					v.report(result, &ValidationError{
						Severity: SeverityError, File: name, Row: i + 1, Column: key,
						Value:    value, Rule: RuleUnknownEntity, Message: "entity not declared in " + ddf.EntitiesFile(key),
					})
				}
				continue
			}
			if v.concepts[key] == ddf.ConceptTypeTime {
				if msg := validateNumeric(value); msg != "" {
					v.report(result, &ValidationError{
						Severity: SeverityError, File: name, Row: i + 1, Column: key,
						Value:    value, Rule: RuleNumeric, Message: msg,
					})
				}
			}
		}

		value := row[len(keys)]
		if msg := validateDecimal(value); msg != "" {
			v.report(result, &ValidationError{
				Severity: SeverityError, File: name, Row: i + 1, Column: measure,
				Value:    value, Rule: RuleNumeric, Message: msg,
			})
		}
	}
}

// parseDatapointsName splits ddf--datapoints--<measure>--by--<k1>--<k2>.csv.
func parseDatapointsName(name string) (measure string, keys []string, ok bool) {
	stem := strings.TrimSuffix(strings.TrimPrefix(name, "ddf--datapoints--"), ".csv")
	parts := strings.Split(stem, "--by--")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", nil, false
	}
	return parts[0], strings.Split(parts[1], "--"), true
}

// =============================================================================
// VALUE VALIDATION FUNCTIONS
// =============================================================================

func knownConceptType(t string) bool {
	switch t {
	case ddf.ConceptTypeMeasure, ddf.ConceptTypeString, ddf.ConceptTypeTime, ddf.ConceptTypeEntityDomain,
		"entity_set", "boolean", "interval", "role", "custom_type":
		return true
	}
	return false
}

// validateConceptID checks that an id is in canonical form.
func validateConceptID(id string) string {
	if id == "" {
		return "empty id"
	}
	if !conceptid.IsCanonical(id) {
		return fmt.Sprintf("id is not canonical, expected '%s'", conceptid.Canonicalize(id))
	}
	return ""
}

// validateNumeric validates that a value is a valid integer.
func validateNumeric(value string) string {
	if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
		return fmt.Sprintf("Value '%s' is not a valid integer", value)
	}
	return ""
}

// validateDecimal validates that a value is a finite decimal number.
// Missing values never reach datapoint files, so NaN is rejected.
func validateDecimal(value string) string {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fmt.Sprintf("Value '%s' is not a valid decimal", value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Sprintf("Value '%s' is not a finite number", value)
	}
	return ""
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}

// WriteErrorLog writes the formatted findings to path on fs.
func WriteErrorLog(fs afero.Fs, errors []*ValidationError, path string) error {
	if err := afero.WriteFile(fs, path, []byte(FormatErrors(errors)), 0644); err != nil {
		return fmt.Errorf("failed to write error log: %w", err)
	}
	return nil
}
