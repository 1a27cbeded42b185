package sdmx

import "errors"

var (
	// ErrDuplicateSeries is returned when the same (indicator, location)
	// pair appears in more than one Series element.
	ErrDuplicateSeries = errors.New("duplicate series for indicator and location")

	// ErrMissingSeriesKey is returned when a Series has no value for the
	// indicator or the location concept.
	ErrMissingSeriesKey = errors.New("series key is missing a required concept")

	// ErrCodeListNotFound is returned when a code list selector matches
	// nothing in the structure message.
	ErrCodeListNotFound = errors.New("code list not found")
)
