package model

import (
	"errors"
	"fmt"
)

// Core error kinds. All of them are fatal at the point of detection:
// aggregate statistics are only trustworthy if every row is accounted for,
// so nothing is skipped, coerced, or defaulted.
var (
	ErrInvalidPolicy  = errors.New("invalid non-detect policy")
	ErrInvalidMode    = errors.New("invalid aggregation mode")
	ErrMissingMRL     = errors.New("non-detect record has no MRL")
	ErrMissingValue   = errors.New("detected record has no analytical value")
	ErrInvalidDate    = errors.New("unparseable collection date")
	ErrSchemaMismatch = errors.New("input table schema mismatch")
)

// RecordError ties a core error to the row that triggered it so the
// operator can locate the bad data.
func RecordError(kind error, rec Record, detail string) error {
	return fmt.Errorf("%w: PWSID %s sample %s (%s): %s",
		kind, rec.PWSID, rec.SampleID, rec.Contaminant, detail)
}
