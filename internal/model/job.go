package model

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// NonDetectPolicy selects the numeric stand-in for non-detect results.
type NonDetectPolicy string

const (
	PolicyZero    NonDetectPolicy = "zero"     // non-detects count as 0
	PolicyHalfMRL NonDetectPolicy = "half-mrl" // non-detects count as MRL/2
	PolicyAtMRL   NonDetectPolicy = "at-mrl"   // non-detects count as the MRL
)

// SpatialMode selects the spatial grouping column, if any.
type SpatialMode string

const (
	SpatialNone   SpatialMode = "none"
	SpatialState  SpatialMode = "state"
	SpatialRegion SpatialMode = "region"
)

// TemporalMode selects the temporal grouping derived from CollectionDate.
type TemporalMode string

const (
	TemporalNone    TemporalMode = "none"
	TemporalMonthly TemporalMode = "monthly"
	TemporalAnnual  TemporalMode = "annual"
)

// Export defines where the final table goes.
type Export struct {
	File string `json:"file" yaml:"file"` // output file path; empty uses the run's default
	DB   string `json:"db" yaml:"db" validate:"omitempty,oneof=sqlite postgres"`
}

// JobSpec is the operator's validated configuration for one processing run.
type JobSpec struct {
	Inputs      []string        `json:"inputs" yaml:"inputs" validate:"required,min=1,dive,required"`
	NonDetects  NonDetectPolicy `json:"nonDetects" yaml:"nonDetects" validate:"required,oneof=zero half-mrl at-mrl"`
	Spatial     SpatialMode     `json:"spatial" yaml:"spatial" validate:"required,oneof=none state region"`
	Temporal    TemporalMode    `json:"temporal" yaml:"temporal" validate:"required,oneof=none monthly annual"`
	Export      *Export         `json:"export,omitempty" yaml:"export,omitempty"`
	JobTimeout  string          `json:"jobTimeout,omitempty" yaml:"jobTimeout,omitempty"`
	PostgresURL string          `json:"postgresUrl,omitempty" yaml:"postgresUrl,omitempty"`
}

// Aggregated reports whether the run ends in the Aggregated state rather
// than Finalized.
func (j JobSpec) Aggregated() bool {
	return j.Spatial != SpatialNone || j.Temporal != TemporalNone
}

// OutputName builds the deterministic output identifier embedding the
// operator's choices, e.g. "UCMR4_NDs-as-half-mrl_Agg-by-state-monthly".
func (j JobSpec) OutputName() string {
	agg := string(j.Spatial)
	switch {
	case j.Spatial == SpatialNone && j.Temporal != TemporalNone:
		agg = string(j.Temporal)
	case j.Spatial != SpatialNone && j.Temporal != TemporalNone:
		agg = fmt.Sprintf("%s-%s", j.Spatial, j.Temporal)
	}
	return fmt.Sprintf("UCMR4_NDs-as-%s_Agg-by-%s", j.NonDetects, agg)
}

var validate = validator.New()

// Validate checks every enumerated field against its domain. Invalid
// values are rejected here, before the pipeline runs; the resolver and key
// builder still defend with ErrInvalidPolicy/ErrInvalidMode as a last
// resort.
func (j JobSpec) Validate() error {
	if err := validate.Struct(j); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			switch e.Field() {
			case "NonDetects":
				return fmt.Errorf("%w: %q (want zero, half-mrl or at-mrl)", ErrInvalidPolicy, e.Value())
			case "Spatial", "Temporal":
				return fmt.Errorf("%w: %s %q", ErrInvalidMode, e.Field(), e.Value())
			}
			return fmt.Errorf("invalid job spec: %s fails %q", e.Field(), e.Tag())
		}
		return fmt.Errorf("invalid job spec: %w", err)
	}
	if j.Export != nil && j.Export.DB == "postgres" && j.PostgresURL == "" {
		return fmt.Errorf("invalid job spec: postgres export requires postgresUrl")
	}
	return nil
}
