package pipeline

import (
	"fmt"
	"time"

	"ucmr-pipeline/internal/model"
)

// GroupKey is the aggregation bucket for one record. Only the components
// selected by the job's modes are populated; Contaminant is always the
// final component since statistics are always per-contaminant.
type GroupKey struct {
	State       string
	Region      string
	Year        int
	Month       int
	Contaminant string
}

// KeyFor derives the grouping key for a record. The caller must not invoke
// it when both modes are none; the orchestrator skips aggregation entirely
// in that case.
func KeyFor(rec model.Record, spatial model.SpatialMode, temporal model.TemporalMode) (GroupKey, error) {
	key := GroupKey{Contaminant: rec.Contaminant}

	switch spatial {
	case model.SpatialNone:
	case model.SpatialState:
		key.State = rec.State
	case model.SpatialRegion:
		key.Region = rec.Region
	default:
		return GroupKey{}, fmt.Errorf("%w: spatial %q", model.ErrInvalidMode, spatial)
	}

	switch temporal {
	case model.TemporalNone:
	case model.TemporalMonthly, model.TemporalAnnual:
		date, err := time.Parse(model.CollectionDateLayout, rec.CollectionDate)
		if err != nil {
			// Silently dropping the record would bias every statistic in
			// its partition, so a bad date fails the whole run.
			return GroupKey{}, model.RecordError(model.ErrInvalidDate, rec,
				fmt.Sprintf("%q does not match %s", rec.CollectionDate, model.CollectionDateLayout))
		}
		key.Year = date.Year()
		if temporal == model.TemporalMonthly {
			key.Month = int(date.Month())
		}
	default:
		return GroupKey{}, fmt.Errorf("%w: temporal %q", model.ErrInvalidMode, temporal)
	}

	return key, nil
}

// Less orders keys ascending by their components in key order: spatial
// value, then year and month, then contaminant. Output ordering is an
// explicit sort on this, not a property of the partition map.
func (k GroupKey) Less(other GroupKey) bool {
	if k.State != other.State {
		return k.State < other.State
	}
	if k.Region != other.Region {
		return k.Region < other.Region
	}
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	if k.Month != other.Month {
		return k.Month < other.Month
	}
	return k.Contaminant < other.Contaminant
}
