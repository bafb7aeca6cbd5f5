package pipeline

import (
	"fmt"
	"sort"

	"ucmr-pipeline/internal/model"
)

// accumulator carries the running min/max/sum for one partition. The mean
// is a single division at emit time; every record counts exactly once, so
// the mean is unweighted across whatever sub-groups the key collapses.
type accumulator struct {
	min   float64
	max   float64
	sum   float64
	count int
}

func (a *accumulator) add(v float64) {
	if a.count == 0 {
		a.min, a.max = v, v
	} else {
		if v < a.min {
			a.min = v
		}
		if v > a.max {
			a.max = v
		}
	}
	a.sum += v
	a.count++
}

// AggregateRecords partitions processed records by grouping key and emits
// one row of min/mean/max per partition, ordered ascending by key then
// contaminant. Partitions are derived from existing records, so none is
// empty and no record is dropped.
func AggregateRecords(records []model.ProcessedRecord, spatial model.SpatialMode, temporal model.TemporalMode) ([]model.AggregateRow, error) {
	partitions := make(map[GroupKey]*accumulator)
	for _, rec := range records {
		key, err := KeyFor(rec.Record, spatial, temporal)
		if err != nil {
			return nil, err
		}
		acc, ok := partitions[key]
		if !ok {
			acc = &accumulator{}
			partitions[key] = acc
		}
		acc.add(rec.ProcessedResult)
	}

	keys := make([]GroupKey, 0, len(partitions))
	for key := range partitions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })

	rows := make([]model.AggregateRow, 0, len(keys))
	for _, key := range keys {
		acc := partitions[key]
		rows = append(rows, model.AggregateRow{
			State:       key.State,
			Region:      key.Region,
			Year:        key.Year,
			Month:       key.Month,
			Contaminant: key.Contaminant,
			Min:         acc.min,
			Mean:        acc.sum / float64(acc.count),
			Max:         acc.max,
			Count:       acc.count,
		})
	}

	fmt.Printf("📊 Aggregation done: %d groups from %d records\n", len(rows), len(records))
	return rows, nil
}
