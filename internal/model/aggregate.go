package model

// AggregateRow is one output row of the aggregation engine: summary
// statistics for a single (grouping key, contaminant) partition.
// Key columns not selected by the job's modes stay zero-valued and are
// omitted from the written table.
type AggregateRow struct {
	State       string  `json:"state,omitempty"`
	Region      string  `json:"region,omitempty"`
	Year        int     `json:"year,omitempty"`
	Month       int     `json:"month,omitempty"`
	Contaminant string  `json:"contaminant"`
	Min         float64 `json:"min"`
	Mean        float64 `json:"mean"`
	Max         float64 `json:"max"`
	Count       int     `json:"count"`
}

// RunResult is what a completed pipeline run hands to export: exactly one
// of Records or Aggregates is populated, depending on the terminal state.
// The modes are carried along so the table writer picks key columns from
// the job's choices, not from whatever values the rows happen to hold.
type RunResult struct {
	Name       string            `json:"name"` // deterministic output identifier
	Records    []ProcessedRecord `json:"records,omitempty"`
	Aggregates []AggregateRow    `json:"aggregates,omitempty"`
	Aggregated bool              `json:"aggregated"`
	Spatial    SpatialMode       `json:"spatial"`
	Temporal   TemporalMode      `json:"temporal"`
}
