package pipeline

import (
	"context"
	"fmt"
	"time"

	"ucmr-pipeline/internal/model"
	"ucmr-pipeline/internal/store"
	"ucmr-pipeline/pkg/utils"
)

// The pipeline is a four-state machine:
//
//	Loaded → Cleaned → Resolved → (Aggregated | Finalized)
//
// Aggregated is entered when either aggregation mode is set, Finalized when
// both are none; both are terminal and hand the table to export. Every
// stage runs synchronously over the full in-memory table, so a run with the
// same inputs and spec is idempotent.

// Process runs the core stages on an already-loaded table and returns the
// final in-memory table. It performs no I/O; Run wraps it with loading,
// tracking and export.
func Process(records []model.Record, job model.JobSpec) (model.RunResult, error) {
	if err := job.Validate(); err != nil {
		return model.RunResult{}, err
	}

	cleaned := CleanRecords(records)

	processed, err := ResolveRecords(cleaned, job.NonDetects)
	if err != nil {
		return model.RunResult{}, err
	}

	result := model.RunResult{Name: job.OutputName(), Spatial: job.Spatial, Temporal: job.Temporal}
	if job.Aggregated() {
		rows, err := AggregateRecords(processed, job.Spatial, job.Temporal)
		if err != nil {
			return model.RunResult{}, err
		}
		result.Aggregates = rows
		result.Aggregated = true
	} else {
		result.Records = processed
	}
	return result, nil
}

// Run executes a full processing job: load, clean, resolve, aggregate when
// requested, export. Job status and stage progress are recorded in the
// store when one is initialized.
func Run(ctx context.Context, jobID string, job model.JobSpec, om *utils.OutputManager) (result model.RunResult, exports []ExportResult, err error) {
	start := time.Now()
	fmt.Printf("🚀 Starting run %s (%s)\n", jobID, job.OutputName())

	store.UpdateJobStatus(jobID, "running")
	defer func() {
		if err != nil {
			store.UpdateJobStatus(jobID, "failed")
			store.SaveJobError(jobID, err)
		}
	}()

	if err = job.Validate(); err != nil {
		return model.RunResult{}, nil, err
	}

	stage := func(name string, records int, fn func() error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("run cancelled before %s: %w", name, ctxErr)
		}
		stageStart := time.Now()
		store.UpdateJobStatus(jobID, name)
		store.SaveStageProgress(jobID, name, "started", stageStart, nil, 0)
		if err := fn(); err != nil {
			return err
		}
		stageEnd := time.Now()
		store.SaveStageProgress(jobID, name, "completed", stageStart, &stageEnd, records)
		return nil
	}

	var records []model.Record
	if err = stage("loading", 0, func() (e error) {
		records, e = LoadTables(job.Inputs)
		return
	}); err != nil {
		return model.RunResult{}, nil, err
	}

	if err = stage("cleaning", len(records), func() error {
		records = CleanRecords(records)
		return nil
	}); err != nil {
		return model.RunResult{}, nil, err
	}

	var processed []model.ProcessedRecord
	if err = stage("resolving", len(records), func() (e error) {
		processed, e = ResolveRecords(records, job.NonDetects)
		return
	}); err != nil {
		return model.RunResult{}, nil, err
	}

	result = model.RunResult{Name: job.OutputName(), Spatial: job.Spatial, Temporal: job.Temporal}
	if job.Aggregated() {
		if err = stage("aggregating", len(processed), func() (e error) {
			result.Aggregates, e = AggregateRecords(processed, job.Spatial, job.Temporal)
			result.Aggregated = true
			return
		}); err != nil {
			return model.RunResult{}, nil, err
		}
	} else {
		result.Records = processed
	}

	if err = stage("exporting", len(records), func() error {
		exports = ExportData(ctx, result, job, jobID, om)
		for _, ex := range exports {
			if !ex.Success {
				return fmt.Errorf("export to %s failed: %s", ex.Type, ex.Error)
			}
		}
		return nil
	}); err != nil {
		return model.RunResult{}, nil, err
	}

	store.UpdateJobStatus(jobID, "completed")
	fmt.Printf("🏁 Run %s completed in %v\n", jobID, time.Since(start))
	return result, exports, nil
}
