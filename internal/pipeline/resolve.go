package pipeline

import (
	"fmt"

	"ucmr-pipeline/internal/model"
)

// Resolve maps one record to its processed result under the given
// non-detect policy. Detected results pass through unchanged regardless of
// policy; non-detects become 0, MRL/2 or the MRL. Pure function, no
// rounding beyond float64 arithmetic.
func Resolve(rec model.Record, policy model.NonDetectPolicy) (float64, error) {
	if !rec.IsNonDetect() {
		if rec.Value == nil {
			return 0, model.RecordError(model.ErrMissingValue, rec, "sign is detected but value column is empty")
		}
		return *rec.Value, nil
	}

	if rec.MRL == nil {
		return 0, model.RecordError(model.ErrMissingMRL, rec, "cannot substitute a value for a non-detect without its MRL")
	}

	switch policy {
	case model.PolicyZero:
		return 0, nil
	case model.PolicyHalfMRL:
		return *rec.MRL / 2, nil
	case model.PolicyAtMRL:
		return *rec.MRL, nil
	default:
		return 0, fmt.Errorf("%w: %q", model.ErrInvalidPolicy, policy)
	}
}

// ResolveRecords moves the table from Cleaned to Resolved, attaching a
// processed result to every record. Any resolver error aborts the run.
func ResolveRecords(records []model.Record, policy model.NonDetectPolicy) ([]model.ProcessedRecord, error) {
	processed := make([]model.ProcessedRecord, 0, len(records))
	nonDetects := 0
	for _, rec := range records {
		result, err := Resolve(rec, policy)
		if err != nil {
			return nil, err
		}
		if rec.IsNonDetect() {
			nonDetects++
		}
		processed = append(processed, model.ProcessedRecord{Record: rec, ProcessedResult: result})
	}
	fmt.Printf("⚗️ Resolution done: %d records, %d non-detects as %s\n", len(processed), nonDetects, policy)
	return processed, nil
}
