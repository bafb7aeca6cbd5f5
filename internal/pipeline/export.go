package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"ucmr-pipeline/internal/model"
	"ucmr-pipeline/internal/store"
	"ucmr-pipeline/pkg/utils"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ExportResult describes one export operation.
type ExportResult struct {
	Type        string    `json:"type"` // "file", "sqlite", "postgres"
	Path        string    `json:"path"` // file path or table name
	RecordCount int       `json:"record_count"`
	Success     bool      `json:"success"`
	Error       string    `json:"error,omitempty"`
	ExportedAt  time.Time `json:"exported_at"`
}

// ExportData writes the final table to every configured target. A file is
// always written (to the job's explicit path, or to the run's output
// directory under the deterministic output name); sqlite and postgres are
// additional targets.
func ExportData(ctx context.Context, result model.RunResult, job model.JobSpec, jobID string, om *utils.OutputManager) []ExportResult {
	var results []ExportResult

	path := ""
	if job.Export != nil && job.Export.File != "" {
		path = job.Export.File
	} else if om != nil {
		p, err := om.OutputFilePath(jobID, result.Name+".tsv")
		if err == nil {
			path = p
		} else {
			results = append(results, failedExport("file", result.Name+".tsv", err))
		}
	} else {
		path = result.Name + ".tsv"
	}
	if path != "" {
		results = append(results, exportToFile(path, result, jobID))
	}

	if job.Export != nil {
		switch job.Export.DB {
		case "sqlite":
			results = append(results, exportToSQLite(jobID, result))
		case "postgres":
			results = append(results, exportToPostgres(ctx, job.PostgresURL, jobID, result))
		}
	}

	for _, r := range results {
		if r.Success {
			fmt.Printf("💾 Exported %d rows to %s (%s)\n", r.RecordCount, r.Path, r.Type)
		} else {
			fmt.Printf("❌ Export to %s failed: %s\n", r.Type, r.Error)
		}
	}
	return results
}

func exportToFile(path string, result model.RunResult, jobID string) ExportResult {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return failedExport("file", path, fmt.Errorf("failed to create output directory: %w", err))
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return failedExport("file", path, fmt.Errorf("failed to create output file: %w", err))
	}
	defer file.Close()

	count, err := WriteTable(file, result)
	if err != nil {
		return failedExport("file", path, err)
	}

	store.SaveRunOutput(jobID, result.Name, path, count)
	return ExportResult{Type: "file", Path: path, RecordCount: count, Success: true, ExportedAt: time.Now().UTC()}
}

// WriteTable writes the run's final table as tab-separated text, the same
// dialect the raw exports use. Returns the number of data rows written.
func WriteTable(w io.Writer, result model.RunResult) (int, error) {
	if result.Aggregated {
		return writeAggregateTable(w, result.Aggregates, result.Spatial, result.Temporal)
	}
	return writeRecordTable(w, result.Records)
}

func writeRecordTable(w io.Writer, records []model.ProcessedRecord) (int, error) {
	header := append(append([]string{}, requiredColumns...), "Processed Result (µg/L)")
	if err := writeRow(w, header); err != nil {
		return 0, err
	}
	for i, rec := range records {
		row := []string{
			rec.PWSID, rec.PWSName, rec.FacilityID, rec.FacilityName,
			rec.FacilityWaterType, rec.SamplePointID, rec.SamplePointType,
			rec.CollectionDate, rec.SampleID, rec.Contaminant,
			formatOptional(rec.MRL), rec.MethodID, rec.Sign,
			formatOptional(rec.Value), rec.Region, rec.State,
			formatResult(rec.ProcessedResult),
		}
		if err := writeRow(w, row); err != nil {
			return i, err
		}
	}
	return len(records), nil
}

func writeAggregateTable(w io.Writer, rows []model.AggregateRow, spatial model.SpatialMode, temporal model.TemporalMode) (int, error) {
	// Key columns follow the selected modes, so a selected column appears
	// even when every row's value for it happens to be blank.
	hasState := spatial == model.SpatialState
	hasRegion := spatial == model.SpatialRegion
	hasYear := temporal != model.TemporalNone
	hasMonth := temporal == model.TemporalMonthly

	var header []string
	if hasState {
		header = append(header, "State")
	}
	if hasRegion {
		header = append(header, "Region")
	}
	if hasYear {
		header = append(header, "Year")
	}
	if hasMonth {
		header = append(header, "Month")
	}
	header = append(header, "Contaminant", "Min (µg/L)", "Average (µg/L)", "Max (µg/L)", "Count")
	if err := writeRow(w, header); err != nil {
		return 0, err
	}

	for i, row := range rows {
		var out []string
		if hasState {
			out = append(out, row.State)
		}
		if hasRegion {
			out = append(out, row.Region)
		}
		if hasYear {
			out = append(out, strconv.Itoa(row.Year))
		}
		if hasMonth {
			out = append(out, strconv.Itoa(row.Month))
		}
		out = append(out, row.Contaminant,
			formatResult(row.Min), formatResult(row.Mean), formatResult(row.Max),
			strconv.Itoa(row.Count))
		if err := writeRow(w, out); err != nil {
			return i, err
		}
	}
	return len(rows), nil
}

func writeRow(w io.Writer, fields []string) error {
	for i, f := range fields {
		if i > 0 {
			if _, err := io.WriteString(w, "\t"); err != nil {
				return fmt.Errorf("failed to write output row: %w", err)
			}
		}
		if _, err := io.WriteString(w, f); err != nil {
			return fmt.Errorf("failed to write output row: %w", err)
		}
	}
	_, err := io.WriteString(w, "\n")
	if err != nil {
		return fmt.Errorf("failed to write output row: %w", err)
	}
	return nil
}

func formatResult(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

func formatOptional(f *float64) string {
	if f == nil {
		return ""
	}
	return formatResult(*f)
}

func exportToSQLite(jobID string, result model.RunResult) ExportResult {
	var count int
	var err error
	if result.Aggregated {
		count, err = store.SaveAggregateRows(jobID, result.Aggregates)
	} else {
		count, err = store.SaveProcessedRecords(jobID, result.Records)
	}
	if err != nil {
		return failedExport("sqlite", result.Name, err)
	}
	return ExportResult{Type: "sqlite", Path: result.Name, RecordCount: count, Success: true, ExportedAt: time.Now().UTC()}
}

func exportToPostgres(ctx context.Context, databaseURL, jobID string, result model.RunResult) ExportResult {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return failedExport("postgres", result.Name, fmt.Errorf("failed to connect: %w", err))
	}
	defer pool.Close()

	count := 0
	if result.Aggregated {
		const ddl = `
            CREATE TABLE IF NOT EXISTS ucmr_aggregates (
                job_id TEXT NOT NULL,
                state TEXT, region TEXT, year INT, month INT,
                contaminant TEXT NOT NULL,
                min_ugl DOUBLE PRECISION, mean_ugl DOUBLE PRECISION, max_ugl DOUBLE PRECISION,
                sample_count INT
            )`
		if _, err := pool.Exec(ctx, ddl); err != nil {
			return failedExport("postgres", "ucmr_aggregates", err)
		}
		for _, row := range result.Aggregates {
			_, err := pool.Exec(ctx,
				`INSERT INTO ucmr_aggregates (job_id, state, region, year, month, contaminant, min_ugl, mean_ugl, max_ugl, sample_count)
                 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				jobID, row.State, row.Region, row.Year, row.Month, row.Contaminant, row.Min, row.Mean, row.Max, row.Count)
			if err != nil {
				return failedExport("postgres", "ucmr_aggregates", err)
			}
			count++
		}
		return ExportResult{Type: "postgres", Path: "ucmr_aggregates", RecordCount: count, Success: true, ExportedAt: time.Now().UTC()}
	}

	const ddl = `
        CREATE TABLE IF NOT EXISTS ucmr_results (
            job_id TEXT NOT NULL,
            pwsid TEXT, sample_id TEXT, contaminant TEXT,
            collection_date TEXT, state TEXT, region TEXT,
            sign TEXT, mrl_ugl DOUBLE PRECISION, value_ugl DOUBLE PRECISION,
            processed_ugl DOUBLE PRECISION NOT NULL
        )`
	if _, err := pool.Exec(ctx, ddl); err != nil {
		return failedExport("postgres", "ucmr_results", err)
	}
	for _, rec := range result.Records {
		_, err := pool.Exec(ctx,
			`INSERT INTO ucmr_results (job_id, pwsid, sample_id, contaminant, collection_date, state, region, sign, mrl_ugl, value_ugl, processed_ugl)
             VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			jobID, rec.PWSID, rec.SampleID, rec.Contaminant, rec.CollectionDate,
			rec.State, rec.Region, rec.Sign, rec.MRL, rec.Value, rec.ProcessedResult)
		if err != nil {
			return failedExport("postgres", "ucmr_results", err)
		}
		count++
	}
	return ExportResult{Type: "postgres", Path: "ucmr_results", RecordCount: count, Success: true, ExportedAt: time.Now().UTC()}
}

func failedExport(kind, path string, err error) ExportResult {
	return ExportResult{Type: kind, Path: path, Success: false, Error: err.Error(), ExportedAt: time.Now().UTC()}
}
