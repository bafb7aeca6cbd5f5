package store

import (
	"database/sql"
	"encoding/json"
	"time"

	"ucmr-pipeline/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Package-level handle, matching the single-process deployment. Every
// write is nil-guarded so the pipeline can run as a plain library without
// a store (the CLI only initializes one when asked to).
var db *sql.DB

// InitDB opens the sqlite database and creates the schema.
func InitDB(dbPath string) error {
	var err error
	db, err = sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}

	schema := []string{
		`CREATE TABLE IF NOT EXISTS jobs (
			id TEXT PRIMARY KEY,
			spec TEXT,
			status TEXT,
			created_at DATETIME,
			updated_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS job_errors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			error_message TEXT,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS stage_progress (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			stage TEXT,
			status TEXT,
			started_at DATETIME,
			ended_at DATETIME,
			record_count INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS run_outputs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			name TEXT,
			path TEXT,
			record_count INTEGER,
			created_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS aggregate_rows (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			state TEXT,
			region TEXT,
			year INTEGER,
			month INTEGER,
			contaminant TEXT,
			min_ugl REAL,
			mean_ugl REAL,
			max_ugl REAL,
			sample_count INTEGER
		);`,
		`CREATE TABLE IF NOT EXISTS processed_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			job_id TEXT,
			pwsid TEXT,
			sample_id TEXT,
			contaminant TEXT,
			collection_date TEXT,
			state TEXT,
			region TEXT,
			sign TEXT,
			mrl_ugl REAL,
			value_ugl REAL,
			processed_ugl REAL
		);`,
	}
	for _, ddl := range schema {
		if _, err := db.Exec(ddl); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database handle.
func Close() error {
	if db == nil {
		return nil
	}
	err := db.Close()
	db = nil
	return err
}

// SaveJob stores a new processing job.
func SaveJob(jobID string, spec model.JobSpec) error {
	if db == nil {
		return nil
	}
	specJSON, err := json.Marshal(spec)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	_, err = db.Exec(`INSERT INTO jobs (id, spec, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, specJSON, "pending", now, now)
	return err
}

// UpdateJobStatus updates job status.
func UpdateJobStatus(jobID, status string) error {
	if db == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`UPDATE jobs SET status = ?, updated_at = ? WHERE id = ?`, status, now, jobID)
	return err
}

// SaveJobError records an error for a job.
func SaveJobError(jobID string, jobErr error) error {
	if db == nil || jobErr == nil {
		return nil
	}
	now := time.Now().UTC()
	_, err := db.Exec(`INSERT INTO job_errors (job_id, error_message, created_at) VALUES (?, ?, ?)`,
		jobID, jobErr.Error(), now)
	return err
}

// SaveStageProgress records a stage transition for a job.
func SaveStageProgress(jobID, stage, status string, startedAt time.Time, endedAt *time.Time, recordCount int) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(`INSERT INTO stage_progress (job_id, stage, status, started_at, ended_at, record_count)
		VALUES (?, ?, ?, ?, ?, ?)`,
		jobID, stage, status, startedAt, endedAt, recordCount)
	return err
}

// SaveRunOutput records a produced output artifact.
func SaveRunOutput(jobID, name, path string, recordCount int) error {
	if db == nil {
		return nil
	}
	_, err := db.Exec(`INSERT INTO run_outputs (job_id, name, path, record_count, created_at) VALUES (?, ?, ?, ?, ?)`,
		jobID, name, path, recordCount, time.Now().UTC())
	return err
}

// SaveAggregateRows persists the aggregate table for the sqlite export
// target. Returns the number of rows written.
func SaveAggregateRows(jobID string, rows []model.AggregateRow) (int, error) {
	if db == nil {
		return 0, nil
	}
	count := 0
	for _, row := range rows {
		_, err := db.Exec(`INSERT INTO aggregate_rows
			(job_id, state, region, year, month, contaminant, min_ugl, mean_ugl, max_ugl, sample_count)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			jobID, row.State, row.Region, row.Year, row.Month, row.Contaminant,
			row.Min, row.Mean, row.Max, row.Count)
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// SaveProcessedRecords persists the per-record table for the sqlite export
// target. Returns the number of rows written.
func SaveProcessedRecords(jobID string, records []model.ProcessedRecord) (int, error) {
	if db == nil {
		return 0, nil
	}
	count := 0
	for _, rec := range records {
		_, err := db.Exec(`INSERT INTO processed_records
			(job_id, pwsid, sample_id, contaminant, collection_date, state, region, sign, mrl_ugl, value_ugl, processed_ugl)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			jobID, rec.PWSID, rec.SampleID, rec.Contaminant, rec.CollectionDate,
			rec.State, rec.Region, rec.Sign, nullable(rec.MRL), nullable(rec.Value), rec.ProcessedResult)
		if err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func nullable(f *float64) interface{} {
	if f == nil {
		return nil
	}
	return *f
}

// ListJobs returns all jobs with basic info, newest first.
func ListJobs() ([]map[string]interface{}, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(`SELECT id, status, created_at, updated_at FROM jobs ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []map[string]interface{}
	for rows.Next() {
		var id, status string
		var createdAt, updatedAt time.Time
		if err := rows.Scan(&id, &status, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		jobs = append(jobs, map[string]interface{}{
			"id":        id,
			"status":    status,
			"createdAt": createdAt,
			"updatedAt": updatedAt,
		})
	}
	return jobs, rows.Err()
}

// GetJob fetches full job spec and status.
func GetJob(jobID string) (map[string]interface{}, error) {
	if db == nil {
		return nil, sql.ErrNoRows
	}
	var specJSON, status string
	var createdAt, updatedAt time.Time

	err := db.QueryRow(`SELECT spec, status, created_at, updated_at FROM jobs WHERE id = ?`, jobID).
		Scan(&specJSON, &status, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	var spec model.JobSpec
	if err := json.Unmarshal([]byte(specJSON), &spec); err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"id":        jobID,
		"spec":      spec,
		"status":    status,
		"createdAt": createdAt,
		"updatedAt": updatedAt,
	}, nil
}

// GetJobErrors returns all recorded errors for a job, oldest first.
func GetJobErrors(jobID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(`SELECT error_message, created_at FROM job_errors WHERE job_id = ? ORDER BY created_at`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var msg string
		var createdAt time.Time
		if err := rows.Scan(&msg, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"error":     msg,
			"createdAt": createdAt,
		})
	}
	return out, rows.Err()
}

// GetRunOutputs lists the output artifacts a job produced.
func GetRunOutputs(jobID string) ([]map[string]interface{}, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(`SELECT name, path, record_count, created_at FROM run_outputs WHERE job_id = ? ORDER BY created_at`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]interface{}
	for rows.Next() {
		var name, path string
		var recordCount int
		var createdAt time.Time
		if err := rows.Scan(&name, &path, &recordCount, &createdAt); err != nil {
			return nil, err
		}
		out = append(out, map[string]interface{}{
			"name":        name,
			"path":        path,
			"recordCount": recordCount,
			"createdAt":   createdAt,
		})
	}
	return out, rows.Err()
}

// GetAggregateRows returns the sqlite-exported aggregate table for a job.
func GetAggregateRows(jobID string) ([]model.AggregateRow, error) {
	if db == nil {
		return nil, nil
	}
	rows, err := db.Query(`SELECT state, region, year, month, contaminant, min_ugl, mean_ugl, max_ugl, sample_count
		FROM aggregate_rows WHERE job_id = ? ORDER BY id`, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AggregateRow
	for rows.Next() {
		var row model.AggregateRow
		if err := rows.Scan(&row.State, &row.Region, &row.Year, &row.Month,
			&row.Contaminant, &row.Min, &row.Mean, &row.Max, &row.Count); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
