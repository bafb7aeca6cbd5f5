package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"ucmr-pipeline/internal/model"
	"ucmr-pipeline/internal/pipeline"
	"ucmr-pipeline/internal/store"
	"ucmr-pipeline/pkg/utils"

	"github.com/google/uuid"
)

var (
	outputs            *utils.OutputManager
	defaultTimeout     = 5 * time.Minute
	defaultPostgresURL string
)

// Init wires the handlers to the server's output manager and defaults.
func Init(om *utils.OutputManager, jobTimeout, postgresURL string) {
	outputs = om
	defaultTimeout = utils.ParseDuration(jobTimeout, defaultTimeout)
	defaultPostgresURL = postgresURL
}

// CreateJob creates and starts a new processing job
// @Summary Create a processing job
// @Description Validate a job spec and start the pipeline run asynchronously
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body model.JobSpec true "Job configuration"
// @Success 200 {object} map[string]interface{} "Job created"
// @Failure 400 {object} map[string]interface{} "Invalid job spec"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [post]
func CreateJob(w http.ResponseWriter, r *http.Request) {
	var job model.JobSpec
	if err := json.NewDecoder(r.Body).Decode(&job); err != nil {
		http.Error(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}
	if job.PostgresURL == "" {
		job.PostgresURL = defaultPostgresURL
	}

	// Invalid enum values never reach the pipeline.
	if err := job.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	jobID := uuid.New().String()
	if err := store.SaveJob(jobID, job); err != nil {
		http.Error(w, "Failed to save job", http.StatusInternalServerError)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), utils.ParseDuration(job.JobTimeout, defaultTimeout))
	go func() {
		defer cancel()
		if _, _, err := pipeline.Run(ctx, jobID, job, outputs); err != nil {
			store.SaveJobError(jobID, err)
		}
	}()

	writeJSON(w, map[string]interface{}{
		"message":   "Job created successfully",
		"jobID":     jobID,
		"status":    "pending",
		"output":    job.OutputName(),
		"createdAt": time.Now().UTC(),
	})
}

// ListJobs retrieves all processing jobs
// @Summary List jobs
// @Description Get all processing jobs with their current status
// @Tags jobs
// @Produce json
// @Success 200 {array} map[string]interface{} "List of jobs"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /jobs [get]
func ListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := store.ListJobs()
	if err != nil {
		http.Error(w, "Failed to fetch jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []map[string]interface{}{}
	}
	writeJSON(w, jobs)
}

// GetJob retrieves a job or one of its subresources
// @Summary Get job
// @Description Retrieve a job's spec and status, or its errors, results or output files
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} map[string]interface{} "Job details"
// @Failure 404 {object} map[string]interface{} "Job not found"
// @Router /jobs/{id} [get]
func GetJob(w http.ResponseWriter, r *http.Request) {
	jobID, sub, ok := splitJobPath(r.URL.Path)
	if !ok {
		http.Error(w, "Job ID is required", http.StatusBadRequest)
		return
	}

	switch sub {
	case "":
		job, err := store.GetJob(jobID)
		if err != nil {
			http.Error(w, "Job not found", http.StatusNotFound)
			return
		}
		writeJSON(w, job)
	case "errors":
		errs, err := store.GetJobErrors(jobID)
		if err != nil {
			http.Error(w, "Failed to fetch job errors", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"jobID": jobID, "errors": errs})
	case "results":
		rows, err := store.GetAggregateRows(jobID)
		if err != nil {
			http.Error(w, "Failed to fetch results", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]interface{}{"jobID": jobID, "aggregates": rows})
	case "outputs":
		files, err := store.GetRunOutputs(jobID)
		if err != nil {
			http.Error(w, "Failed to fetch outputs", http.StatusInternalServerError)
			return
		}
		if outputs != nil {
			for _, f := range files {
				if path, ok := f["path"].(string); ok {
					f["downloadUrl"] = outputs.DownloadURL(jobID, path)
				}
			}
		}
		writeJSON(w, map[string]interface{}{"jobID": jobID, "outputs": files})
	default:
		http.Error(w, "Not Found", http.StatusNotFound)
	}
}

// DownloadOutput serves a job's output file
// @Summary Download output
// @Description Download one of a job's produced output files
// @Tags jobs
// @Produce octet-stream
// @Param id path string true "Job ID"
// @Param file path string true "Output file name"
// @Success 200 {file} binary "Output file"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /download/{id}/{file} [get]
func DownloadOutput(w http.ResponseWriter, r *http.Request) {
	const prefix = "/api/v1/download/"
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		http.Error(w, "Job ID and file name are required", http.StatusBadRequest)
		return
	}
	if outputs == nil {
		http.Error(w, "Downloads are not configured", http.StatusNotFound)
		return
	}

	dir, err := outputs.JobDir(parts[0])
	if err != nil {
		http.Error(w, "Job outputs not found", http.StatusNotFound)
		return
	}
	path := filepath.Join(dir, filepath.Base(parts[1]))
	if _, err := os.Stat(path); err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}
	http.ServeFile(w, r, path)
}

func splitJobPath(urlPath string) (jobID, sub string, ok bool) {
	const prefix = "/api/v1/jobs/"
	rest := strings.TrimPrefix(urlPath, prefix)
	if rest == "" || rest == urlPath {
		return "", "", false
	}
	parts := strings.SplitN(rest, "/", 2)
	jobID = parts[0]
	if len(parts) == 2 {
		sub = parts[1]
	}
	return jobID, sub, jobID != ""
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
