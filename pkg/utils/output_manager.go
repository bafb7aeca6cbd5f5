package utils

import (
	"fmt"
	"os"
	"path/filepath"
)

// OutputManager keeps each run's output files under a per-job directory.
type OutputManager struct {
	BaseOutputDir string
}

// NewOutputManager creates a new output manager.
func NewOutputManager(baseOutputDir string) *OutputManager {
	return &OutputManager{BaseOutputDir: baseOutputDir}
}

// JobDir creates (if needed) and returns the directory for a job's outputs.
func (om *OutputManager) JobDir(jobID string) (string, error) {
	dir := filepath.Join(om.BaseOutputDir, jobID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create job output directory: %w", err)
	}
	return dir, nil
}

// OutputFilePath returns the full path for one of a job's output files.
// The file name is flattened so callers cannot escape the job directory.
func (om *OutputManager) OutputFilePath(jobID, fileName string) (string, error) {
	dir, err := om.JobDir(jobID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, filepath.Base(fileName)), nil
}

// EnsureBaseDir creates the base output directory.
func (om *OutputManager) EnsureBaseDir() error {
	return os.MkdirAll(om.BaseOutputDir, 0755)
}

// DownloadURL is the API path serving one of a job's output files.
func (om *OutputManager) DownloadURL(jobID, fileName string) string {
	return fmt.Sprintf("/api/v1/download/%s/%s", jobID, filepath.Base(fileName))
}
