package utils

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputFilePath(t *testing.T) {
	om := NewOutputManager(t.TempDir())

	path, err := om.OutputFilePath("job-1", "result.tsv")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(om.BaseOutputDir, "job-1", "result.tsv"), path)

	// Path separators in the file name cannot escape the job directory.
	path, err = om.OutputFilePath("job-1", "../../etc/passwd")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(om.BaseOutputDir, "job-1", "passwd"), path)
}

func TestDownloadURL(t *testing.T) {
	om := NewOutputManager("outputs")
	assert.Equal(t, "/api/v1/download/job-1/result.tsv", om.DownloadURL("job-1", "some/dir/result.tsv"))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, 2*time.Minute, ParseDuration("2m", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("soon", time.Minute))
}
