package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds environment-driven settings for the job API server.
type Config struct {
	Port        int
	DBPath      string
	OutputDir   string
	PostgresURL string
	JobTimeout  string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:       8080,
		DBPath:     "ucmr.db",
		OutputDir:  "outputs",
		JobTimeout: "5m",
	}

	if portStr := os.Getenv("PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
		cfg.Port = port
	}

	if path := os.Getenv("UCMR_DB_PATH"); path != "" {
		cfg.DBPath = path
	}
	if dir := os.Getenv("UCMR_OUTPUT_DIR"); dir != "" {
		cfg.OutputDir = dir
	}
	if timeout := os.Getenv("UCMR_JOB_TIMEOUT"); timeout != "" {
		cfg.JobTimeout = timeout
	}

	// Optional; only needed when a job requests the postgres export target.
	cfg.PostgresURL = os.Getenv("DATABASE_URL")

	return cfg, nil
}
