package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"ucmr-pipeline/internal/model"
	"ucmr-pipeline/internal/pipeline"
	"ucmr-pipeline/internal/store"
	"ucmr-pipeline/pkg/utils"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var (
	cfgFile string

	flagInputs      []string
	flagNonDetects  string
	flagSpatial     string
	flagTemporal    string
	flagOut         string
	flagExportDB    string
	flagPostgresURL string
	flagDBPath      string
	flagOutputDir   string
	flagTimeout     string
	flagSaveConfig  string
)

var rootCmd = &cobra.Command{
	Use:   "ucmr",
	Short: "Process EPA UCMR4 water-quality monitoring data",
	Long: `ucmr cleans raw UCMR4 tab-separated exports, resolves non-detect results
to a numeric processed result under a chosen policy, and optionally
aggregates the results by state or EPA region and by month or year.`,
	RunE:          run,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&cfgFile, "config", "", "YAML config file with job defaults")
	f.StringSliceVarP(&flagInputs, "input", "i", nil, "input TSV file or glob (repeatable)")
	f.StringVar(&flagNonDetects, "non-detects", "", "non-detect representation: zero, half-mrl or at-mrl")
	f.StringVar(&flagSpatial, "spatial", "none", "spatial aggregation: none, state or region")
	f.StringVar(&flagTemporal, "temporal", "none", "temporal aggregation: none, monthly or annual")
	f.StringVarP(&flagOut, "out", "o", "", "output file path (default: <output identifier>.tsv in the output dir)")
	f.StringVar(&flagExportDB, "export-db", "", "additional export target: sqlite or postgres")
	f.StringVar(&flagPostgresURL, "postgres-url", "", "postgres connection URL for --export-db postgres")
	f.StringVar(&flagDBPath, "db", "", "sqlite database for job tracking and the sqlite export target")
	f.StringVar(&flagOutputDir, "output-dir", "outputs", "directory for default output files")
	f.StringVar(&flagTimeout, "timeout", "5m", "run timeout")
	f.StringVar(&flagSaveConfig, "save-config", "", "write the effective job spec to this YAML file for reuse with --config")
}

func run(cmd *cobra.Command, args []string) error {
	job, err := buildJobSpec(cmd)
	if err != nil {
		return err
	}

	// Reject and report; never guess a near-miss value.
	if err := job.Validate(); err != nil {
		return err
	}

	if flagSaveConfig != "" {
		if err := saveConfig(job, flagSaveConfig); err != nil {
			return err
		}
		fmt.Printf("Config saved to %s\n", flagSaveConfig)
	}

	if flagDBPath != "" {
		if err := store.InitDB(flagDBPath); err != nil {
			return fmt.Errorf("failed to open job store: %w", err)
		}
		defer store.Close()
	}

	jobID := uuid.New().String()
	store.SaveJob(jobID, job)

	fmt.Printf("Processing with non-detects as %s, spatial %s, temporal %s\n",
		job.NonDetects, job.Spatial, job.Temporal)

	ctx, cancel := context.WithTimeout(context.Background(), utils.ParseDuration(flagTimeout, 5*time.Minute))
	defer cancel()

	om := utils.NewOutputManager(flagOutputDir)
	_, exports, err := pipeline.Run(ctx, jobID, job, om)
	if err != nil {
		return err
	}
	for _, ex := range exports {
		if ex.Type == "file" {
			fmt.Printf("File saved as %s\n", ex.Path)
		}
	}
	return nil
}

// buildJobSpec merges the YAML config file (if given) with flag values;
// flags win when set.
func buildJobSpec(cmd *cobra.Command) (model.JobSpec, error) {
	v := viper.New()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return model.JobSpec{}, fmt.Errorf("failed to read config: %w", err)
		}
	}

	// Flags win over the config file; the config file fills in whatever
	// the command line left unset.
	pick := func(flag, key, current string) string {
		if !cmd.Flags().Changed(flag) && v.IsSet(key) {
			return v.GetString(key)
		}
		return current
	}

	job := model.JobSpec{
		Inputs:      flagInputs,
		NonDetects:  model.NonDetectPolicy(pick("non-detects", "nonDetects", flagNonDetects)),
		Spatial:     model.SpatialMode(pick("spatial", "spatial", flagSpatial)),
		Temporal:    model.TemporalMode(pick("temporal", "temporal", flagTemporal)),
		JobTimeout:  flagTimeout,
		PostgresURL: flagPostgresURL,
	}
	if len(job.Inputs) == 0 {
		job.Inputs = v.GetStringSlice("inputs")
	}
	if job.PostgresURL == "" {
		job.PostgresURL = v.GetString("postgresUrl")
	}

	if flagOut != "" || flagExportDB != "" {
		job.Export = &model.Export{File: flagOut, DB: flagExportDB}
	} else if v.IsSet("export.file") || v.IsSet("export.db") {
		job.Export = &model.Export{File: v.GetString("export.file"), DB: v.GetString("export.db")}
	}

	return job, nil
}

// saveConfig writes the job spec as a YAML config file that --config can
// read back on a later run.
func saveConfig(job model.JobSpec, path string) error {
	b, err := yaml.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}
