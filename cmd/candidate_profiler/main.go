// Package main provides the candidate_profiler command line tool.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-profiler/internal/config"
	"github.com/jonathan/candidate-profiler/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "candidate_profiler",
	Short: "Extract and merge candidate profiles from resumes and LinkedIn data",
	Long: `candidate_profiler reads a resume and a LinkedIn profile, extracts contact details,
skills, experience and education from each, and merges them into one candidate record
with per-field confidence, provenance and a list of conflicting values.

Configuration is read from --config, then CANDIDATE_* environment variables
(a .env file is loaded if present), then command-line flags.`,
	SilenceUsage:      true,
	PersistentPreRunE: loadSettings,
}

var (
	configPath     string
	flagVerbose    bool
	flagLogLevel   string
	flagLogFormat  string
	flagVocabulary string
	flagDBURL      string

	// settings is the resolved configuration, available to every sub-command
	settings config.Config
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "Print human-readable summaries to stderr")
	flags.StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&flagLogFormat, "log-format", "", "Log format: json or pretty")
	flags.StringVar(&flagVocabulary, "vocabulary", "", "Skill vocabulary file (YAML, TOML or JSON)")
	flags.StringVar(&flagDBURL, "db-url", "", "Database URL: postgres://..., sqlite://path or a SQLite file path")
}

// loadSettings resolves configuration in order file, environment, flags, defaults
func loadSettings(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = flagLogFormat
	}
	if flags.Changed("vocabulary") {
		cfg.Vocabulary = flagVocabulary
	}
	if flags.Changed("db-url") {
		cfg.DatabaseURL = flagDBURL
	}
	if flagVerbose {
		cfg.Verbose = true
	}

	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: cmd.ErrOrStderr(),
	})
	settings = cfg
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
