// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// Environment variables read by ApplyEnv
const (
	EnvVocabulary     = "CANDIDATE_VOCABULARY"
	EnvDatabaseURL    = "CANDIDATE_DATABASE_URL"
	EnvLogLevel       = "CANDIDATE_LOG_LEVEL"
	EnvLogFormat      = "CANDIDATE_LOG_FORMAT"
	EnvConcurrency    = "CANDIDATE_CONCURRENCY"
	EnvFuzzyThreshold = "CANDIDATE_FUZZY_THRESHOLD"
	EnvPhoneRegion    = "CANDIDATE_PHONE_REGION"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Paths
	Vocabulary string `json:"vocabulary,omitempty"` // Skill vocabulary file (YAML, TOML or JSON); empty uses the built-in one

	// Logging
	LogLevel  string `json:"log_level,omitempty" validate:"omitempty,oneof=debug info warn error"`
	LogFormat string `json:"log_format,omitempty" validate:"omitempty,oneof=json pretty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // postgres://, sqlite:// or a SQLite file path

	// Behavior
	// Concurrency is the number of batch items processed at once
	Concurrency int `json:"concurrency,omitempty" validate:"gte=0,lte=256"`
	// FuzzyThreshold is the minimum similarity for a fuzzy skill match
	FuzzyThreshold float64 `json:"fuzzy_threshold,omitempty" validate:"gte=0,lte=1"`
	// PhoneRegion interprets numbers written without a country code
	PhoneRegion string `json:"phone_region,omitempty" validate:"omitempty,len=2,alpha"`
	// ReviewThreshold flags records whose overall confidence falls below it
	ReviewThreshold float64 `json:"review_threshold,omitempty" validate:"gte=0,lte=1"`
	Verbose         bool    `json:"verbose,omitempty"` // Print human-readable summaries
}

// Defaults returns the values used when neither file, environment nor flags set a field
func Defaults() Config {
	return Config{
		LogLevel:        "info",
		LogFormat:       "pretty",
		Concurrency:     4,
		FuzzyThreshold:  0.85,
		PhoneRegion:     "US",
		ReviewThreshold: 0.6,
	}
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// ApplyEnv overrides fields from CANDIDATE_* variables found through lookup
// (os.LookupEnv in production). Unparseable numbers are reported, not ignored.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvVocabulary); ok && v != "" {
		c.Vocabulary = v
	}
	if v, ok := lookup(EnvDatabaseURL); ok && v != "" {
		c.DatabaseURL = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok && v != "" {
		c.LogFormat = v
	}
	if v, ok := lookup(EnvPhoneRegion); ok && v != "" {
		c.PhoneRegion = v
	}
	if v, ok := lookup(EnvConcurrency); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config error: %s: %w", EnvConcurrency, err)
		}
		c.Concurrency = n
	}
	if v, ok := lookup(EnvFuzzyThreshold); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config error: %s: %w", EnvFuzzyThreshold, err)
		}
		c.FuzzyThreshold = f
	}
	return nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	// Validate file paths exist (if specified)
	if c.Vocabulary != "" {
		if _, err := os.Stat(c.Vocabulary); os.IsNotExist(err) {
			return fmt.Errorf("config error: vocabulary file not found: %s", c.Vocabulary)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with zero-valued fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Vocabulary == "" {
		result.Vocabulary = defaults.Vocabulary
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}
	if result.LogFormat == "" {
		result.LogFormat = defaults.LogFormat
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.PhoneRegion == "" {
		result.PhoneRegion = defaults.PhoneRegion
	}

	// Numeric fields: use default if zero
	if result.Concurrency == 0 {
		result.Concurrency = defaults.Concurrency
	}
	if result.FuzzyThreshold == 0 {
		result.FuzzyThreshold = defaults.FuzzyThreshold
	}
	if result.ReviewThreshold == 0 {
		result.ReviewThreshold = defaults.ReviewThreshold
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
