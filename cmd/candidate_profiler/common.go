package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/candidate-profiler/internal/config"
	"github.com/jonathan/candidate-profiler/internal/db"
	"github.com/jonathan/candidate-profiler/internal/logger"
	"github.com/jonathan/candidate-profiler/internal/merge"
	"github.com/jonathan/candidate-profiler/internal/pipeline"
	"github.com/jonathan/candidate-profiler/internal/skills"
)

// commandContext carries the configured logger
func commandContext() context.Context {
	return logger.WithContext(context.Background())
}

// loadVocabulary reads the configured vocabulary or falls back to the built-in one
func loadVocabulary(cfg config.Config) (*skills.Vocabulary, error) {
	if cfg.Vocabulary == "" {
		return skills.DefaultVocabulary(), nil
	}
	vocab, err := skills.LoadVocabulary(cfg.Vocabulary)
	if err != nil {
		return nil, fmt.Errorf("failed to load vocabulary: %w", err)
	}
	return vocab, nil
}

// newRunner wires the pipeline from configuration
func newRunner(cfg config.Config) (*pipeline.Runner, error) {
	vocab, err := loadVocabulary(cfg)
	if err != nil {
		return nil, err
	}
	normalizer := skills.NewNormalizer(vocab, skills.WithFuzzyThreshold(cfg.FuzzyThreshold))
	engine := merge.NewEngine(
		merge.WithPhoneRegion(cfg.PhoneRegion),
		merge.WithVocabulary(vocab),
	)
	return pipeline.NewRunner(normalizer, engine), nil
}

// openStore opens the configured database; it is an error to ask for storage without one
func openStore(ctx context.Context, cfg config.Config) (db.Store, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL required (set --db-url or %s)", config.EnvDatabaseURL)
	}
	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return store, nil
}

// parseAsOf reads a YYYY-MM-DD reference date; empty means today
func parseAsOf(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --as-of date %q (want YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// writeJSON writes v as indented JSON to path, or to w when path is empty
func writeJSON(w io.Writer, path string, v any) error {
	jsonBytes, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	jsonBytes = append(jsonBytes, '\n')

	if path == "" {
		_, err = w.Write(jsonBytes)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := os.WriteFile(path, jsonBytes, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
