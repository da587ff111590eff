package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/linkedin"
	"github.com/jonathan/candidate-profiler/internal/logger"
	"github.com/jonathan/candidate-profiler/internal/observability"
	"github.com/jonathan/candidate-profiler/internal/schemas"
	"github.com/jonathan/candidate-profiler/internal/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a partial candidate record from one document",
	Long: `Extract contact details, skills, experience and education from a single resume or
LinkedIn document (plain text, PDF or HTML). A LinkedIn profile given as .json is read as
structured profile data. The partial record is written as JSON.`,
	RunE: runExtract,
}

var (
	extractInputFile  string
	extractSource     string
	extractOutputFile string
)

func init() {
	extractCmd.Flags().StringVarP(&extractInputFile, "in", "i", "", "Path to the document (required)")
	extractCmd.Flags().StringVarP(&extractSource, "source", "s", "resume", "Document source: resume or linkedin")
	extractCmd.Flags().StringVarP(&extractOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")

	_ = extractCmd.MarkFlagRequired("in")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, _ []string) error {
	source := types.Source(strings.ToUpper(extractSource))
	if !source.Valid() {
		return fmt.Errorf("invalid --source %q (want resume or linkedin)", extractSource)
	}

	runner, err := newRunner(settings)
	if err != nil {
		return err
	}
	log := logger.Ctx(commandContext())

	var record *types.PartialCandidateRecord
	if source == types.SourceLinkedIn && strings.EqualFold(filepath.Ext(extractInputFile), ".json") {
		profile, err := linkedin.LoadProfile(extractInputFile)
		if err != nil {
			return fmt.Errorf("failed to load profile: %w", err)
		}
		record = linkedin.FromProfile(profile, runner.Normalizer())
	} else {
		doc, err := ingestion.LoadDocument(extractInputFile, source)
		if err != nil {
			return fmt.Errorf("failed to load document: %w", err)
		}
		log.Debug().Str("hash", doc.Metadata.Hash).Str("format", string(doc.Metadata.Format)).Msg("document loaded")

		if source == types.SourceLinkedIn {
			record, err = linkedin.FromText(doc.Raw.Text, runner.Parser())
		} else {
			record, err = runner.Parser().ParseDocument(doc.Raw)
		}
		if err != nil {
			return fmt.Errorf("failed to extract record: %w", err)
		}
	}

	if err := schemas.ValidatePartialRecord(record); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("extracted record does not validate against schema: %w", err)
		}
		log.Warn().Err(err).Msg("could not validate output against schema")
	}

	if settings.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintPartialRecord(record)
	}

	return writeJSON(cmd.OutOrStdout(), extractOutputFile, record)
}
