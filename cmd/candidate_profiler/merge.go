package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-profiler/internal/db"
	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/logger"
	"github.com/jonathan/candidate-profiler/internal/observability"
	"github.com/jonathan/candidate-profiler/internal/pipeline"
	"github.com/jonathan/candidate-profiler/internal/schemas"
	"github.com/jonathan/candidate-profiler/internal/scoring"
	"github.com/jonathan/candidate-profiler/internal/types"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Build a merged candidate record from a resume and LinkedIn data",
	Long: `Extract both sources and merge them into one candidate record. Either source may be
omitted; without LinkedIn text or a profile, a placeholder (optionally named from
--profile-url) stands in for it. The record is validated against the output contract
and can be stored with --store.`,
	RunE: runMerge,
}

var (
	mergeResumeFile   string
	mergeLinkedInFile string
	mergeProfileFile  string
	mergeProfileURL   string
	mergeOutputFile   string
	mergeAsOf         string
	mergeStore        bool
)

func init() {
	mergeCmd.Flags().StringVarP(&mergeResumeFile, "resume", "r", "", "Path to resume (text, PDF or HTML)")
	mergeCmd.Flags().StringVarP(&mergeLinkedInFile, "linkedin", "l", "", "Path to LinkedIn profile text or HTML")
	mergeCmd.Flags().StringVarP(&mergeProfileFile, "profile", "p", "", "Path to structured LinkedIn profile JSON")
	mergeCmd.Flags().StringVar(&mergeProfileURL, "profile-url", "", "LinkedIn profile URL, recorded with the candidate")
	mergeCmd.Flags().StringVarP(&mergeOutputFile, "out", "o", "", "Path to output JSON file (default stdout)")
	mergeCmd.Flags().StringVar(&mergeAsOf, "as-of", "", "Reference date YYYY-MM-DD for experience years (default today)")
	mergeCmd.Flags().BoolVar(&mergeStore, "store", false, "Save the record to the configured database")

	mergeCmd.MarkFlagsMutuallyExclusive("linkedin", "profile")
	mergeCmd.MarkFlagsOneRequired("resume", "linkedin", "profile", "profile-url")

	rootCmd.AddCommand(mergeCmd)
}

func runMerge(cmd *cobra.Command, _ []string) error {
	ctx := commandContext()
	log := logger.Ctx(ctx)

	asOf, err := parseAsOf(mergeAsOf)
	if err != nil {
		return err
	}
	runner, err := newRunner(settings)
	if err != nil {
		return err
	}

	item := pipeline.ManifestItem{
		ID:         "cli",
		Resume:     mergeResumeFile,
		LinkedIn:   mergeLinkedInFile,
		Profile:    mergeProfileFile,
		ProfileURL: mergeProfileURL,
	}
	input, err := item.Load()
	if err != nil {
		return fmt.Errorf("failed to load inputs: %w", err)
	}

	result, err := runner.Run(ctx, input, pipeline.RunOptions{AsOf: &asOf})
	if err != nil {
		return fmt.Errorf("failed to build candidate record: %w", err)
	}
	record := result.Record

	if err := schemas.ValidateCandidateRecord(record); err != nil {
		var validationErr *schemas.ValidationError
		if errors.As(err, &validationErr) {
			return fmt.Errorf("merged record does not validate against schema: %w", err)
		}
		log.Warn().Err(err).Msg("could not validate output against schema")
	}

	if settings.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintPartialRecord(result.Resume)
		printer.PrintPartialRecord(result.LinkedIn)
		printer.PrintCandidateRecord(record)
		printer.PrintConflicts(record.Conflicts)
	}
	if scoring.NeedsReview(record, settings.ReviewThreshold) {
		log.Warn().
			Float64("overall_confidence", record.OverallConfidence).
			Int("conflicts", len(record.Conflicts)).
			Msg("record needs review")
	}

	if mergeStore {
		store, err := openStore(ctx, settings)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		id, err := store.SaveCandidate(ctx, db.CandidateInput{
			Record:       record,
			ResumeHash:   documentHash(input.Resume),
			LinkedInHash: documentHash(input.LinkedIn),
			ProfileURL:   mergeProfileURL,
		})
		if err != nil {
			return err
		}
		log.Info().Str("id", id.String()).Msg("candidate stored")
	}

	return writeJSON(cmd.OutOrStdout(), mergeOutputFile, record)
}

// documentHash fingerprints a loaded document, or returns "" when there is none
func documentHash(doc *types.RawDocument) string {
	if doc == nil {
		return ""
	}
	return ingestion.NewMetadata(doc.Text, doc.Source, ingestion.FormatText).Hash
}
