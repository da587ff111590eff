package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-profiler/internal/db"
	"github.com/jonathan/candidate-profiler/internal/logger"
	"github.com/jonathan/candidate-profiler/internal/pipeline"
	"github.com/jonathan/candidate-profiler/internal/schemas"
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Process every candidate listed in a manifest",
	Long: `Run the merge pipeline for each item of a YAML or TOML manifest, with up to the
configured concurrency in flight. Each merged record is written to <out-dir>/<id>.json.
A failing item is reported and does not stop the rest of the batch.`,
	RunE: runBatch,
}

var (
	batchManifestFile string
	batchOutputDir    string
	batchAsOf         string
	batchStore        bool
)

func init() {
	batchCmd.Flags().StringVarP(&batchManifestFile, "manifest", "m", "", "Path to manifest (.yaml, .yml or .toml) (required)")
	batchCmd.Flags().StringVarP(&batchOutputDir, "out-dir", "o", "", "Directory for merged records (required)")
	batchCmd.Flags().StringVar(&batchAsOf, "as-of", "", "Reference date YYYY-MM-DD for experience years (default today)")
	batchCmd.Flags().BoolVar(&batchStore, "store", false, "Save every merged record to the configured database")

	_ = batchCmd.MarkFlagRequired("manifest")
	_ = batchCmd.MarkFlagRequired("out-dir")

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, _ []string) error {
	ctx := commandContext()
	log := logger.Ctx(ctx)

	asOf, err := parseAsOf(batchAsOf)
	if err != nil {
		return err
	}
	manifest, err := pipeline.LoadManifest(batchManifestFile)
	if err != nil {
		return err
	}
	runner, err := newRunner(settings)
	if err != nil {
		return err
	}

	var store db.Store
	if batchStore {
		store, err = openStore(ctx, settings)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	inputs, failed := manifest.LoadInputs()
	byID := make(map[string]pipeline.Input, len(inputs))
	for _, in := range inputs {
		byID[in.ID] = in
	}

	opts := pipeline.RunOptions{AsOf: &asOf, Concurrency: settings.Concurrency}
	if settings.Verbose {
		opts.OnProgress = func(event pipeline.ProgressEvent) {
			log.Debug().Str("item", event.ItemID).Str("step", event.Step).Msg(event.Message)
		}
	}
	results := append(failed, runner.RunBatch(ctx, inputs, opts)...)

	var written int
	for _, res := range results {
		if res.Err != nil {
			continue
		}
		record := res.Result.Record
		if err := schemas.ValidateCandidateRecord(record); err != nil {
			var validationErr *schemas.ValidationError
			if errors.As(err, &validationErr) {
				log.Error().Err(err).Str("item", res.ID).Msg("merged record does not validate against schema")
				continue
			}
			log.Warn().Err(err).Msg("could not validate output against schema")
		}

		outPath := filepath.Join(batchOutputDir, res.ID+".json")
		if err := writeJSON(cmd.OutOrStdout(), outPath, record); err != nil {
			return err
		}
		written++

		if store != nil {
			in := byID[res.ID]
			id, err := store.SaveCandidate(ctx, db.CandidateInput{
				Record:       record,
				ResumeHash:   documentHash(in.Resume),
				LinkedInHash: documentHash(in.LinkedIn),
				ProfileURL:   in.ProfileURL,
			})
			if err != nil {
				return err
			}
			log.Debug().Str("item", res.ID).Str("id", id.String()).Msg("candidate stored")
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Processed %d candidates: %d written to %s\n", len(results), written, batchOutputDir)
	failures := 0
	for _, res := range results {
		if res.Err != nil {
			failures++
			fmt.Fprintf(out, "  FAILED %s: %v\n", res.ID, res.Err)
		}
	}
	if failures > 0 {
		return fmt.Errorf("%d of %d candidates failed", failures, len(results))
	}
	return nil
}
