package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-profiler/internal/observability"
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print a stored candidate record",
	RunE:  runShow,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a stored candidate record",
	RunE:  runDelete,
}

var (
	showID     string
	showOutput string
	deleteID   string
)

func init() {
	showCmd.Flags().StringVar(&showID, "id", "", "Candidate ID (required)")
	showCmd.Flags().StringVarP(&showOutput, "out", "o", "", "Path to output JSON file (default stdout)")
	_ = showCmd.MarkFlagRequired("id")

	deleteCmd.Flags().StringVar(&deleteID, "id", "", "Candidate ID (required)")
	_ = deleteCmd.MarkFlagRequired("id")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(deleteCmd)
}

func parseCandidateID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid candidate ID %q: %w", s, err)
	}
	return id, nil
}

func runShow(cmd *cobra.Command, _ []string) error {
	id, err := parseCandidateID(showID)
	if err != nil {
		return err
	}
	ctx := commandContext()
	store, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	candidate, err := store.GetCandidate(ctx, id)
	if err != nil {
		return err
	}
	if settings.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintCandidateRecord(candidate.Record)
		printer.PrintConflicts(candidate.Record.Conflicts)
	}
	return writeJSON(cmd.OutOrStdout(), showOutput, candidate)
}

func runDelete(cmd *cobra.Command, _ []string) error {
	id, err := parseCandidateID(deleteID)
	if err != nil {
		return err
	}
	ctx := commandContext()
	store, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	if err := store.DeleteCandidate(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
	return nil
}
