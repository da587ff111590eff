package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-profiler/internal/db"
	"github.com/jonathan/candidate-profiler/internal/observability"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored candidates",
	Long: `List stored candidates, most recent first. Results can be narrowed to candidates
with a given canonical skill or a minimum overall confidence.`,
	RunE: runList,
}

var (
	listSkill         string
	listMinConfidence float64
	listLimit         int
	listJSON          bool
)

func init() {
	listCmd.Flags().StringVar(&listSkill, "skill", "", "Only candidates with this canonical skill")
	listCmd.Flags().Float64Var(&listMinConfidence, "min-confidence", 0, "Only candidates with at least this overall confidence")
	listCmd.Flags().IntVar(&listLimit, "limit", db.DefaultListLimit, "Maximum number of candidates")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print JSON instead of a table")

	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	if listMinConfidence < 0 || listMinConfidence > 1 {
		return fmt.Errorf("--min-confidence must be between 0 and 1, got %v", listMinConfidence)
	}

	ctx := commandContext()
	store, err := openStore(ctx, settings)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summaries, err := store.ListCandidates(ctx, db.ListFilter{
		Skill:         listSkill,
		MinConfidence: listMinConfidence,
		Limit:         listLimit,
	})
	if err != nil {
		return err
	}

	if listJSON {
		return writeJSON(cmd.OutOrStdout(), "", summaries)
	}
	observability.NewPrinter(cmd.OutOrStdout()).PrintCandidateList(summaries)
	return nil
}
