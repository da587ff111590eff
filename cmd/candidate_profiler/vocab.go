package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jonathan/candidate-profiler/internal/config"
	"github.com/jonathan/candidate-profiler/internal/skills"
)

var vocabCmd = &cobra.Command{
	Use:   "vocab",
	Short: "Validate a skill vocabulary and print its contents",
	Long: `Load a skill vocabulary file (YAML, TOML or JSON), report any validation error,
and print each canonical skill with its aliases. Without --in, the configured or
built-in vocabulary is shown.`,
	RunE: runVocab,
}

var (
	vocabInputFile string
	vocabResolve   []string
)

func init() {
	vocabCmd.Flags().StringVarP(&vocabInputFile, "in", "i", "", "Path to vocabulary file")
	vocabCmd.Flags().StringSliceVar(&vocabResolve, "resolve", nil, "Skill mentions to resolve against the vocabulary")

	rootCmd.AddCommand(vocabCmd)
}

func runVocab(cmd *cobra.Command, _ []string) error {
	cfg := settings
	if vocabInputFile != "" {
		cfg = config.Config{Vocabulary: vocabInputFile}
	}
	vocab, err := loadVocabulary(cfg)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	entries := vocab.Entries()
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	fmt.Fprintf(out, "%d skills, %d terms\n", vocab.Len(), len(vocab.Terms()))
	for _, e := range entries {
		fmt.Fprintf(out, "  %s", e.Name)
		if len(e.Aliases) > 0 {
			fmt.Fprintf(out, " (%v)", e.Aliases)
		}
		fmt.Fprintln(out)
	}

	if len(vocabResolve) > 0 {
		normalizer := skills.NewNormalizer(vocab, skills.WithFuzzyThreshold(settings.FuzzyThreshold))
		fmt.Fprintln(out, "Resolved:")
		for _, raw := range vocabResolve {
			res := normalizer.Resolve(raw)
			if !res.Resolved() {
				fmt.Fprintf(out, "  %s -> (unresolved)\n", raw)
				continue
			}
			fmt.Fprintf(out, "  %s -> %s (%.2f)\n", raw, res.Canonical, res.Similarity)
		}
	}
	return nil
}
