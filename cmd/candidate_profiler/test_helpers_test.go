package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jonathan/candidate-profiler/internal/config"
)

// getBinaryPath returns the path to the candidate_profiler binary for testing
func getBinaryPath(t *testing.T) string {
	binaryName := "candidate_profiler"
	if testing.Short() {
		t.Skip("Skipping CLI tests in short mode")
	}

	binaryPath := filepath.Join("..", "..", "bin", binaryName)
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		t.Skipf("Binary not found at %s, build it first with 'go build -o bin/candidate_profiler ./cmd/candidate_profiler'", binaryPath)
	}

	return binaryPath
}

// resetFlags restores every flag to its default so in-process runs do not leak state
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command in-process and returns stdout, stderr and the error
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	settings = config.Config{}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

const testResume = `Jane Doe
jane.doe@example.com | (555) 123-4567 | San Francisco, CA

Skills
Go, Python, JS, Kubernetes

Experience
Senior Engineer, Acme Corp
Jan 2019 - Present
- Built payment services in Go

Education
Bachelor of Science in Computer Science, Stanford University, 2016
`

const testProfile = `{
  "name": "Jane Doe",
  "location": "Oakland, CA",
  "skills": ["golang", "Docker"],
  "experience": [
    {"title": "Staff Engineer", "company": "Acme Corp", "duration": "Jan 2019 - Present"},
    {"title": "Developer", "company": "Gamma LLC", "duration": "2014 - 2016"}
  ]
}`
