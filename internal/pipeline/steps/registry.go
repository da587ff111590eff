// Package steps defines the stages of a candidate run and the order they depend on.
package steps

import (
	"fmt"
	"sort"
)

// Step names reported in progress events
const (
	IngestResume    = "ingest_resume"
	IngestLinkedIn  = "ingest_linkedin"
	ExtractResume   = "extract_resume"
	ExtractLinkedIn = "extract_linkedin"
	Merge           = "merge"
	Score           = "score"
)

// Step categories
const (
	CategoryIngestion  = "ingestion"
	CategoryExtraction = "extraction"
	CategoryMerge      = "merge"
	CategoryScoring    = "scoring"
)

// StepDefinition defines metadata for a pipeline step
type StepDefinition struct {
	Name         string
	Category     string
	Dependencies []string
}

// StepRegistry holds all step definitions
var StepRegistry = map[string]StepDefinition{
	IngestResume: {
		Name:     IngestResume,
		Category: CategoryIngestion,
	},
	IngestLinkedIn: {
		Name:     IngestLinkedIn,
		Category: CategoryIngestion,
	},
	ExtractResume: {
		Name:         ExtractResume,
		Category:     CategoryExtraction,
		Dependencies: []string{IngestResume},
	},
	ExtractLinkedIn: {
		Name:         ExtractLinkedIn,
		Category:     CategoryExtraction,
		Dependencies: []string{IngestLinkedIn},
	},
	Merge: {
		Name:         Merge,
		Category:     CategoryMerge,
		Dependencies: []string{ExtractResume, ExtractLinkedIn},
	},
	Score: {
		Name:         Score,
		Category:     CategoryScoring,
		Dependencies: []string{Merge},
	},
}

// DependencyError represents a dependency validation error
type DependencyError struct {
	Step                string
	MissingDependencies []string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("step %s: missing dependencies: %v", e.Step, e.MissingDependencies)
}

// Category returns the category of a registered step, or "" for unknown steps
func Category(stepName string) string {
	return StepRegistry[stepName].Category
}

// ValidateDependencies checks that every dependency of stepName is in completed
func ValidateDependencies(completed map[string]bool, stepName string) error {
	def, ok := StepRegistry[stepName]
	if !ok {
		return fmt.Errorf("unknown step: %s", stepName)
	}

	var missing []string
	for _, dep := range def.Dependencies {
		if !completed[dep] {
			missing = append(missing, dep)
		}
	}

	if len(missing) > 0 {
		return &DependencyError{
			Step:                stepName,
			MissingDependencies: missing,
		}
	}
	return nil
}

// GetAvailableSteps returns the steps not yet completed whose dependencies are met, sorted by name
func GetAvailableSteps(completed map[string]bool) []string {
	var available []string
	for stepName := range StepRegistry {
		if completed[stepName] {
			continue
		}
		if err := ValidateDependencies(completed, stepName); err != nil {
			continue
		}
		available = append(available, stepName)
	}
	sort.Strings(available)
	return available
}

// GetBlockedSteps returns the steps not yet completed whose dependencies are unmet, sorted by name
func GetBlockedSteps(completed map[string]bool) []string {
	var blocked []string
	for stepName := range StepRegistry {
		if completed[stepName] {
			continue
		}
		if err := ValidateDependencies(completed, stepName); err != nil {
			blocked = append(blocked, stepName)
		}
	}
	sort.Strings(blocked)
	return blocked
}
