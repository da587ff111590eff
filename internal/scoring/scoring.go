// Package scoring rates the extraction quality of merged candidate records.
package scoring

import (
	"time"

	"github.com/jonathan/candidate-profiler/internal/types"
)

// AllFields is every field that can enter the overall confidence, in a fixed order
var AllFields = append(append([]string{}, types.ScalarFields...), types.ListFields...)

// Overall is the unweighted mean confidence of the fields that carry a value.
// A record with no values scores 0.
func Overall(record *types.CandidateRecord) float64 {
	if record == nil {
		return 0
	}
	var sum float64
	n := 0
	for _, field := range AllFields {
		if !record.HasValue(field) {
			continue
		}
		sum += record.FieldConfidence[field]
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// NeedsReview reports whether a record should be shown to a human: the overall
// score is below threshold or the merge left conflicts
func NeedsReview(record *types.CandidateRecord, threshold float64) bool {
	return record.OverallConfidence < threshold || len(record.Conflicts) > 0
}

// ExperienceYears sums the span of every dated entry in whole years, resolving
// "present" against asOf. Entries without a start date or ending before they start are skipped.
func ExperienceYears(entries []types.ExperienceEntry, asOf time.Time) int {
	now := asOf.Year()*12 + int(asOf.Month()) - 1
	months := 0
	for _, entry := range entries {
		if entry.Start == nil || entry.Start.Present {
			continue
		}
		start := entry.Start.MonthIndex(false)

		end := start
		switch {
		case entry.End == nil:
		case entry.End.Present:
			end = now
		default:
			end = entry.End.MonthIndex(true)
		}
		if end > now {
			end = now
		}
		if end < start {
			continue
		}
		months += end - start + 1
	}
	return months / 12
}
