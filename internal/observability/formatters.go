// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/candidate-profiler/internal/db"
	"github.com/jonathan/candidate-profiler/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to a terminal; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	inner := boxWidth - 4
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %s │\n", pad(title, inner))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %s │\n", pad(truncate(line, inner), inner))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most width runes
func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-3]) + "..."
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

const maxSummaryWidth = 60

var scalarLabels = map[string]string{
	types.FieldName:            "Name:",
	types.FieldEmail:           "Email:",
	types.FieldPhone:           "Phone:",
	types.FieldLocation:        "Location:",
	types.FieldCurrentPosition: "Position:",
	types.FieldCurrentCompany:  "Company:",
	types.FieldSummary:         "Summary:",
	types.FieldProfileURL:      "Profile:",
}

// writeScalars writes the non-empty scalar fields with their confidence and, when known, provenance
func writeScalars(sb *strings.Builder, get func(string) string, confidence map[string]float64, provenance map[string]types.Provenance) {
	for _, field := range types.ScalarFields {
		value := get(field)
		if value == "" {
			continue
		}
		if field == types.FieldSummary {
			value = truncate(value, maxSummaryWidth)
		}
		sb.WriteString(fmt.Sprintf("%-10s%s (%.2f", scalarLabels[field], value, confidence[field]))
		if prov, ok := provenance[field]; ok {
			sb.WriteString(", " + string(prov))
		}
		sb.WriteString(")\n")
	}
}

func writeSkills(sb *strings.Builder, skills []types.SkillMention) {
	if len(skills) == 0 {
		return
	}
	names := make([]string, len(skills))
	for i, s := range skills {
		names[i] = s.Name()
	}
	sb.WriteString(fmt.Sprintf("\nSkills (%d):\n", len(skills)))
	count := min(len(names), maxItemsToShow*2)
	sb.WriteString("  " + strings.Join(names[:count], ", ") + "\n")
	if len(names) > count {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(names)-count))
	}
}

func writeExperience(sb *strings.Builder, entries []types.ExperienceEntry) {
	if len(entries) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\nExperience (%d):\n", len(entries)))
	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := entries[i]
		sb.WriteString(fmt.Sprintf("  • %s", e.Title))
		if e.Organization != "" {
			sb.WriteString(" @ " + e.Organization)
		}
		if e.Start != nil || e.End != nil {
			sb.WriteString(fmt.Sprintf(" [%s – %s]", dateString(e.Start), dateString(e.End)))
		}
		sb.WriteString("\n")
	}
	if len(entries) > count {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(entries)-count))
	}
}

func writeEducation(sb *strings.Builder, entries []types.EducationEntry) {
	if len(entries) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\nEducation (%d):\n", len(entries)))
	count := min(len(entries), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := entries[i]
		parts := []string{}
		for _, s := range []string{e.Degree, e.Institution} {
			if s != "" {
				parts = append(parts, s)
			}
		}
		if e.Year > 0 {
			parts = append(parts, fmt.Sprintf("%d", e.Year))
		}
		sb.WriteString("  • " + strings.Join(parts, ", ") + "\n")
	}
	if len(entries) > count {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(entries)-count))
	}
}

func dateString(d *types.PartialDate) string {
	if d == nil {
		return "?"
	}
	return d.String()
}

// PrintPartialRecord outputs what was extracted from one source document.
func (p *Printer) PrintPartialRecord(record *types.PartialCandidateRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	if record.Placeholder {
		sb.WriteString("(placeholder: source unavailable)\n")
	}
	if record.IsEmpty() {
		sb.WriteString("No fields extracted\n")
	}
	writeScalars(&sb, record.Scalar, record.FieldConfidence, nil)
	writeSkills(&sb, record.Skills)
	writeExperience(&sb, record.Experience)
	writeEducation(&sb, record.Education)

	p.printBox(fmt.Sprintf("EXTRACTED FROM %s", record.Source), strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidateRecord outputs the merged record with provenance and the overall score.
func (p *Printer) PrintCandidateRecord(record *types.CandidateRecord) {
	if record == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Overall confidence: %.2f\n", record.OverallConfidence))
	if record.ExperienceYears > 0 {
		sb.WriteString(fmt.Sprintf("Experience years:   %d\n", record.ExperienceYears))
	}
	sb.WriteString("\n")
	writeScalars(&sb, record.Scalar, record.FieldConfidence, record.Provenance)
	writeSkills(&sb, record.Skills)
	writeExperience(&sb, record.Experience)
	writeEducation(&sb, record.Education)

	lists := make([]string, 0, len(types.ListFields))
	for _, field := range types.ListFields {
		if prov, ok := record.Provenance[field]; ok && record.HasValue(field) {
			lists = append(lists, fmt.Sprintf("%s=%s", field, prov))
		}
	}
	sort.Strings(lists)
	if len(lists) > 0 {
		sb.WriteString("\nSources:\n  " + strings.Join(lists, " ") + "\n")
	}

	p.printBox("MERGED CANDIDATE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintConflicts outputs the fields where both sources disagreed with equal confidence.
func (p *Printer) PrintConflicts(conflicts []types.Conflict) {
	if len(conflicts) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Total conflicts: %d\n", len(conflicts)))
	for _, c := range conflicts {
		sb.WriteString(fmt.Sprintf("\n%s (kept %s)\n", strings.ToUpper(c.Field), c.Chosen))
		sb.WriteString(fmt.Sprintf("  resume:   %s\n", c.ResumeValue))
		sb.WriteString(fmt.Sprintf("  linkedin: %s\n", c.LinkedInValue))
	}

	p.printBox("MERGE CONFLICTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCandidateList outputs stored candidates, one per line.
func (p *Printer) PrintCandidateList(summaries []db.CandidateSummary) {
	if len(summaries) == 0 {
		p.printBox("STORED CANDIDATES", "No candidates found")
		return
	}

	var sb strings.Builder
	for _, s := range summaries {
		name := s.Name
		if name == "" {
			name = "(unnamed)"
		}
		sb.WriteString(fmt.Sprintf("%s  %.2f  %s\n", s.ID.String()[:8], s.OverallConfidence, name))
	}
	p.printBox(fmt.Sprintf("STORED CANDIDATES (%d)", len(summaries)), strings.TrimSuffix(sb.String(), "\n"))
}
