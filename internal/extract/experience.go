package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/types"
)

const (
	confidenceDated   = 0.8
	confidenceUndated = 0.4

	maxHeadingLines = 2
	// Undated paragraphs with this many words read as prose, not a job heading
	proseWordCount = 9
)

// Separators between a title and an organization written on one line
var titleOrgSplit = regexp.MustCompile(`\s+(?:at|@)\s+|\s+[|–—-]\s+|\s*,\s+`)

// ExperienceExtractor segments Experience sections into job entries
type ExperienceExtractor struct{}

// Name implements Extractor
func (ExperienceExtractor) Name() string { return "experience" }

// Extract implements Extractor
func (ExperienceExtractor) Extract(doc *Document) Fields {
	fields := newFields()
	for _, section := range doc.Sections {
		if section.Kind != SectionExperience {
			continue
		}
		fields.Experience = append(fields.Experience, experienceEntries(section.Lines)...)
	}
	if len(fields.Experience) > 0 {
		var sum float64
		for _, e := range fields.Experience {
			sum += e.Confidence
		}
		fields.Confidence[types.FieldExperience] = sum / float64(len(fields.Experience))
	}
	return fields
}

type entryDraft struct {
	headings    []string
	dates       DateRange
	dated       bool
	description []string
}

func (d *entryDraft) build() types.ExperienceEntry {
	entry := types.ExperienceEntry{
		Description: strings.Join(d.description, "\n"),
		Confidence:  confidenceUndated,
	}
	if d.dated {
		entry.Start = d.dates.Start
		entry.End = d.dates.End
		entry.Confidence = confidenceDated
	}

	switch {
	case len(d.headings) == 0:
	case len(d.headings) == 1:
		entry.Title, entry.Organization = splitTitleOrg(d.headings[0])
	default:
		if title, org := splitTitleOrg(d.headings[0]); org != "" {
			entry.Title, entry.Organization = title, org
		} else {
			entry.Title, entry.Organization = d.headings[0], d.headings[1]
		}
	}
	return entry
}

// experienceEntries walks gap-separated blocks. A date-range line starts an entry and
// claims up to two heading lines written just above it.
func experienceEntries(lines []ingestion.Line) []types.ExperienceEntry {
	var drafts []*entryDraft
	last := func() *entryDraft {
		if len(drafts) == 0 {
			return nil
		}
		return drafts[len(drafts)-1]
	}

	for _, block := range blocks(lines) {
		texts := ingestion.Texts(block)

		var dateLines []int
		for i, text := range texts {
			if _, _, ok := FindDateRange(text); ok {
				dateLines = append(dateLines, i)
			}
		}

		if len(dateLines) == 0 {
			prev := last()
			if prev != nil && (allBullets(texts) || readsAsProse(texts)) {
				prev.description = append(prev.description, stripBullets(texts)...)
				continue
			}
			draft := &entryDraft{}
			for _, text := range texts {
				if !isBullet(text) && len(draft.headings) < maxHeadingLines && len(draft.description) == 0 {
					draft.headings = append(draft.headings, text)
				} else {
					draft.description = append(draft.description, stripBullet(text))
				}
			}
			drafts = append(drafts, draft)
			continue
		}

		cursor := 0
		for k, dateIdx := range dateLines {
			headStart := headingStart(texts, cursor, dateIdx)

			// Lines between the previous entry (or block start) and this heading continue the previous entry
			if headStart > cursor {
				leftover := stripBullets(texts[cursor:headStart])
				if prev := last(); prev != nil {
					prev.description = append(prev.description, leftover...)
				} else {
					drafts = append(drafts, &entryDraft{description: leftover})
				}
			}

			dates, rest, _ := FindDateRange(texts[dateIdx])
			draft := &entryDraft{dates: dates, dated: true}
			draft.headings = append(draft.headings, texts[headStart:dateIdx]...)
			if rest = trimSeparators(rest); rest != "" {
				draft.headings = append(draft.headings, rest)
			}

			end := len(texts)
			if k+1 < len(dateLines) {
				end = headingStart(texts, dateIdx+1, dateLines[k+1])
			}
			draft.description = stripBullets(texts[dateIdx+1 : end])
			drafts = append(drafts, draft)
			cursor = end
		}
	}

	entries := make([]types.ExperienceEntry, 0, len(drafts))
	for _, d := range drafts {
		entries = append(entries, d.build())
	}
	return entries
}

// headingStart returns where the heading of the entry dated at dateIdx begins:
// at most two non-bullet lines directly above it, not before floor.
func headingStart(texts []string, floor, dateIdx int) int {
	start := dateIdx
	for start > floor && dateIdx-start < maxHeadingLines && !isBullet(texts[start-1]) {
		start--
	}
	return start
}

func splitTitleOrg(heading string) (string, string) {
	parts := titleOrgSplit.Split(heading, 2)
	if len(parts) == 2 {
		title, org := trimSeparators(parts[0]), trimSeparators(parts[1])
		if title != "" && org != "" {
			return title, org
		}
	}
	return trimSeparators(heading), ""
}

func allBullets(texts []string) bool {
	for _, t := range texts {
		if !isBullet(t) {
			return false
		}
	}
	return true
}

func readsAsProse(texts []string) bool {
	first := texts[0]
	return strings.HasSuffix(first, ".") || len(strings.Fields(first)) >= proseWordCount
}

func stripBullets(texts []string) []string {
	out := make([]string, 0, len(texts))
	for _, t := range texts {
		if s := stripBullet(t); s != "" {
			out = append(out, s)
		}
	}
	return out
}
