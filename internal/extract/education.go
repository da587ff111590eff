package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/types"
)

const (
	confidenceDegree   = 0.8
	confidenceNoDegree = 0.4
)

// Degree names are matched case-sensitively; two-letter master's abbreviations
// need dots so state codes like "MA" or "MS" in an address do not match.
var degreePattern = regexp.MustCompile(`(?:^|[^\p{L}])(Bachelor(?:'s)?|Master(?:'s)?|Ph\.?D\.?|Doctor(?:ate)?|Associate(?:'s)?|B\.?S\.?c?\.?|B\.?A\.?|B\.?Eng\.?|M\.S\.?|M\.Sc\.?|MSc|M\.A\.?|M\.?Eng\.?|MBA|Diploma)(?:$|[^\p{L}])`)

var (
	degreeSegmentSplit = regexp.MustCompile(`\s*[,|]\s*|\s+[–—-]\s+|\s+at\s+`)
	educationNoise     = regexp.MustCompile(`(?i)^(?:gpa|grade|honou?rs|relevant coursework|coursework|thesis)\b`)
)

// EducationExtractor segments Education sections into degree entries
type EducationExtractor struct{}

// Name implements Extractor
func (EducationExtractor) Name() string { return "education" }

// Extract implements Extractor
func (EducationExtractor) Extract(doc *Document) Fields {
	fields := newFields()
	for _, section := range doc.Sections {
		if section.Kind != SectionEducation {
			continue
		}
		lines := section.Lines
		if section.Inline != "" {
			lines = append([]ingestion.Line{{Text: section.Inline}}, lines...)
		}
		fields.Education = append(fields.Education, educationEntries(lines)...)
	}
	if len(fields.Education) > 0 {
		var sum float64
		for _, e := range fields.Education {
			sum += e.Confidence
		}
		fields.Confidence[types.FieldEducation] = sum / float64(len(fields.Education))
	}
	return fields
}

// MatchDegree splits a line into the degree segment and the remaining institution text
func MatchDegree(line string) (degree, institution string, ok bool) {
	if !degreePattern.MatchString(line) {
		return "", "", false
	}

	var rest []string
	for _, seg := range degreeSegmentSplit.Split(line, -1) {
		seg = trimSeparators(seg)
		if seg == "" {
			continue
		}
		if degree == "" && degreePattern.MatchString(seg) {
			degree = stripYears(seg)
			continue
		}
		if s := trimSeparators(stripYears(seg)); s != "" {
			rest = append(rest, s)
		}
	}
	return degree, strings.Join(rest, ", "), true
}

func educationEntries(lines []ingestion.Line) []types.EducationEntry {
	var entries []types.EducationEntry
	var cur *types.EducationEntry

	flush := func() {
		if cur == nil {
			return
		}
		cur.Confidence = confidenceNoDegree
		if cur.Degree != "" {
			cur.Confidence = confidenceDegree
		}
		if cur.Degree != "" || cur.Institution != "" || cur.Year != 0 {
			entries = append(entries, *cur)
		}
		cur = nil
	}

	for _, line := range lines {
		text := stripBullet(line.Text)
		if text == "" || educationNoise.MatchString(text) {
			continue
		}

		if degree, institution, ok := MatchDegree(text); ok {
			// A degree line opens a new entry unless the current one has an institution waiting for its degree
			if cur != nil && (cur.Degree != "" || line.AfterGap) {
				flush()
			}
			if cur == nil {
				cur = &types.EducationEntry{}
			}
			cur.Degree = degree
			if cur.Institution == "" {
				cur.Institution = institution
			}
		} else if trimSeparators(stripYears(text)) == "" {
			// A date-only line dates the current entry
			if cur != nil && cur.Year == 0 {
				cur.Year = FirstYear(text)
			}
			continue
		} else {
			// A new paragraph, or a new school after a complete entry, starts over
			if cur != nil && (line.AfterGap || (cur.Degree != "" && cur.Institution != "")) {
				flush()
			}
			if cur == nil {
				cur = &types.EducationEntry{}
			}
			if cur.Institution == "" {
				cur.Institution = trimSeparators(stripYears(text))
			}
		}

		if cur.Year == 0 {
			cur.Year = FirstYear(text)
		}
	}
	flush()
	return entries
}
