package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/candidate-profiler/internal/ingestion"
)

// SectionKind classifies a resume section by its header
type SectionKind string

const (
	SectionSkills     SectionKind = "skills"
	SectionExperience SectionKind = "experience"
	SectionEducation  SectionKind = "education"
	SectionSummary    SectionKind = "summary"
	SectionOther      SectionKind = "other"
)

// Section is a header line and the lines under it, up to the next header
type Section struct {
	Kind   SectionKind
	Header string
	// Inline holds text after "Header:" on the header line itself
	Inline string
	Lines  []ingestion.Line
}

var sectionHeaders = map[string]SectionKind{
	"skills":                  SectionSkills,
	"technical skills":        SectionSkills,
	"key skills":              SectionSkills,
	"core competencies":       SectionSkills,
	"skills & tools":          SectionSkills,
	"skills and tools":        SectionSkills,
	"technologies":            SectionSkills,
	"tools & technologies":    SectionSkills,
	"experience":              SectionExperience,
	"work experience":         SectionExperience,
	"professional experience": SectionExperience,
	"work history":            SectionExperience,
	"employment":              SectionExperience,
	"employment history":      SectionExperience,
	"career history":          SectionExperience,
	"education":               SectionEducation,
	"academic background":     SectionEducation,
	"education & training":    SectionEducation,
	"summary":                 SectionSummary,
	"professional summary":    SectionSummary,
	"profile":                 SectionSummary,
	"about":                   SectionSummary,
	"objective":               SectionSummary,
	"projects":                SectionOther,
	"certifications":          SectionOther,
	"awards":                  SectionOther,
	"publications":            SectionOther,
	"interests":               SectionOther,
	"volunteer":               SectionOther,
	"volunteer experience":    SectionOther,
	"references":              SectionOther,
}

// A header is a known title alone on its line, optionally followed by ":" and inline content
var sectionHeaderPattern = regexp.MustCompile(`^([A-Za-z][A-Za-z &]{1,40}?)\s*(?::\s*(.*))?$`)

// MatchHeader reports whether a line is a section header, returning its kind and any inline content
func MatchHeader(line string) (SectionKind, string, bool) {
	m := sectionHeaderPattern.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return "", "", false
	}
	title := strings.ToLower(strings.Join(strings.Fields(m[1]), " "))
	kind, ok := sectionHeaders[title]
	if !ok {
		return "", "", false
	}
	return kind, strings.TrimSpace(m[2]), true
}

// SplitSections separates the lines before the first header (the preamble, where
// contact details usually live) from the headed sections that follow.
func SplitSections(lines []ingestion.Line) ([]ingestion.Line, []Section) {
	var preamble []ingestion.Line
	var sections []Section
	var current *Section

	for _, line := range lines {
		if kind, inline, ok := MatchHeader(line.Text); ok {
			if current != nil {
				sections = append(sections, *current)
			}
			current = &Section{Kind: kind, Header: line.Text, Inline: inline}
			continue
		}
		if current == nil {
			preamble = append(preamble, line)
			continue
		}
		// The first line of a section is never treated as following a gap
		if len(current.Lines) == 0 {
			line.AfterGap = false
		}
		current.Lines = append(current.Lines, line)
	}
	if current != nil {
		sections = append(sections, *current)
	}
	return preamble, sections
}

// blocks splits lines into gap-separated paragraphs
func blocks(lines []ingestion.Line) [][]ingestion.Line {
	var out [][]ingestion.Line
	for _, line := range lines {
		if line.AfterGap || len(out) == 0 {
			out = append(out, nil)
		}
		out[len(out)-1] = append(out[len(out)-1], line)
	}
	return out
}

var bulletPrefix = regexp.MustCompile(`^[-*•·▪‣◦●■►]\s*`)

func isBullet(line string) bool {
	return bulletPrefix.MatchString(line)
}

func stripBullet(line string) string {
	return strings.TrimSpace(bulletPrefix.ReplaceAllString(line, ""))
}

// trimSeparators removes punctuation left at the edges after cutting a date or keyword out of a line
func trimSeparators(s string) string {
	return strings.Trim(s, " ,;:|()[]-–—@")
}
