package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/candidate-profiler/internal/types"
)

const (
	confidenceCurrentRole = 0.8
	confidenceSummary     = 0.8
	maxSummarySentences   = 3
)

var (
	profileURLPattern = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/in/[A-Za-z0-9_%-]+/?`)
	sentenceEnd       = regexp.MustCompile(`[.!?](?:\s+|$)`)
)

// HeadlineExtractor finds the current role, the summary paragraph and the
// candidate's own LinkedIn profile URL
type HeadlineExtractor struct{}

// Name implements Extractor
func (HeadlineExtractor) Name() string { return "headline" }

// Extract implements Extractor. The current role is the first experience
// entry still open ("- Present"); a closed history has no current role.
func (HeadlineExtractor) Extract(doc *Document) Fields {
	fields := newFields()

	urls := distinct(collect(doc.Lines, findProfileURLs), profileKey)
	setScalar(&fields, types.FieldProfileURL, urls)

	for _, section := range doc.Sections {
		switch section.Kind {
		case SectionExperience:
			if fields.Headline.CurrentPosition != "" || fields.Headline.CurrentCompany != "" {
				continue
			}
			for _, entry := range experienceEntries(section.Lines) {
				if entry.End == nil || !entry.End.Present {
					continue
				}
				if entry.Title != "" {
					fields.Headline.CurrentPosition = entry.Title
					fields.Confidence[types.FieldCurrentPosition] = confidenceCurrentRole
				}
				if entry.Organization != "" {
					fields.Headline.CurrentCompany = entry.Organization
					fields.Confidence[types.FieldCurrentCompany] = confidenceCurrentRole
				}
				break
			}
		case SectionSummary:
			if fields.Headline.Summary != "" {
				continue
			}
			if summary := summaryText(section); summary != "" {
				fields.Headline.Summary = summary
				fields.Confidence[types.FieldSummary] = confidenceSummary
			}
		}
	}
	return fields
}

func findProfileURLs(line string) []string {
	return profileURLPattern.FindAllString(line, -1)
}

func profileKey(url string) string {
	url = strings.ToLower(url)
	if i := strings.Index(url, "/in/"); i >= 0 {
		url = url[i:]
	}
	return strings.TrimRight(url, "/")
}

// summaryText joins the first paragraph of a summary section and keeps its opening sentences
func summaryText(section Section) string {
	var parts []string
	if section.Inline != "" {
		parts = append(parts, section.Inline)
	}
	for _, line := range section.Lines {
		if line.AfterGap && len(parts) > 0 {
			break
		}
		if text := stripBullet(line.Text); text != "" {
			parts = append(parts, text)
		}
	}
	text := strings.Join(parts, " ")

	ends := sentenceEnd.FindAllStringIndex(text, maxSummarySentences)
	if len(ends) == maxSummarySentences {
		text = text[:ends[maxSummarySentences-1][0]+1]
	}
	return strings.TrimSpace(text)
}
