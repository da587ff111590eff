// Package extract provides heuristic field extractors that turn normalized
// document lines into candidate fields with per-field confidence.
//
// Extractors never fail: a missing or ambiguous pattern lowers confidence or
// leaves the field empty.
package extract

import (
	"strings"

	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/skills"
	"github.com/jonathan/candidate-profiler/internal/types"
)

// Document is a normalized line sequence with its section structure resolved once
type Document struct {
	Lines []ingestion.Line
	// Preamble is every line before the first section header
	Preamble []ingestion.Line
	Sections []Section
}

// NewDocument splits lines into preamble and sections
func NewDocument(lines []ingestion.Line) *Document {
	preamble, sections := SplitSections(lines)
	return &Document{Lines: lines, Preamble: preamble, Sections: sections}
}

// Text joins every line with newlines
func (d *Document) Text() string {
	return strings.Join(ingestion.Texts(d.Lines), "\n")
}

// Fields is one extractor's output: the values it found and a confidence for each field it set
type Fields struct {
	Contact    types.ContactInfo
	Headline   types.Headline
	Skills     []types.SkillMention
	Experience []types.ExperienceEntry
	Education  []types.EducationEntry
	Confidence map[string]float64
}

func newFields() Fields {
	return Fields{Confidence: map[string]float64{}}
}

// Extractor is one member of the extractor capability set. Each extractor owns
// a disjoint group of fields, so extractors may run in any order.
type Extractor interface {
	Name() string
	Extract(doc *Document) Fields
}

// Default returns the contact, headline, skills, experience and education extractors
func Default(vocab *skills.Vocabulary) []Extractor {
	return []Extractor{
		ContactExtractor{},
		HeadlineExtractor{},
		NewSkillExtractor(vocab),
		ExperienceExtractor{},
		EducationExtractor{},
	}
}

// RunAll runs every extractor over doc and combines their fields
func RunAll(doc *Document, extractors []Extractor) Fields {
	out := newFields()
	out.Skills = []types.SkillMention{}
	out.Experience = []types.ExperienceEntry{}
	out.Education = []types.EducationEntry{}

	for _, ex := range extractors {
		f := ex.Extract(doc)
		for _, field := range types.ContactFields {
			if v := f.Contact.Get(field); v != "" {
				out.Contact.Set(field, v)
			}
		}
		for _, field := range types.HeadlineFields {
			if v := f.Headline.Get(field); v != "" {
				out.Headline.Set(field, v)
			}
		}
		out.Skills = append(out.Skills, f.Skills...)
		out.Experience = append(out.Experience, f.Experience...)
		out.Education = append(out.Education, f.Education...)
		for field, c := range f.Confidence {
			out.Confidence[field] = c
		}
	}
	return out
}
