// Package parsing assembles per-source candidate records from raw document text.
package parsing

import (
	"fmt"
	"strings"

	"github.com/jonathan/candidate-profiler/internal/extract"
	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/skills"
	"github.com/jonathan/candidate-profiler/internal/types"
)

// Parser turns one RawDocument into a PartialCandidateRecord.
// It holds only immutable configuration and is safe for concurrent use.
type Parser struct {
	extractors []extract.Extractor
	normalizer *skills.Normalizer
}

// NewParser creates a Parser using the default extractor set over the normalizer's vocabulary
func NewParser(normalizer *skills.Normalizer) *Parser {
	return &Parser{
		extractors: extract.Default(normalizer.Vocabulary()),
		normalizer: normalizer,
	}
}

// NewParserWithExtractors creates a Parser with a custom extractor set
func NewParserWithExtractors(normalizer *skills.Normalizer, extractors []extract.Extractor) *Parser {
	return &Parser{extractors: extractors, normalizer: normalizer}
}

// ParseDocument normalizes, extracts and builds the record for one document.
// Only undecodable text is an error; an empty document yields an empty record.
func (p *Parser) ParseDocument(doc types.RawDocument) (*types.PartialCandidateRecord, error) {
	lines, err := ingestion.NormalizeLines(doc.Text)
	if err != nil {
		return nil, err
	}
	return p.ParseLines(doc.Source, lines)
}

// ParseLines runs the extractors over already-normalized lines
func (p *Parser) ParseLines(source types.Source, lines []ingestion.Line) (*types.PartialCandidateRecord, error) {
	fields := extract.RunAll(extract.NewDocument(lines), p.extractors)
	record := BuildRecord(source, fields, p.normalizer)
	if err := postProcessRecord(record); err != nil {
		return nil, err
	}
	return record, nil
}

// BuildRecord packages extractor output into a PartialCandidateRecord. Skills are
// canonicalized here, and FieldConfidence carries exactly the fields that hold a value.
func BuildRecord(source types.Source, fields extract.Fields, normalizer *skills.Normalizer) *types.PartialCandidateRecord {
	record := types.NewPartialRecord(source)

	for _, field := range types.ScalarFields {
		value := fields.Contact.Get(field)
		if value == "" {
			value = fields.Headline.Get(field)
		}
		if value = strings.TrimSpace(value); value == "" {
			continue
		}
		record.SetScalar(field, value)
		record.FieldConfidence[field] = clamp(fields.Confidence[field])
	}

	if normalizer != nil {
		record.Skills = normalizer.Normalize(fields.Skills)
	} else {
		record.Skills = skills.Dedupe(fields.Skills)
	}
	if len(record.Skills) > 0 {
		var sum float64
		for _, s := range record.Skills {
			sum += s.Confidence
		}
		record.FieldConfidence[types.FieldSkills] = sum / float64(len(record.Skills))
	}

	if len(fields.Experience) > 0 {
		record.Experience = append(record.Experience, fields.Experience...)
		record.FieldConfidence[types.FieldExperience] = clamp(fields.Confidence[types.FieldExperience])
	}
	if len(fields.Education) > 0 {
		record.Education = append(record.Education, fields.Education...)
		record.FieldConfidence[types.FieldEducation] = clamp(fields.Confidence[types.FieldEducation])
	}

	return record
}

// postProcessRecord checks the built record against its struct constraints
func postProcessRecord(record *types.PartialCandidateRecord) error {
	if err := record.Validate(); err != nil {
		return &ValidationError{
			Field:   fmt.Sprintf("%s record", strings.ToLower(string(record.Source))),
			Message: "built record failed validation",
			Cause:   err,
		}
	}
	return nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
