package schemas

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-profiler/internal/merge"
	"github.com/jonathan/candidate-profiler/internal/types"
	schemafiles "github.com/jonathan/candidate-profiler/schemas"
)

const personSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["name"],
	"properties": {
		"name": {"type": "string"},
		"age": {"type": "integer"}
	}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func sampleRecord() *types.CandidateRecord {
	resume := types.NewPartialRecord(types.SourceResume)
	resume.Contact = types.ContactInfo{Name: "Jane Doe", Location: "San Francisco, CA"}
	resume.FieldConfidence[types.FieldName] = 1
	resume.FieldConfidence[types.FieldLocation] = 1
	resume.Skills = []types.SkillMention{{RawText: "golang", CanonicalName: "Go", Confidence: 1}}
	resume.FieldConfidence[types.FieldSkills] = 1
	resume.Experience = []types.ExperienceEntry{{
		Title:        "Engineer",
		Organization: "Acme Corp",
		Start:        &types.PartialDate{Year: 2019, Month: 1},
		End:          types.PresentDate(),
		Confidence:   0.8,
	}}
	resume.FieldConfidence[types.FieldExperience] = 0.8
	resume.Headline = types.Headline{CurrentPosition: "Engineer", CurrentCompany: "Acme Corp"}
	resume.FieldConfidence[types.FieldCurrentPosition] = 0.8
	resume.FieldConfidence[types.FieldCurrentCompany] = 0.8

	linkedin := types.NewPartialRecord(types.SourceLinkedIn)
	linkedin.Contact = types.ContactInfo{Name: "Jane Doe", Location: "Oakland, CA"}
	linkedin.FieldConfidence[types.FieldName] = 1
	linkedin.FieldConfidence[types.FieldLocation] = 1
	linkedin.Education = []types.EducationEntry{{Degree: "BS", Institution: "Stanford University", Year: 2016, Confidence: 0.8}}
	linkedin.FieldConfidence[types.FieldEducation] = 0.8
	linkedin.Headline.ProfileURL = "https://www.linkedin.com/in/jane-doe"
	linkedin.FieldConfidence[types.FieldProfileURL] = 1

	return merge.Merge(resume, linkedin)
}

func TestValidateJSON_Files(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "person.schema.json", personSchema)

	tests := []struct {
		name      string
		content   string
		wantError bool
	}{
		{"valid", `{"name": "Jane"}`, false},
		{"missing required field", `{"age": 30}`, true},
		{"wrong type", `{"name": "Jane", "age": "thirty"}`, true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jsonPath := writeFile(t, dir, fmt.Sprintf("doc%d.json", i), tt.content)
			err := ValidateJSON(schemaPath, jsonPath)
			if !tt.wantError {
				assert.NoError(t, err)
				return
			}
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidateJSON_MissingFiles(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "person.schema.json", personSchema)
	jsonPath := writeFile(t, dir, "person.json", `{"name": "Jane"}`)

	err := ValidateJSON(filepath.Join(dir, "nonexistent_schema.json"), jsonPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	err = ValidateJSON(schemaPath, filepath.Join(dir, "nonexistent.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestValidateJSON_MalformedJSON(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "person.schema.json", personSchema)
	malformed := writeFile(t, dir, "malformed.json", "{ invalid json }")

	assert.Error(t, ValidateJSON(schemaPath, malformed))
}

func TestValidateJSONString(t *testing.T) {
	assert.NoError(t, ValidateJSONString(personSchema, `{"name": "test"}`))

	err := ValidateJSONString(personSchema, `{"age": 30}`)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "(root)", validationErr.Errors[0].Field)

	err = ValidateJSONString(`{"type": 12}`, `{}`)
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{
		Errors: []FieldError{
			{Field: "name", Message: "is required"},
			{Field: "age", Message: "must be a number"},
		},
	}

	errorMsg := err.Error()
	assert.Contains(t, errorMsg, "validation failed")
	assert.Contains(t, errorMsg, "1. name")
	assert.Contains(t, errorMsg, "2. age")
}

func TestSchema_CompilesEmbedded(t *testing.T) {
	for _, name := range []string{schemafiles.CandidateRecord, schemafiles.PartialRecord} {
		schema, err := Schema(name)
		require.NoError(t, err, name)
		assert.NotNil(t, schema)
	}

	_, err := Schema("nope.schema.json")
	var loadErr *SchemaLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestValidateCandidateRecord(t *testing.T) {
	record := sampleRecord()
	require.Len(t, record.Conflicts, 1)
	assert.Equal(t, "Engineer", record.Headline.CurrentPosition)
	assert.Equal(t, types.ProvenanceLinkedIn, record.Provenance[types.FieldProfileURL])
	assert.Equal(t, types.ProvenanceResume, record.Provenance[types.FieldSummary])
	assert.NoError(t, ValidateCandidateRecord(record))

	empty := merge.Merge(nil, nil)
	assert.NoError(t, ValidateCandidateRecord(empty))
}

func TestValidateCandidateRecord_Violations(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *types.CandidateRecord)
	}{
		{"confidence above one", func(r *types.CandidateRecord) { r.OverallConfidence = 1.5 }},
		{"unknown field key", func(r *types.CandidateRecord) { r.FieldConfidence["salary"] = 0.5 }},
		{"unknown provenance", func(r *types.CandidateRecord) { r.Provenance[types.FieldName] = "CRAWLER" }},
		{"empty skill text", func(r *types.CandidateRecord) { r.Skills[0].RawText = "" }},
		{"conflict on list field", func(r *types.CandidateRecord) { r.Conflicts[0].Field = types.FieldSkills }},
		{"education year out of range", func(r *types.CandidateRecord) { r.Education[0].Year = 1800 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := sampleRecord()
			tt.mutate(record)

			err := ValidateCandidateRecord(record)
			var validationErr *ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.NotEmpty(t, validationErr.Errors)
		})
	}
}

func TestValidatePartialRecord(t *testing.T) {
	record := types.NewPartialRecord(types.SourceLinkedIn)
	record.Placeholder = true
	assert.NoError(t, ValidatePartialRecord(record))

	record.Source = "CRAWLER"
	assert.Error(t, ValidatePartialRecord(record))
}

func TestValidateDocument_NullLists(t *testing.T) {
	content, err := json.Marshal(map[string]any{
		"contact":            map[string]any{},
		"skills":             nil,
		"experience":         []any{},
		"education":          []any{},
		"field_confidence":   map[string]any{},
		"provenance":         map[string]any{},
		"overall_confidence": 0,
		"conflicts":          []any{},
	})
	require.NoError(t, err)

	assert.Error(t, ValidateDocument(schemafiles.CandidateRecord, content))
}
