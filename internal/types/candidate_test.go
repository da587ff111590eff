package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartialDate_String(t *testing.T) {
	tests := []struct {
		date     PartialDate
		expected string
	}{
		{PartialDate{Year: 2019}, "2019"},
		{PartialDate{Year: 2019, Month: 3}, "2019-03"},
		{PartialDate{Present: true}, "present"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.date.String())

			parsed, err := ParsePartialDate(tt.expected)
			require.NoError(t, err)
			assert.Equal(t, tt.date, parsed)
		})
	}
}

func TestParsePartialDate_Invalid(t *testing.T) {
	for _, s := range []string{"", "19", "2019-13", "2019-00", "March 2019", "20199"} {
		t.Run(s, func(t *testing.T) {
			_, err := ParsePartialDate(s)
			assert.Error(t, err)
		})
	}
}

func TestPartialDate_JSON(t *testing.T) {
	entry := ExperienceEntry{
		Title: "Engineer",
		Start: &PartialDate{Year: 2019, Month: 1},
		End:   PresentDate(),
	}

	data, err := json.Marshal(entry)
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Engineer","start":"2019-01","end":"present","confidence":0}`, string(data))

	var decoded ExperienceEntry
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, entry, decoded)

	assert.Error(t, json.Unmarshal([]byte(`{"start":"soon"}`), &decoded))
	assert.Error(t, json.Unmarshal([]byte(`{"start":2019}`), &decoded))
}

func TestPartialDate_MonthIndex(t *testing.T) {
	year := PartialDate{Year: 2020}
	assert.Equal(t, 2020*12, year.MonthIndex(false))
	assert.Equal(t, 2020*12+11, year.MonthIndex(true))
	assert.Equal(t, 2020*12+4, PartialDate{Year: 2020, Month: 5}.MonthIndex(true))
	assert.Greater(t, PresentDate().MonthIndex(false), PartialDate{Year: 9999, Month: 12}.MonthIndex(true))
}

func TestContactInfo_GetSet(t *testing.T) {
	var c ContactInfo
	for i, field := range ContactFields {
		c.Set(field, string(rune('a'+i)))
	}
	assert.Equal(t, ContactInfo{Name: "a", Email: "b", Phone: "c", Location: "d"}, c)
	for i, field := range ContactFields {
		assert.Equal(t, string(rune('a'+i)), c.Get(field))
	}

	c.Set(FieldSkills, "ignored")
	c.Set(FieldSummary, "ignored")
	assert.Empty(t, c.Get(FieldSkills))
	assert.Equal(t, ContactInfo{Name: "a", Email: "b", Phone: "c", Location: "d"}, c)
}

func TestHeadline_GetSet(t *testing.T) {
	var h Headline
	for i, field := range HeadlineFields {
		h.Set(field, string(rune('a'+i)))
	}
	assert.Equal(t, Headline{CurrentPosition: "a", CurrentCompany: "b", Summary: "c", ProfileURL: "d"}, h)

	h.Set(FieldName, "ignored")
	assert.Empty(t, h.Get(FieldName))
}

func TestCandidateRecord_Scalar(t *testing.T) {
	record := &CandidateRecord{}
	for _, field := range ScalarFields {
		assert.False(t, record.HasValue(field), field)
		record.SetScalar(field, field+"-value")
	}
	assert.Equal(t, "name-value", record.Contact.Name)
	assert.Equal(t, "current_company-value", record.Headline.CurrentCompany)
	for _, field := range ScalarFields {
		assert.Equal(t, field+"-value", record.Scalar(field))
		assert.True(t, record.HasValue(field), field)
	}
}

func TestSkillMention_Name(t *testing.T) {
	assert.Equal(t, "Go", SkillMention{RawText: "golang", CanonicalName: "Go"}.Name())
	assert.Equal(t, "Haskell", SkillMention{RawText: "Haskell"}.Name())
}

func TestSourceAndProvenance(t *testing.T) {
	assert.True(t, SourceResume.Valid())
	assert.True(t, SourceLinkedIn.Valid())
	assert.False(t, Source("CRAWLER").Valid())

	assert.Equal(t, ProvenanceResume, ProvenanceOf(SourceResume))
	assert.Equal(t, ProvenanceLinkedIn, ProvenanceOf(SourceLinkedIn))
}

func TestPartialCandidateRecord(t *testing.T) {
	var nilRecord *PartialCandidateRecord
	assert.True(t, nilRecord.IsEmpty())
	assert.Zero(t, nilRecord.Confidence(FieldName))

	record := NewPartialRecord(SourceResume)
	assert.True(t, record.IsEmpty())
	assert.NotNil(t, record.Skills)
	assert.NoError(t, record.Validate())

	record.Contact.Email = "not-an-email"
	record.FieldConfidence[FieldEmail] = 0.5
	assert.False(t, record.IsEmpty())
	assert.Equal(t, 0.5, record.Confidence(FieldEmail))
	// Malformed values are extracted as written
	assert.NoError(t, record.Validate())

	record.Skills = []SkillMention{{RawText: "Go", Confidence: 1.2}}
	assert.Error(t, record.Validate())

	record.Skills = nil
	record.Source = "CRAWLER"
	assert.Error(t, record.Validate())
}

func TestCandidateRecord(t *testing.T) {
	record := &CandidateRecord{
		Contact:           ContactInfo{Name: "Jane Doe"},
		Education:         []EducationEntry{{Institution: "MIT", Year: 2010, Confidence: 0.8}},
		OverallConfidence: 0.9,
	}

	assert.True(t, record.HasValue(FieldName))
	assert.False(t, record.HasValue(FieldEmail))
	assert.False(t, record.HasValue(FieldSkills))
	assert.True(t, record.HasValue(FieldEducation))
	assert.NoError(t, record.Validate())

	record.Education[0].Year = 1066
	assert.Error(t, record.Validate())
}
