package merge

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-profiler/internal/skills"
	"github.com/jonathan/candidate-profiler/internal/types"
)

func year(y int) *types.PartialDate {
	return &types.PartialDate{Year: y}
}

func resumeRecord() *types.PartialCandidateRecord {
	r := types.NewPartialRecord(types.SourceResume)
	r.Contact = types.ContactInfo{Name: "Jane Doe", Email: "jane@example.com", Phone: "(555) 123-4567"}
	r.Skills = []types.SkillMention{
		{RawText: "JS", CanonicalName: "JavaScript", Confidence: 1.0},
		{RawText: "Go", CanonicalName: "Go", Confidence: 0.6},
	}
	r.Experience = []types.ExperienceEntry{
		{Title: "Engineer", Organization: "Acme Corp", Start: year(2019), End: year(2021), Confidence: 0.8},
	}
	r.Education = []types.EducationEntry{
		{Degree: "B.S.", Institution: "MIT", Year: 2015, Confidence: 0.8},
	}
	r.FieldConfidence = map[string]float64{
		types.FieldName: 0.5, types.FieldEmail: 1.0, types.FieldPhone: 1.0,
		types.FieldSkills: 0.8, types.FieldExperience: 0.8, types.FieldEducation: 0.8,
	}
	return r
}

func linkedinRecord() *types.PartialCandidateRecord {
	l := types.NewPartialRecord(types.SourceLinkedIn)
	l.Contact = types.ContactInfo{Name: "Jane A. Doe", Email: "jane@example.com", Location: "Boston, MA"}
	l.Skills = []types.SkillMention{
		{RawText: "JavaScript", CanonicalName: "JavaScript", Confidence: 0.8},
		{RawText: "golang", CanonicalName: "Go", Confidence: 0.8},
		{RawText: "Docker", CanonicalName: "Docker", Confidence: 0.8},
	}
	l.Experience = []types.ExperienceEntry{
		{Title: "Software Engineer", Organization: "ACME Corp", Start: year(2019), End: year(2020), Confidence: 0.8},
		{Title: "Intern", Organization: "Beta", Start: year(2017), End: year(2017), Confidence: 0.8},
	}
	l.FieldConfidence = map[string]float64{
		types.FieldName: 1.0, types.FieldEmail: 1.0, types.FieldLocation: 1.0,
		types.FieldSkills: 0.8, types.FieldExperience: 0.8,
	}
	return l
}

func skillNames(mentions []types.SkillMention) []string {
	names := make([]string, 0, len(mentions))
	for _, m := range mentions {
		names = append(names, m.Name())
	}
	return names
}

func TestMerge_ContactPrecedence(t *testing.T) {
	record := Merge(resumeRecord(), linkedinRecord())

	// Name: LinkedIn has strictly higher confidence; a decided difference is not a conflict
	assert.Equal(t, "Jane A. Doe", record.Contact.Name)
	assert.Equal(t, types.ProvenanceLinkedIn, record.Provenance[types.FieldName])
	assert.Equal(t, 1.0, record.FieldConfidence[types.FieldName])

	// Email: tie with identical values goes to the resume without a conflict
	assert.Equal(t, "jane@example.com", record.Contact.Email)
	assert.Equal(t, types.ProvenanceResume, record.Provenance[types.FieldEmail])

	// Single-source scalars
	assert.Equal(t, types.ProvenanceResume, record.Provenance[types.FieldPhone])
	assert.Equal(t, "Boston, MA", record.Contact.Location)
	assert.Equal(t, types.ProvenanceLinkedIn, record.Provenance[types.FieldLocation])

	assert.Empty(t, record.Conflicts)
	assert.NotNil(t, record.Conflicts)
}

func TestMerge_TiedDivergentValuesConflict(t *testing.T) {
	resume := types.NewPartialRecord(types.SourceResume)
	resume.Contact = types.ContactInfo{Name: "Jane Doe", Email: "jane@work.com", Phone: "555-123-4567"}
	resume.FieldConfidence = map[string]float64{types.FieldName: 1.0, types.FieldEmail: 1.0, types.FieldPhone: 1.0}

	linkedin := types.NewPartialRecord(types.SourceLinkedIn)
	linkedin.Contact = types.ContactInfo{Name: "John Smith", Email: "JANE@WORK.COM", Phone: "+1 (555) 123 4567"}
	linkedin.FieldConfidence = map[string]float64{types.FieldName: 1.0, types.FieldEmail: 1.0, types.FieldPhone: 1.0}

	record := Merge(resume, linkedin)

	require.Len(t, record.Conflicts, 1, "email case and phone formatting are trivial differences")
	assert.Equal(t, types.Conflict{
		Field:         types.FieldName,
		ResumeValue:   "Jane Doe",
		LinkedInValue: "John Smith",
		Chosen:        types.SourceResume,
	}, record.Conflicts[0])
	assert.Equal(t, "Jane Doe", record.Contact.Name)
	assert.Equal(t, types.ProvenanceResume, record.Provenance[types.FieldName])
}

func TestMerge_NearTieDivergentValuesConflict(t *testing.T) {
	tests := []struct {
		name       string
		resumeConf float64
		linkedConf float64
		opts       []Option
		conflict   bool
		chosen     types.Source
	}{
		{"linkedin slightly ahead", 0.8, 1.0, nil, true, types.SourceLinkedIn},
		{"resume slightly ahead", 1.0, 0.8, nil, true, types.SourceResume},
		{"clear winner", 0.5, 1.0, nil, false, types.SourceLinkedIn},
		{"ties only", 0.8, 1.0, []Option{WithConflictMargin(0)}, false, types.SourceLinkedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume := types.NewPartialRecord(types.SourceResume)
			resume.Contact.Email = "jane@work.com"
			resume.FieldConfidence[types.FieldEmail] = tt.resumeConf
			linkedin := types.NewPartialRecord(types.SourceLinkedIn)
			linkedin.Contact.Email = "jane@home.org"
			linkedin.FieldConfidence[types.FieldEmail] = tt.linkedConf

			record := NewEngine(tt.opts...).Merge(resume, linkedin)

			if tt.chosen == types.SourceLinkedIn {
				assert.Equal(t, "jane@home.org", record.Contact.Email)
			} else {
				assert.Equal(t, "jane@work.com", record.Contact.Email)
			}
			if !tt.conflict {
				assert.Empty(t, record.Conflicts)
				return
			}
			require.Len(t, record.Conflicts, 1)
			assert.Equal(t, types.FieldEmail, record.Conflicts[0].Field)
			assert.Equal(t, tt.chosen, record.Conflicts[0].Chosen)
		})
	}
}

func TestMerge_HeadlineFields(t *testing.T) {
	resume := types.NewPartialRecord(types.SourceResume)
	resume.Headline = types.Headline{
		CurrentPosition: "Engineer",
		CurrentCompany:  "Acme Corp",
		Summary:         "Builds payment systems.",
		ProfileURL:      "linkedin.com/in/jane-doe",
	}
	resume.FieldConfidence = map[string]float64{
		types.FieldCurrentPosition: 0.8, types.FieldCurrentCompany: 0.8,
		types.FieldSummary: 0.8, types.FieldProfileURL: 1.0,
	}

	linkedin := types.NewPartialRecord(types.SourceLinkedIn)
	linkedin.Headline = types.Headline{
		CurrentPosition: "Senior Engineer",
		Summary:         "Engineer focused on payments and reliability.",
		ProfileURL:      "https://www.linkedin.com/in/Jane-Doe/",
	}
	linkedin.FieldConfidence = map[string]float64{
		types.FieldCurrentPosition: 1.0, types.FieldSummary: 1.0, types.FieldProfileURL: 1.0,
	}

	record := Merge(resume, linkedin)

	assert.Equal(t, types.Headline{
		CurrentPosition: "Senior Engineer",
		CurrentCompany:  "Acme Corp",
		Summary:         "Engineer focused on payments and reliability.",
		ProfileURL:      "linkedin.com/in/jane-doe",
	}, record.Headline)
	assert.Equal(t, types.ProvenanceLinkedIn, record.Provenance[types.FieldCurrentPosition])
	assert.Equal(t, types.ProvenanceResume, record.Provenance[types.FieldCurrentCompany])
	assert.Equal(t, types.ProvenanceLinkedIn, record.Provenance[types.FieldSummary])
	assert.Equal(t, types.ProvenanceResume, record.Provenance[types.FieldProfileURL])

	// differing summaries and differently written URLs for one profile are not conflicts
	require.Len(t, record.Conflicts, 1)
	assert.Equal(t, types.Conflict{
		Field:         types.FieldCurrentPosition,
		ResumeValue:   "Engineer",
		LinkedInValue: "Senior Engineer",
		Chosen:        types.SourceLinkedIn,
	}, record.Conflicts[0])
}

func TestMerge_EmptyValueNeverWins(t *testing.T) {
	resume := types.NewPartialRecord(types.SourceResume)
	resume.FieldConfidence[types.FieldEmail] = 1.0 // confidence without a value

	linkedin := types.NewPartialRecord(types.SourceLinkedIn)
	linkedin.Contact.Email = "jane@example.com"
	linkedin.FieldConfidence[types.FieldEmail] = 0.5

	record := Merge(resume, linkedin)
	assert.Equal(t, "jane@example.com", record.Contact.Email)
	assert.Equal(t, types.ProvenanceLinkedIn, record.Provenance[types.FieldEmail])
	assert.Equal(t, 0.5, record.FieldConfidence[types.FieldEmail])
}

func TestMerge_SkillsUnion(t *testing.T) {
	record := Merge(resumeRecord(), linkedinRecord())

	assert.Equal(t, []string{"JavaScript", "Go", "Docker"}, skillNames(record.Skills))
	assert.Equal(t, "JS", record.Skills[0].RawText, "resume wins the JavaScript tie-breaker on confidence")
	assert.Equal(t, "golang", record.Skills[1].RawText, "higher-confidence LinkedIn mention wins")
	assert.Equal(t, types.ProvenanceBoth, record.Provenance[types.FieldSkills])
	assert.InDelta(t, (1.0+0.8+0.8)/3, record.FieldConfidence[types.FieldSkills], 1e-9)
}

func TestMerge_JSAndJavaScriptCollapse(t *testing.T) {
	normalizer := skills.NewNormalizer(skills.DefaultVocabulary())

	resume := types.NewPartialRecord(types.SourceResume)
	resume.Skills = normalizer.Normalize([]types.SkillMention{{RawText: "JS", Confidence: 1.0}})
	linkedin := types.NewPartialRecord(types.SourceLinkedIn)
	linkedin.Skills = normalizer.Normalize([]types.SkillMention{{RawText: "JavaScript", Confidence: 1.0}})

	record := Merge(resume, linkedin)
	require.Len(t, record.Skills, 1)
	assert.Equal(t, "JavaScript", record.Skills[0].Name())
}

func TestMerge_WithVocabularyResolvesRawSkills(t *testing.T) {
	resume := types.NewPartialRecord(types.SourceResume)
	resume.Skills = []types.SkillMention{{RawText: "JS", Confidence: 1.0}}
	linkedin := types.NewPartialRecord(types.SourceLinkedIn)
	linkedin.Skills = []types.SkillMention{{RawText: "javascript", Confidence: 1.0}}

	record := NewEngine(WithVocabulary(skills.DefaultVocabulary())).Merge(resume, linkedin)
	require.Len(t, record.Skills, 1)
	assert.Equal(t, "JavaScript", record.Skills[0].CanonicalName)
	assert.Equal(t, "", resume.Skills[0].CanonicalName, "inputs are not modified")
}

func TestMerge_ExperienceNearDuplicates(t *testing.T) {
	record := Merge(resumeRecord(), linkedinRecord())

	require.Len(t, record.Experience, 2)
	assert.Equal(t, "Engineer", record.Experience[0].Title, "resume entry survives")
	assert.Equal(t, 2021, record.Experience[0].End.Year)
	assert.Equal(t, "Intern", record.Experience[1].Title)
	assert.Equal(t, types.ProvenanceBoth, record.Provenance[types.FieldExperience])

	// Education came only from the resume
	require.Len(t, record.Education, 1)
	assert.Equal(t, types.ProvenanceResume, record.Provenance[types.FieldEducation])
	assert.Equal(t, 0.8, record.FieldConfidence[types.FieldEducation])
}

func TestMerge_AcmeOverlapScenario(t *testing.T) {
	resume := types.NewPartialRecord(types.SourceResume)
	resume.Experience = []types.ExperienceEntry{{Organization: "Acme Corp", Start: year(2019), End: year(2021), Confidence: 0.8}}
	resume.FieldConfidence[types.FieldExperience] = 0.8
	linkedin := types.NewPartialRecord(types.SourceLinkedIn)
	linkedin.Experience = []types.ExperienceEntry{{Organization: "Acme Corp", Start: year(2019), End: year(2020), Confidence: 0.8}}
	linkedin.FieldConfidence[types.FieldExperience] = 0.8

	record := Merge(resume, linkedin)
	require.Len(t, record.Experience, 1)
	assert.Equal(t, 2021, record.Experience[0].End.Year)
	assert.Equal(t, types.ProvenanceResume, record.Provenance[types.FieldExperience])
}

func TestMerge_EntriesWithoutKeyAreKept(t *testing.T) {
	t.Run("experience without organization", func(t *testing.T) {
		resume := types.NewPartialRecord(types.SourceResume)
		resume.Experience = []types.ExperienceEntry{{Title: "Engineer", Start: year(2019), End: year(2021), Confidence: 0.8}}
		linkedin := types.NewPartialRecord(types.SourceLinkedIn)
		linkedin.Experience = []types.ExperienceEntry{{Title: "Volunteer Teacher", Start: year(2020), End: year(2020), Confidence: 0.8}}

		record := Merge(resume, linkedin)
		require.Len(t, record.Experience, 2)
		assert.Equal(t, "Volunteer Teacher", record.Experience[1].Title)
		assert.Equal(t, types.ProvenanceBoth, record.Provenance[types.FieldExperience])
	})

	t.Run("organization on one side only", func(t *testing.T) {
		resume := types.NewPartialRecord(types.SourceResume)
		resume.Experience = []types.ExperienceEntry{{Title: "Engineer", Organization: "Acme Corp", Start: year(2019), End: year(2021)}}
		linkedin := types.NewPartialRecord(types.SourceLinkedIn)
		linkedin.Experience = []types.ExperienceEntry{{Title: "Engineer", Start: year(2019), End: year(2021)}}

		assert.Len(t, Merge(resume, linkedin).Experience, 2)
	})

	t.Run("education without institution or year", func(t *testing.T) {
		resume := types.NewPartialRecord(types.SourceResume)
		resume.Education = []types.EducationEntry{{Degree: "B.S.", Confidence: 0.8}}
		linkedin := types.NewPartialRecord(types.SourceLinkedIn)
		linkedin.Education = []types.EducationEntry{{Degree: "PhD", Confidence: 0.8}}

		record := Merge(resume, linkedin)
		require.Len(t, record.Education, 2)
		assert.Equal(t, "PhD", record.Education[1].Degree)
		assert.Equal(t, types.ProvenanceBoth, record.Provenance[types.FieldEducation])
	})

	t.Run("identical keyless entries collapse", func(t *testing.T) {
		r := types.NewPartialRecord(types.SourceResume)
		r.Experience = []types.ExperienceEntry{{Title: "Engineer", Start: year(2019), End: year(2021)}}
		r.Education = []types.EducationEntry{{Degree: "B.S."}}

		record := Merge(r, r)
		assert.Equal(t, r.Experience, record.Experience)
		assert.Equal(t, r.Education, record.Education)
	})
}

func TestRangesOverlap(t *testing.T) {
	month := func(y, m int) *types.PartialDate { return &types.PartialDate{Year: y, Month: m} }

	tests := []struct {
		name                       string
		aStart, aEnd, bStart, bEnd *types.PartialDate
		expected                   bool
	}{
		{"identical", year(2019), year(2020), year(2019), year(2020), true},
		{"nested", year(2015), types.PresentDate(), year(2019), year(2020), true},
		{"disjoint months", month(2019, 1), month(2019, 5), month(2019, 6), month(2019, 9), false},
		{"year precision touches", year(2019), year(2019), month(2019, 11), month(2020, 2), true},
		{"both undated", nil, nil, nil, nil, true},
		{"one undated", year(2019), year(2020), nil, nil, false},
		{"start only", year(2019), nil, year(2019), year(2022), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, rangesOverlap(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestMerge_BothEmpty(t *testing.T) {
	for _, tc := range []struct {
		name     string
		resume   *types.PartialCandidateRecord
		linkedin *types.PartialCandidateRecord
	}{
		{"nil inputs", nil, nil},
		{"empty records", types.NewPartialRecord(types.SourceResume), types.NewPartialRecord(types.SourceLinkedIn)},
	} {
		t.Run(tc.name, func(t *testing.T) {
			record := Merge(tc.resume, tc.linkedin)
			require.NotNil(t, record)

			assert.Equal(t, 0.0, record.OverallConfidence)
			assert.Equal(t, types.ContactInfo{}, record.Contact)
			assert.Empty(t, record.Skills)
			assert.Empty(t, record.Experience)
			assert.Empty(t, record.Education)
			assert.Empty(t, record.FieldConfidence)
			assert.Empty(t, record.Conflicts)
			for _, field := range append(append([]string{}, types.ScalarFields...), types.ListFields...) {
				assert.Equal(t, types.ProvenanceResume, record.Provenance[field], field)
			}
		})
	}
}

func TestMerge_SingleSourceRoundTrip(t *testing.T) {
	allFields := append(append([]string{}, types.ScalarFields...), types.ListFields...)

	t.Run("resume only", func(t *testing.T) {
		r := resumeRecord()
		record := Merge(r, types.NewPartialRecord(types.SourceLinkedIn))

		assert.Equal(t, r.Contact, record.Contact)
		assert.Equal(t, r.Skills, record.Skills)
		assert.Equal(t, r.Experience, record.Experience)
		assert.Equal(t, r.Education, record.Education)
		assert.Equal(t, r.FieldConfidence, record.FieldConfidence)
		for _, field := range allFields {
			assert.Equal(t, types.ProvenanceResume, record.Provenance[field], field)
		}
	})

	t.Run("linkedin only", func(t *testing.T) {
		l := linkedinRecord()
		record := Merge(nil, l)

		assert.Equal(t, l.Contact, record.Contact)
		assert.Equal(t, l.Skills, record.Skills)
		assert.Equal(t, l.Experience, record.Experience)
		assert.Equal(t, l.FieldConfidence, record.FieldConfidence)
		for _, field := range allFields {
			assert.Equal(t, types.ProvenanceLinkedIn, record.Provenance[field], field)
		}
	})
}

func TestMerge_Idempotence(t *testing.T) {
	r := resumeRecord()
	r.Skills = append(r.Skills, types.SkillMention{RawText: "golang", CanonicalName: "Go", Confidence: 0.9})

	record := Merge(r, r)

	assert.Equal(t, r.Contact, record.Contact)
	assert.Equal(t, skills.Dedupe(r.Skills), record.Skills)
	assert.Equal(t, r.Experience, record.Experience)
	assert.Equal(t, r.Education, record.Education)
	assert.Empty(t, record.Conflicts)
}

func TestMerge_SkillUnionCommutative(t *testing.T) {
	a, b := resumeRecord(), linkedinRecord()

	ab := skillNames(Merge(a, b).Skills)
	ba := skillNames(Merge(b, a).Skills)
	sort.Strings(ab)
	sort.Strings(ba)
	assert.Equal(t, ab, ba)
}

func TestMerge_SkillSpellingCommutative(t *testing.T) {
	a := types.NewPartialRecord(types.SourceResume)
	a.Skills = []types.SkillMention{{RawText: "Terraform Cloud", Confidence: 0.42}}
	b := types.NewPartialRecord(types.SourceLinkedIn)
	b.Skills = []types.SkillMention{{RawText: "terraform cloud", Confidence: 0.42}}

	assert.Equal(t, skillNames(Merge(a, b).Skills), skillNames(Merge(b, a).Skills))
	assert.Equal(t, []string{"Terraform Cloud"}, skillNames(Merge(a, b).Skills))
}

func TestMerge_ConfidenceMonotonic(t *testing.T) {
	for _, field := range types.ScalarFields {
		t.Run(field, func(t *testing.T) {
			single := Merge(resumeRecord(), nil)
			both := Merge(resumeRecord(), linkedinRecord())
			assert.GreaterOrEqual(t, both.FieldConfidence[field], single.FieldConfidence[field])
		})
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	r, l := resumeRecord(), linkedinRecord()
	rCopy, lCopy := resumeRecord(), linkedinRecord()

	_ = Merge(r, l)
	assert.Equal(t, rCopy, r)
	assert.Equal(t, lCopy, l)
}

func TestMerge_OverallConfidence(t *testing.T) {
	record := Merge(resumeRecord(), linkedinRecord())

	var sum float64
	for _, c := range record.FieldConfidence {
		sum += c
	}
	assert.Len(t, record.FieldConfidence, 7)
	assert.InDelta(t, sum/7, record.OverallConfidence, 1e-9)
}

func TestSameValue(t *testing.T) {
	e := NewEngine()
	tests := []struct {
		field    string
		a, b     string
		expected bool
	}{
		{types.FieldEmail, "Jane@Example.com", "jane@example.com", true},
		{types.FieldPhone, "(555) 123-4567", "+1 555.123.4567", true},
		{types.FieldPhone, "555-123-4567", "555-123-9999", false},
		{types.FieldName, "Jane Doe", "DOE, JANE", true},
		{types.FieldName, "Jane Doe", "Jane A. Doe", false},
		{types.FieldLocation, "St. Louis, MO", "st louis mo", true},
	}
	for _, tt := range tests {
		t.Run(tt.field+" "+tt.a, func(t *testing.T) {
			assert.Equal(t, tt.expected, e.sameValue(tt.field, tt.a, tt.b))
		})
	}
}
