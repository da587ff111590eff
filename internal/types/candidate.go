// Package types provides type definitions for structured data used throughout the candidate-profiler system.
//
//nolint:revive // types is a standard Go package name pattern
package types

import (
	"github.com/go-playground/validator/v10"
)

// Source identifies which input document a value was extracted from
type Source string

const (
	// SourceResume is the candidate-supplied resume document
	SourceResume Source = "RESUME"
	// SourceLinkedIn is the externally fetched profile snippet
	SourceLinkedIn Source = "LINKEDIN"
)

// Valid reports whether s is one of the known document sources
func (s Source) Valid() bool {
	return s == SourceResume || s == SourceLinkedIn
}

// Provenance records which source(s) won a merged field
type Provenance string

const (
	ProvenanceResume   Provenance = "RESUME"
	ProvenanceLinkedIn Provenance = "LINKEDIN"
	ProvenanceBoth     Provenance = "BOTH"
	ProvenanceMerged   Provenance = "MERGED"
)

// ProvenanceOf maps a single document source to its provenance value
func ProvenanceOf(s Source) Provenance {
	if s == SourceLinkedIn {
		return ProvenanceLinkedIn
	}
	return ProvenanceResume
}

// Field names used as keys in FieldConfidence and Provenance maps
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldLocation   = "location"
	FieldSkills     = "skills"
	FieldExperience = "experience"
	FieldEducation  = "education"

	FieldCurrentPosition = "current_position"
	FieldCurrentCompany  = "current_company"
	FieldSummary         = "summary"
	FieldProfileURL      = "profile_url"
)

// ContactFields lists the self-identification fields
var ContactFields = []string{FieldName, FieldEmail, FieldPhone, FieldLocation}

// HeadlineFields lists the professional summary fields
var HeadlineFields = []string{FieldCurrentPosition, FieldCurrentCompany, FieldSummary, FieldProfileURL}

// ScalarFields lists every field merged by precedence, in output order
var ScalarFields = append(append([]string{}, ContactFields...), HeadlineFields...)

// ListFields lists the fields merged by union
var ListFields = []string{FieldSkills, FieldExperience, FieldEducation}

// RawDocument is the immutable text handed over by the ingestion collaborator
type RawDocument struct {
	Source Source `json:"source" validate:"required,oneof=RESUME LINKEDIN"`
	Text   string `json:"text"`
}

// ContactInfo holds self-identification fields; empty string means absent
type ContactInfo struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
}

// Get returns the contact field with the given field name
func (c ContactInfo) Get(field string) string {
	switch field {
	case FieldName:
		return c.Name
	case FieldEmail:
		return c.Email
	case FieldPhone:
		return c.Phone
	case FieldLocation:
		return c.Location
	}
	return ""
}

// Set assigns the contact field with the given field name
func (c *ContactInfo) Set(field, value string) {
	switch field {
	case FieldName:
		c.Name = value
	case FieldEmail:
		c.Email = value
	case FieldPhone:
		c.Phone = value
	case FieldLocation:
		c.Location = value
	}
}

// Headline holds what the candidate does now and where their profile lives; empty string means absent
type Headline struct {
	CurrentPosition string `json:"current_position,omitempty"`
	CurrentCompany  string `json:"current_company,omitempty"`
	Summary         string `json:"summary,omitempty"`
	ProfileURL      string `json:"profile_url,omitempty"`
}

// Get returns the headline field with the given field name
func (h Headline) Get(field string) string {
	switch field {
	case FieldCurrentPosition:
		return h.CurrentPosition
	case FieldCurrentCompany:
		return h.CurrentCompany
	case FieldSummary:
		return h.Summary
	case FieldProfileURL:
		return h.ProfileURL
	}
	return ""
}

// Set assigns the headline field with the given field name
func (h *Headline) Set(field, value string) {
	switch field {
	case FieldCurrentPosition:
		h.CurrentPosition = value
	case FieldCurrentCompany:
		h.CurrentCompany = value
	case FieldSummary:
		h.Summary = value
	case FieldProfileURL:
		h.ProfileURL = value
	}
}

func getScalar(c ContactInfo, h Headline, field string) string {
	if v := c.Get(field); v != "" {
		return v
	}
	return h.Get(field)
}

func setScalar(c *ContactInfo, h *Headline, field, value string) {
	c.Set(field, value)
	h.Set(field, value)
}

// SkillMention is a single skill occurrence; CanonicalName stays empty until resolved
type SkillMention struct {
	RawText       string  `json:"raw_text" validate:"required"`
	CanonicalName string  `json:"canonical_name,omitempty"`
	Confidence    float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// Name returns the canonical name, falling back to the raw text for unresolved mentions
func (m SkillMention) Name() string {
	if m.CanonicalName != "" {
		return m.CanonicalName
	}
	return m.RawText
}

// ExperienceEntry is one job as written in the document
type ExperienceEntry struct {
	Title        string       `json:"title,omitempty"`
	Organization string       `json:"organization,omitempty"`
	Start        *PartialDate `json:"start,omitempty"`
	End          *PartialDate `json:"end,omitempty"`
	Description  string       `json:"description,omitempty"`
	Confidence   float64      `json:"confidence" validate:"gte=0,lte=1"`
}

// EducationEntry is one degree or school as written in the document
type EducationEntry struct {
	Degree      string  `json:"degree,omitempty"`
	Institution string  `json:"institution,omitempty"`
	Year        int     `json:"year,omitempty" validate:"omitempty,gte=1900,lte=2200"`
	Confidence  float64 `json:"confidence" validate:"gte=0,lte=1"`
}

// PartialCandidateRecord is the single-source extraction result
type PartialCandidateRecord struct {
	Source          Source             `json:"source" validate:"required,oneof=RESUME LINKEDIN"`
	Contact         ContactInfo        `json:"contact"`
	Headline        Headline           `json:"headline"`
	Skills          []SkillMention     `json:"skills" validate:"dive"`
	Experience      []ExperienceEntry  `json:"experience" validate:"dive"`
	Education       []EducationEntry   `json:"education" validate:"dive"`
	FieldConfidence map[string]float64 `json:"field_confidence"`
	// Placeholder marks a record standing in for an unavailable source
	Placeholder bool `json:"placeholder,omitempty"`
}

// NewPartialRecord returns an empty record for the given source
func NewPartialRecord(source Source) *PartialCandidateRecord {
	return &PartialCandidateRecord{
		Source:          source,
		Skills:          []SkillMention{},
		Experience:      []ExperienceEntry{},
		Education:       []EducationEntry{},
		FieldConfidence: map[string]float64{},
	}
}

// Confidence returns the recorded confidence for field, or 0 when none was recorded
func (r *PartialCandidateRecord) Confidence(field string) float64 {
	if r == nil || r.FieldConfidence == nil {
		return 0
	}
	return r.FieldConfidence[field]
}

// Scalar returns the contact or headline field with the given name
func (r *PartialCandidateRecord) Scalar(field string) string {
	if r == nil {
		return ""
	}
	return getScalar(r.Contact, r.Headline, field)
}

// SetScalar assigns the contact or headline field with the given name
func (r *PartialCandidateRecord) SetScalar(field, value string) {
	setScalar(&r.Contact, &r.Headline, field, value)
}

// IsEmpty reports whether no field carries a value
func (r *PartialCandidateRecord) IsEmpty() bool {
	if r == nil {
		return true
	}
	return r.Contact == (ContactInfo{}) && r.Headline == (Headline{}) &&
		len(r.Skills) == 0 && len(r.Experience) == 0 && len(r.Education) == 0
}

// Validate validates the PartialCandidateRecord using the validator.
func (r *PartialCandidateRecord) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Conflict reports two sources supplying different values for a scalar field
type Conflict struct {
	Field         string `json:"field"`
	ResumeValue   string `json:"resume_value"`
	LinkedInValue string `json:"linkedin_value"`
	Chosen        Source `json:"chosen"`
}

// CandidateRecord is the merged, authoritative output
type CandidateRecord struct {
	Contact           ContactInfo           `json:"contact"`
	Headline          Headline              `json:"headline"`
	Skills            []SkillMention        `json:"skills" validate:"dive"`
	Experience        []ExperienceEntry     `json:"experience" validate:"dive"`
	Education         []EducationEntry      `json:"education" validate:"dive"`
	FieldConfidence   map[string]float64    `json:"field_confidence"`
	Provenance        map[string]Provenance `json:"provenance"`
	OverallConfidence float64               `json:"overall_confidence" validate:"gte=0,lte=1"`
	Conflicts         []Conflict            `json:"conflicts"`
	ExperienceYears   int                   `json:"experience_years,omitempty"`
}

// Scalar returns the contact or headline field with the given name
func (r *CandidateRecord) Scalar(field string) string {
	return getScalar(r.Contact, r.Headline, field)
}

// SetScalar assigns the contact or headline field with the given name
func (r *CandidateRecord) SetScalar(field, value string) {
	setScalar(&r.Contact, &r.Headline, field, value)
}

// HasValue reports whether the named field carries a value in the merged record
func (r *CandidateRecord) HasValue(field string) bool {
	switch field {
	case FieldSkills:
		return len(r.Skills) > 0
	case FieldExperience:
		return len(r.Experience) > 0
	case FieldEducation:
		return len(r.Education) > 0
	}
	return r.Scalar(field) != ""
}

// Validate validates the CandidateRecord using the validator.
func (r *CandidateRecord) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
