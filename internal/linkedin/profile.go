// Package linkedin adapts already-fetched external profile data into partial candidate records.
package linkedin

import (
	"bytes"
	"encoding/json"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jonathan/candidate-profiler/internal/extract"
	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/parsing"
	"github.com/jonathan/candidate-profiler/internal/skills"
	"github.com/jonathan/candidate-profiler/internal/types"
)

const (
	confidenceProfileField = 1.0
	confidenceListedSkill  = 0.8
	confidenceDated        = 0.8
	confidenceUndated      = 0.4
	// confidencePlaceholder is the trust given to anything a placeholder carries
	confidencePlaceholder = 0.2
)

// ProfileData is a structured profile as returned by the profile-fetching collaborator
type ProfileData struct {
	Name        string              `json:"name"`
	Title       string              `json:"title,omitempty"`
	Company     string              `json:"company,omitempty"`
	Location    string              `json:"location,omitempty"`
	Summary     string              `json:"summary,omitempty"`
	Skills      []string            `json:"skills,omitempty"`
	Experience  []ProfileExperience `json:"experience,omitempty" validate:"dive"`
	Education   []ProfileEducation  `json:"education,omitempty" validate:"dive"`
	Connections string              `json:"connections,omitempty"`
	ImageURL    string              `json:"image_url,omitempty" validate:"omitempty,url"`
	ProfileURL  string              `json:"profile_url,omitempty" validate:"omitempty,url"`
}

// ProfileExperience is one position on a profile; Duration is free text such as "2020 - Present"
type ProfileExperience struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// ProfileEducation is one school on a profile
type ProfileEducation struct {
	School string `json:"school"`
	Degree string `json:"degree,omitempty"`
	Year   string `json:"year,omitempty"`
}

// ParseProfile decodes and validates profile JSON
func ParseProfile(data []byte) (*ProfileData, error) {
	var profile ProfileData
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&profile); err != nil {
		return nil, &ProfileError{Message: "failed to decode profile JSON", Cause: err}
	}

	validate := validator.New()
	if err := validate.Struct(&profile); err != nil {
		return nil, &ProfileError{Message: "profile failed validation", Cause: err}
	}
	return &profile, nil
}

// LoadProfile reads profile JSON from a file
func LoadProfile(path string) (*ProfileData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ProfileError{Path: path, Message: "failed to read profile file", Cause: err}
	}
	profile, err := ParseProfile(data)
	if err != nil {
		if profileErr, ok := err.(*ProfileError); ok {
			profileErr.Path = path
		}
		return nil, err
	}
	return profile, nil
}

// FromProfile converts structured profile data into a LinkedIn partial record.
// Listed skills and skills mentioned in the summary or position descriptions are canonicalized.
func FromProfile(profile *ProfileData, normalizer *skills.Normalizer) *types.PartialCandidateRecord {
	fields := extract.Fields{Confidence: map[string]float64{}}
	if profile == nil {
		return parsing.BuildRecord(types.SourceLinkedIn, fields, normalizer)
	}

	fields.Contact.Name = clean(profile.Name)
	fields.Contact.Location = clean(profile.Location)
	fields.Headline = types.Headline{
		CurrentPosition: clean(profile.Title),
		CurrentCompany:  clean(profile.Company),
		Summary:         clean(profile.Summary),
		ProfileURL:      strings.TrimSpace(profile.ProfileURL),
	}
	for _, field := range append([]string{types.FieldName, types.FieldLocation}, types.HeadlineFields...) {
		fields.Confidence[field] = confidenceProfileField
	}

	for _, s := range profile.Skills {
		if s = clean(s); s != "" {
			fields.Skills = append(fields.Skills, types.SkillMention{RawText: s, Confidence: confidenceListedSkill})
		}
	}
	fields.Skills = append(fields.Skills, mentionedSkills(profile, normalizer)...)

	var expSum float64
	for _, pe := range profile.Experience {
		entry := types.ExperienceEntry{
			Title:        clean(pe.Title),
			Organization: clean(pe.Company),
			Description:  strings.TrimSpace(pe.Description),
			Confidence:   confidenceUndated,
		}
		if dates, _, ok := extract.FindDateRange(pe.Duration); ok {
			entry.Start, entry.End = dates.Start, dates.End
			entry.Confidence = confidenceDated
		} else if start, ok := extract.ParseDate(clean(pe.Duration)); ok && !start.Present {
			entry.Start = start
		}
		if entry.Title == "" && entry.Organization == "" && entry.Start == nil {
			continue
		}
		fields.Experience = append(fields.Experience, entry)
		expSum += entry.Confidence
	}
	if len(fields.Experience) > 0 {
		fields.Confidence[types.FieldExperience] = expSum / float64(len(fields.Experience))
	}

	var eduSum float64
	for _, pe := range profile.Education {
		entry := types.EducationEntry{
			Degree:      clean(pe.Degree),
			Institution: clean(pe.School),
			Year:        parseYear(pe.Year),
			Confidence:  confidenceUndated,
		}
		if _, _, ok := extract.MatchDegree(entry.Degree); ok {
			entry.Confidence = confidenceDated
		}
		if entry.Degree == "" && entry.Institution == "" {
			continue
		}
		fields.Education = append(fields.Education, entry)
		eduSum += entry.Confidence
	}
	if len(fields.Education) > 0 {
		fields.Confidence[types.FieldEducation] = eduSum / float64(len(fields.Education))
	}

	return parsing.BuildRecord(types.SourceLinkedIn, fields, normalizer)
}

// mentionedSkills scans free-text profile fields for vocabulary terms
func mentionedSkills(profile *ProfileData, normalizer *skills.Normalizer) []types.SkillMention {
	if normalizer == nil {
		return nil
	}
	texts := []string{profile.Summary}
	for _, pe := range profile.Experience {
		texts = append(texts, pe.Description)
	}

	lines, err := ingestion.NormalizeLines(strings.Join(texts, "\n"))
	if err != nil {
		return nil
	}
	fields := extract.NewSkillExtractor(normalizer.Vocabulary()).Extract(extract.NewDocument(lines))
	return fields.Skills
}

// FromText parses a plain-text profile snippet with the same extractors used for resumes
func FromText(text string, parser *parsing.Parser) (*types.PartialCandidateRecord, error) {
	return parser.ParseDocument(types.RawDocument{Source: types.SourceLinkedIn, Text: text})
}

var profileSlug = regexp.MustCompile(`/in/([^/?#]+)`)

// Placeholder stands in for an unavailable profile. It carries no data except,
// when a profile URL is known, the URL itself and a name guessed from its slug,
// both at low confidence.
func Placeholder(profileURL string) *types.PartialCandidateRecord {
	record := types.NewPartialRecord(types.SourceLinkedIn)
	record.Placeholder = true

	m := profileSlug.FindStringSubmatch(profileURL)
	if m == nil {
		return record
	}
	record.Headline.ProfileURL = strings.TrimSpace(profileURL)
	record.FieldConfidence[types.FieldProfileURL] = confidencePlaceholder

	slug := strings.TrimRight(m[1], "0123456789-")
	name := cases.Title(language.English).String(strings.ReplaceAll(slug, "-", " "))
	if name = clean(name); name != "" {
		record.Contact.Name = name
		record.FieldConfidence[types.FieldName] = confidencePlaceholder
	}
	return record
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parseYear(s string) int {
	s = strings.TrimSpace(s)
	if year, err := strconv.Atoi(s); err == nil && year >= 1900 && year <= 2200 {
		return year
	}
	return extract.FirstYear(s)
}
