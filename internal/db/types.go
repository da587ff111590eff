package db

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/candidate-profiler/internal/types"
)

// ErrNotFound is returned when no candidate has the requested ID
var ErrNotFound = errors.New("candidate not found")

// CandidateInput is a merged record plus the source fingerprints it was built from
type CandidateInput struct {
	Record       *types.CandidateRecord
	ResumeHash   string
	LinkedInHash string
	ProfileURL   string
}

// profileURL prefers the URL the caller supplied over one found in the documents
func (in CandidateInput) profileURL() string {
	if in.ProfileURL != "" || in.Record == nil {
		return in.ProfileURL
	}
	return in.Record.Headline.ProfileURL
}

// Candidate is a stored record
type Candidate struct {
	ID           uuid.UUID              `json:"id"`
	Record       *types.CandidateRecord `json:"record"`
	ResumeHash   string                 `json:"resume_hash,omitempty"`
	LinkedInHash string                 `json:"linkedin_hash,omitempty"`
	ProfileURL   string                 `json:"profile_url,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

// CandidateSummary is one row of a candidate listing
type CandidateSummary struct {
	ID                uuid.UUID `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Location          string    `json:"location"`
	OverallConfidence float64   `json:"overall_confidence"`
	ExperienceYears   int       `json:"experience_years"`
	ConflictCount     int       `json:"conflict_count"`
	CreatedAt         time.Time `json:"created_at"`
}

// ListFilter narrows ListCandidates; zero values match everything
type ListFilter struct {
	// Skill matches a canonical skill name case-insensitively
	Skill         string
	MinConfidence float64
	Limit         int
}

// DefaultListLimit applies when ListFilter.Limit is not positive
const DefaultListLimit = 50

func (f ListFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// skillRow is one denormalised candidate_skills row
type skillRow struct {
	Name       string
	Confidence float64
}

// skillRows keys merged skills by display name; names are already unique after merge
func skillRows(record *types.CandidateRecord) []skillRow {
	seen := map[string]bool{}
	rows := make([]skillRow, 0, len(record.Skills))
	for _, s := range record.Skills {
		name := s.Name()
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		rows = append(rows, skillRow{Name: name, Confidence: s.Confidence})
	}
	return rows
}
