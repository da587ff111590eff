// Package merge reconciles a resume record and a LinkedIn record into one candidate record.
//
// Merge is a total, deterministic function: every pair of inputs (nil and empty
// included) produces a record, and disagreements are reported as conflicts
// rather than errors.
package merge

import (
	"math"

	"github.com/jonathan/candidate-profiler/internal/scoring"
	"github.com/jonathan/candidate-profiler/internal/skills"
	"github.com/jonathan/candidate-profiler/internal/types"
)

const (
	// DefaultPhoneRegion is used to interpret phone numbers written without a country code
	DefaultPhoneRegion = "US"
	// DefaultConflictMargin is the largest confidence gap at which divergent values still conflict
	DefaultConflictMargin = 0.25
)

// Engine merges partial records. It holds only immutable settings and is safe for concurrent use.
type Engine struct {
	phoneRegion    string
	conflictMargin float64
	vocab          *skills.Vocabulary
}

// Option configures an Engine
type Option func(*Engine)

// WithPhoneRegion sets the region used when comparing phone numbers
func WithPhoneRegion(region string) Option {
	return func(e *Engine) {
		if region != "" {
			e.phoneRegion = region
		}
	}
}

// WithConflictMargin sets how close two confidences must be for divergent values
// to be reported; 0 reports ties only
func WithConflictMargin(margin float64) Option {
	return func(e *Engine) {
		if margin >= 0 {
			e.conflictMargin = margin
		}
	}
}

// WithVocabulary lets the engine resolve skills that arrive without a canonical name
func WithVocabulary(vocab *skills.Vocabulary) Option {
	return func(e *Engine) {
		e.vocab = vocab
	}
}

// NewEngine creates an Engine
func NewEngine(opts ...Option) *Engine {
	e := &Engine{phoneRegion: DefaultPhoneRegion, conflictMargin: DefaultConflictMargin}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Merge combines records using a default Engine
func Merge(resume, linkedin *types.PartialCandidateRecord) *types.CandidateRecord {
	return NewEngine().Merge(resume, linkedin)
}

// Merge combines the resume and LinkedIn records. Either may be nil or empty,
// in which case the result is a copy of the other with its provenance.
// Inputs are never modified.
func (e *Engine) Merge(resume, linkedin *types.PartialCandidateRecord) *types.CandidateRecord {
	if resume == nil {
		resume = types.NewPartialRecord(types.SourceResume)
	}
	if linkedin == nil {
		linkedin = types.NewPartialRecord(types.SourceLinkedIn)
	}

	// Fields neither side supplies are attributed to the only contributing
	// source, or to the resume when both or neither contribute
	fallback := types.ProvenanceResume
	if resume.IsEmpty() && !linkedin.IsEmpty() {
		fallback = types.ProvenanceLinkedIn
	}

	record := &types.CandidateRecord{
		Skills:          []types.SkillMention{},
		Experience:      []types.ExperienceEntry{},
		Education:       []types.EducationEntry{},
		FieldConfidence: map[string]float64{},
		Provenance:      map[string]types.Provenance{},
		Conflicts:       []types.Conflict{},
	}

	for _, field := range types.ScalarFields {
		e.mergeScalar(record, field, resume, linkedin, fallback)
	}
	e.mergeSkills(record, resume, linkedin, fallback)
	mergeExperience(record, resume, linkedin, fallback)
	mergeEducation(record, resume, linkedin, fallback)

	record.OverallConfidence = scoring.Overall(record)
	return record
}

// mergeScalar picks the value with strictly higher confidence, preferring the resume on ties.
// When both sides supply values that differ after normalization and their confidences are
// within the conflict margin of each other, the disagreement is reported as a conflict
// naming the chosen side. A clearly more confident source wins silently.
func (e *Engine) mergeScalar(record *types.CandidateRecord, field string, resume, linkedin *types.PartialCandidateRecord, fallback types.Provenance) {
	rv, lv := resume.Scalar(field), linkedin.Scalar(field)
	rc, lc := resume.Confidence(field), linkedin.Confidence(field)

	switch {
	case rv == "" && lv == "":
		record.Provenance[field] = fallback
		return
	case rv == "":
		e.take(record, field, lv, lc, types.ProvenanceLinkedIn)
		return
	case lv == "":
		e.take(record, field, rv, rc, types.ProvenanceResume)
		return
	}

	chosen := types.SourceResume
	if lc > rc {
		chosen = types.SourceLinkedIn
		e.take(record, field, lv, lc, types.ProvenanceLinkedIn)
	} else {
		e.take(record, field, rv, rc, types.ProvenanceResume)
	}

	if math.Abs(rc-lc) <= e.conflictMargin+confidenceEpsilon && !e.sameValue(field, rv, lv) {
		record.Conflicts = append(record.Conflicts, types.Conflict{
			Field:         field,
			ResumeValue:   rv,
			LinkedInValue: lv,
			Chosen:        chosen,
		})
	}
}

// absorbs float error in confidences derived from products and means
const confidenceEpsilon = 1e-9

func (e *Engine) take(record *types.CandidateRecord, field, value string, confidence float64, prov types.Provenance) {
	record.SetScalar(field, value)
	record.FieldConfidence[field] = confidence
	record.Provenance[field] = prov
}

// listProvenance is BOTH when each side contributed entries, else the single contributor
func listProvenance(fromResume, fromLinkedIn int, fallback types.Provenance) types.Provenance {
	switch {
	case fromResume > 0 && fromLinkedIn > 0:
		return types.ProvenanceBoth
	case fromResume > 0:
		return types.ProvenanceResume
	case fromLinkedIn > 0:
		return types.ProvenanceLinkedIn
	default:
		return fallback
	}
}

// listConfidence keeps the single contributor's recorded confidence, otherwise averages the merged entries
func listConfidence(field string, prov types.Provenance, resume, linkedin *types.PartialCandidateRecord, entryConfidences []float64) float64 {
	switch prov {
	case types.ProvenanceResume:
		if c, ok := resume.FieldConfidence[field]; ok {
			return c
		}
	case types.ProvenanceLinkedIn:
		if c, ok := linkedin.FieldConfidence[field]; ok {
			return c
		}
	}
	var sum float64
	for _, c := range entryConfidences {
		sum += c
	}
	return sum / float64(len(entryConfidences))
}

// mergeSkills unions both skill sets keyed by canonical name; the higher confidence wins and ties follow skills.Dedupe
func (e *Engine) mergeSkills(record *types.CandidateRecord, resume, linkedin *types.PartialCandidateRecord, fallback types.Provenance) {
	all := make([]types.SkillMention, 0, len(resume.Skills)+len(linkedin.Skills))
	all = append(all, e.resolve(resume.Skills)...)
	all = append(all, e.resolve(linkedin.Skills)...)
	record.Skills = skills.Dedupe(all)

	prov := listProvenance(len(resume.Skills), len(linkedin.Skills), fallback)
	record.Provenance[types.FieldSkills] = prov
	if len(record.Skills) == 0 {
		return
	}
	confidences := make([]float64, len(record.Skills))
	for i, s := range record.Skills {
		confidences[i] = s.Confidence
	}
	record.FieldConfidence[types.FieldSkills] = listConfidence(types.FieldSkills, prov, resume, linkedin, confidences)
}

// resolve fills in canonical names that an exact vocabulary lookup can supply, on a copy
func (e *Engine) resolve(mentions []types.SkillMention) []types.SkillMention {
	out := make([]types.SkillMention, len(mentions))
	copy(out, mentions)
	if e.vocab == nil {
		return out
	}
	for i := range out {
		if out[i].CanonicalName != "" {
			continue
		}
		if canonical, ok := e.vocab.Lookup(out[i].RawText); ok {
			out[i].CanonicalName = canonical
		}
	}
	return out
}

func mergeExperience(record *types.CandidateRecord, resume, linkedin *types.PartialCandidateRecord, fallback types.Provenance) {
	record.Experience = append(record.Experience, resume.Experience...)
	added := 0
	for _, candidate := range linkedin.Experience {
		if containsExperience(resume.Experience, candidate) {
			continue
		}
		record.Experience = append(record.Experience, candidate)
		added++
	}

	// LinkedIn entries dropped as duplicates do not count as contributions
	prov := listProvenance(len(resume.Experience), added, fallback)
	record.Provenance[types.FieldExperience] = prov
	if len(record.Experience) == 0 {
		return
	}
	confidences := make([]float64, len(record.Experience))
	for i, entry := range record.Experience {
		confidences[i] = entry.Confidence
	}
	record.FieldConfidence[types.FieldExperience] = listConfidence(types.FieldExperience, prov, resume, linkedin, confidences)
}

func mergeEducation(record *types.CandidateRecord, resume, linkedin *types.PartialCandidateRecord, fallback types.Provenance) {
	record.Education = append(record.Education, resume.Education...)
	added := 0
	for _, candidate := range linkedin.Education {
		if containsEducation(resume.Education, candidate) {
			continue
		}
		record.Education = append(record.Education, candidate)
		added++
	}

	prov := listProvenance(len(resume.Education), added, fallback)
	record.Provenance[types.FieldEducation] = prov
	if len(record.Education) == 0 {
		return
	}
	confidences := make([]float64, len(record.Education))
	for i, entry := range record.Education {
		confidences[i] = entry.Confidence
	}
	record.FieldConfidence[types.FieldEducation] = listConfidence(types.FieldEducation, prov, resume, linkedin, confidences)
}
