package merge

import (
	"sort"
	"strings"
	"unicode"

	"github.com/nyaruka/phonenumbers"
	"golang.org/x/text/cases"

	"github.com/jonathan/candidate-profiler/internal/types"
)

// sameValue reports whether two non-empty scalar values denote the same thing
func (e *Engine) sameValue(field, a, b string) bool {
	switch field {
	case types.FieldEmail:
		return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
	case types.FieldPhone:
		return e.canonicalPhone(a) == e.canonicalPhone(b)
	case types.FieldName:
		return sameTokens(foldText(a), foldText(b))
	case types.FieldProfileURL:
		return profileSlug(a) == profileSlug(b)
	case types.FieldSummary:
		// free-text summaries are rewritten per audience; a difference is not a disagreement
		return true
	default:
		return foldText(a) == foldText(b)
	}
}

// profileSlug reduces a profile URL to its lowercased path, ignoring scheme, host and trailing slash
func profileSlug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if i := strings.Index(s, "/in/"); i >= 0 {
		s = s[i:]
	}
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	return strings.TrimRight(s, "/")
}

// canonicalPhone renders a number as E.164, falling back to its bare digits
func (e *Engine) canonicalPhone(s string) string {
	num, err := phonenumbers.Parse(s, e.phoneRegion)
	if err == nil && phonenumbers.IsPossibleNumber(num) {
		return phonenumbers.Format(num, phonenumbers.E164)
	}
	return digitsOnly(s)
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, s)
}

// foldText case-folds and reduces punctuation to spaces so "St. Louis, MO" equals "st louis mo"
func foldText(s string) string {
	s = cases.Fold().String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(s), " ")
}

// sameTokens compares word sets, so "Doe Jane" matches "Jane Doe"
func sameTokens(a, b string) bool {
	ta, tb := strings.Fields(a), strings.Fields(b)
	if len(ta) != len(tb) {
		return false
	}
	sort.Strings(ta)
	sort.Strings(tb)
	for i := range ta {
		if ta[i] != tb[i] {
			return false
		}
	}
	return true
}

// containsExperience matches on organization and overlapping dates. Without an
// organization on either side only an identical entry matches.
func containsExperience(entries []types.ExperienceEntry, candidate types.ExperienceEntry) bool {
	org := foldText(candidate.Organization)
	for _, entry := range entries {
		if org == "" || foldText(entry.Organization) == "" {
			if sameExperience(entry, candidate) {
				return true
			}
			continue
		}
		if foldText(entry.Organization) == org &&
			rangesOverlap(entry.Start, entry.End, candidate.Start, candidate.End) {
			return true
		}
	}
	return false
}

func sameExperience(a, b types.ExperienceEntry) bool {
	aFrom, aTo, aDated := span(a.Start, a.End)
	bFrom, bTo, bDated := span(b.Start, b.End)
	return foldText(a.Title) == foldText(b.Title) &&
		foldText(a.Organization) == foldText(b.Organization) &&
		aDated == bDated && aFrom == bFrom && aTo == bTo
}

// containsEducation matches on institution and year. Without an institution on
// either side only an identical entry matches.
func containsEducation(entries []types.EducationEntry, candidate types.EducationEntry) bool {
	inst := foldText(candidate.Institution)
	for _, entry := range entries {
		if inst == "" || foldText(entry.Institution) == "" {
			if foldText(entry.Degree) == foldText(candidate.Degree) &&
				foldText(entry.Institution) == inst && entry.Year == candidate.Year {
				return true
			}
			continue
		}
		if foldText(entry.Institution) == inst && entry.Year == candidate.Year {
			return true
		}
	}
	return false
}

// rangesOverlap treats two fully undated entries as identical and an undated
// entry as distinct from a dated one. A missing bound collapses onto the other.
func rangesOverlap(aStart, aEnd, bStart, bEnd *types.PartialDate) bool {
	aFrom, aTo, aDated := span(aStart, aEnd)
	bFrom, bTo, bDated := span(bStart, bEnd)
	if !aDated || !bDated {
		return !aDated && !bDated
	}
	return aFrom <= bTo && bFrom <= aTo
}

func span(start, end *types.PartialDate) (int, int, bool) {
	switch {
	case start == nil && end == nil:
		return 0, 0, false
	case start == nil:
		return end.MonthIndex(false), end.MonthIndex(true), true
	case end == nil:
		return start.MonthIndex(false), start.MonthIndex(true), true
	default:
		return start.MonthIndex(false), end.MonthIndex(true), true
	}
}
