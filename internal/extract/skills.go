package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/jonathan/candidate-profiler/internal/skills"
	"github.com/jonathan/candidate-profiler/internal/types"
)

const (
	confidenceVocabularyHit = 1.0
	confidenceSectionToken  = 0.6

	maxSkillTokenWords = 5
	maxSkillTokenLen   = 50
)

var (
	skillTokenSplit = regexp.MustCompile(`\s*[,;|•·]\s*`)
	// "Languages: Go, Python" style sub-labels inside a skills section
	skillLabelPrefix = regexp.MustCompile(`^[\p{L}][\p{L} &/]{0,30}:\s*`)
)

type termMatcher struct {
	pattern   *regexp.Regexp
	canonical string
}

// SkillExtractor finds skills from vocabulary terms anywhere in the text and
// from free tokens listed under a Skills section
type SkillExtractor struct {
	matchers []termMatcher
}

// NewSkillExtractor compiles one matcher per vocabulary term
func NewSkillExtractor(vocab *skills.Vocabulary) *SkillExtractor {
	terms := vocab.Terms()
	e := &SkillExtractor{matchers: make([]termMatcher, 0, len(terms))}
	for _, term := range terms {
		flags := "(?i)"
		if term.CaseSensitive {
			flags = ""
		}
		// Letters, digits, '+' and '#' continue a token so "Java" does not match "JavaScript" and "C" does not match "C++"
		pattern := regexp.MustCompile(flags + `(?:^|[^\p{L}\p{N}])(` + regexp.QuoteMeta(term.Text) + `)(?:$|[^\p{L}\p{N}+#])`)
		e.matchers = append(e.matchers, termMatcher{pattern: pattern, canonical: term.Canonical})
	}
	return e
}

// Name implements Extractor
func (e *SkillExtractor) Name() string { return "skills" }

// Extract implements Extractor. Mentions carry raw text only; canonicalization happens later.
func (e *SkillExtractor) Extract(doc *Document) Fields {
	fields := newFields()

	mentions := append(e.scanVocabulary(doc.Text()), sectionTokens(doc.Sections)...)
	fields.Skills = dedupeRaw(mentions)
	if len(fields.Skills) > 0 {
		fields.Confidence[types.FieldSkills] = meanSkillConfidence(fields.Skills)
	}
	return fields
}

type positioned struct {
	pos  int
	text string
}

// scanVocabulary returns vocabulary hits in document order
func (e *SkillExtractor) scanVocabulary(text string) []types.SkillMention {
	var hits []positioned
	for _, m := range e.matchers {
		for _, loc := range m.pattern.FindAllStringSubmatchIndex(text, -1) {
			hits = append(hits, positioned{pos: loc[2], text: text[loc[2]:loc[3]]})
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].pos < hits[j].pos })

	out := make([]types.SkillMention, 0, len(hits))
	for _, h := range hits {
		out = append(out, types.SkillMention{RawText: h.text, Confidence: confidenceVocabularyHit})
	}
	return out
}

// sectionTokens splits every Skills section into comma or bullet separated tokens
func sectionTokens(sections []Section) []types.SkillMention {
	var out []types.SkillMention
	for _, section := range sections {
		if section.Kind != SectionSkills {
			continue
		}
		texts := make([]string, 0, len(section.Lines)+1)
		if section.Inline != "" {
			texts = append(texts, section.Inline)
		}
		for _, line := range section.Lines {
			texts = append(texts, line.Text)
		}

		for _, text := range texts {
			text = skillLabelPrefix.ReplaceAllString(stripBullet(text), "")
			for _, tok := range skillTokenSplit.Split(text, -1) {
				tok = strings.TrimRight(strings.TrimSpace(tok), ".")
				if !plausibleSkillToken(tok) {
					continue
				}
				out = append(out, types.SkillMention{RawText: tok, Confidence: confidenceSectionToken})
			}
		}
	}
	return out
}

func plausibleSkillToken(tok string) bool {
	if tok == "" || len(tok) > maxSkillTokenLen {
		return false
	}
	return len(strings.Fields(tok)) <= maxSkillTokenWords
}

// dedupeRaw merges mentions whose raw text matches case-insensitively, keeping the higher confidence
func dedupeRaw(mentions []types.SkillMention) []types.SkillMention {
	out := make([]types.SkillMention, 0, len(mentions))
	positions := make(map[string]int, len(mentions))
	for _, m := range mentions {
		key := strings.ToLower(m.RawText)
		if i, seen := positions[key]; seen {
			if m.Confidence > out[i].Confidence {
				out[i] = m
			}
			continue
		}
		positions[key] = len(out)
		out = append(out, m)
	}
	return out
}

func meanSkillConfidence(mentions []types.SkillMention) float64 {
	var sum float64
	for _, m := range mentions {
		sum += m.Confidence
	}
	return sum / float64(len(mentions))
}
