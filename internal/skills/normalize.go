package skills

import (
	"strings"

	"github.com/jonathan/candidate-profiler/internal/types"
)

const (
	// DefaultFuzzyThreshold is the minimum similarity for a fuzzy vocabulary match
	DefaultFuzzyThreshold = 0.85
	// UnresolvedPenalty scales the confidence of mentions that match nothing in the vocabulary
	UnresolvedPenalty = 0.7
	// minFuzzyLen keeps short tokens like "Go" or "R" out of edit-distance matching
	minFuzzyLen = 4
)

// Resolution describes how a raw mention mapped onto the vocabulary
type Resolution struct {
	Canonical  string
	Similarity float64
	Exact      bool
}

// Resolved reports whether a canonical name was found
func (r Resolution) Resolved() bool {
	return r.Canonical != ""
}

// Normalizer maps skill mentions to canonical names
type Normalizer struct {
	vocab     *Vocabulary
	threshold float64
}

// Option configures a Normalizer
type Option func(*Normalizer)

// WithFuzzyThreshold overrides DefaultFuzzyThreshold; values outside (0, 1] are ignored
func WithFuzzyThreshold(threshold float64) Option {
	return func(n *Normalizer) {
		if threshold > 0 && threshold <= 1 {
			n.threshold = threshold
		}
	}
}

// NewNormalizer creates a Normalizer backed by vocab
func NewNormalizer(vocab *Vocabulary, opts ...Option) *Normalizer {
	n := &Normalizer{vocab: vocab, threshold: DefaultFuzzyThreshold}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Vocabulary returns the backing vocabulary
func (n *Normalizer) Vocabulary() *Vocabulary {
	return n.vocab
}

// Resolve finds the canonical name for raw text: exact alias first, then the closest fuzzy match
func (n *Normalizer) Resolve(raw string) Resolution {
	if canonical, ok := n.vocab.Lookup(raw); ok {
		return Resolution{Canonical: canonical, Similarity: 1.0, Exact: true}
	}

	key := NormalizeText(raw)
	if len([]rune(key)) < minFuzzyLen {
		return Resolution{}
	}

	var best Resolution
	// Terms are sorted, so the first term reaching the best score wins ties
	for _, term := range n.vocab.Terms() {
		candidate := NormalizeText(term.Text)
		if len([]rune(candidate)) < minFuzzyLen {
			continue
		}
		score := Similarity(key, candidate)
		if score >= n.threshold && score > best.Similarity {
			best = Resolution{Canonical: term.Canonical, Similarity: score}
		}
	}
	return best
}

// Normalize canonicalizes every mention and then removes duplicates.
// Exact matches keep their confidence, fuzzy matches are scaled by similarity,
// and unresolved mentions keep their raw text with UnresolvedPenalty applied.
func (n *Normalizer) Normalize(mentions []types.SkillMention) []types.SkillMention {
	out := make([]types.SkillMention, 0, len(mentions))
	for _, m := range mentions {
		raw := strings.TrimSpace(m.RawText)
		if raw == "" {
			continue
		}
		m.RawText = raw

		res := n.Resolve(raw)
		switch {
		case res.Exact:
			m.CanonicalName = res.Canonical
		case res.Resolved():
			m.CanonicalName = res.Canonical
			m.Confidence = clamp(m.Confidence * res.Similarity)
		default:
			m.CanonicalName = ""
			m.Confidence = clamp(m.Confidence * UnresolvedPenalty)
		}
		out = append(out, m)
	}
	return Dedupe(out)
}

// Key is the identity used to de-duplicate skills: the canonical name when resolved,
// otherwise the raw text, compared case-insensitively
func Key(m types.SkillMention) string {
	return NormalizeText(m.Name())
}

// Dedupe keeps one mention per Key, preferring the higher confidence. A tie
// keeps the lexicographically smaller name, then the earlier mention, so the
// survivor does not depend on input order. Output follows first-occurrence order.
func Dedupe(mentions []types.SkillMention) []types.SkillMention {
	out := make([]types.SkillMention, 0, len(mentions))
	positions := make(map[string]int, len(mentions))
	for _, m := range mentions {
		key := Key(m)
		if key == "" {
			continue
		}
		if i, seen := positions[key]; seen {
			if preferMention(m, out[i]) {
				out[i] = m
			}
			continue
		}
		positions[key] = len(out)
		out = append(out, m)
	}
	return out
}

func preferMention(m, current types.SkillMention) bool {
	if m.Confidence != current.Confidence {
		return m.Confidence > current.Confidence
	}
	return m.Name() < current.Name()
}

// NormalizeText lowercases, collapses whitespace and strips surrounding punctuation
// that is never part of a skill name. Interior punctuation ("node.js", "c++") is kept.
func NormalizeText(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	s = strings.TrimLeft(s, "([{\"'")
	s = strings.TrimRight(s, ".,;:!?)]}\"'")
	return strings.TrimSpace(s)
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
