package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-profiler/internal/types"
)

func testVocabulary(t *testing.T) *Vocabulary {
	t.Helper()
	vocab, err := NewVocabulary([]Entry{
		{Name: "JavaScript", Aliases: []string{"js", "javascript es6"}},
		{Name: "Kubernetes", Aliases: []string{"k8s"}},
		{Name: "PostgreSQL", Aliases: []string{"postgres"}},
		{Name: "Go", Aliases: []string{"golang"}},
		{Name: "Machine Learning", Aliases: []string{"ml"}},
	})
	require.NoError(t, err)
	return vocab
}

func TestNormalizer_Resolve(t *testing.T) {
	n := NewNormalizer(testVocabulary(t))

	tests := []struct {
		name      string
		raw       string
		canonical string
		exact     bool
	}{
		{"alias", "JS", "JavaScript", true},
		{"canonical case-insensitive", "kubernetes", "Kubernetes", true},
		{"surrounding punctuation", "(Postgres).", "PostgreSQL", true},
		{"typo", "Kubernets", "Kubernetes", false},
		{"word order", "learning machine", "Machine Learning", false},
		{"short token never fuzzy", "Ga", "", false},
		{"unknown", "Underwater Basket Weaving", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := n.Resolve(tt.raw)
			assert.Equal(t, tt.canonical, res.Canonical)
			assert.Equal(t, tt.exact, res.Exact)
			if res.Resolved() {
				assert.GreaterOrEqual(t, res.Similarity, DefaultFuzzyThreshold)
			}
		})
	}
}

func TestNormalizer_Normalize(t *testing.T) {
	n := NewNormalizer(testVocabulary(t))

	mentions := []types.SkillMention{
		{RawText: "JS", Confidence: 0.9},
		{RawText: "JavaScript", Confidence: 1.0},
		{RawText: "Kubernets", Confidence: 1.0},
		{RawText: "Basket Weaving", Confidence: 0.6},
		{RawText: "basket weaving", Confidence: 0.5},
		{RawText: "   ", Confidence: 1.0},
	}

	out := n.Normalize(mentions)
	require.Len(t, out, 3)

	assert.Equal(t, "JavaScript", out[0].CanonicalName)
	assert.Equal(t, 1.0, out[0].Confidence, "higher-confidence duplicate wins")
	assert.Equal(t, "JavaScript", out[0].RawText)

	assert.Equal(t, "Kubernetes", out[1].CanonicalName)
	assert.InDelta(t, 0.9, out[1].Confidence, 1e-9, "fuzzy confidence scales by similarity")

	assert.Equal(t, "", out[2].CanonicalName)
	assert.Equal(t, "Basket Weaving", out[2].RawText)
	assert.InDelta(t, 0.6*UnresolvedPenalty, out[2].Confidence, 1e-9)
}

func TestNormalizer_JSAndJavaScriptCollapse(t *testing.T) {
	n := NewNormalizer(testVocabulary(t))

	out := n.Normalize([]types.SkillMention{
		{RawText: "JS", Confidence: 1.0},
		{RawText: "JavaScript", Confidence: 1.0},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "JavaScript", out[0].CanonicalName)
	assert.Equal(t, "JS", out[0].RawText, "tie keeps the first mention")
}

func TestNormalizer_Idempotent(t *testing.T) {
	n := NewNormalizer(testVocabulary(t))
	in := []types.SkillMention{
		{RawText: "golang", Confidence: 0.8},
		{RawText: "Kubernets", Confidence: 1.0},
		{RawText: "Fortran", Confidence: 1.0},
	}

	once := n.Normalize(in)
	twice := n.Normalize(once)
	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].Name(), twice[i].Name())
	}
}

func TestWithFuzzyThreshold(t *testing.T) {
	strict := NewNormalizer(testVocabulary(t), WithFuzzyThreshold(0.95))
	assert.False(t, strict.Resolve("Kubernets").Resolved())

	ignored := NewNormalizer(testVocabulary(t), WithFuzzyThreshold(1.5))
	assert.True(t, ignored.Resolve("Kubernets").Resolved())
}

func TestDedupe(t *testing.T) {
	out := Dedupe([]types.SkillMention{
		{RawText: "go", CanonicalName: "Go", Confidence: 0.4},
		{RawText: "Rust", Confidence: 0.5},
		{RawText: "golang", CanonicalName: "Go", Confidence: 0.9},
		{RawText: "rust", Confidence: 0.5},
	})
	require.Len(t, out, 2)
	assert.Equal(t, "golang", out[0].RawText)
	assert.Equal(t, "Rust", out[1].RawText)
}

func TestDedupe_TieIsOrderIndependent(t *testing.T) {
	upper := types.SkillMention{RawText: "Terraform Cloud", Confidence: 0.42}
	lower := types.SkillMention{RawText: "terraform cloud", Confidence: 0.42}

	for _, in := range [][]types.SkillMention{{upper, lower}, {lower, upper}} {
		out := Dedupe(in)
		require.Len(t, out, 1)
		assert.Equal(t, "Terraform Cloud", out[0].RawText)
	}

	// same canonical name: the earlier mention stays
	out := Dedupe([]types.SkillMention{
		{RawText: "JS", CanonicalName: "JavaScript", Confidence: 0.8},
		{RawText: "JavaScript", CanonicalName: "JavaScript", Confidence: 0.8},
	})
	require.Len(t, out, 1)
	assert.Equal(t, "JS", out[0].RawText)
}

func TestNormalizeText(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"  Node.js  ", "node.js"},
		{"C++,", "c++"},
		{"(React)", "react"},
		{".NET", ".net"},
		{"Machine   Learning", "machine learning"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeText(tt.input))
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("go", "go"))
	assert.Equal(t, 0.0, Similarity("", "go"))
	assert.InDelta(t, 0.9, Similarity("kubernets", "kubernetes"), 1e-9)
	assert.Equal(t, 1.0, Similarity("learning machine", "machine learning"))
	assert.Less(t, Similarity("java", "javascript"), DefaultFuzzyThreshold)
	assert.InDelta(t, 1-3.0/7, Similarity("kitten", "sitting"), 1e-9)
	assert.Equal(t, 1.0, Similarity("c++ c++", "c++"), "repeated tokens count once")
	assert.Equal(t, "ci cd", tokens("ci/cd ci"))
}
