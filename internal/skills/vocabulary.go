// Package skills canonicalizes free-text skill mentions against a controlled vocabulary.
package skills

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

//go:embed default_vocabulary.yaml
var defaultVocabularyYAML []byte

// Entry is one canonical skill with its known aliases
type Entry struct {
	Name    string   `json:"name" yaml:"name" toml:"name"`
	Aliases []string `json:"aliases" yaml:"aliases" toml:"aliases"`
	// CaseSensitive restricts free-text scanning of the canonical name to its exact spelling
	// (e.g. "REST" but not "rest"). Aliases are unaffected.
	CaseSensitive bool `json:"case_sensitive,omitempty" yaml:"case_sensitive,omitempty" toml:"case_sensitive,omitempty"`
}

// vocabularyFile is the on-disk layout shared by the YAML, TOML and JSON forms
type vocabularyFile struct {
	Skills []Entry `json:"skills" yaml:"skills" toml:"skills"`
}

// Term is a vocabulary string (canonical name or alias) and the canonical name it resolves to
type Term struct {
	Text          string
	Canonical     string
	CaseSensitive bool
}

// shortTermLen is the length at or below which terms only match their exact spelling
const shortTermLen = 2

// Vocabulary is an immutable canonical-name to alias mapping.
// Lookups are case-insensitive. Safe for concurrent use once built.
type Vocabulary struct {
	entries []Entry
	index   map[string]string // normalized term -> canonical name
	terms   []Term
}

// NewVocabulary validates entries and builds the lookup index
func NewVocabulary(entries []Entry) (*Vocabulary, error) {
	v := &Vocabulary{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]string),
	}

	canonicals := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		name := strings.TrimSpace(entry.Name)
		if name == "" {
			return nil, &VocabularyLoadError{Message: fmt.Sprintf("entry %d has an empty canonical name", i)}
		}
		key := NormalizeText(name)
		if _, dup := canonicals[key]; dup {
			return nil, &VocabularyLoadError{Message: fmt.Sprintf("duplicate canonical name %q", name)}
		}
		canonicals[key] = struct{}{}

		if len(entry.Aliases) == 0 {
			return nil, &VocabularyLoadError{Message: fmt.Sprintf("canonical name %q has no aliases", name)}
		}

		aliases := make([]string, 0, len(entry.Aliases))
		for _, alias := range entry.Aliases {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				return nil, &VocabularyLoadError{Message: fmt.Sprintf("canonical name %q has an empty alias", name)}
			}
			aliases = append(aliases, alias)
		}
		v.entries = append(v.entries, Entry{Name: name, Aliases: aliases, CaseSensitive: entry.CaseSensitive})
	}

	// Canonical names claim their own key first so an alias cannot shadow another skill
	for _, entry := range v.entries {
		v.index[NormalizeText(entry.Name)] = entry.Name
	}
	for _, entry := range v.entries {
		for _, alias := range entry.Aliases {
			key := NormalizeText(alias)
			if owner, exists := v.index[key]; exists && owner != entry.Name {
				return nil, &VocabularyLoadError{
					Message: fmt.Sprintf("alias %q of %q is already claimed by %q", alias, entry.Name, owner),
				}
			}
			v.index[key] = entry.Name
		}
	}

	seen := make(map[Term]struct{})
	for _, entry := range v.entries {
		for _, text := range append([]string{entry.Name}, entry.Aliases...) {
			term := Term{Text: NormalizeText(text), Canonical: entry.Name}
			if (entry.CaseSensitive && text == entry.Name) || len([]rune(term.Text)) <= shortTermLen {
				term.Text = strings.Join(strings.Fields(text), " ")
				term.CaseSensitive = true
			}
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			v.terms = append(v.terms, term)
		}
	}
	// Longest terms first so multi-word skills win over their parts; ties sort alphabetically
	sort.Slice(v.terms, func(i, j int) bool {
		if len(v.terms[i].Text) != len(v.terms[j].Text) {
			return len(v.terms[i].Text) > len(v.terms[j].Text)
		}
		if v.terms[i].Text != v.terms[j].Text {
			return v.terms[i].Text < v.terms[j].Text
		}
		return !v.terms[i].CaseSensitive && v.terms[j].CaseSensitive
	})

	return v, nil
}

// Lookup resolves an exact (case-insensitive) canonical name or alias
func (v *Vocabulary) Lookup(text string) (string, bool) {
	if v == nil {
		return "", false
	}
	canonical, ok := v.index[NormalizeText(text)]
	return canonical, ok
}

// Terms returns every searchable term, longest first
func (v *Vocabulary) Terms() []Term {
	if v == nil {
		return nil
	}
	out := make([]Term, len(v.terms))
	copy(out, v.terms)
	return out
}

// Entries returns a copy of the vocabulary entries in load order
func (v *Vocabulary) Entries() []Entry {
	if v == nil {
		return nil
	}
	out := make([]Entry, len(v.entries))
	for i, e := range v.entries {
		out[i] = Entry{Name: e.Name, Aliases: append([]string(nil), e.Aliases...), CaseSensitive: e.CaseSensitive}
	}
	return out
}

// Len returns the number of canonical skills
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.entries)
}

// LoadVocabulary reads a vocabulary file; the format follows the extension (.yaml, .yml, .toml, .json)
func LoadVocabulary(path string) (*Vocabulary, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &VocabularyLoadError{
			Path:    path,
			Message: "failed to read vocabulary file",
			Cause:   err,
		}
	}

	vocab, err := ParseVocabulary(content, strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
	if err != nil {
		if loadErr, ok := err.(*VocabularyLoadError); ok {
			loadErr.Path = path
		}
		return nil, err
	}
	return vocab, nil
}

// ParseVocabulary decodes vocabulary content in the given format ("yaml", "yml", "toml" or "json")
func ParseVocabulary(content []byte, format string) (*Vocabulary, error) {
	var file vocabularyFile
	var err error

	switch format {
	case "yaml", "yml":
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		err = dec.Decode(&file)
	case "toml":
		err = toml.NewDecoder(bytes.NewReader(content)).DisallowUnknownFields().Decode(&file)
	case "json":
		dec := json.NewDecoder(bytes.NewReader(content))
		dec.DisallowUnknownFields()
		err = dec.Decode(&file)
	default:
		return nil, &VocabularyLoadError{Message: fmt.Sprintf("unsupported vocabulary format %q", format)}
	}
	if err != nil {
		return nil, &VocabularyLoadError{Message: "failed to decode vocabulary", Cause: err}
	}
	if len(file.Skills) == 0 {
		return nil, &VocabularyLoadError{Message: "vocabulary has no skills"}
	}

	return NewVocabulary(file.Skills)
}

// DefaultVocabulary returns the built-in vocabulary.
// It panics if the embedded file is malformed, which is a build defect.
func DefaultVocabulary() *Vocabulary {
	vocab, err := ParseVocabulary(defaultVocabularyYAML, "yaml")
	if err != nil {
		panic(fmt.Sprintf("embedded vocabulary is invalid: %v", err))
	}
	return vocab
}
