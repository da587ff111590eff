package pipeline

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/linkedin"
	"github.com/jonathan/candidate-profiler/internal/types"
)

// Manifest lists the candidates of a batch run
type Manifest struct {
	Items []ManifestItem `yaml:"items" toml:"items" validate:"required,min=1,dive"`
}

// ManifestItem names the files for one candidate. Relative paths are resolved
// against the manifest's directory.
type ManifestItem struct {
	ID         string `yaml:"id" toml:"id" validate:"required"`
	Resume     string `yaml:"resume" toml:"resume"`
	LinkedIn   string `yaml:"linkedin" toml:"linkedin"`
	Profile    string `yaml:"profile" toml:"profile"`
	ProfileURL string `yaml:"profile_url" toml:"profile_url" validate:"omitempty,url"`
}

// ManifestError reports an unreadable or invalid manifest
type ManifestError struct {
	Path    string
	Message string
	Cause   error
}

func (e *ManifestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("manifest %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("manifest %s: %s", e.Path, e.Message)
}

func (e *ManifestError) Unwrap() error {
	return e.Cause
}

// LoadManifest reads a YAML or TOML manifest, chosen by file extension
func LoadManifest(path string) (*Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, &ManifestError{Path: path, Message: "failed to read file", Cause: err}
	}

	var manifest Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.NewDecoder(bytes.NewReader(content)).DisallowUnknownFields().Decode(&manifest)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(content))
		dec.KnownFields(true)
		err = dec.Decode(&manifest)
	}
	if err != nil {
		return nil, &ManifestError{Path: path, Message: "failed to parse", Cause: err}
	}

	if err := validator.New().Struct(&manifest); err != nil {
		return nil, &ManifestError{Path: path, Message: "invalid manifest", Cause: err}
	}
	seen := map[string]bool{}
	for _, item := range manifest.Items {
		if seen[item.ID] {
			return nil, &ManifestError{Path: path, Message: fmt.Sprintf("duplicate item id %q", item.ID)}
		}
		seen[item.ID] = true
	}

	base := filepath.Dir(path)
	for i := range manifest.Items {
		item := &manifest.Items[i]
		item.Resume = resolvePath(base, item.Resume)
		item.LinkedIn = resolvePath(base, item.LinkedIn)
		item.Profile = resolvePath(base, item.Profile)
	}
	return &manifest, nil
}

func resolvePath(base, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(base, p)
}

// Load reads the item's files into a pipeline Input
func (item ManifestItem) Load() (Input, error) {
	in := Input{ID: item.ID, ProfileURL: item.ProfileURL}

	if item.Resume != "" {
		doc, err := ingestion.LoadDocument(item.Resume, types.SourceResume)
		if err != nil {
			return in, fmt.Errorf("item %s: %w", item.ID, err)
		}
		in.Resume = &doc.Raw
	}
	if item.Profile != "" {
		profile, err := linkedin.LoadProfile(item.Profile)
		if err != nil {
			return in, fmt.Errorf("item %s: %w", item.ID, err)
		}
		in.Profile = profile
	}
	if item.LinkedIn != "" {
		doc, err := ingestion.LoadDocument(item.LinkedIn, types.SourceLinkedIn)
		if err != nil {
			return in, fmt.Errorf("item %s: %w", item.ID, err)
		}
		in.LinkedIn = &doc.Raw
	}
	return in, nil
}

// LoadInputs loads every item. Items whose files cannot be read are returned
// as failed batch results instead of aborting the whole manifest.
func (m *Manifest) LoadInputs() ([]Input, []BatchResult) {
	var inputs []Input
	var failed []BatchResult
	for _, item := range m.Items {
		in, err := item.Load()
		if err != nil {
			failed = append(failed, BatchResult{ID: item.ID, Err: err})
			continue
		}
		inputs = append(inputs, in)
	}
	return inputs, failed
}
