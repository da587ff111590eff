package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jonathan/candidate-profiler/internal/types"
)

// Metadata contains metadata about an ingested candidate document
type Metadata struct {
	Path      string       `json:"path,omitempty"`
	Source    types.Source `json:"source"`
	Format    Format       `json:"format"`
	Timestamp string       `json:"timestamp"` // RFC3339 format
	Hash      string       `json:"hash"`      // SHA256 hex digest
	PageCount int          `json:"page_count,omitempty"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, source types.Source, format Format) *Metadata {
	return &Metadata{
		Source:    source,
		Format:    format,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
	}
}

// computeHash computes SHA256 hash of content and returns hex string
func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
