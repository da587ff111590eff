package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jonathan/candidate-profiler/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadata_JSONMarshaling(t *testing.T) {
	metadata := &Metadata{
		Path:      "resume.pdf",
		Source:    types.SourceResume,
		Format:    FormatPDF,
		Timestamp: "2024-01-01T00:00:00Z",
		Hash:      "abcd1234",
		PageCount: 2,
	}

	jsonBytes, err := metadata.ToJSON()
	require.NoError(t, err)

	var unmarshaled Metadata
	require.NoError(t, json.Unmarshal(jsonBytes, &unmarshaled))
	assert.Equal(t, *metadata, unmarshaled)
}

func TestComputeHash(t *testing.T) {
	hash1 := computeHash("test content")
	hash2 := computeHash("different content")

	assert.Len(t, hash1, 64, "SHA256 hex digest should be 64 characters")
	assert.NotEqual(t, hash1, hash2)
	assert.Equal(t, hash1, computeHash("test content"), "hash should be deterministic")
}

func TestNewMetadata(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	metadata := NewMetadata("Jane Doe", types.SourceLinkedIn, FormatHTML)

	assert.Equal(t, types.SourceLinkedIn, metadata.Source)
	assert.Equal(t, FormatHTML, metadata.Format)
	assert.Equal(t, computeHash("Jane Doe"), metadata.Hash)

	ts, err := time.Parse(time.RFC3339, metadata.Timestamp)
	require.NoError(t, err)
	assert.True(t, ts.After(before))
}
