package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := Init(Config{Level: "debug", Format: "json", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Output: &bytes.Buffer{}}) })

	l.Debug().Str("stage", "merge").Msg("merged")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "debug", entry["level"])
	assert.Equal(t, "merge", entry["stage"])
	assert.Equal(t, "merged", entry["message"])
	assert.Contains(t, entry, "time")
}

func TestInit_Level(t *testing.T) {
	tests := []struct {
		name     string
		level    string
		expected zerolog.Level
	}{
		{"explicit", "warn", zerolog.WarnLevel},
		{"empty defaults to info", "", zerolog.InfoLevel},
		{"invalid defaults to info", "verbose", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Init(Config{Level: tt.level, Output: &bytes.Buffer{}})
			assert.Equal(t, tt.expected, l.GetLevel())
		})
	}
	Init(Config{Level: "info", Output: &bytes.Buffer{}})
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "info", Output: &buf})
	t.Cleanup(func() { Init(Config{Level: "info", Output: &bytes.Buffer{}}) })

	ctx := WithContext(context.Background())
	Ctx(ctx).Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")

	// A bare context yields a logger that writes nothing
	assert.Equal(t, zerolog.Disabled, Ctx(context.Background()).GetLevel())
}
