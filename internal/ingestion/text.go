// Package ingestion turns raw candidate documents into normalized line streams.
package ingestion

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Line is one non-empty, whitespace-normalized line of a document.
// AfterGap is set when one or more blank lines preceded it in the raw text.
type Line struct {
	Text     string
	AfterGap bool
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// NormalizeLines cleans raw text into a canonical sequence of non-empty lines.
// Empty input yields an empty sequence; only undecodable bytes produce an error.
func NormalizeLines(raw string) ([]Line, error) {
	if raw == "" {
		return []Line{}, nil
	}
	if !utf8.ValidString(raw) {
		return nil, &InputError{Message: "text is not valid UTF-8"}
	}

	// Compatibility forms fold ligatures, full-width letters and NBSP
	content := norm.NFKC.String(raw)

	// 1. Normalize line endings (CRLF → LF); form feeds are PDF page breaks
	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\f", "\n\n")

	rawLines := strings.Split(content, "\n")
	lines := make([]Line, 0, len(rawLines))
	gap := false
	for _, rawLine := range rawLines {
		cleaned := cleanLine(rawLine)
		if cleaned == "" {
			gap = true
			continue
		}
		lines = append(lines, Line{Text: cleaned, AfterGap: gap && len(lines) > 0})
		gap = false
	}

	return lines, nil
}

// Texts returns the text of each line
func Texts(lines []Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.Text
	}
	return out
}

// cleanLine strips control and zero-width characters and collapses whitespace
func cleanLine(line string) string {
	line = strings.Map(func(r rune) rune {
		switch {
		case r == '\t':
			return ' '
		case r == '\u200b', r == '\u200c', r == '\u200d', r == '\ufeff':
			return -1
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, line)

	line = whitespaceRun.ReplaceAllString(line, " ")
	return strings.TrimSpace(line)
}
