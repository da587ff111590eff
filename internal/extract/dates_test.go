package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/candidate-profiler/internal/types"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		input    string
		expected *types.PartialDate
	}{
		{"2019", &types.PartialDate{Year: 2019}},
		{"03/2019", &types.PartialDate{Year: 2019, Month: 3}},
		{"3/2019", &types.PartialDate{Year: 2019, Month: 3}},
		{"Jan 2019", &types.PartialDate{Year: 2019, Month: 1}},
		{"Sept. 2018", &types.PartialDate{Year: 2018, Month: 9}},
		{"December 2020", &types.PartialDate{Year: 2020, Month: 12}},
		{"Present", types.PresentDate()},
		{"current", types.PresentDate()},
		{"NOW", types.PresentDate()},
		{"13/2019", nil},
		{"1850", nil},
		{"Spring 2019", nil},
		{"", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseDate(tt.input)
			assert.Equal(t, tt.expected != nil, ok)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFindDateRange(t *testing.T) {
	tests := []struct {
		name  string
		input string
		start string
		end   string
		rest  string
		ok    bool
	}{
		{"years", "2019 - 2021", "2019", "2021", "", true},
		{"present", "Acme Corp 2019-Present", "2019", "present", "Acme Corp", true},
		{"en dash months", "Jan 2018 – Mar 2020", "2018-01", "2020-03", "", true},
		{"to separator", "Engineer | Sept. 2018 to now", "2018-09", "present", "Engineer |", true},
		{"numeric", "03/2019 — 06/2020, Remote", "2019-03", "2020-06", ", Remote", true},
		{"reversed is not a range", "2021 - 2019", "", "", "2021 - 2019", false},
		{"single year", "Graduated 2016", "", "", "Graduated 2016", false},
		{"phone is not a range", "555-123-4567", "", "", "555-123-4567", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dr, rest, ok := FindDateRange(tt.input)
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.rest, rest)
			if !ok {
				return
			}
			assert.Equal(t, tt.start, dr.Start.String())
			assert.Equal(t, tt.end, dr.End.String())
		})
	}
}

func TestFirstYear(t *testing.T) {
	assert.Equal(t, 2016, FirstYear("B.S., Stanford, 2016"))
	assert.Equal(t, 1999, FirstYear("Class of 1999 and 2003"))
	assert.Equal(t, 0, FirstYear("Room 12345"))
	assert.Equal(t, 0, FirstYear("no year here"))
}
