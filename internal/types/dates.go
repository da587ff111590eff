package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// PartialDate is a calendar date known to year or year-month precision, or the open "present" bound.
// Month is 0 when only the year is known.
type PartialDate struct {
	Year    int
	Month   int
	Present bool
}

// PresentDate returns the open end bound
func PresentDate() *PartialDate {
	return &PartialDate{Present: true}
}

// String renders the date as "present", "YYYY" or "YYYY-MM"
func (d PartialDate) String() string {
	switch {
	case d.Present:
		return "present"
	case d.Month > 0:
		return fmt.Sprintf("%04d-%02d", d.Year, d.Month)
	default:
		return fmt.Sprintf("%04d", d.Year)
	}
}

// ParsePartialDate parses the String form back into a PartialDate
func ParsePartialDate(s string) (PartialDate, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "present") {
		return PartialDate{Present: true}, nil
	}

	yearPart, monthPart, hasMonth := strings.Cut(s, "-")
	year, err := strconv.Atoi(yearPart)
	if err != nil || len(yearPart) != 4 {
		return PartialDate{}, fmt.Errorf("invalid date %q", s)
	}
	d := PartialDate{Year: year}
	if hasMonth {
		month, err := strconv.Atoi(monthPart)
		if err != nil || month < 1 || month > 12 {
			return PartialDate{}, fmt.Errorf("invalid month in date %q", s)
		}
		d.Month = month
	}
	return d, nil
}

// MarshalJSON encodes the date as its String form
func (d PartialDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes the String form
func (d *PartialDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePartialDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// MonthIndex returns a sortable month ordinal. Unknown months resolve to
// January for a start bound and December for an end bound. Present sorts after everything.
func (d PartialDate) MonthIndex(isEnd bool) int {
	if d.Present {
		return int(^uint(0) >> 1)
	}
	month := d.Month
	if month == 0 {
		month = 1
		if isEnd {
			month = 12
		}
	}
	return d.Year*12 + month - 1
}
