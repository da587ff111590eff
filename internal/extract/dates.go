package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jonathan/candidate-profiler/internal/types"
)

const (
	minYear = 1900
	maxYear = 2100
)

var monthNames = map[string]int{
	"jan": 1, "feb": 2, "mar": 3, "apr": 4, "may": 5, "jun": 6,
	"jul": 7, "aug": 8, "sep": 9, "oct": 10, "nov": 11, "dec": 12,
}

const (
	monthPattern = `(?:jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)\.?`
	datePattern  = `(?:` + monthPattern + `\s+\d{4}|\d{1,2}/\d{4}|\d{4})`
)

var (
	dateRangePattern = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}/])(` + datePattern + `)\s*(?:-|–|—|\bto\b)\s*(` + datePattern + `|present|current|now)(?:$|[^\p{L}\p{N}/])`)
	singleDate       = regexp.MustCompile(`(?i)^` + datePattern + `$`)
	monthYear        = regexp.MustCompile(`(?i)^(` + monthPattern + `)\s+(\d{4})$`)
	numericMonthYear = regexp.MustCompile(`^(\d{1,2})/(\d{4})$`)
	yearPattern      = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:$|\D)`)
)

// DateRange is a parsed "start - end" span; End may be the open present bound
type DateRange struct {
	Start *types.PartialDate
	End   *types.PartialDate
}

// FindDateRange locates the first date range in s. It returns the range and
// s with the range text cut out.
func FindDateRange(s string) (DateRange, string, bool) {
	for _, loc := range dateRangePattern.FindAllStringSubmatchIndex(s, -1) {
		start, ok := ParseDate(s[loc[2]:loc[3]])
		if !ok {
			continue
		}
		end, ok := ParseDate(s[loc[4]:loc[5]])
		if !ok {
			continue
		}
		if !end.Present && end.MonthIndex(true) < start.MonthIndex(false) {
			continue
		}
		rest := strings.TrimSpace(s[:loc[2]] + " " + s[loc[5]:])
		return DateRange{Start: start, End: end}, strings.Join(strings.Fields(rest), " "), true
	}
	return DateRange{}, s, false
}

// ParseDate parses a single bound: YYYY, MM/YYYY, Mon YYYY, Month YYYY or present/current/now
func ParseDate(s string) (*types.PartialDate, bool) {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "present", "current", "now":
		return types.PresentDate(), true
	}
	if !singleDate.MatchString(s) {
		return nil, false
	}

	var year, month int
	if m := monthYear.FindStringSubmatch(s); m != nil {
		month = monthNames[strings.ToLower(m[1])[:3]]
		year, _ = strconv.Atoi(m[2])
	} else if m := numericMonthYear.FindStringSubmatch(s); m != nil {
		month, _ = strconv.Atoi(m[1])
		year, _ = strconv.Atoi(m[2])
		if month < 1 || month > 12 {
			return nil, false
		}
	} else {
		year, _ = strconv.Atoi(s)
	}

	if year < minYear || year > maxYear {
		return nil, false
	}
	return &types.PartialDate{Year: year, Month: month}, true
}

// FirstYear returns the first plausible four-digit year in s, or 0
func FirstYear(s string) int {
	m := yearPattern.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	year, _ := strconv.Atoi(m[1])
	return year
}

// stripYears removes standalone years and date ranges from s
func stripYears(s string) string {
	if _, rest, ok := FindDateRange(s); ok {
		s = rest
	}
	for {
		loc := yearPattern.FindStringSubmatchIndex(s)
		if loc == nil {
			break
		}
		s = s[:loc[2]] + s[loc[3]:]
	}
	return strings.Join(strings.Fields(s), " ")
}
