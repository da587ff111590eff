package extract

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/jonathan/candidate-profiler/internal/ingestion"
	"github.com/jonathan/candidate-profiler/internal/types"
)

const (
	confidenceUnique    = 1.0
	confidenceAmbiguous = 0.5
)

var (
	emailPattern    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	urlPattern      = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+|\b[a-z0-9.-]+\.(?:com|org|net|io|dev|me)/\S*`)
	phonePattern    = regexp.MustCompile(`(?:\+\d{1,3}[\s.\-]?)?(?:\(\d{1,4}\)[\s.\-]?)?\d[\d\s.\-]{5,}\d`)
	locationPattern = regexp.MustCompile(`^([\p{Lu}][\p{L}.'\-]*(?:\s+[\p{Lu}][\p{L}.'\-]*){0,3}),\s*([\p{Lu}][\p{L}.'\-]*(?:\s+[\p{Lu}][\p{L}.'\-]*){0,2})$`)
	segmentSplit    = regexp.MustCompile(`\s*[|•·]\s*`)
)

const (
	minPhoneDigits = 7
	maxPhoneDigits = 15
)

// Words that make a "X, Y" segment a role or employer rather than a place
var nonLocationWords = map[string]struct{}{
	"engineer": {}, "developer": {}, "manager": {}, "director": {}, "designer": {},
	"analyst": {}, "consultant": {}, "architect": {}, "scientist": {}, "intern": {},
	"senior": {}, "junior": {}, "lead": {}, "principal": {}, "staff": {}, "head": {},
	"inc": {}, "inc.": {}, "corp": {}, "corp.": {}, "llc": {}, "ltd": {}, "ltd.": {},
	"company": {}, "university": {}, "college": {}, "school": {}, "institute": {},
}

// ContactExtractor finds name, email, phone and location
type ContactExtractor struct{}

// Name implements Extractor
func (ContactExtractor) Name() string { return "contact" }

// Extract implements Extractor. Email and phone are searched in the whole
// document; name and location only in the preamble before the first section.
func (ContactExtractor) Extract(doc *Document) Fields {
	fields := newFields()

	emails := distinct(collect(doc.Lines, findEmails), strings.ToLower)
	phones := distinct(collect(doc.Lines, findPhones), digitsOnly)
	names := distinct(collect(doc.Preamble, findName), strings.ToLower)
	locations := distinct(collect(doc.Preamble, findLocations), strings.ToLower)

	setScalar(&fields, types.FieldEmail, emails)
	setScalar(&fields, types.FieldPhone, phones)
	setScalar(&fields, types.FieldName, names)
	setScalar(&fields, types.FieldLocation, locations)
	return fields
}

// setScalar takes the first candidate; more than one lowers the confidence
func setScalar(fields *Fields, field string, candidates []string) {
	if len(candidates) == 0 {
		return
	}
	fields.Contact.Set(field, candidates[0])
	fields.Headline.Set(field, candidates[0])
	if len(candidates) == 1 {
		fields.Confidence[field] = confidenceUnique
	} else {
		fields.Confidence[field] = confidenceAmbiguous
	}
}

func collect(lines []ingestion.Line, find func(string) []string) []string {
	var out []string
	for _, line := range lines {
		out = append(out, find(line.Text)...)
	}
	return out
}

// distinct keeps the first occurrence of each value under the given key function
func distinct(values []string, key func(string) string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		k := key(v)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}

func findEmails(line string) []string {
	return emailPattern.FindAllString(line, -1)
}

func findPhones(line string) []string {
	// Emails, URLs and date ranges all carry digit runs that are not phone numbers
	line = emailPattern.ReplaceAllString(line, " ")
	line = urlPattern.ReplaceAllString(line, " ")
	for {
		_, rest, ok := FindDateRange(line)
		if !ok {
			break
		}
		line = rest
	}

	var out []string
	for _, match := range phonePattern.FindAllString(line, -1) {
		n := len(digitsOnly(match))
		if n >= minPhoneDigits && n <= maxPhoneDigits {
			out = append(out, strings.TrimSpace(match))
		}
	}
	return out
}

func digitsOnly(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// findName accepts a line of 2-4 capitalized words with no digits, contact details or punctuation lists
func findName(line string) []string {
	if emailPattern.MatchString(line) || urlPattern.MatchString(line) {
		return nil
	}
	if strings.ContainsAny(line, ",|:@•·/") || strings.IndexFunc(line, unicode.IsDigit) >= 0 {
		return nil
	}
	if _, _, ok := MatchHeader(line); ok {
		return nil
	}

	tokens := strings.Fields(line)
	if len(tokens) < 2 || len(tokens) > 4 {
		return nil
	}
	for _, tok := range tokens {
		first := []rune(tok)[0]
		if !unicode.IsUpper(first) {
			return nil
		}
		for _, r := range tok {
			if !unicode.IsLetter(r) && r != '-' && r != '\'' && r != '.' {
				return nil
			}
		}
	}
	return []string{line}
}

func findLocations(line string) []string {
	if emailPattern.MatchString(line) {
		line = emailPattern.ReplaceAllString(line, "|")
	}
	var out []string
	for _, segment := range segmentSplit.Split(line, -1) {
		segment = strings.TrimSpace(segment)
		if !locationPattern.MatchString(segment) || mentionsRoleOrEmployer(segment) {
			continue
		}
		out = append(out, segment)
	}
	return out
}

func mentionsRoleOrEmployer(segment string) bool {
	for _, tok := range strings.FieldsFunc(segment, func(r rune) bool { return r == ' ' || r == ',' }) {
		if _, ok := nonLocationWords[strings.ToLower(tok)]; ok {
			return true
		}
	}
	return false
}
