package normalizer

import (
	"regexp"
	"strings"
	"unicode"
)

// Payment-method prefixes stripped from the front of a description,
// compared case-insensitively token by token.
var methodPrefixes = map[string]bool{
	"pos":        true,
	"debit":      true,
	"credit":     true,
	"interac":    true,
	"chq":        true,
	"eft":        true,
	"atm":        true,
	"abm":        true,
	"visa":       true,
	"mc":         true,
	"purchase":   true,
	"payment":    true,
	"preauth":    true,
	"pre-auth":   true,
	"withdrawal": true,
	"deposit":    true,
	"e-transfer": true,
	"etfr":       true,
	"tfr":        true,
	"bill":       true,
}

// Canadian provinces and US states; a trailing token from this set is
// treated as a location suffix.
var regionCodes = map[string]bool{
	"AB": true, "BC": true, "MB": true, "NB": true, "NL": true, "NS": true,
	"NT": true, "NU": true, "ON": true, "PE": true, "QC": true, "SK": true,
	"YT": true,
	"AK": true, "AL": true, "AR": true, "AZ": true, "CA": true, "CO": true,
	"CT": true, "DC": true, "DE": true, "FL": true, "GA": true, "HI": true,
	"IA": true, "ID": true, "IL": true, "IN": true, "KS": true, "KY": true,
	"LA": true, "MA": true, "MD": true, "ME": true, "MI": true, "MN": true,
	"MO": true, "MS": true, "MT": true, "NC": true, "ND": true, "NE": true,
	"NH": true, "NJ": true, "NM": true, "NV": true, "NY": true, "OH": true,
	"OK": true, "OR": true, "PA": true, "RI": true, "SC": true, "SD": true,
	"TN": true, "TX": true, "UT": true, "VA": true, "VT": true, "WA": true,
	"WI": true, "WV": true, "WY": true,
}

var (
	// Store numbers (#1234) and long reference numbers (6+ digits).
	referenceRe = regexp.MustCompile(`#\d+|\b\d{6,}\b`)
	// MM/DD, MM/DD/YY, MM/DD/YYYY and ISO dates.
	dateRe  = regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2}(?:\d{2})?)?\b|\b\d{4}-\d{2}-\d{2}\b`)
	spaceRe = regexp.MustCompile(`\s+`)
)

// CleanDescription reduces a raw bank description to something readable:
// payment-method prefixes, reference numbers, embedded dates and the
// trailing location are stripped, whitespace is collapsed, and shouting
// all-caps strings are converted to title case. Falls back to the
// original description when the pipeline empties the string entirely.
func CleanDescription(description string) string {
	s := stripMethodPrefixes(description)
	s = referenceRe.ReplaceAllString(s, " ")
	s = dateRe.ReplaceAllString(s, " ")
	s = stripTrailingLocation(s)
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	s = titleCaseIfShouting(s)
	if s == "" {
		return description
	}
	return s
}

func stripMethodPrefixes(s string) string {
	tokens := strings.Fields(s)
	i := 0
	for i < len(tokens) && methodPrefixes[strings.ToLower(tokens[i])] {
		i++
	}
	return strings.Join(tokens[i:], " ")
}

// stripTrailingLocation drops a trailing two-letter region code and, when
// one was dropped, the single city token before it. The city is only
// dropped when at least two tokens would survive, so short merchant names
// are not eaten.
func stripTrailingLocation(s string) string {
	tokens := strings.Fields(s)
	if len(tokens) < 2 {
		return s
	}
	last := tokens[len(tokens)-1]
	if len(last) != 2 || !regionCodes[strings.ToUpper(last)] {
		return s
	}
	tokens = tokens[:len(tokens)-1]
	if len(tokens) >= 3 {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

func titleCaseIfShouting(s string) string {
	if len(s) <= 3 || s != strings.ToUpper(s) || !strings.ContainsFunc(s, unicode.IsLetter) {
		return s
	}
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
