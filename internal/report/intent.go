// Package report maps free-form report requests to a concrete (year, month)
// query and renders the monthly summary for it.
package report

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Intent is a resolved monthly report query. Month is always in [1,12].
type Intent struct {
	Year  int
	Month int
}

// Bare phrases that mean "report for the current month".
var triggerPhrases = map[string]struct{}{
	"report":            {},
	"summary":           {},
	"monthly report":    {},
	"monthly summary":   {},
	"report this month": {},
}

var numericDateRe = regexp.MustCompile(`^(\d{4})[-/](\d{1,2})`)

// monthTokens maps full month names and their 3-letter abbreviations to 1..12.
var monthTokens = func() map[string]int {
	m := make(map[string]int, 24)
	for i := time.January; i <= time.December; i++ {
		name := strings.ToLower(i.String())
		m[name] = int(i)
		m[name[:3]] = int(i)
	}
	return m
}()

// Resolve parses a report request into an Intent. The second return value is
// false when the text is not a report request at all; that is a negative
// classification, not an error.
//
// The grammar is layered and evaluated in order, first match wins:
//  1. bare trigger phrase -> current year and month
//  2. anything not starting with "report " or "summary " -> not a report
//  3. explicit "YYYY-M" / "YYYY/M" remainder
//  4. token scan: month names, month numbers, year override
func Resolve(text string, now time.Time) (Intent, bool) {
	norm := strings.ToLower(strings.TrimSpace(text))

	if _, ok := triggerPhrases[norm]; ok {
		return Intent{Year: now.Year(), Month: int(now.Month())}, true
	}

	rest, ok := requestRemainder(norm)
	if !ok {
		return Intent{}, false
	}

	if year, month, matched := matchNumericDate(rest); matched {
		// A malformed month in an explicit date is rejected, not defaulted.
		if month < 1 || month > 12 {
			return Intent{}, false
		}
		return Intent{Year: year, Month: month}, true
	}

	return matchMonthTokens(rest, now)
}

// requestRemainder strips the leading "report " or "summary " keyword and
// returns what follows.
func requestRemainder(norm string) (string, bool) {
	for _, prefix := range []string{"report ", "summary "} {
		if strings.HasPrefix(norm, prefix) {
			rest := strings.TrimSpace(norm[len(prefix):])
			if rest != "" {
				return rest, true
			}
		}
	}
	return "", false
}

// matchNumericDate matches an explicit "YYYY-M[M]" or "YYYY/M[M]" remainder.
// matched reports whether the pattern applied, regardless of month validity.
func matchNumericDate(rest string) (year, month int, matched bool) {
	m := numericDateRe.FindStringSubmatch(rest)
	if m == nil {
		return 0, 0, false
	}
	year, _ = strconv.Atoi(m[1])
	month, _ = strconv.Atoi(m[2])
	return year, month, true
}

// matchMonthTokens scans whitespace-delimited tokens for a month (name,
// abbreviation or number) and an optional year override. The first valid
// token of each kind wins; later ones do not override it.
func matchMonthTokens(rest string, now time.Time) (Intent, bool) {
	year := now.Year()
	yearSet := false
	month := 0

	for _, tok := range strings.Fields(rest) {
		if n, ok := parseDigits(tok); ok {
			switch {
			case n >= 2000 && n <= 2100:
				if !yearSet {
					year = n
					yearSet = true
				}
			case n >= 1 && n <= 12:
				if month == 0 {
					month = n
				}
			}
			continue
		}
		if m, ok := monthTokens[tok]; ok && month == 0 {
			month = m
		}
	}

	// Single bare number like "report 3": the whole remainder is the month.
	if month == 0 {
		if n, ok := parseDigits(rest); ok && n >= 1 && n <= 12 {
			month = n
		}
	}

	if month < 1 || month > 12 {
		return Intent{}, false
	}
	return Intent{Year: year, Month: month}, true
}

func parseDigits(s string) (int, bool) {
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
