// Package query normalizes free-text food queries and names into
// comparable token sequences.
package query

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Normalize lowercases s, collapses every run of non-alphanumeric
// characters to a single space, and trims. Always returns a value,
// possibly empty.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonAlnum.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}

// Tokens splits s into normalized tokens. Tokens are not singularized;
// callers apply Singularize on demand.
func Tokens(s string) []string {
	n := Normalize(s)
	if n == "" {
		return nil
	}
	return strings.Split(n, " ")
}

// Compact strips everything but letters and digits. Used to match
// punctuation-heavy brand names ("McDonald's" vs "mcdonalds").
func Compact(s string) string {
	return nonAlnum.ReplaceAllString(strings.ToLower(s), "")
}

// Singularize heuristically reduces a plural token to its singular
// form. It is deliberately not a dictionary lookup: false
// singularizations are tolerated, and the ss-guard keeps words like
// "glass" unchanged.
func Singularize(token string) string {
	lower := strings.ToLower(token)
	if strings.HasSuffix(lower, "ies") && len(token) > 4 {
		return token[:len(token)-3] + "y"
	}
	if strings.HasSuffix(lower, "es") && len(token) > 3 &&
		!strings.HasSuffix(lower, "ses") &&
		!strings.HasSuffix(lower, "xes") &&
		!strings.HasSuffix(lower, "zes") &&
		!strings.HasSuffix(lower, "ches") &&
		!strings.HasSuffix(lower, "shes") {
		return token[:len(token)-2]
	}
	if strings.HasSuffix(lower, "s") && len(token) > 3 && !strings.HasSuffix(lower, "ss") {
		return token[:len(token)-1]
	}
	return token
}

var wordNumbers = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8",
	"nine": "9", "ten": "10", "eleven": "11", "twelve": "12",
}

var wordNumberPattern = regexp.MustCompile(`(?i)\b(one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\b`)

// ReplaceWordNumbers rewrites spelled-out counts ("two eggs") into
// digits so the serving parsers see a uniform numeric shape.
func ReplaceWordNumbers(s string) string {
	return wordNumberPattern.ReplaceAllStringFunc(s, func(m string) string {
		if repl, ok := wordNumbers[strings.ToLower(m)]; ok {
			return repl
		}
		return m
	})
}
