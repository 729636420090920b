package fuzzy

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Processor normalizes a string before scoring.
type Processor func(string) string

// DefaultProcess lowercases s, replaces every rune that is neither a letter nor a digit
// with a space and trims surrounding whitespace.
func DefaultProcess(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return ' '
	}, s)
	// A Caser is stateful, so one is built per call.
	return strings.TrimSpace(cases.Lower(language.Und).String(mapped))
}

// ASCIIProcess drops every non-ASCII rune from s and then applies DefaultProcess.
func ASCIIProcess(s string) string {
	return DefaultProcess(strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s))
}

// NoProcess returns s unchanged.
func NoProcess(s string) string {
	return s
}
