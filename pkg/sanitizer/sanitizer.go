package sanitizer

import (
	"regexp"
	"strings"
)

type Strategy func(string) string

type Pipeline []Strategy

func (p Pipeline) Apply(s string) string {
	for _, fn := range p {
		s = fn(s)
	}
	return s
}

var (
	reKeepLettersDigits = regexp.MustCompile(`[^0-9A-Za-z]+`)
	reControlChars      = regexp.MustCompile(`[\x00-\x1f\x7f]`)
)

func trim(s string) string {
	return strings.TrimSpace(s)
}

func upper(s string) string {
	return strings.ToUpper(s)
}

// SanitizePromoCode normalizes operator and player input to the stored form:
// uppercase letters and digits only. "summer-10" and " Summer 10 " both
// become "SUMMER10", which makes code matching case-insensitive.
func SanitizePromoCode(input string) string {
	p := Pipeline{
		trim,
		func(s string) string { return reKeepLettersDigits.ReplaceAllString(s, "") },
		upper,
	}
	return p.Apply(input)
}

// SanitizeSport lowercases and collapses internal whitespace so catalog
// lookups are stable regardless of how the client spells the sport.
func SanitizeSport(input string) string {
	p := Pipeline{
		trim,
		CollapseWhitespace,
		strings.ToLower,
	}
	return p.Apply(input)
}

// SanitizeID trims surrounding whitespace and rejects identifiers containing
// control characters by returning the empty string.
func SanitizeID(input string) string {
	s := strings.TrimSpace(input)
	if reControlChars.MatchString(s) {
		return ""
	}
	return s
}
