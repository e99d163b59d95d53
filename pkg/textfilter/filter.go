// Package textfilter scrubs model output to keep the game
// family-friendly. The audience is high-school interns, so narration is
// held to roughly a PG standard.
package textfilter

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// replacement pairs, checked in order. Compound words come before their
// roots so "bullshit" does not become "bullshoot".
var replacements = []struct {
	word string
	with string
}{
	{"motherfucker", "mother-trucker"},
	{"bullshit", "baloney"},
	{"dumbass", "dummy"},
	{"jackass", "jerk"},
	{"asshole", "jerk"},
	{"goddamn", "gosh-dang"},
	{"bastard", "jerk"},
	{"fuck", "fudge"},
	{"shit", "shoot"},
	{"damn", "dang"},
	{"hell", "heck"},
	{"bitch", "jerk"},
	{"crap", "crud"},
	{"ass", "butt"},
}

// Filter rewrites profanity in the text, preserving the case pattern of
// each replaced word.
type Filter struct {
	patterns []*regexp.Regexp
}

func New() *Filter {
	f := &Filter{patterns: make([]*regexp.Regexp, len(replacements))}
	for i, r := range replacements {
		f.patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(r.word) + `\b`)
	}
	return f
}

// Clean returns the text with every matched word replaced by its
// family-friendly alternative.
func (f *Filter) Clean(text string) string {
	for i, pattern := range f.patterns {
		with := replacements[i].with
		text = pattern.ReplaceAllStringFunc(text, func(match string) string {
			return matchCase(match, with)
		})
	}
	return text
}

// Contains reports whether the text would be changed by Clean.
func (f *Filter) Contains(text string) bool {
	for _, pattern := range f.patterns {
		if pattern.MatchString(text) {
			return true
		}
	}
	return false
}

var titleCaser = cases.Title(language.English)

// matchCase applies the case shape of the original word to the
// replacement: all-caps stays all-caps, title case stays title case,
// anything else comes back lowercase.
func matchCase(original, replacement string) string {
	switch {
	case original == strings.ToUpper(original) && strings.ContainsFunc(original, unicode.IsUpper):
		return strings.ToUpper(replacement)
	case original == titleCaser.String(strings.ToLower(original)):
		return titleCaser.String(replacement)
	default:
		return strings.ToLower(replacement)
	}
}
