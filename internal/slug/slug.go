// Package slug generates URL-safe slugs for posts and tags and resolves
// them to unique values against the store.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// MaxLength is the default maximum slug length.
const MaxLength = 60

// Stopwords removed from slugs. Short connective words add noise to URLs
// without improving readability.
var stopwords = map[string]bool{
	"a": true, "an": true, "and": true, "the": true,
	"in": true, "on": true, "at": true, "to": true,
	"for": true, "of": true, "with": true,
}

// Symbol replacements applied before stripping. These carry meaning that
// would otherwise be lost ("Tips & Tricks" → "tips-and-tricks").
var replacements = []struct {
	from string
	to   string
}{
	{"&", " and "},
	{"@", " at "},
	{"%", " percent "},
	{"+", " plus "},
	{"=", " equals "},
}

var (
	// Matches any non-alphanumeric character (except hyphens).
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9-]+`)
	// Matches whitespace runs.
	whitespace = regexp.MustCompile(`\s+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Generate converts arbitrary text into a lowercase, hyphen-separated,
// ASCII-safe slug of at most maxLength characters.
//
// "The Art of Software Testing" → "art-software-testing".
// "Tips & Tricks"               → "tips-and-tricks".
// "Caffè Über Alles"            → "caffe-uber-alles".
//
// Returns "" when nothing survives normalization (empty input, pure
// punctuation, or all-stopword titles). Callers must supply a fallback.
func Generate(text string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = MaxLength
	}

	s := strings.ToLower(strings.TrimSpace(text))

	// Drop stopwords while they are still plain words. Words produced by
	// the symbol replacements below ("&" becomes "and") are kept.
	words := strings.Fields(s)
	kept := words[:0]
	for _, w := range words {
		if stopwords[trimPunct(w)] {
			continue
		}
		kept = append(kept, w)
	}
	s = strings.Join(kept, " ")

	// Meaningful symbols become words before everything else is stripped.
	for _, r := range replacements {
		s = strings.ReplaceAll(s, r.from, r.to)
	}

	// Normalize unicode (decompose accented characters) and drop non-ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	// Whitespace to hyphens, strip the rest.
	s = whitespace.ReplaceAllString(s, "-")
	s = nonAlphanumeric.ReplaceAllString(s, "")
	s = multipleHyphens.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")

	return truncate(s, maxLength)
}

// trimPunct strips surrounding punctuation so "the," still reads as a
// stopword.
func trimPunct(w string) string {
	return strings.TrimFunc(w, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// truncate cuts a slug to maxLength at a word boundary. If the first word
// alone exceeds the limit it is cut mid-word rather than returning "".
func truncate(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	cut := s[:maxLength]
	if idx := strings.LastIndex(cut, "-"); idx > 0 {
		cut = cut[:idx]
	}
	return strings.Trim(cut, "-")
}
