package core

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// maxCleanPasses bounds the fixed-point iteration in Clean. Real input
// settles after the second pass.
const maxCleanPasses = 8

var (
	urlPattern     = regexp.MustCompile(`(?i)(?:https?://|www\.)\S+`)
	mentionPattern = regexp.MustCompile(`@[\p{L}\p{N}_]+`)
)

// Clean normalizes tweet text for language detection and analysis:
//
//   - HTML entities are unescaped (&amp; -> &)
//   - URLs and @mentions are removed
//   - hashtag markers and all other punctuation/symbols become spaces,
//     so "#123" keeps "123"
//   - text is case folded and NFKC normalized
//   - whitespace is collapsed and trimmed
//
// The rules are applied until the text stops changing, so
// Clean(Clean(x)) == Clean(x) for every input.
func Clean(text string) string {
	s := text
	for i := 0; i < maxCleanPasses; i++ {
		next := cleanPass(s)
		if next == s {
			return s
		}
		s = next
	}
	return s
}

func cleanPass(s string) string {
	s = html.UnescapeString(s)
	s = urlPattern.ReplaceAllString(s, " ")
	s = mentionPattern.ReplaceAllString(s, " ")
	s = strings.Map(keepWordRune, s)
	s = norm.NFKC.String(cases.Fold().String(s))
	return strings.Join(strings.Fields(s), " ")
}

// keepWordRune maps everything except letters, numbers and combining marks
// to a space.
func keepWordRune(r rune) rune {
	if unicode.IsLetter(r) || unicode.IsNumber(r) || unicode.IsMark(r) {
		return r
	}
	return ' '
}
