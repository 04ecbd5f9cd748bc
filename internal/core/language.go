package core

import (
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// DefaultMinLetters is the shortest text, in letters, worth classifying.
const DefaultMinLetters = 3

// DefaultLanguageCandidates is the candidate set used when none is
// configured. Scoring tweets against every model makes short text
// unreliable, so detection is restricted to a handful of languages.
var DefaultLanguageCandidates = []string{"en", "es", "fr", "pt", "de", "it"}

// WhatlangDetector classifies text with whatlanggo's trigram models and
// reports ISO 639-1 codes.
type WhatlangDetector struct {
	// MinConfidence discards classifications below this confidence (0-1).
	MinConfidence float64

	// MinLetters is the minimum number of letters required; shorter text is
	// Undetected. Zero means DefaultMinLetters.
	MinLetters int

	options whatlanggo.Options
}

// NewWhatlangDetector creates a detector with the given confidence floor
// that only considers the candidate ISO 639-1 codes. Codes whatlanggo has
// no model for are ignored; if none remain every model is scored. No
// candidates means DefaultLanguageCandidates.
func NewWhatlangDetector(minConfidence float64, candidates ...string) *WhatlangDetector {
	if len(candidates) == 0 {
		candidates = DefaultLanguageCandidates
	}
	return &WhatlangDetector{
		MinConfidence: minConfidence,
		MinLetters:    DefaultMinLetters,
		options:       whatlanggo.Options{Whitelist: whitelist(candidates)},
	}
}

// Candidates returns the ISO 639-1 codes the detector chooses between.
func (d *WhatlangDetector) Candidates() []string {
	codes := make([]string, 0, len(d.options.Whitelist))
	for lang := range d.options.Whitelist {
		codes = append(codes, lang.Iso6391())
	}
	return codes
}

// Detect implements LanguageDetector.
func (d *WhatlangDetector) Detect(text string) Language {
	minLetters := d.MinLetters
	if minLetters <= 0 {
		minLetters = DefaultMinLetters
	}
	if countLetters(text) < minLetters {
		return Undetected
	}

	info := whatlanggo.DetectWithOptions(text, d.options)
	if info.Script == nil || info.Confidence <= 0 || info.Confidence < d.MinConfidence {
		return Undetected
	}

	return Detected(info.Lang.Iso6391())
}

func whitelist(codes []string) map[whatlanggo.Lang]bool {
	want := make(map[string]bool, len(codes))
	for _, c := range codes {
		want[strings.ToLower(strings.TrimSpace(c))] = true
	}

	list := make(map[whatlanggo.Lang]bool, len(want))
	for lang := range whatlanggo.Langs {
		if code := lang.Iso6391(); code != "" && want[code] {
			list[lang] = true
		}
	}
	return list
}

func countLetters(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			n++
		}
	}
	return n
}
