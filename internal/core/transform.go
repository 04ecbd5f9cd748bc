package core

import "strings"

// Transformer cleans text, detects its language and keeps only rows in the
// target language.
type Transformer struct {
	detector LanguageDetector
}

// NewTransformer creates a transformer. A nil detector means a
// WhatlangDetector over DefaultLanguageCandidates with no confidence floor.
func NewTransformer(detector LanguageDetector) *Transformer {
	if detector == nil {
		detector = NewWhatlangDetector(0)
	}
	return &Transformer{detector: detector}
}

// Clean normalizes text. See the package-level Clean.
func (t *Transformer) Clean(text string) string {
	return Clean(text)
}

// DetectLanguage classifies already cleaned text. It never fails; a
// detector panic is treated as Undetected.
func (t *Transformer) DetectLanguage(text string) (lang Language) {
	if strings.TrimSpace(text) == "" {
		return Undetected
	}
	defer func() {
		if recover() != nil {
			lang = Undetected
		}
	}()
	return t.detector.Detect(text)
}

// FilterAndTransform cleans every row, detects its language, coerces
// created_at and returns the rows whose language equals targetLanguage, in
// input order. An empty targetLanguage means DefaultTargetLanguage.
func (t *Transformer) FilterAndTransform(rows []RawRecord, targetLanguage string) ([]CleanRecord, TransformStats) {
	target := strings.ToLower(strings.TrimSpace(targetLanguage))
	if target == "" {
		target = DefaultTargetLanguage
	}

	stats := TransformStats{Total: len(rows)}
	out := make([]CleanRecord, 0, len(rows))

	for _, row := range rows {
		cleaned := Clean(row.Text)
		lang := t.DetectLanguage(cleaned)

		if !lang.Matches(target) {
			if lang.IsDetected() {
				stats.OtherLanguage++
			} else {
				stats.Undetected++
			}
			continue
		}

		rec := CleanRecord{
			RawRecord:     row,
			CleanText:     cleaned,
			Language:      lang,
			CreatedAtTime: ToPgTimestamp(row.CreatedAt),
		}
		if !rec.CreatedAtTime.Valid {
			stats.NullTimestamps++
		}
		out = append(out, rec)
	}

	stats.Kept = len(out)
	return out, stats
}
