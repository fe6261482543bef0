package pipeline

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// languageSampleLimit caps how many runes are fed into the detector.
// Longer texts are truncated for speed; a few thousand characters is
// plenty for reliable detection.
const languageSampleLimit = 5000

// unknownLanguage is reported when detection is not possible, e.g. on
// empty or binary content.
const unknownLanguage = "unknown"

// LanguageDetector identifies the primary language of page text.
// The zero value is not usable; construct with NewLanguageDetector.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

// NewLanguageDetector builds a detector over all languages lingua
// supports. Construction loads the language models and is expensive,
// so callers should build one detector and reuse it.
func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build(),
	}
}

// Detect returns the ISO 639-1 code of the text's primary language
// (e.g. "en", "ru"), or "unknown" when detection fails.
func (d *LanguageDetector) Detect(text string) string {
	sample := strings.TrimSpace(truncateRunes(text, languageSampleLimit))
	if sample == "" {
		return unknownLanguage
	}

	language, ok := d.detector.DetectLanguageOf(sample)
	if !ok {
		return unknownLanguage
	}
	return strings.ToLower(language.IsoCode639_1().String())
}

// truncateRunes returns at most limit runes of s without splitting a
// multi-byte character.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
