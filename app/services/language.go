package services

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// LanguageDetector guesses the language a post is written in. A nil detector
// detects nothing.
type LanguageDetector struct {
	detector lingua.LanguageDetector
}

// NewLanguageDetector builds a detector restricted to the languages the
// search configurations know about.
func NewLanguageDetector() *LanguageDetector {
	return &LanguageDetector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(lingua.English, lingua.Russian).
			Build(),
	}
}

// Detect returns the lowercase ISO 639-1 code of text's language, or "" when
// it cannot tell.
func (d *LanguageDetector) Detect(text string) string {
	if d == nil || strings.TrimSpace(text) == "" {
		return ""
	}
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return ""
	}
	return strings.ToLower(language.IsoCode639_1().String())
}
