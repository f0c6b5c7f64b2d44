// Package stt is the speech-to-text boundary: raw audio in, transcript and
// detected language out.
package stt

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Language tags the pipeline understands.
const (
	LanguageArabic  = "ar"
	LanguageEnglish = "en"
	LanguageMixed   = "mixed"
	LanguageUnknown = "unknown"
)

var (
	ErrEmptyAudio    = errors.New("empty audio file")
	ErrNotConfigured = errors.New("speech-to-text not configured")
)

// DecodeError reports audio the transcription service could not read.
type DecodeError struct {
	Status int
	Detail string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("audio could not be decoded (status %d): %s", e.Status, e.Detail)
}

// Result is a finished transcription.
type Result struct {
	Transcript          string  `json:"transcript"`
	Language            string  `json:"language"`
	LanguageProbability float64 `json:"language_probability"`
}

// DialectHint is the hint forwarded to extraction: "arabic" for Arabic audio.
func (r Result) DialectHint() string {
	if r.Language == LanguageArabic {
		return "arabic"
	}
	return ""
}

// Transcriber converts audio bytes to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) (Result, error)
}

// MapLanguage folds a detected language code or name to ar, en or unknown.
func MapLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	switch {
	case code == "":
		return LanguageUnknown
	case strings.HasPrefix(code, "ar"):
		return LanguageArabic
	case strings.HasPrefix(code, "en"):
		return LanguageEnglish
	}
	return LanguageUnknown
}

// DetectScript guesses the language of text from its letters: Arabic block
// characters against ASCII Latin letters.
func DetectScript(text string) string {
	var arabic, latin int
	for _, c := range text {
		switch {
		case c >= '\u0600' && c <= '\u06FF':
			arabic++
		case (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z'):
			latin++
		}
	}
	switch {
	case arabic > 0 && latin > 0:
		return LanguageMixed
	case arabic > 0:
		return LanguageArabic
	case latin > 0:
		return LanguageEnglish
	}
	return LanguageUnknown
}

// SafeFilename strips path separators from an uploaded file name.
func SafeFilename(name string) string {
	if name == "" {
		return "audio"
	}
	return strings.NewReplacer("\\", "_", "/", "_").Replace(name)
}
