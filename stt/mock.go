package stt

import (
	"context"
	"strings"
	"unicode/utf8"
)

// MockTranscriber treats the uploaded bytes as UTF-8 text, for local runs
// without a speech model. Non-UTF-8 input is reported as undecodable.
type MockTranscriber struct{}

func (MockTranscriber) Transcribe(_ context.Context, audio []byte, _ string) (Result, error) {
	if len(audio) == 0 {
		return Result{}, ErrEmptyAudio
	}
	if !utf8.Valid(audio) {
		return Result{}, &DecodeError{Status: 400, Detail: "mock transcriber expects UTF-8 text"}
	}
	text := strings.TrimSpace(string(audio))
	lang := DetectScript(text)
	if lang == LanguageMixed {
		lang = LanguageUnknown
	}
	prob := 0.0
	if lang != LanguageUnknown {
		prob = 1.0
	}
	return Result{Transcript: text, Language: lang, LanguageProbability: prob}, nil
}
