package stt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/tidwall/gjson"
)

const defaultModel = "whisper-1"

// Settings configures an OpenAITranscriber.
type Settings struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// OpenAITranscriber calls an OpenAI-compatible /audio/transcriptions endpoint
// (OpenAI, faster-whisper-server, whisper.cpp server).
type OpenAITranscriber struct {
	model  string
	client openai.Client
	logger *slog.Logger
}

// NewOpenAITranscriber validates s and builds a transcriber. logger may be
// nil. Extra request options are appended after the ones derived from s.
func NewOpenAITranscriber(s Settings, logger *slog.Logger, extra ...option.RequestOption) (*OpenAITranscriber, error) {
	if s.BaseURL == "" {
		return nil, fmt.Errorf("%w: base_url is required", ErrNotConfigured)
	}
	if s.Model == "" {
		s.Model = defaultModel
	}
	if logger == nil {
		logger = slog.Default()
	}
	base := strings.TrimSuffix(strings.TrimSuffix(s.BaseURL, "/"), "/audio/transcriptions") + "/"
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	opts := []option.RequestOption{
		option.WithBaseURL(base),
		option.WithAPIKey(s.APIKey),
		option.WithRequestTimeout(timeout),
	}
	return &OpenAITranscriber{
		model:  s.Model,
		client: openai.NewClient(append(opts, extra...)...),
		logger: logger,
	}, nil
}

func (t *OpenAITranscriber) Transcribe(ctx context.Context, audio []byte, filename string) (Result, error) {
	if len(audio) == 0 {
		return Result{}, ErrEmptyAudio
	}

	start := time.Now()
	resp, err := t.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:           openai.File(bytes.NewReader(audio), SafeFilename(filename), "application/octet-stream"),
		Model:          t.model,
		ResponseFormat: openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			switch apiErr.StatusCode {
			case http.StatusBadRequest, http.StatusUnsupportedMediaType:
				return Result{}, &DecodeError{Status: apiErr.StatusCode, Detail: tailOf(errorDetail(apiErr), 1200)}
			}
			return Result{}, fmt.Errorf("transcription service error (status %d): %s", apiErr.StatusCode, tailOf(errorDetail(apiErr), 200))
		}
		return Result{}, fmt.Errorf("transcription request failed: %w", err)
	}

	// language and language_probability are verbose_json fields outside the
	// SDK's Transcription type.
	raw := resp.RawJSON()
	res := Result{
		Transcript: strings.TrimSpace(resp.Text),
		Language:   MapLanguage(gjson.Get(raw, "language").String()),
	}
	if p := gjson.Get(raw, "language_probability"); p.Type == gjson.Number {
		res.LanguageProbability = p.Float()
	}
	t.logger.Debug("transcription done",
		"bytes", len(audio),
		"language", res.Language,
		"transcript_len", len(res.Transcript),
		"duration", time.Since(start))
	return res, nil
}

func errorDetail(e *openai.Error) string {
	if e.Message != "" {
		return e.Message
	}
	return e.RawJSON()
}

func tailOf(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
