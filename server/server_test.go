package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice_idea_intake/generator"
	"voice_idea_intake/idea"
	"voice_idea_intake/publisher"
	"voice_idea_intake/stt"
)

type failingLLM struct{ err error }

func (f failingLLM) Complete(context.Context, generator.Prompt) (string, error) {
	return "", f.err
}

type fixedLLM string

func (f fixedLLM) Complete(context.Context, generator.Prompt) (string, error) {
	return string(f), nil
}

// blockingLLM never answers; it returns once the caller gives up.
type blockingLLM struct{}

func (blockingLLM) Complete(ctx context.Context, _ generator.Prompt) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

type testEnv struct {
	srv     *Server
	handler http.Handler
}

func newTestEnv(t *testing.T, llm generator.LLMClient, tr stt.Transcriber, tweaks ...func(*Options)) testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	var agent *generator.Agent
	if llm != nil {
		a, err := generator.NewAgent(llm, generator.WithLogger(logger))
		require.NoError(t, err)
		agent = a
	}
	opts := Options{
		Agent:          agent,
		Transcriber:    tr,
		Publisher:      publisher.New(publisher.WithLogger(logger), publisher.WithIDSource(func() string { return "idea-1" })),
		Health:         HealthInfo{LLMProvider: "mock", Model: "none", STT: "mock"},
		MaxUploadBytes: 1 << 10,
		Registry:       prometheus.NewRegistry(),
		Logger:         logger,
	}
	for _, tweak := range tweaks {
		tweak(&opts)
	}
	srv, err := New(opts)
	require.NoError(t, err)
	return testEnv{srv: srv, handler: srv.Routes()}
}

func (e testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e testEnv) upload(t *testing.T, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/voice/transcribe", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func completeDraft() idea.Draft {
	return idea.Draft{
		Title:            "Online licence renewals",
		Summary:          "Let residents renew licences on the portal.",
		Problem:          "Renewals need an in-person visit.",
		ProposedSolution: "Add a renewal flow to the portal.",
		TargetAudience:   "Licence holders",
		ExpectedImpact:   "Shorter queues at service centres.",
	}
}

func TestNew_RequiresPublisher(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{}, nil)

	rec := env.do(t, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[healthResp](t, rec)
	assert.True(t, got.OK)
	assert.Equal(t, "llm", got.Mode)
	assert.Equal(t, "mock", got.LLMProvider)

	disabled := newTestEnv(t, nil, nil)
	got = decode[healthResp](t, disabled.do(t, http.MethodGet, "/health", nil))
	assert.Equal(t, "llm-disabled", got.Mode)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{}, stt.MockTranscriber{})

	for _, path := range []string{"/v1/voice/extract", "/v1/voice/clarify", "/v1/ideas", "/v1/ideas/brief", "/v1/voice/transcribe"} {
		rec := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code, path)
	}
	assert.Equal(t, http.StatusMethodNotAllowed, env.do(t, http.MethodPost, "/health", nil).Code)
}

func TestTranscribe(t *testing.T) {
	env := newTestEnv(t, nil, stt.MockTranscriber{})

	rec := env.upload(t, "memo.txt", []byte("نريد تطبيقا للحجز"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[transcribeResp](t, rec)
	assert.Equal(t, "ar", got.Language)
	require.NotNil(t, got.DialectHint)
	assert.Equal(t, "arabic", *got.DialectHint)
	assert.InDelta(t, 1.0, got.LanguageProbability, 1e-9)

	rec = env.upload(t, "memo.txt", []byte("Book renewals online"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"dialect_hint":null`)
}

func TestTranscribe_Errors(t *testing.T) {
	env := newTestEnv(t, nil, stt.MockTranscriber{})

	t.Run("empty file", func(t *testing.T) {
		rec := env.upload(t, "a.webm", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Empty audio file")
	})
	t.Run("undecodable", func(t *testing.T) {
		rec := env.upload(t, "a.webm", []byte{0xff, 0xfe, 0xfd})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("too large", func(t *testing.T) {
		rec := env.upload(t, "a.webm", bytes.Repeat([]byte("a"), 4<<10))
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
	t.Run("missing field", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/v1/voice/transcribe", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("not configured", func(t *testing.T) {
		bare := newTestEnv(t, nil, nil)
		rec := bare.upload(t, "a.webm", []byte("hello"))
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestExtract(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{}, nil)

	rec := env.do(t, http.MethodPost, "/v1/voice/extract", extractReq{
		Text:         "Online licence renewals\nResidents queue for hours to renew.",
		LanguageHint: "en",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[generator.Result](t, rec)

	assert.Equal(t, "Online licence renewals", got.Draft.Title)
	assert.Equal(t, []idea.FieldID{idea.FieldProposedSolution, idea.FieldTargetAudience, idea.FieldExpectedImpact}, got.MissingFields)
	assert.Len(t, got.Questions, 3)
	assert.Equal(t, idea.StatusMissing, got.FieldMeta.ExpectedImpact.Status)

	assert.InDelta(t, 1, testutil.ToFloat64(env.srv.metrics.gate.WithLabelValues("extract", "incomplete")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(env.srv.metrics.requests.WithLabelValues("/v1/voice/extract", "200")), 1e-9)
}

func TestExtract_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		env := newTestEnv(t, nil, nil, func(o *Options) {
			o.LLMDisabledReason = `llm not configured: provider "bard" not supported`
		})
		rec := env.do(t, http.MethodPost, "/v1/voice/extract", extractReq{Text: "x"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), `provider \"bard\" not supported`)

		rec = env.do(t, http.MethodPost, "/v1/voice/clarify", clarifyReq{AnswersText: "x"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "bard")
	})
	t.Run("not configured default message", func(t *testing.T) {
		env := newTestEnv(t, nil, nil)
		rec := env.do(t, http.MethodPost, "/v1/voice/extract", extractReq{Text: "x"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Contains(t, rec.Body.String(), "llm not configured")
	})
	t.Run("deadline exceeded", func(t *testing.T) {
		env := newTestEnv(t, blockingLLM{}, nil, func(o *Options) {
			o.RequestTimeout = 50 * time.Millisecond
		})
		start := time.Now()
		rec := env.do(t, http.MethodPost, "/v1/voice/extract", extractReq{Text: "idea"})
		assert.Equal(t, http.StatusGatewayTimeout, rec.Code, rec.Body.String())
		assert.Less(t, time.Since(start), 5*time.Second)
	})
	t.Run("bad json", func(t *testing.T) {
		env := newTestEnv(t, generator.MockLLM{}, nil)
		rec := env.do(t, http.MethodPost, "/v1/voice/extract", "{")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("blank text", func(t *testing.T) {
		env := newTestEnv(t, generator.MockLLM{}, nil)
		rec := env.do(t, http.MethodPost, "/v1/voice/extract", extractReq{Text: "  "})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
	t.Run("collaborator failure", func(t *testing.T) {
		env := newTestEnv(t, failingLLM{err: errors.New("connection refused")}, nil)
		rec := env.do(t, http.MethodPost, "/v1/voice/extract", extractReq{Text: "idea"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
	})
	t.Run("unparseable output", func(t *testing.T) {
		env := newTestEnv(t, fixedLLM("I cannot help with that"), nil)
		rec := env.do(t, http.MethodPost, "/v1/voice/extract", extractReq{Text: "idea"})
		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "I cannot help with that")
	})
}

func TestClarify(t *testing.T) {
	env := newTestEnv(t, generator.MockLLM{}, nil)
	d := completeDraft()
	d.TargetAudience = ""
	d.ExpectedImpact = ""

	rec := env.do(t, http.MethodPost, "/v1/voice/clarify", clarifyReq{
		Draft:       d,
		AnswersText: "The users are licence holders and it would save hours of queueing.",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[generator.Result](t, rec)

	assert.Empty(t, got.MissingFields)
	assert.NotNil(t, got.Questions)
	assert.Equal(t, idea.StatusConfirmed, got.FieldMeta.TargetAudience.Status)
	assert.InDelta(t, 1, testutil.ToFloat64(env.srv.metrics.gate.WithLabelValues("clarify", "complete")), 1e-9)
}

func TestClarify_BlankAnswersSkipCollaborator(t *testing.T) {
	env := newTestEnv(t, failingLLM{err: errors.New("must not be called")}, nil)
	d := completeDraft()
	d.Problem = ""

	rec := env.do(t, http.MethodPost, "/v1/voice/clarify", clarifyReq{Draft: d, AnswersText: "   "})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[generator.Result](t, rec)
	assert.Equal(t, []idea.FieldID{idea.FieldProblem}, got.MissingFields)
	assert.Equal(t, d.Title, got.Draft.Title)
}

func TestSubmit(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(t, http.MethodPost, "/v1/ideas", publisher.SubmitParams{Draft: completeDraft(), Language: "en"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"id":"idea-1","status":"submitted"}`, rec.Body.String())
	assert.InDelta(t, 1, testutil.ToFloat64(env.srv.metrics.gate.WithLabelValues("submit", "accepted")), 1e-9)
}

func TestSubmit_Incomplete(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	d := completeDraft()
	d.Summary = ""
	d.ExpectedImpact = "   "

	rec := env.do(t, http.MethodPost, "/v1/ideas", publisher.SubmitParams{Draft: d})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"detail"`, "rejection body is flat")
	got := decode[publisher.Rejection](t, rec)

	assert.Equal(t, "Incomplete submission", got.Error)
	assert.Equal(t, []idea.FieldID{idea.FieldSummary, idea.FieldExpectedImpact}, got.MissingFields)
	q, _ := idea.Question(idea.FieldSummary)
	assert.Equal(t, q, got.Questions[0])
	assert.InDelta(t, 1, testutil.ToFloat64(env.srv.metrics.gate.WithLabelValues("submit", "rejected")), 1e-9)
}

func TestSubmit_RejectsUnknownPriority(t *testing.T) {
	env := newTestEnv(t, nil, nil)

	rec := env.do(t, http.MethodPost, "/v1/ideas", `{"draft":{"title":"t","priority":"urgent"}}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBrief(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	d := completeDraft()
	d.Problem = ""

	rec := env.do(t, http.MethodPost, "/v1/ideas/brief", briefReq{Draft: d})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[briefResp](t, rec)

	assert.True(t, strings.HasPrefix(got.Markdown, "# Online licence renewals"))
	assert.Contains(t, got.HTML, "<h1>Online licence renewals</h1>")
	assert.Equal(t, []idea.FieldID{idea.FieldProblem}, got.MissingFields)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t, nil, nil)
	env.do(t, http.MethodGet, "/health", nil)

	rec := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `ideas_http_requests_total{code="200",route="/health"} 1`)
}
