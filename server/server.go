package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voice_idea_intake/generator"
	"voice_idea_intake/idea"
	"voice_idea_intake/publisher"
	"voice_idea_intake/stt"
)

// HealthInfo is reported by /health.
type HealthInfo struct {
	LLMProvider string
	Model       string
	STT         string
}

// Options wires the server's collaborators. Agent and Transcriber may be
// nil, in which case the matching endpoints report a configuration error.
// LLMDisabledReason is the message returned while Agent is nil.
type Options struct {
	Agent             *generator.Agent
	LLMDisabledReason string
	Transcriber       stt.Transcriber
	Publisher         *publisher.Publisher
	Health            HealthInfo
	RequestTimeout    time.Duration
	MaxUploadBytes    int64
	Registry          *prometheus.Registry
	Logger            *slog.Logger
}

const defaultLLMDisabled = "llm not configured"

type Server struct {
	genAgent    *generator.Agent
	llmDisabled string
	transcriber stt.Transcriber
	pub         *publisher.Publisher
	health      HealthInfo
	timeout     time.Duration
	maxUpload   int64
	registry    *prometheus.Registry
	metrics     *Metrics
	logger      *slog.Logger
}

func New(opts Options) (*Server, error) {
	if opts.Publisher == nil {
		return nil, errors.New("publisher required")
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 120 * time.Second
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 25 << 20
	}
	if opts.Registry == nil {
		opts.Registry = prometheus.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.LLMDisabledReason == "" {
		opts.LLMDisabledReason = defaultLLMDisabled
	}
	return &Server{
		genAgent:    opts.Agent,
		llmDisabled: opts.LLMDisabledReason,
		transcriber: opts.Transcriber,
		pub:         opts.Publisher,
		health:      opts.Health,
		timeout:     opts.RequestTimeout,
		maxUpload:   opts.MaxUploadBytes,
		registry:    opts.Registry,
		metrics:     NewMetrics(opts.Registry),
		logger:      opts.Logger,
	}, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	s.handle(mux, "/health", s.handleHealth)
	s.handle(mux, "/v1/voice/transcribe", s.handleTranscribe)
	s.handle(mux, "/v1/voice/extract", s.handleExtract)
	s.handle(mux, "/v1/voice/clarify", s.handleClarify)
	s.handle(mux, "/v1/ideas", s.handleSubmit)
	s.handle(mux, "/v1/ideas/brief", s.handleBrief)
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

func (s *Server) handle(mux *http.ServeMux, route string, h http.HandlerFunc) {
	mux.Handle(route, s.logMiddleware(route, h))
}

// --- Handlers ---

type healthResp struct {
	OK          bool   `json:"ok"`
	Mode        string `json:"mode"`
	LLMProvider string `json:"llm_provider"`
	Model       string `json:"model"`
	STT         string `json:"stt"`
}

type transcribeResp struct {
	Transcript          string  `json:"transcript"`
	Language            string  `json:"language"`
	DialectHint         *string `json:"dialect_hint"`
	LanguageProbability float64 `json:"language_probability"`
}

type extractReq struct {
	Text         string `json:"text"`
	LanguageHint string `json:"language_hint"`
	DialectHint  string `json:"dialect_hint"`
}

type clarifyReq struct {
	Draft       idea.Draft `json:"draft"`
	AnswersText string     `json:"answers_text"`
	Questions   []string   `json:"questions"`
}

type briefReq struct {
	Draft idea.Draft `json:"draft"`
}

type briefResp struct {
	publisher.Brief
	MissingFields []idea.FieldID `json:"missing_fields"`
	Questions     []string       `json:"questions"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	mode := "llm"
	if s.genAgent == nil {
		mode = "llm-disabled"
	}
	writeJSON(w, http.StatusOK, healthResp{
		OK:          true,
		Mode:        mode,
		LLMProvider: s.health.LLMProvider,
		Model:       s.health.Model,
		STT:         s.health.STT,
	})
}

func (s *Server) handleTranscribe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUpload)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "audio file too large")
			return
		}
		writeError(w, http.StatusBadRequest, "multipart field 'file' is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(audio) == 0 {
		writeError(w, http.StatusBadRequest, "Empty audio file")
		return
	}
	if s.transcriber == nil {
		writeError(w, http.StatusInternalServerError, stt.ErrNotConfigured.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	start := time.Now()
	res, err := s.transcriber.Transcribe(ctx, audio, hdr.Filename)
	s.metrics.observeCall("transcribe", start)
	if err != nil {
		var de *stt.DecodeError
		switch {
		case errors.Is(err, stt.ErrEmptyAudio), errors.As(err, &de):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, stt.ErrNotConfigured):
			writeError(w, http.StatusInternalServerError, err.Error())
		default:
			writeError(w, http.StatusBadGateway, err.Error())
		}
		return
	}

	resp := transcribeResp{
		Transcript:          res.Transcript,
		Language:            res.Language,
		LanguageProbability: res.LanguageProbability,
	}
	if hint := res.DialectHint(); hint != "" {
		resp.DialectHint = &hint
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.genAgent == nil {
		writeError(w, http.StatusInternalServerError, s.llmDisabled)
		return
	}
	var req extractReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	start := time.Now()
	res, err := s.genAgent.Extract(ctx, generator.ExtractInput{
		Transcript:   req.Text,
		LanguageHint: req.LanguageHint,
		DialectHint:  req.DialectHint,
	})
	s.metrics.observeCall("extract", start)
	if err != nil {
		writeCycleError(w, err)
		return
	}
	s.metrics.observeGate("extract", gateOutcome(res.Complete()))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleClarify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.genAgent == nil {
		writeError(w, http.StatusInternalServerError, s.llmDisabled)
		return
	}
	var req clarifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	start := time.Now()
	res, err := s.genAgent.Clarify(ctx, generator.ClarifyInput{
		Draft:     req.Draft,
		Answers:   req.AnswersText,
		Questions: req.Questions,
	})
	s.metrics.observeCall("clarify", start)
	if err != nil {
		writeCycleError(w, err)
		return
	}
	s.metrics.observeGate("clarify", gateOutcome(res.Complete()))
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req publisher.SubmitParams
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sub, rej := s.pub.Submit(req)
	if rej != nil {
		s.metrics.observeGate("submit", "rejected")
		writeJSON(w, http.StatusUnprocessableEntity, rej)
		return
	}
	s.metrics.observeGate("submit", "accepted")
	writeJSON(w, http.StatusOK, sub)
}

func (s *Server) handleBrief(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var req briefReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	b, err := publisher.RenderBrief(req.Draft)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	ev := idea.Evaluate(req.Draft)
	writeJSON(w, http.StatusOK, briefResp{Brief: b, MissingFields: ev.MissingFields, Questions: ev.Questions})
}

// --- Helpers ---

func gateOutcome(complete bool) string {
	if complete {
		return "complete"
	}
	return "incomplete"
}

func writeCycleError(w http.ResponseWriter, err error) {
	switch {
	case generator.IsConfigError(err):
		writeError(w, http.StatusInternalServerError, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, err.Error())
	default:
		writeError(w, http.StatusBadGateway, err.Error())
	}
}

type errorResp struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, errorResp{Error: msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.metrics.observeRequest(route, rec.status)
		s.logger.Info("request",
			"method", r.Method,
			"route", route,
			"status", rec.status,
			"duration", time.Since(start))
	})
}
