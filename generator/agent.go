package generator

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"voice_idea_intake/idea"
)

// Agent runs the extraction cycle: one collaborator call, response
// validation, then the completeness gate.
type Agent struct {
	llm    LLMClient
	logger *slog.Logger
}

// AgentOption configures an Agent.
type AgentOption func(*Agent)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) AgentOption {
	return func(a *Agent) {
		a.logger = logger
	}
}

func NewAgent(llm LLMClient, opts ...AgentOption) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	a := &Agent{llm: llm, logger: slog.Default()}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Extract turns a transcript into a gated draft.
func (a *Agent) Extract(ctx context.Context, in ExtractInput) (Result, error) {
	start := time.Now()
	res, err := a.run(ctx, BuildExtractPrompt(in))
	if err != nil {
		a.logger.Warn("extraction failed", "transcript_len", len(in.Transcript), "error", err)
		return Result{}, err
	}
	a.logger.Debug("extraction done",
		"transcript_len", len(in.Transcript),
		"language_hint", in.LanguageHint,
		"missing_fields", len(res.MissingFields),
		"duration", time.Since(start))
	return res, nil
}

// Clarify applies the user's answers to the current draft. The collaborator's
// draft replaces the input field by field. Blank answers leave the draft
// untouched and skip the collaborator.
func (a *Agent) Clarify(ctx context.Context, in ClarifyInput) (Result, error) {
	if strings.TrimSpace(in.Answers) == "" {
		d := in.Draft.Clone()
		a.logger.Debug("clarification skipped, no answers")
		return gated(d, idea.Derive(d)), nil
	}

	start := time.Now()
	prompt, err := BuildClarifyPrompt(in)
	if err != nil {
		return Result{}, err
	}
	res, err := a.run(ctx, prompt)
	if err != nil {
		a.logger.Warn("clarification failed", "answers_len", len(in.Answers), "error", err)
		return Result{}, err
	}
	a.logger.Debug("clarification done",
		"answers_len", len(in.Answers),
		"questions", len(in.Questions),
		"missing_fields", len(res.MissingFields),
		"duration", time.Since(start))
	return res, nil
}

func (a *Agent) run(ctx context.Context, prompt Prompt) (Result, error) {
	raw, err := a.llm.Complete(ctx, prompt)
	if err != nil {
		return Result{}, err
	}
	draft, meta, err := PostProcess(raw)
	if err != nil {
		return Result{}, err
	}
	return gated(draft, meta), nil
}
