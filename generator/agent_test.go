package generator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voice_idea_intake/idea"
)

// scriptedLLM returns canned content and records every prompt it receives.
type scriptedLLM struct {
	mu      sync.Mutex
	content string
	err     error
	prompts []Prompt
}

func (s *scriptedLLM) Complete(_ context.Context, p Prompt) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, p)
	return s.content, s.err
}

func (s *scriptedLLM) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.prompts)
}

func newTestAgent(t *testing.T, llm LLMClient) *Agent {
	t.Helper()
	a, err := NewAgent(llm)
	require.NoError(t, err)
	return a
}

func TestNewAgent_RequiresLLM(t *testing.T) {
	_, err := NewAgent(nil)
	assert.Error(t, err)
}

func TestAgent_Extract(t *testing.T) {
	llm := &scriptedLLM{content: fullResponse}
	a := newTestAgent(t, llm)

	res, err := a.Extract(context.Background(), ExtractInput{
		Transcript:   "We should let people book licence renewals online.",
		LanguageHint: "en",
	})
	require.NoError(t, err)

	assert.Equal(t, "Reduce queue times", res.Draft.Title)
	want := []idea.FieldID{idea.FieldProposedSolution, idea.FieldTargetAudience, idea.FieldExpectedImpact}
	if diff := cmp.Diff(want, res.MissingFields); diff != "" {
		t.Errorf("missing fields mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, idea.Generate(want), res.Questions)
	assert.Equal(t, idea.StatusConfirmed, res.FieldMeta.Title.Status)

	require.Equal(t, 1, llm.calls())
	p := llm.prompts[0]
	assert.Contains(t, p.User, "book licence renewals online")
	assert.Contains(t, p.User, "language_hint=en; dialect_hint=none")
	require.NotNil(t, p.Schema)
	assert.Equal(t, "IdeaExtraction", p.Schema.Name)
}

func TestAgent_ExtractParseFailure(t *testing.T) {
	for _, content := range []string{"", "not json at all"} {
		a := newTestAgent(t, &scriptedLLM{content: content})

		res, err := a.Extract(context.Background(), ExtractInput{Transcript: "x"})

		require.Error(t, err)
		assert.True(t, IsParseError(err))
		assert.Equal(t, Result{}, res)
	}
}

func TestAgent_ExtractCollaboratorError(t *testing.T) {
	boom := errors.New("connection reset")
	a := newTestAgent(t, &scriptedLLM{err: &CollaboratorError{Collaborator: "llm", Err: boom}})

	_, err := a.Extract(context.Background(), ExtractInput{Transcript: "x"})

	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
}

func TestAgent_ClarifyReplacesDraft(t *testing.T) {
	llm := &scriptedLLM{content: `{"draft":{
		"title":"Reduce queue times","summary":"s","problem":"p",
		"proposed_solution":"Online booking","target_audience":"Residents",
		"expected_impact":"Halved waiting time","category":null,"priority":"high","keywords":null
	},"field_meta":{"proposed_solution":{"status":"confirmed","confidence":0.9}}}`}
	a := newTestAgent(t, llm)

	prior := idea.Draft{
		Title:    "Reduce queue times",
		Summary:  "s",
		Problem:  "p",
		Category: idea.StringPtr("services"),
	}
	questions := idea.Evaluate(prior).Questions

	res, err := a.Clarify(context.Background(), ClarifyInput{
		Draft:     prior,
		Answers:   "Residents book online; waiting time halves.",
		Questions: questions,
	})
	require.NoError(t, err)

	assert.True(t, res.Complete())
	assert.Empty(t, res.Questions)
	assert.Nil(t, res.Draft.Category, "collaborator output replaces prior fields")
	assert.Equal(t, idea.FieldMeta{Status: idea.StatusConfirmed, Confidence: 0.9}, res.FieldMeta.ProposedSolution)
	assert.Equal(t, idea.DefaultFieldMeta, res.FieldMeta.Title)

	require.Equal(t, 1, llm.calls())
	p := llm.prompts[0]
	assert.Contains(t, p.User, `"category":"services"`)
	assert.Contains(t, p.User, "- "+questions[0])
	assert.Contains(t, p.User, "Residents book online")
}

func TestAgent_ClarifyBlankAnswersIsNoop(t *testing.T) {
	llm := &scriptedLLM{content: fullResponse}
	a := newTestAgent(t, llm)

	prior := idea.Draft{Title: "Reduce queue times", Keywords: []string{"queues"}}
	before := idea.Evaluate(prior)

	res, err := a.Clarify(context.Background(), ClarifyInput{Draft: prior, Answers: "", Questions: before.Questions})
	require.NoError(t, err)

	assert.Equal(t, 0, llm.calls())
	if diff := cmp.Diff(prior, res.Draft); diff != "" {
		t.Errorf("draft changed (-before +after):\n%s", diff)
	}
	assert.Equal(t, before.MissingFields, res.MissingFields)
	assert.Equal(t, before.Questions, res.Questions)
}

func TestAgent_ClarifyParseFailure(t *testing.T) {
	a := newTestAgent(t, &scriptedLLM{content: "{"})

	_, err := a.Clarify(context.Background(), ClarifyInput{Draft: idea.Draft{}, Answers: "something"})

	require.Error(t, err)
	assert.True(t, IsParseError(err))
}

func TestAgent_WithMockLLM_Loop(t *testing.T) {
	a := newTestAgent(t, MockLLM{})
	ctx := context.Background()

	res, err := a.Extract(ctx, ExtractInput{Transcript: "Reduce queue times\nPeople wait hours at the licensing office."})
	require.NoError(t, err)
	assert.Equal(t, "Reduce queue times", res.Draft.Title)
	assert.Equal(t, []idea.FieldID{idea.FieldProposedSolution, idea.FieldTargetAudience, idea.FieldExpectedImpact}, res.MissingFields)
	assert.Equal(t, idea.FieldMeta{Status: idea.StatusGuessed, Confidence: 0.6}, res.FieldMeta.Title)

	res, err = a.Clarify(ctx, ClarifyInput{
		Draft:     res.Draft,
		Answers:   "Our users are residents; the benefit is saving hours of waiting.",
		Questions: res.Questions,
	})
	require.NoError(t, err)
	assert.True(t, res.Complete())
	assert.Equal(t, idea.StatusConfirmed, res.FieldMeta.TargetAudience.Status)
}
