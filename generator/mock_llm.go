package generator

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"voice_idea_intake/idea"
)

// MockLLM is an offline heuristic stand-in for local debugging. It answers
// with the same JSON contract as the real model so PostProcess is exercised.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt) (string, error) {
	var (
		draft idea.Draft
		meta  idea.Provenance
	)
	switch in := prompt.Input.(type) {
	case ExtractInput:
		draft, meta = mockExtract(in.Transcript)
	case ClarifyInput:
		draft, meta = mockClarify(in.Draft.Clone(), in.Answers)
	default:
		return "", errors.New("mock llm: unsupported prompt input")
	}
	out, err := json.Marshal(struct {
		Draft     idea.Draft      `json:"draft"`
		FieldMeta idea.Provenance `json:"field_meta"`
	}{draft, meta})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func mockExtract(text string) (idea.Draft, idea.Provenance) {
	var d idea.Draft
	t := strings.TrimSpace(text)
	if t != "" {
		d.Summary = strings.TrimSpace(truncateRunes(t, 350))
		d.Problem = strings.TrimSpace(truncateRunes(t, 500))
	}
	if first := strings.TrimSpace(strings.SplitN(t, "\n", 2)[0]); first != "" {
		d.Title = truncateRunes(first, 80)
	}

	p := idea.Derive(d)
	if d.Title != "" {
		p.Set(idea.FieldTitle, idea.FieldMeta{Status: idea.StatusGuessed, Confidence: 0.6})
	}
	if d.Summary != "" {
		p.Set(idea.FieldSummary, idea.FieldMeta{Status: idea.StatusGuessed, Confidence: 0.55})
	}
	if d.Problem != "" {
		p.Set(idea.FieldProblem, idea.FieldMeta{Status: idea.StatusGuessed, Confidence: 0.55})
	}
	return d, p
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func mockClarify(d idea.Draft, answers string) (idea.Draft, idea.Provenance) {
	ans := strings.TrimSpace(answers)
	if ans == "" {
		return d, idea.Derive(d)
	}
	lower := strings.ToLower(ans)

	if blank(d.TargetAudience) && containsAny(lower, "audience", "stakeholder", "users") {
		d.TargetAudience = truncateRunes(ans, 250)
	}
	if blank(d.ExpectedImpact) && containsAny(lower, "impact", "benefit", "save", "cost") {
		d.ExpectedImpact = truncateRunes(ans, 350)
	}
	if blank(d.ProposedSolution) {
		d.ProposedSolution = truncateRunes(ans, 800)
	}
	if blank(d.Summary) {
		d.Summary = truncateRunes(ans, 350)
	}

	p := idea.Derive(d)
	for _, f := range idea.RequiredFields {
		if d.Present(f) {
			p.Set(f, idea.FieldMeta{Status: idea.StatusConfirmed, Confidence: 1})
		}
	}
	return d, p
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
