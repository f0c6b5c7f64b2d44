// Package idea holds the structured idea record built up across extraction
// and clarification passes, and the deterministic gates applied to it.
package idea

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldID names one of the nine trackable draft fields.
type FieldID string

const (
	FieldTitle            FieldID = "title"
	FieldSummary          FieldID = "summary"
	FieldProblem          FieldID = "problem"
	FieldProposedSolution FieldID = "proposed_solution"
	FieldTargetAudience   FieldID = "target_audience"
	FieldExpectedImpact   FieldID = "expected_impact"
	FieldCategory         FieldID = "category"
	FieldPriority         FieldID = "priority"
	FieldKeywords         FieldID = "keywords"
)

// RequiredFields lists the fields that must be present before submission,
// in declaration order.
var RequiredFields = []FieldID{
	FieldTitle,
	FieldSummary,
	FieldProblem,
	FieldProposedSolution,
	FieldTargetAudience,
	FieldExpectedImpact,
}

// TrackedFields lists every field that carries provenance.
var TrackedFields = []FieldID{
	FieldTitle,
	FieldSummary,
	FieldProblem,
	FieldProposedSolution,
	FieldTargetAudience,
	FieldExpectedImpact,
	FieldCategory,
	FieldPriority,
	FieldKeywords,
}

// Priority is the optional urgency of an idea.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Valid reports whether p is one of low, medium, high.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

func (p *Priority) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("priority: %w", err)
	}
	v := Priority(s)
	if !v.Valid() {
		return fmt.Errorf("priority %q: must be one of low, medium, high", s)
	}
	*p = v
	return nil
}

// Draft is the structured idea record. Empty required strings mean absent;
// nil optional fields mean unset.
type Draft struct {
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Problem          string    `json:"problem"`
	ProposedSolution string    `json:"proposed_solution"`
	TargetAudience   string    `json:"target_audience"`
	ExpectedImpact   string    `json:"expected_impact"`
	Category         *string   `json:"category"`
	Priority         *Priority `json:"priority"`
	Keywords         []string  `json:"keywords"`
}

// Text returns the value of a required string field. Optional and unknown
// fields return "" and false.
func (d Draft) Text(f FieldID) (string, bool) {
	switch f {
	case FieldTitle:
		return d.Title, true
	case FieldSummary:
		return d.Summary, true
	case FieldProblem:
		return d.Problem, true
	case FieldProposedSolution:
		return d.ProposedSolution, true
	case FieldTargetAudience:
		return d.TargetAudience, true
	case FieldExpectedImpact:
		return d.ExpectedImpact, true
	}
	return "", false
}

// Present reports whether the required field f has non-blank content.
func (d Draft) Present(f FieldID) bool {
	v, ok := d.Text(f)
	return ok && strings.TrimSpace(v) != ""
}

// Clone returns a deep copy so callers can hand drafts across passes
// without sharing pointer or slice storage.
func (d Draft) Clone() Draft {
	out := d
	if d.Category != nil {
		c := *d.Category
		out.Category = &c
	}
	if d.Priority != nil {
		p := *d.Priority
		out.Priority = &p
	}
	if d.Keywords != nil {
		out.Keywords = append([]string(nil), d.Keywords...)
	}
	return out
}

// StringPtr is a small helper for building drafts with optional text.
func StringPtr(s string) *string { return &s }

// PriorityPtr returns a pointer to p.
func PriorityPtr(p Priority) *Priority { return &p }
