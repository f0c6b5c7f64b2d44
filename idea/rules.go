package idea

var questionTemplates = map[FieldID]string{
	FieldTitle:            "What would be a short, clear title for this idea?",
	FieldSummary:          "Can you summarize the idea in 4–6 lines for evaluators?",
	FieldProblem:          "What problem does this idea solve? Please describe it clearly.",
	FieldProposedSolution: "What is the proposed solution? Describe the approach at a high level.",
	FieldTargetAudience:   "Who is the target audience or stakeholders for this idea?",
	FieldExpectedImpact:   "What is the expected impact/benefit (time saved, cost, satisfaction, compliance)?",
}

// Evaluation is the completeness gate result for one draft.
type Evaluation struct {
	MissingFields []FieldID `json:"missing_fields"`
	Questions     []string  `json:"questions"`
}

// Complete reports whether no required field is missing.
func (e Evaluation) Complete() bool { return len(e.MissingFields) == 0 }

// Evaluate returns the required fields absent from d, in declaration order,
// together with one clarification question per missing field.
func Evaluate(d Draft) Evaluation {
	missing := make([]FieldID, 0, len(RequiredFields))
	for _, f := range RequiredFields {
		if !d.Present(f) {
			missing = append(missing, f)
		}
	}
	return Evaluation{
		MissingFields: missing,
		Questions:     Generate(missing),
	}
}

// Generate maps missing fields to their fixed question text, preserving order.
// Fields without a template are skipped.
func Generate(missing []FieldID) []string {
	questions := make([]string, 0, len(missing))
	for _, f := range missing {
		if q, ok := questionTemplates[f]; ok {
			questions = append(questions, q)
		}
	}
	return questions
}

// Question returns the template for f, if any.
func Question(f FieldID) (string, bool) {
	q, ok := questionTemplates[f]
	return q, ok
}
