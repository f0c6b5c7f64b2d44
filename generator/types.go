package generator

import "voice_idea_intake/idea"

// Result is the gated outcome of one extraction or clarification pass.
type Result struct {
	Draft         idea.Draft      `json:"draft"`
	FieldMeta     idea.Provenance `json:"field_meta"`
	MissingFields []idea.FieldID  `json:"missing_fields"`
	Questions     []string        `json:"questions"`
}

func gated(d idea.Draft, p idea.Provenance) Result {
	ev := idea.Evaluate(d)
	return Result{
		Draft:         d,
		FieldMeta:     p,
		MissingFields: ev.MissingFields,
		Questions:     ev.Questions,
	}
}

// Complete reports whether the pass left no required field missing.
func (r Result) Complete() bool { return len(r.MissingFields) == 0 }
