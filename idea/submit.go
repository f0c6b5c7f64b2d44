package idea

// Decision is the Submission Gate outcome. Exactly one of ID and a non-empty
// Evaluation.MissingFields is set.
type Decision struct {
	Accepted   bool
	ID         string
	Evaluation Evaluation
}

// Submit accepts d only when the completeness gate reports nothing missing,
// in which case mint is called once for the submission identifier. A
// rejected decision carries the missing fields and their questions.
func Submit(d Draft, mint func() string) Decision {
	ev := Evaluate(d)
	if !ev.Complete() {
		return Decision{Evaluation: ev}
	}
	return Decision{Accepted: true, ID: mint(), Evaluation: ev}
}
