package idea

// FieldStatus describes how a field value was obtained.
type FieldStatus string

const (
	StatusConfirmed FieldStatus = "confirmed"
	StatusGuessed   FieldStatus = "guessed"
	StatusMissing   FieldStatus = "missing"
)

// Valid reports whether s is a known status tag.
func (s FieldStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusGuessed, StatusMissing:
		return true
	}
	return false
}

// FieldMeta is the provenance entry for one field.
type FieldMeta struct {
	Status     FieldStatus `json:"status"`
	Confidence float64     `json:"confidence"`
}

// DefaultFieldMeta is substituted when a collaborator omits or garbles a
// field's entry.
var DefaultFieldMeta = FieldMeta{Status: StatusGuessed, Confidence: 0.5}

// Valid reports whether the entry has a known status and a confidence in [0, 1].
func (m FieldMeta) Valid() bool {
	return m.Status.Valid() && m.Confidence >= 0 && m.Confidence <= 1
}

// Provenance holds one entry per tracked field.
type Provenance struct {
	Title            FieldMeta `json:"title"`
	Summary          FieldMeta `json:"summary"`
	Problem          FieldMeta `json:"problem"`
	ProposedSolution FieldMeta `json:"proposed_solution"`
	TargetAudience   FieldMeta `json:"target_audience"`
	ExpectedImpact   FieldMeta `json:"expected_impact"`
	Category         FieldMeta `json:"category"`
	Priority         FieldMeta `json:"priority"`
	Keywords         FieldMeta `json:"keywords"`
}

// DefaultProvenance returns a Provenance with every slot set to DefaultFieldMeta.
func DefaultProvenance() Provenance {
	var p Provenance
	for _, f := range TrackedFields {
		p.Set(f, DefaultFieldMeta)
	}
	return p
}

func (p *Provenance) slot(f FieldID) *FieldMeta {
	switch f {
	case FieldTitle:
		return &p.Title
	case FieldSummary:
		return &p.Summary
	case FieldProblem:
		return &p.Problem
	case FieldProposedSolution:
		return &p.ProposedSolution
	case FieldTargetAudience:
		return &p.TargetAudience
	case FieldExpectedImpact:
		return &p.ExpectedImpact
	case FieldCategory:
		return &p.Category
	case FieldPriority:
		return &p.Priority
	case FieldKeywords:
		return &p.Keywords
	}
	return nil
}

// Get returns the entry for f. Unknown fields yield DefaultFieldMeta and false.
func (p Provenance) Get(f FieldID) (FieldMeta, bool) {
	s := p.slot(f)
	if s == nil {
		return DefaultFieldMeta, false
	}
	return *s, true
}

// Set stores m for f and reports whether f is a tracked field.
func (p *Provenance) Set(f FieldID, m FieldMeta) bool {
	s := p.slot(f)
	if s == nil {
		return false
	}
	*s = m
	return true
}

// Derive builds provenance from field presence alone: present fields are
// guessed at 0.5, absent required fields are missing at 0.0. Optional fields
// count as present when set.
func Derive(d Draft) Provenance {
	p := DefaultProvenance()
	for _, f := range RequiredFields {
		if !d.Present(f) {
			p.Set(f, FieldMeta{Status: StatusMissing, Confidence: 0})
		}
	}
	if d.Category == nil {
		p.Set(FieldCategory, FieldMeta{Status: StatusMissing, Confidence: 0})
	}
	if d.Priority == nil {
		p.Set(FieldPriority, FieldMeta{Status: StatusMissing, Confidence: 0})
	}
	if d.Keywords == nil {
		p.Set(FieldKeywords, FieldMeta{Status: StatusMissing, Confidence: 0})
	}
	return p
}
