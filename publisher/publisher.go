package publisher

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"voice_idea_intake/idea"
)

// StatusSubmitted is the only terminal status a submission reaches.
const StatusSubmitted = "submitted"

// SubmitParams is a caller-asserted final draft plus optional capture context.
type SubmitParams struct {
	Draft       idea.Draft `json:"draft"`
	Transcript  string     `json:"transcript,omitempty"`
	Language    string     `json:"language,omitempty"`
	DialectHint string     `json:"dialect_hint,omitempty"`
}

// Submission is an accepted idea.
type Submission struct {
	ID          string    `json:"id"`
	Status      string    `json:"status"`
	SubmittedAt time.Time `json:"-"`
}

// Rejection is the structured payload for an incomplete submission.
type Rejection struct {
	Error         string         `json:"error"`
	MissingFields []idea.FieldID `json:"missing_fields"`
	Questions     []string       `json:"questions"`
}

// Publisher is the terminal step: it finalizes drafts that pass the
// completeness gate and mints their identifiers.
type Publisher struct {
	mint   func() string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// WithIDSource replaces the uuid generator, mainly for tests.
func WithIDSource(mint func() string) Option {
	return func(p *Publisher) {
		p.mint = mint
	}
}

// New creates a Publisher minting random UUIDs.
func New(opts ...Option) *Publisher {
	p := &Publisher{
		mint:   uuid.NewString,
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit runs the submission gate. Exactly one return value is non-zero:
// the accepted Submission, or a Rejection listing what is still missing.
func (p *Publisher) Submit(params SubmitParams) (Submission, *Rejection) {
	dec := idea.Submit(params.Draft, p.mint)
	if !dec.Accepted {
		p.logger.Info("submission rejected",
			"missing_fields", dec.Evaluation.MissingFields,
			"language", params.Language)
		return Submission{}, &Rejection{
			Error:         "Incomplete submission",
			MissingFields: dec.Evaluation.MissingFields,
			Questions:     dec.Evaluation.Questions,
		}
	}

	sub := Submission{ID: dec.ID, Status: StatusSubmitted, SubmittedAt: p.now()}
	p.logger.Info("submission accepted",
		"id", sub.ID,
		"language", params.Language,
		"transcript_len", len(params.Transcript))
	return sub, nil
}
