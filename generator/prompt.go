package generator

import (
	"encoding/json"
	"fmt"
	"strings"

	"voice_idea_intake/idea"
)

// Prompt is the message pair sent to the LLM.
type Prompt struct {
	System string
	User   string
	Schema *Schema

	// Input is the ExtractInput or ClarifyInput that System and User were
	// rendered from. Remote clients never send it; MockLLM answers from it
	// because it cannot read the prose.
	Input any
}

// ExtractInput is a fresh extraction request.
type ExtractInput struct {
	Transcript   string
	LanguageHint string
	DialectHint  string
}

// ClarifyInput updates an existing draft from the user's answers.
type ClarifyInput struct {
	Draft     idea.Draft
	Answers   string
	Questions []string
}

const extractSystem = "You are a government idea-submission extraction engine.\n" +
	"Convert free-form speech (Arabic dialects incl. Emirati, or English) into a structured, evaluator-ready idea submission.\n\n" +
	"Rules:\n" +
	"- Use ONLY information explicitly present in the transcript.\n" +
	"- Required fields not stated → empty string + meta.status='missing'.\n" +
	"- Light inference → meta.status='guessed' (confidence ≤ 0.7).\n" +
	"- Explicit info → meta.status='confirmed' (confidence ≥ 0.85).\n" +
	"- Title ≤ 80 characters.\n" +
	"- Summary: concise, professional, review-ready.\n" +
	"- No filler, no hallucination.\n"

const clarifySystem = "You update a structured government idea submission using user clarifications.\n\n" +
	"Rules:\n" +
	"- Update ONLY fields supported by the user's answers.\n" +
	"- Do NOT invent or assume missing information.\n" +
	"- Unanswered required fields stay empty + meta.status='missing'.\n" +
	"- Strong info → confirmed (≥ 0.85), partial → guessed (≤ 0.7).\n"

// BuildExtractPrompt renders the extraction request.
func BuildExtractPrompt(in ExtractInput) Prompt {
	lang := in.LanguageHint
	if lang == "" {
		lang = "unknown"
	}
	dialect := in.DialectHint
	if dialect == "" {
		dialect = "none"
	}
	user := fmt.Sprintf("Transcript:\n%s\n\nHints: language_hint=%s; dialect_hint=%s", in.Transcript, lang, dialect)

	return Prompt{
		System: extractSystem,
		User:   user,
		Schema: ExtractionSchema(),
		Input:  in,
	}
}

// BuildClarifyPrompt renders the clarification request with the full
// current draft, the questions shown and the answers given.
func BuildClarifyPrompt(in ClarifyInput) (Prompt, error) {
	draftJSON, err := json.Marshal(in.Draft)
	if err != nil {
		return Prompt{}, fmt.Errorf("encode draft: %w", err)
	}

	qBlock := "(none)"
	if len(in.Questions) > 0 {
		lines := make([]string, 0, len(in.Questions))
		for _, q := range in.Questions {
			lines = append(lines, "- "+q)
		}
		qBlock = strings.Join(lines, "\n")
	}

	var sb strings.Builder
	sb.WriteString("Current draft (JSON):\n")
	sb.Write(draftJSON)
	sb.WriteString("\n\nQuestions asked:\n")
	sb.WriteString(qBlock)
	sb.WriteString("\n\nUser answers:\n")
	sb.WriteString(in.Answers)
	sb.WriteString("\n")

	return Prompt{
		System: clarifySystem,
		User:   sb.String(),
		Schema: ExtractionSchema(),
		Input:  in,
	}, nil
}
