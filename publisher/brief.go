package publisher

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"voice_idea_intake/idea"
)

const notProvided = "_Not provided_"

// Brief is the evaluator-facing rendering of a draft.
type Brief struct {
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

var briefSections = []struct {
	Field   idea.FieldID
	Heading string
}{
	{idea.FieldSummary, "Summary"},
	{idea.FieldProblem, "Problem"},
	{idea.FieldProposedSolution, "Proposed solution"},
	{idea.FieldTargetAudience, "Target audience"},
	{idea.FieldExpectedImpact, "Expected impact"},
}

// RenderBrief lays the draft out as Markdown and converts it to HTML.
// Incomplete drafts render with placeholders. Raw HTML in field text is
// dropped by the converter.
func RenderBrief(d idea.Draft) (Brief, error) {
	md := briefMarkdown(d)
	html, err := mdToHTML(md)
	if err != nil {
		return Brief{}, err
	}
	return Brief{Markdown: md, HTML: html}, nil
}

func briefMarkdown(d idea.Draft) string {
	var b strings.Builder

	title := strings.TrimSpace(d.Title)
	if title == "" {
		title = "Untitled idea"
	}
	fmt.Fprintf(&b, "# %s\n\n", singleLine(title))

	var facts []string
	if d.Category != nil && strings.TrimSpace(*d.Category) != "" {
		facts = append(facts, "- **Category:** "+singleLine(*d.Category))
	}
	if d.Priority != nil {
		facts = append(facts, "- **Priority:** "+string(*d.Priority))
	}
	if len(d.Keywords) > 0 {
		facts = append(facts, "- **Keywords:** "+singleLine(strings.Join(d.Keywords, ", ")))
	}
	if len(facts) > 0 {
		b.WriteString(strings.Join(facts, "\n"))
		b.WriteString("\n\n")
	}

	for _, s := range briefSections {
		fmt.Fprintf(&b, "## %s\n\n", s.Heading)
		text, _ := d.Text(s.Field)
		text = strings.TrimSpace(text)
		if text == "" {
			text = notProvided
		}
		b.WriteString(text)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func singleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}
