package mcptools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"voice_idea_intake/generator"
)

// ExtractTool handles the idea_extract MCP tool.
type ExtractTool struct {
	agent    *generator.Agent
	disabled string
}

// NewExtractTool creates an ExtractTool. A nil agent makes every call fail
// with disabled as the error text.
func NewExtractTool(agent *generator.Agent, disabled string) *ExtractTool {
	return &ExtractTool{agent: agent, disabled: disabledReason(disabled)}
}

// Definition returns the MCP tool definition for idea_extract.
func (t *ExtractTool) Definition() mcp.Tool {
	return mcp.NewTool("idea_extract",
		mcp.WithDescription(
			"Extract a structured idea draft from a free-form transcript (Arabic, English or mixed). "+
				"Returns the draft, per-field provenance, the missing required fields and clarification questions.",
		),
		mcp.WithString("transcript",
			mcp.Required(),
			mcp.Description("The transcript text of the spoken idea"),
		),
		mcp.WithString("language_hint",
			mcp.Description("Detected language: ar, en or unknown (default: unknown)"),
		),
		mcp.WithString("dialect_hint",
			mcp.Description("Dialect hint, e.g. arabic (default: none)"),
		),
	)
}

// Handle processes the idea_extract tool call.
func (t *ExtractTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.agent == nil {
		return mcp.NewToolResultError(t.disabled), nil
	}
	transcript := req.GetString("transcript", "")
	if strings.TrimSpace(transcript) == "" {
		return mcp.NewToolResultError("'transcript' is required"), nil
	}

	res, err := t.agent.Extract(ctx, generator.ExtractInput{
		Transcript:   transcript,
		LanguageHint: req.GetString("language_hint", ""),
		DialectHint:  req.GetString("dialect_hint", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("extraction failed: %v", err)), nil
	}
	return jsonResult(res)
}
