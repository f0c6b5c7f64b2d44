// Package mcptools exposes the intake pipeline as MCP tools so an assistant
// can drive extraction, clarification and submission over stdio.
package mcptools

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"voice_idea_intake/idea"
)

const defaultLLMDisabled = "llm not configured"

func disabledReason(reason string) string {
	if reason == "" {
		return defaultLLMDisabled
	}
	return reason
}

// draftArg decodes the JSON-encoded draft argument.
func draftArg(req mcp.CallToolRequest) (idea.Draft, error) {
	raw := strings.TrimSpace(req.GetString("draft_json", ""))
	if raw == "" {
		return idea.Draft{}, fmt.Errorf("'draft_json' is required")
	}
	var d idea.Draft
	if err := json.Unmarshal([]byte(raw), &d); err != nil {
		return idea.Draft{}, fmt.Errorf("'draft_json' is not a valid draft: %v", err)
	}
	return d, nil
}

// questionsArg decodes the optional JSON array of previously asked questions.
func questionsArg(req mcp.CallToolRequest) ([]string, error) {
	raw := strings.TrimSpace(req.GetString("questions_json", ""))
	if raw == "" {
		return nil, nil
	}
	var qs []string
	if err := json.Unmarshal([]byte(raw), &qs); err != nil {
		return nil, fmt.Errorf("'questions_json' must be a JSON array of strings: %v", err)
	}
	return qs, nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}

func draftParam() mcp.ToolOption {
	return mcp.WithString("draft_json",
		mcp.Required(),
		mcp.Description("The current draft as a JSON object with title, summary, problem, proposed_solution, target_audience, expected_impact and optional category, priority, keywords"),
	)
}
