package mcptools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"voice_idea_intake/idea"
)

// EvaluateTool handles the idea_evaluate MCP tool.
type EvaluateTool struct{}

func NewEvaluateTool() *EvaluateTool {
	return &EvaluateTool{}
}

// Definition returns the MCP tool definition for idea_evaluate.
func (t *EvaluateTool) Definition() mcp.Tool {
	return mcp.NewTool("idea_evaluate",
		mcp.WithDescription(
			"Check a draft against the completeness gate. Returns the missing required fields "+
				"in fixed order and one clarification question per missing field. Makes no model call.",
		),
		draftParam(),
	)
}

// Handle processes the idea_evaluate tool call.
func (t *EvaluateTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := draftArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(idea.Evaluate(d))
}
