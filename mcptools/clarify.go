package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"voice_idea_intake/generator"
)

// ClarifyTool handles the idea_clarify MCP tool.
type ClarifyTool struct {
	agent    *generator.Agent
	disabled string
}

func NewClarifyTool(agent *generator.Agent, disabled string) *ClarifyTool {
	return &ClarifyTool{agent: agent, disabled: disabledReason(disabled)}
}

// Definition returns the MCP tool definition for idea_clarify.
func (t *ClarifyTool) Definition() mcp.Tool {
	return mcp.NewTool("idea_clarify",
		mcp.WithDescription(
			"Merge the user's answers into an existing draft. The returned draft replaces the input; "+
				"call again with the new questions until missing_fields is empty.",
		),
		draftParam(),
		mcp.WithString("answers",
			mcp.Required(),
			mcp.Description("The user's free-text answers. Blank answers return the draft unchanged"),
		),
		mcp.WithString("questions_json",
			mcp.Description("JSON array of the questions the answers respond to"),
		),
	)
}

// Handle processes the idea_clarify tool call.
func (t *ClarifyTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if t.agent == nil {
		return mcp.NewToolResultError(t.disabled), nil
	}
	d, err := draftArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	questions, err := questionsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res, err := t.agent.Clarify(ctx, generator.ClarifyInput{
		Draft:     d,
		Answers:   req.GetString("answers", ""),
		Questions: questions,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("clarification failed: %v", err)), nil
	}
	return jsonResult(res)
}
