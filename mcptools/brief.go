package mcptools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"voice_idea_intake/publisher"
)

// BriefTool handles the idea_brief MCP tool.
type BriefTool struct{}

func NewBriefTool() *BriefTool {
	return &BriefTool{}
}

// Definition returns the MCP tool definition for idea_brief.
func (t *BriefTool) Definition() mcp.Tool {
	return mcp.NewTool("idea_brief",
		mcp.WithDescription("Render a draft as a Markdown brief for evaluators. Missing fields show as placeholders."),
		draftParam(),
	)
}

// Handle processes the idea_brief tool call.
func (t *BriefTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := draftArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := publisher.RenderBrief(d)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to render brief: %v", err)), nil
	}
	return mcp.NewToolResultText(b.Markdown), nil
}
