package mcptools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"voice_idea_intake/publisher"
)

// SubmitTool handles the idea_submit MCP tool.
type SubmitTool struct {
	pub *publisher.Publisher
}

func NewSubmitTool(pub *publisher.Publisher) *SubmitTool {
	return &SubmitTool{pub: pub}
}

// Definition returns the MCP tool definition for idea_submit.
func (t *SubmitTool) Definition() mcp.Tool {
	return mcp.NewTool("idea_submit",
		mcp.WithDescription(
			"Submit a final draft. Incomplete drafts are rejected with the missing fields and questions; "+
				"complete drafts receive a unique id and status submitted.",
		),
		draftParam(),
		mcp.WithString("transcript",
			mcp.Description("Original transcript, kept for context"),
		),
		mcp.WithString("language",
			mcp.Description("Transcript language: ar, en or unknown"),
		),
		mcp.WithString("dialect_hint",
			mcp.Description("Dialect hint, if any"),
		),
	)
}

// Handle processes the idea_submit tool call.
func (t *SubmitTool) Handle(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	d, err := draftArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sub, rej := t.pub.Submit(publisher.SubmitParams{
		Draft:       d,
		Transcript:  req.GetString("transcript", ""),
		Language:    req.GetString("language", ""),
		DialectHint: req.GetString("dialect_hint", ""),
	})
	if rej != nil {
		data, err := json.MarshalIndent(rej, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode rejection: %v", err)), nil
		}
		return mcp.NewToolResultError(string(data)), nil
	}
	return jsonResult(sub)
}
