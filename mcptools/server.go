package mcptools

import (
	"github.com/mark3labs/mcp-go/server"

	"voice_idea_intake/generator"
	"voice_idea_intake/publisher"
)

const instructions = `Voice idea intake. Typical flow:
1. idea_extract with the transcript.
2. While missing_fields is not empty, ask the user the returned questions and call idea_clarify with their answers.
3. idea_submit with the final draft.
Use idea_evaluate to re-check a draft without a model call and idea_brief to show it to the user.`

// NewServer builds the MCP server with every intake tool registered.
// agent may be nil; the model-backed tools then fail with llmDisabled.
func NewServer(version string, agent *generator.Agent, llmDisabled string, pub *publisher.Publisher) *server.MCPServer {
	s := server.NewMCPServer(
		"voice-idea-intake",
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions(instructions),
	)

	evaluateTool := NewEvaluateTool()
	s.AddTool(evaluateTool.Definition(), evaluateTool.Handle)

	extractTool := NewExtractTool(agent, llmDisabled)
	s.AddTool(extractTool.Definition(), extractTool.Handle)

	clarifyTool := NewClarifyTool(agent, llmDisabled)
	s.AddTool(clarifyTool.Definition(), clarifyTool.Handle)

	submitTool := NewSubmitTool(pub)
	s.AddTool(submitTool.Definition(), submitTool.Handle)

	briefTool := NewBriefTool()
	s.AddTool(briefTool.Definition(), briefTool.Handle)

	return s
}
