package generator

import (
	"context"
	"fmt"
	"time"
)

// LLMClient abstracts the structured-inference model so it can be swapped or
// mocked. Implementations that call a model use only prompt.System,
// prompt.User and prompt.Schema; prompt.Input is for offline stand-ins such
// as MockLLM.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings is the configuration handed to concrete clients.
type LLMSettings struct {
	Provider  string
	Model     string
	APIKey    string
	BaseURL   string
	SiteURL   string
	AppName   string
	MaxTokens int
	Timeout   time.Duration
}

// NewLLM builds the client named by s.Provider. A missing credential yields
// a *ConfigError so callers can keep running in a disabled mode.
func NewLLM(s LLMSettings) (LLMClient, error) {
	switch s.Provider {
	case "", "openrouter", "openai":
		llm, err := NewOpenAILLMFromConfig(&s)
		if err != nil {
			return nil, err
		}
		return llm, nil
	case "mock":
		return MockLLM{}, nil
	default:
		return nil, &ConfigError{Collaborator: "llm", Reason: fmt.Sprintf("provider %q not supported", s.Provider)}
	}
}
