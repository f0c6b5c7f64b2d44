package generator

import (
	"context"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const (
	defaultOpenRouterURL = "https://openrouter.ai/api/v1"
	defaultMaxTokens     = 6000
)

// OpenAILLM implements LLMClient using the official openai-go SDK (chat completions).
// It targets any OpenAI-compatible endpoint; OpenRouter is the default.
type OpenAILLM struct {
	Model     string
	MaxTokens int
	Opts      []option.RequestOption
}

func NewOpenAILLMFromConfig(cfg *LLMSettings) (*OpenAILLM, error) {
	if cfg == nil {
		return nil, &ConfigError{Collaborator: "llm", Reason: "settings are nil"}
	}
	if cfg.APIKey == "" {
		return nil, &ConfigError{Collaborator: "llm", Reason: "OPENROUTER_API_KEY not set"}
	}
	if cfg.Model == "" {
		return nil, &ConfigError{Collaborator: "llm", Reason: "model is required"}
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultOpenRouterURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(base),
	}
	if cfg.SiteURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.SiteURL))
	}
	if cfg.AppName != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.AppName))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}
	return &OpenAILLM{Model: cfg.Model, MaxTokens: maxTokens, Opts: opts}, nil
}

// Complete sends the prompt and returns the raw message content. Temperature
// is never sent; some reasoning models reject it.
func (o *OpenAILLM) Complete(ctx context.Context, prompt Prompt) (string, error) {
	client := openai.NewClient(o.Opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(prompt.System),
			openai.UserMessage(prompt.User),
		},
	}
	if o.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(o.MaxTokens))
	}
	if prompt.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   prompt.Schema.Name,
					Strict: openai.Bool(true),
					Schema: prompt.Schema.Definition,
				},
			},
		}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &CollaboratorError{Collaborator: "llm", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ParseError{Collaborator: "llm", Reason: "empty choices"}
	}
	return resp.Choices[0].Message.Content, nil
}
