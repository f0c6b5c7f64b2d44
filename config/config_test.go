package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("", nil)
	require.NoError(t, err)

	assert.Equal(t, "openrouter", cfg.LLM.Provider)
	assert.Equal(t, "openai/gpt-5-mini", cfg.LLM.Model)
	assert.Equal(t, "https://openrouter.ai/api/v1", cfg.LLM.BaseURL)
	assert.Equal(t, 6000, cfg.LLM.MaxTokens)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.False(t, cfg.LLM.Configured())
	assert.False(t, cfg.STT.Configured())
	assert.Empty(t, cfg.Source)
}

func TestLoad_JSONCWithComments(t *testing.T) {
	path := writeFile(t, "ideas.json", `{
		// local model gateway
		"llm": {"model": "openai/gpt-5", "timeout": "45s",},
		"server": {"addr": ":9090", "request_timeout": 30},
	}`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "openai/gpt-5", cfg.LLM.Model)
	assert.Equal(t, 45*time.Second, cfg.LLM.Timeout.Std())
	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 30*time.Second, cfg.Server.RequestTimeout.Std())
	assert.Equal(t, "AI Voice Ideas Platform", cfg.LLM.AppName, "unset keys keep defaults")
	assert.Equal(t, path, cfg.Source)
}

func TestLoad_YAML(t *testing.T) {
	path := writeFile(t, "ideas.yaml", `
llm:
  provider: mock
stt:
  provider: mock
  timeout: 10s
log:
  level: debug
`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "mock", cfg.LLM.Provider)
	assert.True(t, cfg.LLM.Configured())
	assert.True(t, cfg.STT.Configured())
	assert.Equal(t, 10*time.Second, cfg.STT.Timeout.Std())
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "ideas.json", `{"llm": {"model": "from-file"}}`)

	cfg, err := Load(path, map[string]string{
		"OPENROUTER_API_KEY": "sk-or-v1-abc",
		"OPENROUTER_MODEL":   "from-env",
		"STT_BASE_URL":       "http://localhost:8000/v1",
		"IDEAS_ADDR":         "127.0.0.1:7000",
	})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.LLM.Model)
	assert.True(t, cfg.LLM.Configured())
	assert.True(t, cfg.STT.Configured())
	assert.Equal(t, "127.0.0.1:7000", cfg.Server.Addr)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"), nil)

	assert.ErrorIs(t, err, ErrConfigFileNotFound)
}

func TestLoad_InvalidFiles(t *testing.T) {
	tests := []struct {
		name, file, content string
	}{
		{"broken json", "c.json", `{"llm": `},
		{"broken yaml", "c.yml", "llm: [unclosed"},
		{"bad duration", "c.json", `{"llm": {"timeout": "soon"}}`},
		{"bad provider", "c.json", `{"llm": {"provider": "bard"}}`},
		{"bad level", "c.yaml", "log:\n  level: loud\n"},
		{"zero tokens", "c.json", `{"llm": {"max_tokens": 0}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeFile(t, tt.file, tt.content), nil)
			assert.ErrorIs(t, err, ErrConfigInvalid)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	data, err := Duration(90 * time.Second).MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"1m30s"`, string(data))
}
