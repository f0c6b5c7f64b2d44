// Package config loads service configuration from defaults, an optional
// JSONC or YAML file and environment overrides.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"
)

var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrConfigInvalid      = errors.New("invalid config")
)

// Config is the complete service configuration.
type Config struct {
	LLM    LLMConfig    `json:"llm" yaml:"llm"`
	STT    STTConfig    `json:"stt" yaml:"stt"`
	Server ServerConfig `json:"server" yaml:"server"`
	Log    LogConfig    `json:"log" yaml:"log"`

	// Source is the file the config was read from, if any.
	Source string `json:"-" yaml:"-"`
}

// LLMConfig configures the structured-inference model.
type LLMConfig struct {
	Provider  string   `json:"provider" yaml:"provider"` // openrouter | openai | mock
	Model     string   `json:"model" yaml:"model"`
	APIKey    string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL   string   `json:"base_url" yaml:"base_url"`
	SiteURL   string   `json:"site_url" yaml:"site_url"`
	AppName   string   `json:"app_name" yaml:"app_name"`
	MaxTokens int      `json:"max_tokens" yaml:"max_tokens"`
	Timeout   Duration `json:"timeout" yaml:"timeout"`
}

// Configured reports whether extraction calls can be attempted.
func (c LLMConfig) Configured() bool {
	return c.Provider == "mock" || c.APIKey != ""
}

// STTConfig configures the speech-to-text service.
type STTConfig struct {
	Provider string   `json:"provider" yaml:"provider"` // openai | mock
	BaseURL  string   `json:"base_url" yaml:"base_url"`
	APIKey   string   `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	Model    string   `json:"model" yaml:"model"`
	Timeout  Duration `json:"timeout" yaml:"timeout"`
}

// Configured reports whether transcription calls can be attempted.
func (c STTConfig) Configured() bool {
	return c.Provider == "mock" || c.BaseURL != ""
}

// ServerConfig configures the HTTP boundary.
type ServerConfig struct {
	Addr           string   `json:"addr" yaml:"addr"`
	RequestTimeout Duration `json:"request_timeout" yaml:"request_timeout"`
	MaxUploadBytes int64    `json:"max_upload_bytes" yaml:"max_upload_bytes"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `json:"level" yaml:"level"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() Config {
	return Config{
		LLM: LLMConfig{
			Provider:  "openrouter",
			Model:     "openai/gpt-5-mini",
			BaseURL:   "https://openrouter.ai/api/v1",
			SiteURL:   "http://localhost",
			AppName:   "AI Voice Ideas Platform",
			MaxTokens: 6000,
			Timeout:   Duration(180 * time.Second),
		},
		STT: STTConfig{
			Provider: "openai",
			Model:    "whisper-1",
			Timeout:  Duration(120 * time.Second),
		},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: Duration(120 * time.Second),
			MaxUploadBytes: 25 << 20,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load builds the configuration: defaults, then the file at path (if path
// is non-empty it must exist), then environment overrides from env.
func Load(path string, env map[string]string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return Config{}, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
			}
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := parseInto(&cfg, path, data); err != nil {
			return Config{}, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
		}
		cfg.Source = path
	}

	applyEnv(&cfg, env)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func parseInto(cfg *Config, path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return fmt.Errorf("invalid YAML: %w", err)
		}
		return nil
	}
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC: %w", err)
	}
	if err := json.Unmarshal(standardized, cfg); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, env map[string]string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(env[key]); v != "" {
			*dst = v
		}
	}
	set(&cfg.LLM.APIKey, "OPENROUTER_API_KEY")
	set(&cfg.LLM.BaseURL, "OPENROUTER_BASE_URL")
	set(&cfg.LLM.Model, "OPENROUTER_MODEL")
	set(&cfg.LLM.SiteURL, "OPENROUTER_SITE_URL")
	set(&cfg.LLM.AppName, "OPENROUTER_APP_NAME")
	set(&cfg.STT.BaseURL, "STT_BASE_URL")
	set(&cfg.STT.APIKey, "STT_API_KEY")
	set(&cfg.STT.Model, "STT_MODEL")
	set(&cfg.Server.Addr, "IDEAS_ADDR")
}

// Validate checks field values; it does not require credentials.
func (c Config) Validate() error {
	switch c.LLM.Provider {
	case "openrouter", "openai", "mock":
	default:
		return fmt.Errorf("%w: llm.provider %q must be openrouter, openai or mock", ErrConfigInvalid, c.LLM.Provider)
	}
	if c.LLM.Provider != "mock" && c.LLM.Model == "" {
		return fmt.Errorf("%w: llm.model is required", ErrConfigInvalid)
	}
	if c.LLM.MaxTokens <= 0 {
		return fmt.Errorf("%w: llm.max_tokens must be positive", ErrConfigInvalid)
	}
	switch c.STT.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("%w: stt.provider %q must be openai or mock", ErrConfigInvalid, c.STT.Provider)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrConfigInvalid)
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("%w: server.max_upload_bytes must be positive", ErrConfigInvalid)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log.level %q must be debug, info, warn or error", ErrConfigInvalid, c.Log.Level)
	}
	return nil
}

// Environ returns the process environment as a map.
func Environ() map[string]string {
	env := make(map[string]string)
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}
