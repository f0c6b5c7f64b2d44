// Command ideas captures spoken ideas, turns them into structured drafts,
// clarifies gaps with the submitter and records complete submissions.
package main

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"voice_idea_intake/config"
	"voice_idea_intake/generator"
	"voice_idea_intake/publisher"
	"voice_idea_intake/stt"
)

const (
	Version = "0.1.0"
	appName = "ideas"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
}

func rootCmd() *cobra.Command {
	var g globalFlags

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Voice idea intake",
		Long: `Turns a spoken or typed idea into a structured draft, asks targeted
questions for whatever is missing and submits the idea once it is complete.

Configuration comes from defaults, an optional JSONC or YAML file (--config)
and OPENROUTER_* / STT_* environment variables.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "Config file path (JSON, JSONC or YAML)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides log.level")

	cmd.AddCommand(
		serveCmd(&g),
		mcpCmd(&g),
		transcribeCmd(&g),
		extractCmd(&g),
		clarifyCmd(&g),
		submitCmd(&g),
		briefCmd(&g),
		sessionCmd(&g),
		&cobra.Command{
			Use:   "version",
			Short: "Print version information",
			Run: func(cmd *cobra.Command, args []string) {
				fmt.Printf("%s version %s\n", appName, Version)
			},
		},
	)
	return cmd
}

// app holds what every subcommand needs after startup.
type app struct {
	cfg    config.Config
	logger *slog.Logger
}

func loadApp(g *globalFlags) (*app, error) {
	cfg, err := config.Load(g.configPath, config.Environ())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.Log.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: parseLevel(level)}))
	slog.SetDefault(logger)
	if cfg.Source != "" {
		logger.Debug("config loaded", "path", cfg.Source)
	}
	return &app{cfg: cfg, logger: logger}, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

func buildLLM(cfg config.LLMConfig) (generator.LLMClient, error) {
	return generator.NewLLM(generator.LLMSettings{
		Provider:  cfg.Provider,
		Model:     cfg.Model,
		APIKey:    cfg.APIKey,
		BaseURL:   cfg.BaseURL,
		SiteURL:   cfg.SiteURL,
		AppName:   cfg.AppName,
		MaxTokens: cfg.MaxTokens,
		Timeout:   cfg.Timeout.Std(),
	})
}

// agent returns a nil agent, without error, when the model is not
// configured, together with the configuration error text. Callers that can
// run without it keep serving and report that text per request.
func (a *app) agent() (*generator.Agent, string, error) {
	llm, err := buildLLM(a.cfg.LLM)
	if err != nil {
		if generator.IsConfigError(err) {
			a.logger.Warn("llm disabled", "reason", err)
			return nil, err.Error(), nil
		}
		return nil, "", err
	}
	agent, err := generator.NewAgent(llm, generator.WithLogger(a.logger))
	return agent, "", err
}

// requireAgent is agent for commands that cannot do anything without a model.
func (a *app) requireAgent() (*generator.Agent, error) {
	llm, err := buildLLM(a.cfg.LLM)
	if err != nil {
		return nil, err
	}
	return generator.NewAgent(llm, generator.WithLogger(a.logger))
}

// transcriber returns nil when speech-to-text is not configured.
func (a *app) transcriber() (stt.Transcriber, error) {
	c := a.cfg.STT
	if c.Provider == "mock" {
		return stt.MockTranscriber{}, nil
	}
	if !c.Configured() {
		a.logger.Warn("speech-to-text disabled", "reason", "STT_BASE_URL not set")
		return nil, nil
	}
	return stt.NewOpenAITranscriber(stt.Settings{
		BaseURL: c.BaseURL,
		APIKey:  c.APIKey,
		Model:   c.Model,
		Timeout: c.Timeout.Std(),
	}, a.logger)
}

func (a *app) publisher() *publisher.Publisher {
	return publisher.New(publisher.WithLogger(a.logger))
}

// readDraftFile loads a draft from path ("-" for stdin). The file may hold
// a bare draft or a full extraction result with a "draft" key.
func readDraftFile(path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = readAllStdin()
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read draft: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("read draft %s: invalid JSON", path)
	}
	if inner := gjson.GetBytes(data, "draft"); inner.IsObject() {
		return []byte(inner.Raw), nil
	}
	return data, nil
}

// writeOutput prints data, or replaces the file at path atomically.
func writeOutput(path string, data []byte) error {
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	if path == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
