package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"voice_idea_intake/mcptools"
	webserver "voice_idea_intake/server"
)

func serveCmd(g *globalFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(g)
			if err != nil {
				return err
			}
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func runServe(ctx context.Context, a *app) error {
	agent, disabled, err := a.agent()
	if err != nil {
		return err
	}
	tr, err := a.transcriber()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	srv, err := webserver.New(webserver.Options{
		Agent:             agent,
		LLMDisabledReason: disabled,
		Transcriber:       tr,
		Publisher:         a.publisher(),
		Health: webserver.HealthInfo{
			LLMProvider: a.cfg.LLM.Provider,
			Model:       a.cfg.LLM.Model,
			STT:         sttMode(a),
		},
		RequestTimeout: a.cfg.Server.RequestTimeout.Std(),
		MaxUploadBytes: a.cfg.Server.MaxUploadBytes,
		Registry:       reg,
		Logger:         a.logger,
	})
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting web server", "addr", httpSrv.Addr, "llm", agent != nil, "stt", tr != nil)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}

func sttMode(a *app) string {
	if a.cfg.STT.Provider == "mock" {
		return "mock"
	}
	if !a.cfg.STT.Configured() {
		return "disabled"
	}
	return a.cfg.STT.Model
}

func mcpCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the intake tools over MCP stdio",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(g)
			if err != nil {
				return err
			}
			agent, disabled, err := a.agent()
			if err != nil {
				return err
			}
			return server.ServeStdio(mcptools.NewServer(Version, agent, disabled, a.publisher()))
		},
	}
}
