// cmd/research-server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"research-assistant/internal/common/config"
	"research-assistant/internal/common/logger"
	"research-assistant/internal/common/observability"
	"research-assistant/internal/pipeline"
	"research-assistant/internal/server"
	"research-assistant/internal/sources/arxiv"
	"research-assistant/internal/sources/websearch"
	"research-assistant/internal/sources/wikipedia"
	"research-assistant/internal/synthesis"
)

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting research server...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	// --- Evidence source clients ---
	webClient := websearch.NewClient(&websearch.Config{
		BaseURL:    cfg.Sources.WebSearch.BaseURL,
		MaxResults: cfg.Sources.WebSearch.MaxResults,
		Timeout:    config.GetDuration(cfg.Sources.WebSearch.Timeout),
	}, log)

	wikiClient := wikipedia.NewClient(&wikipedia.Config{
		BaseURL:  cfg.Sources.Wikipedia.BaseURL,
		MaxChars: cfg.Sources.Wikipedia.MaxChars,
		Timeout:  config.GetDuration(cfg.Sources.Wikipedia.Timeout),
	}, log)

	arxivClient := arxiv.NewClient(&arxiv.Config{
		BaseURL:  cfg.Sources.Arxiv.BaseURL,
		MaxChars: cfg.Sources.Arxiv.MaxChars,
		Timeout:  config.GetDuration(cfg.Sources.Arxiv.Timeout),
	}, log)

	// --- Synthesis client ---
	synthClient := synthesis.NewClient(&synthesis.Config{
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		MaxTokens:   cfg.LLM.MaxTokens,
		Temperature: cfg.LLM.Temperature,
		Timeout:     config.GetDuration(cfg.LLM.Timeout),
	}, log)

	pipe := pipeline.New(webClient, wikiClient, arxivClient, synthClient, obs, log)

	srv := server.New(cfg.Server, pipe, cfg.LLM.APIKey, log)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			zapLog.Fatal("http server failed", zap.Error(err))
		}
	case sig := <-stop:
		zapLog.Info("shutdown signal received", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("graceful shutdown failed", zap.Error(err))
	}

	zapLog.Info("Research server stopped")
}
