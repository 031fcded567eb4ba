package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/nguyentantai21042004/vidscribe/internal/acquire"
	"github.com/nguyentantai21042004/vidscribe/internal/config"
	"github.com/nguyentantai21042004/vidscribe/internal/jobs"
	"github.com/nguyentantai21042004/vidscribe/internal/logger"
	"github.com/nguyentantai21042004/vidscribe/internal/pipeline"
	"github.com/nguyentantai21042004/vidscribe/internal/server"
	"github.com/nguyentantai21042004/vidscribe/internal/summarize"
	"github.com/nguyentantai21042004/vidscribe/internal/transcribe"
	"github.com/nguyentantai21042004/vidscribe/pkg/executor"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	ctx := context.Background()

	// Load configuration
	store, err := config.NewStore(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := store.Snapshot()

	// Initialize logger
	log := logger.New(cfg.Logging.Level)
	log.Info(ctx, "========================================")
	log.Info(ctx, "Vidscribe: video summarization service")
	log.Info(ctx, "========================================")
	log.Info(ctx, "Transcription model: %s", cfg.Transcriber.Model)
	log.Info(ctx, "Summary model: %s", cfg.Gemini.Model)
	log.Info(ctx, "Max concurrent jobs: %d", cfg.Jobs.MaxConcurrent)
	log.Info(ctx, "Configuration loaded successfully")

	if err := os.MkdirAll(cfg.YTDLP.TempDir, 0755); err != nil {
		log.Error(ctx, "Failed to create audio directory: %v", err)
		os.Exit(1)
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Config hot-reload
	go func() {
		if err := store.Watch(ctx, log); err != nil && ctx.Err() == nil {
			log.Warn(ctx, "Config watcher stopped: %v", err)
		}
	}()

	// Initialize dependencies
	exec := executor.New()
	acquirer := acquire.New(store, exec, log)
	transcriber := transcribe.New(store, log)
	summarizer := summarize.New(store, log)
	orchestrator := pipeline.New(store, acquirer, transcriber, summarizer, log)

	board := jobs.NewStatusBoard()
	manager := jobs.NewManager(store, orchestrator, board, log)
	defer manager.Close()
	go manager.Janitor(ctx)

	srv := server.New(store, manager, board, log)

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		if err := srv.Run(ctx); err != nil {
			errChan <- err
		}
	}()

	log.Info(ctx, "Vidscribe is ready on %s", cfg.Server.Addr)
	log.Info(ctx, "Press Ctrl+C to stop")

	// Wait for shutdown signal or server error
	select {
	case <-sigChan:
		log.Info(ctx, "Shutdown signal received")
	case err := <-errChan:
		log.Error(ctx, "Server error: %v", err)
	}

	// Graceful shutdown
	log.Info(ctx, "Shutting down gracefully...")
	cancel()

	log.Info(ctx, "Vidscribe stopped")
}
