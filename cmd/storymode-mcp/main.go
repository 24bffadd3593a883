// storymode-mcp serves the story engine over the Model Context Protocol on
// stdio, so MCP-capable clients can list chapters, play sessions, and read
// the messages the characters send.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"storymode/internal/cleanup"
	"storymode/internal/config"
	"storymode/internal/llm"
	"storymode/internal/logging"
	"storymode/internal/mcp"
	"storymode/internal/observability"
	"storymode/internal/reward"
	"storymode/internal/store"
	"storymode/internal/story"
	"storymode/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer log.Sync()

	tracerProvider, err := observability.InitTracing(ctx, observability.Config{
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
	})
	if err != nil {
		log.Warn("tracing init failed", zap.Error(err))
	} else {
		defer tracerProvider.Shutdown(context.Background())
	}

	library, err := story.LoadLibrary(cfg.ChapterDir)
	if err != nil {
		return fmt.Errorf("load chapter library: %w", err)
	}

	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	channels := transport.NewInMemory()
	scheduler := cleanup.NewScheduler(channels, log)
	defer scheduler.Stop()

	gen := llm.NewService(cfg.OpenAIAPIKey, cfg.Model, log)
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	rewards := reward.NewEngine(library.Pool(), db, rng, log)

	engine := story.NewEngine(
		library,
		story.NewRegistry(cfg.HistorySize),
		db,
		gen,
		channels,
		rewards,
		scheduler,
		log,
		story.Options{TeardownDelay: cfg.TeardownDelay},
	)

	server := mcp.NewServer(engine, library, channels)
	log.Info("serving MCP on stdio", zap.String("db", cfg.DBPath))
	return mcp.Serve(ctx, server)
}
