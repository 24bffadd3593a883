package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storymode/cmd/storymode/ui"
	"storymode/internal/cleanup"
	"storymode/internal/config"
	"storymode/internal/llm"
	"storymode/internal/logging"
	"storymode/internal/observability"
	"storymode/internal/reward"
	"storymode/internal/store"
	"storymode/internal/story"
	"storymode/internal/transport"
)

func createApp() (ui.Model, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return ui.Model{}, nil, err
	}

	log, err := logging.New(cfg.Debug)
	if err != nil {
		return ui.Model{}, nil, fmt.Errorf("initialize logger: %w", err)
	}

	ctx := context.Background()
	tracerProvider, err := observability.InitTracing(ctx, observability.Config{
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Tracing.Environment,
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
	})
	if err != nil {
		log.Warn("tracing init failed", zap.Error(err))
	} else if tracerProvider.IsEnabled() {
		log.Debug("tracing enabled", zap.String("endpoint", cfg.Tracing.Endpoint))
	}

	library, err := story.LoadLibrary(cfg.ChapterDir)
	if err != nil {
		return ui.Model{}, nil, fmt.Errorf("load chapter library: %w", err)
	}

	db, err := store.NewSQLite(cfg.DBPath)
	if err != nil {
		return ui.Model{}, nil, fmt.Errorf("open store: %w", err)
	}

	channels := transport.NewInMemory()
	scheduler := cleanup.NewScheduler(channels, log)
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

	userID := "console-" + uuid.NewString()[:8]
	model := ui.NewModel(engine, library, channels, log, userID, cfg.Debug)

	shutdown := func() {
		scheduler.Stop()
		if err := db.Close(); err != nil {
			log.Warn("closing store", zap.Error(err))
		}
		if tracerProvider != nil {
			_ = tracerProvider.Shutdown(context.Background())
		}
		_ = log.Sync()
	}

	return model, shutdown, nil
}
