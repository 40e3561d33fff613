package main

import (
	"context"
	"log"
	"time"

	"studyforge/internal/activities"
	"studyforge/internal/cache"
	"studyforge/internal/config"
	"studyforge/internal/logger"
	"studyforge/internal/storage"
	"studyforge/internal/workflows"

	"github.com/joho/godotenv"
	tclient "go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	zl, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	c, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		zl.Fatalw("temporal dial failed", "error", err)
	}
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(ctx, cfg.PostgresURL)
	if err != nil {
		zl.Fatalw("postgres connect failed", "error", err)
	}
	defer db.Close()

	store := cache.NewStore(ctx, cfg.RedisAddr, zl)

	w := worker.New(c, cfg.TemporalTaskQueue, worker.Options{})
	workflows.Register(w)
	a, err := activities.New(cfg, db, store, zl)
	if err != nil {
		zl.Fatalw("activities init failed", "error", err)
	}
	activities.Register(w, a)

	zl.Infow("studyforge worker started",
		"temporal", cfg.TemporalAddress,
		"queue", cfg.TemporalTaskQueue,
		"llm_providers", cfg.LLMProviders,
		"embed_providers", cfg.EmbedProviders,
		"concept_providers", cfg.ConceptProviders,
	)
	if err := w.Run(worker.InterruptCh()); err != nil {
		zl.Fatalw("worker stopped", "error", err)
	}
}
