package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"studyforge/internal/api"
	"studyforge/internal/cache"
	"studyforge/internal/config"
	"studyforge/internal/logger"
	"studyforge/internal/storage"

	"github.com/joho/godotenv"
	tclient "go.temporal.io/sdk/client"
)

func main() {
	_ = godotenv.Load(".env")
	cfg := config.Load()
	zl, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	db, err := storage.NewDB(dialCtx, cfg.PostgresURL)
	if err != nil {
		zl.Fatalw("postgres connect failed", "error", err)
	}
	defer db.Close()

	store := cache.NewStore(dialCtx, cfg.RedisAddr, zl)

	tc, err := tclient.Dial(tclient.Options{HostPort: cfg.TemporalAddress})
	if err != nil {
		zl.Fatalw("temporal dial failed", "error", err)
	}
	defer tc.Close()

	srv := api.NewServer(cfg, db, store, tc, zl)
	zl.Infow("studyforge api listening",
		"addr", cfg.APIAddr,
		"llm_providers", cfg.LLMProviders,
		"embed_providers", cfg.EmbedProviders,
	)
	if err := srv.Serve(ctx); err != nil {
		zl.Fatalw("api server stopped", "error", err)
	}
}
