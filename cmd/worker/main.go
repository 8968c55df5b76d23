package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/dharsanguruparan/vdocsign/internal/api"
	"github.com/dharsanguruparan/vdocsign/internal/config"
	"github.com/dharsanguruparan/vdocsign/internal/database"
	"github.com/dharsanguruparan/vdocsign/internal/logger"
	"github.com/dharsanguruparan/vdocsign/internal/repository"
	"github.com/dharsanguruparan/vdocsign/internal/s3storage"
	"github.com/dharsanguruparan/vdocsign/internal/worker"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logger.New(cfg.Environment)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pool, err := database.Connect(ctx, cfg.DatabaseURL, int32(cfg.ArchiveWorkers)+2)
	if err != nil {
		log.Fatal("connect database", zap.Error(err))
	}
	defer pool.Close()
	if err := database.EnsureSchema(ctx, pool); err != nil {
		log.Fatal("ensure schema", zap.Error(err))
	}
	repo := repository.NewArchiveRepository(pool)

	store, err := s3storage.New(cfg)
	if err != nil {
		log.Fatal("init storage", zap.Error(err))
	}
	if err := store.EnsureBucket(ctx); err != nil {
		log.Fatal("ensure bucket", zap.Error(err))
	}

	// Signed files are public paths on the API host; no credentials needed.
	files := api.New(cfg.APIBaseURL, nil,
		api.WithHTTPClient(&http.Client{Timeout: cfg.RequestTimeout}),
		api.WithLogger(log))

	server := asynq.NewServer(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, asynq.Config{
		Concurrency: cfg.ArchiveWorkers,
		Logger:      log.Sugar(),
	})
	processor := worker.NewProcessor(repo, store, files, log)
	mux := processor.Handler()

	log.Info("archive worker starting",
		zap.String("redis", cfg.RedisAddr),
		zap.String("bucket", cfg.ArchiveBucket),
		zap.Int("concurrency", cfg.ArchiveWorkers))
	if err := serve(ctx, server, mux); err != nil {
		log.Error("worker stopped", zap.Error(err))
		os.Exit(1)
	}
	log.Info("archive worker stopped")
}

// taskServer is the part of *asynq.Server that serve drives.
type taskServer interface {
	Start(handler asynq.Handler) error
	Shutdown()
}

// serve starts srv and shuts it down once when ctx is done.
func serve(ctx context.Context, srv taskServer, handler asynq.Handler) error {
	if err := srv.Start(handler); err != nil {
		return err
	}
	<-ctx.Done()
	srv.Shutdown()
	return nil
}
