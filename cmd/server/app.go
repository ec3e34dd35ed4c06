package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/keithcsxyz/yt2mp3/internal/api"
	"github.com/keithcsxyz/yt2mp3/internal/config"
	"github.com/keithcsxyz/yt2mp3/internal/downloader"
	"github.com/keithcsxyz/yt2mp3/internal/extractor"
	"github.com/keithcsxyz/yt2mp3/internal/jobs"
	"github.com/keithcsxyz/yt2mp3/internal/logger"
	"github.com/keithcsxyz/yt2mp3/internal/quota"
	"github.com/keithcsxyz/yt2mp3/internal/server"
)

func run(cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}

	logg, err := logger.New(cfg.Log.Path, logger.ParseLevel(cfg.Log.Level), cfg.Log.IncludeStdout)
	if err != nil {
		return err
	}

	if err := server.PrepareFilesystem(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := extractor.Install(ctx); err != nil {
		logg.Warn("yt-dlp install check failed, relying on system binary: %v", err)
	}

	ex := extractor.New(cfg, logg)
	runner := downloader.NewRunner(cfg, ex, logg)
	manager := jobs.NewManager(cfg, runner, logg)

	var tracker quota.Tracker = quota.NewMemoryTracker(cfg.SessionMaxJobs)
	if client := quota.NewRedisClient(&cfg.Redis); client != nil {
		if err := client.Ping(ctx).Err(); err != nil {
			logg.Warn("redis not reachable, falling back to in-memory quota: %v", err)
		} else {
			tracker = quota.NewRedisTracker(client, cfg.SessionMaxJobs, logg)
			logg.Info("redis quota store connected at %s", cfg.Redis.Addr)
		}
	}

	jobs.StartJanitor(ctx, cfg, logg)

	handler := api.NewHandler(cfg, manager, tracker, api.NewSessionStore(cfg.SessionSecret), logg)
	e := api.NewRouter(handler, cfg, logg)

	srv := &http.Server{Addr: cfg.Port, Handler: e}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logg.Info("yt2mp3 listening on %s (artifacts in %s)", cfg.Port, cfg.DownloadDir)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	logg.Info("shutdown complete")
	return nil
}
