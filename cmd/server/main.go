// Package main contains the entrypoint for the SkinSide API server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/skinside/skinside/internal/auth"
	"github.com/skinside/skinside/internal/config"
	"github.com/skinside/skinside/internal/database"
	"github.com/skinside/skinside/internal/gemini"
	"github.com/skinside/skinside/internal/logger"
	"github.com/skinside/skinside/internal/matching"
	"github.com/skinside/skinside/internal/server"
	"github.com/skinside/skinside/internal/tasks"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components (config, logger, db, gemini client,
// matcher, http server, scheduler), blocks until shutdown, and returns
// the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log.Level, cfg.Log.JSON)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	// Without an API key the server still serves profiles and trials;
	// match runs fail fast with a configuration error.
	var requester gemini.Client
	if cfg.Gemini.APIKey != "" {
		requester, err = gemini.NewClient(ctx, cfg.Gemini, log)
		if err != nil {
			log.Error("Failed to initialize Gemini client", "error", err)
			return 1
		}
	} else {
		log.Warn("No Gemini API key configured, trial matching is disabled")
	}

	matcher := matching.NewService(store, requester, log, cfg.Matching.MinScore)

	tokens, err := auth.NewTokenService(cfg.Auth.Secret)
	if err != nil {
		log.Error("Failed to initialize token service", "error", err)
		return 1
	}

	srv := server.New(cfg.Server, store, matcher, tokens, log)

	sched, err := tasks.NewScheduler(log, cfg.Scheduler, tasks.Register(tasks.Deps{
		Store:  store,
		Logger: log,
	}))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gCtx)
	})

	g.Go(func() error {
		if err := sched.Start(); err != nil {
			return err
		}
		<-gCtx.Done()
		return sched.Stop()
	})

	log.Info("Server started")
	runErr := g.Wait()
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Server stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Server stopped gracefully")
	return 0
}
