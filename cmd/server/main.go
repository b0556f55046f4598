// cmd/server/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/codr1/proclubs/internal/config"
	"github.com/codr1/proclubs/internal/db"
	"github.com/codr1/proclubs/internal/ratelimit"
	"github.com/codr1/proclubs/internal/scheduler"
)

const (
	defaultConfigPath = "config/app.yaml"
	shutdownTimeout   = 30 * time.Second
)

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Features.EnableDebug || cfg.Draw.LogEvents {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.App.Environment == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
	log.Logger = log.With().Str("app", cfg.App.Name).Logger()
}

func configPath() string {
	path := flag.String("config", "", "Path to the YAML configuration file")
	flag.Parse()
	if *path != "" {
		return *path
	}
	if env := os.Getenv("APP_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}

func main() {
	cfg, err := config.Load(configPath())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	setupLogger(cfg)

	database, err := db.NewFromConfig(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close()

	limiter := ratelimit.New(&ratelimit.Config{
		DrawCooldown:     cfg.RateLimit.DrawCooldown,
		DrawMaxPerHour:   cfg.RateLimit.DrawMaxPerHour,
		DrawMaxIPPerHour: cfg.RateLimit.DrawMaxIPPerHour,
	})
	defer limiter.Close()

	server, err := newServer(cfg, database, limiter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize server")
	}

	if cfg.Features.EnableScheduler {
		if err := startScheduler(cfg, database, limiter); err != nil {
			log.Fatal().Err(err).Msg("Failed to start scheduler")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Int("port", cfg.App.Port).Str("environment", cfg.App.Environment).Msg("Starting server")
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("Shutting down server")
		if cfg.Features.EnableScheduler {
			if err := scheduler.Stop(); err != nil {
				log.Error().Err(err).Msg("Failed to stop scheduler")
			}
		}
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown error: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server terminated with error")
		os.Exit(1)
	}
}

func startScheduler(cfg *config.Config, database *db.DB, limiter *ratelimit.Limiter) error {
	if err := scheduler.Init(); err != nil {
		return err
	}
	if err := scheduler.RegisterDrawRequestJob(database, cfg, limiter); err != nil {
		return err
	}
	return scheduler.Start()
}
