package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/actuallystonmai/artist-recommender/internal/cache"
	"github.com/actuallystonmai/artist-recommender/internal/config"
	"github.com/actuallystonmai/artist-recommender/internal/engine"
	"github.com/actuallystonmai/artist-recommender/internal/handler"
	"github.com/actuallystonmai/artist-recommender/internal/logging"
	"github.com/actuallystonmai/artist-recommender/internal/repository"
	"github.com/actuallystonmai/artist-recommender/internal/retrain"
	"github.com/actuallystonmai/artist-recommender/internal/router"
	"github.com/actuallystonmai/artist-recommender/internal/service"
	"github.com/actuallystonmai/artist-recommender/migrations"
)

type serveOptions struct {
	migrate bool
	seed    bool
}

func newServeCommand() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.migrate, "migrate", true, "Apply the schema before serving")
	cmd.Flags().BoolVar(&opts.seed, "seed", true, "Seed demo data when the database is empty")

	return cmd
}

func serve(ctx context.Context, cfg *config.Config, opts serveOptions) error {
	// ------------ PostgreSQL ---------------
	pool, err := connectDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if opts.migrate {
		if err := migrations.Up(ctx, pool); err != nil {
			return err
		}
		logging.Info().Msg("migrations applied successfully")
	}
	if opts.seed {
		if err := checkSeed(ctx, pool); err != nil {
			return fmt.Errorf("check seed: %w", err)
		}
	}

	// ------------ Redis ---------------
	var artistCache service.ArtistCache
	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse redis url: %w", err)
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()

		c := cache.NewArtistCache(rdb, cfg.ArtistCacheTTL)
		if err := c.Ping(ctx); err != nil {
			// Enrichment falls back to Postgres on every cache error.
			logging.Warn().Err(err).Msg("redis unavailable at startup")
		} else {
			logging.Info().Msg("connected to Redis")
		}
		artistCache = c
	}

	// ------------ Engine & trainer ---------------
	engineClient, err := engine.NewClient(engine.Config{
		Executable:       cfg.Recommender.Executable,
		ScriptPath:       cfg.Recommender.ScriptPath,
		Timeout:          cfg.Recommender.Timeout,
		BreakerThreshold: cfg.Recommender.BreakerThreshold,
		BreakerCooldown:  cfg.Recommender.BreakerCooldown,
	})
	if err != nil {
		return fmt.Errorf("create engine client: %w", err)
	}

	trainer := retrain.New(retrain.Config{
		Executable: cfg.Trainer.Executable,
		ScriptPath: cfg.Trainer.ScriptPath,
		Timeout:    cfg.Trainer.Timeout,
	})
	trainerCtx, stopTrainer := context.WithCancel(context.Background())
	trainerDone := make(chan struct{})
	go func() {
		defer close(trainerDone)
		trainer.Run(trainerCtx)
	}()
	defer func() {
		stopTrainer()
		<-trainerDone
	}()

	// ---------------- Server --------------------
	repo := repository.New(pool)
	svc := service.NewService(repo, repo, artistCache, engineClient, trainer)
	h := handler.NewHandler(svc)

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.Setup(h, router.Options{
			RequestTimeout: cfg.HTTP.RequestTimeout,
			CORSOrigins:    cfg.HTTP.CORSOrigins,
			LoginRateLimit: cfg.HTTP.LoginRateLimit,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("server listening")
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logging.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	logging.Info().Msg("server stopped")
	return nil
}
