package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"lightbnb/internal/adapters/fixtures"
	"lightbnb/internal/adapters/observability"
	redisad "lightbnb/internal/adapters/redis"
	"lightbnb/internal/app"
	"lightbnb/internal/domain"
	"lightbnb/internal/shared"
	"lightbnb/internal/storage"
)

func main() {
	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var src domain.FixtureSource = fixtures.NewFileSource(cfg.FixturesDir)
	origin := cfg.FixturesDir
	if cfg.FixturesURL != "" {
		hs, err := fixtures.NewHTTPSource(cfg.FixturesURL, 5)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize fixtures client")
		}
		src, origin = hs, cfg.FixturesURL
	}

	log.Info().
		Str("driver", cfg.StoreDriver).
		Str("fixtures", origin).
		Int("workers", cfg.SeedWorkers).
		Bool("reset", cfg.SeedReset).
		Msg("seeder starting")

	fx, err := src.Load(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("load fixtures failed")
	}

	// the seeder always migrates; it is the first thing run against a fresh database
	h, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.StoreDriver,
		MySQLDSN:    cfg.MySQLDSN,
		PostgresURL: cfg.PostgresURL,
		Migrate:     true,
		Reset:       cfg.SeedReset,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("open store failed")
	}
	defer h.Close()

	var cache domain.Cache
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := rc.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, cached searches will expire by TTL")
	} else {
		cache = rc
	}
	defer rc.Close()

	if err := app.NewSeedService(h.Store, cache).Seed(ctx, fx, cfg.SeedWorkers); err != nil {
		log.Error().Err(err).Msg("seed failed")
		h.Close()
		os.Exit(1)
	}
	log.Info().Msg("seeding completed")
}
