package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	server "lightbnb/internal/adapters/http_server"
	"lightbnb/internal/adapters/observability"
	redisad "lightbnb/internal/adapters/redis"
	"lightbnb/internal/app"
	"lightbnb/internal/domain"
	"lightbnb/internal/shared"
	"lightbnb/internal/storage"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// store
	h, err := storage.Open(ctx, storage.Options{
		Driver:      cfg.StoreDriver,
		MySQLDSN:    cfg.MySQLDSN,
		PostgresURL: cfg.PostgresURL,
		Migrate:     cfg.MigrateOnStart,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("open store failed")
	}
	defer h.Close()
	log.Info().Str("driver", cfg.StoreDriver).Msg("database connection ok")

	// cache is optional; searches go straight to the store without it
	var cache domain.Cache
	rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := rc.Ping(ctx); err != nil {
		log.Warn().Err(err).Str("addr", cfg.RedisAddr).Msg("redis unavailable, search cache disabled")
		_ = rc.Close()
	} else {
		cache = rc
		defer rc.Close()
	}

	// deps
	handlers := &server.Handlers{
		Properties:   app.NewPropertyService(h.Store, h.Builder, cache, cfg.CacheTTL()),
		Reservations: app.NewReservationService(h.Store),
		Users:        app.NewUserService(h.Store, 0),
	}

	// http
	srv := server.New(cfg.RateLimitRPS)
	srv.Mount("/metrics", observability.MetricsHandler(reg))
	srv.MountHandlers(handlers)

	httpSrv := &http.Server{Addr: cfg.HTTPAddr, Handler: srv.Mux(), ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("http shutdown failed")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("API stopped")
}
