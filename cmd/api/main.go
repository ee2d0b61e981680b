package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/volunteerhub/internal/app"
	"github.com/geocoder89/volunteerhub/internal/config"
	"github.com/geocoder89/volunteerhub/internal/db"
	"github.com/geocoder89/volunteerhub/internal/http/handlers"
	"github.com/geocoder89/volunteerhub/internal/http/middlewares"
	"github.com/geocoder89/volunteerhub/internal/observability"
	"github.com/geocoder89/volunteerhub/internal/redisclient"
	"github.com/geocoder89/volunteerhub/internal/repo/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	if err := run(); err != nil {
		slog.Error("startup failed", "err", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTLPEndpoint, cfg.Env)
	if err != nil {
		return fmt.Errorf("tracer: %w", err)
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracer(c); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	prom := observability.NewProm(reg)

	opts := app.Options{
		Config:   cfg,
		Log:      log,
		Prom:     prom,
		Gatherer: reg,
	}

	switch cfg.Store {
	case config.StoreMemory:
		log.Warn("using in-memory store; data is lost on restart")
		opts.Stores = app.MemoryStores(memory.NewStore())

	default:
		pool, err := db.NewPool(ctx, cfg.DBURL)
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		defer pool.Close()

		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}

		opts.Stores = app.PostgresStores(pool, prom)
		opts.Checks = append(opts.Checks, handlers.Check{Name: "postgres", Ping: pool.Ping})
	}

	if cfg.RedisEnabled() {
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer rdb.Close()

		opts.APILimiter = middlewares.NewRedisLimiter(rdb, "api", cfg.RateLimit, cfg.RateLimitWindow)
		opts.AuthLimiter = middlewares.NewRedisLimiter(rdb, "auth", cfg.AuthRateLimit, cfg.RateLimitWindow)
		opts.Checks = append(opts.Checks, handlers.Check{Name: "redis", Ping: rdb.Ping})
	}

	a := app.New(opts)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           a.Router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "err", err)
	}

	// let queued reset deliveries finish before the pool closes
	done := make(chan struct{})
	go func() {
		a.Accounts.Wait()
		close(done)
	}()

	select {
	case <-done:
		log.Info("shutdown complete")
	case <-shutdownCtx.Done():
		log.Error("shutdown timed out waiting for background work")
	}

	return nil
}
