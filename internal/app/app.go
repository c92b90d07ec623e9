package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"

	"github.com/mutationwave/entitlements/internal/config"
	"github.com/mutationwave/entitlements/internal/transport/middleware"
)

// Run is the application entry point. It loads configuration, opens the
// stores, serves the REST API and runs the background sweepers until ctx is
// cancelled.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := NewLogger(cfg.Log)
	logger.Info("starting application",
		slog.String("version", BuildVersion()),
		slog.String("log_level", cfg.Log.Level),
		slog.String("store", cfg.Store.Driver),
	)

	clock := clockwork.NewRealClock()

	stores, err := OpenStores(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer stores.Close()

	objects, err := OpenObjectStore(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("open object store: %w", err)
	}

	svcs := NewServices(logger, cfg, clock, stores, objects)

	if cfg.Auth.BootstrapAdmin != "" {
		created, err := svcs.Auth.EnsureAdmin(ctx, "Administrator", cfg.Auth.BootstrapAdmin, cfg.Auth.BootstrapPassword)
		if err != nil {
			return fmt.Errorf("bootstrap admin: %w", err)
		}
		if created {
			logger.Info("bootstrap admin created", slog.String("email", cfg.Auth.BootstrapAdmin))
		}
	}

	limiter := middleware.NewRateLimiter(clock)
	srv := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port)),
		Handler:      NewHTTPHandler(logger, cfg, clock, stores, svcs, limiter),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("http server listening", slog.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return svcs.Keys.RunSweeper(gctx, cfg.Idempotency.SweepInterval, cfg.Idempotency.Retention)
	})

	g.Go(func() error {
		return limiter.Run(gctx, cfg.RateLimit.CleanupInterval)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
