package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/dukerupert/mercando/internal/auth"
	"github.com/dukerupert/mercando/internal/config"
	"github.com/dukerupert/mercando/internal/database"
	"github.com/dukerupert/mercando/internal/logging"
	"github.com/dukerupert/mercando/internal/metrics"
	"github.com/dukerupert/mercando/internal/middleware"
	"github.com/dukerupert/mercando/internal/server"
	"github.com/dukerupert/mercando/internal/store"
)

func main() {
	configPath := flag.String("config", os.Getenv("MERCANDO_CONFIG"), "path to a YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "mercando: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	hasher, err := auth.NewHasher(cfg.Auth.Hasher)
	if err != nil {
		return err
	}
	if b, ok := hasher.(auth.BcryptHasher); ok {
		b.Cost = cfg.Auth.BcryptCost
		hasher = b
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	opts := server.Options{
		SessionTTL:     cfg.Auth.SessionTTL,
		SecureCookie:   cfg.Server.SecureCookie,
		AuthRateLimit:  cfg.Auth.RateLimit,
		AuthRateWindow: cfg.Auth.RateWindow,
		TrustProxy:     cfg.Server.TrustProxy,
	}
	if cfg.Metrics.Enabled {
		opts.MetricsGatherer = reg
	}
	srv := server.New(db, hasher, m, opts, logger)

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("mercando running", "addr", cfg.Addr(), "db", cfg.Database.Path)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		cleanupLoop(ctx, cfg.Maintenance.CleanupInterval, srv.SessionStore(), srv.RateLimiter(), logger.With("component", "cleanup"))
		return nil
	})

	return g.Wait()
}

// cleanupLoop removes expired sessions and stale rate limiter entries every
// interval until ctx is done.
func cleanupLoop(ctx context.Context, interval time.Duration, sessions *store.SessionStore, rl *middleware.RateLimiter, logger *slog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.Error("delete expired sessions", "error", err)
			} else if n > 0 {
				logger.Info("deleted expired sessions", "count", n)
			}
			if removed := rl.Cleanup(); removed > 0 {
				logger.Debug("pruned rate limiter", "entries", removed)
			}
		}
	}
}
