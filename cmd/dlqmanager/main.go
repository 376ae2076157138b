package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"example.com/timeflow/internal/config"
	"example.com/timeflow/internal/logger"
	"example.com/timeflow/internal/outbox"
	httptransport "example.com/timeflow/internal/transport/http"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.PostgresURL == "" {
		log.Fatal("dlq manager requires POSTGRES_URL")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("timeflow dlq manager exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	manager := outbox.NewDLQManager(pool, log, cfg.DLQMaxRetries, cfg.DLQBaseDelay)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsCfg := httptransport.DefaultServerConfig(cfg.MetricsAddress)
	metricsSrv := httptransport.NewServer(metricsCfg, mux)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httptransport.Run(ctx, metricsSrv, metricsCfg.ShutdownTimeout, log)
	})
	g.Go(func() error {
		log.Info("dlq manager started", "interval", cfg.DLQPollInterval, "max_retries", cfg.DLQMaxRetries)
		manager.Run(ctx, cfg.DLQPollInterval, cfg.DLQBatchSize)
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
