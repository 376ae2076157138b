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
	"example.com/timeflow/internal/consumer"
	"example.com/timeflow/internal/logger"
	"example.com/timeflow/internal/persistence/postgres"
	httptransport "example.com/timeflow/internal/transport/http"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if cfg.PostgresURL == "" || len(cfg.KafkaBrokers) == 0 || len(cfg.ConsumerTopics) == 0 {
		log.Fatal("consumer requires POSTGRES_URL, KAFKA_BROKERS and CONSUMER_TOPICS")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("timeflow consumer exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	if cfg.RunMigrations {
		if err := postgres.Migrate(cfg.PostgresURL); err != nil {
			return err
		}
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	reader := consumer.NewKafkaReader(cfg.KafkaBrokers, cfg.ConsumerGroupID, cfg.ConsumerTopics)
	defer reader.Close()

	processor := consumer.NewProcessor(reader, consumer.NewPersistenceHandler(pool), consumer.WithLogger(log))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsCfg := httptransport.DefaultServerConfig(cfg.MetricsAddress)
	metricsSrv := httptransport.NewServer(metricsCfg, mux)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httptransport.Run(ctx, metricsSrv, metricsCfg.ShutdownTimeout, log)
	})
	g.Go(func() error {
		log.Info("consumer started", "topics", cfg.ConsumerTopics, "group", cfg.ConsumerGroupID)
		return processor.Run(ctx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("consumer stopped")
	return nil
}
