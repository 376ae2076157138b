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
	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"example.com/timeflow/internal/api"
	"example.com/timeflow/internal/auth"
	"example.com/timeflow/internal/config"
	"example.com/timeflow/internal/domain"
	"example.com/timeflow/internal/logger"
	"example.com/timeflow/internal/outbox"
	"example.com/timeflow/internal/persistence/memory"
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

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("timeflow api exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	g, ctx := errgroup.WithContext(ctx)

	var repo domain.ActivityRepository
	switch cfg.StoreBackend {
	case config.BackendMemory:
		log.Warn("using in-memory activity store; data is lost on restart")
		repo = memory.NewRepository()
	default:
		if cfg.RunMigrations {
			if err := postgres.Migrate(cfg.PostgresURL); err != nil {
				return err
			}
			log.Info("database migrations applied")
		}

		pool, err := pgxpool.New(ctx, cfg.PostgresURL)
		if err != nil {
			return err
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			return err
		}
		repo = postgres.NewRepository(pool)

		if cfg.OutboxEnabled {
			producer := outbox.NewKafkaProducer(cfg.KafkaBrokers)
			defer producer.Close()

			registry := outbox.NewSchemaRegistryClient(cfg.SchemaRegistryURL)
			dispatcher := outbox.NewDispatcher(pool, producer, registry, log, cfg.OutboxPollInterval, cfg.OutboxBatchSize)
			g.Go(func() error {
				dispatcher.Start(ctx)
				return nil
			})
		}
	}

	service := domain.NewService(repo)

	mux := http.NewServeMux()
	api.NewHandler(service, log).RegisterRoutes(mux)
	mux.Handle("/metrics", promhttp.Handler())

	authenticators := []auth.Authenticator{
		auth.NewJWTAuthenticator(auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: cfg.JWTIssuer}),
	}
	if cfg.IdentityAPIURL != "" {
		var cache auth.SessionCache = auth.NoopSessionCache{}
		if cfg.RedisAddr != "" {
			rdb := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
			defer rdb.Close()
			if err := rdb.Ping(ctx).Err(); err != nil {
				log.Warn("redis unavailable, session cache disabled", "addr", cfg.RedisAddr, "error", err)
			} else {
				cache = auth.NewRedisSessionCache(rdb)
			}
		}

		provider := auth.NewRemoteProvider(cfg.IdentityAPIURL, cfg.IdentityAPIKey)
		sessions := auth.NewSessionAuthenticator(provider, cache, cfg.SessionCacheTTL, log)
		api.NewSessionHandler(provider, sessions, cfg.SecureCookies, log).RegisterRoutes(mux)
		authenticators = append(authenticators, sessions)
	}

	authMiddleware := auth.NewMiddleware(auth.Chain(authenticators...), api.PublicRoute, log)

	handler := httptransport.Chain(mux,
		httptransport.RequestID(),
		httptransport.AccessLog(log),
		httptransport.CORS(cfg.CORSAllowedOrigin),
		authMiddleware.Wrap,
	)

	serverCfg := httptransport.DefaultServerConfig(cfg.HTTPAddress)
	server := httptransport.NewServer(serverCfg, handler)
	g.Go(func() error {
		return httptransport.Run(ctx, server, serverCfg.ShutdownTimeout, log)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
