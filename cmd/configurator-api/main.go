package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/edvin/configurator/internal/api"
	"github.com/edvin/configurator/internal/catalog"
	"github.com/edvin/configurator/internal/config"
	"github.com/edvin/configurator/internal/core"
	"github.com/edvin/configurator/internal/db"
	"github.com/edvin/configurator/internal/logging"
	"github.com/edvin/configurator/internal/metrics"
	"github.com/edvin/configurator/internal/pricing"
	"github.com/edvin/configurator/internal/store"
)

func main() {
	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting (postgres backend)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg)

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load catalog")
	}
	engine := pricing.NewEngine(cat)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	blobs, closeStore, err := openStore(ctx, cfg, logger, *migrateFlag)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open store")
	}
	defer closeStore()

	services := core.NewServices(
		engine,
		store.NewConfigurationRepository(blobs, cfg.StoreKeyPrefix),
		store.NewWalletRepository(blobs, cfg.StoreKeyPrefix),
		cfg.WalletDefaultBalance,
		core.RetryPolicy{Attempts: cfg.CommitAttempts, Delay: 20 * time.Millisecond, Timeout: cfg.CommitTimeout},
		logger,
	)

	srv := api.NewServer(logger, services, engine, blobs, cfg)

	httpServer := &http.Server{
		Addr:         cfg.HTTPListenAddr,
		Handler:      srv,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	servers := []*http.Server{httpServer}
	if cfg.MetricsListenAddr != "" {
		servers = append(servers, metrics.NewServer(cfg.MetricsListenAddr))
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	for _, s := range servers {
		g.Go(func() error {
			logger.Info().Str("addr", s.Addr).Msg("starting server")
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("serve %s: %w", s.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		for _, s := range servers {
			s.Shutdown(shutdownCtx)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}

// openStore connects the configured blob backend. The returned func releases
// its connections.
func openStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger, migrate bool) (store.BlobStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		if migrate {
			logger.Info().Msg("running database migrations")
			if err := db.RunMigrations(cfg.DatabaseURL); err != nil {
				return nil, nil, fmt.Errorf("migrate: %w", err)
			}
		}
		pool, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool)
		return store.NewPostgresStore(pool), pool.Close, nil

	case config.StoreRedis:
		rdb := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs:    []string{cfg.RedisAddr},
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		return store.NewRedisStore(rdb), func() { rdb.Close() }, nil

	case config.StoreS3:
		client := store.NewS3Client(cfg.S3Endpoint, cfg.S3Region, cfg.S3AccessKey, cfg.S3SecretKey)
		return store.NewS3Store(client, cfg.S3Bucket), func() {}, nil

	default:
		logger.Warn().Msg("using in-memory store; configurations are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
}
