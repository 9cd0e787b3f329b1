// Package app wires together all dependencies and runs the service.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/utafrali/searchsync/internal/catalog"
	"github.com/utafrali/searchsync/internal/config"
	"github.com/utafrali/searchsync/internal/dispatcher"
	"github.com/utafrali/searchsync/internal/event"
	handler "github.com/utafrali/searchsync/internal/handler/http"
	"github.com/utafrali/searchsync/internal/index"
	"github.com/utafrali/searchsync/internal/index/meili"
	"github.com/utafrali/searchsync/internal/index/memory"
	"github.com/utafrali/searchsync/internal/resolver"
	"github.com/utafrali/searchsync/pkg/health"
	"github.com/utafrali/searchsync/pkg/httpclient"
	pkgkafka "github.com/utafrali/searchsync/pkg/kafka"
)

// App holds the running components of the service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	indexer    index.Indexer
	consumers  []*pkgkafka.Consumer
	httpServer *http.Server
	redis      *redis.Client
}

// NewApp creates an application instance with all dependencies wired.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Index engine.
	var indexer index.Indexer
	var meiliClient *meili.Client
	switch cfg.IndexEngine {
	case config.EngineMeilisearch:
		meiliClient = meili.New(cfg.MeilisearchHost, cfg.MeilisearchAPIKey, logger)
		indexer = meiliClient
		logger.Info("meilisearch index engine initialized",
			slog.String("host", cfg.MeilisearchHost),
			slog.String("index", cfg.ProductsIndex),
		)
	default:
		indexer = memory.New()
		logger.Info("in-memory index engine initialized")
	}

	// Commerce backend graph client.
	graph := catalog.NewGraphClient(httpclient.New(httpclient.DefaultConfig()), cfg.BackendURL, cfg.BackendAPIKey)
	reader := catalog.NewReader(graph, cfg.RegionID, cfg.CurrencyCode, logger)

	// Sync pipeline.
	res := resolver.New(graph, logger)
	disp := dispatcher.New(res, reader, indexer, cfg.ProductsIndex, logger)

	// Event deduplication store: Redis when configured, in-process
	// otherwise.
	var redisClient *redis.Client
	var dedupe pkgkafka.IdempotencyStore
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		dedupe = pkgkafka.NewRedisIdempotencyStore(redisClient, "searchsync:events", 24*time.Hour)
		logger.Info("redis event deduplication enabled", slog.String("addr", cfg.RedisAddr))
	} else {
		dedupe = pkgkafka.NewMemoryIdempotencyStore(24 * time.Hour)
	}

	// Kafka consumers, one per topic, all sharing the idempotent handler.
	eventConsumer := event.NewConsumer(disp, logger)
	handle := pkgkafka.IdempotentHandler(dedupe, eventConsumer.Handle, logger)

	topics := event.Topics()
	consumers := make([]*pkgkafka.Consumer, 0, len(topics))
	for _, topic := range topics {
		consumerCfg := pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.ConsumerGroup,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6, // 10 MB
		}
		consumers = append(consumers, pkgkafka.NewConsumer(consumerCfg, handle, logger))
	}
	logger.Info("kafka consumers initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.Int("topic_count", len(topics)),
	)

	// Health checks.
	healthHandler := health.NewHandler()
	if meiliClient != nil {
		healthHandler.Register("meilisearch", meiliClient.Ping)
	}
	healthHandler.Register("backend", graph.Ping)
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})
	if redisClient != nil {
		healthHandler.Register("redis", func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		})
	}

	router := handler.NewRouter(indexer, disp, cfg.ProductsIndex, healthHandler, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		indexer:    indexer,
		consumers:  consumers,
		httpServer: httpServer,
		redis:      redisClient,
	}, nil
}

// prepareIndexes ensures the products index exists and applies the
// configured settings once at startup.
func (a *App) prepareIndexes(ctx context.Context) error {
	settingsByIndex, err := a.cfg.IndexSettings()
	if err != nil {
		return err
	}

	if _, ok := settingsByIndex[a.cfg.ProductsIndex]; !ok {
		if err := a.indexer.UpsertIndex(ctx, a.cfg.ProductsIndex, index.Settings{}); err != nil {
			return fmt.Errorf("ensure index %s: %w", a.cfg.ProductsIndex, err)
		}
	}

	for name, settings := range settingsByIndex {
		if err := a.indexer.UpdateSettings(ctx, name, settings); err != nil {
			return fmt.Errorf("apply settings for index %s: %w", name, err)
		}
		a.logger.InfoContext(ctx, "index settings applied", slog.String("index", name))
	}

	return nil
}

// Run prepares the indexes and starts the HTTP server and Kafka consumers,
// blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	if err := a.prepareIndexes(ctx); err != nil {
		return fmt.Errorf("prepare indexes: %w", err)
	}

	errCh := make(chan error, 1+len(a.consumers))

	for _, c := range a.consumers {
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Error("redis close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
