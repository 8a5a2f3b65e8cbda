package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sportsbook-explorer/internal/cache"
	"github.com/cypherlabdev/sportsbook-explorer/internal/config"
	"github.com/cypherlabdev/sportsbook-explorer/internal/messaging"
	"github.com/cypherlabdev/sportsbook-explorer/internal/metrics"
	"github.com/cypherlabdev/sportsbook-explorer/internal/reference"
	"github.com/cypherlabdev/sportsbook-explorer/internal/service"
	"github.com/cypherlabdev/sportsbook-explorer/internal/sportsbook"
	"github.com/cypherlabdev/sportsbook-explorer/pkg/pivot"
)

// app holds the wired components shared by every subcommand
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	registry  *prometheus.Registry
	store     service.ResultStore
	publisher *messaging.KafkaPublisher
	reference *reference.Reference
	service   *service.ExplorerService
}

// newApp wires the store, publisher, client and service from configuration
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		logger:   logger,
		registry: prometheus.NewRegistry(),
	}

	switch cfg.Store.Backend {
	case "redis":
		redisStore := cache.NewRedisStore(
			cache.RedisStoreConfig{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
				TTL:      cfg.Redis.TTL,
				Key:      cfg.Redis.Key,
			},
			logger,
		)
		if err := redisStore.Ping(ctx); err != nil {
			redisStore.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		a.store = redisStore
	default:
		a.store = cache.NewMemoryStore()
	}

	var publisher service.Publisher
	if cfg.Kafka.Enabled {
		a.publisher = messaging.NewKafkaPublisher(
			messaging.KafkaPublisherConfig{
				Brokers: cfg.Kafka.Brokers,
				Topic:   cfg.Kafka.Topic,
			},
			logger,
		)
		publisher = a.publisher
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("Kafka publisher enabled")
	}

	client := sportsbook.NewClient(
		sportsbook.ClientConfig{
			BaseURL:        cfg.Sportsbook.BaseURL,
			Timeout:        cfg.Sportsbook.Timeout,
			UserAgent:      cfg.Sportsbook.UserAgent,
			AcceptLanguage: cfg.Sportsbook.AcceptLanguage,
		},
		logger,
	)

	a.reference = reference.Load(cfg.Reference.Path, cfg.Sportsbook.DefaultLeagueID, logger)

	a.service = service.NewExplorerService(
		client,
		pivot.NewParser(logger),
		a.store,
		publisher,
		metrics.New(a.registry),
		logger,
	)

	return a, nil
}

// Close releases the store and publisher
func (a *app) Close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("failed to close Kafka publisher")
		}
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close result store")
	}
}
