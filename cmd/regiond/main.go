package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/dulegil/region-service/internal/adapter/contentapi"
	httpadapter "github.com/dulegil/region-service/internal/adapter/http"
	kafkaadapter "github.com/dulegil/region-service/internal/adapter/kafka"
	"github.com/dulegil/region-service/internal/adapter/locapi"
	"github.com/dulegil/region-service/internal/config"
	"github.com/dulegil/region-service/internal/content"
	"github.com/dulegil/region-service/internal/location"
	"github.com/dulegil/region-service/internal/observability"
	"github.com/dulegil/region-service/internal/region"
	"github.com/dulegil/region-service/internal/resolve"
	"github.com/dulegil/region-service/internal/session"
	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Content gateway: HTTP client, optionally a Redis-shared snapshot,
	// always an in-memory cache on top.
	client := contentapi.NewClient(cfg.ContentAPIURL, cfg.ContentAPITimeout, logger, metrics)

	var base content.Gateway = client
	invalidators := kafkaadapter.Fanout{}
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		shared := contentapi.NewRedisCachedGateway(client, rdb, cfg.AvailabilityTTL, logger, metrics)
		base = shared
		invalidators = append(invalidators, shared)
		logger.Info("redis snapshot cache enabled", "addr", cfg.RedisAddr)
	}

	cached := contentapi.NewCachedGateway(base, clock, cfg.AvailabilityTTL, cfg.TrailsCacheSize, metrics)
	invalidators = append(invalidators, cached)

	// Location sensor (feature-flagged via LOCATION_BRIDGE_URL). Without a
	// bridge, acquisition always reports not_supported and clients resolve
	// with their own coordinates.
	var sensor location.Sensor = location.Unsupported{}
	if cfg.LocationBridgeURL != "" {
		sensor = locapi.NewClient(cfg.LocationBridgeURL, logger)
		logger.Info("location bridge enabled", "url", cfg.LocationBridgeURL)
	} else {
		logger.Info("location bridge disabled")
	}

	acquirer := location.NewAcquirer(sensor, clock, logger, metrics)
	planner := resolve.New(region.KoreaBounds, cached, logger, metrics)
	sessions := session.NewManager(cached, acquirer, planner, clock, logger, metrics, cfg.SessionTTL)

	srv := httpadapter.NewServer(cfg.HTTPAddr, sessions, cached, cached, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go sessions.RunJanitor(ctx, cfg.JanitorInterval)

	var consumer *kafkaadapter.Consumer
	if cfg.KafkaEnabled {
		consumer = kafkaadapter.NewConsumer(cfg, invalidators, logger)
		go func() {
			if err := consumer.Run(ctx); err != nil {
				logger.Error("invalidation consumer error", "error", err)
			}
		}()
		logger.Info("content invalidation feed enabled",
			"brokers", cfg.KafkaBrokers, "topic", cfg.KafkaContentTopic)
	} else {
		logger.Info("content invalidation feed disabled, relying on cache TTL")
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("invalidation consumer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
