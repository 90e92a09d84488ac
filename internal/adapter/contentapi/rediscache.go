package contentapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/dulegil/region-service/internal/content"
	"github.com/dulegil/region-service/internal/observability"
	"github.com/dulegil/region-service/internal/region"
	"github.com/redis/go-redis/v9"
)

const availabilityKey = "region-service:availability"

// RedisCachedGateway shares the availability snapshot across service
// instances through Redis. Redis trouble degrades to a direct gateway call
// rather than failing the resolution; the snapshot is an optimization, not
// a source of truth.
type RedisCachedGateway struct {
	inner   content.Gateway
	rdb     *redis.Client
	ttl     time.Duration
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRedisCachedGateway creates the Redis-backed cache decorator.
func NewRedisCachedGateway(inner content.Gateway, rdb *redis.Client, ttl time.Duration,
	logger *slog.Logger, metrics *observability.Metrics) *RedisCachedGateway {
	return &RedisCachedGateway{
		inner:   inner,
		rdb:     rdb,
		ttl:     ttl,
		logger:  logger,
		metrics: metrics,
	}
}

// Availability serves the shared snapshot, refetching and republishing it on
// miss or expiry.
func (c *RedisCachedGateway) Availability(ctx context.Context) (content.Availability, error) {
	data, err := c.rdb.Get(ctx, availabilityKey).Bytes()
	if err == nil {
		var snap content.Availability
		if err := json.Unmarshal(data, &snap); err == nil {
			c.metrics.AvailabilityCache.WithLabelValues("hit").Inc()
			return snap, nil
		}
		c.logger.Warn("corrupt availability snapshot in redis, refetching")
	} else if err != redis.Nil {
		c.logger.Warn("redis get failed, falling through to gateway", "error", err)
	}

	c.metrics.AvailabilityCache.WithLabelValues("miss").Inc()
	snap, err := c.inner.Availability(ctx)
	if err != nil {
		return content.Availability{}, err
	}

	if data, err := json.Marshal(snap); err == nil {
		if err := c.rdb.Set(ctx, availabilityKey, data, c.ttl).Err(); err != nil {
			c.logger.Warn("redis set failed", "error", err)
		}
	}
	return snap, nil
}

// TrailsFor passes through; trail lists are fetched per request.
func (c *RedisCachedGateway) TrailsFor(ctx context.Context, province, city region.Code) ([]content.Trail, error) {
	return c.inner.TrailsFor(ctx, province, city)
}

// InvalidateAvailability drops the shared snapshot for every instance.
func (c *RedisCachedGateway) InvalidateAvailability() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.rdb.Del(ctx, availabilityKey).Err(); err != nil {
		c.logger.Warn("redis del failed", "error", err)
		return
	}
	c.metrics.AvailabilityCache.WithLabelValues("invalidated").Inc()
}

// InvalidateTrails is a no-op here; trail lists are not cached in Redis.
func (c *RedisCachedGateway) InvalidateTrails(_, _ region.Code) {}

// CheckReadiness reports whether an availability snapshot can be served.
func (c *RedisCachedGateway) CheckReadiness(ctx context.Context) error {
	if _, err := c.Availability(ctx); err != nil {
		return fmt.Errorf("availability snapshot not reachable: %w", err)
	}
	return nil
}
