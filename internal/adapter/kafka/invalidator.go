package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/dulegil/region-service/internal/config"
	"github.com/dulegil/region-service/internal/region"
	kafkago "github.com/segmentio/kafka-go"
)

// Invalidator is the cache surface the consumer drives. Both the in-memory
// and the Redis-backed content caches implement it.
type Invalidator interface {
	InvalidateAvailability()
	InvalidateTrails(province, city region.Code)
}

// Fanout broadcasts invalidations to several caches, for deployments that
// layer an in-memory cache over the Redis-shared snapshot.
type Fanout []Invalidator

func (f Fanout) InvalidateAvailability() {
	for _, inv := range f {
		inv.InvalidateAvailability()
	}
}

func (f Fanout) InvalidateTrails(province, city region.Code) {
	for _, inv := range f {
		inv.InvalidateTrails(province, city)
	}
}

// Consumer subscribes to the content-change topic and invalidates cached
// availability and trail lists as the content service publishes updates.
type Consumer struct {
	reader *kafkago.Reader
	cache  Invalidator
	logger *slog.Logger
}

// NewConsumer creates a Kafka consumer for the configured content-change topic.
func NewConsumer(cfg *config.Config, cache Invalidator, logger *slog.Logger) *Consumer {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaContentTopic,
		GroupID:     cfg.KafkaGroupID,
		StartOffset: kafkago.LastOffset,
	})
	return &Consumer{reader: r, cache: cache, logger: logger}
}

// contentChange is the payload published by the content service whenever
// trails are added, removed, or edited. City-level changes carry both codes;
// province-level changes carry only the province.
type contentChange struct {
	Province string `json:"province"`
	City     string `json:"city"`
	Action   string `json:"action"`
}

// Run consumes content-change events until ctx is cancelled. Malformed
// messages are logged and skipped so a bad publish cannot stall the feed.
func (c *Consumer) Run(ctx context.Context) error {
	c.logger.Info("content invalidation consumer started")
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("content invalidation consumer stopped")
				return nil
			}
			return err
		}
		c.handle(msg)
	}
}

func (c *Consumer) Close() error {
	return c.reader.Close()
}

// handle applies one content-change message to the cache. Any change can
// flip availability, so the snapshot is always dropped; trail lists are
// dropped only for the city the change names.
func (c *Consumer) handle(msg kafkago.Message) {
	var change contentChange
	if err := json.Unmarshal(msg.Value, &change); err != nil {
		c.logger.Warn("skipping malformed content change",
			"offset", msg.Offset,
			"error", err)
		return
	}

	c.cache.InvalidateAvailability()
	if change.Province != "" && change.City != "" {
		c.cache.InvalidateTrails(region.Code(change.Province), region.Code(change.City))
	}

	c.logger.Debug("content change applied",
		"action", change.Action,
		"province", change.Province,
		"city", change.City)
}
