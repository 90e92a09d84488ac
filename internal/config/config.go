package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// Content service configuration.
	ContentAPIURL     string
	ContentAPITimeout time.Duration
	AvailabilityTTL   time.Duration
	TrailsCacheSize   int

	// Redis snapshot cache. Optional; the in-memory cache is used when unset.
	RedisAddr     string
	RedisPassword string

	// Kafka content-change feed. Optional; cache entries expire by TTL alone
	// when no brokers are configured.
	KafkaEnabled      bool
	KafkaBrokers      []string
	KafkaContentTopic string
	KafkaGroupID      string

	// Location bridge for kiosk deployments. Optional; sessions fall back to
	// client-supplied coordinates when unset.
	LocationBridgeURL string

	SessionTTL      time.Duration
	JanitorInterval time.Duration
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := parseDuration("SHUTDOWN_TIMEOUT", "10s")
	if err != nil {
		return nil, err
	}
	contentTimeout, err := parseDuration("CONTENT_API_TIMEOUT", "5s")
	if err != nil {
		return nil, err
	}
	availabilityTTL, err := parseDuration("AVAILABILITY_TTL", "5m")
	if err != nil {
		return nil, err
	}
	sessionTTL, err := parseDuration("SESSION_TTL", "30m")
	if err != nil {
		return nil, err
	}
	janitorInterval, err := parseDuration("JANITOR_INTERVAL", "1m")
	if err != nil {
		return nil, err
	}

	brokers := parseBrokers(os.Getenv("KAFKA_BROKERS"))

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		ContentAPIURL:     os.Getenv("CONTENT_API_URL"),
		ContentAPITimeout: contentTimeout,
		AvailabilityTTL:   availabilityTTL,
		TrailsCacheSize:   parseTrailsCacheSize(),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		KafkaEnabled:      len(brokers) > 0,
		KafkaBrokers:      brokers,
		KafkaContentTopic: envOrDefault("KAFKA_CONTENT_TOPIC", "content-changes"),
		KafkaGroupID:      envOrDefault("KAFKA_GROUP_ID", "region-service"),

		LocationBridgeURL: os.Getenv("LOCATION_BRIDGE_URL"),

		SessionTTL:      sessionTTL,
		JanitorInterval: janitorInterval,
	}

	if cfg.ContentAPIURL == "" {
		return nil, errors.New("CONTENT_API_URL is required")
	}
	if cfg.KafkaEnabled && cfg.KafkaContentTopic == "" {
		return nil, errors.New("KAFKA_CONTENT_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDuration(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return d, nil
}

func parseBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			brokers = append(brokers, p)
		}
	}
	return brokers
}

func parseTrailsCacheSize() int {
	if s := os.Getenv("TRAILS_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return 256
}
