package pubsub

import (
	"context"
	"fmt"
	"time"
)

// KafkaConfig holds Kafka-specific configuration.
type KafkaConfig struct {
	Brokers    string `mapstructure:"brokers"`
	Partitions int    `mapstructure:"partitions"`
}

// Config holds the configuration for the event publisher.
type Config struct {
	Driver  string      `mapstructure:"driver"` // "redis", "kafka", "none"
	Channel string      `mapstructure:"channel"`
	Redis   RedisConfig `mapstructure:"redis"`
	Kafka   KafkaConfig `mapstructure:"kafka"`
}

// RedisConfig holds Redis-specific configuration.
type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Driver:  "none",
		Channel: ChannelIssued,
		Redis: RedisConfig{
			Address:      "localhost:6379",
			PoolSize:     10,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:    "localhost:9092",
			Partitions: 4,
		},
	}
}

// NewPublisher creates a Publisher based on the configuration.
func NewPublisher(ctx context.Context, cfg Config) (Publisher, error) {
	switch cfg.Driver {
	case "kafka":
		return NewKafkaPublisher(cfg.Kafka, cfg.Channel)
	case "redis":
		return NewRedisPublisher(ctx, cfg.Redis)
	case "none", "":
		return NopPublisher{}, nil
	default:
		return nil, fmt.Errorf("unsupported events driver: %s", cfg.Driver)
	}
}

// NopPublisher discards every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *Event) error { return nil }

func (NopPublisher) Close() error { return nil }
