package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Atomized-titan/qri/internal/config"
	"github.com/Atomized-titan/qri/internal/domain"
)

// RedisLedger stores issuances as JSON values that expire after ttl.
type RedisLedger struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisLedger(cfg config.RedisConfig, prefix string, ttl time.Duration) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisLedger{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}, nil
}

func (r *RedisLedger) buildKey(random string) string {
	return fmt.Sprintf("%s:%s", r.prefix, random)
}

func (r *RedisLedger) Record(ctx context.Context, issuance *domain.Issuance) error {
	data, err := json.Marshal(issuance)
	if err != nil {
		return fmt.Errorf("failed to marshal issuance: %w", err)
	}

	if err := r.client.Set(ctx, r.buildKey(issuance.Random), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set in redis: %w", err)
	}

	return nil
}

func (r *RedisLedger) Lookup(ctx context.Context, random string) (*domain.Issuance, error) {
	data, err := r.client.Get(ctx, r.buildKey(random)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var issuance domain.Issuance
	if err := json.Unmarshal(data, &issuance); err != nil {
		return nil, fmt.Errorf("failed to unmarshal issuance: %w", err)
	}

	return &issuance, nil
}

func (r *RedisLedger) Close() error {
	return r.client.Close()
}
