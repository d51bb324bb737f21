package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/redis/go-redis/v9"
)

var _ port.SlotStorage = (*RedisSlots)(nil)

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

type RedisConfig struct {
	URL          string
	KeyPrefix    string
	TTL          time.Duration
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewRedisClient parses cfg.URL and pings the server.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	const op = "NewRedisClient"

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.DialTimeout > 0 {
		opts.DialTimeout = cfg.DialTimeout
	}
	if cfg.ReadTimeout > 0 {
		opts.ReadTimeout = cfg.ReadTimeout
	}
	if cfg.WriteTimeout > 0 {
		opts.WriteTimeout = cfg.WriteTimeout
	}

	cl := redis.NewClient(opts)
	if err := cl.Ping(ctx).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("%s: redis is unavailable: %w", op, err)
	}
	slog.Info("redis is available", "op", op)
	return cl, nil
}

// RedisSlots stores snapshots as string values. A positive TTL is refreshed
// on every save, so idle carts expire.
type RedisSlots struct {
	rdb    redisClient
	prefix string
	ttl    time.Duration
}

func NewRedisSlots(rdb redisClient, prefix string, ttl time.Duration) RedisSlots {
	return RedisSlots{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s RedisSlots) slotKey(key string) string {
	return s.prefix + key
}

func (s RedisSlots) LoadCart(
	ctx context.Context, key string,
) ([]domain.CartLine, error) {
	const op = "RedisSlots.LoadCart"

	data, err := s.rdb.Get(ctx, s.slotKey(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrSlotNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	lines, err := decodeLines(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return lines, nil
}

func (s RedisSlots) SaveCart(
	ctx context.Context, key string, lines []domain.CartLine,
) error {
	const op = "RedisSlots.SaveCart"

	data, err := encodeLines(lines)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.rdb.Set(ctx, s.slotKey(key), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
