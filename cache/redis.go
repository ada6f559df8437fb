package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wudi/texkit/observability"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps lz4-compressed payloads in Redis.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
	logger observability.Logger
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, opts RedisOptions, logger observability.Logger) (*RedisStore, error) {
	if opts.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	if logger == nil {
		logger = observability.NopLogger{}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Debug("redis cache connected",
		observability.String("addr", opts.Addr),
		observability.Int("db", opts.DB))

	prefix := opts.Prefix
	if prefix == "" {
		prefix = "texkit:pdf:"
	}
	return &RedisStore{rdb: rdb, prefix: prefix, logger: logger}, nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		s.logger.Error("redis GET failed", observability.String("key", key), observability.Error("error", err))
		return nil, fmt.Errorf("redis get failed: %w", err)
	}
	return decode(data)
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	data, err := encode(value)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, s.prefix+key, data, ttl).Err(); err != nil {
		s.logger.Error("redis SET failed",
			observability.String("key", key),
			observability.Duration("ttl", ttl),
			observability.Error("error", err))
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
