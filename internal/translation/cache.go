package translation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
)

type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)

	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// CachedTranslator memoizes successful translations. Cache failures are
// logged and the underlying provider is used directly.
type CachedTranslator struct {
	provider Provider
	cache    Cache
	ttl      time.Duration
}

func NewCachedTranslator(provider Provider, cache Cache, ttl time.Duration) *CachedTranslator {
	return &CachedTranslator{provider: provider, cache: cache, ttl: ttl}
}

func cacheKey(text, sourceLang, targetLang string) string {
	hash := sha256.Sum256([]byte(sourceLang + "\x00" + targetLang + "\x00" + text))
	return "translation:" + hex.EncodeToString(hash[:])
}

func (c *CachedTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	key := cacheKey(text, sourceLang, targetLang)

	cached, found, err := c.cache.Get(ctx, key)
	if err != nil {
		slog.Warn("error reading translation cache", "error", err)
	} else if found {
		return cached, nil
	}

	translated, err := c.provider.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return "", err
	}

	if translated != "" {
		if err := c.cache.Set(ctx, key, translated, c.ttl); err != nil {
			slog.Warn("error writing translation cache", "error", err)
		}
	}

	return translated, nil
}

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(redisURL string) (*RedisCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("unable to ping redis: %w", err)
	}

	slog.Info("connected to redis translation cache", "addr", opts.Addr)
	return &RedisCache{client: client}, nil
}

func (r *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

func (r *RedisCache) Close() error {
	return r.client.Close()
}
