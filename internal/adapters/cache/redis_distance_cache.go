package cache

import (
	"context"
	"delivery-dispatch-service/internal/platform/obs"
	"delivery-dispatch-service/internal/ports"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const DefaultDistanceTTL = 24 * time.Hour

// RedisDistanceCache keeps one hash per origin: field = destination key,
// value = "meters:seconds". The whole hash expires after TTL.
type RedisDistanceCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisDistanceCache(rdb *redis.Client, ttl time.Duration) *RedisDistanceCache {
	if ttl <= 0 {
		ttl = DefaultDistanceTTL
	}
	return &RedisDistanceCache{rdb: rdb, ttl: ttl, prefix: "dist:"}
}

// NewRedisDistanceCacheFromURL parses a redis:// URL and pings the server.
func NewRedisDistanceCacheFromURL(ctx context.Context, url string, ttl time.Duration) (*RedisDistanceCache, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis distance cache: parse url: %w", err)
	}

	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis distance cache: ping: %w", err)
	}
	return NewRedisDistanceCache(rdb, ttl), nil
}

func (c *RedisDistanceCache) Close() error {
	return c.rdb.Close()
}

func (c *RedisDistanceCache) key(origin string) string { return c.prefix + origin }

func (c *RedisDistanceCache) GetMany(
	ctx context.Context,
	origin string,
	destinations []string,
) (_ map[string]ports.DistanceResult, err error) {
	defer obs.Time(ctx, "distance.cache.redis.GetMany")(&err)

	if origin == "" {
		return nil, errors.New("distance cache get: origin must not be empty")
	}

	keys := uniqueKeys(destinations)
	if len(keys) == 0 {
		return map[string]ports.DistanceResult{}, nil
	}

	vals, err := c.rdb.HMGet(ctx, c.key(origin), keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("distance cache get: hmget: %w", err)
	}

	out := make(map[string]ports.DistanceResult, len(keys))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		r, ok := decodeDistance(s)
		if !ok {
			continue
		}
		out[keys[i]] = r
	}
	return out, nil
}

func (c *RedisDistanceCache) PutMany(
	ctx context.Context,
	origin string,
	results map[string]ports.DistanceResult,
) (err error) {
	defer obs.Time(ctx, "distance.cache.redis.PutMany")(&err)

	if origin == "" {
		return errors.New("distance cache put: origin must not be empty")
	}
	if len(results) == 0 {
		return nil
	}

	fields := make(map[string]any, len(results))
	for dest, r := range results {
		if strings.TrimSpace(dest) == "" {
			return errors.New("distance cache put: empty destination key")
		}
		fields[dest] = encodeDistance(r)
	}

	key := c.key(origin)
	_, err = c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSet(ctx, key, fields)
		p.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("distance cache put: %w", err)
	}
	return nil
}

func encodeDistance(r ports.DistanceResult) string {
	return strconv.Itoa(r.DistanceMeters) + ":" + strconv.Itoa(r.DurationSeconds)
}

func decodeDistance(s string) (ports.DistanceResult, bool) {
	m, sec, ok := strings.Cut(s, ":")
	if !ok {
		return ports.DistanceResult{}, false
	}
	meters, err1 := strconv.Atoi(m)
	seconds, err2 := strconv.Atoi(sec)
	if err1 != nil || err2 != nil {
		return ports.DistanceResult{}, false
	}
	return ports.DistanceResult{DistanceMeters: meters, DurationSeconds: seconds}, true
}
