package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	cacheVersionKey = "dashboard:version"
	bumpChannel     = "records.bump"
)

// LookupRecorder counts cache hits and misses.
type LookupRecorder interface {
	RecordCacheLookup(hit bool)
}

// Cache wraps Redis caching with a global version. Bulk target submissions
// bump the version, which retires every derived dashboard key at once
// instead of tracking them individually.
type Cache struct {
	client   *redis.Client
	ttl      time.Duration
	recorder LookupRecorder
}

// NewCache instantiates the cache helper. A nil client degrades to
// pass-through loads, which keeps tests and local runs working without Redis.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{client: client, ttl: ttl}
}

// InstrumentLookups registers a hit/miss recorder for FetchJSON.
func (c *Cache) InstrumentLookups(r LookupRecorder) {
	if c != nil {
		c.recorder = r
	}
}

func (c *Cache) recordLookup(hit bool) {
	if c != nil && c.recorder != nil {
		c.recorder.RecordCacheLookup(hit)
	}
}

// Version returns the current cache version, initialising when missing.
func (c *Cache) Version(ctx context.Context) (int64, error) {
	if c == nil || c.client == nil {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, cacheVersionKey).Int64()
	if err == redis.Nil {
		if err := c.client.Set(ctx, cacheVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	if ver <= 0 {
		ver = 1
		if err := c.client.Set(ctx, cacheVersionKey, ver, 0).Err(); err != nil {
			return 0, err
		}
	}
	return ver, nil
}

// BuildKey composes a cache key with the current version appended.
func (c *Cache) BuildKey(ctx context.Context, parts ...string) (string, error) {
	if c == nil || c.client == nil {
		return strings.Join(parts, ":"), nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return strings.Join(parts, ":") + ":" + strconv.FormatInt(ver, 10), nil
}

// FetchJSON loads a cached value or populates it using the loader.
func (c *Cache) FetchJSON(ctx context.Context, key string, dest interface{}, loader func(context.Context) (interface{}, error)) error {
	if loader == nil {
		return errors.New("dashboard cache: loader required")
	}
	if c == nil || c.client == nil {
		value, err := loader(ctx)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(raw, dest)
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		c.recordLookup(true)
		return json.Unmarshal(payload, dest)
	}
	if err != redis.Nil {
		return err
	}
	c.recordLookup(false)
	value, err := loader(ctx)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

// Bump invalidates every dashboard key by incrementing the version and
// announcing it to the other nodes.
func (c *Cache) Bump(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	ver, err := c.client.Incr(ctx, cacheVersionKey).Result()
	if err != nil {
		return err
	}
	return c.client.Publish(ctx, bumpChannel, strconv.FormatInt(ver, 10)).Err()
}

// ListenForInvalidation subscribes to version bump notifications so nodes
// that missed a local bump converge on the announced version.
func (c *Cache) ListenForInvalidation(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	pubsub := c.client.Subscribe(ctx, bumpChannel)
	go func() {
		defer func() { _ = pubsub.Close() }()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if msg.Payload != "" {
					if ver, err := strconv.ParseInt(msg.Payload, 10, 64); err == nil {
						_ = c.client.Set(ctx, cacheVersionKey, ver, 0).Err()
						continue
					}
				}
				_ = c.client.Incr(ctx, cacheVersionKey).Err()
			}
		}
	}()
	return nil
}

func keyOverview(code string, f Filter) string {
	return strings.Join([]string{"dashboard", "overview", code, f.CacheToken()}, ":")
}

func keyProducts(code string, f Filter) string {
	return strings.Join([]string{"dashboard", "products", code, f.CacheToken()}, ":")
}

func keyReport(code string, f Filter) string {
	return strings.Join([]string{"dashboard", "report", code, f.CacheToken()}, ":")
}

func keyProgress(code, month string) string {
	return strings.Join([]string{"dashboard", "progress", code, month}, ":")
}
