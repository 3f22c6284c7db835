package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"time"

	"bitacora/internal/middleware"
	"bitacora/internal/observability"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultTTL bounds staleness when a write forgets to invalidate a tag.
	DefaultTTL = 60 * time.Second

	keyPrefix = "rc:"
	tagPrefix = "rc:tag:"

	// Tag versions must outlive every entry that embeds them.
	tagVersionTTL = 24 * time.Hour
)

// ReadCache memoizes read queries under (operation, arguments) keys tagged
// for invalidation.
//
// Each tag owns a version counter. An entry is stored under its logical key
// plus the versions of its tags at lookup time, so Invalidate makes every
// entry carrying the tag unreachable at once, and a computation that raced
// an invalidation writes under the superseded version where nobody reads it.
//
// A nil client turns the cache into a pass-through.
type ReadCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewReadCache returns a ReadCache backed by client. ttl <= 0 selects DefaultTTL.
func NewReadCache(client *redis.Client, ttl time.Duration) *ReadCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReadCache{client: client, ttl: ttl}
}

// TTL is the expiry applied to entries.
func (c *ReadCache) TTL() time.Duration {
	if c == nil {
		return DefaultTTL
	}
	return c.ttl
}

// Enabled reports whether entries are actually stored.
func (c *ReadCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get loads key into dest. On a miss fetch must populate dest; the result is
// then stored for the cache TTL. Cache failures never fail the read: they are
// logged and the value is computed.
func (c *ReadCache) Get(ctx context.Context, key string, tags []string, dest any, fetch func() error) error {
	if !c.Enabled() {
		return fetch()
	}

	physical, err := c.entryKey(ctx, key, tags)
	if err != nil {
		c.logError(ctx, "resolve tag versions", key, err)
		return fetch()
	}

	raw, err := c.client.Get(ctx, physical).Bytes()
	switch {
	case err == nil:
		jsonErr := decodeInto(raw, dest)
		if jsonErr == nil {
			observability.CacheLookups.WithLabelValues("hit").Inc()
			return nil
		}
		c.logError(ctx, "decode entry", key, jsonErr)
	case errors.Is(err, redis.Nil):
		observability.CacheLookups.WithLabelValues("miss").Inc()
	default:
		c.logError(ctx, "get entry", key, err)
	}

	if err := fetch(); err != nil {
		return err
	}

	b, err := json.Marshal(dest)
	if err != nil {
		c.logError(ctx, "encode entry", key, err)
		return nil
	}
	if err := c.client.Set(ctx, physical, b, c.ttl).Err(); err != nil {
		c.logError(ctx, "set entry", key, err)
	}
	return nil
}

// decodeInto unmarshals raw into a fresh value and copies it to dest only on
// success, so a corrupt entry never leaves dest half-filled.
func decodeInto(raw []byte, dest any) error {
	rv := reflect.ValueOf(dest)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return json.Unmarshal(raw, dest)
	}
	tmp := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(raw, tmp.Interface()); err != nil {
		return err
	}
	rv.Elem().Set(tmp.Elem())
	return nil
}

// Invalidate bumps the version of every tag. It returns once Redis has
// acknowledged the bump so callers can rely on read-your-writes.
func (c *ReadCache) Invalidate(ctx context.Context, tags ...string) error {
	if !c.Enabled() || len(tags) == 0 {
		return nil
	}

	pipe := c.client.TxPipeline()
	for _, tag := range tags {
		k := tagPrefix + tag
		pipe.Incr(ctx, k)
		pipe.Expire(ctx, k, tagVersionTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.logError(ctx, "invalidate", strings.Join(tags, ","), err)
		return err
	}

	for _, tag := range tags {
		observability.CacheInvalidations.WithLabelValues(tagFamily(tag)).Inc()
	}
	return nil
}

func (c *ReadCache) entryKey(ctx context.Context, key string, tags []string) (string, error) {
	if len(tags) == 0 {
		return keyPrefix + key, nil
	}

	sorted := append([]string(nil), tags...)
	sort.Strings(sorted)

	tagKeys := make([]string, len(sorted))
	for i, t := range sorted {
		tagKeys[i] = tagPrefix + t
	}
	vals, err := c.client.MGet(ctx, tagKeys...).Result()
	if err != nil {
		return "", err
	}

	versions := make([]string, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok || s == "" {
			s = "0"
		}
		versions[i] = s
	}
	return keyPrefix + key + "@" + strings.Join(versions, "."), nil
}

func (c *ReadCache) logError(ctx context.Context, op, key string, err error) {
	observability.CacheLookups.WithLabelValues("error").Inc()
	middleware.Logger.WarnContext(ctx, "read cache degraded",
		slog.String("op", op),
		slog.String("key", key),
		slog.String("error", err.Error()),
	)
}

func tagFamily(tag string) string {
	if i := strings.IndexByte(tag, ':'); i >= 0 {
		return tag[:i]
	}
	return tag
}
