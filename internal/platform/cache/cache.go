package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const versionKey = "inventory:cache:version"

// sharedLoadTimeout bounds a load shared by concurrent callers, which runs
// detached from any single caller's cancellation.
const sharedLoadTimeout = 15 * time.Second

// Versioned caches JSON payloads under keys suffixed with a global version.
// Bumping the version invalidates every entry at once; stale keys expire by TTL.
// A nil *Versioned, or one without a client, always calls the loader.
type Versioned struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
	group  singleflight.Group
}

// NewVersioned instantiates the cache helper.
func NewVersioned(client *redis.Client, ttl time.Duration, logger *slog.Logger) *Versioned {
	if logger == nil {
		logger = slog.Default()
	}
	return &Versioned{client: client, ttl: ttl, logger: logger}
}

func (c *Versioned) enabled() bool {
	return c != nil && c.client != nil
}

// Version returns the current cache version, initialising when missing.
func (c *Versioned) Version(ctx context.Context) (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	ver, err := c.client.Get(ctx, versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		// SETNX so two instances starting together agree on the first version.
		if err := c.client.SetNX(ctx, versionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.client.Get(ctx, versionKey).Int64()
	}
	if err != nil {
		return 0, err
	}
	return ver, nil
}

// BuildKey composes the cache key with the current version.
func (c *Versioned) BuildKey(ctx context.Context, parts ...string) (string, error) {
	joined := strings.Join(parts, ":")
	if !c.enabled() {
		return joined, nil
	}
	ver, err := c.Version(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s:v%d", joined, ver), nil
}

// FetchJSON decodes the cached value for parts into dest, populating it from
// loader on a miss. Redis failures degrade to calling the loader directly.
func (c *Versioned) FetchJSON(ctx context.Context, dest any, loader func(context.Context) (any, error), parts ...string) error {
	if loader == nil {
		return errors.New("cache: loader required")
	}
	if !c.enabled() {
		return load(ctx, dest, loader)
	}

	key, err := c.BuildKey(ctx, parts...)
	if err != nil {
		c.logger.Warn("cache version unavailable", slog.Any("error", err))
		return load(ctx, dest, loader)
	}

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		if err := json.Unmarshal(payload, dest); err == nil {
			return nil
		}
		c.logger.Warn("cache entry corrupt", slog.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("cache read failed", slog.String("key", key), slog.Any("error", err))
		return load(ctx, dest, loader)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()
		value, err := loader(loadCtx)
		if err != nil {
			return nil, err
		}
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		if err := c.client.Set(loadCtx, key, raw, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", slog.String("key", key), slog.Any("error", err))
		}
		return raw, nil
	})
	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		return json.Unmarshal(res.Val.([]byte), dest)
	}
}

// Bump invalidates every cached entry by incrementing the global version.
func (c *Versioned) Bump(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("platform/cache: bump: %w", err)
	}
	return nil
}

func load(ctx context.Context, dest any, loader func(context.Context) (any, error)) error {
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
