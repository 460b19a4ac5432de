// Package cache provides Redis-backed caching for dashboard snapshots.
//
// Purpose:
//
//	Dashboard, analytics and reports-overview payloads are rebuilt from several
//	queries. This package caches the assembled snapshots per artist with a TTL
//	and drops every snapshot of an artist when their data changes.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/observability"
)

const keyPrefix = "artconnect:dashboard"

// Cache stores JSON snapshots in Redis. A Cache with a nil client is a no-op
// that always misses.
type Cache struct {
	client *redis.Client
	logger *zap.Logger
	ttl    time.Duration
}

// Config holds cache configuration.
type Config struct {
	Client *redis.Client
	Logger *zap.Logger
	TTL    time.Duration
}

// New creates a snapshot cache.
func New(cfg Config) *Cache {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}
	return &Cache{
		client: cfg.Client,
		logger: cfg.Logger,
		ttl:    cfg.TTL,
	}
}

// Connect parses a redis:// URL and returns a client that has answered PING.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Get loads the snapshot stored under (artistID, name) into dest. It reports
// false on a miss.
func (c *Cache) Get(ctx context.Context, artistID uuid.UUID, name string, dest any) (bool, error) {
	if c == nil || c.client == nil {
		return false, nil
	}

	data, err := c.client.Get(ctx, Key(artistID, name)).Bytes()
	if errors.Is(err, redis.Nil) {
		observability.RecordCacheLookup("miss")
		return false, nil
	}
	if err != nil {
		observability.RecordCacheLookup("error")
		return false, fmt.Errorf("redis get: %w", err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		observability.RecordCacheLookup("error")
		return false, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	observability.RecordCacheLookup("hit")
	return true, nil
}

// Set stores value under (artistID, name) with the configured TTL.
func (c *Cache) Set(ctx context.Context, artistID uuid.UUID, name string, value any) error {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := c.client.Set(ctx, Key(artistID, name), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Invalidate removes every snapshot cached for artistID.
func (c *Cache) Invalidate(ctx context.Context, artistID uuid.UUID) error {
	if c == nil || c.client == nil {
		return nil
	}

	pattern := fmt.Sprintf("%s:%s:*", keyPrefix, artistID.String())
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	c.logger.Debug("invalidated dashboard snapshots",
		zap.String("artist_id", artistID.String()),
		zap.Int("count", len(keys)),
	)
	return nil
}

// Key is the Redis key for a named snapshot of an artist.
func Key(artistID uuid.UUID, name string) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, artistID.String(), name)
}
