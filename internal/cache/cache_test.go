package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/VXerys/artconnect-crm-sub001/internal/testutil"
)

type snapshot struct {
	Total int    `json:"total"`
	Label string `json:"label"`
}

func redisForTest(t *testing.T) *Cache {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = testutil.StartRedis(t)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return New(Config{Client: client, Logger: zap.NewNop(), TTL: time.Minute})
}

func TestKey(t *testing.T) {
	id := uuid.MustParse("6f1c2a53-8a3e-4f43-9c55-0c1f3b7f0a11")
	assert.Equal(t, "artconnect:dashboard:6f1c2a53-8a3e-4f43-9c55-0c1f3b7f0a11:overview", Key(id, "overview"))
}

func TestNilClientIsNoop(t *testing.T) {
	c := New(Config{})
	var dest snapshot

	hit, err := c.Get(context.Background(), uuid.New(), "overview", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NoError(t, c.Set(context.Background(), uuid.New(), "overview", snapshot{Total: 1}))
	assert.NoError(t, c.Invalidate(context.Background(), uuid.New()))

	var nilCache *Cache
	hit, err = nilCache.Get(context.Background(), uuid.New(), "overview", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestSetGetInvalidate(t *testing.T) {
	c := redisForTest(t)
	ctx := context.Background()
	artist := uuid.New()
	other := uuid.New()

	var dest snapshot
	hit, err := c.Get(ctx, artist, "overview", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, artist, "overview", snapshot{Total: 3, Label: "Konsep"}))
	require.NoError(t, c.Set(ctx, artist, "analytics:2026-01-01:2026-04-01", snapshot{Total: 9}))
	require.NoError(t, c.Set(ctx, other, "overview", snapshot{Total: 7}))

	hit, err = c.Get(ctx, artist, "overview", &dest)
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, snapshot{Total: 3, Label: "Konsep"}, dest)

	require.NoError(t, c.Invalidate(ctx, artist))

	hit, err = c.Get(ctx, artist, "overview", &dest)
	require.NoError(t, err)
	assert.False(t, hit)
	hit, err = c.Get(ctx, artist, "analytics:2026-01-01:2026-04-01", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	hit, err = c.Get(ctx, other, "overview", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	require.NoError(t, c.Invalidate(ctx, other))
}
