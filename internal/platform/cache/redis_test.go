package cache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return New(client, time.Minute), mr
}

func TestFetchJSONPopulatesAndReuses(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "trends", "S001", "P001")
	require.NoError(t, err)

	calls := 0
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]int{"stock": 12}, nil
	}

	var first map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
	assert.Equal(t, 12, first["stock"])

	var second map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &second, loader))
	assert.Equal(t, 12, second["stock"])
	assert.Equal(t, 1, calls, "second fetch must be served from cache")
}

func TestBumpInvalidatesKeys(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "trends", "S001")
	require.NoError(t, err)
	require.NoError(t, c.Bump(ctx))
	after, err := c.BuildKey(ctx, "trends", "S001")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestNilClientPassesThrough(t *testing.T) {
	c := New(nil, 0)
	ctx := context.Background()

	key, err := c.BuildKey(ctx, "a", "b")
	require.NoError(t, err)
	assert.Equal(t, "a:b", key)

	calls := 0
	var out map[string]string
	loader := func(ctx context.Context) (interface{}, error) {
		calls++
		return map[string]string{"k": "v"}, nil
	}
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	require.NoError(t, c.FetchJSON(ctx, key, &out, loader))
	assert.Equal(t, 2, calls, "no client means every fetch hits the loader")
}
