package finance

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestCacheFetchJSONPopulatesAndReuses(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	loads := 0
	loader := func(context.Context) (interface{}, error) {
		loads++
		return map[string]string{"period": "2025-06"}, nil
	}

	key, err := cache.BuildKey(ctx, keyBalanceSheet(2025, time.June))
	require.NoError(t, err)

	var first map[string]string
	require.NoError(t, cache.FetchJSON(ctx, key, &first, loader))
	var second map[string]string
	require.NoError(t, cache.FetchJSON(ctx, key, &second, loader))

	assert.Equal(t, 1, loads, "second fetch must hit the cache")
	assert.Equal(t, first, second)
}

func TestCacheBumpInvalidatesKeys(t *testing.T) {
	cache := newTestCache(t)
	ctx := context.Background()

	before, err := cache.BuildKey(ctx, keyInsights(2025, time.June))
	require.NoError(t, err)
	require.NoError(t, cache.Bump(ctx))
	after, err := cache.BuildKey(ctx, keyInsights(2025, time.June))
	require.NoError(t, err)

	assert.NotEqual(t, before, after, "bump must orphan existing keys")
}

func TestCacheNilClientDegradesToLoader(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	var out map[string]int
	err := cache.FetchJSON(ctx, "ignored", &out, func(context.Context) (interface{}, error) {
		return map[string]int{"n": 7}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, out["n"])
	require.NoError(t, cache.Bump(ctx))
}

func TestPeriodKeys(t *testing.T) {
	assert.Equal(t, "finance:bs:2025-06", keyBalanceSheet(2025, time.June))
	assert.Equal(t, "finance:insights:2025-01", keyInsights(2025, time.January))
}
