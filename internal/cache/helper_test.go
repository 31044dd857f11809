package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *int) func() error {
		return func() error {
			fetches++
			*dest = 42
			return nil
		}
	}

	var v int
	require.NoError(t, Aside(ctx, PostLikesKey(1), &v, PostLikesTTL, fetch(&v)))
	assert.Equal(t, 42, v)
	assert.Equal(t, 1, fetches)

	// Second read is served from the cache.
	var v2 int
	require.NoError(t, Aside(ctx, PostLikesKey(1), &v2, PostLikesTTL, fetch(&v2)))
	assert.Equal(t, 42, v2)
	assert.Equal(t, 1, fetches)
}

func TestAside_InvalidateForcesRefetch(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	var v int
	fetch := func() error {
		fetches++
		v = fetches
		return nil
	}

	require.NoError(t, Aside(ctx, PostLikesKey(7), &v, PostLikesTTL, fetch))
	InvalidatePost(ctx, 7)
	require.NoError(t, Aside(ctx, PostLikesKey(7), &v, PostLikesTTL, fetch))
	assert.Equal(t, 2, fetches)
}

func TestGetJSON_NilClient(t *testing.T) {
	SetClient(nil)
	var v int
	found, err := GetJSON(context.Background(), "whatever", &v)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestSetJSON_TTL(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(3), map[string]int{"a": 1}, time.Minute))
	mr.FastForward(2 * time.Minute)

	var v map[string]int
	found, err := GetJSON(ctx, PostKey(3), &v)
	require.NoError(t, err)
	assert.False(t, found)
}
