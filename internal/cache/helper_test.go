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

type cachedPost struct {
	ID      uint   `json:"id"`
	Content string `json:"content"`
}

func setupMiniredis(t *testing.T) {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
}

func TestGetJSON_NilClient(t *testing.T) {
	SetClient(nil)
	var dest cachedPost
	found, err := GetJSON(context.Background(), PostKey(1), &dest)
	assert.NoError(t, err)
	assert.False(t, found)
}

func TestSetJSONAndGetJSON_RoundTrip(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	want := cachedPost{ID: 7, Content: "hello"}
	require.NoError(t, SetJSON(ctx, PostKey(7), want, PostTTL))

	var got cachedPost
	found, err := GetJSON(ctx, PostKey(7), &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, got)
}

func TestCacheAside_FetchesOnMissThenHits(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	fetches := 0
	fetch := func(dest *cachedPost) func() error {
		return func() error {
			fetches++
			*dest = cachedPost{ID: 3, Content: "from db"}
			return nil
		}
	}

	var first cachedPost
	require.NoError(t, CacheAside(ctx, PostKey(3), &first, time.Minute, fetch(&first)))
	assert.Equal(t, 1, fetches)

	var second cachedPost
	require.NoError(t, CacheAside(ctx, PostKey(3), &second, time.Minute, fetch(&second)))
	assert.Equal(t, 1, fetches, "second read should be served from cache")
	assert.Equal(t, first, second)
}

func TestInvalidatePost_RemovesPostAndComments(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, PostKey(5), cachedPost{ID: 5}, PostTTL))
	require.NoError(t, SetJSON(ctx, CommentsKey(5), []cachedPost{}, CommentsTTL))

	InvalidatePost(ctx, 5)

	var dest cachedPost
	found, err := GetJSON(ctx, PostKey(5), &dest)
	require.NoError(t, err)
	assert.False(t, found)

	var comments []cachedPost
	found, err = GetJSON(ctx, CommentsKey(5), &comments)
	require.NoError(t, err)
	assert.False(t, found)
}
