package redis

import (
	"context"
	"testing"
	"time"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := New(Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client, mr
}

func TestNew_FailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(Config{Addr: addr})
	require.Error(t, err)
}

func TestFixedWindowLimiter_Consume(t *testing.T) {
	client, mr := newTestClient(t)
	limiter := NewFixedWindowLimiter(client, "rl")
	ctx := context.Background()

	first, err := limiter.Consume(ctx, "create:abc", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, first.Allowed)

	second, err := limiter.Consume(ctx, "create:abc", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, second.Allowed)

	third, err := limiter.Consume(ctx, "create:abc", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, third.Allowed)
	assert.Greater(t, third.RetryAfter, time.Duration(0))
	assert.LessOrEqual(t, third.RetryAfter, time.Minute)

	assert.Equal(t, time.Minute, mr.TTL("rl:create:abc"))
}

func TestFixedWindowLimiter_WindowResets(t *testing.T) {
	client, mr := newTestClient(t)
	limiter := NewFixedWindowLimiter(client, "rl")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := limiter.Consume(ctx, "k", 1, 10*time.Second)
		require.NoError(t, err)
	}

	mr.FastForward(11 * time.Second)

	res, err := limiter.Consume(ctx, "k", 1, 10*time.Second)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFixedWindowLimiter_ExpireOnlyOnFirstHit(t *testing.T) {
	client, mr := newTestClient(t)
	limiter := NewFixedWindowLimiter(client, "rl")
	ctx := context.Background()

	_, err := limiter.Consume(ctx, "k", 5, 10*time.Second)
	require.NoError(t, err)

	mr.FastForward(4 * time.Second)
	_, err = limiter.Consume(ctx, "k", 5, 10*time.Second)
	require.NoError(t, err)

	assert.Equal(t, 6*time.Second, mr.TTL("rl:k"))
}

func TestFixedWindowLimiter_RetryAfterFallsBackToWindow(t *testing.T) {
	client, mr := newTestClient(t)
	limiter := NewFixedWindowLimiter(client, "rl")

	// A counter left without a TTL reports -1 from TTL.
	require.NoError(t, mr.Set("rl:k", "5"))

	res, err := limiter.Consume(context.Background(), "k", 1, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30*time.Second, res.RetryAfter)
}

func TestFixedWindowLimiter_RestoresLostExpiry(t *testing.T) {
	client, mr := newTestClient(t)
	limiter := NewFixedWindowLimiter(client, "rl")
	ctx := context.Background()

	require.NoError(t, mr.Set("rl:k", "5"))

	res, err := limiter.Consume(ctx, "k", 1, 30*time.Second)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, 30*time.Second, mr.TTL("rl:k"))

	mr.FastForward(31 * time.Second)

	res, err = limiter.Consume(ctx, "k", 1, 30*time.Second)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestFixedWindowLimiter_RedisDown(t *testing.T) {
	client, mr := newTestClient(t)
	limiter := NewFixedWindowLimiter(client, "rl")
	mr.Close()

	_, err := limiter.Consume(context.Background(), "k", 1, time.Minute)
	require.Error(t, err)
}

func TestLinkCache_SetGet(t *testing.T) {
	client, mr := newTestClient(t)
	cache := NewLinkCache(client, "")
	ctx := context.Background()

	expires := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	want := links.CachedLink{LinkID: "l1", OriginalURL: "https://example.com", ExpiresAt: &expires, IsActive: true}

	require.NoError(t, cache.Set(ctx, "abc1234", want, time.Hour))
	assert.Equal(t, time.Hour, mr.TTL("link:abc1234"))

	got, err := cache.Get(ctx, "abc1234")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.LinkID, got.LinkID)
	assert.Equal(t, want.OriginalURL, got.OriginalURL)
	assert.True(t, want.ExpiresAt.Equal(*got.ExpiresAt))
	assert.True(t, got.IsActive)
}

func TestLinkCache_Miss(t *testing.T) {
	client, _ := newTestClient(t)

	got, err := NewLinkCache(client, "").Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestLinkCache_CorruptEntry(t *testing.T) {
	client, mr := newTestClient(t)
	require.NoError(t, mr.Set("link:bad", "{not json"))

	_, err := NewLinkCache(client, "").Get(context.Background(), "bad")
	require.Error(t, err)
}

func TestLinkCache_NonPositiveTTLSkipsWrite(t *testing.T) {
	client, mr := newTestClient(t)

	require.NoError(t, NewLinkCache(client, "").Set(context.Background(), "abc", links.CachedLink{LinkID: "l1"}, 0))
	assert.False(t, mr.Exists("link:abc"))
}

func TestClickQueue_FIFO(t *testing.T) {
	client, _ := newTestClient(t)
	q := NewClickQueue(client)
	ctx := context.Background()

	for _, p := range []string{"a", "b", "c"} {
		require.NoError(t, q.Push(ctx, "queue:clicks", []byte(p)))
	}

	for _, want := range []string{"a", "b", "c"} {
		got, ok, err := q.BlockingPop(ctx, "queue:clicks", time.Second)
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, want, string(got))
	}
}

func TestClickQueue_TrimKeepsNewest(t *testing.T) {
	client, mr := newTestClient(t)
	q := NewClickQueue(client)
	ctx := context.Background()

	for _, p := range []string{"1", "2", "3", "4", "5"} {
		require.NoError(t, q.Push(ctx, "queue:clicks", []byte(p)))
		require.NoError(t, q.Trim(ctx, "queue:clicks", 3))
	}

	items, err := mr.List("queue:clicks")
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "4", "3"}, items)

	n, err := q.Len(ctx, "queue:clicks")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestClickQueue_PopTimeout(t *testing.T) {
	client, _ := newTestClient(t)

	got, ok, err := NewClickQueue(client).BlockingPop(context.Background(), "queue:empty", time.Second)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}
