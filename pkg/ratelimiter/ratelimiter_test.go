package ratelimiter_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcanvas/pkg/ratelimiter"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newBucket(t *testing.T, cfg ratelimiter.Config) (*ratelimiter.Bucket, *clock, *ratelimiter.MemoryStore) {
	t.Helper()
	clk := &clock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clk.Now), ratelimiter.WithCleanupInterval(0))
	t.Cleanup(func() { _ = store.Close() })
	b, err := ratelimiter.NewBucket(store, cfg)
	require.NoError(t, err)
	return b, clk, store
}

func TestNewBucket_InvalidConfig(t *testing.T) {
	t.Parallel()

	for name, cfg := range map[string]ratelimiter.Config{
		"zero capacity": {Capacity: 0, RefillRate: 1, RefillInterval: time.Second},
		"zero rate":     {Capacity: 1, RefillRate: 0, RefillInterval: time.Second},
		"zero interval": {Capacity: 1, RefillRate: 1},
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(ratelimiter.WithCleanupInterval(0)), cfg)
			assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
		})
	}
}

func TestBucket_AllowAndRefill(t *testing.T) {
	t.Parallel()

	b, clk, _ := newBucket(t, ratelimiter.Config{Capacity: 3, RefillRate: 1, RefillInterval: time.Minute})
	ctx := context.Background()

	for want := 2; want >= 0; want-- {
		res, err := b.Allow(ctx, "k")
		require.NoError(t, err)
		assert.True(t, res.Allowed())
		assert.Equal(t, want, res.Remaining)
		assert.Equal(t, 3, res.Limit)
	}

	res, err := b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, time.Minute, res.RetryAfter(clk.Now()))

	clk.Advance(90 * time.Second)
	res, err = b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())
	assert.Equal(t, 0, res.Remaining)
	assert.Equal(t, clk.Now().Add(30*time.Second), res.ResetAt)

	clk.Advance(time.Hour)
	res, err = b.Status(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Remaining, "refill is capped at capacity")
}

func TestBucket_DeniedRequestKeepsTokens(t *testing.T) {
	t.Parallel()

	b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 5, RefillRate: 1, RefillInterval: time.Minute})
	ctx := context.Background()

	res, err := b.AllowN(ctx, "k", 4)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Remaining)

	res, err = b.AllowN(ctx, "k", 3)
	require.NoError(t, err)
	assert.False(t, res.Allowed())
	assert.Equal(t, -2, res.Remaining)

	res, err = b.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, res.Allowed())

	_, err = b.AllowN(ctx, "k", 0)
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidTokenCount)
}

func TestBucket_KeysAreIndependentAndReset(t *testing.T) {
	t.Parallel()

	b, _, store := newBucket(t, ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Minute})
	ctx := context.Background()

	res, _ := b.Allow(ctx, "a")
	assert.True(t, res.Allowed())
	res, _ = b.Allow(ctx, "a")
	assert.False(t, res.Allowed())
	res, _ = b.Allow(ctx, "b")
	assert.True(t, res.Allowed())
	assert.Equal(t, 2, store.Len())

	require.NoError(t, b.Reset(ctx, "a"))
	res, _ = b.Allow(ctx, "a")
	assert.True(t, res.Allowed())
}

func TestBucket_Concurrent(t *testing.T) {
	t.Parallel()

	b, _, _ := newBucket(t, ratelimiter.Config{Capacity: 10, RefillRate: 1, RefillInterval: time.Hour})
	ctx := context.Background()

	var allowed atomic.Int32
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res, err := b.Allow(ctx, "k"); err == nil && res.Allowed() {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 10, allowed.Load())
}

func TestMemoryStore_SweepsIdleBuckets(t *testing.T) {
	t.Parallel()

	clk := &clock{now: time.Now()}
	store := ratelimiter.NewMemoryStore(ratelimiter.WithClock(clk.Now), ratelimiter.WithCleanupInterval(10*time.Millisecond))
	t.Cleanup(func() { _ = store.Close() })

	cfg := ratelimiter.Config{Capacity: 1, RefillRate: 1, RefillInterval: time.Second}
	_, _, err := store.ConsumeTokens(context.Background(), "k", 1, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())

	clk.Advance(2 * time.Hour)
	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 10*time.Millisecond)
	require.NoError(t, store.Close())
}

func TestComposite(t *testing.T) {
	t.Parallel()

	ip := func(*http.Request) string { return "198.51.100.4" }
	empty := func(*http.Request) string { return "" }
	long := func(*http.Request) string { return strings.Repeat("x", 80) }
	r := httptest.NewRequest(http.MethodGet, "/", nil)

	assert.Equal(t, "send:198.51.100.4", ratelimiter.Composite(func(*http.Request) string { return "send" }, empty, ip)(r))
	assert.Empty(t, ratelimiter.Composite(empty)(r))

	hashed := ratelimiter.Composite(ip, long)(r)
	assert.LessOrEqual(t, len(hashed), 64)
	assert.Equal(t, hashed, ratelimiter.Composite(ip, long)(r))
}

func TestHeaders(t *testing.T) {
	t.Parallel()

	now := time.Unix(1000, 0)
	rec := httptest.NewRecorder()
	ratelimiter.Headers(rec, ratelimiter.Result{Limit: 5, Remaining: -1, ResetAt: now.Add(1500 * time.Millisecond)}, now)

	assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "1001", rec.Header().Get("X-RateLimit-Reset"))
	assert.Equal(t, "2", rec.Header().Get("Retry-After"))

	rec = httptest.NewRecorder()
	ratelimiter.Headers(rec, ratelimiter.Result{Limit: 5, Remaining: 4, ResetAt: now}, now)
	assert.Empty(t, rec.Header().Get("Retry-After"))
}
