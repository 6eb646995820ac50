package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newLimiter(t *testing.T, rps float64, burst int) (*RateLimiter, *clock) {
	t.Helper()
	rl := New(Config{RequestsPerSecond: rps, Burst: burst})
	t.Cleanup(rl.Stop)
	c := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl.now = c.now
	return rl, c
}

func TestAllowHonoursBurstAndRefill(t *testing.T) {
	rl, c := newLimiter(t, 2, 3)

	for i := 0; i < 3; i++ {
		ok, _ := rl.allow("a")
		assert.True(t, ok, "request %d", i)
	}
	ok, retry := rl.allow("a")
	assert.False(t, ok)
	assert.Equal(t, 500*time.Millisecond, retry)

	ok, _ = rl.allow("b")
	assert.True(t, ok, "buckets are per key")

	c.t = c.t.Add(500 * time.Millisecond)
	ok, _ = rl.allow("a")
	assert.True(t, ok)
	ok, _ = rl.allow("a")
	assert.False(t, ok)
}

func TestEvictIdle(t *testing.T) {
	rl, c := newLimiter(t, 1, 1)
	rl.allow("a")

	c.t = c.t.Add(time.Hour)
	rl.evictIdle(10 * time.Minute)

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.Empty(t, rl.buckets)
}

func TestMiddlewareRejectsWithRetryAfter(t *testing.T) {
	rl, _ := newLimiter(t, 1, 1)

	app := fiber.New()
	app.Use(rl.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Client-ID", "client-1")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	req = httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Client-ID", "client-1")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "1", resp.Header.Get("Retry-After"))
}

func TestMiddlewareKeepsSeparateBucketsPerClient(t *testing.T) {
	rl, _ := newLimiter(t, 1, 1)

	app := fiber.New()
	app.Use(rl.Middleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString("ok") })

	send := func(clientID string) int {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set("X-Client-ID", clientID)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	for _, id := range []string{"alice", "bobby", "carol"} {
		assert.Equal(t, fiber.StatusOK, send(id), id)
	}
	assert.Equal(t, fiber.StatusTooManyRequests, send("alice"))

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.Len(t, rl.buckets, 3)
	for _, id := range []string{"alice", "bobby", "carol"} {
		assert.Contains(t, rl.buckets, id)
	}
}
