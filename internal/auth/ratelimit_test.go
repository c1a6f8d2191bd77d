package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newTestLimiter(max int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(max, time.Minute, 5*time.Minute)
	rl.now = clock.now
	return rl, clock
}

func TestRateLimiter_BlocksAfterMaxAttempts(t *testing.T) {
	rl, clock := newTestLimiter(3)

	for i := 0; i < 3; i++ {
		assert.True(t, rl.Allow("1.2.3.4"), "attempt %d", i+1)
	}
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "other keys are independent")

	assert.Equal(t, clock.t.Add(5*time.Minute), rl.BlockedUntil("1.2.3.4"))

	clock.advance(5*time.Minute + time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.BlockedUntil("1.2.3.4").IsZero())
}

func TestRateLimiter_WindowResets(t *testing.T) {
	rl, clock := newTestLimiter(2)

	assert.True(t, rl.Allow("k"))
	assert.True(t, rl.Allow("k"))
	clock.advance(2 * time.Minute)
	assert.True(t, rl.Allow("k"))
	assert.True(t, rl.Allow("k"))
	assert.False(t, rl.Allow("k"))
}

func TestRateLimiter_RecordSuccessAndPrune(t *testing.T) {
	rl, clock := newTestLimiter(1)

	assert.True(t, rl.Allow("k"))
	rl.RecordSuccess("k")
	assert.True(t, rl.Allow("k"))

	assert.True(t, rl.Allow("stale"))
	clock.advance(10 * time.Minute)
	rl.Allow("fresh")

	rl.mu.Lock()
	_, stale := rl.attempts["stale"]
	_, fresh := rl.attempts["fresh"]
	rl.mu.Unlock()
	assert.False(t, stale)
	assert.True(t, fresh)
}

func TestRateLimiter_Middleware(t *testing.T) {
	rl, _ := newTestLimiter(1)

	e := echo.New()
	blocked := func(c echo.Context, retryAfter time.Duration) error {
		return c.String(http.StatusTooManyRequests, "slow down")
	}
	ok := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/login", ok, rl.Middleware(blocked))
	e.POST("/login", ok, rl.Middleware(blocked))

	do := func(method string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, "/login", nil)
		req.RemoteAddr = "9.9.9.9:1234"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, do(http.MethodPost).Code)
	rec := do(http.MethodPost)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "300", rec.Header().Get("Retry-After"))

	assert.Equal(t, http.StatusOK, do(http.MethodGet).Code, "GET is never limited")
}
