package ratelimit

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newLimiter(t *testing.T, clock *time.Time) *MemoryRateLimiter {
	t.Helper()
	rl := NewMemoryRateLimiter(&Config{
		WindowSize:    time.Minute,
		MaxAttempts:   3,
		CleanupPeriod: time.Hour,
		BanDuration:   10 * time.Minute,
	})
	rl.now = func() time.Time { return *clock }
	t.Cleanup(rl.Close)
	return rl
}

func TestAllowUntilBanned(t *testing.T) {
	clock := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	rl := newLimiter(t, &clock)

	for want := 2; want >= 0; want-- {
		ok, info := rl.Allow("1.2.3.4")
		require.True(t, ok)
		assert.Equal(t, want, info.Remaining)
	}

	ok, info := rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.True(t, info.Banned)
	assert.Equal(t, 10*time.Minute, info.RetryAfter)

	ok, _ = rl.Allow("5.6.7.8")
	assert.True(t, ok, "other clients are unaffected")

	clock = clock.Add(5 * time.Minute)
	ok, info = rl.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, 5*time.Minute, info.RetryAfter)

	clock = clock.Add(6 * time.Minute)
	ok, info = rl.Allow("1.2.3.4")
	assert.True(t, ok, "ban expired")
	assert.Equal(t, 2, info.Remaining)
}

func TestWindowResets(t *testing.T) {
	clock := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	rl := newLimiter(t, &clock)

	rl.Allow("ip")
	rl.Allow("ip")
	clock = clock.Add(2 * time.Minute)

	_, info := rl.Allow("ip")
	assert.Equal(t, 2, info.Remaining)
}

func TestRecordSuccessClears(t *testing.T) {
	clock := time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)
	rl := newLimiter(t, &clock)

	rl.Allow("ip")
	rl.Allow("ip")
	rl.RecordSuccess("ip")

	_, info := rl.Allow("ip")
	assert.Equal(t, 2, info.Remaining)
	assert.Equal(t, 3, rl.Limit())
}

func TestGetClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "10.0.0.1", GetClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", GetClientIP(r))

	r.Header.Set("X-Forwarded-For", " 10.0.0.3 , 10.0.0.4")
	assert.Equal(t, "10.0.0.3", GetClientIP(r))
}
