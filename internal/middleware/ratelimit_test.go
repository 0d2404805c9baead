package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iyunix/asha-chat/internal/logging"
	"github.com/iyunix/asha-chat/internal/ratelimit"
)

func TestBanDetailRoundsUp(t *testing.T) {
	cases := map[time.Duration]string{
		10 * time.Second:   "Too many failed attempts. Try again in 1 minute.",
		60 * time.Second:   "Too many failed attempts. Try again in 1 minute.",
		61 * time.Second:   "Too many failed attempts. Try again in 2 minutes.",
		1770 * time.Second: "Too many failed attempts. Try again in 30 minutes.",
	}
	for wait, want := range cases {
		assert.Equal(t, want, banDetail(wait), wait.String())
	}
}

func TestThrottleShortBan(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		WindowSize:    time.Minute,
		MaxAttempts:   1,
		CleanupPeriod: time.Hour,
		BanDuration:   30 * time.Second,
	})
	t.Cleanup(limiter.Close)

	h := Throttle(limiter, "token", &logging.NoOpLogger{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	serve := func() *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/token", nil))
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, serve().Code)

	rec := serve()
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "30", rec.Header().Get("Retry-After"))
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Too many failed attempts. Try again in 1 minute.", body["detail"])
}

func TestThrottleForgivesAfterSuccess(t *testing.T) {
	limiter := ratelimit.NewMemoryRateLimiter(&ratelimit.Config{
		WindowSize:    time.Minute,
		MaxAttempts:   1,
		CleanupPeriod: time.Hour,
		BanDuration:   time.Minute,
	})
	t.Cleanup(limiter.Close)

	h := Throttle(limiter, "token", &logging.NoOpLogger{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/token", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}
