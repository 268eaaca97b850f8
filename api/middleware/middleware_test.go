package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/openalpha/hwmvault/metrics"
)

func TestAllowIPBlocksWhenDry(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             2,
		BlockDuration:     10 * time.Second,
		CleanupInterval:   time.Hour,
		BucketTTL:         time.Hour,
	})
	defer rl.Stop()
	now := time.Unix(1_700_000_000, 0)
	rl.now = func() time.Time { return now }

	ok, info := rl.AllowIP("10.0.0.1")
	require.True(t, ok)
	require.Equal(t, 1, info.Remaining)
	ok, _ = rl.AllowIP("10.0.0.1")
	require.True(t, ok)

	ok, info = rl.AllowIP("10.0.0.1")
	require.False(t, ok)
	require.Equal(t, 11, info.RetryAfter)

	// other clients are unaffected
	ok, _ = rl.AllowIP("10.0.0.2")
	require.True(t, ok)

	// refill does not lift the block early
	now = now.Add(5 * time.Second)
	ok, _ = rl.AllowIP("10.0.0.1")
	require.False(t, ok)

	now = now.Add(6 * time.Second)
	ok, _ = rl.AllowIP("10.0.0.1")
	require.True(t, ok)

	now = now.Add(2 * time.Hour)
	rl.cleanup()
	require.Zero(t, rl.Size())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	require.Equal(t, "192.0.2.1", ClientIP(r))

	r.Header.Set("X-Real-IP", "198.51.100.2")
	require.Equal(t, "198.51.100.2", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	require.Equal(t, "203.0.113.7", ClientIP(r))
}

func TestRateLimitMiddleware(t *testing.T) {
	rl := NewRateLimiter(&RateLimitConfig{
		RequestsPerSecond: 1,
		Burst:             1,
		BlockDuration:     time.Minute,
		CleanupInterval:   time.Hour,
		BucketTTL:         time.Hour,
	})
	defer rl.Stop()

	h := RateLimitMiddleware(rl)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusTooManyRequests, rr.Code)
	require.NotEmpty(t, rr.Header().Get("Retry-After"))
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	c := metrics.NewCollector(prometheus.NewRegistry())
	r := mux.NewRouter()
	r.Use(Metrics(c))
	r.HandleFunc("/v1/vault/holders/{address}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, addr := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/vault/holders/"+addr, nil))
	}

	got := testutil.ToFloat64(c.APIRequestsTotal.WithLabelValues(http.MethodGet, "/v1/vault/holders/{address}", "404"))
	require.Equal(t, 2.0, got)
}

func TestCORSPreflight(t *testing.T) {
	called := false
	h := CORS(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { called = true }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/v1/vault", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))
	require.False(t, called)
}
