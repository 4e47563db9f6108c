package httpmiddleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func limited(t *testing.T, cfg RateLimitConfig) http.Handler {
	t.Helper()
	return RateLimit(cfg)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func hit(h http.Handler, remoteAddr string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = remoteAddr
	for k, v := range header {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRateLimit(t *testing.T) {
	t.Run("allows up to max", func(t *testing.T) {
		h := limited(t, RateLimitConfig{Max: 3, Window: time.Minute})

		for i := 0; i < 3; i++ {
			rec := hit(h, "192.0.2.1:1000", nil)
			require.Equal(t, http.StatusOK, rec.Code, "request %d", i+1)
			assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
			assert.NotEmpty(t, rec.Header().Get("X-RateLimit-Reset"))
		}
	})

	t.Run("rejects over max with json body", func(t *testing.T) {
		h := limited(t, RateLimitConfig{Max: 1, Window: time.Minute})

		require.Equal(t, http.StatusOK, hit(h, "192.0.2.2:1000", nil).Code)
		rec := hit(h, "192.0.2.2:1000", nil)

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
		assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
		assert.NotEmpty(t, rec.Header().Get("Retry-After"))

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "rate limit exceeded", body["message"])
	})

	t.Run("clients are limited independently", func(t *testing.T) {
		h := limited(t, RateLimitConfig{Max: 1, Window: time.Minute})

		assert.Equal(t, http.StatusOK, hit(h, "192.0.2.3:1000", nil).Code)
		assert.Equal(t, http.StatusOK, hit(h, "192.0.2.4:1000", nil).Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.0.2.3:2000", nil).Code)
	})

	t.Run("custom key func", func(t *testing.T) {
		h := limited(t, RateLimitConfig{
			Max:    1,
			Window: time.Minute,
			KeyFunc: func(r *http.Request) string {
				return r.Header.Get("X-API-Key")
			},
		})

		assert.Equal(t, http.StatusOK, hit(h, "192.0.2.5:1", map[string]string{"X-API-Key": "a"}).Code)
		assert.Equal(t, http.StatusTooManyRequests, hit(h, "192.0.2.6:1", map[string]string{"X-API-Key": "a"}).Code)
		assert.Equal(t, http.StatusOK, hit(h, "192.0.2.7:1", map[string]string{"X-API-Key": "b"}).Code)
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		header     map[string]string
		want       string
	}{
		{
			name:       "remote addr",
			remoteAddr: "192.0.2.10:4444",
			want:       "192.0.2.10",
		},
		{
			name:       "forwarded-for takes the first hop",
			remoteAddr: "192.0.2.10:4444",
			header:     map[string]string{"X-Forwarded-For": "203.0.113.50, 70.41.3.18"},
			want:       "203.0.113.50",
		},
		{
			name:       "real-ip fallback",
			remoteAddr: "192.0.2.10:4444",
			header:     map[string]string{"X-Real-IP": "203.0.113.51"},
			want:       "203.0.113.51",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
