package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func probe(t *testing.T, endpoint http.HandlerFunc, path string) (int, map[string]any) {
	t.Helper()

	rec := httptest.NewRecorder()
	endpoint(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestLiveEndpoint(t *testing.T) {
	t.Run("no checks is healthy", func(t *testing.T) {
		s := New()

		code, body := probe(t, s.LiveEndpoint, "/livez")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body["status"])
	})

	t.Run("failing check reports 503", func(t *testing.T) {
		s := New()
		s.AddLivenessCheck("stuck", time.Second, func(_ context.Context) error {
			return errors.New("worker wedged")
		})

		code, body := probe(t, s.LiveEndpoint, "/livez")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", body["status"])

		checks, ok := body["checks"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "worker wedged", checks["stuck"])
	})

	t.Run("check gets a bounded context", func(t *testing.T) {
		s := New()
		s.AddLivenessCheck("slow", 10*time.Millisecond, func(ctx context.Context) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
				return nil
			}
		})

		code, _ := probe(t, s.LiveEndpoint, "/livez")
		assert.Equal(t, http.StatusServiceUnavailable, code)
	})
}

func TestReadyEndpoint(t *testing.T) {
	t.Run("not ready until flagged", func(t *testing.T) {
		s := New()

		code, body := probe(t, s.ReadyEndpoint, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "unhealthy", body["status"])
	})

	t.Run("ready with passing checks", func(t *testing.T) {
		s := New()
		s.AddReadinessCheck("db", time.Second, func(_ context.Context) error { return nil })
		s.SetReady(true)

		code, body := probe(t, s.ReadyEndpoint, "/readyz")
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, "ok", body["status"])
		assert.True(t, s.IsReady())
	})

	t.Run("dependency failure flips readiness", func(t *testing.T) {
		s := New()
		s.AddReadinessCheck("db", time.Second, func(_ context.Context) error {
			return errors.New("connection refused")
		})
		s.SetReady(true)

		code, body := probe(t, s.ReadyEndpoint, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, code)

		checks, ok := body["checks"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "connection refused", checks["db"])
	})

	t.Run("draining fails fast without running checks", func(t *testing.T) {
		s := New()
		called := false
		s.AddReadinessCheck("db", time.Second, func(_ context.Context) error {
			called = true
			return nil
		})
		s.SetReady(true)
		s.SetReady(false)

		code, _ := probe(t, s.ReadyEndpoint, "/readyz")
		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.False(t, called)
	})
}

func TestGoroutineCountCheck(t *testing.T) {
	assert.NoError(t, GoroutineCountCheck(100000)(context.Background()))
	assert.Error(t, GoroutineCountCheck(0)(context.Background()))
}
