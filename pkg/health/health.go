// Package health serves Kubernetes-style liveness and readiness probes.
//
// Checks run on demand when a probe endpoint is hit, each bounded by its own
// timeout. Readiness additionally gates on a manual flag so the service can
// drain during graceful shutdown.
package health

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
)

// CheckFunc probes one component. It returns nil when the component is
// healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc
}

// Service holds registered probes and the manual readiness flag. The zero
// value is not ready; call SetReady(true) once initialization completes.
type Service struct {
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []check
	readiness []check
}

// New creates an empty health service in the not-ready state.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a probe for /livez. Liveness failures signal the
// process itself is broken, e.g. a goroutine leak.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a probe for /readyz. Readiness failures signal
// the service should not receive traffic, e.g. the database is unreachable.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, check{name: name, timeout: timeout, fn: fn})
}

// SetReady flips the manual readiness flag. Set it to false at the start of
// graceful shutdown so load balancers stop routing new requests.
func (s *Service) SetReady(ready bool) {
	s.ready.Store(ready)
}

// IsReady reports whether the manual flag is set. Probe checks are evaluated
// by the endpoint, not here.
func (s *Service) IsReady() bool {
	return s.ready.Load()
}

// LiveEndpoint answers liveness probes: 200 when every liveness check passes,
// 503 with per-check failure messages otherwise.
func (s *Service) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	checks := append([]check(nil), s.liveness...)
	s.mu.RUnlock()

	writeStatus(w, runChecks(r.Context(), checks))
}

// ReadyEndpoint answers readiness probes. The manual flag is consulted first;
// a draining service fails fast without touching its dependencies.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	if !s.ready.Load() {
		writeStatus(w, map[string]string{"service": "not ready"})
		return
	}

	s.mu.RLock()
	checks := append([]check(nil), s.readiness...)
	s.mu.RUnlock()

	writeStatus(w, runChecks(r.Context(), checks))
}

// runChecks executes each check with its timeout and collects failures by
// name.
func runChecks(ctx context.Context, checks []check) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err := c.fn(checkCtx)
		cancel()
		if err != nil {
			failures[c.name] = err.Error()
		}
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	status := http.StatusOK
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		if len(failures) == 0 {
			e.Field("status", func(e *jx.Encoder) { e.Str("ok") })
			return
		}
		status = http.StatusServiceUnavailable
		e.Field("status", func(e *jx.Encoder) { e.Str("unhealthy") })
		e.Field("checks", func(e *jx.Encoder) {
			e.Obj(func(e *jx.Encoder) {
				for name, msg := range failures {
					e.Field(name, func(e *jx.Encoder) { e.Str(msg) })
				}
			})
		})
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}
