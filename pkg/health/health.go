// Package health provides Kubernetes-style liveness and readiness probes.
//
// Registered checks are executed by a single background scheduler goroutine
// at a fixed interval. A check flips to unhealthy only after failing
// consecutively failureThreshold times, and back to healthy after succeeding
// successThreshold times, which keeps flaky dependencies from flapping the
// probe endpoints.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one component. It returns nil when the component is
// healthy.
type CheckFunc func(ctx context.Context) error

const (
	defaultFailureThreshold = 3
	defaultSuccessThreshold = 1
)

type probeKind int

const (
	liveness probeKind = iota
	readiness
)

// probe is the registration and runtime state of a single check. All mutable
// fields are guarded by Health.mu.
type probe struct {
	name    string
	kind    probeKind
	timeout time.Duration
	check   CheckFunc

	healthy bool
	lastErr error
	fails   int
	oks     int
}

// Health manages the probe set for a service.
type Health struct {
	mu     sync.Mutex
	probes []*probe
	ready  bool
	cancel context.CancelFunc
}

// New creates a Health instance. The service starts not ready; call
// SetReady(true) once initialization is complete.
func New() *Health {
	return &Health{}
}

// AddLivenessCheck registers a check that decides whether the process is
// alive (goroutine counts, deadlocks). Failing liveness typically gets the
// process restarted.
func (h *Health) AddLivenessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(name, liveness, timeout, check)
}

// AddReadinessCheck registers a check that decides whether the service should
// receive traffic (store reachable, collaborators up).
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, check CheckFunc) {
	h.add(name, readiness, timeout, check)
}

func (h *Health) add(name string, kind probeKind, timeout time.Duration, check CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.probes = append(h.probes, &probe{
		name:    name,
		kind:    kind,
		timeout: timeout,
		check:   check,
		healthy: true, // assume healthy until proven otherwise
	})
}

// Start launches the scheduler goroutine running every registered check at
// the given interval. Register all checks before calling Start.
func (h *Health) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	h.mu.Lock()
	h.cancel = cancel
	h.mu.Unlock()

	go func() {
		h.runAll(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.runAll(ctx)
			}
		}
	}()
}

// runAll executes every probe once, applying the flap thresholds.
func (h *Health) runAll(ctx context.Context) {
	h.mu.Lock()
	probes := make([]*probe, len(h.probes))
	copy(probes, h.probes)
	h.mu.Unlock()

	for _, p := range probes {
		checkCtx, cancel := context.WithTimeout(ctx, p.timeout)
		err := p.check(checkCtx)
		cancel()

		h.mu.Lock()
		p.lastErr = err
		if err != nil {
			p.oks = 0
			p.fails++
			if p.fails >= defaultFailureThreshold {
				p.healthy = false
			}
		} else {
			p.fails = 0
			p.oks++
			if p.oks >= defaultSuccessThreshold {
				p.healthy = true
			}
		}
		h.mu.Unlock()
	}
}

// SetReady toggles the manual readiness gate: true after initialization,
// false at the start of graceful shutdown to drain traffic.
func (h *Health) SetReady(ready bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ready = ready
}

// IsReady reports whether the manual gate is open and every readiness probe
// is currently healthy.
func (h *Health) IsReady() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.ready {
		return false
	}
	for _, p := range h.probes {
		if p.kind == readiness && !p.healthy {
			return false
		}
	}
	return true
}

// Stop cancels the scheduler. Safe to call multiple times.
func (h *Health) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
}

// statusResponse is the JSON body of the probe endpoints.
type statusResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// LiveEndpoint serves /livez: 200 when all liveness probes pass, 503 with
// per-check failures otherwise.
func (h *Health) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	h.serve(w, h.failures(liveness))
}

// ReadyEndpoint serves /readyz: 200 when the service is marked ready and all
// readiness probes pass, 503 with details otherwise.
func (h *Health) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	failures := h.failures(readiness)

	h.mu.Lock()
	ready := h.ready
	h.mu.Unlock()
	if !ready {
		failures["_readiness"] = "service is not ready"
	}
	h.serve(w, failures)
}

// failures collects the unhealthy probes of one kind.
func (h *Health) failures(kind probeKind) map[string]string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make(map[string]string)
	for _, p := range h.probes {
		if p.kind != kind || p.healthy {
			continue
		}
		if p.lastErr != nil {
			out[p.name] = p.lastErr.Error()
		} else {
			out[p.name] = "check is unhealthy"
		}
	}
	return out
}

func (h *Health) serve(w http.ResponseWriter, failures map[string]string) {
	w.Header().Set("Content-Type", "application/json")

	resp := statusResponse{Status: "ok"}
	code := http.StatusOK
	if len(failures) > 0 {
		resp.Status = "unhealthy"
		resp.Checks = failures
		code = http.StatusServiceUnavailable
	}
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(resp)
}
