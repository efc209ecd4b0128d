package health

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"
)

const (
	StatusOK        = "ok"
	StatusReady     = "ready"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// DefaultCheckTimeout bounds a single check when New gets zero.
const DefaultCheckTimeout = 5 * time.Second

// ErrCheckTimeout is reported when a check does not return in time.
var ErrCheckTimeout = errors.New("health check timeout")

// CheckFunc returns nil when the component is healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration_ns,omitempty"`
}

// Status is the aggregated answer of a probe.
type Status struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Ready reports whether every check passed.
func (s Status) Ready() bool {
	return s.Status == StatusOK || s.Status == StatusReady
}

// Checker runs named checks concurrently.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
}

// New creates a checker. Each check is bounded by timeout.
func New(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultCheckTimeout
	}
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: timeout,
	}
}

// RegisterCheck adds or replaces the check called name.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Liveness answers as long as the process can run a handler.
func (c *Checker) Liveness() Status {
	return Status{Status: StatusOK, Timestamp: time.Now()}
}

// Readiness runs every check and aggregates the results.
func (c *Checker) Readiness(ctx context.Context) Status {
	c.mu.RLock()
	checks := maps.Clone(c.checks)
	c.mu.RUnlock()

	results := make(map[string]CheckResult, len(checks))
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result := c.run(ctx, check)
			mu.Lock()
			results[name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	status := StatusReady
	for _, r := range results {
		if r.Status != StatusOK {
			status = StatusDegraded
			break
		}
	}
	return Status{Status: status, Checks: results, Timestamp: time.Now()}
}

func (c *Checker) run(ctx context.Context, check CheckFunc) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- check(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			return CheckResult{Status: StatusUnhealthy, Message: err.Error(), Duration: time.Since(start)}
		}
		return CheckResult{Status: StatusOK, Duration: time.Since(start)}
	case <-ctx.Done():
		return CheckResult{Status: StatusUnhealthy, Message: ErrCheckTimeout.Error(), Duration: time.Since(start)}
	}
}

// Pinger is satisfied by the asset stores.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingCheck checks a store. A store without Ping is always healthy.
func PingCheck(store any) CheckFunc {
	return func(ctx context.Context) error {
		if p, ok := store.(Pinger); ok {
			return p.Ping(ctx)
		}
		return nil
	}
}

// RunTracker remembers the outcome of the most recent import.
type RunTracker struct {
	mu         sync.RWMutex
	runs       int
	last       time.Time
	err        error
	unresolved int
}

// NewRunTracker creates a tracker with no recorded runs.
func NewRunTracker() *RunTracker {
	return &RunTracker{}
}

// Observe records one finished import.
func (t *RunTracker) Observe(unresolved int, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runs++
	t.last = time.Now()
	t.err = err
	t.unresolved = unresolved
}

// Last returns the time and error of the most recent import.
func (t *RunTracker) Last() (time.Time, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.err
}

// Check fails while the most recent import returned an error. Unresolved
// references alone do not fail it. No runs yet counts as healthy.
func (t *RunTracker) Check(ctx context.Context) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.err != nil {
		return fmt.Errorf("import %d at %s failed: %w", t.runs, t.last.Format(time.RFC3339), t.err)
	}
	return nil
}
