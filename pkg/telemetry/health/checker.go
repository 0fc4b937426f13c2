package health

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"
)

// Readiness states.
const (
	StatusOK          = "ok"
	StatusReady       = "ready"
	StatusDegraded    = "degraded"
	StatusUnavailable = "unavailable"
	StatusUnhealthy   = "unhealthy"
)

const defaultCheckTimeout = 5 * time.Second

// ErrCheckTimeout is reported when a check does not return in time.
var ErrCheckTimeout = errors.New("health check timeout")

// CheckFunc reports whether a component is usable. A nil error means healthy.
type CheckFunc func(ctx context.Context) error

// CheckResult is the outcome of one check.
type CheckResult struct {
	Status   string        `json:"status"`
	Message  string        `json:"message,omitempty"`
	Optional bool          `json:"optional,omitempty"`
	Duration time.Duration `json:"duration_ms,omitempty"`
}

// HealthStatus is the body served by the liveness and readiness endpoints.
type HealthStatus struct {
	Status    string                 `json:"status"`
	Uptime    string                 `json:"uptime,omitempty"`
	Checks    map[string]CheckResult `json:"checks,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

type registered struct {
	name     string
	fn       CheckFunc
	optional bool
}

// Checker runs readiness checks for the assistant's components. A failing
// required check makes the assistant unavailable; a failing optional check
// only degrades it.
type Checker struct {
	mu           sync.RWMutex
	checks       map[string]registered
	checkTimeout time.Duration
	started      time.Time
	now          func() time.Time
}

// New returns a Checker that gives each check checkTimeout to finish.
// Zero means five seconds.
func New(checkTimeout time.Duration) *Checker {
	if checkTimeout <= 0 {
		checkTimeout = defaultCheckTimeout
	}
	return &Checker{
		checks:       make(map[string]registered),
		checkTimeout: checkTimeout,
		started:      time.Now(),
		now:          time.Now,
	}
}

// RegisterCheck adds a required check, replacing any check with the same name.
func (c *Checker) RegisterCheck(name string, fn CheckFunc) {
	c.register(name, fn, false)
}

// RegisterOptional adds a check whose failure degrades readiness without
// making the assistant unavailable.
func (c *Checker) RegisterOptional(name string, fn CheckFunc) {
	c.register(name, fn, true)
}

func (c *Checker) register(name string, fn CheckFunc, optional bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = registered{name: name, fn: fn, optional: optional}
}

// UnregisterCheck removes the named check.
func (c *Checker) UnregisterCheck(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.checks, name)
}

// ListChecks returns the registered check names in order.
func (c *Checker) ListChecks() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CheckCount returns the number of registered checks.
func (c *Checker) CheckCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.checks)
}

// CheckLiveness reports that the process is up and for how long.
func (c *Checker) CheckLiveness(ctx context.Context) HealthStatus {
	now := c.now()
	return HealthStatus{
		Status:    StatusOK,
		Uptime:    now.Sub(c.started).Round(time.Second).String(),
		Timestamp: now,
	}
}

// CheckReadiness runs every check concurrently and folds the results.
func (c *Checker) CheckReadiness(ctx context.Context) HealthStatus {
	c.mu.RLock()
	pending := make([]registered, 0, len(c.checks))
	for _, r := range c.checks {
		pending = append(pending, r)
	}
	c.mu.RUnlock()

	results := make([]CheckResult, len(pending))
	var wg sync.WaitGroup
	for i, r := range pending {
		wg.Add(1)
		go func(i int, r registered) {
			defer wg.Done()
			results[i] = c.run(ctx, r)
		}(i, r)
	}
	wg.Wait()

	status := StatusReady
	checks := make(map[string]CheckResult, len(pending))
	for i, r := range pending {
		res := results[i]
		checks[r.name] = res
		if res.Status != StatusUnhealthy {
			continue
		}
		if !r.optional {
			status = StatusUnavailable
		} else if status == StatusReady {
			status = StatusDegraded
		}
	}

	return HealthStatus{
		Status:    status,
		Checks:    checks,
		Timestamp: c.now(),
	}
}

func (c *Checker) run(ctx context.Context, r registered) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.checkTimeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() { done <- r.fn(ctx) }()

	var err error
	select {
	case err = <-done:
	case <-ctx.Done():
		err = ErrCheckTimeout
	}

	res := CheckResult{Status: StatusOK, Optional: r.optional, Duration: time.Since(start)}
	if err != nil {
		res.Status = StatusUnhealthy
		res.Message = err.Error()
	}
	return res
}
