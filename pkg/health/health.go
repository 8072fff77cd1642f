// Package health tracks named liveness checks for the core daemon and folds
// them into one overall status served by the HTTP API.
package health

import (
	"sort"
	"sync"
	"time"
)

// Status is the result category of a check or of the daemon as a whole.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func() error

// Check is the recorded outcome of a single probe.
type Check struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Message     string    `json:"message"`
	LastChecked time.Time `json:"lastChecked"`
}

// Checker holds the latest outcome per named check.
type Checker struct {
	mu     sync.RWMutex
	checks map[string]Check
}

// NewChecker creates an empty checker. With no checks recorded the
// overall status reads healthy.
func NewChecker() *Checker {
	return &Checker{checks: make(map[string]Check)}
}

// RunCheck executes a probe and records its outcome under name.
func (c *Checker) RunCheck(name string, fn CheckFunc) {
	check := Check{
		Name:        name,
		Status:      StatusHealthy,
		Message:     "OK",
		LastChecked: time.Now(),
	}
	if err := fn(); err != nil {
		check.Status = StatusUnhealthy
		check.Message = err.Error()
	}

	c.mu.Lock()
	c.checks[name] = check
	c.mu.Unlock()
}

// Overall folds the recorded checks into one status: healthy when all
// pass, unhealthy when all fail, degraded in between.
func (c *Checker) Overall() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	failed := 0
	for _, check := range c.checks {
		if check.Status == StatusUnhealthy {
			failed++
		}
	}

	switch {
	case failed == 0:
		return StatusHealthy
	case failed == len(c.checks):
		return StatusUnhealthy
	default:
		return StatusDegraded
	}
}

// Checks returns the recorded outcomes sorted by name, so the health
// endpoint renders a stable order.
func (c *Checker) Checks() []Check {
	c.mu.RLock()
	defer c.mu.RUnlock()

	checks := make([]Check, 0, len(c.checks))
	for _, check := range c.checks {
		checks = append(checks, check)
	}
	sort.Slice(checks, func(i, j int) bool { return checks[i].Name < checks[j].Name })
	return checks
}
