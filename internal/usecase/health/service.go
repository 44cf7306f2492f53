package health

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all backends are reachable.
	Healthy Status = "ok"
	// Degraded indicates some backends are down, or none are registered.
	Degraded Status = "degraded"
	// Unhealthy indicates every backend is down.
	Unhealthy Status = "error"
)

// CheckResult represents an individual backend health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// DefaultTimeout bounds a single ping.
const DefaultTimeout = 2 * time.Second

// Report aggregates health check results keyed by backend name.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service pings every backend.
type Service struct {
	backends []Backend
	timeout  time.Duration
}

// New creates a Service. A non-positive timeout uses DefaultTimeout.
func New(backends []Backend, timeout time.Duration) *Service {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Service{backends: backends, timeout: timeout}
}

// Check pings all backends concurrently.
func (s *Service) Check(ctx context.Context) Report {
	results := make([]CheckResult, len(s.backends))

	var g errgroup.Group
	for i, b := range s.backends {
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, s.timeout)
			defer cancel()
			results[i] = CheckOK
			if err := b.Ping(pctx); err != nil {
				results[i] = CheckError
			}
			return nil
		})
	}
	_ = g.Wait()

	checks := make(map[string]CheckResult, len(s.backends))
	failed := 0
	for i, b := range s.backends {
		checks[b.Name()] = results[i]
		if results[i] == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case len(s.backends) == 0:
		status = Degraded
	case failed == len(s.backends):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
