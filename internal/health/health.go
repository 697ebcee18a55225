package health

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/hengadev/storedsafe"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	// StatusHealthy indicates the component is healthy
	StatusHealthy HealthStatus = "healthy"
	// StatusUnhealthy indicates the component is unhealthy
	StatusUnhealthy HealthStatus = "unhealthy"
	// StatusDegraded indicates the component is partially healthy
	StatusDegraded HealthStatus = "degraded"
	// StatusUnknown indicates the component status is unknown
	StatusUnknown HealthStatus = "unknown"
)

// HealthCheck represents a health check for a component
type HealthCheck struct {
	Name      string
	CheckFunc func(context.Context) (HealthStatus, error)
	Timeout   time.Duration
	Critical  bool
}

// HealthResult represents the result of a health check
type HealthResult struct {
	Name     string        `json:"name" yaml:"name"`
	Status   HealthStatus  `json:"status" yaml:"status"`
	Error    string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
	Critical bool          `json:"critical" yaml:"critical"`
}

// HealthReport represents the overall health of a StoredSafe connection
type HealthReport struct {
	Status    HealthStatus    `json:"status" yaml:"status"`
	Host      string          `json:"host" yaml:"host"`
	Timestamp time.Time       `json:"timestamp" yaml:"timestamp"`
	Results   []*HealthResult `json:"results" yaml:"results"`
}

// HealthChecker manages and executes health checks
type HealthChecker struct {
	mu      sync.RWMutex
	host    string
	checks  map[string]*HealthCheck
	timeout time.Duration
}

// NewHealthChecker creates a health checker with no checks registered.
func NewHealthChecker(host string) *HealthChecker {
	return &HealthChecker{
		host:    host,
		checks:  make(map[string]*HealthCheck),
		timeout: 10 * time.Second,
	}
}

// NewClientChecker returns a checker with the standard checks for client:
// "server" (critical) asks for the server version, "session" validates the
// token.
func NewClientChecker(client *storedsafe.Client) *HealthChecker {
	hc := NewHealthChecker(client.Host())
	_ = hc.RegisterCheck(&HealthCheck{
		Name:      "server",
		Critical:  true,
		CheckFunc: ServerCheck(client),
	})
	_ = hc.RegisterCheck(&HealthCheck{
		Name:      "session",
		CheckFunc: SessionCheck(client),
	})
	return hc
}

// RegisterCheck registers a health check
func (hc *HealthChecker) RegisterCheck(check *HealthCheck) error {
	if check == nil {
		return fmt.Errorf("health check cannot be nil")
	}
	if check.Name == "" {
		return fmt.Errorf("health check name cannot be empty")
	}
	if check.CheckFunc == nil {
		return fmt.Errorf("health check function cannot be nil")
	}

	hc.mu.Lock()
	defer hc.mu.Unlock()

	if check.Timeout == 0 {
		check.Timeout = hc.timeout
	}
	hc.checks[check.Name] = check
	return nil
}

// CheckHealth runs all registered checks concurrently. Results are sorted by
// name.
func (hc *HealthChecker) CheckHealth(ctx context.Context) *HealthReport {
	hc.mu.RLock()
	checks := make([]*HealthCheck, 0, len(hc.checks))
	for _, check := range hc.checks {
		checks = append(checks, check)
	}
	hc.mu.RUnlock()

	results := make([]*HealthResult, len(checks))
	var wg sync.WaitGroup
	for i, check := range checks {
		wg.Add(1)
		go func(i int, check *HealthCheck) {
			defer wg.Done()
			results[i] = executeCheck(ctx, check)
		}(i, check)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	return &HealthReport{
		Status:    overallStatus(results),
		Host:      hc.host,
		Timestamp: time.Now(),
		Results:   results,
	}
}

func executeCheck(ctx context.Context, check *HealthCheck) *HealthResult {
	start := time.Now()

	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	status, err := check.CheckFunc(checkCtx)
	result := &HealthResult{
		Name:     check.Name,
		Status:   status,
		Duration: time.Since(start),
		Critical: check.Critical,
	}
	if err != nil {
		result.Error = err.Error()
		if result.Status == StatusHealthy {
			result.Status = StatusUnhealthy
		}
	}
	return result
}

// overallStatus is unhealthy when a critical check did not pass, degraded
// when any other check did not pass.
func overallStatus(results []*HealthResult) HealthStatus {
	if len(results) == 0 {
		return StatusUnknown
	}

	degraded := false
	for _, r := range results {
		if r.Status == StatusHealthy {
			continue
		}
		if r.Critical {
			return StatusUnhealthy
		}
		degraded = true
	}
	if degraded {
		return StatusDegraded
	}
	return StatusHealthy
}

// ServerCheck reports whether the server answers the version endpoint. The
// endpoint needs a session, so without a token the status is unknown. Any
// answer below 500, a rejected token included, proves the server is up;
// SessionCheck reports on the token.
func ServerCheck(client *storedsafe.Client) func(context.Context) (HealthStatus, error) {
	return func(ctx context.Context) (HealthStatus, error) {
		resp, err := client.Version(ctx)
		if errors.Is(err, storedsafe.ErrTokenMissing) {
			return StatusUnknown, err
		}
		if err != nil {
			return StatusUnhealthy, err
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return StatusUnhealthy, fmt.Errorf("server returned %d", resp.StatusCode)
		}
		return StatusHealthy, nil
	}
}

// SessionCheck reports whether the client token is still accepted.
func SessionCheck(client *storedsafe.Client) func(context.Context) (HealthStatus, error) {
	return func(ctx context.Context) (HealthStatus, error) {
		resp, err := client.Check(ctx)
		if errors.Is(err, storedsafe.ErrTokenMissing) {
			return StatusUnknown, err
		}
		if err != nil {
			return StatusUnhealthy, err
		}
		return statusFor(resp)
	}
}

func statusFor(resp *storedsafe.Response) (HealthStatus, error) {
	switch {
	case resp.StatusCode == http.StatusOK:
		return StatusHealthy, nil
	case resp.StatusCode >= http.StatusInternalServerError:
		return StatusUnhealthy, fmt.Errorf("server returned %d", resp.StatusCode)
	default:
		return StatusDegraded, fmt.Errorf("server returned %d", resp.StatusCode)
	}
}
