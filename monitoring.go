package storedsafe

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"
)

// MetricsCollector defines the interface for collecting and reporting metrics
type MetricsCollector interface {
	// Counters
	IncrementCounter(name string, tags map[string]string)
	IncrementCounterBy(name string, value int64, tags map[string]string)

	// Histograms/Timing
	RecordTiming(name string, duration time.Duration, tags map[string]string)

	// Flush any buffered metrics
	Flush() error
}

// RequestInfo describes one API call as seen by an ObservabilityHook.
type RequestInfo struct {
	// RequestID is generated per call and only used for correlation in logs
	// and hooks. It is never sent to the server.
	RequestID string
	Method    string
	Path      string
	URL       string
}

// ObservabilityHook defines hooks for monitoring API calls
type ObservabilityHook interface {
	// Called before the request is handed to the transport
	OnRequestStart(ctx context.Context, info RequestInfo)

	// Called after the transport returns. status is 0 when no response was received.
	OnRequestComplete(ctx context.Context, info RequestInfo, status int, duration time.Duration, err error)

	// Called when the transport reports an error
	OnError(ctx context.Context, info RequestInfo, err error)
}

// NoOpMetricsCollector is a no-op implementation of MetricsCollector
type NoOpMetricsCollector struct{}

func (n *NoOpMetricsCollector) IncrementCounter(name string, tags map[string]string)                 {}
func (n *NoOpMetricsCollector) IncrementCounterBy(name string, value int64, tags map[string]string) {}
func (n *NoOpMetricsCollector) RecordTiming(name string, duration time.Duration, tags map[string]string) {
}
func (n *NoOpMetricsCollector) Flush() error { return nil }

// NoOpObservabilityHook is a no-op implementation of ObservabilityHook
type NoOpObservabilityHook struct{}

func (n *NoOpObservabilityHook) OnRequestStart(ctx context.Context, info RequestInfo) {}
func (n *NoOpObservabilityHook) OnRequestComplete(ctx context.Context, info RequestInfo, status int, duration time.Duration, err error) {
}
func (n *NoOpObservabilityHook) OnError(ctx context.Context, info RequestInfo, err error) {}

// InMemoryMetricsCollector is a simple in-memory implementation for testing and development
type InMemoryMetricsCollector struct {
	mu       sync.Mutex
	counters map[string]int64
	timings  []TimingMetric
}

type TimingMetric struct {
	Name     string
	Duration time.Duration
	Tags     map[string]string
	Time     time.Time
}

// NewInMemoryMetricsCollector creates a new in-memory metrics collector
func NewInMemoryMetricsCollector() *InMemoryMetricsCollector {
	return &InMemoryMetricsCollector{
		counters: make(map[string]int64),
	}
}

func (m *InMemoryMetricsCollector) IncrementCounter(name string, tags map[string]string) {
	m.IncrementCounterBy(name, 1, tags)
}

func (m *InMemoryMetricsCollector) IncrementCounterBy(name string, value int64, tags map[string]string) {
	key := buildMetricKey(name, tags)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[key] += value
}

func (m *InMemoryMetricsCollector) RecordTiming(name string, duration time.Duration, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timings = append(m.timings, TimingMetric{
		Name:     name,
		Duration: duration,
		Tags:     copyTags(tags),
		Time:     time.Now(),
	})
}

func (m *InMemoryMetricsCollector) Flush() error {
	return nil
}

// GetCounterValue returns the current value of a counter
func (m *InMemoryMetricsCollector) GetCounterValue(name string, tags map[string]string) int64 {
	key := buildMetricKey(name, tags)
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[key]
}

// GetCounterTotal sums a counter over every tag combination.
func (m *InMemoryMetricsCollector) GetCounterTotal(name string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for key, v := range m.counters {
		if key == name || len(key) > len(name) && key[:len(name)+1] == name+"," {
			total += v
		}
	}
	return total
}

// GetTimings returns all recorded timing metrics
func (m *InMemoryMetricsCollector) GetTimings() []TimingMetric {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]TimingMetric(nil), m.timings...)
}

func buildMetricKey(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}

	// Sort tags to ensure deterministic key generation
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	key := name
	for _, k := range keys {
		key += "," + k + ":" + tags[k]
	}
	return key
}

func copyTags(tags map[string]string) map[string]string {
	if tags == nil {
		return nil
	}
	copied := make(map[string]string, len(tags))
	for k, v := range tags {
		copied[k] = v
	}
	return copied
}

// StandardObservabilityHook turns hook events into metrics.
type StandardObservabilityHook struct {
	metrics MetricsCollector
}

// NewStandardObservabilityHook creates a new standard observability hook
func NewStandardObservabilityHook(metrics MetricsCollector) *StandardObservabilityHook {
	if metrics == nil {
		metrics = &NoOpMetricsCollector{}
	}
	return &StandardObservabilityHook{metrics: metrics}
}

func (h *StandardObservabilityHook) OnRequestStart(ctx context.Context, info RequestInfo) {
	h.metrics.IncrementCounter("storedsafe.hook.started", map[string]string{
		"method": info.Method,
	})
}

func (h *StandardObservabilityHook) OnRequestComplete(ctx context.Context, info RequestInfo, status int, duration time.Duration, err error) {
	tags := map[string]string{
		"method": info.Method,
		"status": strconv.Itoa(status),
	}
	if err != nil {
		h.metrics.IncrementCounter("storedsafe.hook.failed", tags)
	} else {
		h.metrics.IncrementCounter("storedsafe.hook.completed", tags)
	}
	h.metrics.RecordTiming("storedsafe.hook.duration", duration, tags)
}

func (h *StandardObservabilityHook) OnError(ctx context.Context, info RequestInfo, err error) {
	h.metrics.IncrementCounter("storedsafe.hook.errors", map[string]string{
		"method":     info.Method,
		"error_type": errorType(err),
	})
}

func errorType(err error) string {
	switch {
	case err == nil:
		return "none"
	case IsPreconditionError(err):
		return "precondition"
	case IsConfigurationError(err):
		return "configuration"
	case isTimeout(err):
		return "timeout"
	default:
		return "transport"
	}
}
