package storedsafe

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestInMemoryMetricsCollector(t *testing.T) {
	collector := NewInMemoryMetricsCollector()

	// Test counters
	collector.IncrementCounter("test.counter", map[string]string{"tag1": "value1"})
	collector.IncrementCounterBy("test.counter", 5, map[string]string{"tag1": "value1"})
	collector.IncrementCounter("test.counter", map[string]string{"tag1": "value2"})

	assert.Equal(t, int64(6), collector.GetCounterValue("test.counter", map[string]string{"tag1": "value1"}))
	assert.Equal(t, int64(1), collector.GetCounterValue("test.counter", map[string]string{"tag1": "value2"}))
	assert.Equal(t, int64(7), collector.GetCounterTotal("test.counter"))
	assert.Equal(t, int64(0), collector.GetCounterTotal("test"))

	// Test timings
	duration := 100 * time.Millisecond
	collector.RecordTiming("test.timing", duration, map[string]string{"operation": "test"})

	timings := collector.GetTimings()
	require.Len(t, timings, 1)
	assert.Equal(t, "test.timing", timings[0].Name)
	assert.Equal(t, duration, timings[0].Duration)
	assert.Equal(t, "test", timings[0].Tags["operation"])

	assert.NoError(t, collector.Flush())
}

func TestInMemoryMetricsCollector_Concurrent(t *testing.T) {
	collector := NewInMemoryMetricsCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("c", nil)
			collector.RecordTiming("t", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), collector.GetCounterValue("c", nil))
	assert.Len(t, collector.GetTimings(), 50)
}

func TestStandardObservabilityHook(t *testing.T) {
	collector := NewInMemoryMetricsCollector()
	hook := NewStandardObservabilityHook(collector)
	ctx := context.Background()
	info := RequestInfo{RequestID: "id", Method: http.MethodGet, Path: "/vault"}

	hook.OnRequestStart(ctx, info)
	assert.Equal(t, int64(1), collector.GetCounterValue("storedsafe.hook.started", map[string]string{"method": "GET"}))

	hook.OnRequestComplete(ctx, info, http.StatusOK, 50*time.Millisecond, nil)
	assert.Equal(t, int64(1), collector.GetCounterValue("storedsafe.hook.completed", map[string]string{
		"method": "GET",
		"status": "200",
	}))

	hook.OnRequestComplete(ctx, info, 0, time.Millisecond, context.DeadlineExceeded)
	hook.OnError(ctx, info, context.DeadlineExceeded)
	assert.Equal(t, int64(1), collector.GetCounterValue("storedsafe.hook.failed", map[string]string{
		"method": "GET",
		"status": "0",
	}))
	assert.Equal(t, int64(1), collector.GetCounterValue("storedsafe.hook.errors", map[string]string{
		"method":     "GET",
		"error_type": "timeout",
	}))
	assert.Len(t, collector.GetTimings(), 2)
}

func TestErrorType(t *testing.T) {
	assert.Equal(t, "none", errorType(nil))
	assert.Equal(t, "precondition", errorType(ErrTokenMissing))
	assert.Equal(t, "configuration", errorType(ErrConfigLoad))
	assert.Equal(t, "timeout", errorType(context.DeadlineExceeded))
	assert.Equal(t, "transport", errorType(errors.New("boom")))
}

// MockObservabilityHook is a testify mock of ObservabilityHook.
type MockObservabilityHook struct {
	mock.Mock
}

func (m *MockObservabilityHook) OnRequestStart(ctx context.Context, info RequestInfo) {
	m.Called(ctx, info)
}

func (m *MockObservabilityHook) OnRequestComplete(ctx context.Context, info RequestInfo, status int, duration time.Duration, err error) {
	m.Called(ctx, info, status, duration, err)
}

func (m *MockObservabilityHook) OnError(ctx context.Context, info RequestInfo, err error) {
	m.Called(ctx, info, err)
}

func TestClient_InstrumentsRequests(t *testing.T) {
	hook := new(MockObservabilityHook)
	matchInfo := mock.MatchedBy(func(info RequestInfo) bool {
		return info.RequestID != "" &&
			info.Method == http.MethodGet &&
			info.Path == "/vault" &&
			info.URL == "https://safe.example.com/api/1.0/vault"
	})
	hook.On("OnRequestStart", mock.Anything, matchInfo).Return().Once()
	hook.On("OnRequestComplete", mock.Anything, matchInfo, http.StatusOK, mock.AnythingOfType("time.Duration"), nil).Return().Once()

	metrics := NewInMemoryMetricsCollector()
	client, _ := newTestClient(t, WithToken("tok"), WithObservabilityHook(hook), WithMetricsCollector(metrics))

	_, err := client.ListVaults(context.Background())
	require.NoError(t, err)

	hook.AssertExpectations(t)
	hook.AssertNotCalled(t, "OnError", mock.Anything, mock.Anything, mock.Anything)

	tags := map[string]string{"method": http.MethodGet, "path": "/vault"}
	assert.Equal(t, int64(1), metrics.GetCounterValue(MetricRequests, tags))
	assert.Equal(t, int64(0), metrics.GetCounterValue(MetricRequestErrors, tags))
	timings := metrics.GetTimings()
	require.Len(t, timings, 1)
	assert.Equal(t, MetricRequestDuration, timings[0].Name)
}

func TestClient_PreconditionFailureIsNotInstrumented(t *testing.T) {
	hook := new(MockObservabilityHook)
	metrics := NewInMemoryMetricsCollector()
	client, _ := newTestClient(t, WithObservabilityHook(hook), WithMetricsCollector(metrics))

	_, err := client.ListVaults(context.Background())
	assert.ErrorIs(t, err, ErrTokenMissing)

	hook.AssertNotCalled(t, "OnRequestStart", mock.Anything, mock.Anything)
	assert.Equal(t, int64(0), metrics.GetCounterTotal(MetricRequests))
}
