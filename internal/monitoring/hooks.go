package monitoring

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hengadev/storedsafe"
)

// LoggingObservabilityHook logs every API call at info level. Responses with
// a status of 400 or more are logged as warnings, transport failures as
// errors.
type LoggingObservabilityHook struct {
	logger *slog.Logger
}

var _ storedsafe.ObservabilityHook = (*LoggingObservabilityHook)(nil)

// NewLoggingObservabilityHook creates a new logging observability hook
func NewLoggingObservabilityHook(logger *slog.Logger) *LoggingObservabilityHook {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObservabilityHook{logger: logger}
}

func (l *LoggingObservabilityHook) OnRequestStart(ctx context.Context, info storedsafe.RequestInfo) {
	l.logger.DebugContext(ctx, "request started",
		slog.String("request_id", info.RequestID),
		slog.String("method", info.Method),
		slog.String("path", info.Path),
	)
}

func (l *LoggingObservabilityHook) OnRequestComplete(ctx context.Context, info storedsafe.RequestInfo, status int, duration time.Duration, err error) {
	attrs := []any{
		slog.String("request_id", info.RequestID),
		slog.String("method", info.Method),
		slog.String("path", info.Path),
		slog.Int("status", status),
		slog.Int64("duration_ms", duration.Milliseconds()),
	}
	switch {
	case err != nil:
		// Reported by OnError.
	case status >= http.StatusBadRequest:
		l.logger.WarnContext(ctx, "request rejected", attrs...)
	default:
		l.logger.InfoContext(ctx, "request completed", attrs...)
	}
}

func (l *LoggingObservabilityHook) OnError(ctx context.Context, info storedsafe.RequestInfo, err error) {
	l.logger.ErrorContext(ctx, "request failed",
		slog.String("request_id", info.RequestID),
		slog.String("method", info.Method),
		slog.String("path", info.Path),
		slog.String("error", err.Error()),
	)
}
