package monitoring

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/hengadev/storedsafe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{"warning", LevelWarn, false},
		{" error ", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.expected, level)
		})
	}
}

func TestParseFormat(t *testing.T) {
	format, err := ParseFormat("console")
	require.NoError(t, err)
	assert.Equal(t, FormatConsole, format)

	format, err = ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, format)

	_, err = ParseFormat("xml")
	assert.Error(t, err)
}

func TestLogLevel_String(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:     LevelInfo,
		Format:    FormatJSON,
		Output:    &buf,
		Component: "cli",
		Fields:    map[string]any{"profile": "prod"},
	})

	logger.Debug("hidden")
	logger.Info("visible", "vault", "7")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &record))
	assert.Equal(t, "visible", record["msg"])
	assert.Equal(t, "storedsafe", record["service"])
	assert.Equal(t, storedsafe.Version, record["version"])
	assert.Equal(t, "cli", record["component"])
	assert.Equal(t, "prod", record["profile"])
	assert.Equal(t, "7", record["vault"])

	_, err := time.Parse(time.RFC3339Nano, record["time"].(string))
	assert.NoError(t, err)
}

func TestNewLogger_Console(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{
		Level:     LevelDebug,
		Format:    FormatConsole,
		Output:    &buf,
		Component: "cli",
	})

	logger.Debug("connecting", "host", "safe.example.com")

	out := buf.String()
	assert.Contains(t, out, "DEBUG")
	assert.Contains(t, out, "connecting")
	assert.Contains(t, out, "component=cli")
	assert.Contains(t, out, "host=safe.example.com")
	assert.NotContains(t, out, "service=")
}

func TestLoggingObservabilityHook(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LevelDebug, Format: FormatJSON, Output: &buf})
	hook := NewLoggingObservabilityHook(logger)
	ctx := context.Background()
	info := storedsafe.RequestInfo{RequestID: "req-1", Method: "GET", Path: "/vault"}

	hook.OnRequestStart(ctx, info)
	hook.OnRequestComplete(ctx, info, 200, 15*time.Millisecond, nil)
	hook.OnRequestComplete(ctx, info, 403, time.Millisecond, nil)
	hook.OnError(ctx, info, errors.New("dial tcp: connection refused"))
	hook.OnRequestComplete(ctx, info, 0, time.Millisecond, errors.New("dial tcp: connection refused"))

	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var r map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &r))
		records = append(records, r)
	}
	require.Len(t, records, 4)

	assert.Equal(t, "request started", records[0]["msg"])
	assert.Equal(t, "DEBUG", records[0]["level"])
	assert.Equal(t, "request completed", records[1]["msg"])
	assert.Equal(t, float64(200), records[1]["status"])
	assert.Equal(t, "request rejected", records[2]["msg"])
	assert.Equal(t, "WARN", records[2]["level"])
	assert.Equal(t, "request failed", records[3]["msg"])
	assert.Equal(t, "ERROR", records[3]["level"])
	assert.Equal(t, "req-1", records[3]["request_id"])
}

func TestLoggingObservabilityHook_WithClient(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(LoggerConfig{Level: LevelInfo, Format: FormatText, Output: &buf})

	client, err := storedsafe.New("safe.example.com",
		storedsafe.WithToken("tok"),
		storedsafe.WithTransport(storedsafe.NewRecordingTransport(nil)),
		storedsafe.WithObservabilityHook(NewLoggingObservabilityHook(logger)),
	)
	require.NoError(t, err)

	_, err = client.ListTemplates(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "request completed")
	assert.Contains(t, buf.String(), "path=/template")
	assert.NotContains(t, buf.String(), "tok")
}
