package storedsafe

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, opts ...ClientOption) (*Client, *RecordingTransport) {
	t.Helper()
	rt := NewRecordingTransport(nil)
	client, err := New("safe.example.com", append([]ClientOption{WithTransport(rt)}, opts...)...)
	require.NoError(t, err)
	return client, rt
}

func TestNew_Defaults(t *testing.T) {
	client, err := New("safe.example.com")
	require.NoError(t, err)

	assert.Equal(t, "safe.example.com", client.Host())
	assert.Equal(t, DefaultAPIVersion, client.APIVersion())
	assert.Empty(t, client.APIKey())
	assert.Empty(t, client.Token())
	assert.IsType(t, OSFileSystem{}, client.fs)
	assert.NotNil(t, client.transport)
}

func TestNew_StoresCredentials(t *testing.T) {
	client, err := New("safe.example.com",
		WithAPIKey("key"),
		WithToken("tok"),
		WithAPIVersion("2.0"),
	)
	require.NoError(t, err)

	assert.Equal(t, "key", client.APIKey())
	assert.Equal(t, "tok", client.Token())
	assert.Equal(t, "2.0", client.APIVersion())
}

func TestNew_InvalidOptions(t *testing.T) {
	tests := []struct {
		name string
		opt  ClientOption
	}{
		{"empty api version", WithAPIVersion("")},
		{"nil transport", WithTransport(nil)},
		{"nil file system", WithFileSystem(nil)},
		{"nil logger", WithLogger(nil)},
		{"nil metrics", WithMetricsCollector(nil)},
		{"nil hook", WithObservabilityHook(nil)},
		{"nil http client", WithHTTPClient(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New("safe.example.com", tt.opt)
			assert.Nil(t, client)
			assert.ErrorIs(t, err, ErrInvalidConfiguration)
			assert.True(t, IsConfigurationError(err))
		})
	}
}

func TestWithHTTPClient(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/1.0/utils/version", r.URL.Path)
		assert.Equal(t, "tok", r.Header.Get(TokenHeader))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "storedsafe-go/"))
		_, _ = w.Write([]byte(`{"CALLINFO":{"version":"2.1"}}`))
	}))
	defer server.Close()

	// The default client does not trust the test server certificate.
	host := strings.TrimPrefix(server.URL, "https://")
	client, err := New(host, WithToken("tok"))
	require.NoError(t, err)
	_, err = client.Version(context.Background())
	require.Error(t, err)

	client, err = New(host, WithToken("tok"), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	resp, err := client.Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestResolveURL(t *testing.T) {
	client, err := New("safe.example.com", WithAPIVersion("1.0"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		path     string
		mtls     bool
		expected string
	}{
		{"leading slash", "/vault", false, "https://safe.example.com/api/1.0/vault"},
		{"no slash", "vault", false, "https://safe.example.com/api/1.0/vault"},
		{"both slashes", "/vault/", false, "https://safe.example.com/api/1.0/vault"},
		{"nested", "/vault/12/members", false, "https://safe.example.com/api/1.0/vault/12/members"},
		{"mtls port", "/auth", true, "https://safe.example.com:8443/api/1.0/auth"},
		{"empty path", "", false, "https://safe.example.com/api/1.0/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, client.ResolveURL(tt.path, tt.mtls))
		})
	}
}

func TestDefaultOptions_AreCopied(t *testing.T) {
	defaults := Options{Headers: map[string]string{"X-Tenant": "a"}}
	client, rt := newTestClient(t, WithToken("tok"), WithDefaultOptions(defaults))

	defaults.Headers["X-Tenant"] = "b"

	_, err := client.ListVaults(context.Background())
	require.NoError(t, err)

	call, ok := rt.LastCall()
	require.True(t, ok)
	assert.Equal(t, "a", call.Header.Get("X-Tenant"))
}

func TestWithLogger_DoesNotLogToken(t *testing.T) {
	var sink recordingHandler
	client, _ := newTestClient(t, WithToken("secret-token"), WithLogger(slog.New(&sink)))

	_, err := client.ListVaults(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, sink.records)
	for _, r := range sink.records {
		r.Attrs(func(a slog.Attr) bool {
			assert.NotContains(t, a.Value.String(), "secret-token")
			return true
		})
	}
}

// recordingHandler keeps every record at any level.
type recordingHandler struct {
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.records = append(h.records, r.Clone())
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }
