package storedsafe

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/hengadev/storedsafe/internal/transport"
)

// Client is a session against one StoredSafe server.
//
// A Client holds the host, API version, API key and the current session
// token. Login calls replace the token on success; every other operation
// sends it in the X-Http-Token header and fails with ErrTokenMissing before
// any network call when it is empty.
//
// Reading the token is guarded, but a login running concurrently with
// authenticated calls may let those calls observe either the old or the new
// token. Serialize logins with other calls when that matters.
type Client struct {
	host       string
	apiVersion string
	apiKey     string

	mu    sync.RWMutex
	token string

	defaults  Options
	transport Transport
	fs        FileSystem
	logger    *slog.Logger
	metrics   MetricsCollector
	hook      ObservabilityHook
}

// New returns a Client for host. No network I/O takes place.
//
// Example:
//
//	client, err := storedsafe.New("safe.example.com",
//		storedsafe.WithAPIKey(apiKey),
//	)
//	if err != nil {
//		return err
//	}
//	resp, err := client.LoginTOTP(ctx, "alice", passphrase, otp)
func New(host string, opts ...ClientOption) (*Client, error) {
	c := &Client{
		host:       host,
		apiVersion: DefaultAPIVersion,
		transport:  transport.NewHTTP(transport.WithUserAgent(userAgent())),
		fs:         OSFileSystem{},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics:    &NoOpMetricsCollector{},
		hook:       &NoOpObservabilityHook{},
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
		}
	}

	return c, nil
}

// Host returns the server host name.
func (c *Client) Host() string { return c.host }

// APIVersion returns the version used in the /api/{version} prefix.
func (c *Client) APIVersion() string { return c.apiVersion }

// APIKey returns the API key, or "" when none was configured.
func (c *Client) APIKey() string { return c.apiKey }

// Token returns the current session token, or "" when not logged in.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) setToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// ResolveURL returns the absolute URL of an API path. Leading and trailing
// slashes of path are ignored. The mutual TLS port is used for smartcard
// authentication.
func (c *Client) ResolveURL(path string, useMTLSPort bool) string {
	host := c.host
	if useMTLSPort {
		host += ":" + MTLSPort
	}
	return fmt.Sprintf("https://%s/api/%s/%s", host, c.apiVersion, strings.Trim(path, "/"))
}
