package storedsafe

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hengadev/storedsafe/internal/transport"
)

// ClientOption configures a Client in New.
type ClientOption func(c *Client) error

// WithAPIKey sets the API key used by the login calls.
func WithAPIKey(apiKey string) ClientOption {
	return func(c *Client) error {
		c.apiKey = apiKey
		return nil
	}
}

// WithToken sets a previously obtained session token.
func WithToken(token string) ClientOption {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithAPIVersion selects the /api/{version} prefix.
func WithAPIVersion(version string) ClientOption {
	return func(c *Client) error {
		if version == "" {
			return errors.New("api version cannot be empty")
		}
		c.apiVersion = version
		return nil
	}
}

// WithDefaultOptions sets the option bag applied to every call. Call-site
// options are merged on top of it.
func WithDefaultOptions(opts Options) ClientOption {
	return func(c *Client) error {
		c.defaults = opts.Clone()
		return nil
	}
}

// WithHTTPClient sends every call through client instead of the pooled
// default, e.g. one trusting a private CA or going through a proxy. Per-call
// overrides are available through OptionVerify and OptionProxies.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		c.transport = transport.NewHTTP(transport.WithHTTPClient(client), transport.WithUserAgent(userAgent()))
		return nil
	}
}

func WithTransport(t Transport) ClientOption {
	return func(c *Client) error {
		if t == nil {
			return errors.New("transport cannot be nil")
		}
		c.transport = t
		return nil
	}
}

func WithFileSystem(fs FileSystem) ClientOption {
	return func(c *Client) error {
		if fs == nil {
			return errors.New("file system cannot be nil")
		}
		c.fs = fs
		return nil
	}
}

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		if logger == nil {
			return errors.New("logger cannot be nil")
		}
		c.logger = logger
		return nil
	}
}

func WithMetricsCollector(metrics MetricsCollector) ClientOption {
	return func(c *Client) error {
		if metrics == nil {
			return errors.New("metrics collector cannot be nil")
		}
		c.metrics = metrics
		return nil
	}
}

func WithObservabilityHook(hook ObservabilityHook) ClientOption {
	return func(c *Client) error {
		if hook == nil {
			return errors.New("observability hook cannot be nil")
		}
		c.hook = hook
		return nil
	}
}
