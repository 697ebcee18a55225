package storedsafe

import (
	"fmt"
	"strings"

	"github.com/hengadev/errsx"
)

// Config holds the connection settings of a Client.
//
// This struct contains only data, no behavior. It can be loaded from an rc
// file (LoadConfigFromRC), the environment (LoadConfigFromEnvironment), a
// secret store, or built in code, and is passed explicitly to NewFromConfig.
//
// Example usage:
//
//	cfg := storedsafe.Config{
//	    Host:   "safe.example.com",
//	    APIKey: os.Getenv("STOREDSAFE_APIKEY"),
//	}
//
//	client, err := storedsafe.NewFromConfig(cfg)
type Config struct {
	// Host is the server host name, without scheme, port or path.
	//
	// Required field.
	Host string

	// APIVersion selects the /api/{version} prefix.
	//
	// Optional field. Default: 1.0
	APIVersion string

	// APIKey identifies the client application. Required to log in.
	APIKey string

	// Token is a session token from an earlier login. Required by every
	// operation other than login.
	Token string

	// Options are applied to every call made by the client.
	Options Options
}

// Validate checks the configuration and applies defaults to optional fields.
//
// Every problem is reported at once; the returned error is an errsx.Map keyed
// by field name.
func (c *Config) Validate() error {
	var errs errsx.Map

	host := strings.TrimSpace(c.Host)
	switch {
	case host == "":
		errs.Set("host", "host is required")
	case strings.Contains(host, "://"):
		errs.Set("host", fmt.Sprintf("host %q must not include a scheme", host))
	case strings.ContainsAny(host, "/?#"):
		errs.Set("host", fmt.Sprintf("host %q must not include a path", host))
	}

	if strings.ContainsAny(c.APIVersion, "/ ") {
		errs.Set("version", fmt.Sprintf("api version %q is not a path segment", c.APIVersion))
	}

	if c.Options.Timeout < 0 {
		errs.Set("timeout", "timeout cannot be negative")
	}

	if cert := c.Options.ClientCert; cert != nil && (cert.CertFile == "" || cert.KeyFile == "") {
		errs.Set("client_cert", "client certificate needs both a certificate and a key file")
	}

	if !errs.IsEmpty() {
		return errs.AsError()
	}

	c.Host = host
	if c.APIVersion == "" {
		c.APIVersion = DefaultAPIVersion
	}
	return nil
}

// NewFromConfig validates cfg and returns a Client for it. opts are applied
// after the configuration.
func NewFromConfig(cfg Config, opts ...ClientOption) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}

	base := []ClientOption{
		WithAPIVersion(cfg.APIVersion),
		WithAPIKey(cfg.APIKey),
		WithToken(cfg.Token),
		WithDefaultOptions(cfg.Options),
	}
	return New(cfg.Host, append(base, opts...)...)
}
