package storedsafe

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hengadev/errsx"
)

// DefaultRCPath returns the rc file in the current user's home directory.
func DefaultRCPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, DefaultRCFilename), nil
}

// LoadConfigFromRC reads a colon delimited rc file.
//
// Each non-blank line holds one key:value pair. Recognized keys are mysite
// (host), apikey and token; unknown keys are ignored. A line that does not
// split into exactly two parts, or an unreadable file, fails the whole load
// with ErrConfigLoad.
//
// Example file:
//
//	mysite:safe.example.com
//	apikey:abcd1234
//	token:
func LoadConfigFromRC(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}
	return parseRC(data)
}

func parseRC(data []byte) (Config, error) {
	var cfg Config
	var errs errsx.Map

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		parts := strings.Split(line, ":")
		if len(parts) != 2 {
			errs.Set(fmt.Sprintf("line %d", lineNo), fmt.Sprintf("expected key:value, got %d fields", len(parts)))
			continue
		}
		key, value := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])
		switch key {
		case rcKeyHost:
			cfg.Host = value
		case rcKeyAPIKey:
			cfg.APIKey = value
		case rcKeyToken:
			cfg.Token = value
		}
	}
	if err := scanner.Err(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigLoad, err)
	}
	if !errs.IsEmpty() {
		return Config{}, fmt.Errorf("%w: %w", ErrConfigLoad, errs.AsError())
	}
	if cfg.Host == "" {
		return Config{}, fmt.Errorf("%w: %s is missing", ErrConfigLoad, rcKeyHost)
	}
	return cfg, nil
}

// NewFromRC loads the rc file at path and returns a Client for it. overrides
// become the default options of the client. An empty path means
// DefaultRCPath.
func NewFromRC(path string, overrides Options, opts ...ClientOption) (*Client, error) {
	if path == "" {
		p, err := DefaultRCPath()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrConfigLoad, err)
		}
		path = p
	}

	cfg, err := LoadConfigFromRC(path)
	if err != nil {
		return nil, err
	}
	cfg.Options = overrides
	return NewFromConfig(cfg, opts...)
}

// SaveRC writes cfg in rc format, readable only by the current user. When
// path already exists, the mysite, apikey and token lines are replaced in
// place and every other line is kept. Missing keys are appended.
func SaveRC(path string, cfg Config) error {
	values := map[string]string{
		rcKeyHost:   cfg.Host,
		rcKeyAPIKey: cfg.APIKey,
		rcKeyToken:  cfg.Token,
	}

	existing, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read rc file: %w", err)
	}

	var buf bytes.Buffer
	written := make(map[string]bool, len(values))
	scanner := bufio.NewScanner(bytes.NewReader(existing))
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		key, _, found := strings.Cut(line, ":")
		key = strings.TrimSpace(key)
		if value, known := values[key]; found && known {
			// Later duplicates of a known key are dropped.
			if !written[key] {
				fmt.Fprintf(&buf, "%s:%s\n", key, value)
				written[key] = true
			}
			continue
		}
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read rc file: %w", err)
	}
	for _, key := range []string{rcKeyHost, rcKeyAPIKey, rcKeyToken} {
		if !written[key] {
			fmt.Fprintf(&buf, "%s:%s\n", key, values[key])
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("write rc file: %w", err)
	}
	return nil
}

// LoadConfigFromEnvironment loads configuration from environment variables.
//
// Required environment variables:
//   - STOREDSAFE_HOST: server host name
//
// Optional environment variables:
//   - STOREDSAFE_APIKEY: API key used to log in
//   - STOREDSAFE_TOKEN: session token from an earlier login
//   - STOREDSAFE_API_VERSION: API version (default: 1.0)
//
// Example usage:
//
//	cfg, err := storedsafe.LoadConfigFromEnvironment()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := storedsafe.NewFromConfig(cfg)
func LoadConfigFromEnvironment() (Config, error) {
	host := os.Getenv(EnvHost)
	if host == "" {
		return Config{}, fmt.Errorf("%w: %s environment variable is required", ErrInvalidConfiguration, EnvHost)
	}

	cfg := Config{
		Host:       host,
		APIVersion: getEnvOrDefault(EnvAPIVersion, DefaultAPIVersion),
		APIKey:     os.Getenv(EnvAPIKey),
		Token:      os.Getenv(EnvToken),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfiguration, err)
	}
	return cfg, nil
}

// getEnvOrDefault returns the value of an environment variable, or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
