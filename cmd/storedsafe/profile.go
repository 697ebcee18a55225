package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hengadev/errsx"
	"gopkg.in/yaml.v3"

	"github.com/hengadev/storedsafe/internal/monitoring"
)

// DefaultProfilePath is read when -config is not given.
const DefaultProfilePath = "storedsafe.yaml"

// Credential sources a profile can select.
const (
	SourceRC    = "rc"
	SourceEnv   = "env"
	SourceVault = "vault"
)

// Output formats.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Profile represents the configuration of the command-line client
type Profile struct {
	Version string `yaml:"version"`

	// Source selects where host, API key and token come from: rc, env or
	// vault.
	Source string `yaml:"source"`

	// RCFile overrides the default rc path when Source is rc.
	RCFile string `yaml:"rc_file,omitempty"`

	// VaultName is the credential set read from HashiCorp Vault when Source
	// is vault.
	VaultName string `yaml:"vault_name,omitempty"`

	Output  string `yaml:"output"`
	Timeout string `yaml:"timeout,omitempty"`

	Log LogProfile `yaml:"log"`
}

// LogProfile holds logging settings
type LogProfile struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// LoadProfile loads a profile from a YAML file
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile: %w", err)
	}

	// Start with empty profile, not defaults
	profile := &Profile{}
	if err := yaml.Unmarshal(data, profile); err != nil {
		return nil, fmt.Errorf("failed to parse profile: %w", err)
	}

	return profile, nil
}

// LoadProfileOrDefault loads path, falling back to DefaultProfile when the
// default profile file does not exist.
func LoadProfileOrDefault(path string) (*Profile, error) {
	profile, err := LoadProfile(path)
	if err == nil {
		return profile, nil
	}
	if path == DefaultProfilePath && errors.Is(err, os.ErrNotExist) {
		return DefaultProfile(), nil
	}
	return nil, err
}

// SaveProfile saves a profile to a YAML file
func SaveProfile(profile *Profile, path string) error {
	data, err := yaml.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to marshal profile: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write profile: %w", err)
	}

	return nil
}

// DefaultProfile returns a default profile
func DefaultProfile() *Profile {
	return &Profile{
		Version: "1",
		Source:  SourceRC,
		Output:  OutputJSON,
		Timeout: "30s",
		Log: LogProfile{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Validate checks the profile and fills in defaults for empty fields
func (p *Profile) Validate() error {
	if p.Version == "" {
		p.Version = "1"
	}
	if p.Source == "" {
		p.Source = SourceRC
	}
	if p.Output == "" {
		p.Output = OutputJSON
	}

	var errs errsx.Map

	switch p.Source {
	case SourceRC, SourceEnv:
	case SourceVault:
		if p.VaultName == "" {
			errs.Set("vault_name", "is required when source is vault")
		}
	default:
		errs.Set("source", "must be one of: rc, env, vault")
	}

	if p.Output != OutputJSON && p.Output != OutputYAML {
		errs.Set("output", "must be one of: json, yaml")
	}

	if p.Timeout != "" {
		d, err := time.ParseDuration(p.Timeout)
		if err != nil {
			errs.Set("timeout", err)
		} else if d < 0 {
			errs.Set("timeout", "cannot be negative")
		}
	}

	if _, err := monitoring.ParseLevel(p.Log.Level); err != nil {
		errs.Set("log.level", err)
	}
	if _, err := monitoring.ParseFormat(p.Log.Format); err != nil {
		errs.Set("log.format", err)
	}

	if !errs.IsEmpty() {
		return errs.AsError()
	}
	return nil
}

// TimeoutDuration returns the parsed timeout, zero when unset.
func (p *Profile) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(p.Timeout)
	return d
}
