package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hengadev/storedsafe"
	"github.com/hengadev/storedsafe/internal/monitoring"
	"github.com/hengadev/storedsafe/providers/hashicorp"
	s3bucket "github.com/hengadev/storedsafe/providers/s3"
)

// credentialStore is the part of hashicorp.CredentialStore used by the CLI.
type credentialStore interface {
	Load(ctx context.Context, name string) (storedsafe.Config, error)
	StoreToken(ctx context.Context, name, token string) error
}

var _ credentialStore = (*hashicorp.CredentialStore)(nil)

func defaultCredentialStore(ctx context.Context) (credentialStore, error) {
	return hashicorp.NewCredentialStore(ctx)
}

func defaultS3FileSystem(ctx context.Context) (storedsafe.FileSystem, error) {
	return s3bucket.NewFromEnvironment(ctx)
}

// session is a client together with the place its token is persisted.
type session struct {
	client  *storedsafe.Client
	persist func(ctx context.Context, token string) error
}

// openSession builds a client from the credential source named by the
// profile.
func (c *cli) openSession(ctx context.Context, profile *Profile, extra ...storedsafe.ClientOption) (*session, error) {
	var (
		cfg     storedsafe.Config
		persist func(ctx context.Context, token string) error
		err     error
	)

	switch profile.Source {
	case SourceEnv:
		cfg, err = storedsafe.LoadConfigFromEnvironment()
		if err != nil {
			return nil, err
		}
		persist = func(ctx context.Context, token string) error {
			fmt.Fprintf(c.stderr, "Set %s to keep the new session token.\n", storedsafe.EnvToken)
			return nil
		}

	case SourceVault:
		store, err := c.credentials(ctx)
		if err != nil {
			return nil, err
		}
		cfg, err = store.Load(ctx, profile.VaultName)
		if err != nil {
			return nil, err
		}
		persist = func(ctx context.Context, token string) error {
			return store.StoreToken(ctx, profile.VaultName, token)
		}

	default:
		path := profile.RCFile
		if path == "" {
			path, err = storedsafe.DefaultRCPath()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", storedsafe.ErrConfigLoad, err)
			}
		}
		cfg, err = storedsafe.LoadConfigFromRC(path)
		if err != nil {
			return nil, err
		}
		persist = func(ctx context.Context, token string) error {
			updated := cfg
			updated.Token = token
			return storedsafe.SaveRC(path, updated)
		}
	}

	cfg.Options.Timeout = profile.TimeoutDuration()

	logger := c.logger(profile)
	opts := []storedsafe.ClientOption{
		storedsafe.WithLogger(logger),
		storedsafe.WithObservabilityHook(monitoring.NewLoggingObservabilityHook(logger)),
	}
	opts = append(opts, extra...)
	opts = append(opts, c.clientOptions...)

	client, err := storedsafe.NewFromConfig(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &session{client: client, persist: persist}, nil
}

func (c *cli) logger(profile *Profile) *slog.Logger {
	level, _ := monitoring.ParseLevel(profile.Log.Level)
	format, _ := monitoring.ParseFormat(profile.Log.Format)
	return monitoring.NewLogger(monitoring.LoggerConfig{
		Level:     level,
		Format:    format,
		Output:    c.stderr,
		Component: "cli",
	})
}

// fileSystemFor returns the client option that reads path, or nil when the
// local filesystem serves it.
func (c *cli) fileSystemFor(ctx context.Context, path string) ([]storedsafe.ClientOption, error) {
	if !strings.HasPrefix(path, "s3://") {
		return nil, nil
	}
	fs, err := c.s3FileSystem(ctx)
	if err != nil {
		return nil, err
	}
	return []storedsafe.ClientOption{storedsafe.WithFileSystem(fs)}, nil
}
