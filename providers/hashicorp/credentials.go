package hashicorp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"
	"github.com/hengadev/storedsafe"
)

// CredentialPathTemplate is the KV v2 path of a named credential set.
const CredentialPathTemplate = "secret/data/storedsafe/%s"

// Keys of the KV v2 secret.
const (
	keyHost    = "host"
	keyAPIKey  = "apikey"
	keyToken   = "token"
	keyVersion = "version"
)

// CredentialStore keeps StoredSafe connection settings in Vault KV v2.
type CredentialStore struct {
	client *api.Client
}

// NewCredentialStore creates a CredentialStore configured from the
// environment (see the package documentation).
func NewCredentialStore(ctx context.Context) (*CredentialStore, error) {
	client, err := createVaultClient(ctx)
	if err != nil {
		return nil, err
	}
	return &CredentialStore{client: client}, nil
}

// NewCredentialStoreWithClient creates a CredentialStore using an existing
// Vault client.
func NewCredentialStoreWithClient(client *api.Client) (*CredentialStore, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: vault client cannot be nil", storedsafe.ErrInvalidConfiguration)
	}
	return &CredentialStore{client: client}, nil
}

// GetStoragePath returns the Vault KV v2 path for a credential set.
//
// Note: The "/data/" segment is required for KV v2 API reads/writes.
func (s *CredentialStore) GetStoragePath(name string) string {
	return fmt.Sprintf(CredentialPathTemplate, strings.Trim(name, "/"))
}

// Load reads a credential set. The returned Config is validated, so the API
// version default is applied.
func (s *CredentialStore) Load(ctx context.Context, name string) (storedsafe.Config, error) {
	data, err := s.read(ctx, name)
	if err != nil {
		return storedsafe.Config{}, err
	}
	if data == nil {
		return storedsafe.Config{}, fmt.Errorf("%w: no credentials stored for %q",
			storedsafe.ErrCredentialStoreUnavailable, name)
	}

	cfg := storedsafe.Config{
		Host:       stringValue(data, keyHost),
		APIKey:     stringValue(data, keyAPIKey),
		Token:      stringValue(data, keyToken),
		APIVersion: stringValue(data, keyVersion),
	}
	if err := cfg.Validate(); err != nil {
		return storedsafe.Config{}, fmt.Errorf("%w: credentials for %q: %w",
			storedsafe.ErrInvalidConfiguration, name, err)
	}
	return cfg, nil
}

// Store writes a full credential set, replacing any previous version.
func (s *CredentialStore) Store(ctx context.Context, name string, cfg storedsafe.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("%w: %w", storedsafe.ErrInvalidConfiguration, err)
	}
	return s.write(ctx, name, map[string]interface{}{
		keyHost:    cfg.Host,
		keyAPIKey:  cfg.APIKey,
		keyToken:   cfg.Token,
		keyVersion: cfg.APIVersion,
	})
}

// StoreToken replaces the token of an existing credential set and keeps its
// other keys.
func (s *CredentialStore) StoreToken(ctx context.Context, name, token string) error {
	data, err := s.read(ctx, name)
	if err != nil {
		return err
	}
	if data == nil {
		return fmt.Errorf("%w: no credentials stored for %q", storedsafe.ErrCredentialStoreUnavailable, name)
	}

	updated := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		updated[k] = v
	}
	updated[keyToken] = token
	return s.write(ctx, name, updated)
}

// read returns the KV v2 data of a credential set, or nil when none exists.
func (s *CredentialStore) read(ctx context.Context, name string) (map[string]interface{}, error) {
	path := s.GetStoragePath(name)

	secret, err := s.client.Logical().ReadWithContext(ctx, path)
	if err != nil {
		var respErr *api.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == 404 {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: failed to read credentials from Vault KV: %w",
			storedsafe.ErrCredentialStoreUnavailable, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, nil
	}

	// KV v2 wraps the actual data in a "data" key
	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: invalid KV v2 secret format for %q",
			storedsafe.ErrCredentialStoreUnavailable, name)
	}
	return data, nil
}

func (s *CredentialStore) write(ctx context.Context, name string, values map[string]interface{}) error {
	path := s.GetStoragePath(name)

	// KV v2 requires data to be wrapped in a "data" key
	data := map[string]interface{}{
		"data": values,
	}

	if _, err := s.client.Logical().WriteWithContext(ctx, path, data); err != nil {
		return fmt.Errorf("%w: failed to store credentials in Vault KV: %w",
			storedsafe.ErrCredentialStoreUnavailable, err)
	}
	return nil
}

func stringValue(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}
