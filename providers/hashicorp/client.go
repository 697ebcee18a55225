package hashicorp

import (
	"context"
	"fmt"
	"os"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/vault/api"
	"github.com/hengadev/storedsafe"
)

// createVaultClient creates a configured Vault client using environment variables.
//
// Authentication Priority:
//  1. If VAULT_TOKEN is set, uses token directly
//  2. If VAULT_ROLE_ID and VAULT_SECRET_ID are set, uses AppRole authentication
//  3. Otherwise, returns error (no authentication method available)
func createVaultClient(ctx context.Context) (*api.Client, error) {
	config := api.DefaultConfig()

	addr := os.Getenv("VAULT_ADDR")
	if addr != "" {
		config.Address = addr
	}
	if config.Address == "" {
		return nil, fmt.Errorf("%w: VAULT_ADDR environment variable is required", storedsafe.ErrInvalidConfiguration)
	}

	// Configure HTTP transport with proxy support
	config.HttpClient.Transport = cleanhttp.DefaultPooledTransport()

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Vault client: %w", storedsafe.ErrCredentialStoreUnavailable, err)
	}

	if namespace := os.Getenv("VAULT_NAMESPACE"); namespace != "" {
		client.SetNamespace(namespace)
	}

	if token := os.Getenv("VAULT_TOKEN"); token != "" {
		client.SetToken(token)
		return client, nil
	}

	roleID := os.Getenv("VAULT_ROLE_ID")
	secretID := os.Getenv("VAULT_SECRET_ID")
	if roleID != "" && secretID != "" {
		if err := appRoleLogin(ctx, client, roleID, secretID); err != nil {
			return nil, err
		}
		return client, nil
	}

	return nil, fmt.Errorf("%w: no Vault authentication method configured (set VAULT_TOKEN or VAULT_ROLE_ID+VAULT_SECRET_ID)",
		storedsafe.ErrInvalidConfiguration)
}

func appRoleLogin(ctx context.Context, client *api.Client, roleID, secretID string) error {
	data := map[string]interface{}{
		"role_id":   roleID,
		"secret_id": secretID,
	}

	resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", data)
	if err != nil {
		return fmt.Errorf("%w: failed to login with AppRole: %w", storedsafe.ErrCredentialStoreUnavailable, err)
	}
	if resp == nil || resp.Auth == nil {
		return fmt.Errorf("%w: no auth info returned from AppRole login", storedsafe.ErrCredentialStoreUnavailable)
	}

	client.SetToken(resp.Auth.ClientToken)
	return nil
}
