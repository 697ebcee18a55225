// Package hashicorp keeps StoredSafe credentials in HashiCorp Vault.
//
// CredentialStore reads and writes a StoredSafe host, API key, token and API
// version in the Vault KV v2 engine, so services can share a session token
// instead of each logging in with an OTP.
//
// # Setup
//
// The KV v2 engine must be enabled at "secret/":
//
//	vault secrets enable -path=secret kv-v2
//
// # Vault Policies Required
//
//	path "secret/data/storedsafe/*" {
//	  capabilities = ["create", "read", "update"]
//	}
//
// # Environment Variables
//
//   - VAULT_ADDR: Vault server address (required)
//   - VAULT_NAMESPACE: Vault namespace for HCP Vault (optional)
//   - VAULT_TOKEN: Vault token (optional, alternative to AppRole)
//   - VAULT_ROLE_ID and VAULT_SECRET_ID: AppRole credentials (optional)
//
// # Usage
//
//	store, err := hashicorp.NewCredentialStore(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg, err := store.Load(ctx, "production")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	client, err := storedsafe.NewFromConfig(cfg)
//
//	// After a fresh login, share the token
//	err = store.StoreToken(ctx, "production", client.Token())
//
// Secrets are stored at "secret/data/storedsafe/{name}" with the keys host,
// apikey, token and version.
package hashicorp
