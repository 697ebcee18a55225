package storedsafe

import "context"

// ListVaults lists the vaults the session has access to.
func (c *Client) ListVaults(ctx context.Context, opts ...Options) (*Response, error) {
	return c.get(ctx, "/vault", nil, opts)
}

// VaultObjects lists the objects stored in a vault.
func (c *Client) VaultObjects(ctx context.Context, vaultID string, opts ...Options) (*Response, error) {
	return c.get(ctx, "/vault/"+pathID(vaultID), nil, opts)
}

// VaultMembers lists the members of a vault.
func (c *Client) VaultMembers(ctx context.Context, vaultID string, opts ...Options) (*Response, error) {
	return c.get(ctx, "/vault/"+pathID(vaultID)+"/members", nil, opts)
}

// AddVaultMember grants a user access to a vault with the given status.
func (c *Client) AddVaultMember(ctx context.Context, vaultID, userID string, status int, opts ...Options) (*Response, error) {
	body := NewParams().Set("status", status)
	return c.post(ctx, vaultMemberPath(vaultID, userID), body, opts)
}

// EditVaultMember changes the access status of a vault member.
func (c *Client) EditVaultMember(ctx context.Context, vaultID, userID string, status int, opts ...Options) (*Response, error) {
	body := NewParams().Set("status", status)
	return c.put(ctx, vaultMemberPath(vaultID, userID), body, opts)
}

// RemoveVaultMember revokes a user's access to a vault.
func (c *Client) RemoveVaultMember(ctx context.Context, vaultID, userID string, opts ...Options) (*Response, error) {
	return c.delete(ctx, vaultMemberPath(vaultID, userID), opts)
}

func (c *Client) CreateVault(ctx context.Context, params *Params, opts ...Options) (*Response, error) {
	return c.post(ctx, "/vault", params.Clone(), opts)
}

func (c *Client) EditVault(ctx context.Context, vaultID string, params *Params, opts ...Options) (*Response, error) {
	return c.put(ctx, "/vault/"+pathID(vaultID), params.Clone(), opts)
}

func (c *Client) DeleteVault(ctx context.Context, vaultID string, opts ...Options) (*Response, error) {
	return c.delete(ctx, "/vault/"+pathID(vaultID), opts)
}

func vaultMemberPath(vaultID, userID string) string {
	return "/vault/" + pathID(vaultID) + "/member/" + pathID(userID)
}
