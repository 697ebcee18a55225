package storedsafe

import "context"

// StatusValues returns the vault membership status codes.
func (c *Client) StatusValues(ctx context.Context, opts ...Options) (*Response, error) {
	return c.get(ctx, "/utils/statusvalues", nil, opts)
}

// PasswordPolicies returns the password policies configured on the server.
func (c *Client) PasswordPolicies(ctx context.Context, opts ...Options) (*Response, error) {
	return c.get(ctx, "/utils/policies", nil, opts)
}

// Version returns the server version.
func (c *Client) Version(ctx context.Context, opts ...Options) (*Response, error) {
	return c.get(ctx, "/utils/version", nil, opts)
}

// GeneratePassword asks the server for a password. params (policyid,
// length, language, ...) are sent as query parameters.
func (c *Client) GeneratePassword(ctx context.Context, params *Params, opts ...Options) (*Response, error) {
	return c.get(ctx, "/utils/pwgen", params.Query(), opts)
}
