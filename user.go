package storedsafe

import "context"

// ListUsers lists all users, or the users matching search when it is not empty.
func (c *Client) ListUsers(ctx context.Context, search string, opts ...Options) (*Response, error) {
	if search == "" {
		return c.get(ctx, "/user", nil, opts)
	}
	return c.get(ctx, "/user/"+pathID(search), nil, opts)
}

func (c *Client) GetUser(ctx context.Context, userID string, opts ...Options) (*Response, error) {
	return c.get(ctx, "/user/"+pathID(userID), nil, opts)
}

func (c *Client) CreateUser(ctx context.Context, params *Params, opts ...Options) (*Response, error) {
	return c.post(ctx, "/user", params.Clone(), opts)
}

func (c *Client) EditUser(ctx context.Context, userID string, params *Params, opts ...Options) (*Response, error) {
	return c.put(ctx, "/user/"+pathID(userID), params.Clone(), opts)
}

func (c *Client) DeleteUser(ctx context.Context, userID string, opts ...Options) (*Response, error) {
	return c.delete(ctx, "/user/"+pathID(userID), opts)
}

// GetUserCertificate fetches the certificate registered for smartcard login.
func (c *Client) GetUserCertificate(ctx context.Context, userID string, opts ...Options) (*Response, error) {
	return c.get(ctx, "/usercert/"+pathID(userID), nil, opts)
}

// SetUserCertificate uploads the certificate at certPath for a user.
func (c *Client) SetUserCertificate(ctx context.Context, userID, certPath string, opts ...Options) (*Response, error) {
	endpoint := "/usercert/" + pathID(userID)
	if _, err := c.requireToken(endpoint); err != nil {
		return nil, err
	}
	return c.uploadWhole(ctx, endpoint, UserCertField, certPath, nil, opts)
}

func (c *Client) RemoveUserCertificate(ctx context.Context, userID string, opts ...Options) (*Response, error) {
	return c.delete(ctx, "/usercert/"+pathID(userID), opts)
}
