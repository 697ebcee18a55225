package storedsafe

import "context"

// ListTemplates lists the object templates known to the server.
func (c *Client) ListTemplates(ctx context.Context, opts ...Options) (*Response, error) {
	return c.get(ctx, "/template", nil, opts)
}

// GetTemplate fetches one template and its field definitions.
func (c *Client) GetTemplate(ctx context.Context, templateID string, opts ...Options) (*Response, error) {
	return c.get(ctx, "/template/"+pathID(templateID), nil, opts)
}
