package storedsafe

import (
	"context"
	"net/url"
)

// GetObject fetches an object. With children set, objects nested below it
// are included.
func (c *Client) GetObject(ctx context.Context, objectID string, children bool, opts ...Options) (*Response, error) {
	query := url.Values{"children": {boolParam(children)}}
	return c.get(ctx, "/object/"+pathID(objectID), query, opts)
}

// DecryptObject fetches an object with its encrypted fields in clear text.
func (c *Client) DecryptObject(ctx context.Context, objectID string, opts ...Options) (*Response, error) {
	query := url.Values{"decrypt": {boolParam(true)}}
	return c.get(ctx, "/object/"+pathID(objectID), query, opts)
}

func (c *Client) CreateObject(ctx context.Context, params *Params, opts ...Options) (*Response, error) {
	return c.post(ctx, "/object", params.Clone(), opts)
}

func (c *Client) EditObject(ctx context.Context, objectID string, params *Params, opts ...Options) (*Response, error) {
	return c.put(ctx, "/object/"+pathID(objectID), params.Clone(), opts)
}

func (c *Client) DeleteObject(ctx context.Context, objectID string, opts ...Options) (*Response, error) {
	return c.delete(ctx, "/object/"+pathID(objectID), opts)
}

// Find searches every object the session can read for needle.
func (c *Client) Find(ctx context.Context, needle string, opts ...Options) (*Response, error) {
	query := url.Values{"needle": {needle}}
	return c.get(ctx, "/find", query, opts)
}
