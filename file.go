package storedsafe

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"net/url"
)

// GetMimeType asks the server for the mime type of the file at path and the
// maximum upload size. Only the first FilePrefixSize bytes are sent, base64
// encoded, together with the full size and the extension. params are added
// to the body and win over the computed fields.
func (c *Client) GetMimeType(ctx context.Context, path string, params *Params, opts ...Options) (*Response, error) {
	const endpoint = "/utils/get_mime_type"
	if _, err := c.requireToken(endpoint); err != nil {
		return nil, err
	}

	info, err := c.fs.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	prefix, err := c.fs.ReadPrefix(ctx, path, FilePrefixSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	body := NewParams().
		Set("extension", info.Extension).
		Set("size", info.Size).
		Set("data", base64.StdEncoding.EncodeToString(prefix)).
		Merge(params)
	return c.post(ctx, endpoint, body, opts)
}

// FileCollect sends the first FilePrefixSize bytes of the file at path so the
// server can propose a template for it. params are sent as form fields.
func (c *Client) FileCollect(ctx context.Context, path string, params *Params, opts ...Options) (*Response, error) {
	const endpoint = "/filecollect"
	if _, err := c.requireToken(endpoint); err != nil {
		return nil, err
	}

	info, err := c.fs.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	prefix, err := c.fs.ReadPrefix(ctx, path, FilePrefixSize)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	file := FilePart{FieldName: UploadField, FileName: info.Name, Content: bytes.NewReader(prefix)}
	return c.postMultipart(ctx, endpoint, file, params.Form(), opts)
}

// UploadFile creates a file object from the whole content of the file at
// path. params are sent as form fields; templateid defaults to
// DefaultFileTemplateID when missing or empty.
func (c *Client) UploadFile(ctx context.Context, path string, params *Params, opts ...Options) (*Response, error) {
	const endpoint = "/object"
	if _, err := c.requireToken(endpoint); err != nil {
		return nil, err
	}

	form := params.Clone()
	if v, _ := form.Get("templateid"); isBlankParam(v) {
		form.Set("templateid", DefaultFileTemplateID)
	}
	return c.uploadWhole(ctx, endpoint, UploadField, path, form.Form(), opts)
}

// GetFile fetches a file object with its decrypted content.
func (c *Client) GetFile(ctx context.Context, objectID string, opts ...Options) (*Response, error) {
	query := url.Values{
		"decrypt":  {boolParam(true)},
		"filedata": {boolParam(true)},
	}
	return c.get(ctx, "/object/"+pathID(objectID), query, opts)
}

// uploadWhole streams the file at path in field and always closes it.
func (c *Client) uploadWhole(ctx context.Context, endpoint, field, path string, form url.Values, opts []Options) (*Response, error) {
	info, err := c.fs.Stat(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	rc, err := c.fs.Open(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer rc.Close()

	file := FilePart{FieldName: field, FileName: info.Name, Content: rc}
	return c.postMultipart(ctx, endpoint, file, form, opts)
}
