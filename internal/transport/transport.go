package transport

import (
	"context"
	"io"
	"net/http"
	"net/url"
)

// FilePart is the file field of a multipart request.
type FilePart struct {
	FieldName string
	FileName  string
	Content   io.Reader
}

// Transport issues one HTTP call per method and returns the response without
// interpreting its status. Only network, TLS and encoding failures are errors.
type Transport interface {
	Get(ctx context.Context, rawURL string, query url.Values, header http.Header, opts Options) (*Response, error)
	Post(ctx context.Context, rawURL string, body any, header http.Header, opts Options) (*Response, error)
	Put(ctx context.Context, rawURL string, body any, header http.Header, opts Options) (*Response, error)
	Delete(ctx context.Context, rawURL string, header http.Header, opts Options) (*Response, error)
	PostMultipart(ctx context.Context, rawURL string, file FilePart, form url.Values, header http.Header, opts Options) (*Response, error)
}
