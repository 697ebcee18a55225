package storedsafe

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// request is the descriptor of one call, built fresh by the helpers below.
type request struct {
	method    string
	path      string
	query     url.Values
	body      any
	file      *FilePart
	form      url.Values
	mtls      bool
	withToken bool
}

func (c *Client) get(ctx context.Context, path string, query url.Values, opts []Options) (*Response, error) {
	return c.send(ctx, request{method: http.MethodGet, path: path, query: query, withToken: true}, opts)
}

func (c *Client) post(ctx context.Context, path string, body any, opts []Options) (*Response, error) {
	return c.send(ctx, request{method: http.MethodPost, path: path, body: body, withToken: true}, opts)
}

func (c *Client) put(ctx context.Context, path string, body any, opts []Options) (*Response, error) {
	return c.send(ctx, request{method: http.MethodPut, path: path, body: body, withToken: true}, opts)
}

func (c *Client) delete(ctx context.Context, path string, opts []Options) (*Response, error) {
	return c.send(ctx, request{method: http.MethodDelete, path: path, withToken: true}, opts)
}

func (c *Client) postMultipart(ctx context.Context, path string, file FilePart, form url.Values, opts []Options) (*Response, error) {
	return c.send(ctx, request{method: http.MethodPost, path: path, file: &file, form: form, withToken: true}, opts)
}

// requireToken fails when no session token is held.
func (c *Client) requireToken(path string) (string, error) {
	token := c.Token()
	if token == "" {
		return "", fmt.Errorf("%s: %w", path, ErrTokenMissing)
	}
	return token, nil
}

// compose merges the client defaults with the call-site options and renders
// the request headers. The token header is set last so it cannot be
// overridden by a caller.
func (c *Client) compose(opts []Options, token string, withToken bool) (Options, http.Header) {
	merged := MergeOptions(c.defaults, opts...)
	header := merged.Header()
	if withToken {
		header.Set(TokenHeader, token)
	}
	return merged, header
}

func (c *Client) send(ctx context.Context, req request, opts []Options) (*Response, error) {
	var token string
	if req.withToken {
		t, err := c.requireToken(req.path)
		if err != nil {
			return nil, err
		}
		token = t
	}

	merged, header := c.compose(opts, token, req.withToken)
	info := RequestInfo{
		RequestID: uuid.NewString(),
		Method:    req.method,
		Path:      req.path,
		URL:       c.ResolveURL(req.path, req.mtls),
	}

	c.logger.DebugContext(ctx, "storedsafe request",
		slog.String("request_id", info.RequestID),
		slog.String("method", info.Method),
		slog.String("url", info.URL),
		slog.Bool("client_cert", merged.ClientCert != nil),
	)
	c.hook.OnRequestStart(ctx, info)

	start := time.Now()
	resp, err := c.dispatch(ctx, req, info.URL, header, merged)
	duration := time.Since(start)
	if err == nil && resp == nil {
		err = fmt.Errorf("%s %s: %w", req.method, req.path, ErrNoResponse)
	}

	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	tags := map[string]string{"method": req.method, "path": req.path}
	c.metrics.IncrementCounter(MetricRequests, tags)
	c.metrics.RecordTiming(MetricRequestDuration, duration, tags)

	if err != nil {
		c.metrics.IncrementCounter(MetricRequestErrors, tags)
		c.hook.OnError(ctx, info, err)
		c.logger.DebugContext(ctx, "storedsafe request failed",
			slog.String("request_id", info.RequestID),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
	} else {
		c.logger.DebugContext(ctx, "storedsafe response",
			slog.String("request_id", info.RequestID),
			slog.Int("status", status),
			slog.Duration("duration", duration),
		)
	}
	c.hook.OnRequestComplete(ctx, info, status, duration, err)

	return resp, err
}

func (c *Client) dispatch(ctx context.Context, req request, rawURL string, header http.Header, opts Options) (*Response, error) {
	switch {
	case req.file != nil:
		return c.transport.PostMultipart(ctx, rawURL, *req.file, req.form, header, opts)
	case req.method == http.MethodGet:
		return c.transport.Get(ctx, rawURL, req.query, header, opts)
	case req.method == http.MethodPost:
		return c.transport.Post(ctx, rawURL, req.body, header, opts)
	case req.method == http.MethodPut:
		return c.transport.Put(ctx, rawURL, req.body, header, opts)
	case req.method == http.MethodDelete:
		return c.transport.Delete(ctx, rawURL, header, opts)
	default:
		return nil, fmt.Errorf("unsupported method %s", req.method)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// pathID escapes a server id for use as a path segment.
func pathID(id string) string {
	return url.PathEscape(id)
}
