package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"sort"

	"github.com/hashicorp/go-cleanhttp"
)

// HTTP is the default Transport, built on a pooled net/http client.
type HTTP struct {
	client    *http.Client
	userAgent string
}

// HTTPOption configures an HTTP transport.
type HTTPOption func(*HTTP)

// WithHTTPClient replaces the pooled client. Client certificates are layered
// on a clone of its *http.Transport when one is requested.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTP) {
		if client != nil {
			t.client = client
		}
	}
}

// WithUserAgent sets the User-Agent header when a call does not set one.
func WithUserAgent(ua string) HTTPOption {
	return func(t *HTTP) { t.userAgent = ua }
}

// NewHTTP returns an HTTP transport.
func NewHTTP(opts ...HTTPOption) *HTTP {
	t := &HTTP{client: cleanhttp.DefaultPooledClient()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

var _ Transport = (*HTTP)(nil)

func (t *HTTP) Get(ctx context.Context, rawURL string, query url.Values, header http.Header, opts Options) (*Response, error) {
	if len(query) > 0 {
		rawURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return t.do(req, header, opts)
}

func (t *HTTP) Post(ctx context.Context, rawURL string, body any, header http.Header, opts Options) (*Response, error) {
	return t.sendJSON(ctx, http.MethodPost, rawURL, body, header, opts)
}

func (t *HTTP) Put(ctx context.Context, rawURL string, body any, header http.Header, opts Options) (*Response, error) {
	return t.sendJSON(ctx, http.MethodPut, rawURL, body, header, opts)
}

func (t *HTTP) Delete(ctx context.Context, rawURL string, header http.Header, opts Options) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return t.do(req, header, opts)
}

// PostMultipart streams the form fields (sorted by name) followed by the file
// part as a multipart/form-data body. The file content is read while the
// request is written and is not read again after PostMultipart returns.
func (t *HTTP) PostMultipart(ctx context.Context, rawURL string, file FilePart, form url.Values, header http.Header, opts Options) (*Response, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	done := make(chan struct{})
	go func() {
		defer close(done)
		pw.CloseWithError(writeMultipart(mw, file, form))
	}()
	defer func() {
		_ = pr.Close()
		<-done
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return t.do(req, header, opts)
}

func writeMultipart(mw *multipart.Writer, file FilePart, form url.Values) error {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, v := range form[k] {
			if err := mw.WriteField(k, v); err != nil {
				return fmt.Errorf("write form field %q: %w", k, err)
			}
		}
	}

	part, err := mw.CreateFormFile(file.FieldName, file.FileName)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if file.Content != nil {
		if _, err := io.Copy(part, file.Content); err != nil {
			return fmt.Errorf("copy file content: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close multipart writer: %w", err)
	}
	return nil
}

func (t *HTTP) sendJSON(ctx context.Context, method, rawURL string, body any, header http.Header, opts Options) (*Response, error) {
	if body == nil {
		body = struct{}{}
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, method, rawURL, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	return t.do(req, header, opts)
}

func (t *HTTP) do(req *http.Request, header http.Header, opts Options) (*Response, error) {
	if opts.Timeout > 0 {
		ctx, cancel := context.WithTimeout(req.Context(), opts.Timeout)
		defer cancel()
		req = req.WithContext(ctx)
	}
	for k, vv := range header {
		req.Header.Del(k)
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	if t.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", t.userAgent)
	}

	client, release, err := t.clientFor(opts)
	if err != nil {
		return nil, err
	}
	defer release()

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}, nil
}

// clientFor returns the shared client, or a one-off client when the call
// presents a certificate or sets ValueVerify or ValueProxies. The release func
// drops the one-off connections.
func (t *HTTP) clientFor(opts Options) (*http.Client, func(), error) {
	verify, hasVerify := opts.Values[ValueVerify]
	proxies, hasProxies := opts.Values[ValueProxies]
	if opts.ClientCert == nil && !hasVerify && !hasProxies {
		return t.client, func() {}, nil
	}

	var rt *http.Transport
	if base, ok := t.client.Transport.(*http.Transport); ok && base != nil {
		rt = base.Clone()
	} else {
		rt = cleanhttp.DefaultTransport()
	}
	if rt.TLSClientConfig == nil {
		rt.TLSClientConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	if opts.ClientCert != nil {
		cert, err := tls.LoadX509KeyPair(opts.ClientCert.CertFile, opts.ClientCert.KeyFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load client certificate: %w", err)
		}
		rt.TLSClientConfig.Certificates = []tls.Certificate{cert}
	}
	if hasVerify {
		if err := applyVerify(rt.TLSClientConfig, verify); err != nil {
			return nil, nil, err
		}
	}
	if hasProxies {
		proxy, err := proxyFunc(proxies)
		if err != nil {
			return nil, nil, err
		}
		rt.Proxy = proxy
	}

	client := &http.Client{
		Transport:     rt,
		CheckRedirect: t.client.CheckRedirect,
		Jar:           t.client.Jar,
		Timeout:       t.client.Timeout,
	}
	return client, rt.CloseIdleConnections, nil
}

// applyVerify configures server certificate checks. false disables them; a
// string names a PEM bundle of trusted CAs.
func applyVerify(cfg *tls.Config, verify any) error {
	switch v := verify.(type) {
	case bool:
		cfg.InsecureSkipVerify = !v //nolint:gosec
	case string:
		data, err := os.ReadFile(v)
		if err != nil {
			return fmt.Errorf("read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(data) {
			return fmt.Errorf("read CA bundle %s: no certificates found", v)
		}
		cfg.RootCAs = pool
	default:
		return fmt.Errorf("%s: expected bool or CA bundle path, got %T", ValueVerify, verify)
	}
	return nil
}

// proxyFunc accepts one proxy URL for every scheme, or a map from request
// scheme to proxy URL. Schemes missing from the map are not proxied.
func proxyFunc(proxies any) (func(*http.Request) (*url.URL, error), error) {
	raw := make(map[string]string)
	switch p := proxies.(type) {
	case string:
		raw["http"], raw["https"] = p, p
	case map[string]string:
		for scheme, u := range p {
			raw[scheme] = u
		}
	case map[string]any:
		for scheme, u := range p {
			s, ok := u.(string)
			if !ok {
				return nil, fmt.Errorf("%s[%s]: expected string, got %T", ValueProxies, scheme, u)
			}
			raw[scheme] = s
		}
	default:
		return nil, fmt.Errorf("%s: expected string or map, got %T", ValueProxies, proxies)
	}

	byScheme := make(map[string]*url.URL, len(raw))
	for scheme, u := range raw {
		parsed, err := url.Parse(u)
		if err != nil {
			return nil, fmt.Errorf("%s[%s]: %w", ValueProxies, scheme, err)
		}
		byScheme[scheme] = parsed
	}
	return func(req *http.Request) (*url.URL, error) {
		return byScheme[req.URL.Scheme], nil
	}, nil
}
