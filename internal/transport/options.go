package transport

import (
	"net/http"
	"time"
)

// ClientCertificate points at a PEM encoded certificate and private key that
// are presented during the TLS handshake (smartcard login).
type ClientCertificate struct {
	CertFile string
	KeyFile  string
}

// Keys of Options.Values understood by the HTTP transport.
const (
	// ValueVerify is false to skip server certificate verification, or the
	// path of a PEM bundle of trusted CAs.
	ValueVerify = "verify"
	// ValueProxies is a proxy URL, or a map from request scheme ("http",
	// "https") to proxy URL.
	ValueProxies = "proxies"
)

// Options carries transport level overrides for a single call.
//
// Values is an open bag handed verbatim to the transport. The HTTP transport
// honors ValueVerify and ValueProxies and ignores other keys.
type Options struct {
	Headers    map[string]string
	Timeout    time.Duration
	ClientCert *ClientCertificate
	Values     map[string]any
}

// Merge composes option bags left to right. Later bags win per top-level key;
// Headers and Values are merged key by key instead of being replaced wholesale.
// The result never shares maps with its inputs.
func Merge(base Options, overrides ...Options) Options {
	out := Options{
		Headers: make(map[string]string),
		Values:  make(map[string]any),
	}
	for _, o := range append([]Options{base}, overrides...) {
		for k, v := range o.Headers {
			out.Headers[http.CanonicalHeaderKey(k)] = v
		}
		if o.Timeout > 0 {
			out.Timeout = o.Timeout
		}
		if o.ClientCert != nil {
			cert := *o.ClientCert
			out.ClientCert = &cert
		}
		for k, v := range o.Values {
			out.Values[k] = v
		}
	}
	return out
}

// Clone returns a deep copy of o.
func (o Options) Clone() Options {
	return Merge(o)
}

// Header renders Headers as an http.Header.
func (o Options) Header() http.Header {
	h := make(http.Header, len(o.Headers))
	for k, v := range o.Headers {
		h.Set(k, v)
	}
	return h
}
